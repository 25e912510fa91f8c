// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/campaign"
)

// Static is a deterministic generator used in offline mode and tests.
// Output shape matches the LLM-backed generator so the rest of the
// pipeline cannot tell them apart.
type Static struct{}

// NewStatic creates a static generator
func NewStatic() *Static {
	return &Static{}
}

// GenerateStrategy drafts a templated strategy from the request
func (g *Static) GenerateStrategy(ctx context.Context, req StrategyRequest) (*campaign.Strategy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ProductDescription) == "" {
		return nil, ErrEmptyProduct
	}

	product := summarize(req.ProductDescription)
	tone := req.Tone
	if tone == "" {
		tone = "professional"
	}

	return &campaign.Strategy{
		TargetAudience:   fmt.Sprintf("Early adopters and decision makers interested in %s", product),
		ValueProposition: fmt.Sprintf("%s saves time and delivers measurable results", product),
		KeyMessages: []string{
			fmt.Sprintf("Why %s changes your workflow", product),
			"Proven outcomes, not promises",
			fmt.Sprintf("A %s take on a crowded market", tone),
		},
		KPIs: []string{
			"engagement_rate",
			"click_through_rate",
			"conversions",
		},
		ContentThemes: []string{
			"problem/solution",
			"social proof",
			"behind the scenes",
		},
		CompetitorInsights: []string{
			"Incumbents lead on brand recognition but lag on iteration speed",
			"Most competitor content ignores " + strings.Join(req.Platforms, ", "),
		},
	}, nil
}

// GenerateContent drafts templated variations for one platform and type
func (g *Static) GenerateContent(ctx context.Context, req ContentRequest) ([]campaign.ContentVariation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Strategy == nil {
		return nil, ErrNoStrategy
	}

	product := summarize(req.ProductDescription)
	message := "Proven outcomes, not promises"
	if len(req.Strategy.KeyMessages) > 0 {
		message = req.Strategy.KeyMessages[0]
	}

	return []campaign.ContentVariation{
		{
			Platform: req.Platform,
			Type:     req.ContentType,
			Title:    fmt.Sprintf("%s: %s", product, message),
			Body: fmt.Sprintf("%s\n\n%s\n\nBuilt for %s.",
				message, req.Strategy.ValueProposition, req.Strategy.TargetAudience),
			Hashtags: []string{"#" + slug(product), "#marketing"},
			CTA:      "Learn more",
		},
		{
			Platform: req.Platform,
			Type:     req.ContentType,
			Title:    fmt.Sprintf("How %s works", product),
			Body: fmt.Sprintf("A closer look at %s.\n\n%s",
				product, req.Strategy.ValueProposition),
			Hashtags: []string{"#" + slug(product)},
			CTA:      "Try it today",
		},
	}, nil
}

func summarize(product string) string {
	product = strings.TrimSpace(product)
	if len(product) > 48 {
		return product[:48]
	}
	return product
}

func slug(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
