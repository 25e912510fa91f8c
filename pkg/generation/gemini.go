// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/campaign"
)

// Gemini generates strategies and content through the Gemini API
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed generator
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// GenerateStrategy asks the model for a structured marketing strategy
func (g *Gemini) GenerateStrategy(ctx context.Context, req StrategyRequest) (*campaign.Strategy, error) {
	if strings.TrimSpace(req.ProductDescription) == "" {
		return nil, ErrEmptyProduct
	}

	prompt := fmt.Sprintf(`You are a marketing strategist. Draft a marketing strategy for this product:

%s

Tone: %s
Target platforms: %s

Respond with a single JSON object, no prose, with exactly these keys:
"target_audience" (string), "value_proposition" (string),
"key_messages" (array of strings), "kpis" (array of strings),
"content_themes" (array of strings), "competitor_insights" (array of strings).`,
		req.ProductDescription, orDefault(req.Tone, "professional"), strings.Join(req.Platforms, ", "))

	raw, err := g.generateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var strategy campaign.Strategy
	if err := json.Unmarshal(raw, &strategy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if strategy.TargetAudience == "" || strategy.ValueProposition == "" {
		return nil, ErrMalformedOutput
	}
	return &strategy, nil
}

// GenerateContent asks the model for content variations for one
// platform and content type
func (g *Gemini) GenerateContent(ctx context.Context, req ContentRequest) ([]campaign.ContentVariation, error) {
	if req.Strategy == nil {
		return nil, ErrNoStrategy
	}

	strategyJSON, err := json.Marshal(req.Strategy)
	if err != nil {
		return nil, fmt.Errorf("marshal strategy: %w", err)
	}

	prompt := fmt.Sprintf(`You are a marketing copywriter. Write 2 %s variations for %s.

Product: %s
Tone: %s
Strategy: %s

Respond with a single JSON array, no prose. Each element has exactly these keys:
"platform" (string), "type" (string), "title" (string), "body" (string),
"hashtags" (array of strings), "cta" (string).
Set "platform" to %q and "type" to %q in every element.`,
		req.ContentType, req.Platform, req.ProductDescription,
		orDefault(req.Tone, "professional"), strategyJSON, req.Platform, req.ContentType)

	raw, err := g.generateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var variations []campaign.ContentVariation
	if err := json.Unmarshal(raw, &variations); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	out := variations[:0]
	for _, v := range variations {
		if strings.TrimSpace(v.Body) == "" {
			continue
		}
		if v.Platform == "" {
			v.Platform = req.Platform
		}
		if v.Type == "" {
			v.Type = req.ContentType
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, ErrMalformedOutput
	}
	return out, nil
}

func (g *Gemini) generateJSON(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrMalformedOutput
	}
	return []byte(text), nil
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
