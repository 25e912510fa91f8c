// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package generation wraps the LLM capability that drafts marketing
// strategies and platform content. Calls are fallible and potentially
// slow; callers are expected to pass a context with a deadline.
package generation

import (
	"context"
	"errors"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/campaign"
)

var (
	ErrEmptyProduct    = errors.New("product description is required")
	ErrNoStrategy      = errors.New("strategy is required for content generation")
	ErrMalformedOutput = errors.New("malformed generation output")
)

// StrategyRequest describes the product a strategy is drafted for
type StrategyRequest struct {
	ProductDescription string
	Tone               string
	Platforms          []string
}

// ContentRequest asks for content variations for one platform and type
type ContentRequest struct {
	ProductDescription string
	Strategy           *campaign.Strategy
	Platform           string
	ContentType        string
	Tone               string
}

// Generator is the strategy/content generation capability
type Generator interface {
	GenerateStrategy(ctx context.Context, req StrategyRequest) (*campaign.Strategy, error)
	GenerateContent(ctx context.Context, req ContentRequest) ([]campaign.ContentVariation, error)
}
