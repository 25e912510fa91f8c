// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sampler produces performance samples for published content.
// The synthetic implementation stands in for a real analytics
// integration; the coordinator only depends on the Sampler interface,
// so a real ingestion client can be swapped in without touching it.
package sampler

import (
	"math"
	"math/rand"
	"sync"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/campaign"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/ids"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/policy"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/schedule"
)

// Sampler produces one performance sample per call for a content item
type Sampler interface {
	Sample(contentID ids.ID, platform string) campaign.PerformanceSample
}

// Synthetic generates samples from platform baselines and a seeded
// random source
type Synthetic struct {
	mu    sync.Mutex
	rng   *rand.Rand
	clock schedule.Clock
}

// NewSynthetic creates a synthetic sampler. The seed makes test runs
// reproducible.
func NewSynthetic(clock schedule.Clock, seed int64) *Synthetic {
	return &Synthetic{
		rng:   rand.New(rand.NewSource(seed)),
		clock: clock,
	}
}

// Sample produces one sample for a (content, platform) pair.
// Views and clicks vary in [0.5x, 1.5x) of the platform baseline,
// engagement in [0.7x, 1.3x); conversions are floor(clicks * 0.1 * rand).
func (s *Synthetic) Sample(contentID ids.ID, platform string) campaign.PerformanceSample {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := policy.BaselineFor(platform)

	views := int64(float64(base.Views) * (0.5 + s.rng.Float64()))
	clicks := int64(float64(base.Clicks) * (0.5 + s.rng.Float64()))
	engagement := base.Engagement * (0.7 + 0.6*s.rng.Float64())
	conversions := int64(math.Floor(float64(clicks) * 0.1 * s.rng.Float64()))

	return campaign.PerformanceSample{
		ContentID:       contentID,
		Platform:        platform,
		Timestamp:       s.clock.Now(),
		Views:           views,
		Clicks:          clicks,
		EngagementRatio: engagement,
		Conversions:     conversions,
		Classification:  campaign.Classify(engagement, base.Engagement),
	}
}
