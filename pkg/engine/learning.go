// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/campaign"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/ids"
)

const (
	// Samples in the current cycle before a feedback-phase campaign
	// earns a learning pass. The pass still waits out the platform's
	// mutation window; a detected deviation is the only early path.
	learningSampleThreshold = 3

	// Deviation detection compares the mean engagement of the last
	// deviationWindow samples against the window preceding them.
	deviationWindow      = 3
	deviationMinSamples  = 5
	deviationMinPrior    = 2
	deviationRatioBound  = 0.5
	learningTargetsLimit = 2
)

// runLearning executes one learning cycle: aggregate the current
// cycle's samples per platform, pick the top performers as mutation
// targets, snapshot the insights and re-enter content generation
// restricted to those targets. The campaign lands back in continuous.
func (e *Engine) runLearning(campaignID ids.ID, trigger string) {
	e.mu.Lock()
	state, exists := e.states[campaignID]
	if !exists {
		e.mu.Unlock()
		return
	}
	e.setPhaseLocked(state, campaign.PhaseLearning)
	cycle := state.CycleSamples()
	stopped := state.Stopped
	hasStrategy := state.Strategy != nil
	e.mu.Unlock()

	targets, insights := rankPlatforms(cycle)

	now := e.clock.Now()
	snapshot := campaign.LearningSnapshot{
		Timestamp:       now,
		Insights:        insights,
		SamplesAtTime:   len(cycle),
		TargetPlatforms: append([]string(nil), targets...),
	}

	e.mu.Lock()
	state, exists = e.states[campaignID]
	if !exists {
		e.mu.Unlock()
		return
	}
	state.LearningHistory = append(state.LearningHistory, snapshot)
	state.LastMutationAt = now
	state.CycleStart = len(state.Samples)
	e.setPhaseLocked(state, campaign.PhaseContinuous)
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.LearningCycles.Inc()
	}
	if e.tracker != nil {
		e.tracker.TrackLearning(campaignID, trigger)
	}
	e.logActivity(campaign.ActivityEntry{
		Type:        "learning_cycle",
		Description: strings.Join(insights, "; "),
		CampaignID:  campaignID,
		Metadata: map[string]string{
			"trigger": trigger,
			"targets": strings.Join(targets, ","),
		},
	})

	e.log.Info("learning cycle complete",
		"campaign", campaignID,
		"trigger", trigger,
		"samples", len(cycle),
		"targets", targets)

	if stopped || !hasStrategy || len(targets) == 0 {
		return
	}

	items := e.runContentGeneration(campaignID, targets)
	e.scheduleDistribution(campaignID, items)
}

// rankPlatforms aggregates a cycle's samples by platform and returns
// the top platforms by mean engagement plus human-readable insights.
func rankPlatforms(samples []campaign.PerformanceSample) (targets []string, insights []string) {
	if len(samples) == 0 {
		return nil, []string{"no samples collected this cycle"}
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	performing := make(map[string]int)
	for _, s := range samples {
		sums[s.Platform] += s.EngagementRatio
		counts[s.Platform]++
		if s.Classification == campaign.ClassPerforming {
			performing[s.Platform]++
		}
	}

	platforms := make([]string, 0, len(sums))
	for p := range sums {
		platforms = append(platforms, p)
	}
	sort.Slice(platforms, func(i, j int) bool {
		mi := sums[platforms[i]] / float64(counts[platforms[i]])
		mj := sums[platforms[j]] / float64(counts[platforms[j]])
		if mi != mj {
			return mi > mj
		}
		return platforms[i] < platforms[j]
	})

	for _, p := range platforms {
		mean := sums[p] / float64(counts[p])
		insights = append(insights, fmt.Sprintf(
			"%s: mean engagement %.4f over %d samples (%d performing)",
			p, mean, counts[p], performing[p]))
	}

	n := learningTargetsLimit
	if n > len(platforms) {
		n = len(platforms)
	}
	return platforms[:n], insights
}

// deviationDetected reports whether the most recent samples diverge
// from the samples that preceded them by more than the ratio bound.
// It needs at least deviationMinSamples samples overall and
// deviationMinPrior samples in the comparison window.
func deviationDetected(samples []campaign.PerformanceSample) bool {
	if len(samples) < deviationMinSamples {
		return false
	}

	recent := samples[len(samples)-deviationWindow:]
	priorEnd := len(samples) - deviationWindow
	priorStart := priorEnd - deviationWindow
	if priorStart < 0 {
		priorStart = 0
	}
	prior := samples[priorStart:priorEnd]
	if len(prior) < deviationMinPrior {
		return false
	}

	priorMean := meanEngagement(prior)
	if priorMean == 0 {
		return false
	}
	recentMean := meanEngagement(recent)

	delta := recentMean - priorMean
	if delta < 0 {
		delta = -delta
	}
	return delta/priorMean > deviationRatioBound
}

func meanEngagement(samples []campaign.PerformanceSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s.EngagementRatio
	}
	return sum / float64(len(samples))
}
