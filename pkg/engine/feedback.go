// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"context"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/campaign"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/policy"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/schedule"
)

// handlePublish fires when a scheduled item's publish time arrives.
// It marks the item published and arms the first feedback sweep at the
// platform's cooldown.
func (e *Engine) handlePublish(ev schedule.Event) {
	e.mu.RLock()
	state, exists := e.states[ev.CampaignID]
	stopped := exists && state.Stopped
	e.mu.RUnlock()
	if !exists || stopped {
		return
	}

	now := e.clock.Now()
	if err := e.content.MarkPublished(context.Background(), ev.ContentID, now); err != nil {
		e.log.Error("mark published", "content", ev.ContentID, "error", err)
		return
	}

	if e.tracker != nil {
		e.tracker.TrackPublish(ev.CampaignID, ev.ContentID, ev.Platform)
	}
	if e.metrics != nil {
		e.metrics.ItemsPublished.Inc()
	}
	e.logActivity(campaign.ActivityEntry{
		Type:        "content_published",
		Description: "content item published",
		CampaignID:  ev.CampaignID,
		Platform:    ev.Platform,
	})

	pol := policy.For(ev.Platform)
	e.sched.Schedule(schedule.Event{
		FireAt:     now.Add(pol.Cooldown),
		Kind:       schedule.KindSample,
		CampaignID: ev.CampaignID,
		ContentID:  ev.ContentID,
		Platform:   ev.Platform,
		SweepIndex: 0,
	})

	e.log.Debug("content published",
		"campaign", ev.CampaignID,
		"content", ev.ContentID,
		"platform", ev.Platform,
		"first_sample_at", now.Add(pol.Cooldown))
}

// handleSample collects one feedback sample, arms the next sweep from
// the platform's offset table and evaluates the learning trigger.
// Sample-count triggers respect the platform's mutation window so
// learning cycles stay at least that far apart; a deviation in the
// current cycle's samples is the only early path. Sweeps for stopped
// campaigns still append samples; only the learning trigger is
// suppressed.
func (e *Engine) handleSample(ev schedule.Event) {
	e.mu.RLock()
	_, exists := e.states[ev.CampaignID]
	e.mu.RUnlock()
	if !exists {
		return
	}

	sample := e.sampler.Sample(ev.ContentID, ev.Platform)

	e.mu.Lock()
	state, exists := e.states[ev.CampaignID]
	if !exists {
		e.mu.Unlock()
		return
	}
	state.Samples = append(state.Samples, sample)
	phase := state.Phase
	stopped := state.Stopped
	cycle := append([]campaign.PerformanceSample(nil), state.CycleSamples()...)
	sinceMutation := e.clock.Now().Sub(state.LastMutationAt)
	e.mu.Unlock()

	if err := e.samples.AppendSample(context.Background(), ev.CampaignID, sample); err != nil {
		e.log.Warn("persist sample", "campaign", ev.CampaignID, "error", err)
	}
	if e.tracker != nil {
		e.tracker.TrackSample(ev.CampaignID, sample)
	}
	if e.metrics != nil {
		e.metrics.SamplesCollected.Inc()
	}

	// Arm the next sweep before any learning pass. After the offset
	// table is exhausted no further sweeps are scheduled.
	pol := policy.For(ev.Platform)
	if ev.SweepIndex < len(pol.SweepOffsets) {
		e.sched.Schedule(schedule.Event{
			FireAt:     e.clock.Now().Add(pol.SweepOffsets[ev.SweepIndex]),
			Kind:       schedule.KindSample,
			CampaignID: ev.CampaignID,
			ContentID:  ev.ContentID,
			Platform:   ev.Platform,
			SweepIndex: ev.SweepIndex + 1,
		})
	}

	if stopped {
		return
	}

	switch phase {
	case campaign.PhaseFeedback:
		if deviationDetected(cycle) {
			e.runLearning(ev.CampaignID, "deviation")
		} else if len(cycle) >= learningSampleThreshold && sinceMutation >= pol.MutationWindow {
			e.runLearning(ev.CampaignID, "sample_threshold")
		}
	case campaign.PhaseContinuous:
		if deviationDetected(cycle) {
			e.runLearning(ev.CampaignID, "deviation")
		}
	}
}
