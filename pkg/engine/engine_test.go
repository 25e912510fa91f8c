// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/arielsacagiu/AutoMarketerTop/internal/testing/memstore"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/analytics"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/budget"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/campaign"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/generation"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/ids"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/log"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/policy"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/sampler"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/schedule"
)

type failingGenerator struct{}

func (failingGenerator) GenerateStrategy(context.Context, generation.StrategyRequest) (*campaign.Strategy, error) {
	return nil, errors.New("model unavailable")
}

func (failingGenerator) GenerateContent(context.Context, generation.ContentRequest) ([]campaign.ContentVariation, error) {
	return nil, errors.New("model unavailable")
}

// flatSampler returns the same engagement ratio on every sweep so tests
// that depend on the absence of deviations are deterministic.
type flatSampler struct {
	clock      schedule.Clock
	engagement float64
}

func (f flatSampler) Sample(contentID ids.ID, platform string) campaign.PerformanceSample {
	base := policy.BaselineFor(platform)
	return campaign.PerformanceSample{
		ContentID:       contentID,
		Platform:        platform,
		Timestamp:       f.clock.Now(),
		Views:           base.Views,
		Clicks:          base.Clicks,
		EngagementRatio: f.engagement,
		Classification:  campaign.Classify(f.engagement, base.Engagement),
	}
}

// shiftSampler is a flatSampler whose level can be moved mid-test
type shiftSampler struct {
	mu         sync.Mutex
	clock      schedule.Clock
	engagement float64
}

func (f *shiftSampler) set(v float64) {
	f.mu.Lock()
	f.engagement = v
	f.mu.Unlock()
}

func (f *shiftSampler) Sample(contentID ids.ID, platform string) campaign.PerformanceSample {
	f.mu.Lock()
	v := f.engagement
	f.mu.Unlock()

	base := policy.BaselineFor(platform)
	return campaign.PerformanceSample{
		ContentID:       contentID,
		Platform:        platform,
		Timestamp:       f.clock.Now(),
		Views:           base.Views,
		Clicks:          base.Clicks,
		EngagementRatio: v,
		Classification:  campaign.Classify(v, base.Engagement),
	}
}

type rig struct {
	engine  *Engine
	sched   *schedule.Scheduler
	clock   *schedule.ManualClock
	store   *memstore.Store
	tracker *analytics.Tracker
	budgets *budget.Manager
	start   time.Time
}

func newRig(t *testing.T, gen generation.Generator) *rig {
	return newRigSampled(t, gen, func(c schedule.Clock) sampler.Sampler {
		return sampler.NewSynthetic(c, 7)
	})
}

func newRigSampled(t *testing.T, gen generation.Generator, mk func(schedule.Clock) sampler.Sampler) *rig {
	t.Helper()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := schedule.NewManualClock(start)
	sched := schedule.New(clock, log.NoOp())
	store := memstore.New()
	tracker := analytics.NewTracker()
	budgets := budget.NewManager(log.NoOp())

	eng := New(Config{
		Scheduler: sched,
		Clock:     clock,
		Generator: gen,
		Sampler:   mk(clock),
		Content:   store,
		Samples:   store,
		Activity:  store,
		Tracker:   tracker,
		Budgets:   budgets,
		RandSeed:  11,
		Logger:    log.NoOp(),
	})

	return &rig{
		engine:  eng,
		sched:   sched,
		clock:   clock,
		store:   store,
		tracker: tracker,
		budgets: budgets,
		start:   start,
	}
}

func linkedinCampaign() campaign.Record {
	return campaign.Record{
		ID:                 ids.New(),
		Name:               "launch",
		ProductDescription: "An AI assistant for accounting teams",
		Tone:               "confident",
		Platforms:          []string{"linkedin"},
		UserID:             "user-1",
	}
}

func TestInitializeCampaignRejectsDuplicates(t *testing.T) {
	require := require.New(t)
	r := newRig(t, generation.NewStatic())

	rec := linkedinCampaign()
	require.NoError(r.engine.InitializeCampaign(rec))
	require.ErrorIs(r.engine.InitializeCampaign(rec), ErrCampaignActive)

	require.Len(r.engine.ActiveCampaigns(), 1)
}

func TestStrategyPhaseReachesFeedback(t *testing.T) {
	require := require.New(t)
	r := newRig(t, generation.NewStatic())

	rec := linkedinCampaign()
	require.NoError(r.engine.InitializeCampaign(rec))

	r.sched.Advance(time.Millisecond)

	state, ok := r.engine.EngineStatus(rec.ID)
	require.True(ok)
	require.Equal(campaign.PhaseFeedback, state.Phase)
	require.NotNil(state.Strategy)
	require.NotEmpty(state.Strategy.ValueProposition)

	// One platform, one content type, two variations
	items := r.store.ItemsByStatus(rec.ID, campaign.StatusScheduled)
	require.Len(items, 2)
	require.Equal(2, r.sched.Pending())
}

func TestDistributionJitterBounds(t *testing.T) {
	require := require.New(t)
	r := newRig(t, generation.NewStatic())

	rec := linkedinCampaign()
	require.NoError(r.engine.InitializeCampaign(rec))
	r.sched.Advance(time.Millisecond)

	// LinkedIn base delay is 15m; jitter keeps it in [7.5m, 22.5m)
	lo := r.start.Add(time.Duration(float64(15*time.Minute) * 0.5))
	hi := r.start.Add(time.Duration(float64(15*time.Minute) * 1.5))
	for _, item := range r.store.ItemsByStatus(rec.ID, campaign.StatusScheduled) {
		require.NotNil(item.ScheduledAt)
		require.False(item.ScheduledAt.Before(lo), "scheduled before jitter window: %v", item.ScheduledAt)
		require.True(item.ScheduledAt.Before(hi), "scheduled past jitter window: %v", item.ScheduledAt)
	}
}

func TestPublishArmsCooldownSample(t *testing.T) {
	require := require.New(t)
	r := newRig(t, generation.NewStatic())

	rec := linkedinCampaign()
	require.NoError(r.engine.InitializeCampaign(rec))
	r.sched.Advance(time.Millisecond)

	// All publish jitter lands inside 22.5m
	r.sched.Advance(30 * time.Minute)
	published := r.store.ItemsByStatus(rec.ID, campaign.StatusPublished)
	require.Len(published, 2)

	// First samples fire 45m after each publish
	state, _ := r.engine.EngineStatus(rec.ID)
	require.Empty(state.Samples)

	r.sched.Advance(70 * time.Minute)
	state, _ = r.engine.EngineStatus(rec.ID)
	require.Len(state.Samples, 2)
	for _, s := range state.Samples {
		require.Equal("linkedin", s.Platform)
		require.Positive(s.Views)
	}
}

func TestLearningWaitsForMutationWindow(t *testing.T) {
	require := require.New(t)
	r := newRigSampled(t, generation.NewStatic(), func(c schedule.Clock) sampler.Sampler {
		return flatSampler{clock: c, engagement: 0.10}
	})

	rec := linkedinCampaign()
	require.NoError(r.engine.InitializeCampaign(rec))
	r.sched.Advance(time.Millisecond)

	// Four sweeps per item land inside the first seven hours. The
	// sample threshold is met long before the 24h mutation window
	// elapses, so with a flat series no learning runs yet.
	r.sched.Advance(12 * time.Hour)
	state, _ := r.engine.EngineStatus(rec.ID)
	require.GreaterOrEqual(len(state.Samples), 3)
	require.Empty(state.LearningHistory)
	require.Zero(r.tracker.LearningCycles.Load())

	// The last sweep of the chain fires past the window and carries
	// the sample-threshold trigger through.
	r.sched.Advance(20 * time.Hour)
	state, _ = r.engine.EngineStatus(rec.ID)
	require.Len(state.LearningHistory, 1)
	first := state.LearningHistory[0]
	require.GreaterOrEqual(first.SamplesAtTime, 3)
	require.Equal([]string{"linkedin"}, first.TargetPlatforms)
	require.True(state.LastMutationAt.After(r.start.Add(24*time.Hour)))

	entries := r.store.ActivityByType("learning_cycle")
	require.Len(entries, 1)
	require.Equal("sample_threshold", entries[0].Metadata["trigger"])

	// Learning re-enters content generation for the target platforms
	items, err := r.store.ItemsByCampaign(context.Background(), rec.ID)
	require.NoError(err)
	require.Greater(len(items), 2)
	require.GreaterOrEqual(r.tracker.LearningCycles.Load(), uint64(1))
}

func TestDeviationTriggersLearningEarly(t *testing.T) {
	require := require.New(t)
	var smp *shiftSampler
	r := newRigSampled(t, generation.NewStatic(), func(c schedule.Clock) sampler.Sampler {
		smp = &shiftSampler{clock: c, engagement: 0.10}
		return smp
	})

	rec := linkedinCampaign()
	require.NoError(r.engine.InitializeCampaign(rec))
	r.sched.Advance(time.Millisecond)

	// Publishes plus the first three sweeps per item: six stable samples.
	r.sched.Advance(6 * time.Hour)
	state, _ := r.engine.EngineStatus(rec.ID)
	require.Len(state.Samples, 6)
	require.Empty(state.LearningHistory)

	// Engagement collapses. The next sweep window diverges from the
	// prior one by far more than half, which is the early path past
	// the mutation window.
	smp.set(0.02)
	r.sched.Advance(4 * time.Hour)

	state, _ = r.engine.EngineStatus(rec.ID)
	require.NotEmpty(state.LearningHistory)
	require.True(state.LastMutationAt.Before(r.start.Add(24 * time.Hour)))

	entries := r.store.ActivityByType("learning_cycle")
	require.NotEmpty(entries)
	require.Equal("deviation", entries[0].Metadata["trigger"])
}

func TestLongRunStaysBounded(t *testing.T) {
	require := require.New(t)
	r := newRigSampled(t, generation.NewStatic(), func(c schedule.Clock) sampler.Sampler {
		return flatSampler{clock: c, engagement: 0.10}
	})

	rec := linkedinCampaign()
	require.NoError(r.engine.InitializeCampaign(rec))
	r.engine.StartSystemTicks()
	r.sched.Advance(time.Millisecond)

	// Ten simulated days. Learning runs on the daily cadence, so the
	// content pool grows linearly with the number of cycles rather
	// than compounding off its own samples.
	r.sched.Advance(10 * 24 * time.Hour)

	cycles := r.tracker.LearningCycles.Load()
	require.GreaterOrEqual(cycles, uint64(5))
	require.LessOrEqual(cycles, uint64(15))

	items, err := r.store.ItemsByCampaign(context.Background(), rec.ID)
	require.NoError(err)
	require.LessOrEqual(len(items), 40)

	state, _ := r.engine.EngineStatus(rec.ID)
	require.LessOrEqual(len(state.Samples), 250)
	require.Less(r.sched.Pending(), 100)
}

func TestSweepChainFollowsOffsetTable(t *testing.T) {
	require := require.New(t)
	r := newRigSampled(t, generation.NewStatic(), func(c schedule.Clock) sampler.Sampler {
		return flatSampler{clock: c, engagement: 0.10}
	})

	rec := linkedinCampaign()
	require.NoError(r.engine.InitializeCampaign(rec))
	r.sched.Advance(time.Millisecond)
	r.sched.Advance(3 * 24 * time.Hour)

	items, err := r.store.ItemsByCampaign(context.Background(), rec.ID)
	require.NoError(err)

	// Earliest-published item; its sweep chain is long done after
	// three days.
	var item *campaign.ContentItem
	for i := range items {
		if items[i].PublishedAt == nil {
			continue
		}
		if item == nil || items[i].PublishedAt.Before(*item.PublishedAt) {
			item = &items[i]
		}
	}
	require.NotNil(item)
	published := *item.PublishedAt

	state, _ := r.engine.EngineStatus(rec.ID)
	var got []time.Time
	for _, s := range state.Samples {
		if s.ContentID == item.ID {
			got = append(got, s.Timestamp)
		}
	}

	// Cooldown 45m, then sweeps at +120m, +120m, +120m, +1440m, then
	// the chain stops.
	want := []time.Time{
		published.Add(45 * time.Minute),
		published.Add(165 * time.Minute),
		published.Add(285 * time.Minute),
		published.Add(405 * time.Minute),
		published.Add(1845 * time.Minute),
	}
	require.Len(got, len(want))
	for i := range want {
		require.True(want[i].Equal(got[i]), "sweep %d fired at %v, want %v", i, got[i], want[i])
	}
}

func TestEmergencyStopCancelsPublishes(t *testing.T) {
	require := require.New(t)
	r := newRig(t, generation.NewStatic())

	rec := linkedinCampaign()
	require.NoError(r.engine.InitializeCampaign(rec))
	r.sched.Advance(time.Millisecond)

	require.Len(r.store.ItemsByStatus(rec.ID, campaign.StatusScheduled), 2)

	r.engine.EmergencyStop(rec.ID, "off-brand output", "user-1")

	state, ok := r.engine.EngineStatus(rec.ID)
	require.True(ok)
	require.True(state.Stopped)
	require.Equal(campaign.PhaseContinuous, state.Phase)

	require.Empty(r.store.ItemsByStatus(rec.ID, campaign.StatusScheduled))
	require.Len(r.store.ItemsByStatus(rec.ID, campaign.StatusPaused), 2)

	// Nothing publishes, ever
	r.sched.Advance(48 * time.Hour)
	require.Empty(r.store.ItemsByStatus(rec.ID, campaign.StatusPublished))

	require.Equal(uint64(1), r.tracker.EmergencyStops.Load())
	require.Len(r.store.ActivityByType("emergency_stop"), 1)
}

func TestEmergencyStopUnknownCampaignIsNoop(t *testing.T) {
	require := require.New(t)
	r := newRig(t, generation.NewStatic())

	r.engine.EmergencyStop(ids.New(), "whatever", "")
	require.Zero(r.tracker.EmergencyStops.Load())
}

func TestFailedStrategyStaysInStrategyPhase(t *testing.T) {
	require := require.New(t)
	r := newRig(t, failingGenerator{})

	rec := linkedinCampaign()
	require.NoError(r.engine.InitializeCampaign(rec))
	r.sched.Advance(time.Millisecond)

	state, ok := r.engine.EngineStatus(rec.ID)
	require.True(ok)
	require.Equal(campaign.PhaseStrategy, state.Phase)
	require.Nil(state.Strategy)

	// No retry: the campaign stays put
	r.sched.Advance(6 * time.Hour)
	state, _ = r.engine.EngineStatus(rec.ID)
	require.Equal(campaign.PhaseStrategy, state.Phase)

	require.Len(r.store.ActivityByType("strategy_failed"), 1)
	items, err := r.store.ItemsByCampaign(context.Background(), rec.ID)
	require.NoError(err)
	require.Empty(items)
}

func TestBudgetExhaustionPausesItems(t *testing.T) {
	require := require.New(t)
	r := newRig(t, generation.NewStatic())

	rec := linkedinCampaign()
	require.NoError(r.budgets.SetBudget(rec.ID, decimal.NewFromInt(1)))
	require.NoError(r.engine.InitializeCampaign(rec))
	r.sched.Advance(time.Millisecond)

	// Every publish costs more than the budget allows
	require.Empty(r.store.ItemsByStatus(rec.ID, campaign.StatusScheduled))
	require.Len(r.store.ItemsByStatus(rec.ID, campaign.StatusPaused), 2)
	require.Len(r.store.ActivityByType("budget_exhausted"), 2)
	require.Zero(r.sched.Pending())

	state, _ := r.engine.EngineStatus(rec.ID)
	require.Equal(campaign.PhaseFeedback, state.Phase)
}

func TestDailySweepTriggersLearning(t *testing.T) {
	require := require.New(t)
	r := newRig(t, generation.NewStatic())

	rec := linkedinCampaign()
	require.NoError(r.engine.InitializeCampaign(rec))
	r.engine.StartSystemTicks()
	r.sched.Advance(time.Millisecond)

	r.sched.Advance(25 * time.Hour)

	sweepRuns := 0
	for _, entry := range r.store.ActivityByType("learning_cycle") {
		if entry.Metadata["trigger"] == "daily_sweep" {
			sweepRuns++
		}
	}
	require.GreaterOrEqual(sweepRuns, 1)

	// The sweep chain re-arms itself
	kinds := map[string]bool{}
	for _, entry := range r.store.Activity() {
		kinds[entry.Type] = true
	}
	require.True(kinds["campaign_initialized"])
}

func TestDeviationDetected(t *testing.T) {
	require := require.New(t)

	mk := func(ratios ...float64) []campaign.PerformanceSample {
		out := make([]campaign.PerformanceSample, len(ratios))
		for i, r := range ratios {
			out[i] = campaign.PerformanceSample{EngagementRatio: r}
		}
		return out
	}

	// Too few samples
	require.False(deviationDetected(mk(0.1, 0.1, 0.1, 0.1)))

	// Stable series
	require.False(deviationDetected(mk(0.10, 0.10, 0.10, 0.10, 0.10, 0.10)))

	// Recent window collapses against the prior one
	require.True(deviationDetected(mk(0.10, 0.10, 0.10, 0.02, 0.02, 0.02)))

	// Recent window spikes
	require.True(deviationDetected(mk(0.10, 0.10, 0.10, 0.20, 0.20, 0.20)))

	// Exactly five samples: prior window is only two samples
	require.True(deviationDetected(mk(0.10, 0.10, 0.02, 0.02, 0.02)))

	// A 50% shift is the boundary and does not trigger
	require.False(deviationDetected(mk(0.25, 0.25, 0.25, 0.375, 0.375, 0.375)))

	// Zero prior mean never divides
	require.False(deviationDetected(mk(0, 0, 0, 0.1, 0.1, 0.1)))
}

func TestEngineStatusUnknownCampaign(t *testing.T) {
	require := require.New(t)
	r := newRig(t, generation.NewStatic())

	_, ok := r.engine.EngineStatus(ids.New())
	require.False(ok)
	require.Empty(r.engine.ActiveCampaigns())
}
