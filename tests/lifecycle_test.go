// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arielsacagiu/AutoMarketerTop/internal/testing/memstore"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/analytics"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/budget"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/campaign"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/engine"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/generation"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/ids"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/log"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/sampler"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/schedule"
)

// TestFullLifecycle walks a campaign through every phase of the
// coordinator on a manual clock: strategy, content generation,
// jittered distribution, feedback sweeps, learning and continuous
// operation, plus an emergency stop on a second campaign.
func TestFullLifecycle(t *testing.T) {
	require := require.New(t)
	logger := log.NoOp()

	// 1. Initialize core components
	t.Log("=== Phase 1: Initialize Components ===")

	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	clock := schedule.NewManualClock(start)
	sched := schedule.New(clock, logger)
	store := memstore.New()
	tracker := analytics.NewTracker()
	budgets := budget.NewManager(logger)

	coordinator := engine.New(engine.Config{
		Scheduler: sched,
		Clock:     clock,
		Generator: generation.NewStatic(),
		Sampler:   sampler.NewSynthetic(clock, 99),
		Content:   store,
		Samples:   store,
		Activity:  store,
		Tracker:   tracker,
		Budgets:   budgets,
		RandSeed:  17,
		Logger:    logger,
	})
	require.NotNil(coordinator)
	coordinator.StartSystemTicks()

	// 2. Launch a multi-platform campaign
	t.Log("=== Phase 2: Launch Campaign ===")

	rec := campaign.Record{
		ID:                 ids.New(),
		Name:               "spring launch",
		ProductDescription: "A scheduling tool for dental clinics",
		Tone:               "friendly",
		Platforms:          []string{"linkedin", "twitter", "medium"},
		UserID:             "owner-1",
	}
	require.NoError(coordinator.InitializeCampaign(rec))

	state, ok := coordinator.EngineStatus(rec.ID)
	require.True(ok)
	require.Equal(campaign.PhaseInitializing, state.Phase)

	// 3. Strategy and content generation run off the first tick
	t.Log("=== Phase 3: Strategy and Content Generation ===")

	sched.Advance(time.Millisecond)

	state, _ = coordinator.EngineStatus(rec.ID)
	require.Equal(campaign.PhaseFeedback, state.Phase)
	require.NotNil(state.Strategy)
	t.Logf("strategy: %s", state.Strategy.ValueProposition)

	// Three platforms, one content type each, two variations per type
	items, err := store.ItemsByCampaign(context.Background(), rec.ID)
	require.NoError(err)
	require.Len(items, 6)
	for _, item := range items {
		require.Equal(campaign.StatusScheduled, item.Status)
		require.NotNil(item.ScheduledAt)
	}

	// 4. Distribution publishes everything within its jitter window
	t.Log("=== Phase 4: Distribution ===")

	// Largest base delay is medium at 45m, jittered up to 67.5m
	sched.Advance(70 * time.Minute)
	published := store.ItemsByStatus(rec.ID, campaign.StatusPublished)
	require.GreaterOrEqual(len(published), 6)
	require.GreaterOrEqual(tracker.TotalPublished.Load(), uint64(6))

	// 5. Feedback sweeps fill the sample log
	t.Log("=== Phase 5: Feedback ===")

	sched.Advance(4 * time.Hour)
	state, _ = coordinator.EngineStatus(rec.ID)
	require.NotEmpty(state.Samples)
	t.Logf("collected %d samples", len(state.Samples))

	// 6. Learning fires once the mutation window opens; the daily
	// sweep at the 24h mark guarantees a first cycle.
	t.Log("=== Phase 6: Learning ===")

	sched.Advance(20 * time.Hour)
	state, _ = coordinator.EngineStatus(rec.ID)
	require.NotEmpty(state.LearningHistory)
	snapshot := state.LearningHistory[0]
	require.GreaterOrEqual(snapshot.SamplesAtTime, 3)
	require.NotEmpty(snapshot.TargetPlatforms)
	require.LessOrEqual(len(snapshot.TargetPlatforms), 2)
	t.Logf("learning targets: %v", snapshot.TargetPlatforms)

	// Mutation regenerates content for the target platforms only
	itemsAfter, err := store.ItemsByCampaign(context.Background(), rec.ID)
	require.NoError(err)
	require.Greater(len(itemsAfter), 6)

	// 7. The daily sweep keeps continuous campaigns moving
	t.Log("=== Phase 7: Continuous Operation ===")

	sched.Advance(30 * time.Hour)
	sweepRuns := 0
	for _, entry := range store.ActivityByType("learning_cycle") {
		if entry.Metadata["trigger"] == "daily_sweep" {
			sweepRuns++
		}
	}
	require.GreaterOrEqual(sweepRuns, 1)

	// 8. Emergency stop freezes a second campaign immediately
	t.Log("=== Phase 8: Emergency Stop ===")

	rec2 := campaign.Record{
		ID:                 ids.New(),
		Name:               "beta push",
		ProductDescription: "A time tracker for freelancers",
		Tone:               "casual",
		Platforms:          []string{"instagram"},
		UserID:             "owner-2",
	}
	require.NoError(coordinator.InitializeCampaign(rec2))
	sched.Advance(time.Millisecond)

	require.NotEmpty(store.ItemsByStatus(rec2.ID, campaign.StatusScheduled))
	coordinator.EmergencyStop(rec2.ID, "compliance review", "owner-2")

	state2, _ := coordinator.EngineStatus(rec2.ID)
	require.True(state2.Stopped)
	require.Equal(campaign.PhaseContinuous, state2.Phase)
	require.Empty(store.ItemsByStatus(rec2.ID, campaign.StatusScheduled))

	// The stopped campaign never publishes, the first keeps running
	before := len(store.ItemsByStatus(rec.ID, campaign.StatusPublished))
	sched.Advance(24 * time.Hour)
	require.Empty(store.ItemsByStatus(rec2.ID, campaign.StatusPublished))
	require.GreaterOrEqual(len(store.ItemsByStatus(rec.ID, campaign.StatusPublished)), before)

	require.Equal(uint64(1), tracker.EmergencyStops.Load())
	t.Logf("dashboard: %v", tracker.Snapshot())
}
