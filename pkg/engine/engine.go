// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package engine implements the campaign lifecycle coordinator: a
// single-process state machine that drives each campaign through
// strategy, content generation, distribution, feedback and learning,
// with all timing routed through one scheduler.
package engine

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/analytics"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/budget"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/campaign"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/generation"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/ids"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/log"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/metric"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/sampler"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/schedule"
)

var (
	ErrCampaignActive = errors.New("campaign already has an active lifecycle")
)

const (
	defaultGenerationTimeout = 60 * time.Second

	// A campaign sitting in a pre-feedback phase this long is stuck;
	// the hourly liveness tick reports it.
	stuckPhaseThreshold = 2 * time.Hour
)

// ContentStore persists content items
type ContentStore interface {
	CreateItem(ctx context.Context, item *campaign.ContentItem) error
	Item(ctx context.Context, id ids.ID) (*campaign.ContentItem, error)
	ItemsByCampaign(ctx context.Context, campaignID ids.ID) ([]campaign.ContentItem, error)
	MarkScheduled(ctx context.Context, id ids.ID, at time.Time) error
	MarkPublished(ctx context.Context, id ids.ID, at time.Time) error
	MarkPaused(ctx context.Context, id ids.ID) error
	PauseScheduled(ctx context.Context, campaignID ids.ID) (int, error)
}

// MetricsStore persists performance samples
type MetricsStore interface {
	AppendSample(ctx context.Context, campaignID ids.ID, sample campaign.PerformanceSample) error
}

// ActivityLog records observability entries; callers treat it as
// fire-and-forget
type ActivityLog interface {
	AppendActivity(ctx context.Context, entry campaign.ActivityEntry) error
}

// Config wires the coordinator's collaborators
type Config struct {
	Scheduler *schedule.Scheduler
	Clock     schedule.Clock
	Generator generation.Generator
	Sampler   sampler.Sampler
	Content   ContentStore
	Samples   MetricsStore
	Activity  ActivityLog
	Tracker   *analytics.Tracker
	Budgets   *budget.Manager
	Metrics   *metric.Metrics

	GenerationTimeout time.Duration
	RandSeed          int64
	Logger            log.Logger
}

// Engine is the campaign lifecycle coordinator. Construct one per
// process (or per test); there is no package-level singleton.
type Engine struct {
	mu     sync.RWMutex
	states map[ids.ID]*campaign.LifecycleState

	sched      *schedule.Scheduler
	clock      schedule.Clock
	generator  generation.Generator
	sampler    sampler.Sampler
	content    ContentStore
	samples    MetricsStore
	activity   ActivityLog
	tracker    *analytics.Tracker
	budgets    *budget.Manager
	metrics    *metric.Metrics
	genTimeout time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand

	log log.Logger
}

// New creates a coordinator and registers it as the scheduler's handler
func New(cfg Config) *Engine {
	timeout := cfg.GenerationTimeout
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	seed := cfg.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoOp()
	}

	e := &Engine{
		states:     make(map[ids.ID]*campaign.LifecycleState),
		sched:      cfg.Scheduler,
		clock:      cfg.Clock,
		generator:  cfg.Generator,
		sampler:    cfg.Sampler,
		content:    cfg.Content,
		samples:    cfg.Samples,
		activity:   cfg.Activity,
		tracker:    cfg.Tracker,
		budgets:    cfg.Budgets,
		metrics:    cfg.Metrics,
		genTimeout: timeout,
		rng:        rand.New(rand.NewSource(seed)),
		log:        logger,
	}

	e.sched.SetHandler(e.handleEvent)
	return e
}

// InitializeCampaign seeds lifecycle state and arms the strategy phase.
// Fire-and-forget: the lifecycle advances via scheduled events.
func (e *Engine) InitializeCampaign(rec campaign.Record) error {
	now := e.clock.Now()

	e.mu.Lock()
	if _, exists := e.states[rec.ID]; exists {
		e.mu.Unlock()
		return ErrCampaignActive
	}
	state := &campaign.LifecycleState{
		CampaignID:         rec.ID,
		Phase:              campaign.PhaseInitializing,
		PhaseEnteredAt:     now,
		ProductDescription: rec.ProductDescription,
		Tone:               rec.Tone,
		Platforms:          append([]string(nil), rec.Platforms...),
		UserID:             rec.UserID,
		LastMutationAt:     now,
	}
	e.states[rec.ID] = state
	e.mu.Unlock()

	if e.tracker != nil {
		e.tracker.TrackCampaign(rec.ID)
	}
	if e.metrics != nil {
		e.metrics.CampaignsInitialized.Inc()
		e.metrics.CampaignsByPhase.WithLabelValues(string(campaign.PhaseInitializing)).Inc()
	}
	e.logActivity(campaign.ActivityEntry{
		Type:        "campaign_initialized",
		Description: "campaign lifecycle started",
		CampaignID:  rec.ID,
		Metadata:    map[string]string{"user": rec.UserID},
	})

	e.sched.Schedule(schedule.Event{
		FireAt:     now,
		Kind:       schedule.KindStrategy,
		CampaignID: rec.ID,
	})

	e.log.Info("campaign initialized", "campaign", rec.ID, "platforms", rec.Platforms)
	return nil
}

// EmergencyStop forces a campaign into the safe continuous phase,
// cancels pending publishes and pauses scheduled items. Armed feedback
// sweeps keep firing; post-stop samples are still recorded.
// Unknown campaigns are a no-op.
func (e *Engine) EmergencyStop(campaignID ids.ID, reason, userID string) {
	e.mu.Lock()
	state, exists := e.states[campaignID]
	if !exists {
		e.mu.Unlock()
		e.log.Debug("emergency stop for unknown campaign", "campaign", campaignID)
		return
	}
	state.Stopped = true
	e.setPhaseLocked(state, campaign.PhaseContinuous)
	e.mu.Unlock()

	cancelled := e.sched.Cancel(campaignID, schedule.KindPublish)

	paused, err := e.content.PauseScheduled(context.Background(), campaignID)
	if err != nil {
		e.log.Error("pause scheduled items", "campaign", campaignID, "error", err)
	}

	if e.tracker != nil {
		e.tracker.TrackStop(campaignID, reason)
	}
	if e.metrics != nil {
		e.metrics.EmergencyStops.Inc()
	}
	e.logActivity(campaign.ActivityEntry{
		Type:        "emergency_stop",
		Description: reason,
		CampaignID:  campaignID,
		Metadata:    map[string]string{"user": userID},
	})

	e.log.Warn("emergency stop",
		"campaign", campaignID,
		"reason", reason,
		"cancelled_events", cancelled,
		"paused_items", paused)
}

// EngineStatus returns a snapshot of a campaign's lifecycle state
func (e *Engine) EngineStatus(campaignID ids.ID) (*campaign.LifecycleState, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	state, exists := e.states[campaignID]
	if !exists {
		return nil, false
	}
	return state.Clone(), true
}

// ActiveCampaigns returns the ids of campaigns with lifecycle state
func (e *Engine) ActiveCampaigns() []ids.ID {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]ids.ID, 0, len(e.states))
	for id := range e.states {
		out = append(out, id)
	}
	return out
}

// StartSystemTicks arms the process-wide daily sweep and hourly
// liveness events
func (e *Engine) StartSystemTicks() {
	now := e.clock.Now()
	e.sched.Schedule(schedule.Event{FireAt: now.Add(24 * time.Hour), Kind: schedule.KindDailySweep})
	e.sched.Schedule(schedule.Event{FireAt: now.Add(time.Hour), Kind: schedule.KindLiveness})
}

// handleEvent is the scheduler's single dispatch point
func (e *Engine) handleEvent(ev schedule.Event) {
	switch ev.Kind {
	case schedule.KindStrategy:
		e.handleStrategy(ev)
	case schedule.KindPublish:
		e.handlePublish(ev)
	case schedule.KindSample:
		e.handleSample(ev)
	case schedule.KindDailySweep:
		e.handleDailySweep()
	case schedule.KindLiveness:
		e.handleLiveness()
	default:
		e.log.Warn("unknown event kind", "kind", ev.Kind)
	}
}

func (e *Engine) handleDailySweep() {
	e.mu.RLock()
	due := make([]ids.ID, 0, len(e.states))
	for id, state := range e.states {
		if state.Stopped {
			continue
		}
		if state.Phase == campaign.PhaseContinuous || state.Phase == campaign.PhaseFeedback {
			due = append(due, id)
		}
	}
	e.mu.RUnlock()

	e.log.Info("daily sweep", "campaigns", len(due))
	for _, id := range due {
		e.runLearning(id, "daily_sweep")
	}

	e.sched.Schedule(schedule.Event{
		FireAt: e.clock.Now().Add(24 * time.Hour),
		Kind:   schedule.KindDailySweep,
	})
}

func (e *Engine) handleLiveness() {
	now := e.clock.Now()

	e.mu.RLock()
	counts := make(map[campaign.Phase]int)
	stuck := 0
	for _, state := range e.states {
		counts[state.Phase]++
		switch state.Phase {
		case campaign.PhaseInitializing, campaign.PhaseStrategy,
			campaign.PhaseContentGen, campaign.PhaseDistribution:
			if now.Sub(state.PhaseEnteredAt) > stuckPhaseThreshold {
				stuck++
				e.log.Warn("campaign phase stuck",
					"campaign", state.CampaignID,
					"phase", state.Phase,
					"since", state.PhaseEnteredAt)
			}
		}
	}
	total := len(e.states)
	e.mu.RUnlock()

	e.log.Info("engine liveness",
		"campaigns", total,
		"stuck", stuck,
		"pending_events", e.sched.Pending())

	e.sched.Schedule(schedule.Event{
		FireAt: now.Add(time.Hour),
		Kind:   schedule.KindLiveness,
	})
}

// setPhaseLocked transitions a campaign's phase. Caller holds e.mu.
func (e *Engine) setPhaseLocked(state *campaign.LifecycleState, phase campaign.Phase) {
	if state.Phase == phase {
		return
	}
	if e.metrics != nil {
		e.metrics.CampaignsByPhase.WithLabelValues(string(state.Phase)).Dec()
		e.metrics.CampaignsByPhase.WithLabelValues(string(phase)).Inc()
	}
	e.log.Debug("phase transition",
		"campaign", state.CampaignID,
		"from", state.Phase,
		"to", phase)
	state.Phase = phase
	state.PhaseEnteredAt = e.clock.Now()

	if e.tracker != nil {
		e.tracker.TrackPhase(state.CampaignID, phase)
	}
}

func (e *Engine) setPhase(campaignID ids.ID, phase campaign.Phase) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, exists := e.states[campaignID]
	if !exists {
		return false
	}
	e.setPhaseLocked(state, phase)
	return true
}

// logActivity appends to the activity sink, fire-and-forget
func (e *Engine) logActivity(entry campaign.ActivityEntry) {
	entry.CreatedAt = e.clock.Now()
	if err := e.activity.AppendActivity(context.Background(), entry); err != nil {
		e.log.Warn("activity append failed", "type", entry.Type, "error", err)
	}
}

func (e *Engine) randFloat() float64 {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Float64()
}

func (e *Engine) genContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), e.genTimeout)
}
