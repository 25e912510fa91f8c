// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package campaign

import (
	"time"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/ids"
)

// Phase is a named stage in a campaign's lifecycle
type Phase string

const (
	PhaseInitializing Phase = "initializing"
	PhaseStrategy     Phase = "strategy"
	PhaseContentGen   Phase = "content_gen"
	PhaseValidation   Phase = "validation"
	PhaseDistribution Phase = "distribution"
	PhaseFeedback     Phase = "feedback"
	PhaseLearning     Phase = "learning"
	PhaseContinuous   Phase = "continuous"
)

// Classification grades a sample's engagement against its platform baseline
type Classification string

const (
	ClassPerforming      Classification = "performing"
	ClassNeutral         Classification = "neutral"
	ClassUnderperforming Classification = "underperforming"
)

// Classify grades an engagement ratio against a platform baseline.
// Boundaries are strict: exactly 0.6x or 1.2x is neutral.
func Classify(engagement, baseline float64) Classification {
	if baseline <= 0 {
		return ClassNeutral
	}
	switch {
	case engagement > 1.2*baseline:
		return ClassPerforming
	case engagement < 0.6*baseline:
		return ClassUnderperforming
	default:
		return ClassNeutral
	}
}

// PerformanceSample is one feedback observation for a content item
type PerformanceSample struct {
	ContentID       ids.ID         `json:"content_id"`
	Platform        string         `json:"platform"`
	Timestamp       time.Time      `json:"timestamp"`
	Views           int64          `json:"views"`
	Clicks          int64          `json:"clicks"`
	EngagementRatio float64        `json:"engagement_ratio"`
	Conversions     int64          `json:"conversions"`
	Classification  Classification `json:"classification"`
}

// LearningSnapshot is one entry in a campaign's learning history
type LearningSnapshot struct {
	Timestamp       time.Time `json:"timestamp"`
	Insights        []string  `json:"insights"`
	SamplesAtTime   int       `json:"samples_at_time"`
	TargetPlatforms []string  `json:"target_platforms"`
}

// LifecycleState is the per-campaign state owned by the coordinator.
// It lives only for the campaign's active lifetime in this process;
// a restart loses any in-flight schedule.
type LifecycleState struct {
	CampaignID         ids.ID              `json:"campaign_id"`
	Phase              Phase               `json:"phase"`
	PhaseEnteredAt     time.Time           `json:"phase_entered_at"`
	ProductDescription string              `json:"product_description"`
	Tone               string              `json:"tone"`
	Platforms          []string            `json:"platforms"`
	UserID             string              `json:"user_id"`
	Strategy           *Strategy           `json:"strategy,omitempty"`
	LastMutationAt     time.Time           `json:"last_mutation_at"`
	CycleStart         int                 `json:"cycle_start"`
	Samples            []PerformanceSample `json:"samples"`
	LearningHistory    []LearningSnapshot  `json:"learning_history"`
	Stopped            bool                `json:"stopped"`
}

// CycleSamples returns the samples collected since the last mutation
func (s *LifecycleState) CycleSamples() []PerformanceSample {
	if s.CycleStart > len(s.Samples) {
		return nil
	}
	return s.Samples[s.CycleStart:]
}

// Clone returns a deep copy safe to hand outside the coordinator
func (s *LifecycleState) Clone() *LifecycleState {
	out := *s
	out.Platforms = append([]string(nil), s.Platforms...)
	out.Samples = append([]PerformanceSample(nil), s.Samples...)
	out.LearningHistory = make([]LearningSnapshot, len(s.LearningHistory))
	for i, h := range s.LearningHistory {
		hc := h
		hc.Insights = append([]string(nil), h.Insights...)
		hc.TargetPlatforms = append([]string(nil), h.TargetPlatforms...)
		out.LearningHistory[i] = hc
	}
	if s.Strategy != nil {
		sc := s.Strategy.Clone()
		out.Strategy = sc
	}
	return &out
}

// Strategy is the structured marketing strategy returned by generation
type Strategy struct {
	TargetAudience     string   `json:"target_audience"`
	ValueProposition   string   `json:"value_proposition"`
	KeyMessages        []string `json:"key_messages"`
	KPIs               []string `json:"kpis"`
	ContentThemes      []string `json:"content_themes"`
	CompetitorInsights []string `json:"competitor_insights"`
}

// Clone returns a deep copy of the strategy
func (s *Strategy) Clone() *Strategy {
	out := *s
	out.KeyMessages = append([]string(nil), s.KeyMessages...)
	out.KPIs = append([]string(nil), s.KPIs...)
	out.ContentThemes = append([]string(nil), s.ContentThemes...)
	out.CompetitorInsights = append([]string(nil), s.CompetitorInsights...)
	return &out
}

// ContentVariation is one generated piece of platform content
type ContentVariation struct {
	Platform string   `json:"platform"`
	Type     string   `json:"type"`
	Title    string   `json:"title,omitempty"`
	Body     string   `json:"body"`
	Hashtags []string `json:"hashtags,omitempty"`
	CTA      string   `json:"cta,omitempty"`
}

// ContentStatus is the publication state of a content item
type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusScheduled ContentStatus = "scheduled"
	StatusPublished ContentStatus = "published"
	StatusPaused    ContentStatus = "paused"
)

// ContentItem is a stored content record
type ContentItem struct {
	ID          ids.ID            `json:"id"`
	CampaignID  ids.ID            `json:"campaign_id"`
	Platform    string            `json:"platform"`
	Type        string            `json:"type"`
	Title       string            `json:"title,omitempty"`
	Body        string            `json:"body"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Status      ContentStatus     `json:"status"`
	ScheduledAt *time.Time        `json:"scheduled_at,omitempty"`
	PublishedAt *time.Time        `json:"published_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Record is a stored campaign
type Record struct {
	ID                 ids.ID    `json:"id"`
	Name               string    `json:"name"`
	ProductDescription string    `json:"product_description"`
	Tone               string    `json:"tone"`
	Platforms          []string  `json:"platforms"`
	UserID             string    `json:"user_id"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

// Campaign record statuses
const (
	RecordActive  = "active"
	RecordStopped = "stopped"
)

// ActivityEntry is one append-only observability record
type ActivityEntry struct {
	ID          int64             `json:"id,omitempty"`
	Type        string            `json:"type"`
	Description string            `json:"description"`
	CampaignID  ids.ID            `json:"campaign_id"`
	Platform    string            `json:"platform,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
