// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package analytics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/campaign"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/ids"
)

// Tracker keeps in-process rollups of campaign performance for the
// dashboards. Persistent metrics live in storage; this is the
// real-time view.
type Tracker struct {
	// Real-time counters
	TotalCampaigns   atomic.Uint64
	TotalPublished   atomic.Uint64
	TotalSamples     atomic.Uint64
	TotalViews       atomic.Uint64
	TotalClicks      atomic.Uint64
	TotalConversions atomic.Uint64
	LearningCycles   atomic.Uint64
	EmergencyStops   atomic.Uint64

	mu        sync.RWMutex
	platforms map[string]*PlatformStats
	campaigns map[ids.ID]*CampaignStats

	// Event stream for the live dashboard feed
	Events chan Event
}

// PlatformStats tracks per-platform rollups
type PlatformStats struct {
	Platform        string
	Published       uint64
	Samples         uint64
	Views           uint64
	Clicks          uint64
	Conversions     uint64
	engagementSum   decimal.Decimal
	Performing      uint64
	Neutral         uint64
	Underperforming uint64
}

// MeanEngagement returns the mean engagement ratio seen on this platform
func (p *PlatformStats) MeanEngagement() decimal.Decimal {
	if p.Samples == 0 {
		return decimal.Zero
	}
	return p.engagementSum.Div(decimal.NewFromInt(int64(p.Samples))).Round(6)
}

// CampaignStats tracks per-campaign rollups
type CampaignStats struct {
	CampaignID  ids.ID
	Published   uint64
	Samples     uint64
	Views       uint64
	Clicks      uint64
	Conversions uint64
	LastPhase   campaign.Phase
}

// EventType identifies a dashboard event
type EventType string

const (
	EventCampaignInitialized EventType = "campaign_initialized"
	EventPhaseChange         EventType = "phase_change"
	EventContentPublished    EventType = "content_published"
	EventSampleCollected     EventType = "sample_collected"
	EventLearningCycle       EventType = "learning_cycle"
	EventEmergencyStop       EventType = "emergency_stop"
)

// Event is one entry on the live dashboard feed
type Event struct {
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	CampaignID ids.ID         `json:"campaign_id"`
	ContentID  ids.ID         `json:"content_id,omitempty"`
	Platform   string         `json:"platform,omitempty"`
	Phase      campaign.Phase `json:"phase,omitempty"`
	Detail     string         `json:"detail,omitempty"`
}

// NewTracker creates an analytics tracker
func NewTracker() *Tracker {
	return &Tracker{
		platforms: make(map[string]*PlatformStats),
		campaigns: make(map[ids.ID]*CampaignStats),
		Events:    make(chan Event, 4096),
	}
}

// TrackCampaign records a newly initialized campaign
func (t *Tracker) TrackCampaign(campaignID ids.ID) {
	t.TotalCampaigns.Add(1)

	t.mu.Lock()
	t.campaigns[campaignID] = &CampaignStats{CampaignID: campaignID, LastPhase: campaign.PhaseInitializing}
	t.mu.Unlock()

	t.emit(Event{Type: EventCampaignInitialized, Timestamp: time.Now(), CampaignID: campaignID})
}

// TrackPhase records a phase transition
func (t *Tracker) TrackPhase(campaignID ids.ID, phase campaign.Phase) {
	t.mu.Lock()
	if c, ok := t.campaigns[campaignID]; ok {
		c.LastPhase = phase
	}
	t.mu.Unlock()

	t.emit(Event{Type: EventPhaseChange, Timestamp: time.Now(), CampaignID: campaignID, Phase: phase})
}

// TrackPublish records a published content item
func (t *Tracker) TrackPublish(campaignID, contentID ids.ID, platform string) {
	t.TotalPublished.Add(1)

	t.mu.Lock()
	t.platformLocked(platform).Published++
	if c, ok := t.campaigns[campaignID]; ok {
		c.Published++
	}
	t.mu.Unlock()

	t.emit(Event{
		Type:       EventContentPublished,
		Timestamp:  time.Now(),
		CampaignID: campaignID,
		ContentID:  contentID,
		Platform:   platform,
	})
}

// TrackSample records a collected performance sample
func (t *Tracker) TrackSample(campaignID ids.ID, s campaign.PerformanceSample) {
	t.TotalSamples.Add(1)
	t.TotalViews.Add(uint64(s.Views))
	t.TotalClicks.Add(uint64(s.Clicks))
	t.TotalConversions.Add(uint64(s.Conversions))

	t.mu.Lock()
	p := t.platformLocked(s.Platform)
	p.Samples++
	p.Views += uint64(s.Views)
	p.Clicks += uint64(s.Clicks)
	p.Conversions += uint64(s.Conversions)
	p.engagementSum = p.engagementSum.Add(decimal.NewFromFloat(s.EngagementRatio))
	switch s.Classification {
	case campaign.ClassPerforming:
		p.Performing++
	case campaign.ClassUnderperforming:
		p.Underperforming++
	default:
		p.Neutral++
	}
	if c, ok := t.campaigns[campaignID]; ok {
		c.Samples++
		c.Views += uint64(s.Views)
		c.Clicks += uint64(s.Clicks)
		c.Conversions += uint64(s.Conversions)
	}
	t.mu.Unlock()

	t.emit(Event{
		Type:       EventSampleCollected,
		Timestamp:  time.Now(),
		CampaignID: campaignID,
		ContentID:  s.ContentID,
		Platform:   s.Platform,
		Detail:     string(s.Classification),
	})
}

// TrackLearning records a completed learning cycle
func (t *Tracker) TrackLearning(campaignID ids.ID, detail string) {
	t.LearningCycles.Add(1)
	t.emit(Event{Type: EventLearningCycle, Timestamp: time.Now(), CampaignID: campaignID, Detail: detail})
}

// TrackStop records an emergency stop
func (t *Tracker) TrackStop(campaignID ids.ID, reason string) {
	t.EmergencyStops.Add(1)
	t.emit(Event{Type: EventEmergencyStop, Timestamp: time.Now(), CampaignID: campaignID, Detail: reason})
}

// Snapshot returns the real-time dashboard rollup
func (t *Tracker) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"total_campaigns":   t.TotalCampaigns.Load(),
		"total_published":   t.TotalPublished.Load(),
		"total_samples":     t.TotalSamples.Load(),
		"total_views":       t.TotalViews.Load(),
		"total_clicks":      t.TotalClicks.Load(),
		"total_conversions": t.TotalConversions.Load(),
		"learning_cycles":   t.LearningCycles.Load(),
		"emergency_stops":   t.EmergencyStops.Load(),
	}
}

// PlatformView is a serializable per-platform rollup
type PlatformView struct {
	Platform        string `json:"platform"`
	Published       uint64 `json:"published"`
	Samples         uint64 `json:"samples"`
	Views           uint64 `json:"views"`
	Clicks          uint64 `json:"clicks"`
	Conversions     uint64 `json:"conversions"`
	MeanEngagement  string `json:"mean_engagement"`
	Performing      uint64 `json:"performing"`
	Neutral         uint64 `json:"neutral"`
	Underperforming uint64 `json:"underperforming"`
}

// PlatformSnapshot returns per-platform rollups for the dashboard
func (t *Tracker) PlatformSnapshot() []PlatformView {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]PlatformView, 0, len(t.platforms))
	for _, p := range t.platforms {
		out = append(out, PlatformView{
			Platform:        p.Platform,
			Published:       p.Published,
			Samples:         p.Samples,
			Views:           p.Views,
			Clicks:          p.Clicks,
			Conversions:     p.Conversions,
			MeanEngagement:  p.MeanEngagement().String(),
			Performing:      p.Performing,
			Neutral:         p.Neutral,
			Underperforming: p.Underperforming,
		})
	}
	return out
}

// CampaignSnapshot returns one campaign's rollup
func (t *Tracker) CampaignSnapshot(campaignID ids.ID) (*CampaignStats, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.campaigns[campaignID]
	if !ok {
		return nil, false
	}
	cc := *c
	return &cc, true
}

func (t *Tracker) platformLocked(platform string) *PlatformStats {
	p, ok := t.platforms[platform]
	if !ok {
		p = &PlatformStats{Platform: platform, engagementSum: decimal.Zero}
		t.platforms[platform] = p
	}
	return p
}

// emit sends to the event stream, dropping when the buffer is full
func (t *Tracker) emit(ev Event) {
	select {
	case t.Events <- ev:
	default:
	}
}
