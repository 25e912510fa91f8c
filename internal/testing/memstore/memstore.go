// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package memstore provides in-memory store implementations for
// coordinator tests, mirroring the sqlite-backed stores.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/campaign"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/ids"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/storage"
)

// Store is an in-memory content, sample and activity store
type Store struct {
	mu       sync.RWMutex
	items    map[ids.ID]*campaign.ContentItem
	order    []ids.ID
	samples  map[ids.ID][]campaign.PerformanceSample
	activity []campaign.ActivityEntry
	nextID   int64
}

// New creates an empty store
func New() *Store {
	return &Store{
		items:   make(map[ids.ID]*campaign.ContentItem),
		samples: make(map[ids.ID][]campaign.PerformanceSample),
	}
}

// CreateItem stores a content item
func (s *Store) CreateItem(_ context.Context, item *campaign.ContentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID.IsEmpty() {
		item.ID = ids.New()
	}
	if item.Status == "" {
		item.Status = campaign.StatusDraft
	}
	clone := *item
	s.items[item.ID] = &clone
	s.order = append(s.order, item.ID)
	return nil
}

// Item fetches one content item
func (s *Store) Item(_ context.Context, id ids.ID) (*campaign.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *item
	return &clone, nil
}

// ItemsByCampaign lists a campaign's items in insertion order
func (s *Store) ItemsByCampaign(_ context.Context, campaignID ids.ID) ([]campaign.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []campaign.ContentItem
	for _, id := range s.order {
		if item := s.items[id]; item.CampaignID == campaignID {
			out = append(out, *item)
		}
	}
	return out, nil
}

// MarkScheduled moves an item to scheduled
func (s *Store) MarkScheduled(_ context.Context, id ids.ID, at time.Time) error {
	return s.setStatus(id, campaign.StatusScheduled, &at, nil)
}

// MarkPublished moves an item to published
func (s *Store) MarkPublished(_ context.Context, id ids.ID, at time.Time) error {
	return s.setStatus(id, campaign.StatusPublished, nil, &at)
}

// MarkPaused moves an item to paused
func (s *Store) MarkPaused(_ context.Context, id ids.ID) error {
	return s.setStatus(id, campaign.StatusPaused, nil, nil)
}

// PauseScheduled pauses every scheduled item for a campaign
func (s *Store) PauseScheduled(_ context.Context, campaignID ids.ID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, item := range s.items {
		if item.CampaignID == campaignID && item.Status == campaign.StatusScheduled {
			item.Status = campaign.StatusPaused
			n++
		}
	}
	return n, nil
}

func (s *Store) setStatus(id ids.ID, status campaign.ContentStatus, scheduledAt, publishedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return storage.ErrNotFound
	}
	item.Status = status
	if scheduledAt != nil {
		t := *scheduledAt
		item.ScheduledAt = &t
	}
	if publishedAt != nil {
		t := *publishedAt
		item.PublishedAt = &t
	}
	return nil
}

// AppendSample records one performance sample
func (s *Store) AppendSample(_ context.Context, campaignID ids.ID, sample campaign.PerformanceSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples[campaignID] = append(s.samples[campaignID], sample)
	return nil
}

// SamplesByCampaign lists a campaign's samples in recording order
func (s *Store) SamplesByCampaign(_ context.Context, campaignID ids.ID) ([]campaign.PerformanceSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]campaign.PerformanceSample(nil), s.samples[campaignID]...), nil
}

// AppendActivity records one activity entry
func (s *Store) AppendActivity(_ context.Context, entry campaign.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	entry.ID = s.nextID
	s.activity = append(s.activity, entry)
	return nil
}

// Activity returns every recorded activity entry, oldest first
func (s *Store) Activity() []campaign.ActivityEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]campaign.ActivityEntry(nil), s.activity...)
}

// ActivityByType filters the activity log by entry type
func (s *Store) ActivityByType(entryType string) []campaign.ActivityEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []campaign.ActivityEntry
	for _, e := range s.activity {
		if e.Type == entryType {
			out = append(out, e)
		}
	}
	return out
}

// ItemsByStatus returns a campaign's items in the given status
func (s *Store) ItemsByStatus(campaignID ids.ID, status campaign.ContentStatus) []campaign.ContentItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []campaign.ContentItem
	for _, id := range s.order {
		if item := s.items[id]; item.CampaignID == campaignID && item.Status == status {
			out = append(out, *item)
		}
	}
	return out
}
