// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/campaign"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/ids"
)

// CreateItem inserts a content item
func (s *Storage) CreateItem(ctx context.Context, item *campaign.ContentItem) error {
	if item.ID.IsEmpty() {
		item.ID = ids.New()
	}
	if item.Status == "" {
		item.Status = campaign.StatusDraft
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if item.Metadata == nil {
		item.Metadata = map[string]string{}
	}

	metadata, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO content_items (id, campaign_id, platform, type, title, body, metadata, status, scheduled_at, published_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID.String(), item.CampaignID.String(), item.Platform, item.Type,
		item.Title, item.Body, string(metadata), string(item.Status),
		nullableMillis(item.ScheduledAt), nullableMillis(item.PublishedAt),
		item.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert content item: %w", err)
	}
	return nil
}

// Item fetches one content item by id
func (s *Storage) Item(ctx context.Context, id ids.ID) (*campaign.ContentItem, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, campaign_id, platform, type, title, body, metadata, status, scheduled_at, published_at, created_at
FROM content_items WHERE id = ?`, id.String())
	return scanItem(row)
}

// ItemsByCampaign lists a campaign's content items, oldest first
func (s *Storage) ItemsByCampaign(ctx context.Context, campaignID ids.ID) ([]campaign.ContentItem, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, campaign_id, platform, type, title, body, metadata, status, scheduled_at, published_at, created_at
FROM content_items WHERE campaign_id = ? ORDER BY created_at ASC, id ASC`, campaignID.String())
	if err != nil {
		return nil, fmt.Errorf("query content items: %w", err)
	}
	defer rows.Close()

	var out []campaign.ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

// MarkScheduled moves a draft item to scheduled with its target time
func (s *Storage) MarkScheduled(ctx context.Context, id ids.ID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE content_items SET status = ?, scheduled_at = ? WHERE id = ?`,
		string(campaign.StatusScheduled), at.UnixMilli(), id.String())
	if err != nil {
		return fmt.Errorf("mark scheduled: %w", err)
	}
	return requireRow(res)
}

// MarkPublished moves an item to published with its publish time
func (s *Storage) MarkPublished(ctx context.Context, id ids.ID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE content_items SET status = ?, published_at = ? WHERE id = ?`,
		string(campaign.StatusPublished), at.UnixMilli(), id.String())
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return requireRow(res)
}

// MarkPaused moves one item to paused
func (s *Storage) MarkPaused(ctx context.Context, id ids.ID) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE content_items SET status = ? WHERE id = ?`,
		string(campaign.StatusPaused), id.String())
	if err != nil {
		return fmt.Errorf("mark paused: %w", err)
	}
	return requireRow(res)
}

// PauseScheduled moves all of a campaign's scheduled items to paused
// and returns how many were affected. Used by emergency stop.
func (s *Storage) PauseScheduled(ctx context.Context, campaignID ids.ID) (int, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE content_items SET status = ? WHERE campaign_id = ? AND status = ?`,
		string(campaign.StatusPaused), campaignID.String(), string(campaign.StatusScheduled))
	if err != nil {
		return 0, fmt.Errorf("pause scheduled: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func scanItem(row rowScanner) (*campaign.ContentItem, error) {
	var (
		item        campaign.ContentItem
		id          string
		campaignID  string
		metadata    string
		status      string
		scheduledAt sql.NullInt64
		publishedAt sql.NullInt64
		createdAt   int64
	)
	err := row.Scan(&id, &campaignID, &item.Platform, &item.Type, &item.Title,
		&item.Body, &metadata, &status, &scheduledAt, &publishedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan content item: %w", err)
	}

	item.ID = ids.ID(id)
	item.CampaignID = ids.ID(campaignID)
	item.Status = campaign.ContentStatus(status)
	item.ScheduledAt = millisPtr(scheduledAt)
	item.PublishedAt = millisPtr(publishedAt)
	item.CreatedAt = time.UnixMilli(createdAt).UTC()
	if err := json.Unmarshal([]byte(metadata), &item.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return &item, nil
}
