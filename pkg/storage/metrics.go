// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/campaign"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/ids"
)

// AppendSample persists one performance sample
func (s *Storage) AppendSample(ctx context.Context, campaignID ids.ID, sample campaign.PerformanceSample) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO performance_metrics (campaign_id, content_id, platform, views, clicks, engagement_rate, conversions, classification, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		campaignID.String(), sample.ContentID.String(), sample.Platform,
		sample.Views, sample.Clicks, sample.EngagementRatio, sample.Conversions,
		string(sample.Classification), sample.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert performance sample: %w", err)
	}
	return nil
}

// SamplesByCampaign lists a campaign's samples in recording order
func (s *Storage) SamplesByCampaign(ctx context.Context, campaignID ids.ID) ([]campaign.PerformanceSample, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT content_id, platform, views, clicks, engagement_rate, conversions, classification, recorded_at
FROM performance_metrics WHERE campaign_id = ? ORDER BY id ASC`, campaignID.String())
	if err != nil {
		return nil, fmt.Errorf("query performance samples: %w", err)
	}
	defer rows.Close()

	var out []campaign.PerformanceSample
	for rows.Next() {
		var (
			sample         campaign.PerformanceSample
			contentID      string
			classification string
			recordedAt     int64
		)
		if err := rows.Scan(&contentID, &sample.Platform, &sample.Views, &sample.Clicks,
			&sample.EngagementRatio, &sample.Conversions, &classification, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan performance sample: %w", err)
		}
		sample.ContentID = ids.ID(contentID)
		sample.Classification = campaign.Classification(classification)
		sample.Timestamp = time.UnixMilli(recordedAt).UTC()
		out = append(out, sample)
	}
	return out, rows.Err()
}

// AppendActivity persists one activity entry. The activity log is
// fire-and-forget for callers; errors are returned for tests but the
// coordinator only logs them.
func (s *Storage) AppendActivity(ctx context.Context, entry campaign.ActivityEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Metadata == nil {
		entry.Metadata = map[string]string{}
	}
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("marshal activity metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO activity_log (type, description, campaign_id, platform, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Type, entry.Description, entry.CampaignID.String(),
		entry.Platform, string(metadata), entry.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert activity entry: %w", err)
	}
	return nil
}

// ActivityByCampaign lists a campaign's activity, newest first
func (s *Storage) ActivityByCampaign(ctx context.Context, campaignID ids.ID, limit int) ([]campaign.ActivityEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, type, description, campaign_id, platform, metadata, created_at
FROM activity_log WHERE campaign_id = ? ORDER BY id DESC LIMIT ?`, campaignID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var out []campaign.ActivityEntry
	for rows.Next() {
		var (
			entry      campaign.ActivityEntry
			campaignID string
			metadata   string
			createdAt  int64
		)
		if err := rows.Scan(&entry.ID, &entry.Type, &entry.Description,
			&campaignID, &entry.Platform, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("scan activity entry: %w", err)
		}
		entry.CampaignID = ids.ID(campaignID)
		entry.CreatedAt = time.UnixMilli(createdAt).UTC()
		if err := json.Unmarshal([]byte(metadata), &entry.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal activity metadata: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
