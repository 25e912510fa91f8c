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

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("not found")

// CreateCampaign inserts a campaign record
func (s *Storage) CreateCampaign(ctx context.Context, rec *campaign.Record) error {
	platforms, err := json.Marshal(rec.Platforms)
	if err != nil {
		return fmt.Errorf("marshal platforms: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = campaign.RecordActive
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO campaigns (id, name, product_description, tone, platforms, user_id, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Name, rec.ProductDescription, rec.Tone,
		string(platforms), rec.UserID, rec.Status, rec.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

// Campaign fetches one campaign by id
func (s *Storage) Campaign(ctx context.Context, id ids.ID) (*campaign.Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, name, product_description, tone, platforms, user_id, status, created_at
FROM campaigns WHERE id = ?`, id.String())
	return scanCampaign(row)
}

// Campaigns lists all campaigns, newest first
func (s *Storage) Campaigns(ctx context.Context) ([]campaign.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, product_description, tone, platforms, user_id, status, created_at
FROM campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer rows.Close()

	var out []campaign.Record
	for rows.Next() {
		rec, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// UpdateCampaign updates mutable campaign fields
func (s *Storage) UpdateCampaign(ctx context.Context, rec *campaign.Record) error {
	platforms, err := json.Marshal(rec.Platforms)
	if err != nil {
		return fmt.Errorf("marshal platforms: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
UPDATE campaigns SET name = ?, tone = ?, platforms = ?, status = ? WHERE id = ?`,
		rec.Name, rec.Tone, string(platforms), rec.Status, rec.ID.String())
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return requireRow(res)
}

// UpdateCampaignStatus sets a campaign's status
func (s *Storage) UpdateCampaignStatus(ctx context.Context, id ids.ID, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE campaigns SET status = ? WHERE id = ?`, status, id.String())
	if err != nil {
		return fmt.Errorf("update campaign status: %w", err)
	}
	return requireRow(res)
}

// DeleteCampaign removes a campaign and, via cascade, its content
func (s *Storage) DeleteCampaign(ctx context.Context, id ids.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(row rowScanner) (*campaign.Record, error) {
	var (
		rec       campaign.Record
		id        string
		platforms string
		createdAt int64
	)
	err := row.Scan(&id, &rec.Name, &rec.ProductDescription, &rec.Tone,
		&platforms, &rec.UserID, &rec.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan campaign: %w", err)
	}

	rec.ID = ids.ID(id)
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	if err := json.Unmarshal([]byte(platforms), &rec.Platforms); err != nil {
		return nil, fmt.Errorf("unmarshal platforms: %w", err)
	}
	return &rec, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
