// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package budget

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/ids"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/log"
)

var (
	ErrInsufficientBudget = errors.New("insufficient budget")
	ErrBudgetNotFound     = errors.New("budget not found")
	ErrNegativeAmount     = errors.New("negative budget amount")
)

// Manager tracks per-campaign spend against a fixed budget.
// Campaigns without a budget entry are unlimited.
type Manager struct {
	mu      sync.RWMutex
	budgets map[ids.ID]*Budget
	log     log.Logger
}

// Budget is one campaign's budget state
type Budget struct {
	CampaignID  ids.ID
	Total       decimal.Decimal
	Spent       decimal.Decimal
	Remaining   decimal.Decimal
	LastUpdated time.Time
}

// NewManager creates a budget manager
func NewManager(logger log.Logger) *Manager {
	return &Manager{
		budgets: make(map[ids.ID]*Budget),
		log:     logger,
	}
}

// SetBudget sets the total budget for a campaign
func (m *Manager) SetBudget(campaignID ids.ID, total decimal.Decimal) error {
	if total.IsNegative() {
		return ErrNegativeAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.budgets[campaignID] = &Budget{
		CampaignID:  campaignID,
		Total:       total,
		Spent:       decimal.Zero,
		Remaining:   total,
		LastUpdated: time.Now(),
	}

	m.log.Info("budget funded", "campaign", campaignID, "total", total.String())
	return nil
}

// ReserveSpend deducts amount from the campaign's budget and returns
// the remaining balance. Campaigns without a budget are unlimited and
// always succeed.
func (m *Manager) ReserveSpend(campaignID ids.ID, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	budget, exists := m.budgets[campaignID]
	if !exists {
		return decimal.Zero, nil
	}

	if budget.Remaining.LessThan(amount) {
		return budget.Remaining, ErrInsufficientBudget
	}

	budget.Spent = budget.Spent.Add(amount)
	budget.Remaining = budget.Remaining.Sub(amount)
	budget.LastUpdated = time.Now()

	m.log.Debug("budget reserved",
		"campaign", campaignID,
		"amount", amount.String(),
		"remaining", budget.Remaining.String())

	return budget.Remaining, nil
}

// Remaining returns the remaining budget for a campaign
func (m *Manager) Remaining(campaignID ids.ID) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	budget, exists := m.budgets[campaignID]
	if !exists {
		return decimal.Zero, ErrBudgetNotFound
	}
	return budget.Remaining, nil
}

// Snapshot returns a copy of a campaign's budget state
func (m *Manager) Snapshot(campaignID ids.ID) (*Budget, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	budget, exists := m.budgets[campaignID]
	if !exists {
		return nil, false
	}
	b := *budget
	return &b, true
}

// publishCosts is a flat per-publish cost by platform category proxy.
// Real billing would price by reach; a flat table is enough for pacing.
var publishCosts = map[string]string{
	"linkedin":  "12.50",
	"twitter":   "8.00",
	"instagram": "10.00",
	"tiktok":    "9.00",
	"pinterest": "6.50",
	"facebook":  "9.50",
	"medium":    "15.00",
	"reddit":    "5.00",
	"email":     "4.00",
}

// PublishCost returns the flat cost of publishing to a platform
func PublishCost(platform string) decimal.Decimal {
	if s, ok := publishCosts[normalize(platform)]; ok {
		return decimal.RequireFromString(s)
	}
	return decimal.RequireFromString("7.50")
}

// normalize matches the platform key normalization used by the policy
// tables so "LinkedIn " and "linkedin" price identically.
func normalize(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}
