// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"context"
	"strings"
	"time"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/budget"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/campaign"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/generation"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/ids"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/policy"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/schedule"
)

// handleStrategy runs the strategy phase. On generation failure the
// phase stays at strategy with no retry; the stuck phase is the
// observable failure signal.
func (e *Engine) handleStrategy(ev schedule.Event) {
	e.mu.Lock()
	state, exists := e.states[ev.CampaignID]
	if !exists || state.Stopped {
		e.mu.Unlock()
		return
	}
	e.setPhaseLocked(state, campaign.PhaseStrategy)
	req := generation.StrategyRequest{
		ProductDescription: state.ProductDescription,
		Tone:               state.Tone,
		Platforms:          append([]string(nil), state.Platforms...),
	}
	e.mu.Unlock()

	ctx, cancel := e.genContext()
	start := time.Now()
	strategy, err := e.generator.GenerateStrategy(ctx, req)
	cancel()
	if e.metrics != nil {
		e.metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if e.metrics != nil {
			e.metrics.GenerationFailures.Inc()
		}
		e.logActivity(campaign.ActivityEntry{
			Type:        "strategy_failed",
			Description: err.Error(),
			CampaignID:  ev.CampaignID,
		})
		e.log.Error("strategy generation failed", "campaign", ev.CampaignID, "error", err)
		return
	}

	e.mu.Lock()
	state, exists = e.states[ev.CampaignID]
	if !exists || state.Stopped {
		e.mu.Unlock()
		return
	}
	state.Strategy = strategy
	platforms := append([]string(nil), state.Platforms...)
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.StrategiesGenerated.Inc()
	}
	e.logActivity(campaign.ActivityEntry{
		Type:        "strategy_generated",
		Description: strategy.ValueProposition,
		CampaignID:  ev.CampaignID,
	})

	items := e.runContentGeneration(ev.CampaignID, platforms)
	e.scheduleDistribution(ev.CampaignID, items)
}

// runContentGeneration generates content for every platform x type
// combination. Partial failures are logged and skipped, never retried;
// one combination failing does not block the others.
func (e *Engine) runContentGeneration(campaignID ids.ID, platforms []string) []campaign.ContentItem {
	e.mu.Lock()
	state, exists := e.states[campaignID]
	if !exists {
		e.mu.Unlock()
		return nil
	}
	e.setPhaseLocked(state, campaign.PhaseContentGen)
	strategy := state.Strategy
	product := state.ProductDescription
	tone := state.Tone
	e.mu.Unlock()

	if strategy == nil {
		e.log.Warn("content generation without strategy", "campaign", campaignID)
		return nil
	}

	var items []campaign.ContentItem
	for _, platform := range platforms {
		for _, contentType := range policy.ContentTypes(platform) {
			ctx, cancel := e.genContext()
			start := time.Now()
			variations, err := e.generator.GenerateContent(ctx, generation.ContentRequest{
				ProductDescription: product,
				Strategy:           strategy,
				Platform:           platform,
				ContentType:        contentType,
				Tone:               tone,
			})
			cancel()
			if e.metrics != nil {
				e.metrics.GenerationDuration.Observe(time.Since(start).Seconds())
			}
			if err != nil {
				if e.metrics != nil {
					e.metrics.GenerationFailures.Inc()
				}
				e.logActivity(campaign.ActivityEntry{
					Type:        "content_failed",
					Description: err.Error(),
					CampaignID:  campaignID,
					Platform:    platform,
					Metadata:    map[string]string{"content_type": contentType},
				})
				e.log.Warn("content generation failed",
					"campaign", campaignID,
					"platform", platform,
					"type", contentType,
					"error", err)
				continue
			}

			for _, v := range variations {
				if strings.TrimSpace(v.Body) == "" {
					e.log.Debug("dropping empty variation", "campaign", campaignID, "platform", platform)
					continue
				}
				item := campaign.ContentItem{
					ID:         ids.New(),
					CampaignID: campaignID,
					Platform:   platform,
					Type:       contentType,
					Title:      v.Title,
					Body:       v.Body,
					Metadata:   map[string]string{"tone": tone, "cta": v.CTA},
					Status:     campaign.StatusDraft,
					CreatedAt:  e.clock.Now(),
				}
				if len(v.Hashtags) > 0 {
					item.Metadata["hashtags"] = strings.Join(v.Hashtags, " ")
				}
				if err := e.content.CreateItem(context.Background(), &item); err != nil {
					e.log.Error("store content item", "campaign", campaignID, "error", err)
					continue
				}
				if e.metrics != nil {
					e.metrics.ContentGenerated.Inc()
				}
				items = append(items, item)
			}
		}
	}

	return items
}

// scheduleDistribution computes jittered publish delays for each draft
// item, marks it scheduled and arms its publish event. Once every item
// is scheduled the campaign is implicitly in feedback.
func (e *Engine) scheduleDistribution(campaignID ids.ID, items []campaign.ContentItem) {
	e.mu.Lock()
	state, exists := e.states[campaignID]
	if !exists {
		e.mu.Unlock()
		return
	}
	if state.Stopped {
		e.mu.Unlock()
		for _, item := range items {
			if err := e.content.MarkPaused(context.Background(), item.ID); err != nil {
				e.log.Warn("pause item after stop", "content", item.ID, "error", err)
			}
		}
		return
	}
	e.setPhaseLocked(state, campaign.PhaseDistribution)
	e.mu.Unlock()

	now := e.clock.Now()
	for _, item := range items {
		if e.budgets != nil {
			cost := budget.PublishCost(item.Platform)
			if _, err := e.budgets.ReserveSpend(campaignID, cost); err != nil {
				e.logActivity(campaign.ActivityEntry{
					Type:        "budget_exhausted",
					Description: "publish skipped, insufficient budget",
					CampaignID:  campaignID,
					Platform:    item.Platform,
				})
				if err := e.content.MarkPaused(context.Background(), item.ID); err != nil {
					e.log.Warn("pause unbudgeted item", "content", item.ID, "error", err)
				}
				continue
			}
		}

		// Uniform jitter in [0.5x, 1.5x) of the platform base delay
		base := policy.PublishBase(item.Platform)
		delay := time.Duration(float64(base) * (0.5 + e.randFloat()))
		fireAt := now.Add(delay)

		if err := e.content.MarkScheduled(context.Background(), item.ID, fireAt); err != nil {
			e.log.Error("mark scheduled", "content", item.ID, "error", err)
			continue
		}
		e.sched.Schedule(schedule.Event{
			FireAt:     fireAt,
			Kind:       schedule.KindPublish,
			CampaignID: campaignID,
			ContentID:  item.ID,
			Platform:   item.Platform,
		})

		e.log.Debug("publish scheduled",
			"campaign", campaignID,
			"content", item.ID,
			"platform", item.Platform,
			"at", fireAt)
	}

	e.setPhase(campaignID, campaign.PhaseFeedback)
}
