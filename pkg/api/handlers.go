// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/campaign"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/ids"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/storage"
)

type createCampaignRequest struct {
	Name               string   `json:"name" binding:"required"`
	ProductDescription string   `json:"product_description" binding:"required"`
	Tone               string   `json:"tone"`
	Platforms          []string `json:"platforms" binding:"required,min=1"`
	UserID             string   `json:"user_id"`
	Budget             string   `json:"budget"`
}

type updateCampaignRequest struct {
	Name      string   `json:"name"`
	Tone      string   `json:"tone"`
	Platforms []string `json:"platforms"`
}

type stopCampaignRequest struct {
	Reason string `json:"reason"`
	UserID string `json:"user_id"`
}

// createCampaign persists the record and kicks off its lifecycle
func (s *Server) createCampaign(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Tone == "" {
		req.Tone = "professional"
	}

	var total decimal.Decimal
	if req.Budget != "" {
		var err error
		total, err = decimal.NewFromString(req.Budget)
		if err != nil || total.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid budget amount"})
			return
		}
	}

	rec := campaign.Record{
		ID:                 ids.New(),
		Name:               req.Name,
		ProductDescription: req.ProductDescription,
		Tone:               req.Tone,
		Platforms:          req.Platforms,
		UserID:             req.UserID,
		Status:             campaign.RecordActive,
	}
	if err := s.store.CreateCampaign(c.Request.Context(), &rec); err != nil {
		s.log.Error("create campaign", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create campaign"})
		return
	}

	if req.Budget != "" && s.budgets != nil {
		if err := s.budgets.SetBudget(rec.ID, total); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := s.coord.InitializeCampaign(rec); err != nil {
		s.log.Error("initialize lifecycle", "campaign", rec.ID, "error", err)
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (s *Server) listCampaigns(c *gin.Context) {
	recs, err := s.store.Campaigns(c.Request.Context())
	if err != nil {
		s.log.Error("list campaigns", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list campaigns"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": recs, "count": len(recs)})
}

func (s *Server) getCampaign(c *gin.Context) {
	id, ok := s.campaignID(c)
	if !ok {
		return
	}
	rec, err := s.store.Campaign(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}
	if err != nil {
		s.log.Error("get campaign", "campaign", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get campaign"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// updateCampaign edits the stored record. The running lifecycle keeps
// its original platforms; changes apply to future cycles only.
func (s *Server) updateCampaign(c *gin.Context) {
	id, ok := s.campaignID(c)
	if !ok {
		return
	}
	var req updateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := s.store.Campaign(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}
	if err != nil {
		s.log.Error("load campaign", "campaign", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load campaign"})
		return
	}

	if req.Name != "" {
		rec.Name = req.Name
	}
	if req.Tone != "" {
		rec.Tone = req.Tone
	}
	if len(req.Platforms) > 0 {
		rec.Platforms = req.Platforms
	}

	if err := s.store.UpdateCampaign(c.Request.Context(), rec); err != nil {
		s.log.Error("update campaign", "campaign", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update campaign"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// deleteCampaign stops the lifecycle then removes the record; content
// rows go with it via the foreign key cascade.
func (s *Server) deleteCampaign(c *gin.Context) {
	id, ok := s.campaignID(c)
	if !ok {
		return
	}

	s.coord.EmergencyStop(id, "campaign deleted", "")

	err := s.store.DeleteCampaign(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}
	if err != nil {
		s.log.Error("delete campaign", "campaign", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete campaign"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (s *Server) stopCampaign(c *gin.Context) {
	id, ok := s.campaignID(c)
	if !ok {
		return
	}
	var req stopCampaignRequest
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "manual stop"
	}

	s.coord.EmergencyStop(id, req.Reason, req.UserID)

	if err := s.store.UpdateCampaignStatus(c.Request.Context(), id, campaign.RecordStopped); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
			return
		}
		s.log.Error("mark campaign stopped", "campaign", id, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"stopped": id, "reason": req.Reason})
}

type setBudgetRequest struct {
	Total string `json:"total" binding:"required"`
}

// setBudget funds (or refunds) a campaign's spend budget. Spend so far
// is reset; the lifecycle paces future publishes against the new total.
func (s *Server) setBudget(c *gin.Context) {
	id, ok := s.campaignID(c)
	if !ok {
		return
	}
	if s.budgets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "budgets disabled"})
		return
	}

	var req setBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	total, err := decimal.NewFromString(req.Total)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid budget amount"})
		return
	}

	if _, err := s.store.Campaign(c.Request.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
			return
		}
		s.log.Error("load campaign", "campaign", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load campaign"})
		return
	}

	if err := s.budgets.SetBudget(id, total); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaign_id": id, "total": total.String()})
}

func (s *Server) getBudget(c *gin.Context) {
	id, ok := s.campaignID(c)
	if !ok {
		return
	}
	if s.budgets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "budgets disabled"})
		return
	}

	snap, exists := s.budgets.Snapshot(id)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "no budget set"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"campaign_id": id,
		"total":       snap.Total.String(),
		"spent":       snap.Spent.String(),
		"remaining":   snap.Remaining.String(),
	})
}

func (s *Server) campaignStatus(c *gin.Context) {
	id, ok := s.campaignID(c)
	if !ok {
		return
	}
	state, exists := s.coord.EngineStatus(id)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active lifecycle"})
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) campaignContent(c *gin.Context) {
	id, ok := s.campaignID(c)
	if !ok {
		return
	}
	items, err := s.store.ItemsByCampaign(c.Request.Context(), id)
	if err != nil {
		s.log.Error("list content", "campaign", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list content"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (s *Server) campaignMetrics(c *gin.Context) {
	id, ok := s.campaignID(c)
	if !ok {
		return
	}
	samples, err := s.store.SamplesByCampaign(c.Request.Context(), id)
	if err != nil {
		s.log.Error("list samples", "campaign", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list samples"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"samples": samples, "count": len(samples)})
}

func (s *Server) campaignActivity(c *gin.Context) {
	id, ok := s.campaignID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := s.store.ActivityByCampaign(c.Request.Context(), id, limit)
	if err != nil {
		s.log.Error("list activity", "campaign", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list activity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries, "count": len(entries)})
}

func (s *Server) dashboard(c *gin.Context) {
	snapshot := map[string]interface{}{}
	if s.tracker != nil {
		snapshot = s.tracker.Snapshot()
	}
	snapshot["active_lifecycles"] = len(s.coord.ActiveCampaigns())
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) dashboardPlatforms(c *gin.Context) {
	if s.tracker == nil {
		c.JSON(http.StatusOK, gin.H{"platforms": []interface{}{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"platforms": s.tracker.PlatformSnapshot()})
}

func (s *Server) campaignID(c *gin.Context) (ids.ID, bool) {
	id, err := ids.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return ids.Empty, false
	}
	return id, true
}
