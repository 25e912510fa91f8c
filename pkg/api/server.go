// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api exposes the campaign CRUD and dashboard surface over
// HTTP. It is a thin layer over storage and the lifecycle coordinator;
// no business rules live here.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/arielsacagiu/AutoMarketerTop/pkg/analytics"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/budget"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/campaign"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/ids"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/log"
)

// CampaignStore is the persistence surface the API reads and writes
type CampaignStore interface {
	CreateCampaign(ctx context.Context, rec *campaign.Record) error
	Campaign(ctx context.Context, id ids.ID) (*campaign.Record, error)
	Campaigns(ctx context.Context) ([]campaign.Record, error)
	UpdateCampaign(ctx context.Context, rec *campaign.Record) error
	UpdateCampaignStatus(ctx context.Context, id ids.ID, status string) error
	DeleteCampaign(ctx context.Context, id ids.ID) error
	ItemsByCampaign(ctx context.Context, campaignID ids.ID) ([]campaign.ContentItem, error)
	SamplesByCampaign(ctx context.Context, campaignID ids.ID) ([]campaign.PerformanceSample, error)
	ActivityByCampaign(ctx context.Context, campaignID ids.ID, limit int) ([]campaign.ActivityEntry, error)
}

// Coordinator is the lifecycle surface the API drives
type Coordinator interface {
	InitializeCampaign(rec campaign.Record) error
	EmergencyStop(campaignID ids.ID, reason, userID string)
	EngineStatus(campaignID ids.ID) (*campaign.LifecycleState, bool)
	ActiveCampaigns() []ids.ID
}

// Server is the public HTTP API
type Server struct {
	store   CampaignStore
	coord   Coordinator
	tracker *analytics.Tracker
	budgets *budget.Manager
	hub     *hub
	router  *gin.Engine
	log     log.Logger
}

// Config wires the API server's collaborators
type Config struct {
	Store       CampaignStore
	Coordinator Coordinator
	Tracker     *analytics.Tracker
	Budgets     *budget.Manager
	Production  bool
	Logger      log.Logger
}

// NewServer builds the router and, when a tracker is present, starts
// the live event feed pump.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoOp()
	}

	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		store:   cfg.Store,
		coord:   cfg.Coordinator,
		tracker: cfg.Tracker,
		budgets: cfg.Budgets,
		hub:     newHub(logger),
		log:     logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsCfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().Unix()})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/campaigns", s.createCampaign)
		v1.GET("/campaigns", s.listCampaigns)
		v1.GET("/campaigns/:id", s.getCampaign)
		v1.PUT("/campaigns/:id", s.updateCampaign)
		v1.DELETE("/campaigns/:id", s.deleteCampaign)

		v1.POST("/campaigns/:id/stop", s.stopCampaign)
		v1.POST("/campaigns/:id/budget", s.setBudget)
		v1.GET("/campaigns/:id/budget", s.getBudget)
		v1.GET("/campaigns/:id/status", s.campaignStatus)
		v1.GET("/campaigns/:id/content", s.campaignContent)
		v1.GET("/campaigns/:id/metrics", s.campaignMetrics)
		v1.GET("/campaigns/:id/activity", s.campaignActivity)

		v1.GET("/dashboard", s.dashboard)
		v1.GET("/dashboard/platforms", s.dashboardPlatforms)
	}

	router.GET("/ws/events", s.hub.handleUpgrade)

	s.router = router

	if s.tracker != nil {
		go s.hub.pump(s.tracker.Events)
	}

	return s
}

// Handler exposes the router for http.Server and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close stops the live event feed pump and disconnects any websocket
// subscribers. Safe to call more than once.
func (s *Server) Close() {
	s.hub.stop()
	if s.tracker != nil {
		<-s.hub.done
	}
}
