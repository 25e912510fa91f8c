// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for AutoMarketer
type Metrics struct {
	registry *prometheus.Registry

	// Lifecycle metrics
	CampaignsInitialized prometheus.Counter
	StrategiesGenerated  prometheus.Counter
	ContentGenerated     prometheus.Counter
	GenerationFailures   prometheus.Counter
	ItemsPublished       prometheus.Counter
	SamplesCollected     prometheus.Counter
	LearningCycles       prometheus.Counter
	EmergencyStops       prometheus.Counter

	// Per-phase campaign gauge
	CampaignsByPhase *prometheus.GaugeVec

	// Performance metrics
	GenerationDuration prometheus.Histogram
}

// New creates a metrics instance with its own registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		CampaignsInitialized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "automarketer",
			Name:      "campaigns_initialized_total",
			Help:      "Total number of campaigns initialized",
		}),
		StrategiesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "automarketer",
			Name:      "strategies_generated_total",
			Help:      "Total number of strategies generated",
		}),
		ContentGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "automarketer",
			Name:      "content_generated_total",
			Help:      "Total number of content items generated",
		}),
		GenerationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "automarketer",
			Name:      "generation_failures_total",
			Help:      "Total number of failed generation calls",
		}),
		ItemsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "automarketer",
			Name:      "items_published_total",
			Help:      "Total number of content items published",
		}),
		SamplesCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "automarketer",
			Name:      "samples_collected_total",
			Help:      "Total number of performance samples collected",
		}),
		LearningCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "automarketer",
			Name:      "learning_cycles_total",
			Help:      "Total number of learning cycles run",
		}),
		EmergencyStops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "automarketer",
			Name:      "emergency_stops_total",
			Help:      "Total number of emergency stops",
		}),
		CampaignsByPhase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "automarketer",
			Name:      "campaigns_by_phase",
			Help:      "Number of active campaigns per lifecycle phase",
		}, []string{"phase"}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "automarketer",
			Name:      "generation_duration_seconds",
			Help:      "Time spent in generation capability calls",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(
		m.CampaignsInitialized,
		m.StrategiesGenerated,
		m.ContentGenerated,
		m.GenerationFailures,
		m.ItemsPublished,
		m.SamplesCollected,
		m.LearningCycles,
		m.EmergencyStops,
		m.CampaignsByPhase,
		m.GenerationDuration,
	)

	return m
}

// Gatherer returns the prometheus gatherer for metrics export
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Registerer returns the prometheus registerer
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registry
}
