// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package policy

import (
	"strings"
	"time"
)

// Category groups platforms with a shared feedback cadence
type Category string

const (
	CategorySocial Category = "social"
	CategoryBlog   Category = "blog"
	CategoryForum  Category = "forum"
	CategoryEmail  Category = "email"
)

// DelayPolicy is the feedback cadence for a platform category
type DelayPolicy struct {
	Category       Category
	Cooldown       time.Duration   // wait after publish before the first sample
	SweepOffsets   []time.Duration // waits between successive samples
	MutationWindow time.Duration   // minimum hours between learning cycles
}

// policies holds the fixed cadence table. Values are load-bearing:
// downstream schedules and tests depend on them exactly.
var policies = map[Category]DelayPolicy{
	CategorySocial: {
		Category:       CategorySocial,
		Cooldown:       45 * time.Minute,
		SweepOffsets:   []time.Duration{120 * time.Minute, 120 * time.Minute, 120 * time.Minute, 1440 * time.Minute},
		MutationWindow: 24 * time.Hour,
	},
	CategoryBlog: {
		Category:       CategoryBlog,
		Cooldown:       120 * time.Minute,
		SweepOffsets:   []time.Duration{360 * time.Minute, 1440 * time.Minute},
		MutationWindow: 24 * time.Hour,
	},
	CategoryForum: {
		Category:       CategoryForum,
		Cooldown:       60 * time.Minute,
		SweepOffsets:   []time.Duration{360 * time.Minute, 1440 * time.Minute},
		MutationWindow: 24 * time.Hour,
	},
	CategoryEmail: {
		Category:       CategoryEmail,
		Cooldown:       120 * time.Minute,
		SweepOffsets:   []time.Duration{720 * time.Minute, 1440 * time.Minute},
		MutationWindow: 24 * time.Hour,
	},
}

// categories maps public platform names to a category.
// An absent platform is a configuration gap, not an error: it defaults to social.
var categories = map[string]Category{
	"linkedin":  CategorySocial,
	"twitter":   CategorySocial,
	"x":         CategorySocial,
	"instagram": CategorySocial,
	"tiktok":    CategorySocial,
	"pinterest": CategorySocial,
	"facebook":  CategorySocial,
	"threads":   CategorySocial,

	"medium":    CategoryBlog,
	"wordpress": CategoryBlog,
	"substack":  CategoryBlog,
	"blog":      CategoryBlog,

	"reddit":     CategoryForum,
	"hackernews": CategoryForum,
	"quora":      CategoryForum,
	"forum":      CategoryForum,

	"email":      CategoryEmail,
	"newsletter": CategoryEmail,
	"mailchimp":  CategoryEmail,
}

// CategoryFor maps a public platform name to its category
func CategoryFor(platform string) Category {
	if c, ok := categories[normalize(platform)]; ok {
		return c
	}
	return CategorySocial
}

// ByCategory returns the delay policy for a category
func ByCategory(c Category) DelayPolicy {
	p, ok := policies[c]
	if !ok {
		p = policies[CategorySocial]
	}
	return clone(p)
}

// For returns the delay policy for a platform
func For(platform string) DelayPolicy {
	return ByCategory(CategoryFor(platform))
}

// publishBases holds per-platform base publish delays
var publishBases = map[string]time.Duration{
	"linkedin":  15 * time.Minute,
	"twitter":   30 * time.Minute,
	"medium":    45 * time.Minute,
	"instagram": 20 * time.Minute,
	"tiktok":    25 * time.Minute,
	"pinterest": 35 * time.Minute,
}

// defaultPublishBase is used for platforms without an explicit base
const defaultPublishBase = 30 * time.Minute

// PublishBase returns the base distribution delay for a platform.
// The scheduler jitters this uniformly into [0.5x, 1.5x].
func PublishBase(platform string) time.Duration {
	if d, ok := publishBases[normalize(platform)]; ok {
		return d
	}
	return defaultPublishBase
}

// Baseline holds per-platform expected performance used by the
// synthetic sampler and by sample classification
type Baseline struct {
	Views      int64
	Clicks     int64
	Engagement float64
}

var baselines = map[string]Baseline{
	"linkedin":  {Views: 1200, Clicks: 85, Engagement: 0.12},
	"twitter":   {Views: 900, Clicks: 60, Engagement: 0.09},
	"instagram": {Views: 1500, Clicks: 110, Engagement: 0.14},
	"tiktok":    {Views: 2500, Clicks: 150, Engagement: 0.15},
	"pinterest": {Views: 700, Clicks: 40, Engagement: 0.08},
	"facebook":  {Views: 1000, Clicks: 70, Engagement: 0.10},
	"medium":    {Views: 600, Clicks: 45, Engagement: 0.11},
	"substack":  {Views: 400, Clicks: 35, Engagement: 0.12},
	"reddit":    {Views: 800, Clicks: 55, Engagement: 0.10},
	"quora":     {Views: 500, Clicks: 30, Engagement: 0.07},
	"email":     {Views: 350, Clicks: 50, Engagement: 0.18},
}

var defaultBaseline = Baseline{Views: 500, Clicks: 35, Engagement: 0.08}

// BaselineFor returns the performance baseline for a platform
func BaselineFor(platform string) Baseline {
	if b, ok := baselines[normalize(platform)]; ok {
		return b
	}
	return defaultBaseline
}

// contentTypes maps a category to the content types generated for it
var contentTypes = map[Category][]string{
	CategorySocial: {"post"},
	CategoryBlog:   {"article"},
	CategoryForum:  {"post"},
	CategoryEmail:  {"newsletter"},
}

// ContentTypes returns the content types produced for a platform
func ContentTypes(platform string) []string {
	return append([]string(nil), contentTypes[CategoryFor(platform)]...)
}

func normalize(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

func clone(p DelayPolicy) DelayPolicy {
	p.SweepOffsets = append([]time.Duration(nil), p.SweepOffsets...)
	return p
}
