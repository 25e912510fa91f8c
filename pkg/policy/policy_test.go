// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCategoryMapping(t *testing.T) {
	require := require.New(t)

	require.Equal(CategorySocial, CategoryFor("linkedin"))
	require.Equal(CategorySocial, CategoryFor("Twitter"))
	require.Equal(CategorySocial, CategoryFor("  TikTok  "))
	require.Equal(CategoryBlog, CategoryFor("medium"))
	require.Equal(CategoryForum, CategoryFor("reddit"))
	require.Equal(CategoryEmail, CategoryFor("newsletter"))

	// Unknown platforms fall back to social
	require.Equal(CategorySocial, CategoryFor("myspace"))
}

func TestDelayPolicyTable(t *testing.T) {
	require := require.New(t)

	social := For("linkedin")
	require.Equal(45*time.Minute, social.Cooldown)
	require.Equal([]time.Duration{
		120 * time.Minute, 120 * time.Minute, 120 * time.Minute, 1440 * time.Minute,
	}, social.SweepOffsets)
	require.Equal(24*time.Hour, social.MutationWindow)

	blog := For("medium")
	require.Equal(120*time.Minute, blog.Cooldown)
	require.Equal([]time.Duration{360 * time.Minute, 1440 * time.Minute}, blog.SweepOffsets)

	forum := For("reddit")
	require.Equal(60*time.Minute, forum.Cooldown)

	email := For("email")
	require.Equal(120*time.Minute, email.Cooldown)
	require.Equal([]time.Duration{720 * time.Minute, 1440 * time.Minute}, email.SweepOffsets)
}

func TestPolicyIsolation(t *testing.T) {
	require := require.New(t)

	// Mutating a returned policy must not leak into the table
	p := For("twitter")
	p.SweepOffsets[0] = time.Minute

	fresh := For("twitter")
	require.Equal(120*time.Minute, fresh.SweepOffsets[0])
}

func TestPublishBase(t *testing.T) {
	require := require.New(t)

	require.Equal(15*time.Minute, PublishBase("linkedin"))
	require.Equal(30*time.Minute, PublishBase("twitter"))
	require.Equal(45*time.Minute, PublishBase("medium"))
	require.Equal(20*time.Minute, PublishBase("instagram"))
	require.Equal(25*time.Minute, PublishBase("tiktok"))
	require.Equal(35*time.Minute, PublishBase("pinterest"))
	require.Equal(30*time.Minute, PublishBase("somethingelse"))
}

func TestBaselines(t *testing.T) {
	require := require.New(t)

	li := BaselineFor("linkedin")
	require.Equal(int64(1200), li.Views)
	require.InDelta(0.12, li.Engagement, 1e-9)

	def := BaselineFor("unknown-platform")
	require.Equal(int64(500), def.Views)
	require.Equal(int64(35), def.Clicks)
	require.InDelta(0.08, def.Engagement, 1e-9)
}

func TestContentTypes(t *testing.T) {
	require := require.New(t)

	require.Equal([]string{"post"}, ContentTypes("linkedin"))
	require.Equal([]string{"article"}, ContentTypes("medium"))
	require.Equal([]string{"newsletter"}, ContentTypes("email"))
	require.Equal([]string{"post"}, ContentTypes("reddit"))
}
