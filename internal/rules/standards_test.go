// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandStandardsImageHosting(t *testing.T) {
	r := parseOne(t, `
standard: image hosting sites
action: remove
`, GlobalConfig{})

	v, ok := r.Config.Get("domain")
	require.True(t, ok)
	domains, ok := v.([]any)
	require.True(t, ok)
	assert.Contains(t, domains, "imgur.com")
	assert.Contains(t, domains, "i.redd.it")
}

func TestExpandStandardsDirectImageLinks(t *testing.T) {
	r := parseOne(t, `
standard: direct image links
action: remove
`, GlobalConfig{})

	v, ok := r.Config.Get("url (regex)")
	require.True(t, ok)
	assert.Equal(t, `\.(jpe?g|png|gifv?)(\?\S*)?$`, v)
}

func TestExpandStandardsStreamingSitesCarriesNegation(t *testing.T) {
	r := parseOne(t, `
standard: streaming sites
action: remove
`, GlobalConfig{})

	assert.True(t, r.Config.Has("domain"))
	assert.Equal(t, "content.azubu.tv", r.Config.String("~domain"))
}

func TestExpandStandardsUnknownFailsRule(t *testing.T) {
	cfg, err := decodeConfig([]byte("standard: no such standard\naction: remove"))
	require.NoError(t, err)
	_, err = New(cfg, GlobalConfig{})
	assert.ErrorContains(t, err, "unknown standard")
}

func TestStandardAllowedInExtensionRules(t *testing.T) {
	// Standards combine freely with extension checks.
	r := parseOne(t, `
standard: facebook links
combined_karma: '< 10'
action: remove
`, GlobalConfig{})
	assert.True(t, r.RequiresBAM)
	assert.True(t, r.Config.Has("url+body (regex)"))
}
