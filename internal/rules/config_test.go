// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfigPreservesOrder(t *testing.T) {
	src := `
zebra: 1
apple: 2
mango: 3
apricot: 4
`
	cfg, err := decodeConfig([]byte(src))
	require.NoError(t, err)

	keys := make([]string, 0, len(cfg))
	for _, ent := range cfg {
		keys = append(keys, ent.Key)
	}
	assert.Equal(t, []string{"zebra", "apple", "mango", "apricot"}, keys)
}

func TestDecodeConfigNested(t *testing.T) {
	src := `
author:
  comment_karma: "> 10"
  name: someone
action: remove
`
	cfg, err := decodeConfig([]byte(src))
	require.NoError(t, err)

	sub, ok := cfg.Sub("author")
	require.True(t, ok)
	assert.Equal(t, "> 10", sub.String("comment_karma"))
	assert.Equal(t, "someone", sub.String("name"))
	assert.Equal(t, "remove", cfg.String("action"))
}

func TestDecodeConfigRejectsNonMapping(t *testing.T) {
	_, err := decodeConfig([]byte(`- just\n- a list`))
	assert.Error(t, err)
}

func TestConfigSet(t *testing.T) {
	cfg := Config{{Key: "a", Value: 1}, {Key: "b", Value: 2}}

	// Replacing keeps position.
	cfg.Set("a", 10)
	assert.Equal(t, "a", cfg[0].Key)
	v, _ := cfg.Get("a")
	assert.Equal(t, 10, v)

	// New keys append.
	cfg.Set("c", 3)
	assert.Equal(t, "c", cfg[2].Key)
}

func TestConfigAccessors(t *testing.T) {
	cfg := Config{
		{Key: "action", Value: "remove"},
		{Key: "flag", Value: true},
		{Key: "count", Value: 5},
	}

	assert.Equal(t, "remove", cfg.String("action"))
	assert.Equal(t, "5", cfg.String("count"))
	assert.Equal(t, "", cfg.String("missing"))
	assert.True(t, cfg.Bool("flag"))
	assert.False(t, cfg.Bool("action"))
	assert.False(t, cfg.Bool("missing"))
	assert.True(t, cfg.Has("count"))
	assert.False(t, cfg.Has("missing"))
}
