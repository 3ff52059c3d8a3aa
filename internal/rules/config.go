// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rules

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// Config is an insertion-ordered mapping of rule keys to values. Order is
// semantically observable: checks populate the match record and actions run
// in declared order, so a plain map cannot back a rule document.
type Config []Entry

// Entry is a single key/value pair inside a rule document.
type Entry struct {
	Key   string
	Value any
}

// Get returns the value stored under key.
func (c Config) Get(key string) (any, bool) {
	for _, e := range c {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (c Config) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// String returns the value under key rendered as a string, or "" when the
// key is absent.
func (c Config) String(key string) string {
	v, ok := c.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Bool returns the value under key as a boolean. Missing keys and non-bool
// values read as false.
func (c Config) Bool(key string) bool {
	v, _ := c.Get(key)
	b, _ := v.(bool)
	return b
}

// Sub returns the nested Config stored under key, if the value is a mapping.
func (c Config) Sub(key string) (Config, bool) {
	v, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	sub, ok := v.(Config)
	return sub, ok
}

// Set replaces the value under key, or appends the pair when absent.
func (c *Config) Set(key string, v any) {
	for i, e := range *c {
		if e.Key == key {
			(*c)[i].Value = v
			return
		}
	}
	*c = append(*c, Entry{Key: key, Value: v})
}

// decodeConfig unmarshals one YAML document into an ordered Config.
func decodeConfig(src []byte) (Config, error) {
	var raw any
	if err := yaml.UnmarshalWithOptions(src, &raw, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("rules: invalid YAML: %w", err)
	}
	cfg, ok := fromYAML(raw).(Config)
	if !ok {
		return nil, fmt.Errorf("rules: document is not a mapping")
	}
	return cfg, nil
}

// fromYAML converts goccy ordered-map values into Config trees.
func fromYAML(v any) any {
	switch t := v.(type) {
	case yaml.MapSlice:
		cfg := make(Config, 0, len(t))
		for _, item := range t {
			cfg = append(cfg, Entry{Key: fmt.Sprint(item.Key), Value: fromYAML(item.Value)})
		}
		return cfg
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromYAML(e)
		}
		return out
	default:
		return v
	}
}

// toYAML converts a Config tree back into goccy ordered-map values so that
// marshalling preserves key order.
func toYAML(v any) any {
	switch t := v.(type) {
	case Config:
		ms := make(yaml.MapSlice, 0, len(t))
		for _, e := range t {
			ms = append(ms, yaml.MapItem{Key: e.Key, Value: toYAML(e.Value)})
		}
		return ms
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toYAML(e)
		}
		return out
	default:
		return v
	}
}
