// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rules implements the BAM rule dialect: an extension of Reddit
// AutoModerator's YAML vocabulary. It parses rule documents into normalized
// predicate+action programs, expands standards, tracks which rules need the
// extended engine, and renders upstream-compatible rules back to YAML.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

// Rule types accepted by the `type` meta key.
const (
	TypeAny        = "any"
	TypeSubmission = "submission"
	TypeComment    = "comment"
	TypeModqueue   = "modqueue"
	TypeModmail    = "modmail"
	TypeReport     = "report"
)

// priorityActions are the actions that make a rule sort ahead of all others.
var priorityActions = map[string]bool{
	"remove": true,
	"spam":   true,
	"filter": true,
}

// bamNames are check and action names that upstream AutoModerator does not
// understand. Seeing any of them marks the rule as requiring BAM.
var bamNames = map[string]bool{
	"parent_comment":       true,
	"combined_karma":       true,
	"reports":              true,
	"is_edited":            true,
	"comment":              true,
	"reply":                true,
	"message":              true,
	"modmail":              true,
	"set_flair":            true,
	"set_sticky":           true,
	"set_locked":           true,
	"set_nsfw":             true,
	"set_spoiler":          true,
	"set_contest_mode":     true,
	"set_original_content": true,
	"set_suggested_sort":   true,
}

// bamPrefixes extend bamNames to whole families of extension checks.
var bamPrefixes = []string{"crosspost_", "media_"}

// GlobalConfig is the decoded top-level configuration page.
type GlobalConfig struct {
	OverwriteAutoModerator bool `yaml:"overwrite_automoderator"`
}

// ParseGlobalConfig decodes the top-level configuration page. An empty page
// yields the zero config.
func ParseGlobalConfig(src string) (GlobalConfig, error) {
	var g GlobalConfig
	if strings.TrimSpace(src) == "" {
		return g, nil
	}
	if err := yaml.Unmarshal([]byte(src), &g); err != nil {
		return GlobalConfig{}, fmt.Errorf("rules: parsing global config: %w", err)
	}
	return g, nil
}

// Rule is one parsed rule document. Immutable after construction.
type Rule struct {
	// Raw is the source mapping as decoded from YAML.
	Raw Config
	// Config is the normalized mapping after parse handlers and standards
	// expansion. Meta keys consumed by handlers (type, priority, bam) are
	// not present here.
	Config Config
	// Type restricts which streams the rule applies to. Defaults to "any".
	Type string
	// Priority orders rules within their priority class. Defaults to 0.
	Priority int
	// RequiresBAM is true when the rule uses any check, action or option the
	// upstream engine does not support. Monotonic: once set it stays set.
	RequiresBAM bool
}

// ParseError wraps a per-document parse failure with the document's index in
// its source file or wiki page.
type ParseError struct {
	Index int
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rule document %d: %v", e.Index, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// New builds a Rule from a decoded document.
func New(doc Config, global GlobalConfig) (*Rule, error) {
	r := &Rule{Raw: doc, Type: TypeAny}

	if err := r.parse(doc, &r.Config); err != nil {
		return nil, err
	}

	// Filter can only be carried out by the upstream engine, and only when
	// BAM is the one pushing rules to it.
	if r.Config.String("action") == "filter" && (r.RequiresBAM || !global.OverwriteAutoModerator) {
		return nil, fmt.Errorf("filter actions cannot be run by BAM")
	}

	return r, nil
}

// FromConfig wraps an already-normalized mapping as a Rule. Used for the
// nested sub-rules built from scope keys at evaluation and dispatch time.
func FromConfig(cfg Config) *Rule {
	return &Rule{Raw: cfg, Config: cfg, Type: TypeAny}
}

func (r *Rule) parse(src Config, dst *Config) error {
	for _, ent := range src {
		switch ent.Key {
		case "type":
			r.Type = strings.ToLower(strings.TrimSpace(fmt.Sprint(ent.Value)))
			if r.Type == TypeModmail || r.Type == TypeReport {
				r.RequiresBAM = true
			}
		case "priority":
			r.Priority = toInt(ent.Value)
		case "bam":
			// `bam: true` forces a rule to be run by BAM; good for testing.
			// The flag is monotonic, so `bam: false` never clears it.
			if b, _ := ent.Value.(bool); b {
				r.RequiresBAM = true
			}
		case "ignore_reports":
			if b, _ := ent.Value.(bool); b {
				dst.Set("ignore_reports", true)
				r.RequiresBAM = true
			}
		case "log", "is_banned":
			dst.Set(ent.Key, ent.Value)
			r.RequiresBAM = true
		default:
			r.markExtensions(ent.Key)
			if sub, ok := ent.Value.(Config); ok {
				// Mappings are sub-scopes and may themselves carry BAM keys.
				nested := Config{}
				if err := r.parse(sub, &nested); err != nil {
					return err
				}
				dst.Set(ent.Key, nested)
			} else {
				dst.Set(ent.Key, ent.Value)
			}
		}
	}

	return expandStandards(dst)
}

// markExtensions flips RequiresBAM when the key names any extension check or
// action.
func (r *Rule) markExtensions(rawKey string) {
	for _, name := range ParseKey(rawKey).Names {
		if bamNames[name] {
			r.RequiresBAM = true
			return
		}
		for _, prefix := range bamPrefixes {
			if strings.HasPrefix(name, prefix) {
				r.RequiresBAM = true
				return
			}
		}
	}
}

// IsPriority reports whether the rule sorts into the priority class.
func (r *Rule) IsPriority() bool {
	return priorityActions[r.Config.String("action")]
}

// HasCheck reports whether any key in the rule names the given check,
// including inside OR-groups. The action dispatcher uses this to decide
// whether `approve` should re-approve an already-approved item that has
// accumulated reports.
func (r *Rule) HasCheck(name string) bool {
	for _, ent := range r.Config {
		for _, n := range ParseKey(ent.Key).Names {
			if n == name {
				return true
			}
		}
	}
	return false
}

// Sort orders rules in place: priority-action rules first, then by
// descending numeric priority. The sort is stable so document order breaks
// ties.
func Sort(rs []*Rule) {
	sort.SliceStable(rs, func(i, j int) bool {
		pi, pj := rs[i].IsPriority(), rs[j].IsPriority()
		if pi != pj {
			return pi
		}
		return rs[i].Priority > rs[j].Priority
	})
}

// ParseDocuments splits src on `---` separators and parses each document.
// A failing document is reported but does not stop the remaining rules from
// loading.
func ParseDocuments(src string, global GlobalConfig) ([]*Rule, []error) {
	var (
		rules []*Rule
		errs  []error
	)

	for i, doc := range SplitDocuments(src) {
		cfg, err := decodeConfig([]byte(doc))
		if err != nil {
			errs = append(errs, &ParseError{Index: i, Err: err})
			continue
		}
		if len(cfg) == 0 {
			continue
		}
		r, err := New(cfg, global)
		if err != nil {
			errs = append(errs, &ParseError{Index: i, Err: err})
			continue
		}
		rules = append(rules, r)
	}

	Sort(rules)
	return rules, errs
}

// SplitDocuments splits a rules file into its `---`-separated documents,
// dropping empty ones.
func SplitDocuments(src string) []string {
	var (
		docs []string
		cur  []string
	)
	flush := func() {
		doc := strings.TrimSpace(strings.Join(cur, "\n"))
		if doc != "" {
			docs = append(docs, doc)
		}
		cur = cur[:0]
	}
	for _, line := range strings.Split(src, "\n") {
		if strings.TrimSpace(line) == "---" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return docs
}

// StripWikiIndent removes the leading four-space indentation that wiki
// markdown requires around code blocks.
func StripWikiIndent(src string) string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, "    ")
	}
	return strings.Join(lines, "\n")
}

// RenderAutoModerator dumps the rule's normalized config, plus the derived
// priority and type keys, as YAML that upstream AutoModerator understands.
func (r *Rule) RenderAutoModerator() (string, error) {
	cfg := make(Config, len(r.Config), len(r.Config)+2)
	copy(cfg, r.Config)
	cfg.Set("priority", r.Priority)
	cfg.Set("type", r.Type)

	out, err := yaml.Marshal(toYAML(cfg))
	if err != nil {
		return "", fmt.Errorf("rules: rendering rule: %w", err)
	}
	return string(out), nil
}

// RenderAll renders every non-BAM rule, joined the way the upstream config
// page expects.
func RenderAll(rs []*Rule) (string, error) {
	var docs []string
	for _, r := range rs {
		if r.RequiresBAM {
			continue
		}
		doc, err := r.RenderAutoModerator()
		if err != nil {
			return "", err
		}
		docs = append(docs, strings.TrimRight(doc, "\n"))
	}
	return strings.Join(docs, "\n---\n\n"), nil
}

func toInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case uint64:
		return int(t)
	case float64:
		return int(t)
	default:
		return 0
	}
}
