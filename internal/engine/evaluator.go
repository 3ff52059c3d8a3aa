// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/josephwegner/better-auto-moderator/internal/rules"
)

// moderatorsExemptActions match moderators' own content by default unless
// the rule opts out.
var moderatorsExemptActions = map[string]bool{
	"remove": true,
	"report": true,
	"spam":   true,
	"filter": true,
}

// thresholdChecks are the names eligible for satisfy_any_threshold OR-ing.
var thresholdChecks = map[string]bool{
	"comment_karma":  true,
	"post_karma":     true,
	"combined_karma": true,
	"account_age":    true,
}

// scopeSelectors name the keys whose mapping values are evaluated as
// sub-rules against a different facade.
var scopeSelectors = map[string]bool{
	"author":              true,
	"parent_submission":   true,
	"parent_comment":      true,
	"crosspost_subreddit": true,
	"crosspost_author":    true,
}

// Evaluator decides whether a rule matches an item. Evaluation is pure
// except for populating the match record; all side effects live in the
// dispatcher.
type Evaluator struct {
	// Now supplies the current instant for time comparators. Swappable in
	// tests.
	Now func() time.Time
}

// NewEvaluator returns an evaluator using the wall clock.
func NewEvaluator() *Evaluator {
	return &Evaluator{Now: time.Now}
}

// Evaluate runs the rule's checks against the item. The returned record maps
// check names to the raw getter values seen during evaluation and feeds the
// placeholder engine during dispatch.
func (e *Evaluator) Evaluate(rule *rules.Rule, item Item) (bool, *Record) {
	rec := NewRecord()

	if e.moderatorBlocked(rule, item) {
		return false, rec
	}

	t := newTarget(item)
	t.ignoreBlockquotes = rule.Config.Bool("ignore_blockquotes")

	return e.evalConfig(rule.Config, checksFor(item), t, item, rec), rec
}

// moderatorBlocked applies the moderators_exempt gate: rules with punitive
// actions skip items authored by the subreddit's own moderators.
func (e *Evaluator) moderatorBlocked(rule *rules.Rule, item Item) bool {
	exempt := moderatorsExemptActions[rule.Config.String("action")]
	if v, ok := rule.Config.Get("moderators_exempt"); ok {
		exempt, _ = v.(bool)
	}
	if !exempt {
		return false
	}

	isMod, err := item.Subreddit().IsModerator(item.AuthorName())
	if err != nil {
		log.Warnf("Could not resolve moderator list for %s: %v", item.Subreddit().Name(), err)
		return true
	}
	return isMod
}

func (e *Evaluator) evalConfig(cfg rules.Config, table map[string]check, t *target, root Item, rec *Record) bool {
	thresholdMode := cfg.Bool("satisfy_any_threshold")
	thresholdMet := false

	for _, ent := range cfg {
		key := rules.ParseKey(ent.Key)
		if len(key.Names) == 0 {
			continue
		}

		// Scope selectors recurse with a different facade and check table.
		if sub, ok := ent.Value.(rules.Config); ok && len(key.Names) == 1 && scopeSelectors[key.Names[0]] {
			passed := e.evalScope(key.Names[0], sub, t, root, rec)
			if key.Negate {
				passed = !passed
			}
			if !passed {
				return false
			}
			continue
		}

		var (
			names []string
			entry []check
		)
		for _, n := range key.Names {
			if c, ok := lookupCheck(table, n); ok {
				names = append(names, canonicalCheckName(n))
				entry = append(entry, c)
			}
		}
		if len(names) == 0 {
			// Settings and action keys are not checks; the dispatcher may
			// still consume them.
			continue
		}

		passed, failed := e.evalKey(key, names, entry, ent.Value, t, root, rec)
		if failed {
			return false
		}
		passed = passed != key.Negate

		eligible := allThresholdEligible(names)
		if !passed && (!thresholdMode || !eligible) {
			return false
		}
		if passed && thresholdMode && eligible {
			thresholdMet = true
		}
	}

	if thresholdMode {
		return thresholdMet
	}
	return true
}

// evalKey runs one key's OR-group: names left-to-right, values left-to-right,
// first success wins. The second return value signals a hard skip that fails
// the whole rule.
func (e *Evaluator) evalKey(key rules.Key, names []string, entries []check, value any, t *target, root Item, rec *Record) (passed, failed bool) {
	values := asValueList(value)
	env := cmpEnv{now: e.Now()}

	for i, name := range names {
		c := entries[i]

		raw, err := c.get(t)
		if err != nil {
			log.Debugf("Check %s skipped: %v", name, err)
			return false, true
		}
		if c.hasSkip && raw == c.skipIf {
			return false, true
		}
		rec.Set(name, raw)

		opts := make([]string, 0, len(c.defaultOpts)+len(key.Options))
		opts = append(opts, c.defaultOpts...)
		opts = append(opts, key.Options...)

		cmp := comparators[resolveComparator(c.comparator, opts)]

		for _, v := range values {
			test := v
			if s, ok := v.(string); ok {
				test = Substitute(s, root, rec)
			}
			ok, cmpErr := cmp(env, raw, test, opts)
			if cmpErr != nil {
				log.Errorf("Comparator error on key %q: %v", key.Raw, cmpErr)
				return false, true
			}
			if ok {
				return true, false
			}
		}
	}

	return false, false
}

func (e *Evaluator) evalScope(name string, sub rules.Config, t *target, root Item, rec *Record) bool {
	switch name {
	case "author":
		author, err := t.item.Author()
		if err != nil || author == nil {
			return false
		}
		st := &target{item: t.item, post: t.post, comment: t.comment, author: author}
		return e.evalConfig(sub, authorChecks, st, root, rec)

	case "parent_submission":
		if t.comment == nil {
			return false
		}
		parent, err := t.comment.ParentSubmission()
		if err != nil || parent == nil {
			return false
		}
		return e.evalConfig(sub, submissionScope, newTarget(parent), root, rec)

	case "parent_comment":
		if t.comment == nil {
			return false
		}
		parent, err := t.comment.ParentComment()
		if err != nil || parent == nil {
			return false
		}
		return e.evalConfig(sub, commentScope, newTarget(parent), root, rec)

	case "crosspost_subreddit":
		parent := crosspostParentOf(t)
		if parent == nil {
			return false
		}
		st := &target{item: parent, post: parent, sr: parent.Subreddit()}
		return e.evalConfig(sub, crosspostSubredditChecks, st, root, rec)

	case "crosspost_author":
		parent := crosspostParentOf(t)
		if parent == nil {
			return false
		}
		author, err := parent.Author()
		if err != nil || author == nil {
			return false
		}
		st := &target{item: parent, post: parent, author: author}
		return e.evalConfig(sub, authorChecks, st, root, rec)
	}

	return false
}

func crosspostParentOf(t *target) Post {
	if t.post == nil {
		return nil
	}
	parent, err := t.post.CrosspostParent()
	if err != nil || parent == nil {
		return nil
	}
	return parent
}

func canonicalCheckName(name string) string {
	if name == "report_reason" {
		return "report_reasons"
	}
	return name
}

func allThresholdEligible(names []string) bool {
	for _, n := range names {
		if !thresholdChecks[n] {
			return false
		}
	}
	return true
}

func asValueList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}
