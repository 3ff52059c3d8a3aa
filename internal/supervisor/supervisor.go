// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package supervisor runs the polling loop: it drains the subreddit's item
// streams each round, evaluates the current rule snapshot against every
// fresh item, and reloads rules when their source changes. Concurrency ends
// here; evaluation itself is synchronous per item.
package supervisor

import (
	"context"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/josephwegner/better-auto-moderator/internal/engine"
	"github.com/josephwegner/better-auto-moderator/internal/reddit"
	"github.com/josephwegner/better-auto-moderator/internal/rules"
)

// ItemSource is one polled stream. Implemented by *reddit.Stream.
type ItemSource interface {
	Kind() reddit.StreamKind
	Poll() ([]engine.Item, error)
}

// AutoModPusher pushes rendered legacy rules to the site's native engine.
// Implemented by *reddit.Subreddit via UpdateWikiPage.
type AutoModPusher interface {
	UpdateWikiPage(name, content, reason string) error
}

// snapshot is one immutable loaded rule set.
type snapshot struct {
	rules  []*rules.Rule
	global rules.GlobalConfig
}

// Options configure a Supervisor.
type Options struct {
	// Pause is the sleep between rounds.
	Pause time.Duration
	// ReloadRounds is how many rounds pass between source freshness checks.
	ReloadRounds int
	// Pusher receives the rendered non-extension rules when the loaded
	// global config sets overwrite_automoderator. Nil disables pushing.
	Pusher AutoModPusher
}

// Supervisor owns the rule snapshot and the round loop.
type Supervisor struct {
	source  RuleSource
	streams []ItemSource
	opts    Options

	eval *engine.Evaluator
	disp *engine.Dispatcher

	current atomic.Pointer[snapshot]
	rounds  int
}

// New builds a supervisor over the given rule source and streams.
func New(source RuleSource, streams []ItemSource, opts Options) *Supervisor {
	if opts.Pause <= 0 {
		opts.Pause = 2500 * time.Millisecond
	}
	if opts.ReloadRounds <= 0 {
		opts.ReloadRounds = 5
	}
	return &Supervisor{
		source:  source,
		streams: streams,
		opts:    opts,
		eval:    engine.NewEvaluator(),
		disp:    engine.NewDispatcher(),
	}
}

// Load performs the initial rule load. Must be called before Run.
func (s *Supervisor) Load() error {
	return s.reload()
}

// Run polls until the context is cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	if s.current.Load() == nil {
		if err := s.Load(); err != nil {
			return err
		}
	}

	log.Infof("Supervising %d streams, %d rules loaded", len(s.streams), len(s.current.Load().rules))

	for {
		s.round()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.opts.Pause):
		}
	}
}

// round drains every applicable stream once. Stream errors are logged and
// the round continues; the site coming back heals the loop on its own.
func (s *Supervisor) round() {
	s.rounds++
	if s.rounds%s.opts.ReloadRounds == 0 {
		s.maybeReload()
	}

	snap := s.current.Load()
	needed := streamsNeeded(snap.rules)

	for _, stream := range s.streams {
		if !needed[stream.Kind()] {
			continue
		}
		items, err := stream.Poll()
		if err != nil {
			log.Warnf("Polling %s failed: %v", stream.Kind(), err)
			continue
		}
		for _, item := range items {
			s.process(snap, stream.Kind(), item)
		}
	}
}

// process runs the snapshot's rules against one item, first match wins.
func (s *Supervisor) process(snap *snapshot, origin reddit.StreamKind, item engine.Item) {
	log.Debugf("Processing %s %s", item.Kind(), item.Fullname())

	for _, r := range snap.rules {
		if !ruleApplies(r, origin, item) {
			continue
		}
		matched, rec := s.eval.Evaluate(r, item)
		if !matched {
			continue
		}
		s.disp.Dispatch(r, item, rec)
		return
	}
}

func (s *Supervisor) maybeReload() {
	changed, err := s.source.Changed()
	if err != nil {
		log.Warnf("Could not check rule source: %v", err)
		return
	}
	if !changed {
		return
	}

	log.Info("Rule source changed, reloading")
	if err := s.reload(); err != nil {
		log.Errorf("Rule reload failed, keeping previous rules: %v", err)
	}
}

func (s *Supervisor) reload() error {
	rs, global, err := s.source.Load()
	if err != nil {
		return err
	}

	enforced := rs
	if global.OverwriteAutoModerator {
		if err := s.push(rs); err != nil {
			log.Errorf("Could not push rules to the native engine: %v", err)
		} else {
			// The native engine now owns everything it can express; this
			// process enforces only the extension rules.
			enforced = extensionRules(rs)
		}
	}

	s.current.Store(&snapshot{rules: enforced, global: global})
	log.Infof("Loaded %d rules (%d enforced here)", len(rs), len(enforced))
	return nil
}

func (s *Supervisor) push(rs []*rules.Rule) error {
	if s.opts.Pusher == nil {
		return nil
	}
	rendered, err := rules.RenderAll(rs)
	if err != nil {
		return err
	}
	return s.opts.Pusher.UpdateWikiPage(autoModPage, rendered, "Better Auto Moderator push")
}

func extensionRules(rs []*rules.Rule) []*rules.Rule {
	var out []*rules.Rule
	for _, r := range rs {
		if r.RequiresBAM {
			out = append(out, r)
		}
	}
	return out
}

// streamsNeeded maps the loaded rule types onto the streams worth polling.
func streamsNeeded(rs []*rules.Rule) map[reddit.StreamKind]bool {
	types := make(map[string]bool, len(rs))
	for _, r := range rs {
		types[r.Type] = true
	}

	needed := make(map[reddit.StreamKind]bool)
	if types[rules.TypeAny] || types[rules.TypeSubmission] {
		needed[reddit.StreamSubmissions] = true
		needed[reddit.StreamEdited] = true
	}
	if types[rules.TypeAny] || types[rules.TypeComment] {
		needed[reddit.StreamComments] = true
		needed[reddit.StreamEdited] = true
	}
	if types[rules.TypeModqueue] {
		needed[reddit.StreamModqueue] = true
	}
	if types[rules.TypeReport] {
		needed[reddit.StreamReports] = true
	}
	if types[rules.TypeModmail] {
		needed[reddit.StreamModmail] = true
	}
	return needed
}

// ruleApplies reports whether a rule's type covers an item from the given
// stream. Moderation-queue streams only run their dedicated rule types; the
// content streams run typed and untyped rules by item kind.
func ruleApplies(r *rules.Rule, origin reddit.StreamKind, item engine.Item) bool {
	switch origin {
	case reddit.StreamModqueue:
		return r.Type == rules.TypeModqueue
	case reddit.StreamReports:
		return r.Type == rules.TypeReport
	case reddit.StreamModmail:
		return r.Type == rules.TypeModmail
	default:
		switch r.Type {
		case rules.TypeAny:
			return true
		case rules.TypeSubmission:
			return item.Kind() == engine.KindSubmission
		case rules.TypeComment:
			return item.Kind() == engine.KindComment
		default:
			return false
		}
	}
}
