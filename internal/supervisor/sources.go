// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/josephwegner/better-auto-moderator/internal/reddit"
	"github.com/josephwegner/better-auto-moderator/internal/rules"
)

// Wiki page names used when rules live on the subreddit wiki.
const (
	configPage  = "better_auto_moderator"
	rulesPage   = "better_auto_moderator/rules"
	autoModPage = "config/automoderator"
)

// RuleSource loads the current rule set. Per-document parse failures are
// logged inside Load and never abort the load.
type RuleSource interface {
	Load() ([]*rules.Rule, rules.GlobalConfig, error)
	// Changed reports whether the source has newer content than the last
	// successful Load.
	Changed() (bool, error)
}

// WikiStore is the wiki surface a wiki rule source needs. Implemented by
// *reddit.Subreddit.
type WikiStore interface {
	WikiPage(name string) (reddit.WikiPage, error)
	WikiRevisedAt(name string) (time.Time, error)
	UpdateWikiPage(name, content, reason string) error
	SetWikiPageModOnly(name string) error
}

// WikiRuleSource reads the config and rule pages from the subreddit wiki.
type WikiRuleSource struct {
	wiki WikiStore

	configRevised time.Time
	rulesRevised  time.Time
}

// NewWikiRuleSource prepares the wiki pages, creating and locking them to
// moderators on first use.
func NewWikiRuleSource(wiki WikiStore) (*WikiRuleSource, error) {
	s := &WikiRuleSource{wiki: wiki}

	for _, page := range []string{configPage, rulesPage} {
		if _, err := wiki.WikiPage(page); err != nil {
			log.Infof("Creating wiki page %s", page)
			if err := wiki.UpdateWikiPage(page, "", "initial page"); err != nil {
				return nil, fmt.Errorf("supervisor: creating wiki page %s: %w", page, err)
			}
		}
		if err := wiki.SetWikiPageModOnly(page); err != nil {
			log.Warnf("Could not restrict wiki page %s to moderators: %v", page, err)
		}
	}

	return s, nil
}

func (s *WikiRuleSource) Load() ([]*rules.Rule, rules.GlobalConfig, error) {
	cfgPage, err := s.wiki.WikiPage(configPage)
	if err != nil {
		return nil, rules.GlobalConfig{}, fmt.Errorf("supervisor: reading %s: %w", configPage, err)
	}
	global, err := rules.ParseGlobalConfig(rules.StripWikiIndent(cfgPage.Content))
	if err != nil {
		return nil, rules.GlobalConfig{}, fmt.Errorf("supervisor: parsing %s: %w", configPage, err)
	}

	page, err := s.wiki.WikiPage(rulesPage)
	if err != nil {
		return nil, rules.GlobalConfig{}, fmt.Errorf("supervisor: reading %s: %w", rulesPage, err)
	}

	rs, errs := rules.ParseDocuments(rules.StripWikiIndent(page.Content), global)
	for _, perr := range errs {
		log.Errorf("Skipping rule: %v", perr)
	}

	s.configRevised = cfgPage.RevisedAt
	s.rulesRevised = page.RevisedAt
	return rs, global, nil
}

// Changed compares both pages' revision dates against the last load.
func (s *WikiRuleSource) Changed() (bool, error) {
	cfgAt, err := s.wiki.WikiRevisedAt(configPage)
	if err != nil {
		return false, err
	}
	rulesAt, err := s.wiki.WikiRevisedAt(rulesPage)
	if err != nil {
		return false, err
	}
	return cfgAt.After(s.configRevised) || rulesAt.After(s.rulesRevised), nil
}

// FileRuleSource reads rules from a local YAML file and watches it for
// changes with fsnotify.
type FileRuleSource struct {
	path    string
	global  rules.GlobalConfig
	watcher *fsnotify.Watcher
	changed atomic.Bool
}

// NewFileRuleSource watches path's directory; edits to the file flag the
// source as changed. The watcher lives until Close.
func NewFileRuleSource(path string, global rules.GlobalConfig) (*FileRuleSource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("supervisor: creating watcher: %w", err)
	}
	// Watch the directory rather than the file: editors replace files on
	// save, which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("supervisor: watching %s: %w", filepath.Dir(path), err)
	}

	s := &FileRuleSource{path: path, global: global, watcher: watcher}
	go s.watch()
	return s, nil
}

func (s *FileRuleSource) watch() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				log.Debugf("Rules file changed: %s", event.Op)
				s.changed.Store(true)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("Rules file watcher error: %v", err)
		}
	}
}

func (s *FileRuleSource) Load() ([]*rules.Rule, rules.GlobalConfig, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, rules.GlobalConfig{}, fmt.Errorf("supervisor: reading rules file: %w", err)
	}

	rs, errs := rules.ParseDocuments(string(data), s.global)
	for _, perr := range errs {
		log.Errorf("Skipping rule: %v", perr)
	}

	s.changed.Store(false)
	return rs, s.global, nil
}

func (s *FileRuleSource) Changed() (bool, error) {
	return s.changed.Load(), nil
}

// Close stops the file watcher.
func (s *FileRuleSource) Close() error {
	return s.watcher.Close()
}

var _ RuleSource = (*WikiRuleSource)(nil)
var _ RuleSource = (*FileRuleSource)(nil)
var _ WikiStore = (*reddit.Subreddit)(nil)
