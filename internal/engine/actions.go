// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	log "github.com/sirupsen/logrus"

	"github.com/josephwegner/better-auto-moderator/internal/rules"
)

// defaultSubject is used for message and modmail actions when the rule does
// not set one.
const defaultSubject = "Better Auto Moderator"

// Dispatcher executes the action keys of a matched rule against an item.
type Dispatcher struct{}

// NewDispatcher returns a dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Dispatch walks the rule's keys in declared order and runs every action it
// recognizes. It reports whether any action ran.
func (d *Dispatcher) Dispatch(rule *rules.Rule, item Item, rec *Record) bool {
	ran := false
	for _, ent := range rule.Config {
		if d.dispatchKey(ent.Key, ent.Value, rule, item, rec) {
			ran = true
		}
	}
	return ran
}

func (d *Dispatcher) dispatchKey(key string, value any, rule *rules.Rule, item Item, rec *Record) bool {
	switch key {
	case "action":
		return d.runAction(rule.Config.String("action"), rule, item, rec)
	case "ignore_reports":
		if b, _ := value.(bool); !b {
			return false
		}
		log.Infof("Ignoring reports on %s %s", item.Kind(), item.ID())
		return logged(item.IgnoreReports())
	case "log":
		log.Infof("Rule log for %s %s: %s", item.Kind(), item.ID(), d.text(value, item, rec))
		return true
	case "comment", "reply":
		return d.reply(rule, item, rec, d.text(value, item, rec))
	case "message":
		subject := rule.Config.String("message_subject")
		if subject == "" {
			subject = defaultSubject
		}
		log.Infof("Messaging %s about %s %s", item.AuthorName(), item.Kind(), item.ID())
		return logged(item.Subreddit().Message(item.AuthorName(), subject, d.text(value, item, rec)))
	case "modmail":
		subject := rule.Config.String("modmail_subject")
		if subject == "" {
			subject = defaultSubject
		}
		log.Infof("Sending modmail about %s %s", item.Kind(), item.ID())
		return logged(item.Subreddit().Modmail(subject, d.text(value, item, rec)))
	case "set_sticky":
		return d.setSticky(item, truthy(value))
	case "set_locked":
		log.Infof("Setting locked=%v on %s %s", truthy(value), item.Kind(), item.ID())
		return logged(item.Lock(truthy(value)))
	case "set_nsfw":
		return d.postToggle(item, "nsfw", truthy(value), Post.SetNSFW)
	case "set_spoiler":
		return d.postToggle(item, "spoiler", truthy(value), Post.SetSpoiler)
	case "set_contest_mode":
		return d.postToggle(item, "contest mode", truthy(value), Post.SetContestMode)
	case "set_original_content":
		return d.postToggle(item, "original content", truthy(value), Post.SetOriginalContent)
	case "set_suggested_sort":
		post, ok := item.(Post)
		if !ok {
			return false
		}
		sort := d.text(value, item, rec)
		log.Infof("Setting suggested sort %q on submission %s", sort, item.ID())
		return logged(post.SetSuggestedSort(sort))
	case "set_flair":
		return d.setItemFlair(rule, item, rec, value)
	case "author":
		return d.dispatchAuthor(rule, item, rec, value)
	case "parent_submission":
		return d.dispatchParentSubmission(rule, item, rec, value)
	case "parent_comment":
		return d.dispatchParentComment(rule, item, rec, value)
	case "crosspost_author":
		return d.dispatchCrosspostAuthor(rule, item, rec, value)
	default:
		// Checks and settings; not ours to run.
		return false
	}
}

// runAction executes the rule's primary `action` value.
func (d *Dispatcher) runAction(action string, rule *rules.Rule, item Item, rec *Record) bool {
	// action_reason is only honored by the site on report actions; for
	// everything else it can only be logged.
	if reason := rule.Config.String("action_reason"); reason != "" && action != "report" {
		log.Infof("Note: action_reason cannot be attached to rules enforced by BAM. Logging instead: %s",
			Substitute(reason, item, rec))
	}

	switch action {
	case "approve":
		return d.approve(rule, item)
	case "remove":
		if item.IsApproved() {
			return false
		}
		log.Infof("Removing %s %s", item.Kind(), item.ID())
		return logged(item.Remove(false))
	case "spam":
		log.Infof("Spamming %s %s", item.Kind(), item.ID())
		return logged(item.Remove(true))
	case "report":
		reason := rule.Config.String("report_reason")
		if reason == "" {
			reason = rule.Config.String("action_reason")
		}
		reason = Substitute(reason, item, rec)
		log.Infof("Reporting %s %s: %s", item.Kind(), item.ID(), reason)
		return logged(item.Report(reason))
	case "":
		return false
	default:
		log.Warnf("Action %s invoked, but not defined", action)
		return false
	}
}

func (d *Dispatcher) approve(rule *rules.Rule, item Item) bool {
	if item.IsRemoved() {
		return false
	}
	// Re-approving only makes sense when the rule was looking at reports;
	// approval clears them.
	if item.IsApproved() && !rule.HasCheck("reports") {
		return false
	}
	log.Infof("Approving %s %s", item.Kind(), item.ID())
	return logged(item.Approve())
}

func (d *Dispatcher) reply(rule *rules.Rule, item Item, rec *Record, body string) bool {
	log.Infof("Replying to %s %s", item.Kind(), item.ID())
	reply, err := item.Reply(body)
	if err != nil {
		log.Errorf("Reply failed: %v", err)
		return false
	}
	if rule.Config.Bool("comment_locked") {
		if err := reply.Lock(true); err != nil {
			log.Errorf("Could not lock reply: %v", err)
		}
	}
	if rule.Config.Bool("comment_stickied") {
		if err := reply.DistinguishSticky(true); err != nil {
			log.Errorf("Could not sticky reply: %v", err)
		}
	}
	return true
}

func (d *Dispatcher) setSticky(item Item, stickied bool) bool {
	switch it := item.(type) {
	case Post:
		log.Infof("Setting sticky=%v on submission %s", stickied, item.ID())
		return logged(it.Sticky(stickied))
	case Comment:
		log.Infof("Setting sticky=%v on comment %s", stickied, item.ID())
		return logged(it.DistinguishSticky(stickied))
	default:
		return false
	}
}

func (d *Dispatcher) postToggle(item Item, what string, enabled bool, effect func(Post, bool) error) bool {
	post, ok := item.(Post)
	if !ok {
		return false
	}
	log.Infof("Setting %s=%v on submission %s", what, enabled, item.ID())
	return logged(effect(post, enabled))
}

// setItemFlair applies link flair to a submission. Accepts a plain string
// (text), a [text, css_class] pair, or a mapping with template_id.
func (d *Dispatcher) setItemFlair(rule *rules.Rule, item Item, rec *Record, value any) bool {
	post, ok := item.(Post)
	if !ok {
		return false
	}
	if post.FlairText() != "" && !rule.Config.Bool("overwrite_flair") {
		return false
	}

	flair, err := parseFlairValue(value)
	if err != nil {
		log.Errorf("set_flair: %v", err)
		return false
	}
	flair.Text = Substitute(flair.Text, item, rec)

	log.Infof("Setting flair on submission %s", item.ID())
	return logged(post.SetFlair(flair.Text, flair.CSSClass, flair.TemplateID))
}

// dispatchAuthor runs the author-scoped actions of a matched rule.
func (d *Dispatcher) dispatchAuthor(rule *rules.Rule, item Item, rec *Record, value any) bool {
	sub, ok := value.(rules.Config)
	if !ok {
		return false
	}
	author, err := item.Author()
	if err != nil || author == nil {
		return false
	}
	return d.authorActions(rule, item, author, rec, sub)
}

func (d *Dispatcher) authorActions(rule *rules.Rule, item Item, author Author, rec *Record, cfg rules.Config) bool {
	ran := false
	for _, ent := range cfg {
		switch ent.Key {
		case "set_flair":
			if d.setAuthorFlair(rule, item, author, rec, ent.Value) {
				ran = true
			}
		case "message":
			subject := cfg.String("message_subject")
			if subject == "" {
				subject = rule.Config.String("message_subject")
			}
			if subject == "" {
				subject = defaultSubject
			}
			log.Infof("Messaging %s", author.Name())
			if logged(item.Subreddit().Message(author.Name(), subject, d.text(ent.Value, item, rec))) {
				ran = true
			}
		case "log":
			log.Infof("Rule log for author %s: %s", author.Name(), d.text(ent.Value, item, rec))
			ran = true
		}
	}
	return ran
}

func (d *Dispatcher) setAuthorFlair(rule *rules.Rule, item Item, author Author, rec *Record, value any) bool {
	current, err := author.Flair()
	if err != nil {
		log.Errorf("Could not read flair for %s: %v", author.Name(), err)
		return false
	}
	if current.Text != "" && !rule.Config.Bool("overwrite_flair") {
		return false
	}

	flair, err := parseFlairValue(value)
	if err != nil {
		log.Errorf("author set_flair: %v", err)
		return false
	}
	flair.Text = Substitute(flair.Text, item, rec)

	log.Infof("Setting flair for %s", author.Name())
	return logged(author.SetFlair(flair.Text, flair.CSSClass, flair.TemplateID))
}

func (d *Dispatcher) dispatchParentSubmission(rule *rules.Rule, item Item, rec *Record, value any) bool {
	sub, ok := value.(rules.Config)
	if !ok {
		return false
	}
	comment, ok := item.(Comment)
	if !ok {
		return false
	}
	parent, err := comment.ParentSubmission()
	if err != nil || parent == nil {
		return false
	}
	return d.Dispatch(inheritSettings(rule, sub), parent, rec)
}

func (d *Dispatcher) dispatchParentComment(rule *rules.Rule, item Item, rec *Record, value any) bool {
	sub, ok := value.(rules.Config)
	if !ok {
		return false
	}
	comment, ok := item.(Comment)
	if !ok {
		return false
	}
	parent, err := comment.ParentComment()
	if err != nil || parent == nil {
		// Top-level comments have no parent comment; silently a no-op.
		return false
	}
	return d.Dispatch(inheritSettings(rule, sub), parent, rec)
}

func (d *Dispatcher) dispatchCrosspostAuthor(rule *rules.Rule, item Item, rec *Record, value any) bool {
	sub, ok := value.(rules.Config)
	if !ok {
		return false
	}
	post, ok := item.(Post)
	if !ok {
		return false
	}
	parent, err := post.CrosspostParent()
	if err != nil || parent == nil {
		return false
	}
	author, err := parent.Author()
	if err != nil || author == nil {
		return false
	}
	return d.authorActions(rule, parent, author, rec, sub)
}

// inheritSettings builds the sub-rule for a scoped action block, carrying
// over the settings that modify how actions behave.
func inheritSettings(rule *rules.Rule, sub rules.Config) *rules.Rule {
	cfg := make(rules.Config, len(sub), len(sub)+4)
	copy(cfg, sub)
	for _, key := range []string{"overwrite_flair", "comment_locked", "comment_stickied", "report_reason"} {
		if v, ok := rule.Config.Get(key); ok && !cfg.Has(key) {
			cfg.Set(key, v)
		}
	}
	return rules.FromConfig(cfg)
}

// parseFlairValue normalizes the three accepted set_flair shapes.
func parseFlairValue(value any) (Flair, error) {
	switch v := value.(type) {
	case string:
		return Flair{Text: v}, nil
	case []any:
		flair := Flair{}
		if len(v) > 0 {
			flair.Text = stringify(v[0])
		}
		if len(v) > 1 {
			flair.CSSClass = stringify(v[1])
		}
		return flair, nil
	case rules.Config:
		template := v.String("template_id")
		if template == "" {
			return Flair{}, errMissingTemplate
		}
		return Flair{
			Text:       v.String("text"),
			CSSClass:   v.String("css_class"),
			TemplateID: template,
		}, nil
	default:
		return Flair{}, errBadFlairValue
	}
}

var (
	errMissingTemplate = errFlair("flair mappings require template_id")
	errBadFlairValue   = errFlair("flair value must be a string, [text, css_class] pair, or mapping")
)

type errFlair string

func (e errFlair) Error() string { return string(e) }

func (d *Dispatcher) text(value any, item Item, rec *Record) string {
	return Substitute(stringify(value), item, rec)
}

func truthy(v any) bool {
	b, _ := toBool(v)
	return b
}

// logged reports whether an effect ran, logging the failure when it didn't.
func logged(err error) bool {
	if err != nil {
		log.Errorf("Action failed: %v", err)
		return false
	}
	return true
}
