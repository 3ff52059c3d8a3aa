// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"errors"
	"strings"
)

// errNotApplicable is returned by getters whose subject does not exist on
// the current item (no media, not a crosspost, not a poll). The evaluator
// treats it like the skip sentinel: the rule fails, evaluation moves on.
var errNotApplicable = errors.New("check not applicable to this item")

// check binds a named getter to its default comparator and skip sentinel.
type check struct {
	// comparator is the default comparator tag; key options may override it.
	comparator string
	// defaultOpts are implied options, e.g. the built-in ordering of
	// body_longer_than. User options are appended after and take precedence.
	defaultOpts []string
	// skipIf is a sentinel getter value that fails the whole rule.
	skipIf any
	// hasSkip marks that skipIf is meaningful (so nil can be a sentinel).
	hasSkip bool
	get     func(t *target) (any, error)
}

// target is the subject a check scope runs against.
type target struct {
	item    Item
	post    Post      // non-nil when item is a submission
	comment Comment   // non-nil when item is a comment
	author  Author    // set in author scopes
	sr      Subreddit // set in crosspost_subreddit scopes

	ignoreBlockquotes bool
}

func newTarget(item Item) *target {
	t := &target{item: item}
	if p, ok := item.(Post); ok {
		t.post = p
	}
	if c, ok := item.(Comment); ok {
		t.comment = c
	}
	return t
}

// body returns the item body, honoring the rule's ignore_blockquotes
// setting by dropping quoted and code-indented lines.
func (t *target) body() string {
	body := t.item.Body()
	if !t.ignoreBlockquotes {
		return body
	}
	var kept []string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, ">") || strings.HasPrefix(line, "    ") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// itemChecks are available on every kind.
var itemChecks = map[string]check{
	"id": {comparator: CmpFullExact, get: func(t *target) (any, error) {
		return t.item.ID(), nil
	}},
	"body": {comparator: CmpIncludesWord, get: func(t *target) (any, error) {
		return t.body(), nil
	}},
	"body_longer_than": {comparator: CmpNumeric, defaultOpts: []string{OptGreaterThan}, get: func(t *target) (any, error) {
		return len([]rune(t.body())), nil
	}},
	"body_shorter_than": {comparator: CmpNumeric, defaultOpts: []string{OptLessThan}, get: func(t *target) (any, error) {
		return len([]rune(t.body())), nil
	}},
	"is_edited": {comparator: CmpBool, get: func(t *target) (any, error) {
		return t.item.IsEdited(), nil
	}},
	"reports": {comparator: CmpNumeric, get: func(t *target) (any, error) {
		return len(t.item.UserReports()) + len(t.item.ModReports()), nil
	}},
	"report_reasons": {comparator: CmpFullExact, get: func(t *target) (any, error) {
		var reasons []any
		for _, r := range t.item.UserReports() {
			reasons = append(reasons, r.Reason)
		}
		for _, r := range t.item.ModReports() {
			reasons = append(reasons, r.Reason)
		}
		return reasons, nil
	}},
}

// postChecks extend itemChecks for submissions.
var postChecks = map[string]check{
	"title": {comparator: CmpIncludesWord, get: func(t *target) (any, error) {
		return t.post.Title(), nil
	}},
	"url": {comparator: CmpIncludes, get: func(t *target) (any, error) {
		return t.post.URL(), nil
	}},
	"domain": {comparator: CmpFullExact, get: func(t *target) (any, error) {
		return t.post.Domain(), nil
	}},
	"flair_text": {comparator: CmpFullExact, get: func(t *target) (any, error) {
		return t.post.FlairText(), nil
	}},
	"flair_css_class": {comparator: CmpFullExact, get: func(t *target) (any, error) {
		return t.post.FlairCSSClass(), nil
	}},
	"flair_template_id": {comparator: CmpFullExact, get: func(t *target) (any, error) {
		return t.post.FlairTemplateID(), nil
	}},
	"is_poll": {comparator: CmpBool, get: func(t *target) (any, error) {
		return t.post.IsPoll(), nil
	}},
	"poll_option_text": {comparator: CmpIncludesWord, skipIf: nil, hasSkip: true, get: func(t *target) (any, error) {
		if !t.post.IsPoll() {
			return nil, nil
		}
		opts := make([]any, 0, len(t.post.PollOptions()))
		for _, o := range t.post.PollOptions() {
			opts = append(opts, o)
		}
		return opts, nil
	}},
	"poll_option_count": {comparator: CmpNumeric, skipIf: nil, hasSkip: true, get: func(t *target) (any, error) {
		if !t.post.IsPoll() {
			return nil, nil
		}
		return len(t.post.PollOptions()), nil
	}},
	"is_gallery": {comparator: CmpBool, get: func(t *target) (any, error) {
		return t.post.IsGallery(), nil
	}},
	"is_original_content": {comparator: CmpBool, get: func(t *target) (any, error) {
		return t.post.IsOriginalContent(), nil
	}},
	"crosspost_id": {comparator: CmpFullExact, get: func(t *target) (any, error) {
		parent, err := crosspostParent(t)
		if err != nil {
			return nil, err
		}
		return parent.ID(), nil
	}},
	"crosspost_title": {comparator: CmpIncludesWord, get: func(t *target) (any, error) {
		parent, err := crosspostParent(t)
		if err != nil {
			return nil, err
		}
		return parent.Title(), nil
	}},
	"media_author": {comparator: CmpFullExact, skipIf: "", hasSkip: true, get: func(t *target) (any, error) {
		return mediaField(t, Post.MediaAuthor)
	}},
	"media_author_url": {comparator: CmpIncludes, skipIf: "", hasSkip: true, get: func(t *target) (any, error) {
		return mediaField(t, Post.MediaAuthorURL)
	}},
	"media_title": {comparator: CmpIncludesWord, skipIf: "", hasSkip: true, get: func(t *target) (any, error) {
		return mediaField(t, Post.MediaTitle)
	}},
	"media_description": {comparator: CmpIncludesWord, skipIf: "", hasSkip: true, get: func(t *target) (any, error) {
		return mediaField(t, Post.MediaDescription)
	}},
}

// commentChecks extend itemChecks for comments.
var commentChecks = map[string]check{
	"is_top_level": {comparator: CmpBool, get: func(t *target) (any, error) {
		return t.comment.Depth() == 0, nil
	}},
	"is_submitter": {comparator: CmpBool, get: func(t *target) (any, error) {
		return t.comment.IsSubmitter(), nil
	}},
}

// modmailChecks are the subset available on modmail conversations.
var modmailChecks = map[string]check{
	"subject": {comparator: CmpIncludesWord, get: func(t *target) (any, error) {
		mm, ok := t.item.(ModmailItem)
		if !ok {
			return nil, errNotApplicable
		}
		return mm.Subject(), nil
	}},
}

// authorChecks run against an item's author (or a crosspost author).
var authorChecks = map[string]check{
	"name": {comparator: CmpFullExact, get: func(t *target) (any, error) {
		return t.author.Name(), nil
	}},
	"id": {comparator: CmpFullExact, get: func(t *target) (any, error) {
		return t.author.ID()
	}},
	"comment_karma": {comparator: CmpNumeric, get: func(t *target) (any, error) {
		return t.author.CommentKarma()
	}},
	"post_karma": {comparator: CmpNumeric, get: func(t *target) (any, error) {
		return t.author.PostKarma()
	}},
	"combined_karma": {comparator: CmpNumeric, get: func(t *target) (any, error) {
		ck, err := t.author.CommentKarma()
		if err != nil {
			return nil, err
		}
		pk, err := t.author.PostKarma()
		if err != nil {
			return nil, err
		}
		return ck + pk, nil
	}},
	"account_age": {comparator: CmpTime, get: func(t *target) (any, error) {
		return t.author.CreatedAt()
	}},
	"is_gold": {comparator: CmpBool, get: func(t *target) (any, error) {
		return t.author.IsGold()
	}},
	"is_moderator": {comparator: CmpBool, get: func(t *target) (any, error) {
		return t.item.Subreddit().IsModerator(t.author.Name())
	}},
	"is_contributor": {comparator: CmpBool, get: func(t *target) (any, error) {
		return t.item.Subreddit().IsContributor(t.author.Name())
	}},
	"is_banned": {comparator: CmpBool, get: func(t *target) (any, error) {
		return t.item.Subreddit().IsBanned(t.author.Name())
	}},
	"flair_text": {comparator: CmpFullExact, get: func(t *target) (any, error) {
		return authorFlairField(t, func(f Flair) string { return f.Text })
	}},
	"flair_css_class": {comparator: CmpFullExact, get: func(t *target) (any, error) {
		return authorFlairField(t, func(f Flair) string { return f.CSSClass })
	}},
	"flair_template_id": {comparator: CmpFullExact, get: func(t *target) (any, error) {
		return authorFlairField(t, func(f Flair) string { return f.TemplateID })
	}},
	"is_submitter": {comparator: CmpBool, get: func(t *target) (any, error) {
		if t.comment == nil {
			return nil, errNotApplicable
		}
		return t.comment.IsSubmitter(), nil
	}},
}

// crosspostSubredditChecks run against a crosspost parent's subreddit.
var crosspostSubredditChecks = map[string]check{
	"name": {comparator: CmpFullExact, get: func(t *target) (any, error) {
		return t.sr.Name(), nil
	}},
	"is_nsfw": {comparator: CmpBool, get: func(t *target) (any, error) {
		return t.sr.IsNSFW(), nil
	}},
}

// ModmailItem is the extra surface modmail conversations expose.
type ModmailItem interface {
	Item
	Subject() string
}

var (
	submissionScope = mergeChecks(itemChecks, postChecks)
	commentScope    = mergeChecks(itemChecks, commentChecks)
	modmailScope    = mergeChecks(itemChecks, modmailChecks)
)

// checksFor selects the check table for an item's kind.
func checksFor(item Item) map[string]check {
	switch item.Kind() {
	case KindSubmission:
		return submissionScope
	case KindComment:
		return commentScope
	case KindModmail:
		return modmailScope
	default:
		return itemChecks
	}
}

func mergeChecks(tables ...map[string]check) map[string]check {
	merged := make(map[string]check)
	for _, table := range tables {
		for name, c := range table {
			merged[name] = c
		}
	}
	return merged
}

// lookupCheck resolves a check name in a table, honoring the
// `report_reason` compatibility alias.
func lookupCheck(table map[string]check, name string) (check, bool) {
	if name == "report_reason" {
		name = "report_reasons"
	}
	c, ok := table[name]
	return c, ok
}

func crosspostParent(t *target) (Post, error) {
	parent, err := t.post.CrosspostParent()
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, errNotApplicable
	}
	return parent, nil
}

func mediaField(t *target, field func(Post) string) (any, error) {
	if !t.post.HasMedia() {
		return "", nil
	}
	return field(t.post), nil
}

func authorFlairField(t *target, field func(Flair) string) (any, error) {
	flair, err := t.author.Flair()
	if err != nil {
		return nil, err
	}
	return field(flair), nil
}
