// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package engine is the rule evaluation engine. It consumes parsed rules and
// item facades, runs the check/comparator DSL against item attributes, and
// dispatches moderation actions for matched rules. The engine never talks to
// the network itself; getters and effects that round-trip to the site live
// behind the facade interfaces below.
package engine

import "time"

// Kind identifies what sort of content an item facade wraps.
type Kind string

const (
	KindSubmission Kind = "submission"
	KindComment    Kind = "comment"
	KindModmail    Kind = "modmail"
)

// Report is a single user or moderator report attached to an item.
type Report struct {
	Reason string
	// Count is the number of users behind the reason (user reports only).
	Count int
	// Moderator names the reporting mod (mod reports only).
	Moderator string
}

// Flair is a user's flair in the moderated subreddit.
type Flair struct {
	Text       string
	CSSClass   string
	TemplateID string
}

// Item is the uniform facade over heterogeneous item kinds. Methods that
// reach the site return errors; the evaluator treats any getter error as a
// skip, failing the rule without aborting the run.
type Item interface {
	Kind() Kind
	ID() string
	Fullname() string
	Permalink() string
	Body() string
	AuthorName() string
	Author() (Author, error)
	Subreddit() Subreddit
	IsApproved() bool
	IsRemoved() bool
	IsEdited() bool
	UserReports() []Report
	ModReports() []Report

	// Moderation effects.
	Approve() error
	Remove(spam bool) error
	Report(reason string) error
	IgnoreReports() error
	Reply(body string) (Reply, error)
	Lock(locked bool) error
}

// Post is the facade over a submission.
type Post interface {
	Item
	Title() string
	URL() string
	Domain() string
	FlairText() string
	FlairCSSClass() string
	FlairTemplateID() string
	IsPoll() bool
	PollOptions() []string
	IsGallery() bool
	IsOriginalContent() bool
	HasMedia() bool
	MediaAuthor() string
	MediaAuthorURL() string
	MediaTitle() string
	MediaDescription() string
	// CrosspostParent returns the crossposted submission, or (nil, nil) when
	// the post is not a crosspost.
	CrosspostParent() (Post, error)

	Sticky(stickied bool) error
	SetNSFW(nsfw bool) error
	SetSpoiler(spoiler bool) error
	SetContestMode(enabled bool) error
	SetOriginalContent(oc bool) error
	SetSuggestedSort(sort string) error
	SetFlair(text, cssClass, templateID string) error
}

// Comment is the facade over a comment.
type Comment interface {
	Item
	Depth() int
	IsSubmitter() bool
	ParentSubmission() (Post, error)
	// ParentComment returns (nil, nil) for top-level comments.
	ParentComment() (Comment, error)

	DistinguishSticky(stickied bool) error
}

// Reply is the handle returned when an action posts a reply, so follow-up
// settings (comment_locked, comment_stickied) can be applied.
type Reply interface {
	Lock(locked bool) error
	DistinguishSticky(stickied bool) error
}

// Author is the facade over an item's author. Karma and age live behind the
// site's user-about endpoint, hence the error returns.
type Author interface {
	Name() string
	ID() (string, error)
	CommentKarma() (int, error)
	PostKarma() (int, error)
	CreatedAt() (time.Time, error)
	IsGold() (bool, error)
	Flair() (Flair, error)
	SetFlair(text, cssClass, templateID string) error
}

// Subreddit is the facade over the subreddit an item lives in (or, for
// crosspost checks, the crosspost parent's subreddit).
type Subreddit interface {
	Name() string
	IsNSFW() bool
	IsModerator(username string) (bool, error)
	IsContributor(username string) (bool, error)
	IsBanned(username string) (bool, error)
	Modmail(subject, body string) error
	Message(username, subject, body string) error
}
