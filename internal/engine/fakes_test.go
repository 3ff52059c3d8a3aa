// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"errors"
	"time"
)

// Shared in-memory fakes implementing the facade interfaces. Effects record
// what was called so tests can assert on dispatch behavior.

type sentMessage struct {
	to      string
	subject string
	body    string
}

type fakeSubreddit struct {
	name         string
	nsfw         bool
	moderators   map[string]bool
	contributors map[string]bool
	banned       map[string]bool
	modErr       error

	messages []sentMessage
	modmails []sentMessage
}

func newFakeSubreddit() *fakeSubreddit {
	return &fakeSubreddit{
		name:         "testsub",
		moderators:   map[string]bool{},
		contributors: map[string]bool{},
		banned:       map[string]bool{},
	}
}

func (s *fakeSubreddit) Name() string { return s.name }
func (s *fakeSubreddit) IsNSFW() bool { return s.nsfw }

func (s *fakeSubreddit) IsModerator(u string) (bool, error) {
	if s.modErr != nil {
		return false, s.modErr
	}
	return s.moderators[u], nil
}

func (s *fakeSubreddit) IsContributor(u string) (bool, error) { return s.contributors[u], nil }
func (s *fakeSubreddit) IsBanned(u string) (bool, error)      { return s.banned[u], nil }

func (s *fakeSubreddit) Modmail(subject, body string) error {
	s.modmails = append(s.modmails, sentMessage{subject: subject, body: body})
	return nil
}

func (s *fakeSubreddit) Message(to, subject, body string) error {
	s.messages = append(s.messages, sentMessage{to: to, subject: subject, body: body})
	return nil
}

type fakeAuthor struct {
	name         string
	id           string
	commentKarma int
	postKarma    int
	createdAt    time.Time
	gold         bool
	flair        Flair
	aboutErr     error
	flairErr     error

	flairSet []Flair
}

func (a *fakeAuthor) Name() string { return a.name }

func (a *fakeAuthor) ID() (string, error) {
	return a.id, a.aboutErr
}

func (a *fakeAuthor) CommentKarma() (int, error) {
	return a.commentKarma, a.aboutErr
}

func (a *fakeAuthor) PostKarma() (int, error) {
	return a.postKarma, a.aboutErr
}

func (a *fakeAuthor) CreatedAt() (time.Time, error) {
	return a.createdAt, a.aboutErr
}

func (a *fakeAuthor) IsGold() (bool, error) {
	return a.gold, a.aboutErr
}

func (a *fakeAuthor) Flair() (Flair, error) {
	return a.flair, a.flairErr
}

func (a *fakeAuthor) SetFlair(text, cssClass, templateID string) error {
	a.flairSet = append(a.flairSet, Flair{Text: text, CSSClass: cssClass, TemplateID: templateID})
	return nil
}

type fakeReply struct {
	locked   bool
	stickied bool
}

func (r *fakeReply) Lock(locked bool) error {
	r.locked = locked
	return nil
}

func (r *fakeReply) DistinguishSticky(stickied bool) error {
	r.stickied = stickied
	return nil
}

type fakeItem struct {
	kind        Kind
	id          string
	fullname    string
	permalink   string
	body        string
	author      *fakeAuthor
	authorErr   error
	sr          *fakeSubreddit
	approved    bool
	removed     bool
	edited      bool
	userReports []Report
	modReports  []Report

	approveCalls  int
	removeCalls   []bool
	reportReasons []string
	ignoredCalls  int
	replies       []string
	lastReply     *fakeReply
	lockCalls     []bool
	replyErr      error
}

func (i *fakeItem) Kind() Kind            { return i.kind }
func (i *fakeItem) ID() string            { return i.id }
func (i *fakeItem) Fullname() string      { return i.fullname }
func (i *fakeItem) Permalink() string     { return i.permalink }
func (i *fakeItem) Body() string          { return i.body }
func (i *fakeItem) Subreddit() Subreddit  { return i.sr }
func (i *fakeItem) IsApproved() bool      { return i.approved }
func (i *fakeItem) IsRemoved() bool       { return i.removed }
func (i *fakeItem) IsEdited() bool        { return i.edited }
func (i *fakeItem) UserReports() []Report { return i.userReports }
func (i *fakeItem) ModReports() []Report  { return i.modReports }

func (i *fakeItem) AuthorName() string {
	if i.author != nil {
		return i.author.name
	}
	return "[deleted]"
}

func (i *fakeItem) Author() (Author, error) {
	if i.authorErr != nil {
		return nil, i.authorErr
	}
	if i.author == nil {
		return nil, errors.New("no author")
	}
	return i.author, nil
}

func (i *fakeItem) Approve() error {
	i.approveCalls++
	return nil
}

func (i *fakeItem) Remove(spam bool) error {
	i.removeCalls = append(i.removeCalls, spam)
	return nil
}

func (i *fakeItem) Report(reason string) error {
	i.reportReasons = append(i.reportReasons, reason)
	return nil
}

func (i *fakeItem) IgnoreReports() error {
	i.ignoredCalls++
	return nil
}

func (i *fakeItem) Reply(body string) (Reply, error) {
	if i.replyErr != nil {
		return nil, i.replyErr
	}
	i.replies = append(i.replies, body)
	i.lastReply = &fakeReply{}
	return i.lastReply, nil
}

func (i *fakeItem) Lock(locked bool) error {
	i.lockCalls = append(i.lockCalls, locked)
	return nil
}

type fakePost struct {
	fakeItem

	title       string
	url         string
	domain      string
	flair       Flair
	isPoll      bool
	pollOptions []string
	isGallery   bool
	isOC        bool
	hasMedia    bool
	mediaAuthor string
	mediaURL    string
	mediaTitle  string
	mediaDesc   string
	crosspost   *fakePost
	crossErr    error

	stickyCalls   []bool
	nsfwCalls     []bool
	spoilerCalls  []bool
	contestCalls  []bool
	ocCalls       []bool
	suggestedSort []string
	flairSet      []Flair
}

func newFakePost() *fakePost {
	sr := newFakeSubreddit()
	return &fakePost{
		fakeItem: fakeItem{
			kind:      KindSubmission,
			id:        "p1",
			fullname:  "t3_p1",
			permalink: "/r/testsub/comments/p1",
			author:    &fakeAuthor{name: "poster"},
			sr:        sr,
		},
	}
}

func (p *fakePost) Title() string            { return p.title }
func (p *fakePost) URL() string              { return p.url }
func (p *fakePost) Domain() string           { return p.domain }
func (p *fakePost) FlairText() string        { return p.flair.Text }
func (p *fakePost) FlairCSSClass() string    { return p.flair.CSSClass }
func (p *fakePost) FlairTemplateID() string  { return p.flair.TemplateID }
func (p *fakePost) IsPoll() bool             { return p.isPoll }
func (p *fakePost) PollOptions() []string    { return p.pollOptions }
func (p *fakePost) IsGallery() bool          { return p.isGallery }
func (p *fakePost) IsOriginalContent() bool  { return p.isOC }
func (p *fakePost) HasMedia() bool           { return p.hasMedia }
func (p *fakePost) MediaAuthor() string      { return p.mediaAuthor }
func (p *fakePost) MediaAuthorURL() string   { return p.mediaURL }
func (p *fakePost) MediaTitle() string       { return p.mediaTitle }
func (p *fakePost) MediaDescription() string { return p.mediaDesc }

func (p *fakePost) CrosspostParent() (Post, error) {
	if p.crossErr != nil {
		return nil, p.crossErr
	}
	if p.crosspost == nil {
		return nil, nil
	}
	return p.crosspost, nil
}

func (p *fakePost) Sticky(s bool) error {
	p.stickyCalls = append(p.stickyCalls, s)
	return nil
}

func (p *fakePost) SetNSFW(v bool) error {
	p.nsfwCalls = append(p.nsfwCalls, v)
	return nil
}

func (p *fakePost) SetSpoiler(v bool) error {
	p.spoilerCalls = append(p.spoilerCalls, v)
	return nil
}

func (p *fakePost) SetContestMode(v bool) error {
	p.contestCalls = append(p.contestCalls, v)
	return nil
}

func (p *fakePost) SetOriginalContent(v bool) error {
	p.ocCalls = append(p.ocCalls, v)
	return nil
}

func (p *fakePost) SetSuggestedSort(sort string) error {
	p.suggestedSort = append(p.suggestedSort, sort)
	return nil
}

func (p *fakePost) SetFlair(text, cssClass, templateID string) error {
	p.flairSet = append(p.flairSet, Flair{Text: text, CSSClass: cssClass, TemplateID: templateID})
	return nil
}

type fakeComment struct {
	fakeItem

	depth       int
	isSubmitter bool
	parentPost  *fakePost
	parent      *fakeComment

	distinguishCalls []bool
}

func newFakeComment() *fakeComment {
	sr := newFakeSubreddit()
	return &fakeComment{
		fakeItem: fakeItem{
			kind:      KindComment,
			id:        "c1",
			fullname:  "t1_c1",
			permalink: "/r/testsub/comments/p1/c1",
			author:    &fakeAuthor{name: "commenter"},
			sr:        sr,
		},
	}
}

func (c *fakeComment) Depth() int        { return c.depth }
func (c *fakeComment) IsSubmitter() bool { return c.isSubmitter }

func (c *fakeComment) ParentSubmission() (Post, error) {
	if c.parentPost == nil {
		return nil, errors.New("no parent submission")
	}
	return c.parentPost, nil
}

func (c *fakeComment) ParentComment() (Comment, error) {
	if c.parent == nil {
		return nil, nil
	}
	return c.parent, nil
}

func (c *fakeComment) DistinguishSticky(s bool) error {
	c.distinguishCalls = append(c.distinguishCalls, s)
	return nil
}

var (
	_ Post    = (*fakePost)(nil)
	_ Comment = (*fakeComment)(nil)
)
