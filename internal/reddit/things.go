// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reddit

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/josephwegner/better-auto-moderator/internal/engine"
)

// thing carries the attributes and effects shared by posts and comments.
type thing struct {
	c  *Client
	sr *Subreddit

	id         string
	fullname   string
	authorName string
	body       string
	permalink  string
	approved   bool
	removed    bool
	edited     bool

	userReports []engine.Report
	modReports  []engine.Report
}

func newThing(c *Client, sr *Subreddit, d gjson.Result) thing {
	t := thing{
		c:          c,
		sr:         sr,
		id:         d.Get("id").String(),
		fullname:   d.Get("name").String(),
		authorName: d.Get("author").String(),
		permalink:  d.Get("permalink").String(),
		approved:   d.Get("approved").Bool() || d.Get("approved_by").Type == gjson.String,
		removed:    d.Get("removed").Bool() || d.Get("banned_by").Type == gjson.String,
	}

	// `edited` is false or the edit timestamp.
	if ed := d.Get("edited"); ed.Type == gjson.True || (ed.Type == gjson.Number && ed.Float() > 0) {
		t.edited = true
	}

	for _, r := range d.Get("user_reports").Array() {
		parts := r.Array()
		if len(parts) >= 2 {
			t.userReports = append(t.userReports, engine.Report{
				Reason: parts[0].String(),
				Count:  int(parts[1].Int()),
			})
		}
	}
	for _, r := range d.Get("mod_reports").Array() {
		parts := r.Array()
		if len(parts) >= 2 {
			t.modReports = append(t.modReports, engine.Report{
				Reason:    parts[0].String(),
				Moderator: parts[1].String(),
			})
		}
	}

	return t
}

func (t *thing) ID() string                   { return t.id }
func (t *thing) Fullname() string             { return t.fullname }
func (t *thing) AuthorName() string           { return t.authorName }
func (t *thing) Body() string                 { return t.body }
func (t *thing) Permalink() string            { return t.permalink }
func (t *thing) Subreddit() engine.Subreddit  { return t.sr }
func (t *thing) IsApproved() bool             { return t.approved }
func (t *thing) IsRemoved() bool              { return t.removed }
func (t *thing) IsEdited() bool               { return t.edited }
func (t *thing) UserReports() []engine.Report { return t.userReports }
func (t *thing) ModReports() []engine.Report  { return t.modReports }

func (t *thing) Author() (engine.Author, error) {
	if t.authorName == "" || t.authorName == "[deleted]" {
		return nil, fmt.Errorf("reddit: author of %s is unavailable", t.fullname)
	}
	return &Author{c: t.c, sr: t.sr, name: t.authorName}, nil
}

func (t *thing) Approve() error {
	_, err := t.c.post("/api/approve", url.Values{"id": {t.fullname}})
	return err
}

func (t *thing) Remove(spam bool) error {
	_, err := t.c.post("/api/remove", url.Values{
		"id":   {t.fullname},
		"spam": {boolParam(spam)},
	})
	return err
}

func (t *thing) Report(reason string) error {
	_, err := t.c.post("/api/report", url.Values{
		"thing_id": {t.fullname},
		"reason":   {reason},
	})
	return err
}

func (t *thing) IgnoreReports() error {
	_, err := t.c.post("/api/ignore_reports", url.Values{"id": {t.fullname}})
	return err
}

func (t *thing) Reply(body string) (engine.Reply, error) {
	res, err := t.c.post("/api/comment", url.Values{
		"thing_id": {t.fullname},
		"text":     {body},
	})
	if err != nil {
		return nil, err
	}
	created := res.Get("json.data.things.0.data")
	if !created.Exists() {
		return nil, fmt.Errorf("reddit: reply to %s returned no comment", t.fullname)
	}
	return commentFromData(t.c, t.sr, created), nil
}

func (t *thing) Lock(locked bool) error {
	path := "/api/lock"
	if !locked {
		path = "/api/unlock"
	}
	_, err := t.c.post(path, url.Values{"id": {t.fullname}})
	return err
}

// Post is a submission. Implements engine.Post.
type Post struct {
	thing

	title           string
	url             string
	domain          string
	flairText       string
	flairCSSClass   string
	flairTemplateID string
	isPoll          bool
	pollOptions     []string
	isGallery       bool
	isOC            bool
	hasMedia        bool
	mediaAuthor     string
	mediaAuthorURL  string
	mediaTitle      string
	mediaDesc       string
	crosspostParent string
}

func postFromData(c *Client, sr *Subreddit, d gjson.Result) *Post {
	p := &Post{
		thing:           newThing(c, sr, d),
		title:           d.Get("title").String(),
		url:             d.Get("url").String(),
		domain:          d.Get("domain").String(),
		flairText:       d.Get("link_flair_text").String(),
		flairCSSClass:   d.Get("link_flair_css_class").String(),
		flairTemplateID: d.Get("link_flair_template_id").String(),
		isGallery:       d.Get("is_gallery").Bool(),
		isOC:            d.Get("is_original_content").Bool(),
		crosspostParent: d.Get("crosspost_parent").String(),
	}
	p.body = d.Get("selftext").String()

	if poll := d.Get("poll_data"); poll.Exists() {
		p.isPoll = true
		for _, opt := range poll.Get("options").Array() {
			p.pollOptions = append(p.pollOptions, opt.Get("text").String())
		}
	}

	oembed := d.Get("media.oembed")
	if !oembed.Exists() {
		oembed = d.Get("secure_media.oembed")
	}
	if oembed.Exists() {
		p.hasMedia = true
		p.mediaAuthor = oembed.Get("author_name").String()
		p.mediaAuthorURL = oembed.Get("author_url").String()
		p.mediaTitle = oembed.Get("title").String()
		p.mediaDesc = oembed.Get("description").String()
	}

	return p
}

func (p *Post) Kind() engine.Kind        { return engine.KindSubmission }
func (p *Post) Title() string            { return p.title }
func (p *Post) URL() string              { return p.url }
func (p *Post) Domain() string           { return p.domain }
func (p *Post) FlairText() string        { return p.flairText }
func (p *Post) FlairCSSClass() string    { return p.flairCSSClass }
func (p *Post) FlairTemplateID() string  { return p.flairTemplateID }
func (p *Post) IsPoll() bool             { return p.isPoll }
func (p *Post) PollOptions() []string    { return p.pollOptions }
func (p *Post) IsGallery() bool          { return p.isGallery }
func (p *Post) IsOriginalContent() bool  { return p.isOC }
func (p *Post) HasMedia() bool           { return p.hasMedia }
func (p *Post) MediaAuthor() string      { return p.mediaAuthor }
func (p *Post) MediaAuthorURL() string   { return p.mediaAuthorURL }
func (p *Post) MediaTitle() string       { return p.mediaTitle }
func (p *Post) MediaDescription() string { return p.mediaDesc }

// CrosspostParent fetches the crossposted submission, with its own
// subreddit handle. Returns (nil, nil) for regular posts.
func (p *Post) CrosspostParent() (engine.Post, error) {
	if p.crosspostParent == "" {
		return nil, nil
	}
	child, err := p.c.info(p.crosspostParent)
	if err != nil {
		return nil, err
	}
	data := child.Get("data")
	sr, err := p.c.Subreddit(data.Get("subreddit").String())
	if err != nil {
		return nil, err
	}
	return postFromData(p.c, sr, data), nil
}

func (p *Post) Sticky(stickied bool) error {
	_, err := p.c.post("/api/set_subreddit_sticky", url.Values{
		"id":    {p.fullname},
		"state": {boolParam(stickied)},
	})
	return err
}

func (p *Post) SetNSFW(nsfw bool) error {
	return p.togglePath(nsfw, "/api/marknsfw", "/api/unmarknsfw")
}

func (p *Post) SetSpoiler(spoiler bool) error {
	return p.togglePath(spoiler, "/api/spoiler", "/api/unspoiler")
}

func (p *Post) togglePath(on bool, onPath, offPath string) error {
	path := onPath
	if !on {
		path = offPath
	}
	_, err := p.c.post(path, url.Values{"id": {p.fullname}})
	return err
}

func (p *Post) SetContestMode(enabled bool) error {
	_, err := p.c.post("/api/set_contest_mode", url.Values{
		"id":    {p.fullname},
		"state": {boolParam(enabled)},
	})
	return err
}

func (p *Post) SetOriginalContent(oc bool) error {
	_, err := p.c.post("/api/set_original_content", url.Values{
		"id":            {p.fullname},
		"fullname":      {p.fullname},
		"should_set_oc": {boolParam(oc)},
	})
	return err
}

func (p *Post) SetSuggestedSort(sort string) error {
	_, err := p.c.post("/api/set_suggested_sort", url.Values{
		"id":   {p.fullname},
		"sort": {sort},
	})
	return err
}

// SetFlair applies link flair, via the template endpoint when a template ID
// is given.
func (p *Post) SetFlair(text, cssClass, templateID string) error {
	if templateID != "" {
		_, err := p.c.post("/r/"+p.sr.name+"/api/selectflair", url.Values{
			"link":              {p.fullname},
			"flair_template_id": {templateID},
			"text":              {text},
		})
		return err
	}
	_, err := p.c.post("/r/"+p.sr.name+"/api/flair", url.Values{
		"link":      {p.fullname},
		"text":      {text},
		"css_class": {cssClass},
	})
	return err
}

// Comment is a comment. Implements engine.Comment.
type Comment struct {
	thing

	depth       int
	isSubmitter bool
	linkID      string
	parentID    string
}

func commentFromData(c *Client, sr *Subreddit, d gjson.Result) *Comment {
	cm := &Comment{
		thing:       newThing(c, sr, d),
		isSubmitter: d.Get("is_submitter").Bool(),
		linkID:      d.Get("link_id").String(),
		parentID:    d.Get("parent_id").String(),
	}
	cm.body = d.Get("body").String()

	if depth := d.Get("depth"); depth.Exists() {
		cm.depth = int(depth.Int())
	} else if strings.HasPrefix(cm.parentID, "t3_") {
		cm.depth = 0
	} else {
		// Listings outside comment trees omit depth; all that matters to
		// the checks is top-level or not.
		cm.depth = 1
	}

	return cm
}

func (cm *Comment) Kind() engine.Kind { return engine.KindComment }
func (cm *Comment) Depth() int        { return cm.depth }
func (cm *Comment) IsSubmitter() bool { return cm.isSubmitter }

func (cm *Comment) ParentSubmission() (engine.Post, error) {
	if cm.linkID == "" {
		return nil, fmt.Errorf("reddit: comment %s has no submission", cm.fullname)
	}
	child, err := cm.c.info(cm.linkID)
	if err != nil {
		return nil, err
	}
	return postFromData(cm.c, cm.sr, child.Get("data")), nil
}

func (cm *Comment) ParentComment() (engine.Comment, error) {
	if !strings.HasPrefix(cm.parentID, "t1_") {
		return nil, nil
	}
	child, err := cm.c.info(cm.parentID)
	if err != nil {
		return nil, err
	}
	return commentFromData(cm.c, cm.sr, child.Get("data")), nil
}

func (cm *Comment) DistinguishSticky(stickied bool) error {
	_, err := cm.c.post("/api/distinguish", url.Values{
		"id":     {cm.fullname},
		"how":    {"yes"},
		"sticky": {boolParam(stickied)},
	})
	return err
}

func boolParam(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

var (
	_ engine.Post    = (*Post)(nil)
	_ engine.Comment = (*Comment)(nil)
)
