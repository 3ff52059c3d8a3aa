// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reddit

import (
	"net/url"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/josephwegner/better-auto-moderator/internal/engine"
)

// Author wraps a reddit account. The about blob is fetched lazily on the
// first karma/age/gold lookup and cached for the handle's lifetime, so a
// rule with several author checks costs one request. Implements
// engine.Author.
type Author struct {
	c    *Client
	sr   *Subreddit
	name string

	mu    sync.Mutex
	about *gjson.Result
	flair *engine.Flair
}

func (a *Author) Name() string { return a.name }

func (a *Author) fetchAbout() (gjson.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.about == nil {
		res, err := a.c.get("/user/"+a.name+"/about", nil)
		if err != nil {
			return gjson.Result{}, err
		}
		data := res.Get("data")
		a.about = &data
	}
	return *a.about, nil
}

func (a *Author) ID() (string, error) {
	about, err := a.fetchAbout()
	if err != nil {
		return "", err
	}
	return about.Get("id").String(), nil
}

func (a *Author) CommentKarma() (int, error) {
	about, err := a.fetchAbout()
	if err != nil {
		return 0, err
	}
	return int(about.Get("comment_karma").Int()), nil
}

func (a *Author) PostKarma() (int, error) {
	about, err := a.fetchAbout()
	if err != nil {
		return 0, err
	}
	return int(about.Get("link_karma").Int()), nil
}

func (a *Author) CreatedAt() (time.Time, error) {
	about, err := a.fetchAbout()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(about.Get("created_utc").Float()), 0).UTC(), nil
}

func (a *Author) IsGold() (bool, error) {
	about, err := a.fetchAbout()
	if err != nil {
		return false, err
	}
	return about.Get("is_gold").Bool(), nil
}

// Flair reads the author's current flair in the moderated subreddit.
func (a *Author) Flair() (engine.Flair, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.flair == nil {
		res, err := a.c.post("/r/"+a.sr.name+"/api/flairselector", url.Values{"name": {a.name}})
		if err != nil {
			return engine.Flair{}, err
		}
		current := res.Get("current")
		a.flair = &engine.Flair{
			Text:       current.Get("flair_text").String(),
			CSSClass:   current.Get("flair_css_class").String(),
			TemplateID: current.Get("flair_template_id").String(),
		}
	}
	return *a.flair, nil
}

// SetFlair assigns user flair, via the template endpoint when a template ID
// is given.
func (a *Author) SetFlair(text, cssClass, templateID string) error {
	a.mu.Lock()
	a.flair = nil
	a.mu.Unlock()

	if templateID != "" {
		_, err := a.c.post("/r/"+a.sr.name+"/api/selectflair", url.Values{
			"name":              {a.name},
			"flair_template_id": {templateID},
			"text":              {text},
		})
		return err
	}
	_, err := a.c.post("/r/"+a.sr.name+"/api/flair", url.Values{
		"name":      {a.name},
		"text":      {text},
		"css_class": {cssClass},
	})
	return err
}
