// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reddit

import (
	"net/url"
	"time"
)

// WikiPage is one revision of a subreddit wiki page.
type WikiPage struct {
	Name      string
	Content   string
	RevisedAt time.Time
	RevisedBy string
}

// WikiPage fetches the current revision of a wiki page.
func (s *Subreddit) WikiPage(name string) (WikiPage, error) {
	res, err := s.c.get("/r/"+s.name+"/wiki/"+name, nil)
	if err != nil {
		return WikiPage{}, err
	}
	data := res.Get("data")
	return WikiPage{
		Name:      name,
		Content:   data.Get("content_md").String(),
		RevisedAt: time.Unix(int64(data.Get("revision_date").Float()), 0).UTC(),
		RevisedBy: data.Get("revision_by.data.name").String(),
	}, nil
}

// WikiRevisedAt fetches only the page's latest revision timestamp, for cheap
// change detection between full reloads.
func (s *Subreddit) WikiRevisedAt(name string) (time.Time, error) {
	page, err := s.WikiPage(name)
	if err != nil {
		return time.Time{}, err
	}
	return page.RevisedAt, nil
}

// UpdateWikiPage overwrites a wiki page's content.
func (s *Subreddit) UpdateWikiPage(name, content, reason string) error {
	_, err := s.c.post("/r/"+s.name+"/api/wiki/edit", url.Values{
		"page":    {name},
		"content": {content},
		"reason":  {reason},
	})
	return err
}

// SetWikiPageModOnly restricts a wiki page to moderators (permlevel 2) and
// hides it from the page index.
func (s *Subreddit) SetWikiPageModOnly(name string) error {
	_, err := s.c.post("/r/"+s.name+"/api/wiki/settings/"+name, url.Values{
		"permlevel": {"2"},
		"listed":    {"false"},
	})
	return err
}
