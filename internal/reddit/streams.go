// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reddit

import (
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/josephwegner/better-auto-moderator/internal/engine"
)

// StreamKind names a polled listing. It decides which rule types apply to
// the items the stream yields.
type StreamKind string

const (
	StreamSubmissions StreamKind = "submissions"
	StreamComments    StreamKind = "comments"
	StreamModqueue    StreamKind = "modqueue"
	StreamEdited      StreamKind = "edited"
	StreamReports     StreamKind = "reports"
	StreamModmail     StreamKind = "modmail"
)

// streamCap bounds the dedupe window. Listings return at most 100 entries,
// so a window an order of magnitude wider never drops a still-listed id.
const streamCap = 1000

// Stream polls one listing and yields each item exactly once. The first
// poll primes the dedupe window without yielding, so a restart does not
// replay the backlog.
type Stream struct {
	c    *Client
	sr   *Subreddit
	kind StreamKind
	path string

	primed bool
	seen   map[string]bool
	order  []string
}

// NewStream builds a stream over the given listing of the subreddit.
func NewStream(c *Client, sr *Subreddit, kind StreamKind) *Stream {
	s := &Stream{
		c:    c,
		sr:   sr,
		kind: kind,
		seen: make(map[string]bool),
	}
	switch kind {
	case StreamSubmissions:
		s.path = "/r/" + sr.name + "/new"
	case StreamComments:
		s.path = "/r/" + sr.name + "/comments"
	case StreamModqueue:
		s.path = "/r/" + sr.name + "/about/modqueue"
	case StreamEdited:
		s.path = "/r/" + sr.name + "/about/edited"
	case StreamReports:
		s.path = "/r/" + sr.name + "/about/reports"
	case StreamModmail:
		s.path = "/api/mod/conversations"
	}
	return s
}

// Kind returns the listing this stream polls.
func (s *Stream) Kind() StreamKind { return s.kind }

// Poll fetches the listing once and returns the unseen items, oldest first.
func (s *Stream) Poll() ([]engine.Item, error) {
	if s.kind == StreamModmail {
		return s.pollModmail()
	}

	res, err := s.c.get(s.path, url.Values{"limit": {"100"}})
	if err != nil {
		return nil, err
	}

	var fresh []engine.Item
	children := res.Get("data.children").Array()
	// Listings are newest-first; walk backwards so callers process in
	// submission order.
	for i := len(children) - 1; i >= 0; i-- {
		child := children[i]
		data := child.Get("data")
		id := data.Get("name").String()
		if id == "" || !s.mark(id) {
			continue
		}
		if s.primed {
			fresh = append(fresh, s.itemFromChild(child.Get("kind").String(), data))
		}
	}

	s.primed = true
	return fresh, nil
}

func (s *Stream) pollModmail() ([]engine.Item, error) {
	res, err := s.c.get(s.path, url.Values{
		"entity": {s.sr.name},
		"state":  {"new"},
		"sort":   {"recent"},
	})
	if err != nil {
		return nil, err
	}

	var fresh []engine.Item
	messages := res.Get("messages")
	res.Get("conversations").ForEach(func(_, conv gjson.Result) bool {
		id := conv.Get("id").String()
		if id == "" || !s.mark(id) {
			return true
		}
		if s.primed {
			fresh = append(fresh, modmailFromData(s.c, s.sr, conv, messages))
		}
		return true
	})

	s.primed = true
	return fresh, nil
}

func (s *Stream) itemFromChild(kind string, data gjson.Result) engine.Item {
	if kind == "t1" {
		return commentFromData(s.c, s.sr, data)
	}
	return postFromData(s.c, s.sr, data)
}

// mark records an id, evicting the oldest once the window is full. Returns
// false when the id was already seen.
func (s *Stream) mark(id string) bool {
	if s.seen[id] {
		return false
	}
	s.seen[id] = true
	s.order = append(s.order, id)
	if len(s.order) > streamCap {
		delete(s.seen, s.order[0])
		s.order = s.order[1:]
	}
	return true
}
