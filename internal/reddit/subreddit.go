// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reddit

import (
	"net/url"
	"sync"
)

// Subreddit is a handle on the moderated subreddit (or, for crosspost
// checks, a crosspost parent's subreddit). Implements engine.Subreddit.
type Subreddit struct {
	c        *Client
	name     string
	fullname string
	over18   bool

	mu         sync.Mutex
	moderators map[string]bool
}

// Name returns the display name, without the /r/ prefix.
func (s *Subreddit) Name() string { return s.name }

// IsNSFW reports the subreddit's over-18 flag.
func (s *Subreddit) IsNSFW() bool { return s.over18 }

// IsModerator reports whether the user moderates this subreddit. The
// moderator list is fetched once and cached for the handle's lifetime.
func (s *Subreddit) IsModerator(username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.moderators == nil {
		res, err := s.c.get("/r/"+s.name+"/about/moderators", nil)
		if err != nil {
			return false, err
		}
		s.moderators = make(map[string]bool)
		for _, child := range res.Get("data.children").Array() {
			s.moderators[child.Get("name").String()] = true
		}
	}

	return s.moderators[username], nil
}

// IsContributor reports whether the user is an approved submitter.
func (s *Subreddit) IsContributor(username string) (bool, error) {
	return s.userInListing("contributors", username)
}

// IsBanned reports whether the user is banned from the subreddit.
func (s *Subreddit) IsBanned(username string) (bool, error) {
	return s.userInListing("banned", username)
}

func (s *Subreddit) userInListing(listing, username string) (bool, error) {
	res, err := s.c.get("/r/"+s.name+"/about/"+listing, url.Values{"user": {username}})
	if err != nil {
		return false, err
	}
	return len(res.Get("data.children").Array()) > 0, nil
}

// Modmail starts a conversation in the subreddit's modmail.
func (s *Subreddit) Modmail(subject, body string) error {
	_, err := s.c.post("/api/mod/conversations", url.Values{
		"srName":  {s.name},
		"subject": {subject},
		"body":    {body},
	})
	return err
}

// Message starts a modmail conversation with the user as participant.
func (s *Subreddit) Message(username, subject, body string) error {
	_, err := s.c.post("/api/mod/conversations", url.Values{
		"srName":  {s.name},
		"to":      {username},
		"subject": {subject},
		"body":    {body},
	})
	return err
}
