// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reddit

import (
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/josephwegner/better-auto-moderator/internal/engine"
)

// ModmailConversation wraps a new-modmail conversation. Checks see the
// subject and the first message's body; the only effect that applies is
// replying. Implements engine.ModmailItem.
type ModmailConversation struct {
	c  *Client
	sr *Subreddit

	id         string
	subject    string
	body       string
	authorName string
}

// modmailFromData builds a conversation from one entry of the conversations
// listing. The first message body lives in the sibling `messages` object,
// keyed by the id in the conversation's objIds list.
func modmailFromData(c *Client, sr *Subreddit, conv, messages gjson.Result) *ModmailConversation {
	mc := &ModmailConversation{
		c:          c,
		sr:         sr,
		id:         conv.Get("id").String(),
		subject:    conv.Get("subject").String(),
		authorName: conv.Get("authors.0.name").String(),
	}
	if firstID := conv.Get("objIds.0.id").String(); firstID != "" {
		mc.body = messages.Get(firstID + ".bodyMarkdown").String()
	}
	return mc
}

func (m *ModmailConversation) Kind() engine.Kind { return engine.KindModmail }
func (m *ModmailConversation) ID() string        { return m.id }
func (m *ModmailConversation) Fullname() string  { return m.id }
func (m *ModmailConversation) Permalink() string {
	return "https://mod.reddit.com/mail/all/" + m.id
}
func (m *ModmailConversation) Subject() string    { return m.subject }
func (m *ModmailConversation) Body() string       { return m.body }
func (m *ModmailConversation) AuthorName() string { return m.authorName }

func (m *ModmailConversation) Author() (engine.Author, error) {
	if m.authorName == "" {
		return nil, fmt.Errorf("reddit: modmail %s has no author", m.id)
	}
	return &Author{c: m.c, sr: m.sr, name: m.authorName}, nil
}

func (m *ModmailConversation) Subreddit() engine.Subreddit  { return m.sr }
func (m *ModmailConversation) IsApproved() bool             { return false }
func (m *ModmailConversation) IsRemoved() bool              { return false }
func (m *ModmailConversation) IsEdited() bool               { return false }
func (m *ModmailConversation) UserReports() []engine.Report { return nil }
func (m *ModmailConversation) ModReports() []engine.Report  { return nil }

// Reply posts a message into the conversation.
func (m *ModmailConversation) Reply(body string) (engine.Reply, error) {
	_, err := m.c.post("/api/mod/conversations/"+m.id, url.Values{
		"body":       {body},
		"isInternal": {"false"},
	})
	if err != nil {
		return nil, err
	}
	return modmailReply{}, nil
}

// Archive closes the conversation.
func (m *ModmailConversation) Archive() error {
	_, err := m.c.post("/api/mod/conversations/"+m.id+"/archive", nil)
	return err
}

func (m *ModmailConversation) Approve() error { return m.unsupported("approve") }
func (m *ModmailConversation) Remove(spam bool) error {
	return m.unsupported("remove")
}
func (m *ModmailConversation) Report(reason string) error {
	return m.unsupported("report")
}
func (m *ModmailConversation) IgnoreReports() error { return m.unsupported("ignore_reports") }
func (m *ModmailConversation) Lock(locked bool) error {
	return m.unsupported("lock")
}

func (m *ModmailConversation) unsupported(action string) error {
	return fmt.Errorf("reddit: %s does not apply to modmail conversation %s", action, m.id)
}

// modmailReply is the no-op handle for modmail replies; lock and sticky
// follow-ups have no modmail equivalent.
type modmailReply struct{}

func (modmailReply) Lock(bool) error              { return nil }
func (modmailReply) DistinguishSticky(bool) error { return nil }

var _ engine.ModmailItem = (*ModmailConversation)(nil)
