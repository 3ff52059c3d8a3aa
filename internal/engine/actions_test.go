// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatchRule(t *testing.T, src string, item Item) bool {
	t.Helper()
	return NewDispatcher().Dispatch(mustRule(t, src), item, NewRecord())
}

func TestDispatchApprove(t *testing.T) {
	post := newFakePost()
	ran := dispatchRule(t, "domain: imgur.com\naction: approve", post)
	assert.True(t, ran)
	assert.Equal(t, 1, post.approveCalls)

	// Removed items stay removed.
	post = newFakePost()
	post.removed = true
	ran = dispatchRule(t, "domain: imgur.com\naction: approve", post)
	assert.False(t, ran)
	assert.Zero(t, post.approveCalls)

	// Already-approved items are left alone unless the rule was looking at
	// reports, where approval clears them.
	post = newFakePost()
	post.approved = true
	ran = dispatchRule(t, "domain: imgur.com\naction: approve", post)
	assert.False(t, ran)
	assert.Zero(t, post.approveCalls)

	post = newFakePost()
	post.approved = true
	ran = dispatchRule(t, "reports: '>= 1'\naction: approve", post)
	assert.True(t, ran)
	assert.Equal(t, 1, post.approveCalls)
}

func TestDispatchRemoveAndSpam(t *testing.T) {
	comment := newFakeComment()
	ran := dispatchRule(t, "body: x\naction: remove", comment)
	assert.True(t, ran)
	assert.Equal(t, []bool{false}, comment.removeCalls)

	// Approved items are never removed.
	comment = newFakeComment()
	comment.approved = true
	ran = dispatchRule(t, "body: x\naction: remove", comment)
	assert.False(t, ran)
	assert.Empty(t, comment.removeCalls)

	// Spam removes with the spam flag regardless of approval.
	comment = newFakeComment()
	comment.approved = true
	ran = dispatchRule(t, "body: x\naction: spam", comment)
	assert.True(t, ran)
	assert.Equal(t, []bool{true}, comment.removeCalls)
}

func TestDispatchReport(t *testing.T) {
	post := newFakePost()
	post.author.name = "someone"

	ran := dispatchRule(t, `
domain: imgur.com
action: report
report_reason: 'posted by {{author}}'
action_reason: ignored when report_reason is set
`, post)
	assert.True(t, ran)
	require.Len(t, post.reportReasons, 1)
	assert.Equal(t, "posted by someone", post.reportReasons[0])

	// action_reason is the fallback reason.
	post = newFakePost()
	ran = dispatchRule(t, "domain: imgur.com\naction: report\naction_reason: fallback", post)
	assert.True(t, ran)
	assert.Equal(t, []string{"fallback"}, post.reportReasons)
}

func TestDispatchUnknownAction(t *testing.T) {
	post := newFakePost()
	ran := dispatchRule(t, "domain: imgur.com\naction: frobnicate", post)
	assert.False(t, ran)
}

func TestDispatchIgnoreReports(t *testing.T) {
	comment := newFakeComment()
	ran := dispatchRule(t, "body: x\nignore_reports: true", comment)
	assert.True(t, ran)
	assert.Equal(t, 1, comment.ignoredCalls)

	comment = newFakeComment()
	ran = dispatchRule(t, "body: x\nignore_reports: false", comment)
	assert.False(t, ran)
	assert.Zero(t, comment.ignoredCalls)
}

func TestDispatchLog(t *testing.T) {
	comment := newFakeComment()
	ran := dispatchRule(t, "body: x\nlog: 'saw {{author}}'", comment)
	assert.True(t, ran)
}

func TestDispatchReply(t *testing.T) {
	comment := newFakeComment()
	comment.author.name = "asker"
	ran := dispatchRule(t, "body: x\ncomment: 'hi {{author}}'", comment)
	assert.True(t, ran)
	require.Len(t, comment.replies, 1)
	assert.Equal(t, "hi asker", comment.replies[0])
	assert.False(t, comment.lastReply.locked)
	assert.False(t, comment.lastReply.stickied)

	comment = newFakeComment()
	ran = dispatchRule(t, `
body: x
reply: sticky note
comment_locked: true
comment_stickied: true
`, comment)
	assert.True(t, ran)
	assert.True(t, comment.lastReply.locked)
	assert.True(t, comment.lastReply.stickied)

	comment = newFakeComment()
	comment.replyErr = errors.New("locked thread")
	ran = dispatchRule(t, "body: x\ncomment: hi", comment)
	assert.False(t, ran)
}

func TestDispatchMessage(t *testing.T) {
	post := newFakePost()
	post.author.name = "op"
	ran := dispatchRule(t, "domain: x.com\nmessage: please read the rules", post)
	assert.True(t, ran)
	require.Len(t, post.sr.messages, 1)
	assert.Equal(t, "op", post.sr.messages[0].to)
	assert.Equal(t, "Better Auto Moderator", post.sr.messages[0].subject)
	assert.Equal(t, "please read the rules", post.sr.messages[0].body)

	post = newFakePost()
	dispatchRule(t, "domain: x.com\nmessage: hi\nmessage_subject: Custom", post)
	require.Len(t, post.sr.messages, 1)
	assert.Equal(t, "Custom", post.sr.messages[0].subject)
}

func TestDispatchModmail(t *testing.T) {
	post := newFakePost()
	ran := dispatchRule(t, "domain: x.com\nmodmail: 'heads up on {{permalink}}'", post)
	assert.True(t, ran)
	require.Len(t, post.sr.modmails, 1)
	assert.Equal(t, "Better Auto Moderator", post.sr.modmails[0].subject)
	assert.Equal(t, "heads up on /r/testsub/comments/p1", post.sr.modmails[0].body)

	post = newFakePost()
	dispatchRule(t, "domain: x.com\nmodmail: hi\nmodmail_subject: Alert", post)
	require.Len(t, post.sr.modmails, 1)
	assert.Equal(t, "Alert", post.sr.modmails[0].subject)
}

func TestDispatchSetSticky(t *testing.T) {
	post := newFakePost()
	ran := dispatchRule(t, "domain: x.com\nset_sticky: true", post)
	assert.True(t, ran)
	assert.Equal(t, []bool{true}, post.stickyCalls)

	comment := newFakeComment()
	ran = dispatchRule(t, "body: x\nset_sticky: true", comment)
	assert.True(t, ran)
	assert.Equal(t, []bool{true}, comment.distinguishCalls)

	post = newFakePost()
	dispatchRule(t, "domain: x.com\nset_sticky: false", post)
	assert.Equal(t, []bool{false}, post.stickyCalls)
}

func TestDispatchSetLocked(t *testing.T) {
	comment := newFakeComment()
	ran := dispatchRule(t, "body: x\nset_locked: true", comment)
	assert.True(t, ran)
	assert.Equal(t, []bool{true}, comment.lockCalls)
}

func TestDispatchPostToggles(t *testing.T) {
	post := newFakePost()
	ran := dispatchRule(t, `
domain: x.com
set_nsfw: true
set_spoiler: true
set_contest_mode: true
set_original_content: true
`, post)
	assert.True(t, ran)
	assert.Equal(t, []bool{true}, post.nsfwCalls)
	assert.Equal(t, []bool{true}, post.spoilerCalls)
	assert.Equal(t, []bool{true}, post.contestCalls)
	assert.Equal(t, []bool{true}, post.ocCalls)

	// Submission-only toggles are no-ops on comments.
	comment := newFakeComment()
	ran = dispatchRule(t, "body: x\nset_nsfw: true", comment)
	assert.False(t, ran)
}

func TestDispatchSetSuggestedSort(t *testing.T) {
	post := newFakePost()
	ran := dispatchRule(t, "domain: x.com\nset_suggested_sort: new", post)
	assert.True(t, ran)
	assert.Equal(t, []string{"new"}, post.suggestedSort)

	comment := newFakeComment()
	ran = dispatchRule(t, "body: x\nset_suggested_sort: new", comment)
	assert.False(t, ran)
}

func TestDispatchSetFlairString(t *testing.T) {
	post := newFakePost()
	post.author.name = "op"
	ran := dispatchRule(t, "domain: x.com\nset_flair: 'from {{author}}'", post)
	assert.True(t, ran)
	require.Len(t, post.flairSet, 1)
	assert.Equal(t, Flair{Text: "from op"}, post.flairSet[0])
}

func TestDispatchSetFlairPair(t *testing.T) {
	post := newFakePost()
	ran := dispatchRule(t, "domain: x.com\nset_flair: [Discussion, blue]", post)
	assert.True(t, ran)
	require.Len(t, post.flairSet, 1)
	assert.Equal(t, Flair{Text: "Discussion", CSSClass: "blue"}, post.flairSet[0])
}

func TestDispatchSetFlairTemplate(t *testing.T) {
	post := newFakePost()
	ran := dispatchRule(t, `
domain: x.com
set_flair:
  template_id: abc-123
  text: Discussion
`, post)
	assert.True(t, ran)
	require.Len(t, post.flairSet, 1)
	assert.Equal(t, "abc-123", post.flairSet[0].TemplateID)
	assert.Equal(t, "Discussion", post.flairSet[0].Text)

	// A mapping without template_id is rejected.
	post = newFakePost()
	ran = dispatchRule(t, "domain: x.com\nset_flair:\n  text: Discussion", post)
	assert.False(t, ran)
	assert.Empty(t, post.flairSet)
}

func TestDispatchSetFlairOverwriteGate(t *testing.T) {
	post := newFakePost()
	post.flair.Text = "existing"
	ran := dispatchRule(t, "domain: x.com\nset_flair: replacement", post)
	assert.False(t, ran)
	assert.Empty(t, post.flairSet)

	ran = dispatchRule(t, "domain: x.com\nset_flair: replacement\noverwrite_flair: true", post)
	assert.True(t, ran)
	require.Len(t, post.flairSet, 1)
	assert.Equal(t, "replacement", post.flairSet[0].Text)
}

func TestDispatchAuthorActions(t *testing.T) {
	post := newFakePost()
	post.author.name = "op"
	ran := dispatchRule(t, `
domain: x.com
author:
  set_flair: [Spammer, red]
  message: do not do that
  log: flagged
`, post)
	assert.True(t, ran)
	require.Len(t, post.author.flairSet, 1)
	assert.Equal(t, Flair{Text: "Spammer", CSSClass: "red"}, post.author.flairSet[0])
	require.Len(t, post.sr.messages, 1)
	assert.Equal(t, "op", post.sr.messages[0].to)
	assert.Equal(t, "Better Auto Moderator", post.sr.messages[0].subject)
}

func TestDispatchAuthorMessageSubjectFallback(t *testing.T) {
	post := newFakePost()
	dispatchRule(t, `
domain: x.com
message_subject: Outer
author:
  message: hi
`, post)
	require.Len(t, post.sr.messages, 1)
	assert.Equal(t, "Outer", post.sr.messages[0].subject)

	post = newFakePost()
	dispatchRule(t, `
domain: x.com
author:
  message: hi
  message_subject: Inner
`, post)
	require.Len(t, post.sr.messages, 1)
	assert.Equal(t, "Inner", post.sr.messages[0].subject)
}

func TestDispatchAuthorFlairOverwriteGate(t *testing.T) {
	post := newFakePost()
	post.author.flair = Flair{Text: "veteran"}
	ran := dispatchRule(t, "domain: x.com\nauthor:\n  set_flair: Spammer", post)
	assert.False(t, ran)
	assert.Empty(t, post.author.flairSet)

	ran = dispatchRule(t, "domain: x.com\noverwrite_flair: true\nauthor:\n  set_flair: Spammer", post)
	assert.True(t, ran)
	assert.Len(t, post.author.flairSet, 1)
}

func TestDispatchAuthorMissing(t *testing.T) {
	post := newFakePost()
	post.author = nil
	ran := dispatchRule(t, "domain: x.com\nauthor:\n  message: hi", post)
	assert.False(t, ran)
}

func TestDispatchParentSubmission(t *testing.T) {
	comment := newFakeComment()
	parent := newFakePost()
	comment.parentPost = parent

	ran := dispatchRule(t, `
body: x
parent_submission:
  action: remove
  set_locked: true
`, comment)
	assert.True(t, ran)
	assert.Equal(t, []bool{false}, parent.removeCalls)
	assert.Equal(t, []bool{true}, parent.lockCalls)
	assert.Empty(t, comment.removeCalls)
}

func TestDispatchParentSubmissionInheritsSettings(t *testing.T) {
	comment := newFakeComment()
	parent := newFakePost()
	comment.parentPost = parent

	dispatchRule(t, `
body: x
comment_locked: true
parent_submission:
  comment: thread locked
`, comment)
	require.Len(t, parent.replies, 1)
	assert.True(t, parent.lastReply.locked)
	assert.Empty(t, comment.replies)
}

func TestDispatchParentCommentMissing(t *testing.T) {
	comment := newFakeComment()
	ran := dispatchRule(t, "body: x\nparent_comment:\n  action: remove", comment)
	assert.False(t, ran)
}

func TestDispatchParentComment(t *testing.T) {
	comment := newFakeComment()
	parent := newFakeComment()
	comment.parent = parent

	ran := dispatchRule(t, "body: x\nparent_comment:\n  action: remove", comment)
	assert.True(t, ran)
	assert.Equal(t, []bool{false}, parent.removeCalls)
}

func TestDispatchCrosspostAuthor(t *testing.T) {
	post := newFakePost()
	parent := newFakePost()
	parent.author.name = "origposter"
	post.crosspost = parent

	ran := dispatchRule(t, `
domain: x.com
crosspost_author:
  message: your post was crossposted
`, post)
	assert.True(t, ran)
	require.Len(t, parent.sr.messages, 1)
	assert.Equal(t, "origposter", parent.sr.messages[0].to)

	// Not a crosspost: silent no-op.
	post = newFakePost()
	ran = dispatchRule(t, "domain: x.com\ncrosspost_author:\n  message: hi", post)
	assert.False(t, ran)
}

func TestDispatchRunsActionsInOrder(t *testing.T) {
	post := newFakePost()
	ran := dispatchRule(t, `
domain: x.com
action: remove
comment: removed, see the rules
set_locked: true
`, post)
	assert.True(t, ran)
	assert.Equal(t, []bool{false}, post.removeCalls)
	assert.Len(t, post.replies, 1)
	assert.Equal(t, []bool{true}, post.lockCalls)
}

func TestParseFlairValue(t *testing.T) {
	f, err := parseFlairValue("text only")
	require.NoError(t, err)
	assert.Equal(t, Flair{Text: "text only"}, f)

	f, err = parseFlairValue([]any{"text", "css"})
	require.NoError(t, err)
	assert.Equal(t, Flair{Text: "text", CSSClass: "css"}, f)

	_, err = parseFlairValue(42)
	assert.Error(t, err)
}
