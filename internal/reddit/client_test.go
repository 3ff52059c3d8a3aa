// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reddit

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGetSetsRawJSON(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("raw_json"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		fmt.Fprint(w, `{"ok": true}`)
	})
	c, _ := newTestClient(t, handler)

	res, err := c.get("/r/testsub/about", nil)
	require.NoError(t, err)
	assert.True(t, res.Get("ok").Bool())
}

func TestClientPostSetsAPIType(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "json", r.PostForm.Get("api_type"))
		assert.Equal(t, "t3_abc", r.PostForm.Get("id"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		fmt.Fprint(w, `{}`)
	})
	c, _ := newTestClient(t, handler)

	_, err := c.post("/api/approve", url.Values{"id": {"t3_abc"}})
	require.NoError(t, err)
}

func TestClientAPIError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})
	c, _ := newTestClient(t, handler)

	_, err := c.get("/r/testsub/new", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "429")
}

func TestClientInfo(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/info", r.URL.Path)
		assert.Equal(t, "t3_abc", r.URL.Query().Get("id"))
		fmt.Fprint(w, `{"data": {"children": [{"kind": "t3", "data": {"id": "abc"}}]}}`)
	})
	c, _ := newTestClient(t, handler)

	child, err := c.info("t3_abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", child.Get("data.id").String())
}

func TestClientInfoNotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"children": []}}`)
	})
	c, _ := newTestClient(t, handler)

	_, err := c.info("t3_missing")
	assert.Error(t, err)
}

func TestCredentialsFromEnvMissing(t *testing.T) {
	for _, name := range []string{
		"REDDIT_CLIENT_ID", "REDDIT_CLIENT_SECRET",
		"REDDIT_USERNAME", "REDDIT_PASSWORD", "REDDIT_SUBREDDIT",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("REDDIT_CLIENT_ID", "id")

	_, err := CredentialsFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDDIT_USERNAME")
	assert.NotContains(t, err.Error(), "REDDIT_CLIENT_ID")
}

func TestCredentialsFromEnvComplete(t *testing.T) {
	t.Setenv("REDDIT_CLIENT_ID", "id")
	t.Setenv("REDDIT_CLIENT_SECRET", "secret")
	t.Setenv("REDDIT_USERNAME", "bammod")
	t.Setenv("REDDIT_PASSWORD", "hunter2")
	t.Setenv("REDDIT_SUBREDDIT", "testsub")

	creds, err := CredentialsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "testsub", creds.Subreddit)
	assert.Contains(t, creds.UserAgent, "/u/bammod")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...", truncate("abcdefgh", 3))
}
