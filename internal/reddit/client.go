// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package reddit is the site API collaborator: OAuth session, listings,
// streams, wiki I/O and moderation effects. It implements the facade
// interfaces the engine consumes; the engine itself never imports net/http.
package reddit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/josephwegner/better-auto-moderator/internal/buildinfo"
)

const (
	tokenURL       = "https://www.reddit.com/api/v1/access_token"
	defaultBaseURL = "https://oauth.reddit.com"
)

// Credentials carry the script-app OAuth identity and the target subreddit.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	Subreddit    string
	UserAgent    string
}

// CredentialsFromEnv reads the REDDIT_* environment variables.
func CredentialsFromEnv() (Credentials, error) {
	creds := Credentials{
		ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		Username:     os.Getenv("REDDIT_USERNAME"),
		Password:     os.Getenv("REDDIT_PASSWORD"),
		Subreddit:    os.Getenv("REDDIT_SUBREDDIT"),
	}

	missing := []string{}
	for name, v := range map[string]string{
		"REDDIT_CLIENT_ID":     creds.ClientID,
		"REDDIT_CLIENT_SECRET": creds.ClientSecret,
		"REDDIT_USERNAME":      creds.Username,
		"REDDIT_PASSWORD":      creds.Password,
		"REDDIT_SUBREDDIT":     creds.Subreddit,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	creds.UserAgent = fmt.Sprintf("linux:better-auto-moderator:%s (by /u/%s)", buildinfo.Version, creds.Username)
	return creds, nil
}

// APIError is a non-2xx response from the site.
type APIError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reddit: %s returned %d: %s", e.Path, e.StatusCode, e.Body)
}

// Client is the process-wide site API client. Safe for use from the single
// supervisor goroutine; the token source refreshes itself.
type Client struct {
	httpClient *http.Client
	ctx        context.Context
	baseURL    string
	userAgent  string

	mu         sync.Mutex
	subreddits map[string]*Subreddit
}

// NewClient authenticates with the resource-owner password grant and returns
// a ready client. The context bounds the client's lifetime.
func NewClient(ctx context.Context, creds Credentials) (*Client, error) {
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	token, err := conf.PasswordCredentialsToken(ctx, creds.Username, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("reddit: authentication failed: %w", err)
	}
	log.Debugf("Authenticated as /u/%s", creds.Username)

	return &Client{
		httpClient: oauth2.NewClient(ctx, conf.TokenSource(ctx, token)),
		ctx:        ctx,
		baseURL:    defaultBaseURL,
		userAgent:  creds.UserAgent,
		subreddits: make(map[string]*Subreddit),
	}, nil
}

func (c *Client) get(path string, params url.Values) (gjson.Result, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("raw_json", "1")
	return c.do(http.MethodGet, path+"?"+params.Encode(), nil)
}

func (c *Client) post(path string, form url.Values) (gjson.Result, error) {
	if form == nil {
		form = url.Values{}
	}
	form.Set("api_type", "json")
	return c.do(http.MethodPost, path, strings.NewReader(form.Encode()))
}

func (c *Client) do(method, path string, body io.Reader) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(c.ctx, method, c.baseURL+path, body)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reddit: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reddit: reading %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, &APIError{StatusCode: resp.StatusCode, Path: path, Body: truncate(string(data), 200)}
	}

	return gjson.ParseBytes(data), nil
}

// Subreddit fetches (and caches) a subreddit handle by display name.
func (c *Client) Subreddit(name string) (*Subreddit, error) {
	c.mu.Lock()
	if sr, ok := c.subreddits[name]; ok {
		c.mu.Unlock()
		return sr, nil
	}
	c.mu.Unlock()

	about, err := c.get("/r/"+name+"/about", nil)
	if err != nil {
		return nil, err
	}

	sr := &Subreddit{
		c:        c,
		name:     name,
		fullname: about.Get("data.name").String(),
		over18:   about.Get("data.over18").Bool(),
	}

	c.mu.Lock()
	c.subreddits[name] = sr
	c.mu.Unlock()
	return sr, nil
}

// info fetches a thing by fullname via /api/info.
func (c *Client) info(fullname string) (gjson.Result, error) {
	res, err := c.get("/api/info", url.Values{"id": {fullname}})
	if err != nil {
		return gjson.Result{}, err
	}
	child := res.Get("data.children.0")
	if !child.Exists() {
		return gjson.Result{}, fmt.Errorf("reddit: thing %s not found", fullname)
	}
	return child, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
