// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package engine

import "regexp"

var placeholderRe = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_-]*)\}\}`)

// Substitute replaces `{{token}}` occurrences in s with values drawn from
// the item facade and the match record. Unknown tokens and tokens that
// resolve to nil are left in place.
func Substitute(s string, item Item, rec *Record) string {
	if !placeholderRe.MatchString(s) {
		return s
	}
	return placeholderRe.ReplaceAllStringFunc(s, func(occ string) string {
		token := placeholderRe.FindStringSubmatch(occ)[1]
		if v, ok := resolveToken(token, item, rec); ok {
			return v
		}
		return occ
	})
}

func resolveToken(token string, item Item, rec *Record) (string, bool) {
	if token == "match" {
		if v, ok := rec.First(); ok && v != nil {
			return stringify(v), true
		}
		return "", false
	}
	if len(token) > len("match-") && token[:len("match-")] == "match-" {
		if v, ok := rec.Get(token[len("match-"):]); ok && v != nil {
			return stringify(v), true
		}
		return "", false
	}

	switch token {
	case "author":
		return item.AuthorName(), true
	case "body":
		return item.Body(), true
	case "permalink":
		return item.Permalink(), true
	case "subreddit":
		return item.Subreddit().Name(), true
	case "kind":
		return string(item.Kind()), true
	case "author_flair_text", "author_flair_css_class", "author_flair_template_id":
		return resolveAuthorFlair(token, item)
	case "title", "domain", "url",
		"media_author", "media_author_url", "media_title", "media_description":
		return resolvePostToken(token, item)
	}
	return "", false
}

func resolveAuthorFlair(token string, item Item) (string, bool) {
	author, err := item.Author()
	if err != nil || author == nil {
		return "", false
	}
	flair, err := author.Flair()
	if err != nil {
		return "", false
	}
	switch token {
	case "author_flair_text":
		return flair.Text, true
	case "author_flair_css_class":
		return flair.CSSClass, true
	default:
		return flair.TemplateID, true
	}
}

func resolvePostToken(token string, item Item) (string, bool) {
	post, ok := item.(Post)
	if !ok {
		return "", false
	}
	switch token {
	case "title":
		return post.Title(), true
	case "domain":
		return post.Domain(), true
	case "url":
		return post.URL(), true
	case "media_author":
		return post.MediaAuthor(), true
	case "media_author_url":
		return post.MediaAuthorURL(), true
	case "media_title":
		return post.MediaTitle(), true
	case "media_description":
		return post.MediaDescription(), true
	}
	return "", false
}
