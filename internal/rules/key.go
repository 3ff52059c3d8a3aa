// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rules

import "strings"

// Key is a parsed rule key of the form `[~]name[+name...] [(opt[, opt]...)]`.
// Names joined with `+` form an OR-group; options are lowercase tokens with
// hyphens preserved.
type Key struct {
	Raw     string
	Negate  bool
	Names   []string
	Options []string
}

// ParseKey splits a raw rule key into its negation flag, OR-group names and
// option list. The result is deterministic for a given key string.
func ParseKey(raw string) Key {
	k := Key{Raw: raw}
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "~") {
		k.Negate = true
		s = strings.TrimSpace(s[1:])
	}

	if open := strings.Index(s, "("); open >= 0 {
		rest := strings.TrimSpace(s[open+1:])
		if strings.HasSuffix(rest, ")") {
			for _, opt := range strings.Split(strings.TrimSuffix(rest, ")"), ",") {
				opt = strings.ToLower(strings.TrimSpace(opt))
				if opt != "" {
					k.Options = append(k.Options, opt)
				}
			}
			s = s[:open]
		}
	}

	for _, name := range strings.Split(strings.TrimSpace(s), "+") {
		name = strings.TrimSpace(name)
		if name != "" {
			k.Names = append(k.Names, name)
		}
	}

	return k
}

// HasOption reports whether the key carries the given option token.
func (k Key) HasOption(name string) bool {
	for _, opt := range k.Options {
		if opt == name {
			return true
		}
	}
	return false
}
