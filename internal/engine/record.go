// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package engine

// Record is the per-evaluation match record: check name → the raw value the
// getter returned. It remembers insertion order so that the bare `{{match}}`
// placeholder can resolve to the first recorded value.
type Record struct {
	order  []string
	values map[string]any
}

// NewRecord returns an empty match record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores the raw getter value for a check. Re-recording a name updates
// the value but keeps the name's original position.
func (r *Record) Set(name string, v any) {
	if _, ok := r.values[name]; !ok {
		r.order = append(r.order, name)
	}
	r.values[name] = v
}

// Get returns the value recorded under name.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// First returns the first value recorded, by insertion order.
func (r *Record) First() (any, bool) {
	if len(r.order) == 0 {
		return nil, false
	}
	return r.values[r.order[0]], true
}

// Len reports how many names have been recorded.
func (r *Record) Len() int {
	return len(r.order)
}
