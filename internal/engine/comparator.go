// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Comparator names accepted as rule-key options.
const (
	CmpFullExact    = "full-exact"
	CmpIncludes     = "includes"
	CmpIncludesWord = "includes-word"
	CmpStartsWith   = "starts-with"
	CmpEndsWith     = "ends-with"
	CmpFullText     = "full-text"
	CmpContains     = "contains"
	CmpOnly         = "only"
	CmpNumeric      = "numeric"
	CmpTime         = "time"
	CmpBool         = "bool"
)

// Flag and ordering options.
const (
	OptCaseSensitive = "case-sensitive"
	OptRegex         = "regex"
	OptGreaterThan   = "greater-than"
	OptLessThan      = "less-than"
	OptGreaterThanEq = "greater-than-equal"
	OptLessThanEq    = "less-than-equal"
)

// cmpEnv carries evaluation-time state the comparators need. The clock is
// injectable so temporal tests are deterministic.
type cmpEnv struct {
	now time.Time
}

// comparatorFn decides whether a concrete attribute value satisfies the
// rule's test value. Errors signal comparator misuse (reported to the
// operator, rule treated as failed), not a non-match.
type comparatorFn func(env cmpEnv, value, test any, opts []string) (bool, error)

var comparators = map[string]comparatorFn{
	CmpFullExact:    cmpFullExact,
	CmpIncludes:     cmpIncludes,
	CmpIncludesWord: cmpIncludesWord,
	CmpStartsWith:   cmpStartsWith,
	CmpEndsWith:     cmpEndsWith,
	CmpFullText:     cmpFullText,
	CmpContains:     cmpContains,
	CmpOnly:         cmpOnly,
	CmpNumeric:      cmpNumeric,
	CmpTime:         cmpTime,
	CmpBool:         cmpBool,
}

// resolveComparator starts from a check's default and lets options override
// it. When several options name comparators, the last one wins.
func resolveComparator(def string, opts []string) string {
	name := def
	for _, opt := range opts {
		if _, ok := comparators[opt]; ok {
			name = opt
		}
	}
	return name
}

func hasOption(opts []string, name string) bool {
	for _, o := range opts {
		if o == name {
			return true
		}
	}
	return false
}

var (
	wordRe       = regexp.MustCompile(`\w+`)
	numberRe     = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	leadingJunk  = regexp.MustCompile(`^[^a-zA-Z0-9]+`)
	trailingJunk = regexp.MustCompile(`[^a-zA-Z0-9]+$`)
	timeAmountRe = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*(minutes?|hours?|days?|weeks?|months?|years?)?`)
)

// candidates flattens a getter value into the list of strings to match
// against, dropping nils.
func candidates(value any) []string {
	switch t := value.(type) {
	case nil:
		return nil
	case []any:
		var out []string
		for _, e := range t {
			if e == nil {
				continue
			}
			out = append(out, stringify(e))
		}
		return out
	case []string:
		return t
	default:
		return []string{stringify(t)}
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

func fold(s string, opts []string) string {
	if hasOption(opts, OptCaseSensitive) {
		return s
	}
	return strings.ToLower(s)
}

// matchString is the shared text primitive: exact equality, or regex
// fullmatch/search when the regex option is present. Case folding uses the
// (?i) flag for regexes so character classes survive intact.
func matchString(value, test string, opts []string, anchored bool) (bool, error) {
	if !hasOption(opts, OptRegex) {
		value = fold(value, opts)
		test = fold(test, opts)
		if anchored {
			return value == test, nil
		}
		return strings.Contains(value, test), nil
	}

	pattern := test
	if anchored {
		pattern = `^(?:` + test + `)$`
	}
	if !hasOption(opts, OptCaseSensitive) {
		pattern = `(?i)` + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("invalid regex %q: %w", test, err)
	}
	return re.MatchString(value), nil
}

func cmpFullExact(_ cmpEnv, value, test any, opts []string) (bool, error) {
	testStr := stringify(test)
	for _, v := range candidates(value) {
		ok, err := matchString(v, testStr, opts, true)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func cmpIncludes(_ cmpEnv, value, test any, opts []string) (bool, error) {
	testStr := stringify(test)
	for _, v := range candidates(value) {
		ok, err := matchString(v, testStr, opts, false)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func cmpIncludesWord(_ cmpEnv, value, test any, opts []string) (bool, error) {
	testStr := stringify(test)
	for _, v := range candidates(value) {
		for _, word := range wordRe.FindAllString(v, -1) {
			ok, err := matchString(word, testStr, opts, true)
			if err != nil || ok {
				return ok, err
			}
		}
	}
	return false, nil
}

func cmpStartsWith(_ cmpEnv, value, test any, opts []string) (bool, error) {
	if hasOption(opts, OptRegex) {
		return false, fmt.Errorf("the regex option cannot be combined with starts-with")
	}
	testStr := stringify(test)
	for _, v := range candidates(value) {
		if strings.HasPrefix(fold(v, opts), fold(testStr, opts)) {
			return true, nil
		}
	}
	return false, nil
}

func cmpEndsWith(_ cmpEnv, value, test any, opts []string) (bool, error) {
	if hasOption(opts, OptRegex) {
		return false, fmt.Errorf("the regex option cannot be combined with ends-with")
	}
	testStr := stringify(test)
	for _, v := range candidates(value) {
		if strings.HasSuffix(fold(v, opts), fold(testStr, opts)) {
			return true, nil
		}
	}
	return false, nil
}

func cmpFullText(env cmpEnv, value, test any, opts []string) (bool, error) {
	var trimmed []any
	for _, v := range candidates(value) {
		v = leadingJunk.ReplaceAllString(v, "")
		v = trailingJunk.ReplaceAllString(v, "")
		trimmed = append(trimmed, v)
	}
	return cmpFullExact(env, trimmed, test, opts)
}

func cmpContains(env cmpEnv, value, test any, opts []string) (bool, error) {
	list, ok := asList(value)
	if !ok {
		return false, nil
	}
	for _, el := range list {
		ok, err := cmpFullExact(env, el, test, opts)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func cmpOnly(env cmpEnv, value, test any, opts []string) (bool, error) {
	list, ok := asList(value)
	if !ok || len(list) == 0 {
		return false, nil
	}
	for _, el := range list {
		ok, err := cmpFullExact(env, el, test, opts)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func asList(value any) ([]any, bool) {
	switch t := value.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// ordering names the comparison direction for numeric and time tests.
type ordering int

const (
	orderEqual ordering = iota
	orderGreater
	orderLess
	orderGreaterEq
	orderLessEq
)

// orderingFromOptions reads the ordering-word options. The equality suffix
// variants are checked first since plain tokens are exact matches anyway.
func orderingFromOptions(opts []string) (ordering, bool) {
	switch {
	case hasOption(opts, OptGreaterThanEq):
		return orderGreaterEq, true
	case hasOption(opts, OptLessThanEq):
		return orderLessEq, true
	case hasOption(opts, OptGreaterThan):
		return orderGreater, true
	case hasOption(opts, OptLessThan):
		return orderLess, true
	default:
		return orderEqual, false
	}
}

// orderingFromMarkers reads inequality prefixes embedded in the test string,
// e.g. "> 5" or "<= 10 days". Markers take precedence over options.
func orderingFromMarkers(s string) (ordering, bool) {
	switch {
	case strings.Contains(s, ">="):
		return orderGreaterEq, true
	case strings.Contains(s, "<="):
		return orderLessEq, true
	case strings.Contains(s, ">"):
		return orderGreater, true
	case strings.Contains(s, "<"):
		return orderLess, true
	default:
		return orderEqual, false
	}
}

func compareFloats(value, test float64, ord ordering) bool {
	switch ord {
	case orderGreater:
		return value > test
	case orderLess:
		return value < test
	case orderGreaterEq:
		return value >= test
	case orderLessEq:
		return value <= test
	default:
		return value == test
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float64:
		return t, true
	case string:
		if m := numberRe.FindString(t); m != "" {
			f, err := strconv.ParseFloat(m, 64)
			return f, err == nil
		}
		return 0, false
	default:
		return 0, false
	}
}

func cmpNumeric(_ cmpEnv, value, test any, opts []string) (bool, error) {
	val, ok := toFloat(value)
	if !ok {
		return false, nil
	}

	ord, explicit := orderEqual, false
	if s, isStr := test.(string); isStr {
		ord, explicit = orderingFromMarkers(s)
	}
	if !explicit {
		ord, _ = orderingFromOptions(opts)
	}

	num, ok := toFloat(test)
	if !ok {
		return false, fmt.Errorf("numeric comparator needs a numeric test value, got %q", stringify(test))
	}

	return compareFloats(val, num, ord), nil
}

// cmpTime compares a timestamp-valued attribute (e.g. account creation)
// against a duration test like "> 6 months". The attribute plus the parsed
// delta is held against the current instant, so greater-than means "older
// than the delta".
func cmpTime(env cmpEnv, value, test any, opts []string) (bool, error) {
	at, ok := value.(time.Time)
	if !ok {
		return false, nil
	}

	delta, ord, explicit, err := parseTimeTest(test)
	if err != nil {
		return false, err
	}
	if !explicit {
		ord, _ = orderingFromOptions(opts)
	}

	deadline := at.Add(delta)
	switch ord {
	case orderGreater:
		return env.now.After(deadline), nil
	case orderLess:
		return env.now.Before(deadline), nil
	case orderGreaterEq:
		return !env.now.Before(deadline), nil
	case orderLessEq:
		return !env.now.After(deadline), nil
	default:
		return env.now.Equal(deadline), nil
	}
}

// parseTimeTest extracts the amount, unit and any inequality marker from a
// time test. The unit defaults to days.
func parseTimeTest(test any) (time.Duration, ordering, bool, error) {
	if f, ok := toFloat(test); ok && !isString(test) {
		return time.Duration(f * float64(24*time.Hour)), orderEqual, false, nil
	}

	s, ok := test.(string)
	if !ok {
		return 0, orderEqual, false, fmt.Errorf("time comparator needs a duration test value, got %v", test)
	}

	ord, explicit := orderingFromMarkers(s)

	m := timeAmountRe.FindStringSubmatch(s)
	if m == nil || m[1] == "" {
		return 0, orderEqual, false, fmt.Errorf("time comparator needs an amount, got %q", s)
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, orderEqual, false, fmt.Errorf("time comparator amount %q: %w", m[1], err)
	}

	unit := 24 * time.Hour
	switch strings.TrimSuffix(m[2], "s") {
	case "minute":
		unit = time.Minute
	case "hour":
		unit = time.Hour
	case "day", "":
		unit = 24 * time.Hour
	case "week":
		unit = 7 * 24 * time.Hour
	case "month":
		unit = 30 * 24 * time.Hour
	case "year":
		unit = 365 * 24 * time.Hour
	}

	return time.Duration(amount * float64(unit)), ord, explicit, nil
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func cmpBool(_ cmpEnv, value, test any, _ []string) (bool, error) {
	val, ok := toBool(value)
	if !ok {
		return false, nil
	}
	want, ok := toBool(test)
	if !ok {
		return false, fmt.Errorf("bool comparator needs a boolean test value, got %v", test)
	}
	return val == want, nil
}

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.ToLower(t))
		return b, err == nil
	default:
		return false, false
	}
}
