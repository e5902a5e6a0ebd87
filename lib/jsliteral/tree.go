package jsliteral

import (
	"fmt"
	"strconv"
	"strings"
)

// MissingFieldError marks a navigation step that ran into an absent key or
// a non-object node. Callers distinguish it from shape errors with errors.As.
type MissingFieldError struct {
	Path string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("jsliteral: missing field %q", e.Path)
}

// Get walks nested maps by key. Any absent segment (or a segment that is
// not an object) yields a MissingFieldError naming the full path walked
// so far.
func Get(node any, path ...string) (any, error) {
	cur := node
	for i, seg := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, &MissingFieldError{Path: strings.Join(path[:i+1], ".")}
		}
		cur, ok = obj[seg]
		if !ok {
			return nil, &MissingFieldError{Path: strings.Join(path[:i+1], ".")}
		}
	}
	return cur, nil
}

// AsString renders a scalar leaf as a string. Numbers format in their
// canonical decimal form so an id of 42 and an id of "42" build the same
// lookup key.
func AsString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

func AsInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case float64:
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func AsFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func AsBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// Truthy mirrors the emptiness checks the embedded dataset relies on:
// nil, "", 0, empty arrays and empty objects all count as absent.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
