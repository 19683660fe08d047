package validation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Options is the sparse key/value record attached to a validation spec.
// Unknown keys are ignored.
type Options map[string]any

// Bool reports whether key holds a true boolean (or the literal "true").
func (o Options) Bool(key string) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	}
	return false
}

// Float returns the numeric value of key, or def when absent or not numeric.
func (o Options) Float(key string, def float64) float64 {
	switch v := o[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

// Int returns the integer value of key, or def.
func (o Options) Int(key string, def int) int {
	f := o.Float(key, float64(def))
	return int(f)
}

// String returns the string form of key, or def when absent.
func (o Options) String(key, def string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return formatValue(v)
}

// Strings returns key as a list. A string value is split on commas.
func (o Options) Strings(key string) []string {
	switch v := o[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			out = append(out, formatValue(e))
		}
		return out
	case string:
		return splitList(v)
	case nil:
		return nil
	default:
		return []string{formatValue(v)}
	}
}

// Encode renders options as k=v pairs sorted by key; arrays are comma-joined.
func (o Options) Encode() string {
	if len(o) == 0 {
		return ""
	}
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+formatValue(o[k]))
	}
	return strings.Join(parts, ",")
}

func formatValue(v any) string {
	switch t := v.(type) {
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case string:
		return t
	case []string:
		return strings.Join(t, ",")
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, formatValue(e))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

// coerce turns a raw option literal into bool, float64 or string.
func coerce(raw string) any {
	s := strings.TrimSpace(raw)
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
