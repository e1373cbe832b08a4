package domain

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// PathSeparator splits a Path into segments.
const PathSeparator = "."

// JoinPath builds a dotted Path from segments.
func JoinPath(segments ...string) string {
	return strings.Join(segments, PathSeparator)
}

// Resolve walks a dotted path through rec one segment at a time.
// It reports false when any segment is absent or an intermediate value is
// not an object. It never fails, including for a nil record or empty path.
func Resolve(rec *Object, path string) (any, bool) {
	var cur any = rec
	for _, seg := range strings.Split(path, PathSeparator) {
		obj, ok := cur.(*Object)
		if !ok || obj == nil {
			return nil, false
		}
		cur, ok = obj.Get(seg)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// ResolveString resolves path and stringifies the result.
// A missing value yields "" and false.
func ResolveString(rec *Object, path string) (string, bool) {
	v, ok := Resolve(rec, path)
	if !ok {
		return "", false
	}
	return Stringify(v), true
}

// Stringify renders a JSON value the way filters and option sets compare it.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatNumber(t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			if e != nil {
				parts[i] = Stringify(e)
			}
		}
		return strings.Join(parts, ",")
	case *Object:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatNumber writes the shortest round-tripping form, switching to an
// exponent outside [1e-6, 1e21) with no padding in the exponent: 1e+21, 1.5e-7.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	if n := len(s); n >= 4 && s[n-4] == 'e' && s[n-2] == '0' {
		s = s[:n-2] + s[n-1:]
	}
	return s
}
