// internal/schema/rules.go
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind is the JSON shape a key must carry.
type Kind int

const (
	Integer Kind = iota
	Number
	String
	IntegerArray
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Number:
		return "number"
	case String:
		return "string"
	case IntegerArray:
		return "array of integers"
	default:
		return "unknown"
	}
}

// Rule constrains one required key of an object.
type Rule struct {
	Key  string
	Kind Kind

	// Bounded enables the inclusive [Min, Max] check on integers.
	Bounded  bool
	Min, Max int64

	Enum []string // strings only; empty means any
	Len  int      // exact string length; 0 means any
}

// Object is a fixed validation table for one JSON object.
type Object struct {
	What  string
	Rules []Rule

	// Closed rejects keys that have no rule.
	Closed bool
}

// Error describes the first validation failure.
type Error struct {
	What   string
	Path   string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s validation failed at /%s: %s", e.What, e.Path, e.Reason)
}

func flag(k string) Rule    { return Rule{Key: k, Kind: Integer, Bounded: true, Min: 0, Max: 1} }
func integer(k string) Rule { return Rule{Key: k, Kind: Integer} }
func ints(k string) Rule    { return Rule{Key: k, Kind: IntegerArray} }

// Validate checks raw against the table and returns the decoded values:
// int64 for Integer, float64 for Number, string for String, []int64 for IntegerArray.
func (o Object) Validate(raw json.RawMessage) (map[string]any, error) {
	return o.validateAt(raw, "")
}

func (o Object) validateAt(raw json.RawMessage, prefix string) (map[string]any, error) {
	fail := func(path, reason string) error {
		return &Error{What: o.What, Path: join(prefix, path), Reason: reason}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, fail("", "expected object")
	}

	out := make(map[string]any, len(o.Rules))

	for _, r := range o.Rules {
		v, ok := obj[r.Key]
		if !ok {
			return nil, fail("", fmt.Sprintf("missing required key %q", r.Key))
		}

		val, reason, sub := r.check(v)
		if reason != "" {
			return nil, fail(join(r.Key, sub), reason)
		}
		out[r.Key] = val
	}

	if o.Closed && len(obj) > len(o.Rules) {
		known := make(map[string]struct{}, len(o.Rules))
		for _, r := range o.Rules {
			known[r.Key] = struct{}{}
		}
		for k := range obj {
			if _, ok := known[k]; !ok {
				return nil, fail("", fmt.Sprintf("unexpected key %q", k))
			}
		}
	}

	return out, nil
}

// check returns the decoded value, or a failure reason and the sub-path
// (array index) where it occurred.
func (r Rule) check(raw json.RawMessage) (any, string, string) {
	switch r.Kind {
	case Integer:
		n, ok := asInt(raw)
		if !ok {
			return nil, "expected integer", ""
		}
		if r.Bounded && (n < r.Min || n > r.Max) {
			return nil, fmt.Sprintf("%d out of range [%d, %d]", n, r.Min, r.Max), ""
		}
		return n, "", ""

	case Number:
		num, ok := asNumber(raw)
		if !ok {
			return nil, "expected number", ""
		}
		f, err := num.Float64()
		if err != nil {
			return nil, "expected number", ""
		}
		return f, "", ""

	case String:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, "expected string", ""
		}
		if r.Len > 0 && len(s) != r.Len {
			return nil, fmt.Sprintf("length %d, want %d", len(s), r.Len), ""
		}
		if len(r.Enum) > 0 && !contains(r.Enum, s) {
			return nil, fmt.Sprintf("%q is not one of %v", s, r.Enum), ""
		}
		return s, "", ""

	case IntegerArray:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil || items == nil {
			return nil, "expected array", ""
		}
		out := make([]int64, 0, len(items))
		for i, it := range items {
			n, ok := asInt(it)
			if !ok {
				return nil, "expected integer", strconv.Itoa(i)
			}
			out = append(out, n)
		}
		return out, "", ""
	}

	return nil, "unknown rule kind", ""
}

func asNumber(raw json.RawMessage) (json.Number, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	n, ok := v.(json.Number)
	return n, ok
}

// asInt accepts any number with a zero fractional part, so 1.0 and 1e2
// are integers.
func asInt(raw json.RawMessage) (int64, bool) {
	num, ok := asNumber(raw)
	if !ok {
		return 0, false
	}
	if n, err := num.Int64(); err == nil {
		return n, true
	}

	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func join(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "/" + b
	}
}
