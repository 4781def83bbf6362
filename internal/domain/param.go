// internal/domain/param.go
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParamValue is one (parameter id, value) pair.
// Value holds an int64 or a string.
// On the wire it is a two-element JSON array: [id, value].
type ParamValue struct {
	ID    int
	Value any
}

// PV is shorthand for an integer-valued ParamValue.
func PV(id int, v int64) ParamValue {
	return ParamValue{ID: id, Value: v}
}

func (p ParamValue) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.ID, p.Value})
}

func (p *ParamValue) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("param value: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("param value: expected [id, value], got %d elements", len(pair))
	}

	var id int
	if err := json.Unmarshal(pair[0], &id); err != nil {
		return fmt.Errorf("param value: id: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(pair[1]))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("param value %d: %w", id, err)
	}

	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			p.Value = n
		} else if f, err := v.Float64(); err == nil {
			p.Value = f
		} else {
			return fmt.Errorf("param value %d: bad number %q", id, v.String())
		}
	case string:
		p.Value = v
	default:
		return fmt.Errorf("param value %d: unsupported value type %T", id, raw)
	}

	p.ID = id
	return nil
}

// Int returns the value as an integer when it is one.
func (p ParamValue) Int() (int64, bool) {
	n, ok := p.Value.(int64)
	return n, ok
}

// ParamIDs returns the ids of values, in order.
func ParamIDs(values []ParamValue) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		out = append(out, v.ID)
	}
	return out
}
