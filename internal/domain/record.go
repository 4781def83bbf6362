// internal/domain/record.go
package domain

// Record is one validated telemetry snapshot keyed by short parameter name.
// Values are int64, float64 or []int64 as fixed by the telemetry table.
type Record map[string]any

func (r Record) Int(key string) (int64, bool) {
	v, ok := r[key].(int64)
	return v, ok
}

func (r Record) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func (r Record) Ints(key string) ([]int64, bool) {
	v, ok := r[key].([]int64)
	return v, ok
}
