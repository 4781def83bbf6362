// internal/status/snapshot.go
package status

// Snapshot represents exactly what the mirror is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health          uint16
	LastErrorCode   uint16
	SecondsInError  uint16
	LinkStatus      uint16
	FirmwareVersion uint16
}

// HealthFor maps an aggregator tier onto a health code and error code.
func HealthFor(s Status) (health, errCode uint16) {
	switch s {
	case Good:
		return HealthOK, ErrorNone
	case Faulty:
		return HealthStale, ErrorDegraded
	default:
		return HealthError, ErrorNotConnected
	}
}
