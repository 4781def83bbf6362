// internal/mirror/builder.go
package mirror

import (
	"time"

	"github.com/tamzrod/nodelink/internal/config"
	mmodbus "github.com/tamzrod/nodelink/internal/mirror/modbus"
)

// BuildPlan converts the mirror config into a Plan.
// Assumes config has already passed validation and normalization.
func BuildPlan(mc config.MirrorConfig) Plan {
	return Plan{
		Endpoint:   mc.Endpoint,
		UnitID:     mc.UnitID,
		BaseSlot:   mc.BaseSlot,
		DeviceName: mc.DeviceName,
	}
}

// Build connects to the status memory endpoint and returns a ready writer.
// A nil mc means the mirror is disabled: (nil, no-op closer, nil).
func Build(mc *config.MirrorConfig) (*StatusWriter, func() error, error) {
	if mc == nil {
		return nil, func() error { return nil }, nil
	}

	c, err := mmodbus.NewEndpointClient(mmodbus.Config{
		Endpoint: mc.Endpoint,
		Timeout:  time.Duration(mc.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	return NewStatusWriter(BuildPlan(*mc), c), c.Close, nil
}
