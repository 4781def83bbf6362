// internal/mirror/status_writer.go
package mirror

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/nodelink/internal/status"
)

// registerClient is the one Modbus operation the mirror needs.
type registerClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// Plan locates the status block in remote memory.
type Plan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// StatusWriter delivers snapshots into a status block.
// It receives a snapshot and writes it verbatim.
type StatusWriter struct {
	plan Plan
	cli  registerClient

	needFull bool
	last     []uint16
	nameRegs []uint16
}

// liveSlots are the slots rewritten on incremental updates, in write order.
var liveSlots = [...]struct {
	slot int
	name string
}{
	{status.SlotHealthCode, "health"},
	{status.SlotLastErrorCode, "last_error"},
	{status.SlotSecondsInError, "seconds"},
	{status.SlotLinkStatus, "link_status"},
	{status.SlotFirmwareVersion, "firmware"},
}

func NewStatusWriter(plan Plan, cli registerClient) *StatusWriter {
	return &StatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		last:     status.Encode(status.Snapshot{}),
		nameRegs: encodeDeviceNameRegs(plan.DeviceName),
	}
}

// WriteStatus delivers a snapshot into status memory.
// On any write failure, the next call re-asserts the full block.
func (sw *StatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil {
		return errors.New("status writer: disabled")
	}
	if sw.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", sw.plan.Endpoint)
	}

	regs := status.Encode(s)
	base := sw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		full := append([]uint16(nil), regs...)
		copy(full[status.SlotDeviceNameStart:status.SlotDeviceNameEnd+1], sw.nameRegs)

		if err := sw.cli.WriteRegisters(sw.plan.UnitID, base, full); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		sw.needFull = false
		sw.last = regs
		return nil
	}

	var errs []string

	for _, ls := range liveSlots {
		if sw.last[ls.slot] == regs[ls.slot] {
			continue
		}
		addr := base + uint16(ls.slot)
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, addr, regs[ls.slot:ls.slot+1]); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", ls.slot, ls.name, err))
			continue
		}
		sw.last[ls.slot] = regs[ls.slot]
	}

	if len(errs) > 0 {
		// partial failure: re-assert on next call
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *StatusWriter) baseAddr() uint16 {
	// Each node owns a fixed SlotsPerDevice block.
	return sw.plan.BaseSlot * status.SlotsPerDevice
}

// encodeDeviceNameRegs packs up to 16 ASCII characters into 8 registers,
// two bytes per register, big-endian.
func encodeDeviceNameRegs(name string) []uint16 {
	out := make([]uint16, status.SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > status.DeviceNameMaxChars {
		b = b[:status.DeviceNameMaxChars]
	}

	for i := range b {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < len(b); i += 2 {
		hi := b[i]
		var lo byte
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
