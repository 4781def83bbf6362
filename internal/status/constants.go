// internal/status/constants.go
package status

// Link Status Block layout constants.
// These values define the mirror protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of registers per mirrored node.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the node health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last error code.
const SlotLastErrorCode = 1

// SlotSecondsInError holds the duration (in seconds) the node has been unhealthy.
const SlotSecondsInError = 2

// SlotLinkStatus holds the raw aggregator tier (see Status).
const SlotLinkStatus = 3

// SlotFirmwareVersion holds the last handshake version, clamped to 16 bits.
const SlotFirmwareVersion = 4

// ---- RESERVED RANGE ----

const SlotReservedStart = 5
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

const (
	HealthUnknown  uint16 = 0
	HealthOK       uint16 = 1
	HealthError    uint16 = 2
	HealthStale    uint16 = 3
	HealthDisabled uint16 = 4
)

// ---- ERROR CODES ----

const (
	ErrorNone         uint16 = 0
	ErrorDegraded     uint16 = 1
	ErrorNotConnected uint16 = 2
)
