// internal/schema/tables.go
package schema

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tamzrod/nodelink/internal/domain"
)

// Telemetry is the read_data payload table. Key set and ranges are fixed by firmware.
var Telemetry = Object{
	What: "Read data",
	Rules: []Rule{
		integer("pid"),
		flag("otm"),
		flag("po"),
		flag("ecc"),
		flag("ps"),
		flag("pe"),
		flag("mms"),
		flag("pref"),
		integer("dccm"),
		integer("ddmc"),
		integer("ddpc"),
		integer("ds"),
		ints("fccm"),
		ints("fdmc"),
		ints("fdpc"),
		ints("lccm"),
		ints("ldmc"),
		ints("ldpc"),
		integer("av"),
		integer("ptr"),
		integer("vs"),
		integer("app"),
		integer("asgp"),
		integer("ashf"),
		integer("cmip"),
		integer("pip"),
		integer("sip"),
		integer("sihp"),
		{Key: "fv", Kind: Number},
		integer("dss"),
		integer("pm"),
		integer("hl"),
		integer("ah"),
		integer("cur"),
		integer("pg"),
		integer("sf"),
		integer("fr_maj_ccm"),
		integer("fr_maj_dmc"),
		integer("fr_maj_dpc"),
		integer("fr_min_ccm"),
		integer("fr_min_dmc"),
		integer("fr_min_dpc"),
		integer("fr_dev_ccm"),
		integer("fr_dev_dmc"),
		integer("fr_dev_dpc"),
	},
}

// Network is the table for one list_networks entry.
var Network = Object{
	What: "List networks",
	Rules: []Rule{
		{Key: "ssid", Kind: String},
		{Key: "encrypt_type", Kind: String, Enum: []string{"wpa2/psk", "open", "wpa2"}},
		{Key: "rssi", Kind: Integer, Bounded: true, Min: -100, Max: 0},
		{Key: "bssid", Kind: String, Len: 17},
		integer("channel"),
		flag("hidden"),
		flag("current"),
	},
}

// NodeIP is the get_node_ip reply table.
var NodeIP = Object{
	What:   "Dynamic IP response",
	Rules:  []Rule{{Key: "IP", Kind: String}},
	Closed: true,
}

// ParseTelemetry validates one read_data payload.
func ParseTelemetry(raw json.RawMessage) (domain.Record, error) {
	vals, err := Telemetry.Validate(raw)
	if err != nil {
		return nil, err
	}
	return domain.Record(vals), nil
}

// ParseNetworks validates a list_networks payload.
func ParseNetworks(raw json.RawMessage) ([]domain.Network, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, &Error{What: Network.What, Reason: "expected array"}
	}

	out := make([]domain.Network, 0, len(items))
	for i, it := range items {
		if _, err := Network.validateAt(it, strconv.Itoa(i)); err != nil {
			return nil, err
		}
		var n domain.Network
		if err := json.Unmarshal(it, &n); err != nil {
			return nil, fmt.Errorf("schema: decode network %d: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// ParseNodeIP validates a get_node_ip reply and returns the reported address.
// The address itself is not checked; see ValidateIP.
func ParseNodeIP(raw json.RawMessage) (string, error) {
	vals, err := NodeIP.Validate(raw)
	if err != nil {
		return "", err
	}
	return vals["IP"].(string), nil
}
