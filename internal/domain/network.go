// internal/domain/network.go
package domain

// Network is one access point reported by list_networks.
type Network struct {
	SSID        string `json:"ssid"`
	EncryptType string `json:"encrypt_type"`
	RSSI        int    `json:"rssi"`
	BSSID       string `json:"bssid"`
	Channel     int    `json:"channel"`
	Hidden      int    `json:"hidden"`
	Current     int    `json:"current"`
}

// StaticIP holds the station addressing used instead of DHCP.
type StaticIP struct {
	IP      string
	Subnet  string
	Gateway string
}

// SelectNetworkArgs are the arguments of select_network.
// A nil Password means "open network"; a nil Static means DHCP.
type SelectNetworkArgs struct {
	BSSID    string
	Password *string
	Static   *StaticIP
}

// Params renders the firmware keyword arguments.
func (a SelectNetworkArgs) Params() map[string]any {
	p := map[string]any{
		"bssid":    a.BSSID,
		"sta_dhcp": a.Static == nil,
	}
	if a.Password != nil && *a.Password != "" {
		p["password"] = *a.Password
	}
	if a.Static != nil {
		p["sta_ip"] = a.Static.IP
		p["sta_subnet"] = a.Static.Subnet
		p["sta_gateway"] = a.Static.Gateway
	}
	return p
}
