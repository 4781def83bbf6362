// internal/schema/ip.go
package schema

import (
	"fmt"
	"net/netip"
)

// ValidateIP checks that ip is an IPv4 or IPv6 literal.
// name labels the field in the returned reason.
func ValidateIP(ip, name string) error {
	if ip == "" {
		return fmt.Errorf("%s cannot be empty.", name)
	}
	if _, err := netip.ParseAddr(ip); err != nil {
		return fmt.Errorf("%s '%s' is not an IPv4 or IPv6 address.", name, ip)
	}
	return nil
}
