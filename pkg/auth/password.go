package auth

import "strings"

// VerifyAdminPassword checks a supplied admin password against the configured
// one by plain equality. Blank or whitespace-only passwords never match.
func VerifyAdminPassword(supplied, configured string) bool {
	if strings.TrimSpace(supplied) == "" {
		return false
	}
	// TODO: harden with a hashed admin password once the config worker can store one.
	return supplied == configured
}
