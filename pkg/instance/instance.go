package instance

import (
	"os"
	"strings"
)

// ID names the running process in logs and lock ownership. It prefers
// CLINIC_INSTANCE_ID, then the host name.
func ID() string {
	if id := strings.TrimSpace(os.Getenv("CLINIC_INSTANCE_ID")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
