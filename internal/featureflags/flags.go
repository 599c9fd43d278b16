package featureflags

import (
	"os"
	"strings"
)

const envPrefix = "FLAG_"

// Enabled reports whether a feature flag is turned on via environment
// variable. A flag named "realtime_fanout" is read from FLAG_REALTIME_FANOUT;
// truthy values are 1/true/yes/on, case-insensitive. Unset means off.
func Enabled(name string) bool {
	v := os.Getenv(envPrefix + strings.ToUpper(name))
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
