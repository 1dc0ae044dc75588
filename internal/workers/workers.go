package workers

import (
	"os"
	"strconv"
)

const (
	// defaultConversions respects the rate-limited extraction service.
	defaultConversions = 2
	// maxConversions is the hard cap on operator overrides. The
	// transcoding container shares the host's CPUs; past this point
	// extra producers only queue inside the container.
	maxConversions = 8
)

// ForConversions returns the admission ceiling for conversion
// producers.
//
// Can be overridden with the CONVERT_WORKERS environment variable;
// overrides are clamped to the hard cap and invalid values are ignored.
func ForConversions() int {
	if override := os.Getenv("CONVERT_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if count > maxConversions {
				return maxConversions
			}
			return count
		}
	}
	return defaultConversions
}
