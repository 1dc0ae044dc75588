package workers

import (
	"os"
	"testing"
)

func TestForConversions(t *testing.T) {
	// Save and restore original environment
	originalEnv := os.Getenv("CONVERT_WORKERS")
	defer func() {
		if originalEnv != "" {
			os.Setenv("CONVERT_WORKERS", originalEnv)
		} else {
			os.Unsetenv("CONVERT_WORKERS")
		}
	}()

	tests := []struct {
		name string
		env  string
		want int
	}{
		{name: "default", env: "", want: 2},
		{name: "explicit override", env: "4", want: 4},
		{name: "clamped to cap", env: "50", want: 8},
		{name: "zero ignored", env: "0", want: 2},
		{name: "negative ignored", env: "-3", want: 2},
		{name: "garbage ignored", env: "many", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env == "" {
				os.Unsetenv("CONVERT_WORKERS")
			} else {
				os.Setenv("CONVERT_WORKERS", tt.env)
			}

			if got := ForConversions(); got != tt.want {
				t.Errorf("ForConversions() = %d, want %d", got, tt.want)
			}
		})
	}
}
