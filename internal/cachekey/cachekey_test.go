package cachekey

import (
	"testing"

	"media-broker/internal/hashing"
)

func strPtr(s string) *string    { return &s }
func intPtr(i int) *int          { return &i }
func boolPtr(b bool) *bool       { return &b }
func floatPtr(f float64) *float64 { return &f }

func TestForURL(t *testing.T) {
	url := "https://example.com/clip.mp4"

	key := ForURL(url)
	if len(key) != hashing.DigestLength {
		t.Errorf("key length = %d, want %d", len(key), hashing.DigestLength)
	}

	if ForURL(url) != key {
		t.Error("same URL produced different keys")
	}
	if ForURL("https://example.com/other.mp4") == key {
		t.Error("different URLs produced the same key")
	}
}

func TestForConversionDegradesToURL(t *testing.T) {
	url := "https://example.com/clip.mp4"

	tests := []struct {
		name string
		opts *ConvertOptions
	}{
		{name: "nil options", opts: nil},
		{name: "empty options", opts: &ConvertOptions{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForConversion(url, tt.opts); got != ForURL(url) {
				t.Errorf("expected plain URL key, got %s", got)
			}
		})
	}
}

func TestForConversionEqualOptions(t *testing.T) {
	url := "https://example.com/clip.mp4"

	// Built in different orders, logically equal.
	a := &ConvertOptions{}
	a.Width = intPtr(480)
	a.FPS = intPtr(15)
	a.Lossy = intPtr(80)

	b := &ConvertOptions{}
	b.Lossy = intPtr(80)
	b.FPS = intPtr(15)
	b.Width = intPtr(480)

	if ForConversion(url, a) != ForConversion(url, b) {
		t.Error("logically-equal options produced different keys")
	}
}

func TestForConversionFieldSensitivity(t *testing.T) {
	url := "https://example.com/clip.mp4"
	base := &ConvertOptions{
		Quality:  strPtr("high"),
		Optimize: boolPtr(true),
		Lossy:    intPtr(80),
		Start:    strPtr("00:00:03"),
		Duration: floatPtr(5.5),
		Width:    intPtr(480),
		FPS:      intPtr(15),
	}
	baseKey := ForConversion(url, base)

	tests := []struct {
		name   string
		mutate func(o *ConvertOptions)
	}{
		{name: "quality", mutate: func(o *ConvertOptions) { o.Quality = strPtr("low") }},
		{name: "optimize", mutate: func(o *ConvertOptions) { o.Optimize = boolPtr(false) }},
		{name: "lossy", mutate: func(o *ConvertOptions) { o.Lossy = intPtr(81) }},
		{name: "start", mutate: func(o *ConvertOptions) { o.Start = strPtr("00:00:04") }},
		{name: "duration", mutate: func(o *ConvertOptions) { o.Duration = floatPtr(6) }},
		{name: "width", mutate: func(o *ConvertOptions) { o.Width = intPtr(320) }},
		{name: "fps", mutate: func(o *ConvertOptions) { o.FPS = intPtr(30) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mutated := *base
			tt.mutate(&mutated)
			if ForConversion(url, &mutated) == baseKey {
				t.Errorf("changing %s did not change the key", tt.name)
			}
		})
	}
}

func TestForConversionUnsetFieldsIgnored(t *testing.T) {
	url := "https://example.com/clip.mp4"

	a := &ConvertOptions{Width: intPtr(480)}
	b := &ConvertOptions{Width: intPtr(480), Quality: nil, FPS: nil}

	if ForConversion(url, a) != ForConversion(url, b) {
		t.Error("explicitly-nil fields affected the key")
	}
}

func TestForConversionDistinctFromPlainURL(t *testing.T) {
	url := "https://example.com/clip.mp4"
	opts := &ConvertOptions{Width: intPtr(480)}

	if ForConversion(url, opts) == ForURL(url) {
		t.Error("parameterized key collided with the plain URL key")
	}
}

func TestForConversionURLSensitivity(t *testing.T) {
	opts := &ConvertOptions{Width: intPtr(480)}

	a := ForConversion("https://example.com/a.mp4", opts)
	b := ForConversion("https://example.com/b.mp4", opts)
	if a == b {
		t.Error("different URLs with equal options produced the same key")
	}
}

func TestNumericCanonicalForm(t *testing.T) {
	url := "https://example.com/clip.mp4"

	// 5 and 5.0 are the same float64; their keys must match.
	a := ForConversion(url, &ConvertOptions{Duration: floatPtr(5)})
	b := ForConversion(url, &ConvertOptions{Duration: floatPtr(5.0)})
	if a != b {
		t.Error("equal durations produced different keys")
	}
}
