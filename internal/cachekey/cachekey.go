package cachekey

import (
	"sort"
	"strconv"
	"strings"

	"media-broker/internal/hashing"
)

// Separators used when assembling the pre-hash string. These are part of
// the key format: changing them invalidates every previously cached row.
const (
	fieldSep = "|"
	pairSep  = ":"
	urlSep   = "::"
)

// ConvertOptions holds the conversion parameters that contribute to a
// cache key. A nil field means "not set" and never affects the key, so
// callers can pass a partially filled struct without changing the
// identity of an otherwise equal request.
type ConvertOptions struct {
	Quality  *string  // encoder quality preset
	Optimize *bool    // run the optimizer pass
	Lossy    *int     // lossy compression level
	Start    *string  // clip start timestamp
	Duration *float64 // clip duration in seconds
	Width    *int     // output width in pixels
	FPS      *int     // output frame rate
}

// IsZero reports whether no option is set.
func (o *ConvertOptions) IsZero() bool {
	if o == nil {
		return true
	}
	return o.Quality == nil && o.Optimize == nil && o.Lossy == nil &&
		o.Start == nil && o.Duration == nil && o.Width == nil && o.FPS == nil
}

// canonical returns the deterministic serialization of the set fields:
// "name:value" pairs sorted by name and joined with fieldSep. Numeric
// values render through strconv so equal numbers are byte-equal.
func (o *ConvertOptions) canonical() string {
	if o.IsZero() {
		return ""
	}

	pairs := make(map[string]string, 7)
	if o.Duration != nil {
		pairs["duration"] = strconv.FormatFloat(*o.Duration, 'f', -1, 64)
	}
	if o.FPS != nil {
		pairs["fps"] = strconv.Itoa(*o.FPS)
	}
	if o.Lossy != nil {
		pairs["lossy"] = strconv.Itoa(*o.Lossy)
	}
	if o.Optimize != nil {
		pairs["optimize"] = strconv.FormatBool(*o.Optimize)
	}
	if o.Quality != nil {
		pairs["quality"] = *o.Quality
	}
	if o.Start != nil {
		pairs["start"] = *o.Start
	}
	if o.Width != nil {
		pairs["width"] = strconv.Itoa(*o.Width)
	}

	names := make([]string, 0, len(pairs))
	for name := range pairs {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+pairSep+pairs[name])
	}

	return strings.Join(parts, fieldSep)
}

// ForURL returns the cache key for a plain download with no conversion
// parameters: a digest of the raw URL string.
func ForURL(url string) string {
	return hashing.SumString(url)
}

// ForConversion returns the cache key for url converted with opts. When
// opts has no set fields this degrades to ForURL, so simple downloads
// keep their historical keys.
func ForConversion(url string, opts *ConvertOptions) string {
	canon := opts.canonical()
	if canon == "" {
		return ForURL(url)
	}
	return hashing.SumString(url + urlSep + canon)
}
