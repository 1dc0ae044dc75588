// Package cachekey derives the deterministic cache keys that identify a
// media conversion request.
//
// A key is a hash over the source URL plus a canonical serialization of
// the conversion options that actually affect output bytes. Two requests
// for the same URL with logically-equal options always produce the same
// key, so the broker and the persistent cache can treat the key as the
// identity of the resulting artifact.
package cachekey
