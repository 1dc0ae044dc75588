// Package hashing provides the content digest primitive used throughout
// the broker.
//
// All digests are SHA-256 rendered as lowercase hex, so every cache key,
// artifact content hash, and file fingerprint in the system has the same
// fixed-length shape.
package hashing
