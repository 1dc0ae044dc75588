// Package database provides SQLite-backed persistence for the media
// broker's conversion cache.
//
// It owns a single table mapping cache keys to finished conversion
// artifacts (content hash, kind, extension, location, creation time and
// requester). Writes use upsert semantics so concurrent writers racing
// on the same key never produce duplicate rows.
//
// The database uses WAL mode for improved concurrent read performance
// and includes automatic schema initialization.
package database
