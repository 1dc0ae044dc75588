package database

import "time"

// ArtifactKind discriminates what kind of artifact a cached conversion
// points at.
type ArtifactKind string

const (
	KindVideo ArtifactKind = "video"
	KindGif   ArtifactKind = "gif"
	KindImage ArtifactKind = "image"
)

// Valid reports whether k is one of the known artifact kinds.
func (k ArtifactKind) Valid() bool {
	switch k {
	case KindVideo, KindGif, KindImage:
		return true
	}
	return false
}

// CachedConversion is the durable record of a finished conversion,
// keyed by the request's cache key. At most one row exists per key.
type CachedConversion struct {
	Key         string       `json:"key"`
	ContentHash string       `json:"contentHash"`
	Kind        ArtifactKind `json:"kind"`
	Extension   string       `json:"extension,omitempty"`
	Location    string       `json:"location"`
	CreatedAt   time.Time    `json:"createdAt"`
	Requester   string       `json:"requester,omitempty"`
}
