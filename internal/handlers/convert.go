package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"media-broker/internal/broker"
	"media-broker/internal/cachekey"
	"media-broker/internal/database"
	"media-broker/internal/logging"
	"media-broker/internal/sandbox"
)

// ConvertRequest is the body of POST /api/convert. The option fields are
// pointers so an absent field stays out of the cache key entirely.
type ConvertRequest struct {
	URL       string `json:"url"`
	Requester string `json:"requester,omitempty"`
	SkipCache bool   `json:"skipCache,omitempty"`

	Quality  *string  `json:"quality,omitempty"`
	Optimize *bool    `json:"optimize,omitempty"`
	Lossy    *int     `json:"lossy,omitempty"`
	Start    *string  `json:"start,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
	Width    *int     `json:"width,omitempty"`
	FPS      *int     `json:"fps,omitempty"`
}

// options collects the set fields, or nil when the request carries none.
func (r *ConvertRequest) options() *cachekey.ConvertOptions {
	opts := &cachekey.ConvertOptions{
		Quality:  r.Quality,
		Optimize: r.Optimize,
		Lossy:    r.Lossy,
		Start:    r.Start,
		Duration: r.Duration,
		Width:    r.Width,
		FPS:      r.FPS,
	}
	if opts.IsZero() {
		return nil
	}
	return opts
}

// ConvertResponse describes the resolved artifact.
type ConvertResponse struct {
	Key         string                `json:"key"`
	Cached      bool                  `json:"cached"`
	ContentHash string                `json:"contentHash"`
	Kind        database.ArtifactKind `json:"kind"`
	Extension   string                `json:"extension,omitempty"`
	Location    string                `json:"location"`
}

// Convert resolves a GIF conversion for a source URL through the broker:
// a cached artifact is returned immediately, otherwise a producer run is
// joined or started.
// POST /api/convert
func (h *Handlers) Convert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		writeJSONError(w, "url is required", http.StatusBadRequest)
		return
	}

	opts := req.options()
	resolution, err := h.broker.Resolve(r.Context(), req.URL, h.conv.GifProducer(req.URL, opts), broker.ResolveOptions{
		Convert:      opts,
		SkipCache:    req.SkipCache,
		ExpectedKind: database.KindGif,
		Requester:    req.Requester,
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case sandbox.IsValidation(err):
			status = http.StatusBadRequest
		case errors.Is(err, sandbox.ErrToolNotInstalled):
			status = http.StatusBadGateway
		case errors.Is(err, sandbox.ErrTimedOut):
			status = http.StatusGatewayTimeout
		}
		logging.Error("Conversion of %s failed: %v", req.URL, err)
		writeJSONError(w, err.Error(), status)
		return
	}

	resp := ConvertResponse{
		Key:    resolution.Key,
		Cached: resolution.Source == broker.SourceCache,
	}
	if resolution.Cached != nil {
		resp.ContentHash = resolution.Cached.ContentHash
		resp.Kind = resolution.Cached.Kind
		resp.Extension = resolution.Cached.Extension
		resp.Location = resolution.Cached.Location
	} else {
		resp.ContentHash = resolution.Result.ContentHash
		resp.Kind = resolution.Result.Kind
		resp.Extension = resolution.Result.Extension
		resp.Location = resolution.Result.Location
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, resp)
}
