package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"media-broker/internal/logging"
)

// ClearCache handles clearing the conversion cache: every cached row is
// dropped and the artifact directory is emptied.
// POST /api/cache/clear
func (h *Handlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	deleted, err := h.db.Clear(r.Context())
	if err != nil {
		logging.Error("Failed to clear conversion cache: %v", err)
		writeJSONError(w, "failed to clear conversion cache", http.StatusInternalServerError)
		return
	}

	freedBytes, err := clearArtifacts(h.config.ArtifactDir)
	if err != nil {
		logging.Error("Failed to clear artifact directory: %v", err)
		writeJSONError(w, "failed to clear artifacts", http.StatusInternalServerError)
		return
	}

	logging.Info("Conversion cache cleared: %d rows, %d bytes of artifacts freed", deleted, freedBytes)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"success":     true,
		"rowsDeleted": deleted,
		"freedBytes":  freedBytes,
	})
}

// clearArtifacts removes the contents of the artifact directory and
// returns the number of bytes freed.
func clearArtifacts(dir string) (int64, error) {
	if dir == "" {
		return 0, nil
	}

	var freedBytes int64

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			dirSize, _ := treeSize(path)
			if err := os.RemoveAll(path); err != nil {
				logging.Warn("failed to remove directory %s: %v", path, err)
				continue
			}
			freedBytes += dirSize
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logging.Warn("failed to get info for %s: %v", path, err)
			continue
		}
		if err := os.Remove(path); err != nil {
			logging.Warn("failed to remove file %s: %v", path, err)
			continue
		}
		freedBytes += info.Size()
	}

	return freedBytes, nil
}

// treeSize calculates the total size of a directory
func treeSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
