package converter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"media-broker/internal/broker"
	"media-broker/internal/cachekey"
	"media-broker/internal/database"
	"media-broker/internal/hashing"
	"media-broker/internal/logging"
	"media-broker/internal/sandbox"
)

const (
	// downloadTimeout bounds the fetch of the source media.
	downloadTimeout = 2 * time.Minute

	// maxDownloadBytes caps a single source download. The optimizer
	// works on short clips; anything larger is a misdirected request.
	maxDownloadBytes = 512 * 1024 * 1024
)

// Optimizer is the slice of the sandbox the converter needs.
type Optimizer interface {
	Optimize(ctx context.Context, job sandbox.TranscodeJob) error
}

// Defaults applied when a request leaves the quality knobs unset.
const (
	DefaultLossy    = 80
	DefaultOptimize = 3
)

// Converter assembles broker producers for GIF conversions.
type Converter struct {
	optimizer   Optimizer
	downloadDir string
	artifactDir string
	client      *http.Client
}

// New creates a Converter that stages downloads in downloadDir and
// writes finished artifacts to artifactDir. Both must live under the
// working directory shared with the sandbox container.
func New(optimizer Optimizer, downloadDir, artifactDir string) *Converter {
	return &Converter{
		optimizer:   optimizer,
		downloadDir: downloadDir,
		artifactDir: artifactDir,
		client:      &http.Client{Timeout: downloadTimeout},
	}
}

// GifProducer returns a producer that fetches url, optimizes it into a
// GIF artifact and reports the artifact's content hash and location.
// opts supplies the quality knobs; unset knobs use the defaults.
func (c *Converter) GifProducer(url string, opts *cachekey.ConvertOptions) broker.Producer {
	return func(ctx context.Context) (*broker.Result, error) {
		key := cachekey.ForConversion(url, opts)

		input, err := c.download(ctx, url, key)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := os.Remove(input); err != nil {
				logging.Warn("failed to remove staged download %s: %v", input, err)
			}
		}()

		output := filepath.Join(c.artifactDir, key+".gif")

		job := sandbox.TranscodeJob{
			InputPath:            input,
			OutputPath:           output,
			CompressionIntensity: DefaultLossy,
			OptimizationLevel:    DefaultOptimize,
		}
		if opts != nil && opts.Lossy != nil {
			job.CompressionIntensity = *opts.Lossy
		}
		if opts != nil && opts.Optimize != nil && !*opts.Optimize {
			job.OptimizationLevel = 1
		}

		if err := c.optimizer.Optimize(ctx, job); err != nil {
			return nil, err
		}

		contentHash, err := hashing.SumFile(output)
		if err != nil {
			return nil, fmt.Errorf("failed to hash artifact: %w", err)
		}

		return &broker.Result{
			ContentHash: contentHash,
			Kind:        database.KindGif,
			Extension:   "gif",
			Location:    output,
		}, nil
	}
}

// download fetches url into the staging directory, named by key so
// concurrent distinct requests never collide.
func (c *Converter) download(ctx context.Context, url, key string) (string, error) {
	if err := os.MkdirAll(c.downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("invalid source URL: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch source media: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("source returned status %d", resp.StatusCode)
	}

	path := filepath.Join(c.downloadDir, key+".src")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to stage download: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(resp.Body, maxDownloadBytes+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write download: %w", err)
	}
	if written > maxDownloadBytes {
		_ = os.Remove(path)
		return "", fmt.Errorf("source media exceeds the %d byte limit", maxDownloadBytes)
	}

	logging.Debug("Staged %d bytes from %s", written, url)
	return path, nil
}
