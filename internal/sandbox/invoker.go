package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"media-broker/internal/logging"
	"media-broker/internal/metrics"
)

const (
	// DefaultTimeout is the hard wall-clock budget for one optimizer run.
	DefaultTimeout = 5 * time.Minute

	// maxCapturedOutput bounds how much optimizer stdout/stderr is kept
	// for diagnostics. A runaway optimizer can emit gigabytes.
	maxCapturedOutput = 64 * 1024

	minIntensity = 0
	maxIntensity = 100
	minLevel     = 1
	maxLevel     = 3
)

// TranscodeJob describes one optimization run: where the input lives on
// the host, where the output must appear, and the quality knobs.
type TranscodeJob struct {
	InputPath  string
	OutputPath string

	// CompressionIntensity is the lossy compression level, 0-100.
	CompressionIntensity int
	// OptimizationLevel selects the optimizer effort, 1-3.
	OptimizationLevel int
}

// Invoker runs the optimizer inside the transcoding container via the
// container runtime on the host.
type Invoker struct {
	containerName string
	translator    PathTranslator
	timeout       time.Duration

	// execCommand is swappable for tests.
	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewInvoker creates an Invoker targeting the named running container,
// translating host paths with translator.
func NewInvoker(containerName string, translator PathTranslator, timeout time.Duration) *Invoker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Invoker{
		containerName: containerName,
		translator:    translator,
		timeout:       timeout,
		execCommand:   exec.CommandContext,
	}
}

// Optimize validates job, invokes the containerized optimizer and
// verifies the output. Validation failures return a *ValidationError
// before any process is spawned; external failures come back as one of
// the sanitized sentinel errors with diagnostics logged.
func (i *Invoker) Optimize(ctx context.Context, job TranscodeJob) error {
	err := i.optimize(ctx, job)
	if err != nil && IsValidation(err) {
		metrics.TranscodesTotal.WithLabelValues("validation_error").Inc()
	}
	return err
}

func (i *Invoker) optimize(ctx context.Context, job TranscodeJob) error {
	if job.CompressionIntensity < minIntensity || job.CompressionIntensity > maxIntensity {
		return &ValidationError{
			Field:  "compressionIntensity",
			Reason: fmt.Sprintf("%d is outside the allowed range %d-%d", job.CompressionIntensity, minIntensity, maxIntensity),
		}
	}
	if job.OptimizationLevel < minLevel || job.OptimizationLevel > maxLevel {
		return &ValidationError{
			Field:  "optimizationLevel",
			Reason: fmt.Sprintf("%d is outside the allowed range %d-%d", job.OptimizationLevel, minLevel, maxLevel),
		}
	}

	if _, err := os.Stat(job.InputPath); err != nil {
		return &ValidationError{
			Field:  "inputPath",
			Reason: fmt.Sprintf("input file %s does not exist", job.InputPath),
		}
	}

	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	input, err := i.translator.Translate(job.InputPath)
	if err != nil {
		return err
	}
	output, err := i.translator.Translate(job.OutputPath)
	if err != nil {
		return err
	}

	if err := screenPath("inputPath", input); err != nil {
		return err
	}
	if err := screenPath("outputPath", output); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	args := []string{
		"exec", i.containerName,
		"gifsicle",
		"-O" + strconv.Itoa(job.OptimizationLevel),
		"--lossy=" + strconv.Itoa(job.CompressionIntensity),
		"-o", output,
		input,
	}

	var captured bytes.Buffer
	cmd := i.execCommand(runCtx, "docker", args...)
	cmd.Stdout = &limitedWriter{w: &captured, remaining: maxCapturedOutput}
	cmd.Stderr = &limitedWriter{w: &captured, remaining: maxCapturedOutput}

	logging.Debug("Invoking optimizer: container=%s level=%d lossy=%d", i.containerName, job.OptimizationLevel, job.CompressionIntensity)

	start := time.Now()
	runErr := cmd.Run()
	metrics.TranscodeDuration.Observe(time.Since(start).Seconds())

	if runErr != nil {
		return i.classify(runCtx, runErr, &captured, job)
	}

	// Exit code 0 is not proof of output. Some optimizer failures
	// report success without writing the file.
	if _, err := os.Stat(job.OutputPath); err != nil {
		logging.Error("Optimizer reported success but produced no output at %s; captured output: %s",
			job.OutputPath, captured.String())
		return &ValidationError{
			Field:  "outputPath",
			Reason: "optimizer completed without producing output",
		}
	}

	metrics.TranscodesTotal.WithLabelValues("success").Inc()
	logging.Debug("Optimizer finished in %v", time.Since(start))
	return nil
}

// classify maps an abnormal exit onto the sanitized error taxonomy and
// logs the full diagnostics.
func (i *Invoker) classify(runCtx context.Context, runErr error, captured *bytes.Buffer, job TranscodeJob) error {
	switch {
	case errors.Is(runErr, exec.ErrNotFound):
		metrics.TranscodesTotal.WithLabelValues("tool_missing").Inc()
		logging.Error("Container runtime not found on host: %v", runErr)
		return ErrToolNotInstalled

	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		metrics.TranscodesTotal.WithLabelValues("timeout").Inc()
		logging.Error("Optimizer timed out after %v for input %s; captured output: %s",
			i.timeout, job.InputPath, captured.String())
		return ErrTimedOut

	default:
		metrics.TranscodesTotal.WithLabelValues("failed").Inc()
		logging.Error("Optimizer failed for input %s: %v; captured output: %s",
			job.InputPath, runErr, captured.String())
		return ErrOptimizeFailed
	}
}

// limitedWriter keeps the first remaining bytes and silently drops the
// rest, so a chatty process cannot exhaust memory.
type limitedWriter struct {
	w         io.Writer
	remaining int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if l.remaining <= 0 {
		return n, nil
	}
	if n > l.remaining {
		p = p[:l.remaining]
	}
	written, err := l.w.Write(p)
	l.remaining -= written
	if err != nil {
		return written, err
	}
	return n, nil
}
