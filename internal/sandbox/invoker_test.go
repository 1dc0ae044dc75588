package sandbox

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newTestInvoker returns an invoker rooted in a temp dir whose spawned
// commands are counted and replaced by a no-op that exits 0.
func newTestInvoker(t *testing.T, spawns *atomic.Int32) (*Invoker, string) {
	t.Helper()

	workDir := t.TempDir()
	tr := NewPosixTranslator(workDir, "/data")
	inv := NewInvoker("media-sandbox", tr, time.Minute)

	inv.execCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if spawns != nil {
			spawns.Add(1)
		}
		// "true" stands in for docker so cmd.Run succeeds.
		return exec.CommandContext(ctx, "true")
	}

	return inv, workDir
}

func writeInput(t *testing.T, workDir string) string {
	t.Helper()
	in := filepath.Join(workDir, "in", "clip.gif")
	if err := os.MkdirAll(filepath.Dir(in), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(in, []byte("GIF89a"), 0o644); err != nil {
		t.Fatal(err)
	}
	return in
}

func TestOptimizeValidatesRangesBeforeSpawn(t *testing.T) {
	var spawns atomic.Int32
	inv, workDir := newTestInvoker(t, &spawns)
	in := writeInput(t, workDir)
	out := filepath.Join(workDir, "out", "clip.gif")

	tests := []struct {
		name  string
		job   TranscodeJob
		field string
	}{
		{
			name:  "negative intensity",
			job:   TranscodeJob{InputPath: in, OutputPath: out, CompressionIntensity: -1, OptimizationLevel: 2},
			field: "compressionIntensity",
		},
		{
			name:  "intensity above 100",
			job:   TranscodeJob{InputPath: in, OutputPath: out, CompressionIntensity: 101, OptimizationLevel: 2},
			field: "compressionIntensity",
		},
		{
			name:  "level zero",
			job:   TranscodeJob{InputPath: in, OutputPath: out, CompressionIntensity: 50, OptimizationLevel: 0},
			field: "optimizationLevel",
		},
		{
			name:  "level four",
			job:   TranscodeJob{InputPath: in, OutputPath: out, CompressionIntensity: 50, OptimizationLevel: 4},
			field: "optimizationLevel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := inv.Optimize(context.Background(), tt.job)

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected a ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}

	if got := spawns.Load(); got != 0 {
		t.Errorf("%d processes spawned for invalid jobs, want 0", got)
	}
}

func TestOptimizeRejectsMissingInputBeforeSpawn(t *testing.T) {
	var spawns atomic.Int32
	inv, workDir := newTestInvoker(t, &spawns)

	job := TranscodeJob{
		InputPath:            filepath.Join(workDir, "in", "missing.gif"),
		OutputPath:           filepath.Join(workDir, "out", "clip.gif"),
		CompressionIntensity: 50,
		OptimizationLevel:    2,
	}

	err := inv.Optimize(context.Background(), job)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected a ValidationError, got %v", err)
	}
	if ve.Field != "inputPath" {
		t.Errorf("field = %q, want inputPath", ve.Field)
	}
	if !strings.Contains(ve.Reason, "missing.gif") {
		t.Errorf("reason %q does not name the missing path", ve.Reason)
	}
	if spawns.Load() != 0 {
		t.Error("a process was spawned despite the missing input")
	}
}

func TestOptimizeRejectsMetacharacterPathBeforeSpawn(t *testing.T) {
	var spawns atomic.Int32
	inv, workDir := newTestInvoker(t, &spawns)
	writeInput(t, workDir)

	// Backtick in the output file name survives translation and must
	// be caught by the screen.
	in := filepath.Join(workDir, "in", "clip.gif")
	out := filepath.Join(workDir, "out", "evil`whoami`.gif")

	err := inv.Optimize(context.Background(), TranscodeJob{
		InputPath:            in,
		OutputPath:           out,
		CompressionIntensity: 50,
		OptimizationLevel:    2,
	})

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected a ValidationError, got %v", err)
	}
	if !strings.Contains(ve.Reason, "'`'") {
		t.Errorf("reason %q does not name the backtick", ve.Reason)
	}
	if spawns.Load() != 0 {
		t.Error("a process was spawned despite the forbidden character")
	}
}

func TestOptimizeVerifiesOutputExists(t *testing.T) {
	inv, workDir := newTestInvoker(t, nil)
	in := writeInput(t, workDir)
	out := filepath.Join(workDir, "out", "clip.gif")

	// The stand-in command exits 0 but writes nothing.
	err := inv.Optimize(context.Background(), TranscodeJob{
		InputPath:            in,
		OutputPath:           out,
		CompressionIntensity: 50,
		OptimizationLevel:    2,
	})

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected a ValidationError for missing output, got %v", err)
	}
	if ve.Field != "outputPath" {
		t.Errorf("field = %q, want outputPath", ve.Field)
	}
}

func TestOptimizeSucceedsWhenOutputAppears(t *testing.T) {
	inv, workDir := newTestInvoker(t, nil)
	in := writeInput(t, workDir)
	out := filepath.Join(workDir, "out", "clip.gif")

	inv.execCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(out, []byte("GIF89a optimized"), 0o644); err != nil {
			t.Fatal(err)
		}
		return exec.CommandContext(ctx, "true")
	}

	if err := inv.Optimize(context.Background(), TranscodeJob{
		InputPath:            in,
		OutputPath:           out,
		CompressionIntensity: 80,
		OptimizationLevel:    3,
	}); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
}

func TestOptimizeClassifiesToolNotInstalled(t *testing.T) {
	inv, workDir := newTestInvoker(t, nil)
	in := writeInput(t, workDir)

	inv.execCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "definitely-not-a-real-binary-xyz")
	}

	err := inv.Optimize(context.Background(), TranscodeJob{
		InputPath:            in,
		OutputPath:           filepath.Join(workDir, "out", "clip.gif"),
		CompressionIntensity: 50,
		OptimizationLevel:    2,
	})

	if !errors.Is(err, ErrToolNotInstalled) {
		t.Errorf("got %v, want ErrToolNotInstalled", err)
	}
}

func TestOptimizeClassifiesTimeout(t *testing.T) {
	workDir := t.TempDir()
	tr := NewPosixTranslator(workDir, "/data")
	inv := NewInvoker("media-sandbox", tr, 50*time.Millisecond)

	inv.execCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sleep", "5")
	}

	in := writeInput(t, workDir)
	err := inv.Optimize(context.Background(), TranscodeJob{
		InputPath:            in,
		OutputPath:           filepath.Join(workDir, "out", "clip.gif"),
		CompressionIntensity: 50,
		OptimizationLevel:    2,
	})

	if !errors.Is(err, ErrTimedOut) {
		t.Errorf("got %v, want ErrTimedOut", err)
	}
}

func TestOptimizeClassifiesGenericFailure(t *testing.T) {
	inv, workDir := newTestInvoker(t, nil)
	in := writeInput(t, workDir)

	inv.execCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "false")
	}

	err := inv.Optimize(context.Background(), TranscodeJob{
		InputPath:            in,
		OutputPath:           filepath.Join(workDir, "out", "clip.gif"),
		CompressionIntensity: 50,
		OptimizationLevel:    2,
	})

	if !errors.Is(err, ErrOptimizeFailed) {
		t.Errorf("got %v, want ErrOptimizeFailed", err)
	}
	// The sanitized error must not leak host path layout.
	if strings.Contains(err.Error(), workDir) {
		t.Errorf("error %q leaks the host path", err)
	}
}

func TestLimitedWriter(t *testing.T) {
	var buf strings.Builder
	lw := &limitedWriter{w: &buf, remaining: 5}

	n, err := lw.Write([]byte("hello world"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 11 {
		t.Errorf("n = %d, want the full 11 (drop silently)", n)
	}
	if buf.String() != "hello" {
		t.Errorf("captured %q, want %q", buf.String(), "hello")
	}

	// Further writes are dropped entirely.
	if _, err := lw.Write([]byte("more")); err != nil {
		t.Fatalf("Write after limit failed: %v", err)
	}
	if buf.String() != "hello" {
		t.Errorf("captured %q after limit, want %q", buf.String(), "hello")
	}
}
