package hashing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSumString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty string",
			input: "",
			want:  "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:  "simple URL",
			input: "https://example.com/video.mp4",
			want:  "da09b2ab4d33db12c2f8ecb9449572e139891ed2b22091aecc863bc85e2dc936",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SumString(tt.input)
			if len(got) != DigestLength {
				t.Errorf("digest length = %d, want %d", len(got), DigestLength)
			}
			if tt.want != "" && got != tt.want {
				t.Errorf("SumString(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestSumStringDeterministic(t *testing.T) {
	a := SumString("https://example.com/a.mp4")
	b := SumString("https://example.com/a.mp4")
	if a != b {
		t.Errorf("same input produced different digests: %s vs %s", a, b)
	}

	c := SumString("https://example.com/b.mp4")
	if a == c {
		t.Error("different inputs produced the same digest")
	}
}

func TestSumBytesMatchesSumString(t *testing.T) {
	s := "some content"
	if SumBytes([]byte(s)) != SumString(s) {
		t.Error("SumBytes and SumString disagree for identical content")
	}
}

func TestSumFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.gif")
	content := []byte("GIF89a fake artifact data")

	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	got, err := SumFile(path)
	if err != nil {
		t.Fatalf("SumFile failed: %v", err)
	}

	if want := SumBytes(content); got != want {
		t.Errorf("SumFile = %s, want %s", got, want)
	}
}

func TestSumFileMissing(t *testing.T) {
	_, err := SumFile(filepath.Join(t.TempDir(), "does-not-exist.gif"))
	if err == nil {
		t.Error("expected an error for a missing file")
	}
}
