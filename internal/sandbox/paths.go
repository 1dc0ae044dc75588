package sandbox

import (
	"fmt"
	"path"
	"runtime"
	"strings"
)

// PathTranslator maps a host-absolute path into the container's mount
// namespace. One implementation exists per host path convention.
type PathTranslator interface {
	Translate(hostPath string) (string, error)
}

// NewPathTranslator returns the translator matching the host OS.
// hostRoot is the working directory shared with the container;
// mountPoint is where the container sees it.
func NewPathTranslator(hostRoot, mountPoint string) PathTranslator {
	if runtime.GOOS == "windows" {
		return NewWindowsTranslator(hostRoot, mountPoint)
	}
	return NewPosixTranslator(hostRoot, mountPoint)
}

// posixTranslator handles hosts whose paths already use forward
// slashes and no drive prefixes.
type posixTranslator struct {
	hostRoot   string
	mountPoint string
}

// NewPosixTranslator creates a translator for POSIX-style host paths.
func NewPosixTranslator(hostRoot, mountPoint string) PathTranslator {
	return &posixTranslator{
		hostRoot:   strings.TrimRight(hostRoot, "/"),
		mountPoint: strings.TrimRight(mountPoint, "/"),
	}
}

func (t *posixTranslator) Translate(hostPath string) (string, error) {
	rel, ok := cutRoot(hostPath, t.hostRoot)
	if !ok {
		return "", &ValidationError{
			Field:  "path",
			Reason: fmt.Sprintf("%s is outside the shared working directory", hostPath),
		}
	}
	return path.Join(t.mountPoint, rel), nil
}

// windowsTranslator handles hosts with backslash separators and drive
// prefixes. Separators are normalized before matching; if the working
// directory carries a drive prefix, matching is retried with the drive
// stripped from the candidate path.
type windowsTranslator struct {
	hostRoot   string
	mountPoint string
}

// NewWindowsTranslator creates a translator for Windows-style host paths.
func NewWindowsTranslator(hostRoot, mountPoint string) PathTranslator {
	return &windowsTranslator{
		hostRoot:   strings.TrimRight(normalizeSeparators(hostRoot), "/"),
		mountPoint: strings.TrimRight(mountPoint, "/"),
	}
}

func (t *windowsTranslator) Translate(hostPath string) (string, error) {
	norm := normalizeSeparators(hostPath)

	if rel, ok := cutRoot(norm, t.hostRoot); ok {
		return path.Join(t.mountPoint, rel), nil
	}

	// The root may carry a drive prefix while the candidate path does
	// not (or vice versa); retry with both stripped.
	if rel, ok := cutRoot(stripDrive(norm), stripDrive(t.hostRoot)); ok {
		return path.Join(t.mountPoint, rel), nil
	}

	return "", &ValidationError{
		Field:  "path",
		Reason: fmt.Sprintf("%s is outside the shared working directory", hostPath),
	}
}

func normalizeSeparators(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// stripDrive removes a leading "X:" drive prefix, if present.
func stripDrive(p string) string {
	if len(p) >= 2 && p[1] == ':' {
		return p[2:]
	}
	return p
}

// cutRoot returns p relative to root when p lies under root.
func cutRoot(p, root string) (string, bool) {
	if p == root {
		return "", true
	}
	if strings.HasPrefix(p, root+"/") {
		return p[len(root)+1:], true
	}
	return "", false
}

// forbiddenChars are the shell metacharacters rejected in any path that
// reaches the argument vector. The vector itself never passes through a
// shell; this screen is a second, independent layer.
const forbiddenChars = ";&|`$(){}[]*?~<>\\\n\r\t\x00"

// screenPath rejects translated paths containing shell metacharacters,
// naming the offending character and the path it came from.
func screenPath(field, translated string) error {
	if idx := strings.IndexAny(translated, forbiddenChars); idx != -1 {
		return &ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("path %s contains forbidden character %q", translated, translated[idx]),
		}
	}
	return nil
}
