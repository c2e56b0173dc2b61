package emit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ============================================================================
// Output Mode
// ============================================================================

// OutputMode represents where generated text goes
type OutputMode string

const (
	OutputPrint OutputMode = "print"
	OutputFile  OutputMode = "file"
)

// Emitter writes generated modules and rewritten sources
type Emitter struct {
	stdout io.Writer
}

// NewEmitter creates an emitter printing to stdout
func NewEmitter(stdout io.Writer) *Emitter {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Emitter{stdout: stdout}
}

// ModeFor returns OutputFile when a path is given and OutputPrint otherwise
func ModeFor(path string) OutputMode {
	if path == "" {
		return OutputPrint
	}
	return OutputFile
}

// Output writes text to path, or to stdout when path is empty
func (e *Emitter) Output(path, text string) error {
	return e.OutputWithMode(ModeFor(path), path, text)
}

// OutputWithMode writes text with an explicit mode
func (e *Emitter) OutputWithMode(mode OutputMode, path, text string) error {
	switch mode {
	case OutputFile:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		return WriteFile(path, []byte(text))
	default: // print
		_, err := io.WriteString(e.stdout, text)
		return err
	}
}

// ============================================================================
// Atomic Write
// ============================================================================

// WriteFile replaces path with data through a temporary file in the same
// directory, so readers never observe a partial file.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	perm := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		perm = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
