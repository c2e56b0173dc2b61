package emit

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestOutputPrint(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)

	if err := e.Output("", "hello\n"); err != nil {
		t.Fatalf("Output: %v", err)
	}
	if buf.String() != "hello\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestOutputFileCreatesDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "gen", "steps.js")

	var buf bytes.Buffer
	if err := NewEmitter(&buf).Output(path, "module.exports = [];\n"); err != nil {
		t.Fatalf("Output: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("file mode should not print, got %q", buf.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "module.exports = [];\n" {
		t.Errorf("got %q", data)
	}
}

func TestWriteFileReplacesAndKeepsMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "walkthrough.md")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := WriteFile(path, []byte("new")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Errorf("got %q", data)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", fi.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestModeFor(t *testing.T) {
	if ModeFor("") != OutputPrint {
		t.Error("empty path should print")
	}
	if ModeFor("out.js") != OutputFile {
		t.Error("path should write a file")
	}
}
