// Package steps merges located marker regions into walkthrough steps.
package steps

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gubarz/walkmd/internal/emit"
	"github.com/gubarz/walkmd/internal/marker"
	"github.com/gubarz/walkmd/internal/walkthrough"
)

// Sync merges the regions of one source file into positional steps.
//
// A region id n updates step n, padding the list with empty steps when
// the document has fewer than n. Region ids that are not positive
// integers are dropped. Syncing the same regions twice is a no-op.
func Sync(steps []walkthrough.SequentialStep, file string, regions []marker.Region) []walkthrough.SequentialStep {
	out := make([]walkthrough.SequentialStep, len(steps))
	copy(out, steps)

	for _, r := range regions {
		id, err := strconv.Atoi(strings.TrimSpace(r.ID))
		if err != nil || id < 1 {
			continue
		}
		for len(out) < id {
			out = append(out, walkthrough.SequentialStep{ID: len(out) + 1})
		}

		step := out[id-1]
		step.ID = id
		step.File = file
		step.StartLineNumber = r.Start
		step.EndLineNumber = r.End
		out[id-1] = step
	}
	return out
}

// Book owns one sequential walkthrough file on disk.
// Apply runs read, merge and write under one lock, and the file is
// replaced atomically, so concurrent Apply calls never lose updates.
type Book struct {
	path string
	mu   sync.Mutex
}

// NewBook returns a Book for the walkthrough at path
func NewBook(path string) *Book {
	return &Book{path: path}
}

// Path returns the walkthrough file path
func (b *Book) Path() string {
	return b.path
}

// Load reads and parses the walkthrough. A missing file has no steps.
func (b *Book) Load() ([]walkthrough.SequentialStep, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load()
}

func (b *Book) load() ([]walkthrough.SequentialStep, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading walkthrough: %w", err)
	}
	return walkthrough.DeserializeSequential(string(data)), nil
}

// Apply merges the regions of file into the walkthrough and writes it
// back. The basename of file is recorded on each updated step.
func (b *Book) Apply(file string, regions []marker.Region) ([]walkthrough.SequentialStep, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, err := b.load()
	if err != nil {
		return nil, err
	}

	merged := Sync(current, filepath.Base(file), regions)
	if err := emit.WriteFile(b.path, []byte(walkthrough.SerializeSequential(merged))); err != nil {
		return nil, fmt.Errorf("writing walkthrough: %w", err)
	}
	return merged, nil
}
