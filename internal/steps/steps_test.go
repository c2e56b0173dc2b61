package steps

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/gubarz/walkmd/internal/marker"
	"github.com/gubarz/walkmd/internal/walkthrough"
)

func TestSyncPadsPlaceholderSteps(t *testing.T) {
	existing := []walkthrough.SequentialStep{{ID: 1, Title: "First", Markdown: "Body"}}
	got := Sync(existing, "Foo.ts", []marker.Region{{ID: "3", Start: 10, End: 20}})

	want := []walkthrough.SequentialStep{
		{ID: 1, Title: "First", Markdown: "Body"},
		{ID: 2},
		{ID: 3, File: "Foo.ts", StartLineNumber: 10, EndLineNumber: 20},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
	if len(existing) != 1 {
		t.Errorf("input slice was modified: %+v", existing)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	regions := []marker.Region{{ID: "2", Start: 4, End: 6}}
	once := Sync(nil, "Foo.ts", regions)
	twice := Sync(once, "Foo.ts", regions)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second sync changed steps:\nonce  %+v\ntwice %+v", once, twice)
	}
	if len(twice) != 2 {
		t.Errorf("expected 2 steps, got %d", len(twice))
	}
}

func TestSyncUnterminatedFenceIsStable(t *testing.T) {
	doc := "# One\n\nRun:\n\n```bash\necho hi"
	regions := []marker.Region{{ID: "2", Start: 3, End: 4}}

	var sizes []int
	for n := 0; n < 3; n++ {
		doc = walkthrough.SerializeSequential(Sync(walkthrough.DeserializeSequential(doc), "Foo.ts", regions))
		sizes = append(sizes, len(doc))
	}

	got := walkthrough.DeserializeSequential(doc)
	if len(got) != 2 {
		t.Fatalf("expected 2 steps after reload, got %d: %+v", len(got), got)
	}
	if got[1].File != "Foo.ts" || got[1].StartLineNumber != 3 || got[1].EndLineNumber != 4 {
		t.Errorf("second step = %+v", got[1])
	}
	if sizes[0] != sizes[1] || sizes[1] != sizes[2] {
		t.Errorf("document grows across runs: %v", sizes)
	}
}

func TestSyncKeepsAuthoredContent(t *testing.T) {
	existing := []walkthrough.SequentialStep{{ID: 1, Title: "Keep", Markdown: "me", Skip: true, File: "Old.ts"}}
	got := Sync(existing, "New.ts", []marker.Region{{ID: "1", Start: 1, End: 2}})

	want := walkthrough.SequentialStep{ID: 1, Title: "Keep", Markdown: "me", Skip: true, File: "New.ts", StartLineNumber: 1, EndLineNumber: 2}
	if got[0] != want {
		t.Errorf("got %+v, want %+v", got[0], want)
	}
}

func TestSyncDropsNonNumericIDs(t *testing.T) {
	got := Sync(nil, "Foo.ts", []marker.Region{{ID: "intro", Start: 1, End: 2}, {ID: "0", Start: 1, End: 1}})
	if len(got) != 0 {
		t.Errorf("expected no steps, got %+v", got)
	}
}

func TestBookApplyMissingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	book := NewBook(filepath.Join(dir, "walkthrough.md"))

	steps, err := book.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(steps) != 0 {
		t.Fatalf("missing file should have no steps, got %+v", steps)
	}

	merged, err := book.Apply(filepath.Join("src", "Foo.ts"), []marker.Region{{ID: "1", Start: 2, End: 3}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(merged) != 1 || merged[0].File != "Foo.ts" {
		t.Fatalf("unexpected merge result: %+v", merged)
	}

	data, err := os.ReadFile(book.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `[_metadata_:file]:- "Foo.ts"`) {
		t.Errorf("walkthrough not written:\n%s", data)
	}
}

func TestBookApplyAcrossFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "walkthrough.md")
	doc := "# Intro\n\nWelcome.\n\n# Second\n\nMore.\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	book := NewBook(path)
	if _, err := book.Apply("A.ts", []marker.Region{{ID: "1", Start: 1, End: 5}}); err != nil {
		t.Fatalf("Apply A: %v", err)
	}
	if _, err := book.Apply("B.ts", []marker.Region{{ID: "2", Start: 7, End: 9}}); err != nil {
		t.Fatalf("Apply B: %v", err)
	}

	steps, err := book.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []walkthrough.SequentialStep{
		{ID: 1, Title: "Intro", Markdown: "Welcome.", File: "A.ts", StartLineNumber: 1, EndLineNumber: 5},
		{ID: 2, Title: "Second", Markdown: "More.", File: "B.ts", StartLineNumber: 7, EndLineNumber: 9},
	}
	if !reflect.DeepEqual(steps, want) {
		t.Errorf("got %+v\nwant %+v", steps, want)
	}
}

func TestBookApplyConcurrent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	book := NewBook(filepath.Join(dir, "walkthrough.md"))

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			file := "F" + string(rune('0'+id)) + ".ts"
			region := marker.Region{ID: string(rune('0' + id)), Start: id, End: id + 1}
			if _, err := book.Apply(file, []marker.Region{region}); err != nil {
				t.Errorf("Apply %s: %v", file, err)
			}
		}(i)
	}
	wg.Wait()

	steps, err := book.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(steps) != 8 {
		t.Fatalf("expected 8 steps, got %d", len(steps))
	}
	for i, s := range steps {
		if s.StartLineNumber != i+1 {
			t.Errorf("step %d lost its update: %+v", i+1, s)
		}
	}
}

func TestJoin(t *testing.T) {
	annotations := []walkthrough.KeyedStep{
		{ID: "decorate", Title: "Decorate", Markdown: "b", Index: 0},
		{ID: "orphan", Title: "No region", Index: 1},
		{ID: "", Title: "No id", Index: 2},
		{ID: "create", Title: "Create", Markdown: "a", Skip: true, Index: 3},
	}
	sources := []SourceRegions{
		{File: "App.tsx", Regions: []marker.Region{{ID: "create", Start: 1, End: 4}, {ID: "stray", Start: 5, End: 6}}},
		{File: "Decorator.ts", Regions: []marker.Region{{ID: "decorate", Start: 10, End: 12}}},
		{File: "Later.ts", Regions: []marker.Region{{ID: "create", Start: 90, End: 99}}},
	}

	got := Join(annotations, sources)
	want := []Step{
		{ID: "decorate", Title: "Decorate", Markdown: "b", File: "Decorator.ts", StartLineNumber: 10, EndLineNumber: 12, Index: 0},
		{ID: "create", Title: "Create", Markdown: "a", Skip: true, File: "App.tsx", StartLineNumber: 1, EndLineNumber: 4, Index: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}

	orphans := FindOrphans(annotations, sources)
	if !reflect.DeepEqual(orphans.Annotations, []string{"orphan"}) {
		t.Errorf("orphan annotations = %v", orphans.Annotations)
	}
	if !reflect.DeepEqual(orphans.Regions, []string{"App.tsx:stray"}) {
		t.Errorf("orphan regions = %v", orphans.Regions)
	}
}

func TestModule(t *testing.T) {
	out, err := Module(nil)
	if err != nil {
		t.Fatalf("Module: %v", err)
	}
	if out != "module.exports = [];\n" {
		t.Errorf("got %q", out)
	}

	out, err = Module([]Step{{ID: "a", Title: "T", File: "x.ts", StartLineNumber: 1, EndLineNumber: 2}})
	if err != nil {
		t.Fatalf("Module: %v", err)
	}
	want := `module.exports = [{"id":"a","title":"T","markdown":"","skip":false,"file":"x.ts","startLineNumber":1,"endLineNumber":2}];` + "\n"
	if out != want {
		t.Errorf("got  %s\nwant %s", out, want)
	}
}
