package steps

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gubarz/walkmd/internal/marker"
	"github.com/gubarz/walkmd/internal/walkthrough"
)

// Step is a keyed walkthrough step joined with its source location
type Step struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Markdown        string `json:"markdown"`
	HTML            string `json:"html,omitempty"`
	Skip            bool   `json:"skip"`
	File            string `json:"file"`
	StartLineNumber int    `json:"startLineNumber"`
	EndLineNumber   int    `json:"endLineNumber"`
	Index           int    `json:"-"`
}

// SourceRegions are the regions located in one scanned file
type SourceRegions struct {
	File    string
	Regions []marker.Region
	Lines   []string
}

// Join pairs every keyed annotation with the first region carrying the
// same id, searching sources in order. Annotations without a region and
// regions without an annotation are left out. The result is ordered by
// the annotation's position in the document.
func Join(annotations []walkthrough.KeyedStep, sources []SourceRegions) []Step {
	type location struct {
		file   string
		region marker.Region
	}
	first := make(map[string]location)
	for _, src := range sources {
		for _, r := range src.Regions {
			if _, seen := first[r.ID]; !seen {
				first[r.ID] = location{file: src.File, region: r}
			}
		}
	}

	steps := make([]Step, 0, len(annotations))
	for _, a := range annotations {
		if a.ID == "" {
			continue
		}
		loc, ok := first[a.ID]
		if !ok {
			continue
		}
		steps = append(steps, Step{
			ID:              a.ID,
			Title:           a.Title,
			Markdown:        a.Markdown,
			Skip:            a.Skip,
			File:            loc.file,
			StartLineNumber: loc.region.Start,
			EndLineNumber:   loc.region.End,
			Index:           a.Index,
		})
	}

	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Index < steps[j].Index
	})
	return steps
}

// Orphans lists annotation ids without a region and region ids without
// an annotation. Join drops both silently; this is for reporting.
type Orphans struct {
	Annotations []string
	Regions     []string
}

// FindOrphans compares annotations against the scanned sources
func FindOrphans(annotations []walkthrough.KeyedStep, sources []SourceRegions) Orphans {
	annotated := make(map[string]bool, len(annotations))
	for _, a := range annotations {
		if a.ID != "" {
			annotated[a.ID] = true
		}
	}
	located := make(map[string]bool)

	var o Orphans
	for _, src := range sources {
		for _, r := range src.Regions {
			if located[r.ID] {
				continue
			}
			located[r.ID] = true
			if !annotated[r.ID] {
				o.Regions = append(o.Regions, src.File+":"+r.ID)
			}
		}
	}
	for _, a := range annotations {
		if a.ID != "" && !located[a.ID] {
			o.Annotations = append(o.Annotations, a.ID)
		}
	}
	return o
}

// Empty reports whether nothing is orphaned
func (o Orphans) Empty() bool {
	return len(o.Annotations) == 0 && len(o.Regions) == 0
}

// Module renders steps as a CommonJS module
func Module(steps []Step) (string, error) {
	if steps == nil {
		steps = []Step{}
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return "", fmt.Errorf("encoding steps: %w", err)
	}
	return "module.exports = " + string(data) + ";\n", nil
}
