// Package marker finds START/END region markers in source files and strips them.
package marker

import (
	"regexp"
	"sort"
	"strings"
)

// Region is a located marker span in one source file.
// Start and End are 1-based, inclusive, and count lines of the file after
// every marker line has been removed. Zero means the marker was not seen.
type Region struct {
	ID    string `json:"id"`
	Start int    `json:"start,omitempty"`
	End   int    `json:"end,omitempty"`
}

// Complete reports whether both markers of the region were found
func (r Region) Complete() bool {
	return r.Start > 0 && r.End > 0
}

// Patterns configures marker recognition
type Patterns struct {
	Start      *regexp.Regexp
	End        *regexp.Regexp
	Identifier *regexp.Regexp
}

var (
	defaultStart      = regexp.MustCompile(`START\s*[a-z0-9_-]+`)
	defaultEnd        = regexp.MustCompile(`END\s*[a-z0-9_-]+`)
	defaultIdentifier = regexp.MustCompile(`(?:START|END)\s*([a-z0-9_-]+)`)
)

// DefaultPatterns returns the built-in marker patterns
func DefaultPatterns() Patterns {
	return Patterns{Start: defaultStart, End: defaultEnd, Identifier: defaultIdentifier}
}

func (p Patterns) withDefaults() Patterns {
	if p.Start == nil {
		p.Start = defaultStart
	}
	if p.End == nil {
		p.End = defaultEnd
	}
	if p.Identifier == nil {
		p.Identifier = defaultIdentifier
	}
	return p
}

type markerKind int

const (
	startMarker markerKind = iota + 1
	endMarker
)

// markerLine is a source line recognised as a marker
type markerLine struct {
	kind markerKind
	id   string // empty when the identifier could not be extracted
}

// Locate returns the regions marked in source, sorted by id
func Locate(source string, p Patterns) []Region {
	lines := splitLines(source)
	regions, _ := locate(lines, p.withDefaults())
	return regions
}

// locate scans lines once. It returns the regions and the marker flag of
// every line, which the rewriter uses to drop them.
func locate(lines []string, p Patterns) ([]Region, []bool) {
	isMarker := make([]bool, len(lines))
	byID := make(map[string]*Region)
	var order []string

	// removed counts marker lines above the current line
	removed := 0
	for i, line := range lines {
		m, ok := classify(line, p)
		if !ok {
			continue
		}
		isMarker[i] = true
		// Post-strip index of the line that follows this marker, 0-based
		content := i - removed
		removed++

		if m.id == "" {
			continue
		}
		r, seen := byID[m.id]
		if !seen {
			r = &Region{ID: m.id}
			byID[m.id] = r
			order = append(order, m.id)
		}
		switch m.kind {
		case startMarker:
			r.Start = content + 1
		case endMarker:
			r.End = content
		}
	}

	regions := make([]Region, 0, len(order))
	for _, id := range order {
		r := byID[id]
		if r.Start > 0 && r.End > 0 && r.Start > r.End {
			continue
		}
		if r.Start == 0 && r.End == 0 {
			// lone END above any content
			continue
		}
		regions = append(regions, *r)
	}
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].ID < regions[j].ID
	})
	return regions, isMarker
}

// classify tests the start pattern, then the end pattern
func classify(line string, p Patterns) (markerLine, bool) {
	if match := p.Start.FindString(line); match != "" {
		return markerLine{kind: startMarker, id: extractID(match, p.Identifier)}, true
	}
	if match := p.End.FindString(line); match != "" {
		return markerLine{kind: endMarker, id: extractID(match, p.Identifier)}, true
	}
	return markerLine{}, false
}

// extractID applies the identifier pattern to the matched marker text.
// The first capture group wins when the pattern has one.
func extractID(match string, identifier *regexp.Regexp) string {
	sub := identifier.FindStringSubmatch(match)
	if sub == nil {
		return ""
	}
	if len(sub) > 1 {
		return sub[1]
	}
	return sub[0]
}

func splitLines(source string) []string {
	return strings.Split(source, "\n")
}
