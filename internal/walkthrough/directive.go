// Package walkthrough reads and writes walkthrough markdown documents.
//
// Step metadata is stored as reference-style link definitions that markdown
// renderers hide:
//
//	[_metadata_:file]:- "Foo.ts"
//	[_metadata_:start]:- "10"
//
// Two document schemas exist. Sequential documents identify a step by its
// position; keyed documents carry an explicit annotation id.
package walkthrough

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Placeholder text written for steps that have no authored content yet
const (
	TitlePlaceholder    = "Annotation title markdown goes here."
	MarkdownPlaceholder = "Annotation step markdown goes here."
)

// Metadata keys
const (
	KeyFile       = "file"
	KeySkip       = "skip"
	KeyStart      = "start"
	KeyEnd        = "end"
	KeyAnnotation = "annotation"
)

var (
	metadataRe = regexp.MustCompile(`^\[_metadata_:(\w+)\]:-\s*"(.*)"\s*$`)
	titleRe    = regexp.MustCompile(`^#\s+(.*\S)\s*$`)
	fenceRe    = regexp.MustCompile("^\\s*(```|~~~)")
)

// directiveKind identifies what a directive line sets
type directiveKind int

const (
	dirTitle directiveKind = iota
	dirFile
	dirSkip
	dirStart
	dirEnd
	dirAnnotation
	dirOther
)

// directive is one recognised metadata or title line
type directive struct {
	kind  directiveKind
	key   string
	value string
}

// matcher pairs a pattern with the directive it extracts
type matcher struct {
	pattern *regexp.Regexp
	extract func(m []string) (directive, bool)
}

func keyed(key string, kind directiveKind) func(m []string) (directive, bool) {
	return func(m []string) (directive, bool) {
		if m[1] != key {
			return directive{}, false
		}
		return directive{kind: kind, key: key, value: unquote(m[2])}, true
	}
}

// matchers are evaluated in order. Each kind is tested independently.
var matchers = []matcher{
	{pattern: titleRe, extract: func(m []string) (directive, bool) {
		return directive{kind: dirTitle, value: m[1]}, true
	}},
	{pattern: metadataRe, extract: keyed(KeyFile, dirFile)},
	{pattern: metadataRe, extract: keyed(KeySkip, dirSkip)},
	{pattern: metadataRe, extract: keyed(KeyStart, dirStart)},
	{pattern: metadataRe, extract: keyed(KeyEnd, dirEnd)},
	{pattern: metadataRe, extract: keyed(KeyAnnotation, dirAnnotation)},
	{pattern: metadataRe, extract: func(m []string) (directive, bool) {
		switch m[1] {
		case KeyFile, KeySkip, KeyStart, KeyEnd, KeyAnnotation:
			return directive{}, false
		}
		return directive{kind: dirOther, key: m[1], value: unquote(m[2])}, true
	}},
}

// parseDirectives returns every directive found on line
func parseDirectives(line string) []directive {
	var found []directive
	for _, mt := range matchers {
		m := mt.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if d, ok := mt.extract(m); ok {
			found = append(found, d)
		}
	}
	return found
}

// isMetadata reports whether line is any [_metadata_:KEY] directive
func isMetadata(line string) bool {
	return metadataRe.MatchString(line)
}

// isTitle reports whether line is a step heading
func isTitle(line string) bool {
	return titleRe.MatchString(line)
}

// metadataLine formats one directive line
func metadataLine(key, value string) string {
	return fmt.Sprintf("[_metadata_:%s]:- %q", key, value)
}

// unquote reverses the escaping done by metadataLine. Hand-written values
// that are not valid Go string bodies are kept verbatim.
func unquote(raw string) string {
	if v, err := strconv.Unquote(`"` + raw + `"`); err == nil {
		return v
	}
	return raw
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

func parseLine(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// body accumulates markdown lines and tracks fenced code blocks
type body struct {
	lines   []string
	inFence bool
	fence   string
}

// add appends line and updates fence state
func (b *body) add(line string) {
	b.lines = append(b.lines, line)
	if m := fenceRe.FindStringSubmatch(line); m != nil {
		switch {
		case !b.inFence:
			b.inFence = true
			b.fence = m[1]
		case m[1] == b.fence:
			b.inFence = false
		}
	}
}

// text returns the body without leading or trailing blank lines
func (b *body) text() string {
	lines := b.lines
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func (b *body) reset() {
	b.lines = nil
	b.inFence = false
	b.fence = ""
}

// closeFence appends the closing fence line when text ends inside a fenced
// code block, so lines written after it are not swallowed on the next parse
func closeFence(text string) string {
	var b body
	for _, line := range strings.Split(text, "\n") {
		b.add(line)
	}
	if !b.inFence {
		return text
	}
	return text + "\n" + b.fence
}

// orPlaceholder substitutes placeholder for empty text
func orPlaceholder(text, placeholder string) string {
	if strings.TrimSpace(text) == "" {
		return placeholder
	}
	return text
}

// fromPlaceholder maps placeholder text back to empty
func fromPlaceholder(text, placeholder string) string {
	if text == placeholder {
		return ""
	}
	return text
}
