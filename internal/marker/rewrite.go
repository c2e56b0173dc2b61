package marker

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Result is a marker-stripped source file
type Result struct {
	Locations []Region
	// Lines holds the source without marker lines
	Lines []string
	// Source is Lines joined with \n as a quoted JSON string
	Source string
}

// Plain returns the stripped source as raw text
func (r Result) Plain() string {
	return strings.Join(r.Lines, "\n")
}

// Rewrite locates regions in source and removes every marker line,
// including markers whose identifier could not be extracted.
func Rewrite(source string, p Patterns) Result {
	lines := splitLines(source)
	regions, isMarker := locate(lines, p.withDefaults())

	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		if !isMarker[i] {
			kept = append(kept, line)
		}
	}

	return Result{
		Locations: regions,
		Lines:     kept,
		Source:    Quote(strings.Join(kept, "\n")),
	}
}

// Quote encodes s as a JSON string literal that is also a valid
// JavaScript expression. HTML characters are left alone. encoding/json
// escapes U+2028 and U+2029, and replaces invalid UTF-8 bytes with U+FFFD.
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

var moduleEnvelope = regexp.MustCompile(`(?s)^\s*export\s+default\s+("(?:[^"\\]|\\.)*")\s*;?\s*$`)

// RewriteModule rewrites a module of the form export default "..." and
// rewraps it with template. Anything else is returned unchanged with no regions.
func RewriteModule(module string, p Patterns, template string) (Result, string) {
	m := moduleEnvelope.FindStringSubmatch(module)
	if m == nil {
		return Result{Locations: []Region{}, Lines: splitLines(module)}, module
	}
	var source string
	if err := json.Unmarshal([]byte(m[1]), &source); err != nil {
		return Result{Locations: []Region{}, Lines: splitLines(module)}, module
	}
	res := Rewrite(source, p)
	return res, Wrap(res.Source, template)
}

// Wrap substitutes the quoted source into a module template.
// An empty template means export default $source;.
func Wrap(quoted, template string) string {
	if template == "" {
		template = "export default $source;"
	}
	return strings.Replace(template, "$source", quoted, 1)
}
