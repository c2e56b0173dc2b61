package walkthrough

import (
	"strings"
)

// KeyedStep is a step of a document whose steps carry an explicit
// annotation id. Index is the step's position in the document, 0-based.
type KeyedStep struct {
	ID       string
	Title    string
	Markdown string
	Skip     bool
	Index    int
}

// DeserializeKeyed parses a keyed walkthrough document.
//
// Only a heading opens a step. Metadata lines are collected for the next
// heading; every other line belongs to the open step's body.
func DeserializeKeyed(markdown string) []KeyedStep {
	var (
		steps   []KeyedStep
		pending []directive
		content body
		current *KeyedStep
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Markdown = fromPlaceholder(content.text(), MarkdownPlaceholder)
		steps = append(steps, *current)
		current = nil
		content.reset()
	}

	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimRight(line, "\r")

		if current != nil && content.inFence {
			content.add(line)
			continue
		}

		if isMetadata(line) {
			pending = append(pending, parseDirectives(line)...)
			continue
		}

		if isTitle(line) {
			flush()
			current = deserializeKeyedStep(pending, line)
			current.Index = len(steps)
			pending = nil
			continue
		}

		if current != nil {
			content.add(line)
		}
	}
	flush()

	return steps
}

// deserializeKeyedStep opens a step from its heading and pending metadata
func deserializeKeyedStep(pending []directive, heading string) *KeyedStep {
	step := &KeyedStep{}
	for _, d := range append(pending, parseDirectives(heading)...) {
		switch d.kind {
		case dirTitle:
			step.Title = fromPlaceholder(d.value, TitlePlaceholder)
		case dirAnnotation:
			step.ID = d.value
		case dirSkip:
			step.Skip = parseBool(d.value)
		}
	}
	return step
}

// SerializeKeyed writes keyed steps back into the metadata dialect
func SerializeKeyed(steps []KeyedStep) string {
	var b strings.Builder
	for _, step := range steps {
		if step.ID != "" {
			b.WriteString(metadataLine(KeyAnnotation, step.ID) + "\n")
		}
		if step.Skip {
			b.WriteString(metadataLine(KeySkip, "true") + "\n")
		}
		b.WriteString("\n")
		b.WriteString("# " + orPlaceholder(step.Title, TitlePlaceholder) + "\n")
		b.WriteString("\n")
		b.WriteString(closeFence(orPlaceholder(step.Markdown, MarkdownPlaceholder)) + "\n")
		b.WriteString("\n")
	}
	return b.String()
}
