package walkthrough

import (
	"strconv"
	"strings"
)

// SequentialStep is a step of a document whose steps are identified by
// position. ID is 1-based and matches the region id in source markers.
type SequentialStep struct {
	ID              int    `json:"id"`
	Title           string `json:"title,omitempty"`
	Markdown        string `json:"markdown,omitempty"`
	File            string `json:"file,omitempty"`
	Skip            bool   `json:"skip,omitempty"`
	StartLineNumber int    `json:"startLineNumber,omitempty"`
	EndLineNumber   int    `json:"endLineNumber,omitempty"`
}

// sequentialState is the parser position relative to steps
type sequentialState int

const (
	betweenSteps sequentialState = iota
	insideStep
)

// DeserializeSequential parses a positional walkthrough document.
//
// Metadata and title lines accumulate until the first non-empty content
// line, which opens a step. A metadata or title line seen inside a step
// closes it. Ids are assigned top to bottom starting at 1.
func DeserializeSequential(markdown string) []SequentialStep {
	var (
		steps   []SequentialStep
		pending []directive
		content body
	)
	state := betweenSteps

	flush := func() {
		step := deserializeSequentialStep(pending, content.text())
		step.ID = len(steps) + 1
		steps = append(steps, step)
		pending = nil
		content.reset()
	}

	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimRight(line, "\r")

		var relevant []directive
		if state == betweenSteps || !content.inFence {
			relevant = sequentialDirectives(line)
		}

		switch state {
		case betweenSteps:
			if len(relevant) > 0 {
				pending = append(pending, relevant...)
				continue
			}
			if isMetadata(line) || strings.TrimSpace(line) == "" {
				continue
			}
			if len(pending) == 0 {
				// Preamble before the first step
				continue
			}
			content.add(line)
			state = insideStep

		case insideStep:
			if len(relevant) > 0 {
				flush()
				pending = append(pending, relevant...)
				state = betweenSteps
				continue
			}
			if !content.inFence && isMetadata(line) {
				continue
			}
			content.add(line)
		}
	}

	if state == insideStep || len(pending) > 0 {
		flush()
	}
	return steps
}

// sequentialDirectives returns the title, file, skip, start and end
// directives on line. Other metadata keys are ignored.
func sequentialDirectives(line string) []directive {
	var kept []directive
	for _, d := range parseDirectives(line) {
		switch d.kind {
		case dirTitle, dirFile, dirSkip, dirStart, dirEnd:
			kept = append(kept, d)
		}
	}
	return kept
}

// deserializeSequentialStep builds a step from its pending directives and body
func deserializeSequentialStep(pending []directive, markdown string) SequentialStep {
	step := SequentialStep{
		Markdown: fromPlaceholder(markdown, MarkdownPlaceholder),
	}
	for _, d := range pending {
		switch d.kind {
		case dirTitle:
			step.Title = fromPlaceholder(d.value, TitlePlaceholder)
		case dirFile:
			step.File = d.value
		case dirSkip:
			step.Skip = parseBool(d.value)
		case dirStart:
			step.StartLineNumber = parseLine(d.value)
		case dirEnd:
			step.EndLineNumber = parseLine(d.value)
		}
	}
	return step
}

// SerializeSequential writes steps back into the metadata dialect.
// Placeholder text stands in for a missing title or body.
func SerializeSequential(steps []SequentialStep) string {
	var b strings.Builder
	for _, step := range steps {
		b.WriteString(serializeSequentialStep(step))
	}
	return b.String()
}

func serializeSequentialStep(step SequentialStep) string {
	var b strings.Builder
	if step.File != "" {
		b.WriteString(metadataLine(KeyFile, step.File) + "\n")
	}
	if step.Skip {
		b.WriteString(metadataLine(KeySkip, "true") + "\n")
	}
	if step.StartLineNumber > 0 {
		b.WriteString(metadataLine(KeyStart, strconv.Itoa(step.StartLineNumber)) + "\n")
	}
	if step.EndLineNumber > 0 {
		b.WriteString(metadataLine(KeyEnd, strconv.Itoa(step.EndLineNumber)) + "\n")
	}
	b.WriteString("\n")
	b.WriteString("# " + orPlaceholder(step.Title, TitlePlaceholder) + "\n")
	b.WriteString("\n")
	b.WriteString(closeFence(orPlaceholder(step.Markdown, MarkdownPlaceholder)) + "\n")
	b.WriteString("\n")
	return b.String()
}
