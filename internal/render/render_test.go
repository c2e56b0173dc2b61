package render

import (
	"strings"
	"testing"
)

func TestHTML(t *testing.T) {
	out, err := HTML("Call **`attach`** here.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(out, "<strong><code>attach</code></strong>") {
		t.Errorf("missing inline formatting: %s", out)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("GFM table not rendered: %s", out)
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{
			name:     "first paragraph only",
			markdown: "The viewport is\ncreated *here*.\n\nSecond paragraph.",
			want:     "The viewport is created here.",
		},
		{
			name:     "skips leading code block",
			markdown: "```ts\nconst x = 1;\n```\n\nAfter the code.",
			want:     "After the code.",
		},
		{
			name:     "inline code kept",
			markdown: "Use `viewport.invalidate()` to redraw.",
			want:     "Use viewport.invalidate() to redraw.",
		},
		{
			name:     "empty",
			markdown: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summary(tt.markdown); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}
