package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts, err := Default().Options()
	if err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if opts.Replace != DefaultReplace {
		t.Errorf("Replace = %q", opts.Replace)
	}

	p := opts.Patterns()
	if !p.Start.MatchString("// START step-1") {
		t.Error("start pattern should match a start marker")
	}
	if !p.End.MatchString("// END step-1") {
		t.Error("end pattern should match an end marker")
	}
	if m := p.Identifier.FindStringSubmatch("// END step-1"); len(m) < 2 || m[1] != "step-1" {
		t.Errorf("identifier submatch = %q", m)
	}
}

func TestOptionsEmptyReplaceUsesDefault(t *testing.T) {
	c := Default()
	c.Replace = ""
	opts, err := c.Options()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Replace != DefaultReplace {
		t.Errorf("Replace = %q", opts.Replace)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"invalid start", func(c *Config) { c.Start = "START(" }, "start:"},
		{"empty end", func(c *Config) { c.End = "  " }, "end: pattern must not be empty"},
		{"invalid identifier", func(c *Config) { c.Identifier = "[" }, "identifier:"},
		{"replace without source", func(c *Config) { c.Replace = "module.exports = 1;" }, "replace:"},
		{"generated file in subdir", func(c *Config) { c.GeneratedFileName = filepath.Join("out", "steps.js") }, "generated_file_name:"},
		{"generated file parent", func(c *Config) { c.GeneratedFileName = ".." }, "generated_file_name:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)

			opts, err := c.Options()
			if err == nil {
				t.Fatalf("expected error, got %+v", opts)
			}
			if !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("error should wrap ErrInvalidOptions: %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestOptionsReportsAllErrors(t *testing.T) {
	c := Default()
	c.Start = "("
	c.End = ")"

	_, err := c.Options()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "start:") || !strings.Contains(err.Error(), "end:") {
		t.Errorf("both patterns should be reported: %v", err)
	}
}

func TestSetRefreshesConfig(t *testing.T) {
	SetDefaults()
	if err := Set("replace", "module.exports = $source;"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { Set("replace", DefaultReplace) })

	opts, err := GetOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Replace != "module.exports = $source;" {
		t.Errorf("Replace = %q", opts.Replace)
	}
}

func TestExpandTilde(t *testing.T) {
	t.Setenv("HOME", "/home/walker")

	if got := expandTilde("~/notes/walkthrough.md"); got != filepath.Join("/home/walker", "notes", "walkthrough.md") {
		t.Errorf("got %q", got)
	}
	if got := expandTilde("walkthrough.md"); got != "walkthrough.md" {
		t.Errorf("got %q", got)
	}
	if got := expandTilde(""); got != "" {
		t.Errorf("got %q", got)
	}
}
