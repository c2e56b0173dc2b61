package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/gubarz/walkmd/internal/config"
	"github.com/gubarz/walkmd/internal/discover"
	"github.com/gubarz/walkmd/internal/emit"
	"github.com/gubarz/walkmd/internal/marker"
	"github.com/gubarz/walkmd/internal/render"
	"github.com/gubarz/walkmd/internal/steps"
	"github.com/gubarz/walkmd/internal/ui"
	"github.com/gubarz/walkmd/internal/walkthrough"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var generateCmd = &cobra.Command{
	Use:   "generate [dir]",
	Short: "Generate the step module for a keyed walkthrough directory",
	Long: `Scans every file in dir for region markers and joins them with the
annotations of the walkthrough document in that directory:

  [_metadata_:annotation]:- "create-viewport"

  # Create the viewport

  Body text.

The result is written as module.exports = [...] to the generated file, or
to stdout when no file name is configured. The walkthrough is not modified.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Report annotations and regions that have no counterpart",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

var viewCmd = &cobra.Command{
	Use:   "view [dir]",
	Short: "Browse the steps of a keyed walkthrough directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runView,
}

func init() {
	for _, c := range []*cobra.Command{generateCmd, checkCmd, viewCmd} {
		c.Flags().StringSlice("ext", nil, "Only scan files with these extensions")
	}

	generateCmd.Flags().StringP("output", "o", "", "Generated file name inside dir (default: stdout)")
	generateCmd.Flags().Bool("html", false, "Add rendered HTML for each step")
	viper.BindPFlag("generated_file_name", generateCmd.Flags().Lookup("output"))

	checkCmd.Flags().Bool("strict", false, "Fail when anything is orphaned")

	viewCmd.Flags().Bool("all", false, "Include skipped steps")
}

// walkthroughDir is a scanned keyed walkthrough directory
type walkthroughDir struct {
	root        string
	annotations []walkthrough.KeyedStep
	sources     []steps.SourceRegions
}

// lines maps each scanned file to its stripped lines
func (d *walkthroughDir) lines() map[string][]string {
	m := make(map[string][]string, len(d.sources))
	for _, src := range d.sources {
		m[src.File] = src.Lines
	}
	return m
}

// loadWalkthroughDir parses the walkthrough and locates the regions of
// every other file in the directory
func loadWalkthroughDir(cmd *cobra.Command, args []string, opts *config.Options) (*walkthroughDir, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("error resolving path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	name := config.GetWalkthrough()
	walkPath := name
	if !filepath.IsAbs(walkPath) {
		walkPath = filepath.Join(root, name)
	}

	// A missing walkthrough has no annotations
	var annotations []walkthrough.KeyedStep
	data, err := os.ReadFile(walkPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading walkthrough: %w", err)
	default:
		annotations = walkthrough.DeserializeKeyed(string(data))
	}

	exclude := []string{}
	if rel, err := filepath.Rel(root, walkPath); err == nil {
		exclude = append(exclude, rel)
	}
	if gen := opts.GeneratedFileName; gen != "" {
		exclude = append(exclude, gen)
	}
	exts, _ := cmd.Flags().GetStringSlice("ext")

	files, err := discover.Files(root, discover.Options{Extensions: exts, Exclude: exclude})
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}

	dir := &walkthroughDir{root: root, annotations: annotations}
	for _, f := range files {
		src, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
		if err != nil {
			warn(cmd.ErrOrStderr(), "%s: %v", f.Path, err)
			continue
		}
		res := marker.Rewrite(string(src), opts.Patterns())
		dir.sources = append(dir.sources, steps.SourceRegions{
			File:    f.Path,
			Regions: res.Locations,
			Lines:   res.Lines,
		})
	}
	progress(cmd, "%d annotation(s), %d file(s) scanned", len(annotations), len(dir.sources))

	return dir, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	opts, err := config.GetOptions()
	if err != nil {
		return err
	}
	dir, err := loadWalkthroughDir(cmd, args, opts)
	if err != nil {
		return err
	}

	joined := steps.Join(dir.annotations, dir.sources)
	if withHTML, _ := cmd.Flags().GetBool("html"); withHTML {
		for i := range joined {
			html, err := render.HTML(joined[i].Markdown)
			if err != nil {
				return fmt.Errorf("rendering step %q: %w", joined[i].ID, err)
			}
			joined[i].HTML = html
		}
	}

	module, err := steps.Module(joined)
	if err != nil {
		return err
	}

	target := ""
	if opts.GeneratedFileName != "" {
		target = filepath.Join(dir.root, opts.GeneratedFileName)
	}
	progress(cmd, "%d step(s) generated", len(joined))
	return emit.NewEmitter(cmd.OutOrStdout()).Output(target, module)
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := config.GetOptions()
	if err != nil {
		return err
	}
	dir, err := loadWalkthroughDir(cmd, args, opts)
	if err != nil {
		return err
	}

	orphans := steps.FindOrphans(dir.annotations, dir.sources)
	out := cmd.OutOrStdout()
	ui.RefreshStyles()
	s := ui.Styles()
	heading := lipgloss.NewStyle().Bold(true)

	if orphans.Empty() {
		fmt.Fprintln(out, s.Location.Render(fmt.Sprintf("ok: %d step(s) matched", len(steps.Join(dir.annotations, dir.sources)))))
		return nil
	}
	if len(orphans.Annotations) > 0 {
		fmt.Fprintln(out, heading.Render("Annotations without a region:"))
		for _, id := range orphans.Annotations {
			fmt.Fprintln(out, "  "+s.Dim.Render(id))
		}
	}
	if len(orphans.Regions) > 0 {
		fmt.Fprintln(out, heading.Render("Regions without an annotation:"))
		for _, id := range orphans.Regions {
			fmt.Fprintln(out, "  "+s.Dim.Render(id))
		}
	}

	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		return fmt.Errorf("%d orphaned annotation(s), %d orphaned region(s)", len(orphans.Annotations), len(orphans.Regions))
	}
	return nil
}

func runView(cmd *cobra.Command, args []string) error {
	opts, err := config.GetOptions()
	if err != nil {
		return err
	}
	dir, err := loadWalkthroughDir(cmd, args, opts)
	if err != nil {
		return err
	}

	all, _ := cmd.Flags().GetBool("all")
	var shown []steps.Step
	for _, s := range steps.Join(dir.annotations, dir.sources) {
		if s.Skip && !all {
			continue
		}
		shown = append(shown, s)
	}
	if len(shown) == 0 {
		return fmt.Errorf("no steps found in %s", dir.root)
	}

	return ui.Run(shown, dir.lines())
}
