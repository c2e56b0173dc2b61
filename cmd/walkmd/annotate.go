package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/gubarz/walkmd/internal/config"
	"github.com/gubarz/walkmd/internal/emit"
	"github.com/gubarz/walkmd/internal/marker"
	"github.com/gubarz/walkmd/internal/steps"
	"github.com/spf13/cobra"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <file>...",
	Short: "Strip markers into modules and sync step line numbers",
	Long: `Rewrites each source file as a module exporting the marker-stripped
source as a string, then records every region's file and line range on the
walkthrough step whose number matches the region id.

Region ids must be step numbers:

  // START 3
  ...
  // END 3

Missing steps are added with placeholder text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().StringP("out-dir", "o", "", "Directory for generated modules (default: stdout)")
	annotateCmd.Flags().Bool("module", false, "Inputs are already export default \"...\" modules")
	annotateCmd.Flags().Bool("no-sync", false, "Do not update the walkthrough")
	annotateCmd.Flags().String("replace", "", "Module template; $source is replaced by the quoted source")
}

// annotated is the rewrite result of one source file
type annotated struct {
	path   string
	module string
	result marker.Result
	err    error
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	if r, _ := cmd.Flags().GetString("replace"); r != "" {
		if err := config.Set("replace", r); err != nil {
			return err
		}
	}
	opts, err := config.GetOptions()
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out-dir")
	wrapped, _ := cmd.Flags().GetBool("module")
	noSync, _ := cmd.Flags().GetBool("no-sync")

	if outDir == "" && len(args) > 1 {
		return fmt.Errorf("--out-dir is required when annotating more than one file")
	}

	results := rewriteConcurrent(args, opts, wrapped)

	var book *steps.Book
	if !noSync {
		book = steps.NewBook(config.GetWalkthrough())
	}
	out := emit.NewEmitter(cmd.OutOrStdout())

	var failed int
	for _, r := range results {
		if r.err != nil {
			warn(cmd.ErrOrStderr(), "%s: %v", r.path, r.err)
			failed++
			continue
		}

		target := ""
		if outDir != "" {
			target = filepath.Join(outDir, moduleName(r.path))
		}
		if err := out.Output(target, r.module+"\n"); err != nil {
			return fmt.Errorf("writing %s: %w", r.path, err)
		}
		progress(cmd, "%s: %d region(s)", r.path, len(r.result.Locations))

		if book != nil && len(r.result.Locations) > 0 {
			if _, err := book.Apply(r.path, r.result.Locations); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) could not be read", failed, len(results))
	}
	return nil
}

// moduleName maps a source path to its generated module file name
func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".js"
}

// rewriteConcurrent rewrites files on a bounded worker pool and returns
// results in input order
func rewriteConcurrent(files []string, opts *config.Options, wrapped bool) []annotated {
	numWorkers := min(runtime.GOMAXPROCS(0), len(files))

	work := make(chan int, len(files))
	results := make([]annotated, len(files))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = annotateFile(files[idx], opts, wrapped)
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)
	wg.Wait()

	return results
}

func annotateFile(path string, opts *config.Options, wrapped bool) annotated {
	raw, err := os.ReadFile(path)
	if err != nil {
		return annotated{path: path, err: err}
	}
	data := string(raw)

	if wrapped {
		res, module := marker.RewriteModule(data, opts.Patterns(), opts.Replace)
		return annotated{path: path, module: module, result: res}
	}

	res := marker.Rewrite(data, opts.Patterns())
	return annotated{path: path, module: marker.Wrap(res.Source, opts.Replace), result: res}
}
