package main

import (
	"fmt"
	"os"

	"github.com/gubarz/walkmd/internal/config"
	"github.com/gubarz/walkmd/internal/marker"
	"github.com/spf13/cobra"
)

var stripCmd = &cobra.Command{
	Use:   "strip <file>",
	Short: "Print a source file without its region markers",
	Args:  cobra.ExactArgs(1),
	RunE:  runStrip,
}

func init() {
	stripCmd.Flags().Bool("regions", false, "List located regions instead of the source")
}

func runStrip(cmd *cobra.Command, args []string) error {
	opts, err := config.GetOptions()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}
	res := marker.Rewrite(string(data), opts.Patterns())

	out := cmd.OutOrStdout()
	if showRegions, _ := cmd.Flags().GetBool("regions"); showRegions {
		for _, r := range res.Locations {
			fmt.Fprintf(out, "%s\t%s\t%s\n", r.ID, lineOrDash(r.Start), lineOrDash(r.End))
		}
		return nil
	}

	_, err = fmt.Fprintln(out, res.Plain())
	return err
}

func lineOrDash(n int) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprint(n)
}
