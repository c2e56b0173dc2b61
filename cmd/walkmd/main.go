package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gubarz/walkmd/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "walkmd",
	Short: "Code walkthroughs from marked source regions",
	Long: `Keeps a markdown code walkthrough in sync with the source it describes.

Mark regions in source files with START/END comments:

  // START create-viewport
  const vp = new Viewport();
  // END create-viewport

walkmd strips the markers, records the line range of every region and
merges the ranges into the steps of the walkthrough document.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(annotateCmd, stripCmd, generateCmd, checkCmd, viewCmd)

	rootCmd.PersistentFlags().String("start", "", "Regular expression matching a region start marker")
	rootCmd.PersistentFlags().String("end", "", "Regular expression matching a region end marker")
	rootCmd.PersistentFlags().String("identifier", "", "Regular expression extracting the region id from a marker")
	rootCmd.PersistentFlags().StringP("walkthrough", "w", "", "Walkthrough markdown file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Report progress on stderr")

	viper.BindPFlag("start", rootCmd.PersistentFlags().Lookup("start"))
	viper.BindPFlag("end", rootCmd.PersistentFlags().Lookup("end"))
	viper.BindPFlag("identifier", rootCmd.PersistentFlags().Lookup("identifier"))
	viper.BindPFlag("walkthrough", rootCmd.PersistentFlags().Lookup("walkthrough"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

// progress writes a line to stderr when --verbose is set
func progress(cmd *cobra.Command, format string, args ...any) {
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
	}
}

// warn writes a warning line to stderr
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "Warning: "+format+"\n", args...)
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
