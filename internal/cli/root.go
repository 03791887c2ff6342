package cli

import (
	"github.com/peschuster/propresenter-srt/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "propresenter-srt",
	Short: "Record ProPresenter stage display text as SRT subtitles",
	Long: `propresenter-srt connects to a ProPresenter stage display, records every
change of the current slide text with its timing and writes SubRip subtitle
files when stopped.

Slides that alternate original and translated lines can be split into a main
and a translation track.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
