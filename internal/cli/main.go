package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.yaml"

// Main runs the mediaflow command line.
func Main() {
	_ = godotenv.Load()

	if err := newRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "mediaflow",
		Short:         "Download, cut and summarize online media",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	root.PersistentFlags().String("config", defaultConfigPath, "Config file; defaults are used when it does not exist")
	root.PersistentFlags().String("log-level", "", "Override logging.level")

	root.AddCommand(
		newServeCmd(),
		newDownloadCmd(),
		newClipCmd(),
		newThumbnailCmd(),
		newSummarizeCmd(),
		newWatchCmd(),
	)
	return root
}
