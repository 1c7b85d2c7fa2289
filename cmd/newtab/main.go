package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logFile    string
	backend    string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "newtab",
		Short: "A new-tab page of shortcuts in your terminal and browser.",
		Long: `newtab keeps a paginated grid of shortcuts and folders with a clock,
a web search box and a rotating wallpaper. Run without arguments for the
terminal grid, or use "serve" to drive a browser page over HTTP.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/newtab/config.json)")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	flags.StringVar(&opts.backend, "storage", "", "storage backend: memory, json, sqlite, postgres or redis")

	addTUI(cmd, opts)
	addServe(cmd, opts)
	addImport(cmd, opts)
	addExport(cmd, opts)
	addSearch(cmd, opts)
	addWallpaper(cmd, opts)
	return cmd
}
