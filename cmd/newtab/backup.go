package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/newtab/internal/backup"
)

func addImport(topLevel *cobra.Command, opts *rootOptions) {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import shortcuts from a backup or bookmark file",
		Long: `Import merges shortcuts into the grid. JSON files may be a newtab backup
or an Infinity new-tab backup; .html files are read as browser bookmarks.
Links whose URL already exists are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), opts, envOptions{console: true})
			if err != nil {
				return err
			}
			defer e.Close()

			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()

			var res backup.Result
			switch strings.ToLower(filepath.Ext(path)) {
			case ".html", ".htm":
				res = e.grid.ImportHTML(f)
			default:
				raw, err := io.ReadAll(f)
				if err != nil {
					return fmt.Errorf("read import file: %w", err)
				}
				res = e.grid.ImportBackup(raw)
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			if !res.Success {
				return fmt.Errorf("import failed: %s", res.Message)
			}
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addExport(topLevel *cobra.Command, opts *rootOptions) {
	var format string

	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Export shortcuts to a backup file",
		Example: `
newtab export
newtab export --format html bookmarks.html
newtab export -   # write JSON to stdout
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), opts, envOptions{console: true})
			if err != nil {
				return err
			}
			defer e.Close()

			now := time.Now()
			var data []byte
			var name string
			switch format {
			case "json":
				data, err = backup.Marshal(e.grid.Export())
				if err != nil {
					return fmt.Errorf("encode export: %w", err)
				}
				name = backup.Filename(now)
			case "html":
				data = []byte(backup.ExportHTML(e.grid.Items()))
				name = fmt.Sprintf("shortcuts-%s.html", now.Format("2006-01-02"))
			default:
				return fmt.Errorf("unknown format %q (want json or html)", format)
			}

			if len(args) == 1 {
				name = args[0]
			}
			if name == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(name, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d shortcuts to %s\n", e.grid.Items().LinkCount(), name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or html")
	topLevel.AddCommand(cmd)
}
