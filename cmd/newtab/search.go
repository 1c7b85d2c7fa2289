package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/newtab/internal/picker"
	"github.com/nikbrunner/newtab/internal/search"
	"github.com/nikbrunner/newtab/internal/tui"
)

func addSearch(topLevel *cobra.Command, opts *rootOptions) {
	var web bool

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Find a shortcut and open it",
		Long: `Search fuzzy-matches shortcuts and folder contents. A single match opens
directly; otherwise a picker lets you choose. With --web the query goes to
the current search engine instead.`,
		Example: `
newtab search git
newtab search --web golang generics
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), opts, envOptions{console: true})
			if err != nil {
				return err
			}
			defer e.Close()

			query := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if web {
				target, ok := e.search.Resolve(query)
				if !ok {
					return fmt.Errorf("nothing to search for")
				}
				return tui.OpenURL(target)
			}

			items := e.grid.Items()
			if query != "" {
				results := search.Shortcuts(items, query)
				switch len(results) {
				case 0:
					fmt.Fprintf(out, "No shortcuts found for '%s'\n", query)
					return nil
				case 1:
					fmt.Fprintf(out, "Opening: %s\n", results[0].Link.Name)
					return tui.OpenURL(results[0].Link.URL)
				}
			}

			p := picker.New(picker.Params{Items: items, Query: query, Standalone: true})
			final, err := tea.NewProgram(p).Run()
			if err != nil {
				return fmt.Errorf("run picker: %w", err)
			}
			res, ok := final.(picker.Picker).Selected()
			if !ok {
				return nil
			}
			return tui.OpenURL(res.Link.URL)
		},
	}
	cmd.Flags().BoolVarP(&web, "web", "w", false, "search the web instead of shortcuts")
	topLevel.AddCommand(cmd)
}
