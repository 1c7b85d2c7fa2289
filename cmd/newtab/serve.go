package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/newtab/internal/server"
)

func addServe(topLevel *cobra.Command, opts *rootOptions) {
	var addr string
	var prefetch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the grid API for a browser new-tab page",
		Example: `
newtab serve
newtab serve --addr :8787 --storage redis
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, err := newEnv(ctx, opts, envOptions{console: true})
			if err != nil {
				return err
			}
			defer e.Close()
			e.run(ctx, true)

			if prefetch {
				go func() {
					n := e.icons.Prefetch(ctx, e.grid.Items(), e.settings.Favicon.Workers, nil)
					e.log.Info().Int("icons", n).Msg("favicons prefetched")
				}()
			}

			if addr == "" {
				addr = e.settings.Server.Addr
			}
			srv := server.New(server.Params{
				Grid:           e.grid,
				Search:         e.search,
				Wallpaper:      e.wallpaper,
				Icons:          e.icons,
				AllowedOrigins: e.settings.Server.AllowedOrigins,
				Logger:         e.log.With().Str("component", "http").Logger(),
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8787)")
	cmd.Flags().BoolVar(&prefetch, "prefetch-icons", true, "load every shortcut's favicon at startup")
	topLevel.AddCommand(cmd)
}
