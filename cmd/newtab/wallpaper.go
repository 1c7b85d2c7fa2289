package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/newtab/internal/wallpaper"
)

func addWallpaper(topLevel *cobra.Command, opts *rootOptions) {
	cmd := &cobra.Command{
		Use:   "wallpaper",
		Short: "Show or change the wallpaper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), opts, envOptions{console: true})
			if err != nil {
				return err
			}
			defer e.Close()

			wp, err := e.wallpaper.Load(cmd.Context())
			if err != nil {
				return err
			}
			printWallpaper(cmd.OutOrStdout(), e.wallpaper.Settings(), wp)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Fetch a new wallpaper now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), opts, envOptions{console: true})
			if err != nil {
				return err
			}
			defer e.Close()

			wp, err := e.wallpaper.Refresh(cmd.Context(), true)
			if err != nil {
				return err
			}
			printWallpaper(cmd.OutOrStdout(), e.wallpaper.Settings(), wp)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "source <picsum|bing|none>",
		Short:     "Choose where wallpapers come from",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(wallpaper.SourcePicsum), string(wallpaper.SourceBing), string(wallpaper.SourceNone)},
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := wallpaper.ParseSource(args[0])
			if err != nil {
				return err
			}
			e, err := newEnv(cmd.Context(), opts, envOptions{console: true})
			if err != nil {
				return err
			}
			defer e.Close()

			wp, err := e.wallpaper.SetSource(cmd.Context(), src)
			if err != nil {
				return err
			}
			printWallpaper(cmd.OutOrStdout(), e.wallpaper.Settings(), wp)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "interval <duration>",
		Short: "Set the refresh interval: 0 (manual), 1h, 6h, 12h, 24h or 168h",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("parse interval: %w", err)
			}
			e, err := newEnv(cmd.Context(), opts, envOptions{console: true})
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.wallpaper.SetInterval(cmd.Context(), d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Interval: %s\n", wallpaper.IntervalLabel(d))
			return nil
		},
	})

	topLevel.AddCommand(cmd)
}

func printWallpaper(w io.Writer, st wallpaper.Settings, wp *wallpaper.Wallpaper) {
	fmt.Fprintf(w, "Source:   %s\n", st.Source)
	fmt.Fprintf(w, "Interval: %s\n", wallpaper.IntervalLabel(st.Interval))
	if wp == nil {
		fmt.Fprintln(w, "Current:  (none)")
		return
	}
	fmt.Fprintf(w, "Current:  %s\n", wp.URL)
	if wp.Author != "" {
		fmt.Fprintf(w, "Author:   %s\n", wp.Author)
	}
}
