package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/physim/internal/core/systems"
	"github.com/zeusync/physim/internal/core/systems/physics/engine"
	"github.com/zeusync/physim/internal/injector"
)

func newWatchCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Runs the scene in real time in the terminal",
		Long:  "Runs the scene in real time and draws it in the terminal. Quit with Esc, q or Ctrl-C.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *opts.cfg
			if cfg.Logger.File == "" {
				// stderr shares the terminal with the viewer
				cfg.Logger.Level = "error"
			}
			app, cleanup, err := injector.InitializeViewerApp(&cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			loop := systems.NewLoop[engine.Frame](app.App.Engine, cfg.Loop.FrameInterval, app.App.Logger, app.Viewer)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return loop.Run(ctx) })
			g.Go(func() error {
				defer cancel()
				return app.Viewer.Run(ctx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().Float64("width", 0, "visible world width in meters (default 30)")
	cmd.Flags().Float64("center-x", 0, "world x shown in the middle of the screen")
	cmd.Flags().Float64("center-y", 0, "world y shown in the middle of the screen (default 10)")
	opts.bind(cmd, "viewer.width", "width")
	opts.bind(cmd, "viewer.center.x", "center-x")
	opts.bind(cmd, "viewer.center.y", "center-y")
	return cmd
}
