package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/physim/internal/core/systems"
	"github.com/zeusync/physim/internal/core/systems/physics/engine"
	"github.com/zeusync/physim/internal/injector"
)

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs the scene in real time and streams frames over websocket and QUIC",
		Long: "Runs the scene in real time and serves /ws (every frame and collision as JSON), " +
			"/frame (the latest frame) and /healthz until interrupted. With --quic-addr the same " +
			"messages are also sent over QUIC, one unidirectional stream per message.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := injector.InitializeStreamApp(opts.cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			loop := systems.NewLoop[engine.Frame](app.App.Engine, opts.cfg.Loop.FrameInterval, app.App.Logger, app.Server)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return loop.Run(ctx) })
			g.Go(func() error { return app.Server.Run(ctx) })
			if opts.cfg.Server.QUICAddr != "" {
				g.Go(func() error { return app.Server.RunQUIC(ctx) })
			}
			return g.Wait()
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("quic-addr", "", "QUIC listen address; empty disables QUIC")
	opts.bind(cmd, "server.addr", "addr")
	opts.bind(cmd, "server.quic_addr", "quic-addr")
	return cmd
}
