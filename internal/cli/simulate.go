package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeusync/physim/internal/core/events/bus"
	"github.com/zeusync/physim/internal/core/observability/log"
	"github.com/zeusync/physim/internal/core/systems/physics/engine"
	"github.com/zeusync/physim/internal/injector"
)

// bounceSpeed is the approach speed below which a contact counts as resting
// rather than as a bounce.
const bounceSpeed = 0.5

type simulateFlags struct {
	duration time.Duration
	every    time.Duration
	json     bool
}

func newSimulateCmd(opts *options) *cobra.Command {
	var flags simulateFlags
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Runs the scene headless for a span of simulated time",
		Long: "Runs the scene as fast as possible for --duration of simulated time, " +
			"printing the simulated bodies every --every and the digest of the final frame.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.duration <= 0 || flags.every <= 0 {
				return fmt.Errorf("%w: --duration and --every must be positive", ErrInvalidFlag)
			}
			app, cleanup, err := injector.InitializeApp(opts.cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			return simulate(cmd.Context(), cmd.OutOrStdout(), app, flags)
		},
	}
	cmd.Flags().DurationVarP(&flags.duration, "duration", "d", 10*time.Second, "simulated time to run")
	cmd.Flags().DurationVar(&flags.every, "every", time.Second, "simulated time between reports")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print only the final frame as JSON")
	return cmd
}

func simulate(ctx context.Context, out io.Writer, app *injector.App, flags simulateFlags) error {
	e := app.Engine
	tick := e.Config().TickLength
	total := ticksIn(flags.duration, tick)
	chunk := max(ticksIn(flags.every, tick), 1)

	bounces := make(map[string]int)
	sub, err := app.Bus.Subscribe(engine.EventCollision, func(event bus.Event) error {
		if ce, ok := event.Data().(engine.CollisionEvent); ok && ce.Speed > bounceSpeed {
			bounces[ce.BodyName]++
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer func() { _ = sub.Cancel() }()

	app.Logger.Info("simulation started",
		log.String("scene", app.Scene.Name),
		log.Int("ticks", total),
		log.Float64("tick_length", tick),
	)

	for done := 0; done < total; {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := min(chunk, total-done)
		if err := e.Step(n); err != nil {
			return err
		}
		done += n
		if !flags.json {
			printBodies(out, e.Snapshot())
		}
	}

	frame := e.Snapshot()
	m := e.Metrics()
	app.Logger.Info("simulation finished",
		log.Uint64("ticks", m.Ticks),
		log.Uint64("collisions", m.Collisions),
		log.Duration("took", m.TotalExecutionTime),
	)

	if flags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(frame)
	}
	for _, b := range frame.Bodies {
		if b.Simulated {
			fmt.Fprintf(out, "bounces %-12s %d\n", b.Name, bounces[b.Name])
		}
	}
	fmt.Fprintf(out, "ticks %d  collisions %d  digest %016x\n", m.Ticks, m.Collisions, frame.Hash)
	return nil
}

// ticksIn is the number of whole ticks in d.
func ticksIn(d time.Duration, tick float64) int {
	return int(math.Round(d.Seconds() / tick))
}

func printBodies(out io.Writer, f engine.Frame) {
	for _, b := range f.Bodies {
		if !b.Simulated {
			continue
		}
		fmt.Fprintf(out, "t=%7.3fs  %-12s pos=(%8.3f, %8.3f)  vel=(%8.3f, %8.3f)\n",
			f.Time, b.Name, b.Position.X, b.Position.Y, b.Velocity.X, b.Velocity.Y)
	}
}
