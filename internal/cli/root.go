// Package cli holds the physim command tree.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zeusync/physim/internal/config"
)

// Version is set at build time:
//
//	go build -ldflags "-X github.com/zeusync/physim/internal/cli.Version=1.0.0"
var Version = "dev"

var ErrInvalidFlag = errors.New("invalid flag")

// options is shared by every command of one tree.
type options struct {
	v    *viper.Viper
	file string
	cfg  *config.Config
}

// load resolves the configuration once flags are parsed.
func (o *options) load() error {
	cfg, err := config.Load(o.v, o.file)
	if err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

// bind makes a flag override the config key it names.
func (o *options) bind(cmd *cobra.Command, key, flag string) {
	f := cmd.Flags().Lookup(flag)
	if f == nil {
		f = cmd.PersistentFlags().Lookup(flag)
	}
	if err := o.v.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("bind %s to %s: %v", flag, key, err))
	}
}

// NewRootCommand builds a fresh command tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	opts := &options{v: viper.New()}

	root := &cobra.Command{
		Use:           "physim",
		Short:         "physim is a fixed-timestep 2D collision engine.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}
	root.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.file, "config", "c", "", "config file (default is ./physim.yaml)")
	flags.StringP("scene", "s", "", "builtin scene name or path to a scene file")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: console or json")
	opts.bind(root, "scene", "scene")
	opts.bind(root, "logger.level", "log-level")
	opts.bind(root, "logger.format", "log-format")

	root.AddCommand(
		newSimulateCmd(opts),
		newServeCmd(opts),
		newWatchCmd(opts),
		newScenesCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line with ctx, which should be cancelled on
// SIGINT and SIGTERM.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
