package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeusync/physim/internal/core/scene"
)

func newScenesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "Lists the builtin scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range scene.BuiltinNames() {
				s, err := scene.Builtin(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %2d bodies  %s\n", name, len(s.Bodies), s.Description)
			}
			return nil
		},
	}
}
