package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evroute/app/plugins"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List the metrics sinks and plan publishers compiled in",
	RunE: func(cmd *cobra.Command, args []string) error {
		inv := plugins.Available()
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "metrics.sinks      %s\nnotify.publishers  %s\n",
			strings.Join(inv.Sinks, ", "), strings.Join(inv.Publishers, ", "))
		return err
	},
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}
