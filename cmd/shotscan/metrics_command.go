package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shotscan/internal/metric"
)

func newMetricsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "metrics",
		Short:       "List available distance metrics",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, tag := range metric.Tags() {
				suffix := ""
				if tag == metric.Default {
					suffix = " (default)"
				}
				fmt.Fprintf(out, "%s%s\n", tag, suffix)
			}
			return nil
		},
	}
}
