package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"shotscan/internal/features"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import VIDEO STREAM DUMPFILE",
		Short: "Load a feature dump into the store",
		Long: "Load a feature dump into the store.\n\n" +
			"Each dump line holds one frame: a zero-padded index, a colon, and the\n" +
			"bracketed vector, e.g. `0000000012: [0.1, 0.2]`. Use - to read stdin.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}

			video, stream, path := args[0], args[1], args[2]
			var in io.Reader = cmd.InOrStdin()
			if path != "-" {
				file, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open dump: %w", err)
				}
				defer file.Close()
				in = file
			}

			n, err := store.Import(cmd.Context(), video, stream, features.NewDumpSource(in, cfg.Engine.BatchSize))
			if err != nil {
				return fmt.Errorf("import %s/%s: %w", video, stream, err)
			}
			stored, err := store.Count(cmd.Context(), video, stream)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records into %s/%s (%d stored)\n", n, video, stream, stored)
			return nil
		},
	}
}
