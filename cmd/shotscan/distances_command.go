package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shotscan/internal/config"
	"shotscan/internal/detect"
	"shotscan/internal/engine"
	"shotscan/internal/report"
)

func newDistancesCommand(ctx *commandContext) *cobra.Command {
	var flags detectFlags

	cmd := &cobra.Command{
		Use:   "distances VIDEO STREAM",
		Short: "Compute distance sequences without filtering",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			opts, err := detectOptions(cfg, flags)
			if err != nil {
				return err
			}
			detector, err := detect.New(opts, logger)
			if err != nil {
				return err
			}

			video, stream := args[0], args[1]
			eng, runErr := detector.Distances(cmd.Context(), stream, store.Source(video, stream, opts.BatchSize))
			var laneErr *engine.LaneError
			if runErr != nil && !errors.As(runErr, &laneErr) {
				return fmt.Errorf("distances %s/%s: %w", video, stream, runErr)
			}

			outDir := cfg.Paths.OutputDir
			if strings.TrimSpace(flags.outputDir) != "" {
				if outDir, err = config.ExpandPath(flags.outputDir); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			for _, rate := range eng.Rates() {
				if lerr := eng.LaneErr(rate); lerr != nil {
					fmt.Fprintf(out, "rate %d: failed: %v\n", rate, lerr)
					continue
				}
				path, err := report.WriteDistances(outDir, video, stream, rate, eng.Sequence(rate))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "rate %d: %d points -> %s\n", rate, len(eng.Sequence(rate)), path)
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&flags.rates, "rates", "", "Comma-separated sample rates, overrides detection.sample_rates")
	cmd.Flags().StringVar(&flags.metric, "metric", "", "Distance metric, overrides detection.metric")
	cmd.Flags().StringVarP(&flags.outputDir, "output", "o", "", "Report directory, overrides paths.output_dir")
	return cmd
}
