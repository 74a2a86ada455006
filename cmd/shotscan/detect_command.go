package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"shotscan/internal/config"
	"shotscan/internal/detect"
	"shotscan/internal/report"
)

type detectFlags struct {
	listPath      string
	streams       string
	rates         string
	metric        string
	outputDir     string
	jsonOutput    bool
	dumpDistances bool
}

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var flags detectFlags

	cmd := &cobra.Command{
		Use:   "detect [VIDEO...]",
		Short: "Detect shot boundaries for stored videos",
		Long: "Detect shot boundaries for stored videos.\n\n" +
			"Videos come from the arguments and from --list; with neither, every\n" +
			"stored video is processed. A failing video is logged and the run\n" +
			"continues with the next one. Every run also writes run_<id>.json\n" +
			"with the full summary next to the boundary lists.",
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
			videos, err := detectVideos(cmd, ctx, args, flags.listPath)
			if err != nil {
				return err
			}
			if len(videos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No videos in the feature store")
				return nil
			}

			detector, err := detect.New(opts, logger)
			if err != nil {
				return err
			}
			results := detector.Videos(cmd.Context(), detect.StoreCatalog(store), videos, splitList(flags.streams))

			outDir := cfg.Paths.OutputDir
			if strings.TrimSpace(flags.outputDir) != "" {
				if outDir, err = config.ExpandPath(flags.outputDir); err != nil {
					return err
				}
			}
			if err := writeDetectReports(outDir, results, flags.dumpDistances); err != nil {
				return err
			}
			if err := report.WriteJSONFile(filepath.Join(outDir, report.SummaryName(detector.RunID())), results); err != nil {
				return err
			}

			if flags.jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else if err := printDetectSummary(cmd, results); err != nil {
				return err
			}

			failed := 0
			for _, res := range results {
				if res.Err() != nil {
					failed++
				}
			}
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d videos failed (run %s)", failed, len(results), detector.RunID())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.listPath, "list", "", "File with one video name per line")
	cmd.Flags().StringVar(&flags.streams, "streams", "", "Comma-separated feature streams (default: all stored)")
	cmd.Flags().StringVar(&flags.rates, "rates", "", "Comma-separated sample rates, overrides detection.sample_rates")
	cmd.Flags().StringVar(&flags.metric, "metric", "", "Distance metric, overrides detection.metric")
	cmd.Flags().StringVarP(&flags.outputDir, "output", "o", "", "Report directory, overrides paths.output_dir")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Print the run summary as JSON")
	cmd.Flags().BoolVar(&flags.dumpDistances, "dump-distances", false, "Also write every rate's distance sequence")
	return cmd
}

func detectOptions(cfg *config.Config, flags detectFlags) (detect.Options, error) {
	opts := detect.OptionsFromConfig(cfg)
	if strings.TrimSpace(flags.rates) != "" {
		rates, err := config.ParseRates(flags.rates)
		if err != nil {
			return opts, err
		}
		opts.Rates = rates
	}
	if strings.TrimSpace(flags.metric) != "" {
		opts.Metric = flags.metric
	}
	return opts, nil
}

func detectVideos(cmd *cobra.Command, ctx *commandContext, args []string, listPath string) ([]string, error) {
	videos := slices.Clone(args)
	if strings.TrimSpace(listPath) != "" {
		file, err := os.Open(listPath)
		if err != nil {
			return nil, fmt.Errorf("open video list: %w", err)
		}
		defer file.Close()
		listed, err := detect.ReadList(file)
		if err != nil {
			return nil, err
		}
		videos = append(videos, listed...)
	}
	if len(videos) > 0 {
		return videos, nil
	}
	store, err := ctx.ensureStore()
	if err != nil {
		return nil, err
	}
	return store.Videos(cmd.Context())
}

func writeDetectReports(dir string, results []detect.VideoResult, dumpDistances bool) error {
	for _, res := range results {
		for _, stream := range res.Streams {
			if stream.Err() != nil {
				continue
			}
			if _, err := report.WriteCandidates(dir, res.Video, stream.Stream, stream.Boundaries()); err != nil {
				return err
			}
			if !dumpDistances {
				continue
			}
			for _, rate := range res.Rates {
				if _, failed := stream.LaneErrors[rate]; failed {
					continue
				}
				if _, err := report.WriteDistances(dir, res.Video, stream.Stream, rate, stream.Sequences[rate]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func printDetectSummary(cmd *cobra.Command, results []detect.VideoResult) error {
	headers := []string{"Video", "Stream", "Frames", "Boundaries", "Rejected", "Status", "Time"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignRight}
	var rows [][]string
	for _, res := range results {
		elapsed := res.Duration().Round(time.Millisecond).String()
		if res.Error != "" {
			rows = append(rows, []string{res.Video, "-", "-", "-", "-", res.Error, elapsed})
			continue
		}
		for _, stream := range res.Streams {
			status := "ok"
			switch {
			case stream.Error != "":
				status = stream.Error
			case len(stream.LaneErrors) > 0:
				status = fmt.Sprintf("%d rate(s) failed", len(stream.LaneErrors))
			}
			rows = append(rows, []string{
				res.Video,
				stream.Stream,
				strconv.Itoa(stream.Frames),
				strconv.Itoa(len(stream.Merged.Entries)),
				strconv.Itoa(stream.Merged.Rejected),
				status,
				elapsed,
			})
		}
	}
	return writeRows(cmd.OutOrStdout(), headers, rows, aligns)
}
