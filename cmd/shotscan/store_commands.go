package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newStoreCommand(ctx *commandContext) *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect and prune the feature store",
	}
	storeCmd.AddCommand(newStoreListCommand(ctx))
	storeCmd.AddCommand(newStoreStatsCommand(ctx))
	storeCmd.AddCommand(newStoreDeleteCommand(ctx))
	return storeCmd
}

func newStoreListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list [VIDEO...]",
		Short: "List stored videos and their feature streams",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			videos := args
			if len(videos) == 0 {
				if videos, err = store.Videos(cmd.Context()); err != nil {
					return err
				}
			}

			type entry struct {
				Video     string `json:"video"`
				Stream    string `json:"stream"`
				Frames    int    `json:"frames"`
				Dimension int    `json:"dimension"`
				First     int    `json:"first_frame"`
				Last      int    `json:"last_frame"`
			}
			var entries []entry
			for _, video := range videos {
				streams, err := store.Streams(cmd.Context(), video)
				if err != nil {
					return err
				}
				for _, s := range streams {
					entries = append(entries, entry{video, s.Name, s.Frames, s.Dimension, s.FirstFrame, s.LastFrame})
				}
			}

			if jsonOutput {
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Feature store is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Video, e.Stream, strconv.Itoa(e.Frames), strconv.Itoa(e.Dimension), strconv.Itoa(e.First), strconv.Itoa(e.Last)})
			}
			return writeRows(cmd.OutOrStdout(),
				[]string{"Video", "Stream", "Frames", "Dim", "First", "Last"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print as JSON")
	return cmd
}

func newStoreStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show feature store totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, stats)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Store:    %s\n", store.Path())
			fmt.Fprintf(out, "Videos:   %d\n", stats.Videos)
			fmt.Fprintf(out, "Streams:  %d\n", stats.Streams)
			fmt.Fprintf(out, "Records:  %s\n", humanize.Comma(int64(stats.Records)))
			fmt.Fprintf(out, "Vectors:  %s\n", humanize.Bytes(uint64(stats.PayloadBytes)))
			fmt.Fprintf(out, "On disk:  %s\n", humanize.Bytes(uint64(stats.FileBytes)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print as JSON")
	return cmd
}

func newStoreDeleteCommand(ctx *commandContext) *cobra.Command {
	var stream string
	cmd := &cobra.Command{
		Use:   "delete VIDEO",
		Short: "Remove a video's features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			removed, err := store.Delete(cmd.Context(), args[0], stream)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s records for %s\n", humanize.Comma(removed), args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&stream, "stream", "", "Only remove this stream")
	return cmd
}
