package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"newsroom/internal/api"
	"newsroom/internal/store"
)

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	transcriptCmd := &cobra.Command{
		Use:     "transcript",
		Aliases: []string{"transcripts"},
		Short:   "Inspect the transcript cache",
	}

	transcriptCmd.AddCommand(newTranscriptListCommand(ctx))
	transcriptCmd.AddCommand(newTranscriptShowCommand(ctx))
	transcriptCmd.AddCommand(newTranscriptDeleteCommand(ctx))

	return transcriptCmd
}

func newTranscriptListCommand(ctx *commandContext) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached transcripts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				items, err := st.ListTranscripts(cmd.Context(), limit, offset)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(items))
				for _, t := range items {
					rows = append(rows, []string{
						t.VideoID,
						t.Source,
						t.Language,
						strconv.Itoa(len(t.Content)),
						t.FetchedAt.Local().Format(time.DateTime),
					})
				}
				printTable(cmd, []string{"Video", "Source", "Language", "Chars", "Fetched"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}, "No transcripts cached")
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum transcripts to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Skip this many transcripts")
	return cmd
}

func newTranscriptShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show VIDEO_ID",
		Short: "Print a cached transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				t, err := st.GetTranscript(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if t == nil {
					return fmt.Errorf("no transcript cached for %s", args[0])
				}
				if asJSON {
					return writeJSON(cmd, api.FromTranscript(t, true))
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Video:    %s\n", t.VideoID)
				fmt.Fprintf(out, "Source:   %s\n", t.Source)
				if t.Language != "" {
					fmt.Fprintf(out, "Language: %s\n", t.Language)
				}
				fmt.Fprintf(out, "Fetched:  %s\n\n", t.FetchedAt.Local().Format(time.DateTime))
				fmt.Fprintln(out, t.Content)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newTranscriptDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete VIDEO_ID",
		Short: "Remove a cached transcript so it can be fetched again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				removed, err := st.DeleteTranscript(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("no transcript cached for %s", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted transcript %s\n", args[0])
				return nil
			})
		},
	}
}
