package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"newsroom/internal/pipeline"
	"newsroom/internal/store"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the video id queue",
	}

	queueCmd.AddCommand(newQueueBuildCommand(ctx))
	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueCleanupCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))

	return queueCmd
}

func newQueueBuildCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "build [N]",
		Short: "Discover up to N new channel videos and queue them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := batchCount(ctx, args)
			if err != nil {
				return err
			}
			return ctx.withPipeline(func(o *pipeline.Orchestrator) error {
				added, err := o.Discover(cmd.Context(), n)
				if err != nil {
					return err
				}
				size, err := o.Store().QueueSize(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %d new videos (queue size %d)\n", added, size)
				return nil
			})
		},
	}
}

func statsRows(stats store.Stats) [][]string {
	entries := []struct {
		label string
		value int
	}{
		{"Queued", stats.Queued},
		{"Queued (already cached)", stats.QueueStaleCached},
		{"Transcripts", stats.Transcripts},
		{"Awaiting article", stats.AwaitingArticle},
		{"Articles", stats.Articles},
		{"Ad-hoc articles", stats.AdHocArticles},
		{"Awaiting summary", stats.AwaitingSummary},
		{"Awaiting art", stats.AwaitingArt},
		{"With art", stats.WithArt},
		{"Awaiting publish", stats.AwaitingPublish},
		{"Published", stats.Published},
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.label, strconv.Itoa(e.value)})
	}
	return rows
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show queue and stage counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				stats, err := st.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, stats)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Counter", "Count"}, statsRows(stats), []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output counters as JSON")
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued video ids in fetch order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				refs, err := st.ListQueue(cmd.Context(), limit)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(refs))
				for _, ref := range refs {
					rows = append(rows, []string{
						strconv.FormatInt(ref.Seq, 10),
						ref.VideoID,
						ref.Source,
						ref.DiscoveredAt.Local().Format(time.DateTime),
					})
				}
				printTable(cmd, []string{"Seq", "Video", "Source", "Discovered"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}, "Queue is empty")
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum entries to list")
	return cmd
}

func newQueueCleanupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Drop queued ids whose transcript is already cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				removed, err := st.CleanupQueue(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached entries\n", removed)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every queued id",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				removed, err := st.ClearQueue(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d queue entries\n", removed)
				return nil
			})
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove VIDEO_ID...",
		Short: "Remove specific ids from the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				removed, err := st.RemoveFromQueue(cmd.Context(), args...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d queue entries\n", removed)
				return nil
			})
		},
	}
}
