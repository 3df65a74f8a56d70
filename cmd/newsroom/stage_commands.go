package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"newsroom/internal/articles"
	"newsroom/internal/daemonctl"
	"newsroom/internal/images"
	"newsroom/internal/pipeline"
	"newsroom/internal/stage"
)

const maxBatch = 100

// batchCount parses the optional N argument. Without one the configured
// batch size applies.
func batchCount(ctx *commandContext, args []string) (int, error) {
	if len(args) == 0 {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return 0, err
		}
		return cfg.Pipeline.BatchSize, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || n < 1 || n > maxBatch {
		return 0, fmt.Errorf("count must be a number between 1 and %d, got %q", maxBatch, args[0])
	}
	return n, nil
}

func busyHint(err error) error {
	if errors.Is(err, pipeline.ErrPipelineBusy) {
		return fmt.Errorf("%w; wait for it to finish or check `newsroom daemon status`", err)
	}
	return err
}

func newStageCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newFetchCommand(ctx),
		newWriteCommand(ctx),
		newSummarizeCommand(ctx),
		newImagesCommand(ctx),
		newPublishCommand(ctx),
		newRunCommand(ctx),
	}
}

// batchStageCommand builds a command running one stage over N items.
func batchStageCommand(ctx *commandContext, use, short string, run func(*cobra.Command, *pipeline.Orchestrator, int) (stage.Report, error)) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   use + " [N]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := batchCount(ctx, args)
			if err != nil {
				return err
			}
			return ctx.withPipeline(func(o *pipeline.Orchestrator) error {
				report, err := run(cmd, o, n)
				return printStageReport(cmd, report, asJSON, err)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the batch report as JSON")
	return cmd
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	return batchStageCommand(ctx, "fetch", "Fetch transcripts for queued videos",
		func(cmd *cobra.Command, o *pipeline.Orchestrator, n int) (stage.Report, error) {
			return o.FetchTranscripts(cmd.Context(), n)
		})
}

func newWriteCommand(ctx *commandContext) *cobra.Command {
	var opts articles.WriteOptions
	cmd := batchStageCommand(ctx, "write", "Write articles from cached transcripts",
		func(cmd *cobra.Command, o *pipeline.Orchestrator, n int) (stage.Report, error) {
			return o.WriteArticles(cmd.Context(), n, opts)
		})
	cmd.Flags().StringVar(&opts.JournalistID, "journalist", "", "Journalist id (defaults to creators.journalist)")
	cmd.Flags().StringVar(&opts.Tone, "tone", "", "Article tone")
	cmd.Flags().StringVar(&opts.ArticleType, "type", "", "Article type")
	return cmd
}

func newSummarizeCommand(ctx *commandContext) *cobra.Command {
	return batchStageCommand(ctx, "summarize", "Add bullet point summaries to articles",
		func(cmd *cobra.Command, o *pipeline.Orchestrator, n int) (stage.Report, error) {
			return o.Summarize(cmd.Context(), n)
		})
}

func newImagesCommand(ctx *commandContext) *cobra.Command {
	var overrides images.Overrides
	cmd := batchStageCommand(ctx, "images", "Generate featured art for summarized articles",
		func(cmd *cobra.Command, o *pipeline.Orchestrator, n int) (stage.Report, error) {
			return o.GenerateImages(cmd.Context(), n, overrides)
		})
	cmd.Flags().StringVar(&overrides.Medium, "medium", "", "Force the image medium")
	cmd.Flags().StringVar(&overrides.Aesthetic, "aesthetic", "", "Force the image aesthetic")
	cmd.Flags().StringVar(&overrides.Style, "style", "", "Force the image style")
	return cmd
}

func newPublishCommand(ctx *commandContext) *cobra.Command {
	return batchStageCommand(ctx, "publish", "Send finished articles to the publish sink",
		func(cmd *cobra.Command, o *pipeline.Orchestrator, n int) (stage.Report, error) {
			return o.Publish(cmd.Context(), n)
		})
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var viaDaemon bool
	cmd := &cobra.Command{
		Use:   "run [N]",
		Short: "Run every stage in order with batch size N",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := batchCount(ctx, args)
			if err != nil {
				return err
			}
			if viaDaemon {
				client := daemonctl.NewClient(ctx.configValue())
				report, err := client.RunPipeline(cmd.Context(), n)
				if err != nil {
					return err
				}
				return printRunReport(cmd, *report, asJSON, nil)
			}
			return ctx.withPipeline(func(o *pipeline.Orchestrator) error {
				report, err := o.RunFull(cmd.Context(), n)
				return printRunReport(cmd, report, asJSON, busyHint(err))
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the run report as JSON")
	cmd.Flags().BoolVar(&viaDaemon, "daemon", false, "Ask the running daemon to perform the run")
	return cmd
}
