package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"newsroom/internal/logging"
	"newsroom/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow, daemonLog bool
	var filter []string
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent log lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := logging.LogFilePath(cfg)
			if daemonLog {
				path = filepath.Join(cfg.Paths.LogDir, "newsroomd.log")
			}
			out := cmd.OutOrStdout()
			recent, offset, err := logs.Last(path, lines, logs.Filter(filter))
			if err != nil {
				return err
			}
			for _, line := range recent {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(recent) == 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "No log lines in %s\n", path)
				}
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, 250*time.Millisecond, logs.Filter(filter), func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().BoolVar(&daemonLog, "daemon", false, "Read the newsroomd log instead of the CLI log")
	cmd.Flags().StringSliceVar(&filter, "grep", nil, "Only show lines containing this text (repeatable)")
	return cmd
}
