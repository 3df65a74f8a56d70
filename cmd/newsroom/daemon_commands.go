package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"newsroom/internal/api"
	"newsroom/internal/daemonctl"
)

const daemonBinary = "newsroomd"

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Control the newsroomd background service",
	}
	daemonCmd.AddCommand(newDaemonStartCommand(ctx))
	daemonCmd.AddCommand(newDaemonStopCommand(ctx))
	daemonCmd.AddCommand(newDaemonStatusCommand(ctx))
	return daemonCmd
}

func newDaemonStartCommand(ctx *commandContext) *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start newsroomd unless it is already running",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := daemonctl.NewClient(ctx.configValue())
			result, err := daemonctl.EnsureStarted(cmd.Context(), client,
				daemonctl.CurrentExecutableSibling(daemonBinary),
				daemonctl.LaunchOptions{ConfigPath: ctx.configPath, LogLevel: ctx.logLevelFlag},
				wait,
			)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch result.State {
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintf(out, "Daemon already running (pid %d)\n", result.PID)
			default:
				fmt.Fprintf(out, "Daemon started (pid %d)\n", result.PID)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 10*time.Second, "How long to wait for the daemon API")
	return cmd
}

func newDaemonStopCommand(ctx *commandContext) *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop newsroomd",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := daemonctl.NewClient(ctx.configValue())
			wasRunning, err := daemonctl.Stop(cmd.Context(), client, wait)
			if err != nil {
				return err
			}
			if !wasRunning {
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopped")
			return nil
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 10*time.Second, "How long to wait for shutdown")
	return cmd
}

func newDaemonStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the daemon schedule, last run and counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := daemonctl.NewClient(ctx.configValue())
			status, err := client.Status(cmd.Context())
			if errors.Is(err, daemonctl.ErrUnreachable) {
				if asJSON {
					return writeJSON(cmd, api.DaemonStatus{})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, status)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printSection(out, "Daemon", daemonLines(status, colorize), colorize)
			if status.LastRun != nil {
				return printRunReport(cmd, *status.LastRun, false, nil)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func daemonLines(status *api.DaemonStatus, colorize bool) []string {
	lines := []string{
		renderStatusLine("Process", statusOK, fmt.Sprintf("running (pid %d)", status.PID), colorize),
		renderStatusLine("Database", statusInfo, status.DatabasePath, colorize),
		renderStatusLine("Schedule", statusInfo, status.Schedule, colorize),
	}
	if status.NextRun != "" {
		lines = append(lines, renderStatusLine("Next run", statusInfo, status.NextRun, colorize))
	}
	lines = append(lines, renderStatusLine("Queue", statusInfo,
		fmt.Sprintf("%d queued, %d awaiting article, %d awaiting publish",
			status.Stats.Queued, status.Stats.AwaitingArticle, status.Stats.AwaitingPublish), colorize))
	if status.LastRun != nil {
		kind := statusOK
		if status.LastRun.Error != "" || status.LastRun.Failed() > 0 {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine("Last run", kind, status.LastRun.Summary(), colorize))
	}
	return lines
}
