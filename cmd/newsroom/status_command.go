package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"newsroom/internal/api"
	"newsroom/internal/daemonctl"
	"newsroom/internal/preflight"
	"newsroom/internal/stage"
	"newsroom/internal/store"
)

type statusReport struct {
	ConfigPath string             `json:"config_path"`
	Checks     []preflight.Result `json:"checks"`
	Stats      *store.Stats       `json:"stats,omitempty"`
	Daemon     *api.DaemonStatus  `json:"daemon,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var remote, asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check configuration, external tools and pipeline counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := statusReport{
				ConfigPath: ctx.configPath,
				Checks:     preflight.RunAll(cmd.Context(), cfg, preflight.Options{Remote: remote}),
			}
			if err := ctx.withStore(func(st *store.Store) error {
				stats, err := st.Stats(cmd.Context())
				if err != nil {
					return err
				}
				report.Stats = &stats
				return nil
			}); err != nil {
				report.Checks = append(report.Checks, preflight.Result{Name: "Database", Detail: err.Error()})
			}
			daemonStatus, err := daemonctl.NewClient(cfg).Status(cmd.Context())
			if err == nil {
				report.Daemon = daemonStatus
			} else if !errors.Is(err, daemonctl.ErrUnreachable) {
				report.Checks = append(report.Checks, preflight.Result{Name: "Daemon", Detail: err.Error()})
			}

			if asJSON {
				return writeJSON(cmd, report)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			printSection(out, "Configuration", []string{
				renderStatusLine("Config file", statusInfo, report.ConfigPath, colorize),
				renderStatusLine("Database", statusInfo, cfg.DatabasePath(), colorize),
				renderStatusLine("Channel", statusInfo, cfg.YouTube.ChannelID, colorize),
			}, colorize)

			records := make([]stage.Health, 0, len(report.Checks))
			for _, r := range report.Checks {
				records = append(records, r.Health())
			}
			printSection(out, "Checks", healthLines(records, colorize), colorize)

			if report.Daemon != nil {
				printSection(out, "Daemon", daemonLines(report.Daemon, colorize), colorize)
			} else {
				printSection(out, "Daemon", []string{renderStatusLine("Process", statusWarn, "not running", colorize)}, colorize)
			}

			if report.Stats != nil {
				fmt.Fprintln(out, renderTable([]string{"Counter", "Count"}, statsRows(*report.Stats), []columnAlignment{alignLeft, alignRight}))
			}

			if failed := preflight.Failed(report.Checks); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Also verify the text model with a live request")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
