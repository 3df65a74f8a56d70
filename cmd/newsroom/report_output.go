package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"newsroom/internal/pipeline"
	"newsroom/internal/stage"
)

var reportHeaders = []string{"Stage", "Attempted", "Succeeded", "Failed", "Skipped"}

var reportAligns = []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight}

func reportRow(r stage.Report) []string {
	return []string{
		r.Stage,
		strconv.Itoa(r.Attempted),
		strconv.Itoa(r.Succeeded),
		strconv.Itoa(r.Failed),
		strconv.Itoa(r.Skipped),
	}
}

func errorRows(reports ...stage.Report) [][]string {
	var rows [][]string
	for _, r := range reports {
		for _, e := range r.Errors {
			rows = append(rows, []string{r.Stage, e.Item, e.Kind, e.Message})
		}
	}
	return rows
}

func printErrors(cmd *cobra.Command, reports ...stage.Report) {
	rows := errorRows(reports...)
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Stage", "Item", "Kind", "Message"}, rows, nil))
}

// printStageReport renders a single batch report. err is returned unchanged
// after the partial report has been shown.
func printStageReport(cmd *cobra.Command, report stage.Report, asJSON bool, err error) error {
	if asJSON {
		if encErr := writeJSON(cmd, report); encErr != nil {
			return encErr
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(reportHeaders, [][]string{reportRow(report)}, reportAligns))
	printErrors(cmd, report)
	return err
}

func printRunReport(cmd *cobra.Command, report pipeline.RunReport, asJSON bool, err error) error {
	if asJSON {
		if encErr := writeJSON(cmd, report); encErr != nil {
			return encErr
		}
		return err
	}
	out := cmd.OutOrStdout()
	if report.RunID != "" {
		fmt.Fprintf(out, "Run %s (%d discovered)\n", report.RunID, report.Discovered)
	}
	rows := make([][]string, 0, len(report.Stages))
	for _, s := range report.Stages {
		rows = append(rows, reportRow(s))
	}
	printTable(cmd, reportHeaders, rows, reportAligns, "No stages ran")
	printErrors(cmd, report.Stages...)
	if !report.FinishedAt.IsZero() && !report.StartedAt.IsZero() {
		fmt.Fprintf(out, "Finished in %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	}
	return err
}
