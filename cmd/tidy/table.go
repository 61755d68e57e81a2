package main

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tidy/internal/report"
)

// renderSummary draws the end-of-run counts as a two-column table for
// interactive terminals. Byte rows only appear for dedupe runs that freed
// (or would free) space.
func renderSummary(rep *report.Report) string {
	s := rep.Summary()

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Footer = text.FormatDefault
	tw.SetTitle(summaryTitle(rep))
	tw.AppendHeader(table.Row{"Outcome", "Files"})
	tw.AppendRows([]table.Row{
		{"Applied", strconv.Itoa(s.Applied)},
		{"Dry-run", strconv.Itoa(s.DryRun)},
		{"Skipped", strconv.Itoa(s.Skipped)},
		{"Failed", strconv.Itoa(s.Failed)},
	})
	if s.Reclaimed > 0 {
		tw.AppendFooter(table.Row{"Reclaimed", humanize.Bytes(uint64(s.Reclaimed))})
	}
	if s.WouldReclaim > 0 {
		tw.AppendFooter(table.Row{"Would reclaim", humanize.Bytes(uint64(s.WouldReclaim))})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft, AlignFooter: text.AlignRight},
	})
	return tw.Render() + "\n"
}

func summaryTitle(rep *report.Report) string {
	title := "tidy " + rep.Mode
	if rep.DryRun {
		title += " (dry-run)"
	}
	return title
}
