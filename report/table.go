package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// WriteSummaryTable prints rows as a console table, styled green when every row completed and
// red otherwise.
func WriteSummaryTable(w io.Writer, title string, rows []Row) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)

	t.AppendHeader(table.Row{"#", "Scenario", "Result", "Duration", "Capture"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Scenario", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
	})

	var completed, failed int
	var total time.Duration
	for i, row := range rows {
		capture := row.Capture.File
		if capture == "" {
			capture = "-"
		}
		t.AppendRow(table.Row{i + 1, row.Name, row.Status, formatDuration(row.Duration), capture})
		if row.Status == StatusCompleted {
			completed++
		} else {
			failed++
		}
		total += row.Duration
	}

	overall := "PASS"
	if failed > 0 {
		overall = "FAIL"
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}
	t.AppendFooter(table.Row{
		"",
		fmt.Sprintf("%d completed, %d failed", completed, failed),
		overall,
		formatDuration(total),
		"",
	})
	t.Render()
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
