package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/dhriti-exe/MIS-Portal-CDAC/internal/utils"
)

func successf(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(os.Stdout, "✓ "+format+"\n", args...)
}

func warnf(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}

func infof(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}

// statusDot colors backend status strings for table cells.
func statusDot(status string) string {
	switch status {
	case "approved", "paid", "issued", "active", "Y":
		return color.GreenString(status)
	case "rejected", "failed", "blocked":
		return color.RedString(status)
	case "pending", "unpaid":
		return color.YellowString(status)
	default:
		return status
	}
}

// renderTable prints headers and rows in the borderless style shared by the
// list commands.
func renderTable(headers []string, rows [][]string) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header(headers)
	_ = table.Bulk(rows)
	_ = table.Render()
}

func orDash(s *string) string {
	if v := utils.Value(s); v != "" {
		return v
	}
	return "-"
}
