package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// Table renders r as a set of plain-text tables.
func Table(r Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Audit %s (%s, %s)\n", r.AuditID, r.Status, formatMillis(r.TotalExecutionTime))
	b.WriteString(renderTable(
		[]string{"Files", "Total Size", "Risk"},
		[][]string{{strconv.Itoa(r.Summary.TotalFiles), r.Summary.TotalSize, string(r.Summary.RiskLevel)}},
		[]columnAlignment{alignRight, alignRight, alignLeft},
	))
	b.WriteString("\n")

	if len(r.Summary.FileTypes) > 0 {
		rows := make([][]string, 0, len(r.Summary.FileTypes))
		for _, ft := range r.Summary.FileTypes {
			rows = append(rows, []string{ft.Type, strconv.Itoa(ft.Count), strconv.Itoa(ft.Percentage) + "%"})
		}
		b.WriteString(renderTable([]string{"Type", "Count", "Share"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}))
		b.WriteString("\n")
	}

	agents := r.AgentReports.All()
	rows := make([][]string, 0, len(agents))
	for _, a := range agents {
		status := "skipped"
		if a.Ran() {
			status = string(a.Status)
		}
		rows = append(rows, []string{a.Name, status, formatMillis(a.ExecutionTime)})
	}
	b.WriteString(renderTable([]string{"Agent", "Status", "Time"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	b.WriteString("\n")

	if len(r.Findings) > 0 {
		rows = rows[:0]
		for _, f := range r.Findings {
			rows = append(rows, []string{string(f.Type), string(f.Severity), f.File, f.Message})
		}
		b.WriteString(renderTable([]string{"Type", "Severity", "File", "Message"}, rows, nil))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderTable renders rows under headers in the report table style, all
// columns left aligned.
func RenderTable(headers []string, rows [][]string) string {
	return renderTable(headers, rows, nil)
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: align})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
