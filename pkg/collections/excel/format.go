package excel

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
)

// formatExtraction renders the extracted sheets for agent consumption.
// Unknown formats fall back to markdown.
func formatExtraction(e *extraction, format string) string {
	switch strings.ToLower(format) {
	case "json":
		return renderJSON(e)
	case "csv":
		return renderCSV(e)
	case "text":
		return renderText(e)
	default:
		return renderMarkdown(e)
	}
}

func renderMarkdown(e *extraction) string {
	var b strings.Builder
	b.WriteString("# Workbook Content\n")
	for _, s := range e.Sheets {
		fmt.Fprintf(&b, "\n## Sheet: %s\n", s.Name)
		switch {
		case s.Err != "":
			fmt.Fprintf(&b, "*Error: %s*\n", s.Err)
		case len(s.Rows) == 0:
			b.WriteString("*Empty sheet*\n")
		default:
			writeTable(&b, s.Rows)
			fmt.Fprintf(&b, "\n*%d rows x %d columns, %d non-empty cells*\n",
				len(s.Rows), len(s.Rows[0]), s.NonEmptyCells)
		}
	}
	return b.String()
}

// writeTable emits a pipe table with spreadsheet column letters as the
// header row, so the cell data itself is never promoted to a header.
func writeTable(b *strings.Builder, rows [][]string) {
	width := len(rows[0])
	header := make([]string, width)
	rule := make([]string, width)
	for i := 0; i < width; i++ {
		header[i] = columnLabel(i)
		rule[i] = "---"
	}
	fmt.Fprintf(b, "| %s |\n", strings.Join(header, " | "))
	fmt.Fprintf(b, "| %s |\n", strings.Join(rule, " | "))
	for _, row := range rows {
		cells := make([]string, width)
		for i, cell := range row {
			cells[i] = strings.ReplaceAll(cell, "|", "\\|")
		}
		fmt.Fprintf(b, "| %s |\n", strings.Join(cells, " | "))
	}
}

func renderJSON(e *extraction) string {
	sheets := make(map[string]any, len(e.Sheets))
	for _, s := range e.Sheets {
		if s.Err != "" {
			sheets[s.Name] = map[string]any{"error": s.Err}
			continue
		}
		cols := 0
		if len(s.Rows) > 0 {
			cols = len(s.Rows[0])
		}
		sheets[s.Name] = map[string]any{
			"rows":            len(s.Rows),
			"columns":         cols,
			"non_empty_cells": s.NonEmptyCells,
			"data":            s.Rows,
		}
	}
	raw, err := json.MarshalIndent(map[string]any{
		"total_sheets": e.TotalSheets,
		"sheets":       sheets,
	}, "", "  ")
	if err != nil {
		return fmt.Sprintf("marshal error: %v", err)
	}
	return string(raw)
}

func renderCSV(e *extraction) string {
	var b strings.Builder
	for i, s := range e.Sheets {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "# Sheet: %s\n", s.Name)
		if s.Err != "" {
			fmt.Fprintf(&b, "# Error: %s\n", s.Err)
			continue
		}
		w := csv.NewWriter(&b)
		w.WriteAll(s.Rows)
		w.Flush()
	}
	return b.String()
}

func renderText(e *extraction) string {
	var b strings.Builder
	for i, s := range e.Sheets {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Sheet: %s\n", s.Name)
		if s.Err != "" {
			fmt.Fprintf(&b, "Error: %s\n", s.Err)
			continue
		}
		for _, row := range s.Rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteString("\n")
		}
	}
	return b.String()
}
