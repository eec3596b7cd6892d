package download

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// formatResult renders a download outcome for agent consumption. Unknown
// formats fall back to markdown.
func formatResult(r Result, format string) string {
	switch strings.ToLower(format) {
	case "json":
		raw, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Sprintf("marshal error: %v", err)
		}
		return string(raw)

	case "text":
		parts := []string{
			"URL: " + r.URL,
			"File Path: " + r.FilePath,
			"Status: " + status(r.Success),
			fmt.Sprintf("Duration: %.2fs", r.DurationSeconds),
			"Timestamp: " + r.Timestamp,
		}
		if r.Success {
			parts = append(parts, fmt.Sprintf("File Size: %d bytes", r.FileSizeBytes))
		}
		if r.ErrorMessage != "" {
			parts = append(parts, "Error: "+r.ErrorMessage)
		}
		return strings.Join(parts, "\n")

	default: // markdown
		var b strings.Builder
		b.WriteString("# File Download\n")
		fmt.Fprintf(&b, "**URL:** `%s`\n", r.URL)
		fmt.Fprintf(&b, "**File Path:** `%s`\n", r.FilePath)
		fmt.Fprintf(&b, "**Status:** %s\n", status(r.Success))
		fmt.Fprintf(&b, "**Duration:** %.2fs\n", r.DurationSeconds)
		fmt.Fprintf(&b, "**Timestamp:** %s\n", r.Timestamp)
		if r.Success {
			fmt.Fprintf(&b, "**File Size:** %d bytes (%s)\n", r.FileSizeBytes, humanize.IBytes(uint64(r.FileSizeBytes)))
		}
		if r.ErrorMessage != "" {
			b.WriteString("\n## Error Details\n")
			fmt.Fprintf(&b, "**Kind:** `%s`\n", r.ErrorKind)
			fmt.Fprintf(&b, "```\n%s\n```\n", r.ErrorMessage)
		}
		return b.String()
	}
}

func formatCapabilities(workspace string, maxFileSize int64) string {
	var b strings.Builder
	b.WriteString("# Download Service Capabilities\n\n")
	fmt.Fprintf(&b, "**Workspace:** `%s`\n\n", workspace)
	b.WriteString("## Supported URL Schemes\n- http://\n- https://\n\n")
	b.WriteString("## Supported Output Formats\n- markdown\n- json\n- text\n\n")
	b.WriteString("## Configuration\n")
	fmt.Fprintf(&b, "- **Default Timeout:** %s\n", defaultTimeout)
	fmt.Fprintf(&b, "- **Max File Size:** %d bytes (%s)\n", maxFileSize, humanize.IBytes(uint64(maxFileSize)))
	b.WriteString("\n## Safety Features\n")
	b.WriteString("- URL validation\n- Workspace-anchored output paths\n- File size ceiling\n- Overwrite protection\n- Timeout controls\n")
	return b.String()
}

func status(ok bool) string {
	if ok {
		return "SUCCESS"
	}
	return "FAILED"
}
