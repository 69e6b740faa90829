// Package format renders documents, stats, and profiles for the
// one-shot commands: an aligned text table by default, or JSON/YAML
// for scripting.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/docpilot-cli/docpilot/internal/api"
)

// Output selects an encoding for command results.
type Output string

const (
	OutputTable Output = "table"
	OutputJSON  Output = "json"
	OutputYAML  Output = "yaml"
)

// ParseOutput validates an -o flag value.
func ParseOutput(s string) (Output, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return OutputTable, nil
	case "json":
		return OutputJSON, nil
	case "yaml", "yml":
		return OutputYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected table, json, or yaml)", s)
	}
}

// Encode writes v to w as JSON or YAML. Table output has per-type
// renderers below.
func Encode(w io.Writer, output Output, v any) error {
	switch output {
	case OutputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case OutputYAML:
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(v)
	default:
		return fmt.Errorf("no generic encoder for output %q", output)
	}
}

// DocumentTable renders a page of documents as an aligned table.
func DocumentTable(w io.Writer, page *api.Page[api.Document]) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILENAME\tSTATUS\tSIZE\tUPLOADED\tDETAIL")
	for _, doc := range page.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			doc.ID,
			doc.OriginalFilename,
			doc.Status,
			HumanSize(doc.FileSize),
			doc.CreatedAt.Format("2006-01-02 15:04"),
			documentDetail(&doc),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if page.TotalPages > 1 {
		fmt.Fprintf(w, "\nPage %d of %d (%d documents total)\n", page.Page, page.TotalPages, page.Total)
	}
	return nil
}

// documentDetail is a one-line summary of processing outcome.
func documentDetail(doc *api.Document) string {
	switch {
	case doc.Status == api.StatusFailed && doc.ErrorMessage != "":
		return doc.ErrorMessage
	case doc.ExtractedMetadata == nil:
		return ""
	case doc.ExtractedMetadata.DocumentType != "":
		detail := doc.ExtractedMetadata.DocumentType
		if doc.ExtractedMetadata.PageCount > 0 {
			detail += fmt.Sprintf(", %d pages", doc.ExtractedMetadata.PageCount)
		}
		return detail
	case doc.ExtractedMetadata.Summary != "":
		return Truncate(doc.ExtractedMetadata.Summary, 60)
	default:
		return ""
	}
}

// StatsTable renders aggregate counts.
func StatsTable(w io.Writer, stats api.CollectionStats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOTAL\tPENDING\tPROCESSING\tCOMPLETED\tFAILED")
	fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\n",
		stats.Total, stats.Pending, stats.Processing, stats.Completed, stats.Failed)
	return tw.Flush()
}

// ProfileTable renders the authenticated user.
func ProfileTable(w io.Writer, profile *api.Profile) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Email:\t%s\n", profile.Email)
	if profile.FullName != "" {
		fmt.Fprintf(tw, "Name:\t%s\n", profile.FullName)
	}
	if profile.Role != "" {
		fmt.Fprintf(tw, "Role:\t%s\n", profile.Role)
	}
	fmt.Fprintf(tw, "Tenant:\t%d\n", profile.TenantID)
	if !profile.CreatedAt.IsZero() {
		fmt.Fprintf(tw, "Member since:\t%s\n", profile.CreatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

// HumanSize formats a byte count for display.
func HumanSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// Truncate shortens s to at most n runes, appending an ellipsis when
// anything was cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
