package report

import (
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/recipescout/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the run statistics to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(stats *model.RunStatistics) (int, error)
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the statistics to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(stats *model.RunStatistics) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(stats)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// strategyLabel turns a strategy name such as "category_probe" into
// "Category Probe". An empty name is shown as "-".
func strategyLabel(name string) string {
	if name == "" {
		return "-"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// siteStatus summarizes one site result in a word.
func siteStatus(r model.SiteRunResult) string {
	switch {
	case r.Skipped != "":
		return "skipped"
	case r.Succeeded():
		return "ok"
	default:
		return "failed"
	}
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
