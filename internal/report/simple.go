package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/recipescout/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether the site table is shown for runs without sites.
	showEmpty bool

	// verbose lists the errors of every site.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with per-site errors.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the statistics in human-readable format.
func (w *SimpleWriter) Write(stats *model.RunStatistics) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, stats)
	w.writeSummary(&sb, stats)
	w.writeSites(&sb, stats)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, stats *model.RunStatistics) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     RECIPE LIBRARY BUILD REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Run ID:         %s\n", stats.RunID)
	if !stats.StartedAt.IsZero() {
		fmt.Fprintf(sb, "Started:        %s\n", stats.StartedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(sb, "Elapsed:        %s\n", elapsed(stats.ElapsedTime))
	sb.WriteString("\n")
}

// writeSummary writes the totals.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, stats *model.RunStatistics) {
	section(sb, "SUMMARY")

	fmt.Fprintf(sb, "  Sites:          %d (%d succeeded, %d failed)\n", stats.TotalSites, stats.SuccessfulSites, stats.FailedSites)
	fmt.Fprintf(sb, "  Browser sites:  %d\n", stats.BrowserCrawlerSites)
	fmt.Fprintf(sb, "  Recipes:        %d of %d attempts\n", stats.TotalRecipes, stats.TotalAttempts)
	fmt.Fprintf(sb, "  Success rate:   %.1f%%\n", stats.SuccessRate)
	fmt.Fprintf(sb, "  Recipes/minute: %.2f\n", stats.RecipesPerMinute)
	sb.WriteString("\n")
}

// writeSites writes one line per site, failures with their errors when verbose.
func (w *SimpleWriter) writeSites(sb *strings.Builder, stats *model.RunStatistics) {
	if len(stats.SiteResults) == 0 && !w.showEmpty {
		return
	}

	section(sb, "SITES")

	if len(stats.SiteResults) == 0 {
		sb.WriteString("  No sites processed\n\n")
		return
	}

	for _, r := range stats.SiteResults {
		var flags []string
		if r.UsedFallbackStrategy {
			flags = append(flags, "fallback")
		}
		if r.UsedBrowser {
			flags = append(flags, "browser")
		}
		if r.Skipped != "" {
			flags = append(flags, r.Skipped)
		}

		fmt.Fprintf(sb, "  [%-7s] %-30s %d/%d  %s",
			siteStatus(r), truncateString(r.SiteID, 30), r.SuccessfulCount, r.AttemptCount, strategyLabel(r.Strategy))
		if len(flags) > 0 {
			fmt.Fprintf(sb, " (%s)", strings.Join(flags, ", "))
		}
		sb.WriteString("\n")

		if w.verbose {
			for _, e := range r.Errors {
				fmt.Fprintf(sb, "      - %s\n", e)
			}
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by recipescout\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// elapsed formats seconds as a rounded duration such as "1m30s".
func elapsed(seconds float64) string {
	return (time.Duration(seconds * float64(time.Second))).Round(100 * time.Millisecond).String()
}
