package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/recipescout/internal/model"
)

// MarkdownWriter outputs run statistics in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the statistics in Markdown format.
func (w *MarkdownWriter) Write(stats *model.RunStatistics) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, stats)
	w.writeSummary(md, stats)
	w.writeStrategies(md, stats)
	w.writeSites(md, stats)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, stats *model.RunStatistics) {
	md.H1("Recipe Library Build Report")
	md.PlainText("")

	started := "-"
	if !stats.StartedAt.IsZero() {
		started = stats.StartedAt.Format("2006-01-02 15:04:05 MST")
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + stats.RunID + "`"},
			{"Started", started},
			{"Elapsed", elapsed(stats.ElapsedTime)},
		},
	})
	md.PlainText("")
}

// writeSummary writes the totals, a site outcome chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, stats *model.RunStatistics) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Sites", strconv.Itoa(stats.TotalSites)},
			{"✅ Succeeded", strconv.Itoa(stats.SuccessfulSites)},
			{"❌ Failed", strconv.Itoa(stats.FailedSites)},
			{"🌐 Browser", strconv.Itoa(stats.BrowserCrawlerSites)},
			{"Recipes", strconv.Itoa(stats.TotalRecipes)},
			{"Attempts", strconv.Itoa(stats.TotalAttempts)},
			{"Success rate", fmt.Sprintf("%.1f%%", stats.SuccessRate)},
			{"Recipes per minute", fmt.Sprintf("%.2f", stats.RecipesPerMinute)},
		},
	})
	md.PlainText("")

	if stats.SuccessfulSites+stats.FailedSites > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Site Outcomes"),
			piechart.WithShowData(true),
		)
		if stats.SuccessfulSites > 0 {
			chart.LabelAndIntValue("Succeeded", uint64(stats.SuccessfulSites)) //nolint:gosec
		}
		if stats.FailedSites > 0 {
			chart.LabelAndIntValue("Failed", uint64(stats.FailedSites)) //nolint:gosec
		}
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case stats.TotalSites == 0:
		md.Note("No sites were processed.")
	case stats.TotalRecipes == 0:
		md.Cautionf("No recipes were stored from %d site(s).", stats.TotalSites)
	case stats.FailedSites > 0:
		md.Warningf("%d of %d site(s) yielded no recipes.", stats.FailedSites, stats.TotalSites)
	default:
		md.Tip("Every site yielded recipes.")
	}
	md.PlainText("")
}

// writeStrategies writes how many sites each strategy served.
func (w *MarkdownWriter) writeStrategies(md *markdown.Markdown, stats *model.RunStatistics) {
	counts := make(map[string]int)
	for _, r := range stats.SiteResults {
		if r.Strategy != "" && r.Succeeded() {
			counts[r.Strategy]++
		}
	}
	if len(counts) == 0 {
		return
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	md.H2("Strategies")
	md.PlainText("")
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{strategyLabel(name), strconv.Itoa(counts[name])})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Strategy", "Sites"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSites writes the per-site table and error details.
func (w *MarkdownWriter) writeSites(md *markdown.Markdown, stats *model.RunStatistics) {
	md.H2("Sites")
	md.PlainText("")

	if len(stats.SiteResults) == 0 {
		md.PlainText("No sites processed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(stats.SiteResults))
	for i, r := range stats.SiteResults {
		browser := "-"
		if r.UsedBrowser {
			browser = "yes"
		}
		rows[i] = []string{
			truncateString(r.SiteID, 40),
			siteStatus(r),
			fmt.Sprintf("%d/%d", r.SuccessfulCount, r.AttemptCount),
			strategyLabel(r.Strategy),
			browser,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Site", "Status", "Recipes", "Strategy", "Browser"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range stats.SiteResults {
		if len(r.Errors) > 0 {
			md.Details(r.SiteID, strings.Join(r.Errors, "\n"))
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by recipescout*")
}
