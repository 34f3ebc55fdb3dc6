package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

// MarkdownWriter renders reports as GitHub-flavored markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write renders r.
func (w *MarkdownWriter) Write(r *domain.AnalysisReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, r)
	w.writeAlert(md, r)
	w.writeRegions(md, r)
	w.writeScores(md, r)
	w.writeIssues(md, r)
	w.writeComparisons(md, r)
	w.writeRecommendations(md, r)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, r *domain.AnalysisReport) {
	md.H1("Multi-Region Analysis Report")
	md.PlainText("")

	best, worst := r.BestRegion, r.WorstRegion
	if best == "" {
		best, worst = "-", "-"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", "`" + r.URL + "`"},
			{"Analyzed", r.Timestamp.Format("2006-01-02 15:04:05 MST")},
			{"Regions", fmt.Sprintf("%d requested, %d succeeded", len(r.RequestedRegions), len(r.SucceededRegions()))},
			{"Best Region", best},
			{"Worst Region", worst},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, r *domain.AnalysisReport) {
	failed := r.FailedRegions()
	switch worst := domain.MaxSeverity(r.Issues); {
	case len(r.SucceededRegions()) == 0:
		md.Cautionf("No region produced a capture. %d region(s) failed.", len(failed))
	case worst == domain.SeverityCritical:
		md.Cautionf("Critical issues detected in %s.", strings.Join(regionsAt(r.Issues, domain.SeverityCritical), ", "))
	case worst == domain.SeverityHigh:
		md.Warningf("High severity issues detected in %s.", strings.Join(regionsAt(r.Issues, domain.SeverityHigh), ", "))
	case len(failed) > 0:
		md.Importantf("Partial results: %s could not be captured.", strings.Join(failed, ", "))
	case len(r.Issues) > 0:
		md.Note("Only low and medium severity issues detected.")
	default:
		md.Tip("No issues detected in any region.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeRegions(md *markdown.Markdown, r *domain.AnalysisReport) {
	md.H2("Regions")
	md.PlainText("")

	rows := make([][]string, 0, len(r.RegionResults))
	for _, res := range r.RegionResults {
		status, load, detail := "✅ Captured", "-", "-"
		if res.Succeeded {
			load = fmt.Sprintf("%.0f ms", res.Timing.LoadTimeMs)
			if res.ScreenshotRef != "" {
				detail = "`" + res.ScreenshotRef + "`"
			}
		} else if res.Error != nil {
			status = "❌ " + string(res.Error.Kind)
			detail = truncateString(res.Error.Message, 80)
		}
		location := res.Location
		if location == "" {
			location = "-"
		}
		rows = append(rows, []string{res.Region, location, status, load, detail})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Region", "Location", "Status", "Load Time", "Screenshot / Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeScores(md *markdown.Markdown, r *domain.AnalysisReport) {
	md.H2("Performance")
	md.PlainText("")

	if len(r.Scores) == 0 {
		md.PlainText("No region produced a score.")
		md.PlainText("")
		return
	}

	ranks := make(map[string]int, len(r.Ranking))
	for _, rr := range r.Ranking {
		ranks[rr.Region] = rr.Rank
	}
	rows := make([][]string, 0, len(r.Scores))
	for _, s := range r.Scores {
		rank := "-"
		if n, ok := ranks[s.Region]; ok {
			rank = strconv.Itoa(n)
		}
		deductions := "-"
		if len(s.Deductions) > 0 {
			parts := make([]string, len(s.Deductions))
			for i, d := range s.Deductions {
				parts[i] = fmt.Sprintf("%s (-%g)", d.Reason, d.Amount)
			}
			deductions = strings.Join(parts, "; ")
		}
		rows = append(rows, []string{rank, s.Region, strconv.Itoa(s.Score), deductions})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Region", "Score", "Deductions"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, r *domain.AnalysisReport) {
	md.H2("Issues")
	md.PlainText("")

	if len(r.Issues) == 0 {
		md.PlainText("No issues detected.")
		md.PlainText("")
		return
	}

	w.writeIssueChart(md, r.Issues)

	grouped := domain.IssuesByRegion(r.Issues)
	for _, region := range r.SucceededRegions() {
		issues := grouped[region]
		if len(issues) == 0 {
			continue
		}
		md.PlainText("### " + region)
		md.PlainText("")
		rows := make([][]string, len(issues))
		for i, is := range issues {
			evidence := is.Evidence
			if evidence == "" {
				evidence = "-"
			}
			rows[i] = []string{severityLabel(is.Severity), string(is.Type), truncateString(is.Message, 90), truncateString(evidence, 60)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Severity", "Type", "Message", "Evidence"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeIssueChart(md *markdown.Markdown, issues []domain.Issue) {
	counts := make(map[domain.IssueType]uint64)
	for _, is := range issues {
		counts[is.Type]++
	}
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issues by Type"),
		piechart.WithShowData(true),
	)
	for _, t := range domain.IssueTypes {
		if counts[t] > 0 {
			chart.LabelAndIntValue(string(t), counts[t])
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeComparisons(md *markdown.Markdown, r *domain.AnalysisReport) {
	if len(r.Comparisons) == 0 {
		return
	}
	md.H2("Regional Comparison")
	md.PlainText("")

	rows := make([][]string, len(r.Comparisons))
	for i, c := range r.Comparisons {
		diffs := "-"
		if len(c.Differences) > 0 {
			diffs = strings.Join(c.Differences, "; ")
		}
		rows[i] = []string{c.RegionA + " / " + c.RegionB, strconv.Itoa(c.SimilarityPercent) + "%", diffs}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Pair", "Similarity", "Differences"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeRecommendations(md *markdown.Markdown, r *domain.AnalysisReport) {
	md.H2("Recommendations")
	md.PlainText("")
	if len(r.Recommendations) == 0 {
		md.PlainText("No recommendations.")
		md.PlainText("")
		return
	}
	md.BulletList(r.Recommendations...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by webpulse*")
}

func regionsAt(issues []domain.Issue, sev domain.Severity) []string {
	seen := map[string]bool{}
	var out []string
	for _, is := range issues {
		if is.Severity == sev && !seen[is.Region] {
			seen[is.Region] = true
			out = append(out, is.Region)
		}
	}
	return out
}

func severityLabel(s domain.Severity) string {
	switch s {
	case domain.SeverityCritical:
		return "🔴 critical"
	case domain.SeverityHigh:
		return "🟠 high"
	case domain.SeverityMedium:
		return "🟡 medium"
	default:
		return "🔵 low"
	}
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
