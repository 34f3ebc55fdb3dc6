package report

import (
	"io"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

// Writer renders a report to its output.
type Writer interface {
	Write(r *domain.AnalysisReport) (int, error)
}

// baseWriter provides the output shared by report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// NewWriter returns the writer for format ("markdown" or "json").
// Unknown formats fall back to JSON.
func NewWriter(format string, output io.Writer) Writer {
	switch format {
	case "markdown", "md":
		return NewMarkdownWriter(output)
	default:
		return NewJSONWriter(output, WithPrettyPrint())
	}
}
