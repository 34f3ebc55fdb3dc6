package report

import (
	"encoding/json"
	"io"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

// JSONWriter outputs reports as JSON.
type JSONWriter struct {
	baseWriter
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) { w.indent = "  " }
}

// NewJSONWriter creates a JSONWriter that outputs to output.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the full report.
func (w *JSONWriter) Write(r *domain.AnalysisReport) (int, error) {
	return w.WriteValue(r)
}

// WriteOptimized outputs the reduced form of r.
func (w *JSONWriter) WriteOptimized(r *domain.AnalysisReport, maxRegions int) (int, error) {
	return w.WriteValue(Optimize(*r, maxRegions))
}

// WriteValue marshals any value with the writer's settings, followed by a newline.
func (w *JSONWriter) WriteValue(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent != "" {
		data, err = json.MarshalIndent(v, "", w.indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
