// Package versioning defines workflow versions and task queue names.
package versioning

const (
	// Workflow versions for determinism tracking.
	RegionalAnalysisV1 = "regional-analysis-v1"

	// Task queues. Workflows run on QueueAnalysis; regional captures are
	// dispatched to QueueCapture so capture workers can be scaled separately.
	QueueAnalysis = "webpulse-analysis"
	QueueCapture  = "webpulse-capture"
)
