// Package queues defines per-queue worker configuration for task-queue partitioning.
package queues

import (
	"fmt"
	"strings"

	"go.temporal.io/sdk/worker"

	"github.com/babdulhakim2/webpulse/internal/temporal/versioning"
)

// QueueConfig holds worker options for a single task queue.
type QueueConfig struct {
	Name    string
	Options worker.Options
}

// DefaultConfigs returns the standard per-queue worker options.
//
//   - QueueAnalysis: short workflow tasks plus score export, modest concurrency
//   - QueueCapture: long-running regional captures, one slot per region in flight
func DefaultConfigs() map[string]QueueConfig {
	return map[string]QueueConfig{
		versioning.QueueAnalysis: {
			Name: versioning.QueueAnalysis,
			Options: worker.Options{
				MaxConcurrentActivityExecutionSize:     5,
				MaxConcurrentWorkflowTaskExecutionSize: 10,
			},
		},
		versioning.QueueCapture: {
			Name: versioning.QueueCapture,
			Options: worker.Options{
				MaxConcurrentActivityExecutionSize:     25,
				MaxConcurrentWorkflowTaskExecutionSize: 1,
			},
		},
	}
}

// ParseQueues resolves queue names (e.g. ["analysis", "capture"]) to full
// task queue names. Accepts both short names ("capture") and full names
// ("webpulse-capture"). Returns an error for unknown queues.
func ParseQueues(names []string) ([]string, error) {
	shortNames := map[string]string{
		"analysis": versioning.QueueAnalysis,
		"capture":  versioning.QueueCapture,
	}
	fullNames := map[string]bool{
		versioning.QueueAnalysis: true,
		versioning.QueueCapture:  true,
	}

	seen := make(map[string]bool)
	var result []string
	for _, part := range names {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if full, ok := shortNames[name]; ok {
			name = full
		}
		if !fullNames[name] {
			return nil, fmt.Errorf("unknown queue %q", name)
		}
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	if len(result) == 0 {
		return []string{versioning.QueueAnalysis, versioning.QueueCapture}, nil
	}
	return result, nil
}
