// Package scoring reduces one region's telemetry to a 0-100 performance score.
package scoring

import (
	"fmt"
	"math"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

// Weights are the penalty parameters of the score formula.
type Weights struct {
	LoadThresholdMs   float64
	LoadPerPoint      float64
	LoadCap           float64
	FailedRequest     float64
	LCPThresholdMs    float64
	LCPPerPoint       float64
	LCPCap            float64
	ConsoleErrorPoint float64
}

// DefaultWeights returns the documented formula:
// load min(40, (load-3000)/100), 5 per failed request,
// LCP min(20, (lcp-2500)/100), 2 per console error.
func DefaultWeights() Weights {
	return Weights{
		LoadThresholdMs:   3000,
		LoadPerPoint:      100,
		LoadCap:           40,
		FailedRequest:     5,
		LCPThresholdMs:    2500,
		LCPPerPoint:       100,
		LCPCap:            20,
		ConsoleErrorPoint: 2,
	}
}

// Scorer computes PerformanceScores. It is pure and safe for concurrent use.
type Scorer struct {
	Weights Weights
}

// NewScorer returns a Scorer with the default weights.
func NewScorer() *Scorer {
	return &Scorer{Weights: DefaultWeights()}
}

// Score computes the score of a succeeded capture. Only penalties greater
// than zero appear in Deductions, in the order load, requests, LCP, console.
func (s *Scorer) Score(res domain.CaptureResult) domain.PerformanceScore {
	w := s.Weights

	failed := 0
	for _, n := range res.Network {
		if n.Failed() {
			failed++
		}
	}
	consoleErrors := 0
	for _, c := range res.Console {
		if c.IsError() {
			consoleErrors++
		}
	}

	penalties := []domain.Deduction{
		{
			Reason: fmt.Sprintf("load time %.0fms over %.0fms", res.Timing.LoadTimeMs, w.LoadThresholdMs),
			Amount: capped((res.Timing.LoadTimeMs-w.LoadThresholdMs)/w.LoadPerPoint, w.LoadCap),
		},
		{
			Reason: fmt.Sprintf("%d failed network request(s)", failed),
			Amount: w.FailedRequest * float64(failed),
		},
		{
			Reason: fmt.Sprintf("largest contentful paint %.0fms over %.0fms", res.Timing.LargestContentfulPaintMs, w.LCPThresholdMs),
			Amount: capped((res.Timing.LargestContentfulPaintMs-w.LCPThresholdMs)/w.LCPPerPoint, w.LCPCap),
		},
		{
			Reason: fmt.Sprintf("%d console error(s)", consoleErrors),
			Amount: w.ConsoleErrorPoint * float64(consoleErrors),
		},
	}

	score := domain.PerformanceScore{Region: res.Region, Deductions: []domain.Deduction{}}
	total := 0.0
	for _, p := range penalties {
		if p.Amount <= 0 {
			continue
		}
		total += p.Amount
		score.Deductions = append(score.Deductions, p)
	}
	score.Score = Clamp(int(math.Round(100 - total)))
	return score
}

// Clamp bounds v to [0, 100].
func Clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func capped(v, limit float64) float64 {
	return math.Min(limit, math.Max(0, v))
}
