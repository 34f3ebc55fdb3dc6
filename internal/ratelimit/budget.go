package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrBudgetExceeded is returned when a caller has used up its window.
var ErrBudgetExceeded = errors.New("analysis budget exceeded")

// AnalysisBudget tracks per-caller analysis counts within fixed time windows.
type AnalysisBudget struct {
	mu     sync.Mutex
	counts map[string]*windowCounter

	maxPerWindow int
	windowSize   time.Duration
	now          func() time.Time
}

type windowCounter struct {
	count     int
	windowEnd time.Time
}

// NewAnalysisBudget creates a budget allowing maxPerWindow analyses per
// (caller, operation) within windowSize. A non-positive max disables the budget.
func NewAnalysisBudget(maxPerWindow int, windowSize time.Duration) *AnalysisBudget {
	return &AnalysisBudget{
		counts:       make(map[string]*windowCounter),
		maxPerWindow: maxPerWindow,
		windowSize:   windowSize,
		now:          time.Now,
	}
}

func budgetKey(caller, operation string) string {
	return caller + "|" + operation
}

// Check returns ErrBudgetExceeded if the caller has no analyses left for operation.
func (b *AnalysisBudget) Check(caller, operation string) error {
	if b == nil || b.maxPerWindow <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	wc, ok := b.counts[budgetKey(caller, operation)]
	if !ok || b.now().After(wc.windowEnd) {
		return nil
	}
	if wc.count >= b.maxPerWindow {
		return fmt.Errorf("%w: caller %s operation %s (%d/%d in window)",
			ErrBudgetExceeded, caller, operation, wc.count, b.maxPerWindow)
	}
	return nil
}

// Record counts one analysis for the caller.
func (b *AnalysisBudget) Record(caller, operation string) {
	if b == nil || b.maxPerWindow <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	key := budgetKey(caller, operation)
	wc, ok := b.counts[key]
	if !ok || b.now().After(wc.windowEnd) {
		b.counts[key] = &windowCounter{count: 1, windowEnd: b.now().Add(b.windowSize)}
		return
	}
	wc.count++
}

// Take checks and records in one step.
func (b *AnalysisBudget) Take(caller, operation string) error {
	if b == nil || b.maxPerWindow <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	key := budgetKey(caller, operation)
	now := b.now()
	wc, ok := b.counts[key]
	if !ok || now.After(wc.windowEnd) {
		b.counts[key] = &windowCounter{count: 1, windowEnd: now.Add(b.windowSize)}
		return nil
	}
	if wc.count >= b.maxPerWindow {
		return fmt.Errorf("%w: caller %s operation %s (%d/%d in window)",
			ErrBudgetExceeded, caller, operation, wc.count, b.maxPerWindow)
	}
	wc.count++
	return nil
}
