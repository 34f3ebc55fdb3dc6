package domain

import (
	"fmt"
	"strings"
)

// IssueType classifies a detected anomaly.
type IssueType string

const (
	IssueLayout          IssueType = "layout"
	IssueMissingResource IssueType = "missing_resource"
	IssueRendering       IssueType = "rendering"
	IssuePerformance     IssueType = "performance"
)

// IssueTypes lists every category in report order.
var IssueTypes = []IssueType{IssueLayout, IssueMissingResource, IssueRendering, IssuePerformance}

func (t IssueType) Valid() bool {
	switch t {
	case IssueLayout, IssueMissingResource, IssueRendering, IssuePerformance:
		return true
	}
	return false
}

// ParseIssueType converts user input ("missing-resource", "Layout") into an IssueType.
func ParseIssueType(s string) (IssueType, error) {
	t := IssueType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !t.Valid() {
		return "", fmt.Errorf("unknown issue type: %q", s)
	}
	return t, nil
}

// Severity is the impact level of an Issue. Levels are totally ordered
// low < medium < high < critical through SeverityRank.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// SeverityRank maps Severity to explicit numeric ranks.
// Never compare severities as strings; use this map.
var SeverityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// AtLeast reports whether s is at or above min.
func (s Severity) AtLeast(min Severity) bool {
	return SeverityRank[s] >= SeverityRank[min]
}

// Max returns the higher of s and other.
func (s Severity) Max(other Severity) Severity {
	if SeverityRank[other] > SeverityRank[s] {
		return other
	}
	return s
}

// ParseSeverity converts user input into a Severity. Empty input means low.
func ParseSeverity(s string) (Severity, error) {
	if strings.TrimSpace(s) == "" {
		return SeverityLow, nil
	}
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if !sev.Valid() {
		return "", fmt.Errorf("unknown severity: %q", s)
	}
	return sev, nil
}

// FailureKind classifies why a regional capture did not succeed.
type FailureKind string

const (
	FailureTimeout   FailureKind = "timeout"
	FailureNetwork   FailureKind = "network"
	FailureMalformed FailureKind = "malformed"
	FailureProvider  FailureKind = "provider"
)

func (k FailureKind) Valid() bool {
	switch k {
	case FailureTimeout, FailureNetwork, FailureMalformed, FailureProvider:
		return true
	}
	return false
}

// Priority orders recommendations.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// PriorityRank maps Priority to explicit numeric ranks.
var PriorityRank = map[Priority]int{
	PriorityLow:      1,
	PriorityMedium:   2,
	PriorityHigh:     3,
	PriorityCritical: 4,
}
