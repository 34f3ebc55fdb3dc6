package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ValidationError reports a request that is rejected before any capture is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err (or anything it wraps) is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateTargetURL checks that raw is an absolute http(s) URL with a host.
func ValidateTargetURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return NewValidationError("url", "url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return NewValidationError("url", "%v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewValidationError("url", "scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return NewValidationError("url", "host is required")
	}
	return nil
}

// ValidateRegion checks required fields on a Region.
func ValidateRegion(r Region) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	u, err := url.Parse(r.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("region %s: endpoint must be an absolute http(s) url, got %q", r.Name, r.Endpoint)
	}
	return nil
}

// ValidateCaptureResult checks the success/failure invariant of a CaptureResult.
func ValidateCaptureResult(c CaptureResult) error {
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if c.Succeeded && c.Error != nil {
		return fmt.Errorf("region %s: succeeded result carries an error", c.Region)
	}
	if !c.Succeeded && c.Error == nil {
		return fmt.Errorf("region %s: failed result has no error descriptor", c.Region)
	}
	if c.Error != nil && !c.Error.Kind.Valid() {
		return fmt.Errorf("region %s: invalid failure kind %q", c.Region, c.Error.Kind)
	}
	return nil
}

// ValidateIssue checks required fields on an Issue.
func ValidateIssue(i Issue) error {
	if !i.Type.Valid() {
		return fmt.Errorf("invalid issue type: %q", i.Type)
	}
	if !i.Severity.Valid() {
		return fmt.Errorf("invalid severity: %q", i.Severity)
	}
	if i.Region == "" {
		return fmt.Errorf("region is required")
	}
	if i.Message == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}

// ValidateReport checks the cross-field invariants of an assembled report.
func ValidateReport(r AnalysisReport) error {
	if len(r.RegionResults) != len(r.RequestedRegions) {
		return fmt.Errorf("report has %d region results for %d requested regions",
			len(r.RegionResults), len(r.RequestedRegions))
	}
	succeeded := make(map[string]bool, len(r.RegionResults))
	seen := make(map[string]bool, len(r.RegionResults))
	for _, res := range r.RegionResults {
		if err := ValidateCaptureResult(res); err != nil {
			return fmt.Errorf("region result: %w", err)
		}
		if seen[res.Region] {
			return fmt.Errorf("region %s appears more than once", res.Region)
		}
		seen[res.Region] = true
		succeeded[res.Region] = res.Succeeded
	}
	for _, name := range r.RequestedRegions {
		if !seen[name] {
			return fmt.Errorf("requested region %s has no result", name)
		}
	}
	for _, is := range r.Issues {
		if !succeeded[is.Region] {
			return fmt.Errorf("issue for non-succeeded region %s", is.Region)
		}
	}
	for _, s := range r.Scores {
		if !succeeded[s.Region] {
			return fmt.Errorf("score for non-succeeded region %s", s.Region)
		}
		if s.Score < 0 || s.Score > 100 {
			return fmt.Errorf("score for %s out of range: %d", s.Region, s.Score)
		}
	}
	for _, c := range r.Comparisons {
		if c.SimilarityPercent < 0 || c.SimilarityPercent > 100 {
			return fmt.Errorf("similarity %s/%s out of range: %d", c.RegionA, c.RegionB, c.SimilarityPercent)
		}
	}
	return nil
}
