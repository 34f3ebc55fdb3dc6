// Package compare diffs succeeded regions pairwise and ranks them.
package compare

import (
	"fmt"
	"sort"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

// RegionSummary is the per-region input to the comparator.
type RegionSummary struct {
	Region string
	Score  int
	Issues []domain.Issue
}

func (r RegionSummary) hasType(t domain.IssueType) bool {
	for _, is := range r.Issues {
		if is.Type == t {
			return true
		}
	}
	return false
}

func (r RegionSummary) hasSeverity(s domain.Severity) bool {
	for _, is := range r.Issues {
		if is.Severity == s {
			return true
		}
	}
	return false
}

// Factor is one row of the similarity policy: when Differs reports a
// difference between two regions, Deduction is taken off the similarity and
// the returned text is recorded.
type Factor struct {
	Name      string
	Deduction int
	Differs   func(a, b RegionSummary) (string, bool)
}

// Default similarity policy.
const (
	ScoreGapPoints      = 10
	ScoreGapDeduction   = 30
	IssueGapCount       = 3
	IssueGapDeduction   = 20
	CriticalDeduction   = 25
	MissingResDeduction = 15
)

// DefaultFactors returns the default similarity table.
func DefaultFactors() []Factor {
	return []Factor{
		{
			Name:      "score_gap",
			Deduction: ScoreGapDeduction,
			Differs: func(a, b RegionSummary) (string, bool) {
				gap := abs(a.Score - b.Score)
				if gap <= ScoreGapPoints {
					return "", false
				}
				return fmt.Sprintf("Performance score differs by %d points (%s: %d, %s: %d)",
					gap, a.Region, a.Score, b.Region, b.Score), true
			},
		},
		{
			Name:      "issue_gap",
			Deduction: IssueGapDeduction,
			Differs: func(a, b RegionSummary) (string, bool) {
				gap := abs(len(a.Issues) - len(b.Issues))
				if gap < IssueGapCount {
					return "", false
				}
				return fmt.Sprintf("Issue count differs by %d (%s: %d, %s: %d)",
					gap, a.Region, len(a.Issues), b.Region, len(b.Issues)), true
			},
		},
		{
			Name:      "critical_presence",
			Deduction: CriticalDeduction,
			Differs:   presence(domain.SeverityCritical, "critical issues", RegionSummary.hasSeverity),
		},
		{
			Name:      "missing_resource_presence",
			Deduction: MissingResDeduction,
			Differs:   presence(domain.IssueMissingResource, "missing resources", RegionSummary.hasType),
		},
	}
}

func presence[T any](v T, label string, has func(RegionSummary, T) bool) func(a, b RegionSummary) (string, bool) {
	return func(a, b RegionSummary) (string, bool) {
		ha, hb := has(a, v), has(b, v)
		if ha == hb {
			return "", false
		}
		with, without := a.Region, b.Region
		if hb {
			with, without = b.Region, a.Region
		}
		return fmt.Sprintf("%s has %s, %s does not", with, label, without), true
	}
}

// Result is the comparator output. Best and Worst are empty when fewer than
// two regions were compared.
type Result struct {
	Pairs   []domain.ComparisonPair
	Ranking []domain.RankedRegion
	Best    string
	Worst   string
}

// Comparator applies a similarity table. It holds no mutable state, so
// repeated calls over the same input return the same output.
type Comparator struct {
	Factors []Factor
}

// NewComparator returns a Comparator using DefaultFactors.
func NewComparator() *Comparator {
	return &Comparator{Factors: DefaultFactors()}
}

// Compare returns every unordered pair of regions in input order (i < j) and
// the ranking. With fewer than two regions the result is empty.
func (c *Comparator) Compare(regions []RegionSummary) Result {
	res := Result{Pairs: []domain.ComparisonPair{}, Ranking: []domain.RankedRegion{}}
	if len(regions) < 2 {
		return res
	}
	for i := 0; i < len(regions); i++ {
		for j := i + 1; j < len(regions); j++ {
			res.Pairs = append(res.Pairs, c.Pair(regions[i], regions[j]))
		}
	}
	res.Ranking = Rank(regions)
	res.Best = res.Ranking[0].Region
	res.Worst = res.Ranking[len(res.Ranking)-1].Region
	return res
}

// Pair compares two regions.
func (c *Comparator) Pair(a, b RegionSummary) domain.ComparisonPair {
	similarity := 100
	diffs := []string{}
	for _, f := range c.Factors {
		if text, ok := f.Differs(a, b); ok {
			similarity -= f.Deduction
			diffs = append(diffs, text)
		}
	}
	return domain.ComparisonPair{
		RegionA:           a.Region,
		RegionB:           b.Region,
		SimilarityPercent: clamp(similarity),
		Differences:       diffs,
	}
}

// Rank orders regions by score descending, then issue count ascending, then name.
func Rank(regions []RegionSummary) []domain.RankedRegion {
	sorted := make([]RegionSummary, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if len(a.Issues) != len(b.Issues) {
			return len(a.Issues) < len(b.Issues)
		}
		return a.Region < b.Region
	})
	out := make([]domain.RankedRegion, len(sorted))
	for i, r := range sorted {
		out[i] = domain.RankedRegion{Rank: i + 1, Region: r.Region, Score: r.Score, IssueCount: len(r.Issues)}
	}
	return out
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
