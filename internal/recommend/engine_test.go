package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

func issue(region string, t domain.IssueType) domain.Issue {
	return domain.Issue{Type: t, Severity: domain.SeverityMedium, Message: "x", Region: region}
}

func rules(recs []domain.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Rule
	}
	return out
}

func TestRecommend_NothingFires(t *testing.T) {
	recs := NewEngine().Recommend(Input{
		Scores: []domain.PerformanceScore{{Region: "us-east", Score: 100}, {Region: "eu-west", Score: 90}},
	})
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestRecommend_Rules(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want []string
	}{
		{
			name: "missing resources in one region",
			in:   Input{Issues: []domain.Issue{issue("us-east", domain.IssueMissingResource), issue("us-east", domain.IssueMissingResource)}},
			want: []string{},
		},
		{
			name: "missing resources in two regions",
			in:   Input{Issues: []domain.Issue{issue("us-east", domain.IssueMissingResource), issue("eu-west", domain.IssueMissingResource)}},
			want: []string{"missing_resources"},
		},
		{
			name: "performance in two regions",
			in:   Input{Issues: []domain.Issue{issue("us-east", domain.IssuePerformance), issue("eu-west", domain.IssuePerformance)}},
			want: []string{"slow_load"},
		},
		{
			name: "low score",
			in:   Input{Scores: []domain.PerformanceScore{{Region: "ap-southeast", Score: 74}}},
			want: []string{"low_score"},
		},
		{
			name: "score at low threshold",
			in:   Input{Scores: []domain.PerformanceScore{{Region: "ap-southeast", Score: 75}}},
			want: []string{},
		},
		{
			name: "spread",
			in:   Input{Scores: []domain.PerformanceScore{{Region: "a", Score: 100}, {Region: "b", Score: 84}}},
			want: []string{"score_spread"},
		},
		{
			name: "spread at threshold",
			in:   Input{Scores: []domain.PerformanceScore{{Region: "a", Score: 100}, {Region: "b", Score: 85}}},
			want: []string{},
		},
		{
			name: "issue volume",
			in: func() Input {
				var is []domain.Issue
				for i := 0; i < 11; i++ {
					is = append(is, issue("us-east", domain.IssueRendering))
				}
				return Input{Issues: is}
			}(),
			want: []string{"issue_volume"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules(NewEngine().Recommend(tt.in)))
		})
	}
}

func TestRecommend_PriorityOrder(t *testing.T) {
	var is []domain.Issue
	for _, r := range []string{"us-east", "eu-west", "ap-southeast"} {
		is = append(is,
			issue(r, domain.IssueMissingResource),
			issue(r, domain.IssuePerformance),
			issue(r, domain.IssueRendering),
			issue(r, domain.IssueRendering),
		)
	}
	in := Input{
		Issues: is,
		Scores: []domain.PerformanceScore{
			{Region: "us-east", Score: 92},
			{Region: "eu-west", Score: 70},
			{Region: "ap-southeast", Score: 55},
		},
	}
	recs := NewEngine().Recommend(in)
	assert.Equal(t, []string{"low_score", "missing_resources", "slow_load", "score_spread", "issue_volume"}, rules(recs))
	assert.Equal(t, domain.PriorityCritical, recs[0].Priority)
	assert.Contains(t, recs[0].Message, "ap-southeast (55), eu-west (70)")
	assert.Contains(t, recs[3].Message, "37 points")

	strs := Strings(recs)
	require.Len(t, strs, 5)
	assert.True(t, len(strs[0]) > len("[CRITICAL] "))
	assert.Equal(t, "[CRITICAL] ", strs[0][:len("[CRITICAL] ")])
}

func TestRecommend_Idempotent(t *testing.T) {
	in := Input{
		Issues: []domain.Issue{issue("a", domain.IssuePerformance), issue("b", domain.IssuePerformance)},
		Scores: []domain.PerformanceScore{{Region: "a", Score: 60}, {Region: "b", Score: 99}},
	}
	e := NewEngine()
	assert.Equal(t, e.Recommend(in), e.Recommend(in))
}

func TestRecommend_CustomThresholds(t *testing.T) {
	e := NewEngine()
	e.Thresholds.LowScore = 95
	recs := e.Recommend(Input{Scores: []domain.PerformanceScore{{Region: "a", Score: 90}}})
	require.Len(t, recs, 1)
	assert.Equal(t, "low_score", recs[0].Rule)
}
