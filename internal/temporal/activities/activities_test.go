package activities_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babdulhakim2/webpulse/internal/capture"
	"github.com/babdulhakim2/webpulse/internal/domain"
	"github.com/babdulhakim2/webpulse/internal/render"
	"github.com/babdulhakim2/webpulse/internal/temporal/activities"
	"github.com/babdulhakim2/webpulse/internal/testutil"
)

type recordingSink struct {
	reports []*domain.AnalysisReport
	err     error
}

func (s *recordingSink) PublishScores(_ context.Context, r *domain.AnalysisReport) error {
	s.reports = append(s.reports, r)
	return s.err
}

func region(t *testing.T, name string) domain.Region {
	t.Helper()
	r, ok := testutil.Registry().Lookup(name)
	require.True(t, ok)
	return r
}

func TestCaptureRegion_Success(t *testing.T) {
	renderer := testutil.NewScriptedRenderer(nil)
	a := &activities.Activities{Orchestrator: capture.NewOrchestrator(testutil.Registry(), renderer)}

	out, err := a.CaptureRegion(context.Background(), activities.CaptureRegionInput{
		Region:    region(t, "eu-west"),
		URL:       "https://example.com",
		TimeoutMs: 5000,
	})
	require.NoError(t, err)
	assert.True(t, out.Result.Succeeded)
	assert.Equal(t, "eu-west", out.Result.Region)
	assert.Equal(t, "London, UK", out.Result.Location)

	reqs := renderer.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, 5*time.Second, reqs[0].Timeout)
	assert.Equal(t, capture.DefaultWidth, reqs[0].Width)
	assert.Equal(t, capture.DefaultHeight, reqs[0].Height)
}

func TestCaptureRegion_FailureIsAResult(t *testing.T) {
	renderer := testutil.NewScriptedRenderer(map[string]testutil.Response{
		"eu-west": {Err: render.ErrNetwork},
	})
	a := &activities.Activities{Orchestrator: capture.NewOrchestrator(testutil.Registry(), renderer)}

	out, err := a.CaptureRegion(context.Background(), activities.CaptureRegionInput{
		Region: region(t, "eu-west"),
		URL:    "https://example.com",
	})
	require.NoError(t, err)
	assert.False(t, out.Result.Succeeded)
	require.NotNil(t, out.Result.Error)
	assert.Equal(t, domain.FailureNetwork, out.Result.Error.Kind)
}

func TestCaptureRegion_RepeatedCapturesIndependent(t *testing.T) {
	renderer := testutil.NewScriptedRenderer(nil)
	a := &activities.Activities{Orchestrator: capture.NewOrchestrator(testutil.Registry(), renderer)}
	in := activities.CaptureRegionInput{Region: region(t, "us-east"), URL: "https://example.com"}

	first, err := a.CaptureRegion(context.Background(), in)
	require.NoError(t, err)
	for i := 0; i < 40; i++ {
		out, err := a.CaptureRegion(context.Background(), in)
		require.NoError(t, err)
		require.True(t, out.Result.Succeeded, "capture %d", i)
		assert.Equal(t, first.Result.Timing, out.Result.Timing)
	}
	assert.Equal(t, 41, renderer.Calls("us-east"))
}

func TestCaptureRegion_NotConfigured(t *testing.T) {
	a := &activities.Activities{}
	_, err := a.CaptureRegion(context.Background(), activities.CaptureRegionInput{Region: region(t, "us-east")})
	require.Error(t, err)
}

func TestPublishReport(t *testing.T) {
	withScores := domain.AnalysisReport{ID: "a1", Scores: []domain.PerformanceScore{{Region: "us-east", Score: 90}}}

	t.Run("no sink", func(t *testing.T) {
		a := &activities.Activities{}
		assert.NoError(t, a.PublishReport(context.Background(), activities.PublishReportInput{Report: withScores}))
	})

	t.Run("publishes", func(t *testing.T) {
		sink := &recordingSink{}
		a := &activities.Activities{Sink: sink}
		require.NoError(t, a.PublishReport(context.Background(), activities.PublishReportInput{Report: withScores}))
		require.Len(t, sink.reports, 1)
		assert.Equal(t, "a1", sink.reports[0].ID)
	})

	t.Run("skips empty", func(t *testing.T) {
		sink := &recordingSink{}
		a := &activities.Activities{Sink: sink}
		require.NoError(t, a.PublishReport(context.Background(), activities.PublishReportInput{Report: domain.AnalysisReport{ID: "a2"}}))
		assert.Empty(t, sink.reports)
	})

	t.Run("error", func(t *testing.T) {
		a := &activities.Activities{Sink: &recordingSink{err: errors.New("throttled")}}
		err := a.PublishReport(context.Background(), activities.PublishReportInput{Report: withScores})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "throttled")
	})
}
