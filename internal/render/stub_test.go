package render

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

func TestStub_Deterministic(t *testing.T) {
	s := NewStub()
	region := domain.Region{Name: "eu-west"}
	req := Request{URL: "https://example.com/pricing"}

	a, err := s.Capture(context.Background(), region, req)
	require.NoError(t, err)
	b, err := s.Capture(context.Background(), region, req)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := s.Capture(context.Background(), domain.Region{Name: "us-east"}, req)
	require.NoError(t, err)
	assert.NotEqual(t, a.ScreenshotRef, other.ScreenshotRef)
}

func TestStub_SlowPath(t *testing.T) {
	tel, err := NewStub().Capture(context.Background(), domain.Region{Name: "us-east"}, Request{URL: "https://example.com/slow"})
	require.NoError(t, err)
	assert.Greater(t, tel.Timing.LoadTimeMs, 4000.0)
}

func TestStub_RespectsDeadline(t *testing.T) {
	s := NewStub()
	s.Latency = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Capture(ctx, domain.Region{Name: "us-east"}, Request{URL: "https://example.com"})
	require.Error(t, err)
	assert.Equal(t, domain.FailureTimeout, FailureKind(err))
}
