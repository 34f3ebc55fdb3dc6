package render

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

const sampleResponse = `{
  "screenshot": "s3://shots/us-east/1.png",
  "console": [
    {"level": "error", "text": "Uncaught TypeError", "timestamp": "2025-03-01T10:00:00Z"},
    {"level": "warning", "text": "deprecated", "timestamp": "2025-03-01T10:00:01Z"}
  ],
  "network": [
    {"url": "https://example.com/", "method": "GET", "resourceType": "document", "status": 200, "durationMs": 120.5},
    {"url": "https://example.com/app.css", "method": "GET", "resourceType": "stylesheet", "status": 404},
    {"url": "https://example.com/beacon", "method": "POST", "resourceType": "fetch"}
  ],
  "timing": {"loadTimeMs": 3500, "domContentLoadedMs": 1800, "largestContentfulPaintMs": 2400, "networkLatencyMs": 80, "domProcessingMs": 900},
  "layout": [{"message": "element overflows viewport", "evidence": "div.hero", "severity": "high"}, {"message": "overlap"}]
}`

func TestClient_Capture(t *testing.T) {
	var got captureRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/regions/us-east/capture", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewWithHTTPClient(srv.Client())
	region := domain.Region{Name: "us-east", Endpoint: srv.URL + "/regions/us-east/"}
	tel, err := c.Capture(context.Background(), region, Request{
		URL: "https://example.com", Width: 1280, Height: 720, FullPage: true, Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", got.URL)
	assert.Equal(t, 1280, got.Width)
	assert.True(t, got.FullPage)
	assert.Equal(t, int64(5000), got.TimeoutMs)

	assert.Equal(t, "s3://shots/us-east/1.png", tel.ScreenshotRef)
	require.Len(t, tel.Console, 2)
	assert.True(t, tel.Console[0].IsError())
	require.Len(t, tel.Network, 3)
	require.NotNil(t, tel.Network[1].Status)
	assert.Equal(t, 404, *tel.Network[1].Status)
	assert.Nil(t, tel.Network[1].DurationMs)
	assert.Nil(t, tel.Network[2].Status)
	assert.Equal(t, 3500.0, tel.Timing.LoadTimeMs)
	require.Len(t, tel.Layout, 2)
	assert.Equal(t, domain.SeverityHigh, tel.Layout[0].Severity)
	assert.Equal(t, domain.SeverityMedium, tel.Layout[1].Severity)
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    domain.FailureKind
	}{
		{
			name: "provider error body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(`{"error":{"code":"BROWSER_CRASH","message":"renderer crashed"}}`))
			},
			want: domain.FailureProvider,
		},
		{
			name: "provider error without body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			want: domain.FailureProvider,
		},
		{
			name: "undecodable",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			want: domain.FailureMalformed,
		},
		{
			name: "missing timing",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"screenshot":"x"}`))
			},
			want: domain.FailureMalformed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewWithHTTPClient(srv.Client())
			_, err := c.Capture(context.Background(), domain.Region{Name: "r", Endpoint: srv.URL}, Request{URL: "https://example.com"})
			require.Error(t, err)
			assert.Equal(t, tt.want, FailureKind(err))
		})
	}
}

func TestClient_ProviderErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"code":"BROWSER_CRASH","message":"renderer crashed"}}`))
	}))
	defer srv.Close()

	_, err := NewWithHTTPClient(srv.Client()).Capture(context.Background(), domain.Region{Name: "r", Endpoint: srv.URL}, Request{URL: "https://example.com"})
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 502, pe.Status)
	assert.Equal(t, "BROWSER_CRASH", pe.Code)
	assert.True(t, errors.Is(err, ErrProvider))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewWithHTTPClient(srv.Client()).Capture(ctx, domain.Region{Name: "r", Endpoint: srv.URL}, Request{URL: "https://example.com"})
	require.Error(t, err)
	assert.Equal(t, domain.FailureTimeout, FailureKind(err))
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := New().Capture(context.Background(), domain.Region{Name: "r", Endpoint: addr}, Request{URL: "https://example.com"})
	require.Error(t, err)
	assert.Equal(t, domain.FailureNetwork, FailureKind(err))
}

func TestFailureKind_Unknown(t *testing.T) {
	assert.Equal(t, domain.FailureNetwork, FailureKind(errors.New("boom")))
	assert.Equal(t, domain.FailureTimeout, FailureKind(context.DeadlineExceeded))
}
