package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

const maxResponseBytes = 32 << 20

// Client is the HTTP adapter for the rendering provider. Each region endpoint
// accepts POST <endpoint>/capture.
type Client struct {
	httpClient *http.Client
}

// New creates a Client whose transport is instrumented with otelhttp.
// Per-request deadlines come from the caller's context.
func New() *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// NewWithHTTPClient creates a Client with a custom HTTP client (for testing).
func NewWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient}
}

type captureRequest struct {
	URL       string `json:"url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	FullPage  bool   `json:"fullPage"`
	TimeoutMs int64  `json:"timeoutMs"`
}

type wireConsole struct {
	Level     string    `json:"level"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type wireNetwork struct {
	URL          string   `json:"url"`
	Method       string   `json:"method"`
	ResourceType string   `json:"resourceType"`
	Status       *int     `json:"status"`
	DurationMs   *float64 `json:"durationMs"`
}

type wireTiming struct {
	LoadTimeMs               float64 `json:"loadTimeMs"`
	DOMContentLoadedMs       float64 `json:"domContentLoadedMs"`
	LargestContentfulPaintMs float64 `json:"largestContentfulPaintMs"`
	NetworkLatencyMs         float64 `json:"networkLatencyMs"`
	DOMProcessingMs          float64 `json:"domProcessingMs"`
}

type wireLayout struct {
	Message  string `json:"message"`
	Evidence string `json:"evidence"`
	Severity string `json:"severity"`
}

type captureResponse struct {
	Screenshot string        `json:"screenshot"`
	Console    []wireConsole `json:"console"`
	Network    []wireNetwork `json:"network"`
	Timing     *wireTiming   `json:"timing"`
	Layout     []wireLayout  `json:"layout"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Capture requests one capture from region and decodes the provider response.
func (c *Client) Capture(ctx context.Context, region domain.Region, req Request) (*Telemetry, error) {
	body, err := json.Marshal(captureRequest{
		URL:       req.URL,
		Width:     req.Width,
		Height:    req.Height,
		FullPage:  req.FullPage,
		TimeoutMs: req.Timeout.Milliseconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("render: encode request: %w", err)
	}

	endpoint := strings.TrimRight(region.Endpoint, "/") + "/capture"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrNetwork, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		pe := &ProviderError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var er errorResponse
		if json.Unmarshal(data, &er) == nil && er.Error.Message != "" {
			pe.Code = er.Error.Code
			pe.Message = er.Error.Message
		}
		return nil, pe
	}

	var cr captureResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if cr.Timing == nil {
		return nil, fmt.Errorf("%w: response has no timing", ErrMalformed)
	}
	return cr.toTelemetry(), nil
}

func (cr *captureResponse) toTelemetry() *Telemetry {
	t := &Telemetry{
		ScreenshotRef: cr.Screenshot,
		Timing: domain.Timing{
			LoadTimeMs:               cr.Timing.LoadTimeMs,
			DOMContentLoadedMs:       cr.Timing.DOMContentLoadedMs,
			LargestContentfulPaintMs: cr.Timing.LargestContentfulPaintMs,
			NetworkLatencyMs:         cr.Timing.NetworkLatencyMs,
			DOMProcessingMs:          cr.Timing.DOMProcessingMs,
		},
	}
	for _, e := range cr.Console {
		t.Console = append(t.Console, domain.ConsoleEntry{Level: e.Level, Text: e.Text, Timestamp: e.Timestamp})
	}
	for _, n := range cr.Network {
		t.Network = append(t.Network, domain.NetworkEntry{
			URL:          n.URL,
			Method:       n.Method,
			ResourceType: n.ResourceType,
			Status:       n.Status,
			DurationMs:   n.DurationMs,
		})
	}
	for _, l := range cr.Layout {
		sev, err := domain.ParseSeverity(l.Severity)
		if err != nil || l.Severity == "" {
			sev = domain.SeverityMedium
		}
		t.Layout = append(t.Layout, domain.LayoutAnomaly{Message: l.Message, Evidence: l.Evidence, Severity: sev})
	}
	return t
}

func classifyTransport(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
