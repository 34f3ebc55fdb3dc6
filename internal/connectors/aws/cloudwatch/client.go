// Package cloudwatch publishes regional performance scores to AWS CloudWatch.
package cloudwatch

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

// Metric names published per succeeded region.
const (
	MetricScore    = "PerformanceScore"
	MetricLoadTime = "LoadTime"
	MetricIssues   = "IssueCount"
)

// maxDatumsPerCall keeps each PutMetricData request well inside the API limits.
const maxDatumsPerCall = 20

// API is the subset of the CloudWatch client used by this package.
type API interface {
	PutMetricData(ctx context.Context, params *cw.PutMetricDataInput, optFns ...func(*cw.Options)) (*cw.PutMetricDataOutput, error)
}

// Client publishes report metrics under one namespace.
type Client struct {
	api       API
	namespace string
}

// New creates a CloudWatch client from an AWS config.
func New(cfg aws.Config, namespace string) *Client {
	return &Client{api: cw.NewFromConfig(cfg), namespace: namespace}
}

// NewFromAPI creates a Client from an explicit API implementation (for testing).
func NewFromAPI(api API, namespace string) *Client {
	return &Client{api: api, namespace: namespace}
}

// PublishScores sends score, load time and issue count for every succeeded
// region, dimensioned by Region and URLHost.
func (c *Client) PublishScores(ctx context.Context, r *domain.AnalysisReport) error {
	host := r.URL
	if u, err := url.Parse(r.URL); err == nil && u.Host != "" {
		host = u.Host
	}

	issues := make(map[string]int)
	for _, is := range r.Issues {
		issues[is.Region]++
	}
	loads := make(map[string]float64)
	for _, res := range r.RegionResults {
		if res.Succeeded {
			loads[res.Region] = res.Timing.LoadTimeMs
		}
	}

	var data []cwtypes.MetricDatum
	for _, s := range r.Scores {
		dims := []cwtypes.Dimension{
			{Name: aws.String("Region"), Value: aws.String(s.Region)},
			{Name: aws.String("URLHost"), Value: aws.String(host)},
		}
		data = append(data,
			datum(MetricScore, float64(s.Score), cwtypes.StandardUnitNone, dims, r),
			datum(MetricLoadTime, loads[s.Region], cwtypes.StandardUnitMilliseconds, dims, r),
			datum(MetricIssues, float64(issues[s.Region]), cwtypes.StandardUnitCount, dims, r),
		)
	}

	for start := 0; start < len(data); start += maxDatumsPerCall {
		end := min(start+maxDatumsPerCall, len(data))
		_, err := c.api.PutMetricData(ctx, &cw.PutMetricDataInput{
			Namespace:  aws.String(c.namespace),
			MetricData: data[start:end],
		})
		if err != nil {
			return fmt.Errorf("cloudwatch: put metric data: %w", err)
		}
	}
	return nil
}

func datum(name string, value float64, unit cwtypes.StandardUnit, dims []cwtypes.Dimension, r *domain.AnalysisReport) cwtypes.MetricDatum {
	d := cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Dimensions: dims,
	}
	if !r.Timestamp.IsZero() {
		d.Timestamp = aws.Time(r.Timestamp)
	}
	return d
}
