package workflows_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/babdulhakim2/webpulse/internal/render"
	"github.com/babdulhakim2/webpulse/internal/temporal/activities"
	"github.com/babdulhakim2/webpulse/internal/testutil"
)

// OnActivity argument matchers.
var (
	anyContext       = mock.Anything
	anyActivityInput = mock.Anything
)

// captureBy answers each region from scripts; unscripted regions succeed with
// clean telemetry and regions in failing return an activity error.
func captureBy(scripts map[string]*render.Telemetry, failing map[string]error) func(context.Context, activities.CaptureRegionInput) (activities.CaptureRegionOutput, error) {
	return func(_ context.Context, in activities.CaptureRegionInput) (activities.CaptureRegionOutput, error) {
		if err, ok := failing[in.Region.Name]; ok {
			return activities.CaptureRegionOutput{}, err
		}
		tel, ok := scripts[in.Region.Name]
		if !ok {
			tel = testutil.CleanTelemetry()
		}
		res := testutil.Succeeded(in.Region.Name, tel)
		res.Location = in.Region.Location
		return activities.CaptureRegionOutput{Result: res}, nil
	}
}
