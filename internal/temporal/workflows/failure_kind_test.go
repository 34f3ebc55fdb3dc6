package workflows

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/temporal"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

func TestActivityFailureKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.FailureKind
	}{
		{"start to close timeout", temporal.NewTimeoutError(enumspb.TIMEOUT_TYPE_START_TO_CLOSE, nil), domain.FailureTimeout},
		{"canceled", temporal.NewCanceledError(), domain.FailureTimeout},
		{"application error", temporal.NewApplicationError("renderer crashed", "panic"), domain.FailureProvider},
		{"plain error", errors.New("connection reset"), domain.FailureNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, activityFailureKind(tt.err))
		})
	}
}
