package appctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunIDRoundTrip(t *testing.T) {
	ctx := context.Background()

	_, ok := GetRunID(ctx)
	assert.False(t, ok, "empty context should carry no run id")

	ctx = SetRunID(ctx, "run_01ABC")
	runID, ok := GetRunID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "run_01ABC", runID)
}
