package purchases

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeFeeFloorsFraction(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	fee := ComputeFee(55000, 10, 24*time.Hour, now)
	assert.Equal(t, int64(5500), fee.Amount)
	assert.Equal(t, now.Add(24*time.Hour), fee.DueAt)

	// 10% of 999 is 99.9, floored to 99.
	fee = ComputeFee(999, 10, 24*time.Hour, now)
	assert.Equal(t, int64(99), fee.Amount)

	fee = ComputeFee(0, 10, 24*time.Hour, now)
	assert.Zero(t, fee.Amount)
}

func TestComputeFeeOtherPercent(t *testing.T) {
	now := time.Now()
	fee := ComputeFee(10000, 7, time.Hour, now)
	assert.Equal(t, int64(700), fee.Amount)
}
