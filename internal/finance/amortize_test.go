package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmortize_FullSchedule(t *testing.T) {
	principal := 4_000_000.0
	schedule := Amortize(principal, 8.5, 240)

	require.Len(t, schedule, 240)

	var principalSum float64
	for i, entry := range schedule {
		assert.Equal(t, i+1, entry.Month)
		principalSum += entry.Principal
	}

	// Principal components round-trip to the original loan amount.
	assert.InDelta(t, principal, principalSum, 5)
	assert.LessOrEqual(t, schedule[len(schedule)-1].Balance, 0.01)
}

func TestAmortize_BalanceDecreasesMonotonically(t *testing.T) {
	schedule := Amortize(500_000, 9, 60)
	require.Len(t, schedule, 60)

	prev := 500_000.0
	for _, entry := range schedule {
		assert.Less(t, entry.Balance, prev)
		prev = entry.Balance
	}
}

func TestAmortize_InterestShrinksPrincipalGrows(t *testing.T) {
	schedule := Amortize(1_000_000, 10, 120)
	require.Len(t, schedule, 120)

	first := schedule[0]
	last := schedule[len(schedule)-2] // last regular installment

	assert.Greater(t, first.Interest, last.Interest)
	assert.Less(t, first.Principal, last.Principal)
}

func TestAmortize_ZeroRate(t *testing.T) {
	schedule := Amortize(120_000, 0, 12)
	require.Len(t, schedule, 12)

	for _, entry := range schedule {
		assert.InDelta(t, 10_000, entry.Principal, 0.01)
		assert.Zero(t, entry.Interest)
	}
	assert.InDelta(t, 0, schedule[11].Balance, 0.01)
}

func TestAmortize_DegenerateInputs(t *testing.T) {
	assert.Nil(t, Amortize(0, 8.5, 240))
	assert.Nil(t, Amortize(1_000_000, 8.5, 0))
}

func TestScheduleWindow(t *testing.T) {
	schedule := Amortize(4_000_000, 8.5, 240)

	head, tail := ScheduleWindow(schedule, 12)
	require.Len(t, head, 12)
	require.Len(t, tail, 12)
	assert.Equal(t, 1, head[0].Month)
	assert.Equal(t, 240, tail[11].Month)

	short := Amortize(120_000, 8.5, 12)
	head, tail = ScheduleWindow(short, 12)
	assert.Len(t, head, 12)
	assert.Nil(t, tail)
}
