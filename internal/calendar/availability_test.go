package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t *testing.T, hour, min int) time.Time {
	t.Helper()
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func TestFreeGaps_TwoBusyBlocks(t *testing.T) {
	window := TimeRange{Start: at(t, 9, 0), End: at(t, 18, 0)}
	busy := []TimeRange{
		{Start: at(t, 10, 0), End: at(t, 10, 30)},
		{Start: at(t, 14, 0), End: at(t, 15, 0)},
	}

	free := FreeGaps(window, busy)

	require.Len(t, free, 3)
	assert.Equal(t, TimeRange{Start: at(t, 9, 0), End: at(t, 10, 0)}, free[0])
	assert.Equal(t, TimeRange{Start: at(t, 10, 30), End: at(t, 14, 0)}, free[1])
	assert.Equal(t, TimeRange{Start: at(t, 15, 0), End: at(t, 18, 0)}, free[2])
}

func TestFreeGaps_NoBusyBlocks(t *testing.T) {
	window := TimeRange{Start: at(t, 9, 0), End: at(t, 18, 0)}

	free := FreeGaps(window, nil)

	require.Len(t, free, 1)
	assert.Equal(t, window, free[0])
}

func TestFreeGaps_FullyBooked(t *testing.T) {
	window := TimeRange{Start: at(t, 9, 0), End: at(t, 18, 0)}
	busy := []TimeRange{{Start: at(t, 9, 0), End: at(t, 18, 0)}}

	assert.Empty(t, FreeGaps(window, busy))
}

func TestFreeGaps_BusyAtWindowEdges(t *testing.T) {
	window := TimeRange{Start: at(t, 9, 0), End: at(t, 18, 0)}
	busy := []TimeRange{
		{Start: at(t, 9, 0), End: at(t, 9, 30)},
		{Start: at(t, 17, 30), End: at(t, 18, 0)},
	}

	free := FreeGaps(window, busy)

	require.Len(t, free, 1)
	assert.Equal(t, TimeRange{Start: at(t, 9, 30), End: at(t, 17, 30)}, free[0])
}

func TestFreeGaps_BusyOutsideWindow(t *testing.T) {
	window := TimeRange{Start: at(t, 9, 0), End: at(t, 18, 0)}
	busy := []TimeRange{
		{Start: at(t, 6, 0), End: at(t, 8, 0)},
		{Start: at(t, 19, 0), End: at(t, 20, 0)},
	}

	free := FreeGaps(window, busy)

	require.Len(t, free, 1)
	assert.Equal(t, window, free[0])
}

func TestFreeGaps_BusySpanningWindowStart(t *testing.T) {
	window := TimeRange{Start: at(t, 9, 0), End: at(t, 18, 0)}
	busy := []TimeRange{{Start: at(t, 8, 0), End: at(t, 9, 45)}}

	free := FreeGaps(window, busy)

	require.Len(t, free, 1)
	assert.Equal(t, TimeRange{Start: at(t, 9, 45), End: at(t, 18, 0)}, free[0])
}

func TestFreeGaps_UnsortedOverlappingInput(t *testing.T) {
	// The provider is expected to return disjoint sorted blocks, but the
	// sweep must not rely on that.
	window := TimeRange{Start: at(t, 9, 0), End: at(t, 18, 0)}
	busy := []TimeRange{
		{Start: at(t, 14, 0), End: at(t, 15, 0)},
		{Start: at(t, 10, 0), End: at(t, 10, 30)},
		{Start: at(t, 10, 15), End: at(t, 11, 0)},
	}

	free := FreeGaps(window, busy)

	require.Len(t, free, 3)
	assert.Equal(t, TimeRange{Start: at(t, 9, 0), End: at(t, 10, 0)}, free[0])
	assert.Equal(t, TimeRange{Start: at(t, 11, 0), End: at(t, 14, 0)}, free[1])
	assert.Equal(t, TimeRange{Start: at(t, 15, 0), End: at(t, 18, 0)}, free[2])
}

func TestWorkdayWindow(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	window := WorkdayWindow(date)

	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, loc), window.Start)
	assert.Equal(t, time.Date(2026, 3, 2, 18, 0, 0, 0, loc), window.End)
}
