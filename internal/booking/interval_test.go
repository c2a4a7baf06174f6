package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/motel-reservation/internal/model"
)

func day(d int) time.Time {
	return time.Date(2026, time.September, d, 0, 0, 0, 0, time.UTC)
}

func iv(start, end int) model.BookedInterval {
	return model.BookedInterval{Start: day(start), End: day(end)}
}

func TestOverlaps(t *testing.T) {
	testCases := []struct {
		name     string
		existing []model.BookedInterval
		want     model.BookedInterval
		expected bool
	}{
		{
			name:     "no bookings",
			existing: nil,
			want:     iv(1, 4),
			expected: false,
		},
		{
			name:     "identical interval",
			existing: []model.BookedInterval{iv(1, 4)},
			want:     iv(1, 4),
			expected: true,
		},
		{
			name:     "partial overlap on the left",
			existing: []model.BookedInterval{iv(3, 7)},
			want:     iv(1, 4),
			expected: true,
		},
		{
			name:     "partial overlap on the right",
			existing: []model.BookedInterval{iv(1, 4)},
			want:     iv(3, 7),
			expected: true,
		},
		{
			name:     "existing inside candidate",
			existing: []model.BookedInterval{iv(3, 5)},
			want:     iv(1, 8),
			expected: true,
		},
		{
			name:     "candidate inside existing",
			existing: []model.BookedInterval{iv(1, 8)},
			want:     iv(3, 5),
			expected: true,
		},
		{
			name:     "candidate starts on checkout day",
			existing: []model.BookedInterval{iv(1, 4)},
			want:     iv(4, 6),
			expected: false,
		},
		{
			name:     "candidate ends on check-in day",
			existing: []model.BookedInterval{iv(4, 6)},
			want:     iv(1, 4),
			expected: false,
		},
		{
			name:     "gap between intervals",
			existing: []model.BookedInterval{iv(1, 3), iv(10, 12)},
			want:     iv(5, 8),
			expected: false,
		},
		{
			name:     "second of several conflicts",
			existing: []model.BookedInterval{iv(1, 3), iv(6, 9)},
			want:     iv(8, 11),
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Overlaps(tc.existing, tc.want))
		})
	}
}

func TestRebindConflicts(t *testing.T) {
	testCases := []struct {
		name     string
		existing []model.BookedInterval
		want     model.BookedInterval
		expected bool
	}{
		{
			name:     "no bookings",
			existing: nil,
			want:     iv(1, 4),
			expected: false,
		},
		{
			name:     "existing fully inside target",
			existing: []model.BookedInterval{iv(3, 5)},
			want:     iv(1, 8),
			expected: true,
		},
		{
			name:     "target fully inside existing",
			existing: []model.BookedInterval{iv(1, 8)},
			want:     iv(3, 5),
			expected: true,
		},
		{
			name:     "existing start on target end",
			existing: []model.BookedInterval{iv(4, 6)},
			want:     iv(1, 4),
			expected: true,
		},
		{
			name:     "existing end on target start",
			existing: []model.BookedInterval{iv(1, 4)},
			want:     iv(4, 6),
			expected: true,
		},
		{
			name:     "strictly before",
			existing: []model.BookedInterval{iv(1, 3)},
			want:     iv(5, 8),
			expected: false,
		},
		{
			name:     "strictly after",
			existing: []model.BookedInterval{iv(10, 12)},
			want:     iv(5, 8),
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, RebindConflicts(tc.existing, tc.want))
		})
	}
}

// Touching intervals are fine for a fresh booking but disqualify a room
// during rebind.  The two rules must not drift toward each other.
func TestOverlapRulesDiffer(t *testing.T) {
	existing := []model.BookedInterval{iv(1, 4)}
	touching := iv(4, 6)

	assert.False(t, Overlaps(existing, touching))
	assert.True(t, RebindConflicts(existing, touching))
}

func TestStayRequestEndDate(t *testing.T) {
	req := StayRequest{StartDate: day(1), Duration: 3}
	assert.Equal(t, day(4), req.EndDate())

	// Crossing a month boundary.
	req = StayRequest{StartDate: time.Date(2026, time.September, 29, 0, 0, 0, 0, time.UTC), Duration: 4}
	assert.Equal(t, time.Date(2026, time.October, 3, 0, 0, 0, 0, time.UTC), req.EndDate())
}
