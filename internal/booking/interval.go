package booking

import "github.com/iliyamo/motel-reservation/internal/model"

// Overlaps reports whether the candidate interval conflicts with any of
// the existing booked intervals under the half-open rule: [a, b) and
// [c, d) overlap iff a < d && c < b.  Touching endpoints do not
// conflict, so the checkout day is available for a new check-in.
//
// The scan is linear; rooms carry at most a handful of future bookings
// so no index structure is warranted.
func Overlaps(existing []model.BookedInterval, want model.BookedInterval) bool {
	for _, iv := range existing {
		if iv.Start.Before(want.End) && want.Start.Before(iv.End) {
			return true
		}
	}
	return false
}

// RebindConflicts is the conflict test used when moving an existing
// reservation to new dates.  It is deliberately broader than Overlaps:
// three clauses with inclusive boundaries, so a booking that merely
// touches the target window already disqualifies the room.  Allocation
// and rebind keep their different rules on purpose; do not unify them.
func RebindConflicts(existing []model.BookedInterval, want model.BookedInterval) bool {
	for _, iv := range existing {
		// Existing booking sits fully inside the target window.
		if !iv.Start.Before(want.Start) && !iv.End.After(want.End) {
			return true
		}
		// Target window sits fully inside an existing booking.
		if !want.Start.Before(iv.Start) && !want.End.After(iv.End) {
			return true
		}
		// Partial overlap: either edge of the existing booking falls
		// within the target window, boundaries included.
		if !iv.Start.Before(want.Start) && !iv.Start.After(want.End) {
			return true
		}
		if !iv.End.Before(want.Start) && !iv.End.After(want.End) {
			return true
		}
	}
	return false
}
