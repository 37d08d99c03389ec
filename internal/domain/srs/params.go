package srs

const (
	// UpcomingWindowDays is how far ahead, in days, a unit counts as upcoming.
	UpcomingWindowDays = 7

	// UnknownSubjectOrder is the sort position used for units whose subject
	// cannot be found.
	UnknownSubjectOrder = 999
)

// IntervalDays returns the number of days between review number lastNo and
// the next review: 1 after the first, 7 after the second, 14 after the third
// and 20 after every later one.
func IntervalDays(lastNo int) int {
	switch lastNo {
	case 1:
		return 1
	case 2:
		return 7
	case 3:
		return 14
	default:
		return 20
	}
}
