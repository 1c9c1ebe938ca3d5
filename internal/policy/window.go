package policy

import "time"

// BorrowWindow decides whether a point in time falls inside the allowed
// reservation window: Monday through Friday, from OpenHour (inclusive) to
// CloseHour (exclusive), in the local time of the serving process.
type BorrowWindow struct {
	OpenHour  int
	CloseHour int
}

// DefaultBorrowWindow is the production window, 09:00-21:00.
func DefaultBorrowWindow() BorrowWindow {
	return BorrowWindow{OpenHour: 9, CloseHour: 21}
}

// NewBorrowWindow builds a window with the given hours, falling back to the
// defaults when both are zero.
func NewBorrowWindow(openHour, closeHour int) BorrowWindow {
	if openHour == 0 && closeHour == 0 {
		return DefaultBorrowWindow()
	}
	return BorrowWindow{OpenHour: openHour, CloseHour: closeHour}
}

// Contains reports whether now is inside the borrow window.
func (w BorrowWindow) Contains(now time.Time) bool {
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	h := now.Hour()
	return h >= w.OpenHour && h < w.CloseHour
}
