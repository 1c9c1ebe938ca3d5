package models

import "time"

// DayFormat is the canonical layout for calendar days in storage and APIs.
const DayFormat = "2006-01-02"

// Day truncates a point in time to its calendar day string.
func Day(t time.Time) string {
	return t.Format(DayFormat)
}

// Reservation is one user's seat hold in one room for one calendar day.
type Reservation struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Room      string    `json:"room"`
	Seat      int       `json:"seat"`
	Day       string    `json:"day"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Block suspends a user from borrowing between StartsAt and EndsAt, inclusive.
type Block struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	StartsAt  string    `json:"starts_at"` // YYYY-MM-DD
	EndsAt    string    `json:"ends_at"`   // YYYY-MM-DD
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Covers reports whether day falls inside the block's inclusive range.
// Days compare lexicographically because of the fixed YYYY-MM-DD layout.
func (b *Block) Covers(day string) bool {
	return b.StartsAt <= day && day <= b.EndsAt
}
