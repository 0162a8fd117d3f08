package models

import "time"

// Session status constants.
const (
	SessionStatusScheduled = "scheduled"
	SessionStatusActive    = "active"
	SessionStatusFinished  = "finished"
	SessionStatusCancelled = "cancelled"
)

// Session is a capacity-bounded tutoring session published by an instructor.
type Session struct {
	ID           string     `json:"id"`
	InstructorID string     `json:"instructor_id"`
	Title        string     `json:"title"`
	Status       string     `json:"status"`
	MaxCapacity  int        `json:"max_capacity"`
	IsPremium    bool       `json:"is_premium"`
	Cost         int64      `json:"cost"`
	AccessLink   string     `json:"access_link,omitempty"`
	StartsAt     time.Time  `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// AcceptsBookings reports whether new admissions and waitlist joins are allowed.
func (s *Session) AcceptsBookings() bool {
	return s.Status == SessionStatusScheduled || s.Status == SessionStatusActive
}

// CancellationOpen reports whether bookings may still be cancelled. Once the
// session starts the seats are considered consumed.
func (s *Session) CancellationOpen() bool {
	return s.Status == SessionStatusScheduled
}

// Chargeable reports whether admission to this session moves SkillCoins.
func (s *Session) Chargeable() bool {
	return s.IsPremium && s.Cost > 0
}
