package notify

import "time"

// Kind identifies the notification being delivered.
type Kind string

// Notification kinds.
const (
	KindBookingConfirmed       Kind = "booking_confirmed"
	KindBookingCancelled       Kind = "booking_cancelled"
	KindWaitlistJoined         Kind = "waitlist_joined"
	KindSpotAvailable          Kind = "spot_available"
	KindInstructorCancellation Kind = "instructor_cancellation"
)

// Task is one queued notification. Tasks are enqueued after the owning
// database transaction commits and are delivered best-effort by the worker.
type Task struct {
	Kind         Kind      `json:"kind"`
	BookingID    string    `json:"booking_id,omitempty"`
	SessionID    string    `json:"session_id"`
	SessionTitle string    `json:"session_title,omitempty"`
	UserID       string    `json:"user_id"`
	UserEmail    string    `json:"user_email,omitempty"`
	SpotsFreed   int       `json:"spots_freed,omitempty"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
}
