package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"skillbridge/internal/models"
	"skillbridge/internal/service"
)

// userEmailHeader carries the already-resolved caller identity. Authentication
// happens upstream of this core.
const userEmailHeader = "X-User-Email"

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusForError maps the domain error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	var capacity *service.CapacityExhaustedError
	var groupCapacity *service.GroupCapacityError
	var funds *service.InsufficientFundsError
	var transition *models.InvalidTransitionError

	switch {
	case errors.Is(err, service.ErrLearnerNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, service.ErrCommunityNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotBookingOwner),
		errors.Is(err, service.ErrNotCommunityMember):
		return http.StatusForbidden
	case errors.As(err, &funds):
		return http.StatusPaymentRequired
	case errors.As(err, &capacity),
		errors.As(err, &groupCapacity),
		errors.As(err, &transition),
		errors.Is(err, service.ErrDuplicateBooking),
		errors.Is(err, service.ErrSessionNotBookable),
		errors.Is(err, service.ErrSessionMissingAccessLink),
		errors.Is(err, service.ErrCommunityInactive),
		errors.Is(err, service.ErrBookingAlreadyCancelled),
		errors.Is(err, service.ErrCancellationClosed),
		errors.Is(err, service.ErrWaitlistFull),
		errors.Is(err, service.ErrSeatsStillAvailable),
		errors.Is(err, service.ErrNotOnWaitlist):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError renders a taxonomy error with its specific reason, hiding
// internals behind a generic message for unexpected failures.
func writeDomainError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func callerEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := r.Header.Get(userEmailHeader)
	if email == "" {
		writeError(w, http.StatusUnauthorized, "missing user email header")
		return "", false
	}
	return email, true
}
