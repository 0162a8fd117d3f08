package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"skillbridge/internal/service"
)

// BookingHandler exposes admission and cancellation endpoints.
type BookingHandler struct {
	admissions    *service.AdmissionService
	cancellations *service.CancellationService
	logger        *zap.Logger
}

// NewBookingHandler builds handler set.
func NewBookingHandler(admissions *service.AdmissionService, cancellations *service.CancellationService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		admissions:    admissions,
		cancellations: cancellations,
		logger:        logger,
	}
}

type groupBookingRequest struct {
	CommunityID string `json:"community_id"`
}

// BookIndividual handles POST /api/v1/sessions/{id}/bookings.
func (h *BookingHandler) BookIndividual(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}
	sessionID := mux.Vars(r)["id"]

	booking, err := h.admissions.BookIndividual(r.Context(), sessionID, email)
	if err != nil {
		h.logger.Debug("individual booking rejected", zap.String("session_id", sessionID), zap.Error(err))
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// BookGroup handles POST /api/v1/sessions/{id}/group-bookings.
func (h *BookingHandler) BookGroup(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}
	sessionID := mux.Vars(r)["id"]

	var req groupBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CommunityID == "" {
		writeError(w, http.StatusBadRequest, "community_id is required")
		return
	}

	bookings, err := h.admissions.BookGroup(r.Context(), sessionID, req.CommunityID, email)
	if err != nil {
		h.logger.Debug("group booking rejected",
			zap.String("session_id", sessionID),
			zap.String("community_id", req.CommunityID),
			zap.Error(err),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"bookings": bookings})
}

// Cancel handles POST /api/v1/bookings/{id}/cancel.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}
	bookingID := mux.Vars(r)["id"]

	booking, err := h.cancellations.Cancel(r.Context(), bookingID, email)
	if err != nil {
		h.logger.Debug("cancellation rejected", zap.String("booking_id", bookingID), zap.Error(err))
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
