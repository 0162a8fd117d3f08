package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"skillbridge/internal/service"
)

// WaitlistHandler exposes waitlist endpoints.
type WaitlistHandler struct {
	waitlist *service.WaitlistService
	logger   *zap.Logger
}

// NewWaitlistHandler builds handler set.
func NewWaitlistHandler(waitlist *service.WaitlistService, logger *zap.Logger) *WaitlistHandler {
	return &WaitlistHandler{
		waitlist: waitlist,
		logger:   logger,
	}
}

// Join handles POST /api/v1/sessions/{id}/waitlist.
func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}
	sessionID := mux.Vars(r)["id"]

	booking, err := h.waitlist.Join(r.Context(), sessionID, email)
	if err != nil {
		h.logger.Debug("waitlist join rejected", zap.String("session_id", sessionID), zap.Error(err))
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// Leave handles POST /api/v1/bookings/{id}/leave-waitlist.
func (h *WaitlistHandler) Leave(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}
	bookingID := mux.Vars(r)["id"]

	if err := h.waitlist.Leave(r.Context(), bookingID, email); err != nil {
		h.logger.Debug("waitlist leave rejected", zap.String("booking_id", bookingID), zap.Error(err))
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Process handles POST /api/v1/internal/sessions/{id}/process-waitlist.
func (h *WaitlistHandler) Process(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	promoted, err := h.waitlist.Process(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("waitlist processing failed", zap.String("session_id", sessionID), zap.Error(err))
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"promoted": len(promoted)})
}
