package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"skillbridge/internal/http/handlers"
)

// NewRouter registers the booking API surface.
func NewRouter(bookings *handlers.BookingHandler, waitlist *handlers.WaitlistHandler) http.Handler {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/sessions/{id}/bookings", bookings.BookIndividual).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/group-bookings", bookings.BookGroup).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/waitlist", waitlist.Join).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/leave-waitlist", waitlist.Leave).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/cancel", bookings.Cancel).Methods(http.MethodPost)
	api.HandleFunc("/internal/sessions/{id}/process-waitlist", waitlist.Process).Methods(http.MethodPost)

	return r
}
