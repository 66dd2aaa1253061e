package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/gorilla/mux"
)

// NewRouter wires the handlers and middleware. Middleware order, outermost
// first: request id, logging, rescue, timeout.
func NewRouter(users UserService, logger logging.Logger, upstreamTimeout time.Duration) *mux.Router {
	h := NewHandler(users, logger)

	r := mux.NewRouter()
	r.Use(RequestIDMiddleware, LoggingMiddleware(logger), RescueMiddleware(logger), TimeoutMiddleware(upstreamTimeout))

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/signup", h.Signup).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/forgot-password", h.ForgotPassword).Methods(http.MethodPost)
	r.HandleFunc("/reset-password", h.ResetPassword).Methods(http.MethodPost)
	r.HandleFunc("/me", h.Me).Methods(http.MethodGet)

	return r
}
