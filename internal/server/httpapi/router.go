package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires every API route onto a gorilla router. Everything under
// /api/entries and the account deletion endpoint require a valid access
// token.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logMiddleware)

	r.HandleFunc("/api/ping", h.ping).Methods(http.MethodGet)
	r.HandleFunc("/api/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/api/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/api/refresh", h.refresh).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(h.authMiddleware)
	authed.HandleFunc("/api/account", h.deleteAccount).Methods(http.MethodDelete)
	authed.HandleFunc("/api/entries", h.listEntries).Methods(http.MethodGet)
	authed.HandleFunc("/api/entries/count", h.countEntries).Methods(http.MethodGet)
	authed.HandleFunc("/api/entries/changes", h.changedEntries).Methods(http.MethodGet)
	authed.HandleFunc("/api/entries/batch", h.batchWrite).Methods(http.MethodPost)
	authed.HandleFunc("/api/entries/{id}", h.upsertEntry).Methods(http.MethodPut)
	authed.HandleFunc("/api/entries/{id}", h.deleteEntry).Methods(http.MethodDelete)

	return r
}
