// Package httpapi exposes the server's JSON API: account endpoints and the
// per-user mood entry collection the sync client reconciles against.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/moodmapper/moodmapper/internal/common"
	"github.com/moodmapper/moodmapper/internal/logging"
	"github.com/moodmapper/moodmapper/internal/server/models"
	"github.com/moodmapper/moodmapper/internal/server/services"
	"github.com/moodmapper/moodmapper/internal/wire"
)

// UserProvider is the slice of the user service the handlers need.
type UserProvider interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, token string) (*services.TokenPair, error)
	DeleteAccount(ctx context.Context, userID string) error
	ParseAccessToken(token string) (string, error)
}

// DocumentProvider is the slice of the document service the handlers need.
type DocumentProvider interface {
	Upsert(ctx context.Context, userID string, doc wire.Document) error
	Delete(ctx context.Context, userID, id string) error
	GetAll(ctx context.Context, userID string) ([]wire.Document, error)
	Count(ctx context.Context, userID string) (int, error)
	ChangedAfter(ctx context.Context, userID string, after time.Time) ([]wire.Document, error)
	BatchWrite(ctx context.Context, userID string, ops []wire.BatchOp) error
}

// Handler carries the services behind the HTTP surface.
type Handler struct {
	users  UserProvider
	docs   DocumentProvider
	logger logging.Logger
}

// NewHandler constructs the API handler set.
func NewHandler(users UserProvider, docs DocumentProvider, logger logging.Logger) *Handler {
	return &Handler{users: users, docs: docs, logger: logger}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	UserID       string `json:"userId,omitempty"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses. Anything unrecognized
// is treated as a bad request so service validation errors surface to the
// caller without leaking internals.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, common.ErrUserExists):
		status = http.StatusConflict
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrInternal):
		status = http.StatusInternalServerError
	default:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	http.Error(w, http.StatusText(status), status)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if in.Username == "" || in.Password == "" {
		http.Error(w, "username and password required", http.StatusBadRequest)
		return
	}
	user, err := h.users.Register(r.Context(), in.Username, in.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"userId": user.ID})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	pair, err := h.users.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tokenResponse{
		UserID:       pair.UserID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	pair, err := h.users.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tokenResponse{
		UserID:       pair.UserID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteAccount(r.Context(), userIDFrom(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) upsertEntry(w http.ResponseWriter, r *http.Request) {
	var doc wire.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	id := mux.Vars(r)["id"]
	if doc.ID == "" {
		doc.ID = id
	}
	if doc.ID != id {
		http.Error(w, "document id does not match path", http.StatusBadRequest)
		return
	}
	if err := h.docs.Upsert(r.Context(), userIDFrom(r.Context()), doc); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.docs.Delete(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.GetAll(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []wire.Document{}
	}
	h.writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) countEntries(w http.ResponseWriter, r *http.Request) {
	count, err := h.docs.Count(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) changedEntries(w http.ResponseWriter, r *http.Request) {
	var after time.Time
	if raw := r.URL.Query().Get("after"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			http.Error(w, "invalid after timestamp", http.StatusBadRequest)
			return
		}
		after = parsed
	}
	docs, err := h.docs.ChangedAfter(r.Context(), userIDFrom(r.Context()), after)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []wire.Document{}
	}
	h.writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) batchWrite(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Ops []wire.BatchOp `json:"ops"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.docs.BatchWrite(r.Context(), userIDFrom(r.Context()), in.Ops); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
