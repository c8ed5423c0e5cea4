package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/moodmapper/moodmapper/internal/common"
	"github.com/moodmapper/moodmapper/internal/logging"
	"github.com/moodmapper/moodmapper/internal/server/models"
	"github.com/moodmapper/moodmapper/internal/server/services"
	"github.com/moodmapper/moodmapper/internal/wire"
)

type fakeUsers struct {
	registerErr error
	loginErr    error
	refreshErr  error
	deleteErr   error

	deletedUserID string
}

func (f *fakeUsers) Register(ctx context.Context, username, password string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: "u1", Username: username}, nil
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (*services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.TokenPair{UserID: "u1", AccessToken: "acc", RefreshToken: "ref"}, nil
}

func (f *fakeUsers) Refresh(ctx context.Context, token string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &services.TokenPair{UserID: "u1", AccessToken: "acc2", RefreshToken: "ref2"}, nil
}

func (f *fakeUsers) DeleteAccount(ctx context.Context, userID string) error {
	f.deletedUserID = userID
	return f.deleteErr
}

func (f *fakeUsers) ParseAccessToken(token string) (string, error) {
	if token == "good" {
		return "u1", nil
	}
	return "", common.ErrInvalidToken
}

type fakeDocs struct {
	upserted []wire.Document
	deleted  []string
	batches  [][]wire.BatchOp

	all       []wire.Document
	changed   []wire.Document
	lastAfter time.Time
	count     int

	err error
}

func (f *fakeDocs) Upsert(ctx context.Context, userID string, doc wire.Document) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, doc)
	return nil
}

func (f *fakeDocs) Delete(ctx context.Context, userID, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeDocs) GetAll(ctx context.Context, userID string) ([]wire.Document, error) {
	return f.all, f.err
}

func (f *fakeDocs) Count(ctx context.Context, userID string) (int, error) {
	return f.count, f.err
}

func (f *fakeDocs) ChangedAfter(ctx context.Context, userID string, after time.Time) ([]wire.Document, error) {
	f.lastAfter = after
	return f.changed, f.err
}

func (f *fakeDocs) BatchWrite(ctx context.Context, userID string, ops []wire.BatchOp) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, ops)
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeUsers, *fakeDocs) {
	t.Helper()
	users := &fakeUsers{}
	docs := &fakeDocs{}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(NewRouter(NewHandler(users, docs, logger)))
	t.Cleanup(srv.Close)
	return srv, users, docs
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestPing(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/ping", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegister(t *testing.T) {
	srv, users, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/register", "",
		credentialsRequest{Username: "alice", Password: "pw"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "u1", out["userId"])

	users.registerErr = common.ErrUserExists
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/register", "",
		credentialsRequest{Username: "alice", Password: "pw"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegister_MissingFields(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/register", "",
		credentialsRequest{Username: "alice"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	srv, users, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/login", "",
		credentialsRequest{Username: "alice", Password: "pw"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out tokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "u1", out.UserID)
	require.Equal(t, "acc", out.AccessToken)
	require.Equal(t, "ref", out.RefreshToken)

	users.loginErr = common.ErrUnauthorized
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/login", "",
		credentialsRequest{Username: "alice", Password: "nope"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefresh(t *testing.T) {
	srv, users, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/refresh", "",
		map[string]string{"refreshToken": "ref"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	users.refreshErr = common.ErrRefreshTokenExpired
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/refresh", "",
		map[string]string{"refreshToken": "old"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/entries", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/entries", "bad", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/entries", "good", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpsertEntry(t *testing.T) {
	srv, _, docs := newTestServer(t)

	score := 4
	doc := wire.Document{ID: "e1", Score: &score, LastModified: time.Now()}
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/entries/e1", "good", doc)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Len(t, docs.upserted, 1)
	require.Equal(t, "e1", docs.upserted[0].ID)

	// Body id is optional; the path id fills it in.
	doc.ID = ""
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/entries/e2", "good", doc)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "e2", docs.upserted[1].ID)

	// A mismatched body id is rejected.
	doc.ID = "e1"
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/entries/e9", "good", doc)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteEntry(t *testing.T) {
	srv, _, docs := newTestServer(t)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/entries/e1", "good", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, []string{"e1"}, docs.deleted)
}

func TestListEntries_EmptyIsArray(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/entries", "good", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(body))
}

func TestCountEntries(t *testing.T) {
	srv, _, docs := newTestServer(t)
	docs.count = 7

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/entries/count", "good", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, 7, out["count"])
}

func TestChangedEntries(t *testing.T) {
	srv, _, docs := newTestServer(t)

	after := time.Date(2026, 5, 1, 12, 0, 0, 123456789, time.UTC)
	url := srv.URL + "/api/entries/changes?after=" + after.Format(time.RFC3339Nano)
	resp := doJSON(t, http.MethodGet, url, "good", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, docs.lastAfter.Equal(after))

	// No after param means the zero time: the whole collection.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/entries/changes", "good", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, docs.lastAfter.IsZero())

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/entries/changes?after=yesterday", "good", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBatchWrite(t *testing.T) {
	srv, _, docs := newTestServer(t)

	score := 3
	ops := []wire.BatchOp{
		{Kind: wire.BatchDelete, ID: "gone"},
		{Kind: wire.BatchUpsert, Doc: wire.Document{ID: "e1", Score: &score, LastModified: time.Now()}},
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/entries/batch", "good",
		map[string]any{"ops": ops})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Len(t, docs.batches, 1)
	require.Len(t, docs.batches[0], 2)
	require.Equal(t, wire.BatchDelete, docs.batches[0][0].Kind)
}

func TestDeleteAccount(t *testing.T) {
	srv, users, _ := newTestServer(t)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/account", "good", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "u1", users.deletedUserID)
}
