package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/moodmapper/moodmapper/internal/common"
)

type ctxKey int

const userIDKey ctxKey = iota

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// authMiddleware validates the bearer access token and stores the user id
// in the request context. Requests without a valid token get a 401.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeader)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		userID, err := h.users.ParseAccessToken(token)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

// logMiddleware emits one structured log line per request.
func (h *Handler) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Info(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
