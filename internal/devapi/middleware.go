package devapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/me/adminportal/pkg/model"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeyCaller    ctxKey = "caller"
)

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// requestIDMiddleware keeps the client's X-Request-ID or generates one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = "req_" + uuid.NewString()[:8]
		}
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs HTTP requests at DEBUG level (method, path, status, duration).
func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start).String(),
				"request_id", RequestIDFromContext(r.Context()),
			)
		})
	}
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// caller is the authenticated account behind a request.
type caller struct {
	user    userRecord
	tokenID string
}

func callerFromContext(ctx context.Context) *caller {
	c, _ := ctx.Value(ctxKeyCaller).(*caller)
	return c
}

// authMiddleware requires a valid bearer token for a live account.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			respondUnauthorized(w, "authentication required")
			return
		}
		c, err := s.parseToken(raw)
		if err != nil {
			s.logger.Debug("token rejected", "error", err)
			respondUnauthorized(w, "invalid or expired token")
			return
		}

		s.mu.RLock()
		_, u := s.userByIDLocked(c.Subject)
		var snapshot userRecord
		if u != nil {
			snapshot = *u
		}
		s.mu.RUnlock()
		if u == nil {
			respondUnauthorized(w, "account no longer exists")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyCaller, &caller{user: snapshot, tokenID: c.ID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminMiddleware ensures the caller has the admin role.
// Must be used after authMiddleware.
func adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := callerFromContext(r.Context())
		if c == nil || c.user.Role != string(model.RoleAdmin) {
			respondError(w, http.StatusForbidden, &model.APIError{
				Code:    model.ErrForbidden,
				Message: "admin access required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}
