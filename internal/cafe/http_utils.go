package cafe

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// queryFailed logs the database error and answers with msg only; the cause
// never reaches the client.
func (s *Server) queryFailed(w http.ResponseWriter, r *http.Request, table, op string, err error, msg string) {
	attrs := []any{"table", table, "op", op, "err", err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		attrs = append(attrs, "sqlstate", pgErr.Code, "class", sqlStateClass(pgErr.Code))
		if pgErr.ConstraintName != "" {
			attrs = append(attrs, "constraint", pgErr.ConstraintName)
		}
	}
	s.logger.ErrorContext(r.Context(), "query failed", attrs...)
	writeError(w, http.StatusBadRequest, msg)
}

func sqlStateClass(code string) string {
	switch {
	case pgerrcode.IsIntegrityConstraintViolation(code):
		return "integrity_constraint_violation"
	case pgerrcode.IsDataException(code):
		return "data_exception"
	case pgerrcode.IsSyntaxErrororAccessRuleViolation(code):
		return "syntax_or_access_rule_violation"
	case pgerrcode.IsConnectionException(code):
		return "connection_exception"
	case pgerrcode.IsInsufficientResources(code):
		return "insufficient_resources"
	}
	return "other"
}

type ctxRequestIDKey struct{}

const requestIDHeader = "X-Request-Id"

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), ctxRequestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxRequestIDKey{}).(string)
	return id
}

func requestLogMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.InfoContext(r.Context(), "req",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"ip", r.RemoteAddr,
				"request_id", requestIDFromContext(r.Context()),
			)
		})
	}
}
