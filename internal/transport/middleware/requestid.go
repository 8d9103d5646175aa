package middleware

import (
	"context"
	"net/http"

	"github.com/frahmantamala/karyawan-management/pkg/logger"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

const TraceIDHeader = "X-Trace-ID"

// RequestID honours an incoming X-Trace-ID or generates one, echoes it back
// and makes it visible to chi's GetReqID and the context logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), chiMiddleware.RequestIDKey, traceID)
		ctx = logger.With(ctx, "traceID", traceID)

		w.Header().Set(TraceIDHeader, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
