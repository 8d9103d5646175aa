package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/karyawan-management/pkg/logger"
)

// maxLoggedBody bounds how much of a JSON body is kept for the log line.
const maxLoggedBody = 4 << 10

// sensitiveFields are matched as substrings of lowercased keys and headers.
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"api_key",
	"session",
	"credential",
	"cookie",
}

// LoggingMiddleware logs each request and its response through the request
// scoped logger. Only JSON bodies are captured; multipart uploads are never
// read into memory here.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := logger.From(r.Context())

		log.Info("incoming request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
			"headers", filterSensitiveHeaders(r.Header),
			"body", captureRequestBody(r),
		)

		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		level := slog.LevelInfo
		switch {
		case ww.statusCode >= http.StatusInternalServerError:
			level = slog.LevelError
		case ww.statusCode >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		log.Log(r.Context(), level, "response",
			"status_code", ww.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"response_size", ww.size,
			"body", filterSensitiveBody(ww.body.Bytes()),
		)
	})
}

// responseWriter records the status and the head of a JSON response body.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int
	body        bytes.Buffer
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	if isJSON(rw.Header().Get("Content-Type")) && rw.body.Len() < maxLoggedBody {
		rw.body.Write(b[:min(len(b), maxLoggedBody-rw.body.Len())])
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func captureRequestBody(r *http.Request) string {
	if r.Body == nil || !isJSON(r.Header.Get("Content-Type")) {
		return ""
	}
	head, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
	if err != nil {
		return ""
	}
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	return filterSensitiveBody(head)
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/json")
}

func isSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			filtered[name] = "[FILTERED]"
			continue
		}
		filtered[name] = strings.Join(values, ", ")
	}
	return filtered
}

// filterSensitiveBody masks sensitive keys of a JSON document. Truncated or
// otherwise unparsable bodies are dropped rather than logged raw.
func filterSensitiveBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return "[UNPARSED]"
	}

	filtered, err := json.Marshal(filterSensitiveJSON(data))
	if err != nil {
		return "[UNPARSED]"
	}
	return string(filtered)
}

func filterSensitiveJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		filtered := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				filtered[key] = "[FILTERED]"
				continue
			}
			filtered[key] = filterSensitiveJSON(value)
		}
		return filtered
	case []interface{}:
		filtered := make([]interface{}, len(v))
		for i, item := range v {
			filtered[i] = filterSensitiveJSON(item)
		}
		return filtered
	default:
		return v
	}
}
