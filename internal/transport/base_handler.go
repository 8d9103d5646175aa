package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/karyawan-management/internal"
	"github.com/frahmantamala/karyawan-management/pkg/logger"
	"github.com/go-chi/chi"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Errors  []string    `json:"errors"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	h.WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

func (h *BaseHandler) WriteFailure(w http.ResponseWriter, status int, message string, errs ...string) {
	h.WriteJSON(w, status, Envelope{Success: false, Message: message, Errors: errs})
}

// HandleServiceError is the single place where errors become HTTP responses.
// Anything that is not an AppError is reported as a 500 without its cause.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.From(r.Context())

	appErr, ok := internal.IsAppError(err)
	if !ok {
		log.Error("unhandled service error", "error", err, "path", r.URL.Path)
		h.WriteFailure(w, http.StatusInternalServerError, "Internal server error", "An unexpected error occurred")
		return
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		log.Error("request failed", "error", appErr, "code", appErr.Code, "path", r.URL.Path)
	} else {
		log.Warn("request rejected", "status", appErr.StatusCode, "code", appErr.Code, "detail", appErr.GetDetailedMessage())
	}
	h.WriteFailure(w, appErr.StatusCode, appErr.Message, appErr.Messages()...)
}

// DecodeJSON reads the request body into dst.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return internal.ErrInvalidBody(err)
	}
	return nil
}

// PathID parses the positive {id} URL parameter.
func (h *BaseHandler) PathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.ErrInvalidID()
	}
	return id, nil
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
