package auth

import (
	"net/http"

	"github.com/frahmantamala/karyawan-management/internal"
	"github.com/frahmantamala/karyawan-management/internal/transport"
	"github.com/frahmantamala/karyawan-management/internal/user"
	"github.com/frahmantamala/karyawan-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "User registered successfully", u)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.Logger.Info("login succeeded", "user_id", resp.User.ID)
	h.WriteSuccess(w, http.StatusOK, "Login successful", resp)
}

// AuthMiddleware admits requests carrying a valid bearer token for an active
// account and puts that account on the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleServiceError(w, r, internal.NewUnauthorizedError("Unauthorized", internal.ErrCodeMissingToken).
				WithReasons("Missing authorization header"))
			return
		}

		u, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}

		ctx := user.ContextWithUser(r.Context(), u)
		ctx = internal.ContextWithUserID(ctx, u.ID)
		ctx = logger.With(ctx, "userID", u.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
