package user

import (
	"net/http"

	"github.com/frahmantamala/karyawan-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
}

func NewHandler(baseHandler *transport.BaseHandler) *Handler {
	return &Handler{BaseHandler: baseHandler}
}

// GetCurrentUser handles GET /api/user/me. The auth middleware has already
// loaded and checked the account.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := FromContext(r.Context())
	if !ok {
		h.Logger.Error("GetCurrentUser: user not found in context")
		h.WriteFailure(w, http.StatusUnauthorized, "Unauthorized", "User not found")
		return
	}

	h.WriteSuccess(w, http.StatusOK, "User profile retrieved successfully", u)
}
