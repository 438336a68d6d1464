package user

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mediafeed/service/internal/identity"
	"github.com/mediafeed/service/internal/response"
)

// Handler holds HTTP handlers for user-related endpoints.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new user Handler.
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// GetMe godoc
//
//	@Summary		Get current user
//	@Description	Returns the account of the currently authenticated user.
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	User
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/users/me [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	u, err := h.svc.GetByID(r.Context(), caller.ID)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "user not found")
			return
		}
		h.log.Error("get current user", zap.String("user_id", caller.ID), zap.Error(err))
		response.InternalError(w, "")
		return
	}

	response.OK(w, u)
}
