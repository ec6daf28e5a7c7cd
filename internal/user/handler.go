package user

import (
	"errors"
	"net/http"

	"github.com/picstash/service/internal/middleware"
	"github.com/picstash/service/internal/response"
)

// Handler holds HTTP handlers for user-related endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new user Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetMe godoc
//
//	@Summary		Get current user
//	@Description	Returns the profile of the currently authenticated user, creating the account on first sight.
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=User}
//	@Failure		401	{object}	response.Envelope
//	@Failure		409	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/users/me [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	externalID, displayName, ok := middleware.Identity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	u, err := h.svc.Resolve(r.Context(), externalID, displayName)
	if errors.Is(err, ErrUsernameTaken) {
		response.Conflict(w, "username already taken")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, u)
}
