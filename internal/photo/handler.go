package photo

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/picstash/service/internal/middleware"
	"github.com/picstash/service/internal/response"
	"github.com/picstash/service/internal/user"
)

// Handler holds HTTP handlers for photo endpoints.
type Handler struct {
	svc   *Service
	users *user.Service
}

// NewHandler creates a new photo Handler.
func NewHandler(svc *Service, users *user.Service) *Handler {
	return &Handler{svc: svc, users: users}
}

// Upload godoc
//
//	@Summary		Upload photo
//	@Description	Store the uploaded file in object storage and record it with the given hashtags.
//	@Tags			photos
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file		formData	file	true	"Image file"
//	@Param			hashtags	formData	string	false	"Comma-separated hashtag names"
//	@Success		201	{object}	response.Envelope{data=Photo}
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		409	{object}	response.Envelope
//	@Failure		502	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/photos [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	owner := h.resolveOwner(w, r)
	if owner == nil {
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file is required")
		return
	}
	defer file.Close()

	p, err := h.svc.Upload(
		r.Context(),
		owner.ID,
		file,
		header.Size,
		header.Header.Get("Content-Type"),
		header.Filename,
		r.FormValue("hashtags"),
	)
	if h.svc.IsStorageFailure(err) {
		response.BadGateway(w, "object storage unavailable")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, p)
}

// List godoc
//
//	@Summary		List photos
//	@Description	Returns the caller's photos, optionally filtered by exact hashtag name.
//	@Tags			photos
//	@Produce		json
//	@Security		BearerAuth
//	@Param			hashtag	query		string	false	"Exact hashtag name to filter by"
//	@Success		200	{object}	response.Envelope{data=[]Photo}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/photos [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner := h.resolveOwner(w, r)
	if owner == nil {
		return
	}

	photos, err := h.svc.ListForOwner(r.Context(), owner.ID, r.URL.Query().Get("hashtag"))
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, photos)
}

// Get godoc
//
//	@Summary		Get photo
//	@Description	Returns one of the caller's photos by id. Photos owned by other users read as not found.
//	@Tags			photos
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Photo id"
//	@Success		200	{object}	response.Envelope{data=Photo}
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/photos/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	owner := h.resolveOwner(w, r)
	if owner == nil {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid photo id")
		return
	}

	p, err := h.svc.GetForOwner(r.Context(), owner.ID, id)
	if h.svc.IsNotFound(err) {
		response.NotFound(w, "photo not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, p)
}

// Delete godoc
//
//	@Summary		Delete photo
//	@Description	Removes one of the caller's photos and its hashtag associations. The stored object is not removed.
//	@Tags			photos
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Photo id"
//	@Success		200	{object}	response.Envelope
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/photos/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	owner := h.resolveOwner(w, r)
	if owner == nil {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid photo id")
		return
	}

	err = h.svc.DeleteForOwner(r.Context(), owner.ID, id)
	if h.svc.IsNotFound(err) {
		response.NotFound(w, "photo not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"detail": "photo deleted"})
}

// resolveOwner maps the verified external identity to the internal user
// record, creating it on first sight. On failure it writes the error response
// and returns nil.
func (h *Handler) resolveOwner(w http.ResponseWriter, r *http.Request) *user.User {
	externalID, displayName, ok := middleware.Identity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return nil
	}

	u, err := h.users.Resolve(r.Context(), externalID, displayName)
	if errors.Is(err, user.ErrUsernameTaken) {
		response.Conflict(w, "username already taken")
		return nil
	}
	if err != nil {
		response.InternalError(w)
		return nil
	}
	return u
}
