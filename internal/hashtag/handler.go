package hashtag

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/picstash/service/internal/response"
)

// Handler holds HTTP handlers for hashtag endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new hashtag Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Name string `json:"name" example:"sunset"`
}

// Create godoc
//
//	@Summary		Create hashtag
//	@Description	Register a new hashtag. Names are unique with case-sensitive equality.
//	@Tags			hashtags
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createRequest	true	"Hashtag name"
//	@Success		201		{object}	response.Envelope{data=Hashtag}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/hashtags [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		response.BadRequest(w, "name is required")
		return
	}

	tag, err := h.svc.Create(r.Context(), name)
	if h.svc.IsConflict(err) {
		response.Conflict(w, "hashtag already exists")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, tag)
}

// List godoc
//
//	@Summary		List hashtags
//	@Description	Returns all hashtags.
//	@Tags			hashtags
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]Hashtag}
//	@Failure		500	{object}	response.Envelope
//	@Router			/hashtags [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, tags)
}

// Search godoc
//
//	@Summary		Search hashtags
//	@Description	Case-insensitive substring search on hashtag names. An empty query matches nothing.
//	@Tags			hashtags
//	@Produce		json
//	@Param			q	query		string	true	"Substring to match"
//	@Success		200	{object}	response.Envelope{data=[]Hashtag}
//	@Failure		500	{object}	response.Envelope
//	@Router			/hashtags/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, tags)
}
