// AngelaMos | 2026
// handler.go

package comment

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/classifieds/internal/core"
	"github.com/carterperez-dev/templates/classifieds/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes expects to be called inside the /ads route.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/{adID}/comments", func(r chi.Router) {
		r.Get("/", h.List)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Post("/", h.Add)
			r.Patch("/{commentID}", h.Update)
			r.Delete("/{commentID}", h.Delete)
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	adID, ok := parseID(w, r, "adID")
	if !ok {
		return
	}

	views, err := h.service.List(r.Context(), adID)
	if err != nil {
		core.WriteServiceError(w, err, "comment")
		return
	}

	core.OK(w, ToListResponse(views))
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	adID, ok := parseID(w, r, "adID")
	if !ok {
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	view, err := h.service.Add(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		adID,
		req.Text,
	)
	if err != nil {
		core.WriteServiceError(w, err, "ad")
		return
	}

	core.Created(w, ToCommentResponse(view))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	adID, ok := parseID(w, r, "adID")
	if !ok {
		return
	}
	commentID, ok := parseID(w, r, "commentID")
	if !ok {
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	view, err := h.service.Update(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		adID,
		commentID,
		req.Text,
	)
	if err != nil {
		core.WriteServiceError(w, err, "comment")
		return
	}

	core.OK(w, ToCommentResponse(view))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	adID, ok := parseID(w, r, "adID")
	if !ok {
		return
	}
	commentID, ok := parseID(w, r, "commentID")
	if !ok {
		return
	}

	if err := h.service.Delete(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		adID,
		commentID,
	); err != nil {
		core.WriteServiceError(w, err, "comment")
		return
	}

	core.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (CommentRequest, bool) {
	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return req, false
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return req, false
	}

	return req, true
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "invalid "+param)
		return 0, false
	}
	return id, true
}
