// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/classifieds/internal/asset"
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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/image/{userID}/download", h.DownloadAvatar)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Get("/me", h.GetMe)
			r.Patch("/me", h.UpdateMe)
			r.Post("/set_password", h.SetPassword)
			r.Patch("/me/image", h.UpdateAvatar)
		})
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetProfile(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
	)
	if err != nil {
		core.WriteServiceError(w, err, "user")
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateProfile(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		req,
	)
	if err != nil {
		core.WriteServiceError(w, err, "user")
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req SetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	changed, err := h.service.ChangePassword(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		req.CurrentPassword,
		req.NewPassword,
	)
	if err != nil {
		core.WriteServiceError(w, err, "user")
		return
	}

	if !changed {
		core.Unauthorized(w, "current password is incorrect")
		return
	}

	core.OK(w, map[string]bool{"changed": true})
}

func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	upload, err := core.ReadUpload(w, r, "image", h.service.maxUpload)
	if err != nil {
		core.WriteServiceError(w, err, "image")
		return
	}

	user, err := h.service.UpdateAvatar(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		upload.Data,
		upload.ContentType,
	)
	if err != nil {
		core.WriteServiceError(w, err, "user")
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) DownloadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		core.BadRequest(w, "invalid user id")
		return
	}

	obj, err := h.service.DownloadAvatar(r.Context(), userID)
	if err != nil {
		core.WriteServiceError(w, err, "image")
		return
	}

	asset.WriteObject(w, obj)
}
