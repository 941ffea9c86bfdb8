// AngelaMos | 2026
// handler.go

package ad

import (
	"encoding/json"
	"fmt"
	"io"
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

// RegisterRoutes mounts /ads. Comment routes under /ads/{adID}/comments
// are attached by the caller through mount.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	mount func(r chi.Router),
) {
	r.Route("/ads", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/search", h.Search)
		r.Get("/image/{adID}/download", h.DownloadImage)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Post("/", h.Create)
			r.Get("/me", h.ListMine)
			r.Get("/{adID}", h.Get)
			r.Patch("/{adID}", h.Update)
			r.Delete("/{adID}", h.Delete)
			r.Patch("/{adID}/image", h.UpdateImage)
		})

		if mount != nil {
			mount(r)
		}
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ads, err := h.service.ListAll(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToListResponse(ads))
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ads, err := h.service.Search(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToListResponse(ads))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	ads, err := h.service.ListMine(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		core.WriteServiceError(w, err, "ad")
		return
	}

	core.OK(w, ToListResponse(ads))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	adID, ok := parseAdID(w, r)
	if !ok {
		return
	}

	detail, err := h.service.Get(r.Context(), adID)
	if err != nil {
		core.WriteServiceError(w, err, "ad")
		return
	}

	core.OK(w, ToDetailResponse(detail))
}

// Create expects multipart/form-data with a JSON "properties" part and an
// "image" file part.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	upload, err := core.ReadUpload(w, r, "image", h.service.maxUpload)
	if err != nil {
		core.WriteServiceError(w, err, "image")
		return
	}

	req, err := readProperties(r)
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	ad, err := h.service.Create(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		req,
		upload.Data,
		upload.ContentType,
	)
	if err != nil {
		core.WriteServiceError(w, err, "ad")
		return
	}

	core.Created(w, ToAdResponse(ad))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	adID, ok := parseAdID(w, r)
	if !ok {
		return
	}

	var req AdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	ad, err := h.service.Update(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		adID,
		req,
	)
	if err != nil {
		core.WriteServiceError(w, err, "ad")
		return
	}

	core.OK(w, ToAdResponse(ad))
}

func (h *Handler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	adID, ok := parseAdID(w, r)
	if !ok {
		return
	}

	upload, err := core.ReadUpload(w, r, "image", h.service.maxUpload)
	if err != nil {
		core.WriteServiceError(w, err, "image")
		return
	}

	ad, err := h.service.UpdateImage(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		adID,
		upload.Data,
		upload.ContentType,
	)
	if err != nil {
		core.WriteServiceError(w, err, "ad")
		return
	}

	core.OK(w, ToAdResponse(ad))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	adID, ok := parseAdID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		adID,
	); err != nil {
		core.WriteServiceError(w, err, "ad")
		return
	}

	core.NoContent(w)
}

func (h *Handler) DownloadImage(w http.ResponseWriter, r *http.Request) {
	adID, ok := parseAdID(w, r)
	if !ok {
		return
	}

	obj, err := h.service.DownloadImage(r.Context(), adID)
	if err != nil {
		core.WriteServiceError(w, err, "image")
		return
	}

	asset.WriteObject(w, obj)
}

func parseAdID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "adID"), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "invalid ad id")
		return 0, false
	}
	return id, true
}

// readProperties accepts "properties" either as a plain form field or as a
// file part, which is how most HTTP clients send a JSON blob.
func readProperties(r *http.Request) (AdRequest, error) {
	var req AdRequest

	raw := []byte(r.FormValue("properties"))

	if len(raw) == 0 && r.MultipartForm != nil {
		if parts := r.MultipartForm.File["properties"]; len(parts) > 0 {
			f, err := parts[0].Open()
			if err != nil {
				return req, fmt.Errorf("read properties: %w", err)
			}
			defer f.Close() //nolint:errcheck // read-only multipart part

			raw, err = io.ReadAll(f)
			if err != nil {
				return req, fmt.Errorf("read properties: %w", err)
			}
		}
	}

	if len(raw) == 0 {
		return req, fmt.Errorf("missing properties part")
	}

	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("invalid properties JSON")
	}

	return req, nil
}
