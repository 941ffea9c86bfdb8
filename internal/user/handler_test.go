// AngelaMos | 2026
// handler_test.go

package user

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/classifieds/internal/middleware"
	"github.com/carterperez-dev/templates/classifieds/internal/policy"
)

// asPrincipal stands in for the JWT authenticator.
func asPrincipal(p policy.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
				UserID: p.ID,
				Role:   p.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newTestRouter(t *testing.T) (http.Handler, *Service, policy.Principal) {
	t.Helper()

	svc, _ := newTestService(t)
	p := seedUser(t, svc, "http@example.com")

	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, asPrincipal(p))
	return r, svc, p
}

func TestHandlerGetMe(t *testing.T) {
	router, _, p := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /users/me status = %d, body = %s", rec.Code, rec.Body)
	}

	var body struct {
		Success bool         `json:"success"`
		Data    UserResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Data.ID != p.ID || body.Data.Email != "http@example.com" {
		t.Errorf("GET /users/me body = %+v", body)
	}
}

func TestHandlerSetPassword(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{
			name:   "mismatch",
			body:   `{"currentPassword":"wrong","newPassword":"brand-new-pass"}`,
			status: http.StatusUnauthorized,
		},
		{
			name:   "ok",
			body:   `{"currentPassword":"old-password","newPassword":"brand-new-pass"}`,
			status: http.StatusOK,
		},
		{
			name:   "missing new",
			body:   `{"currentPassword":"old-password"}`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _, _ := newTestRouter(t)

			req := httptest.NewRequest(
				http.MethodPost,
				"/users/set_password",
				bytes.NewBufferString(tt.body),
			)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
		})
	}
}

func multipartImage(t *testing.T, field string, data []byte, contentType string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="pic.png"`)
	hdr.Set("Content-Type", contentType)

	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHandlerAvatarUploadAndDownload(t *testing.T) {
	router, _, p := newTestRouter(t)

	body, ct := multipartImage(t, "image", pngBytes, "image/png")
	req := httptest.NewRequest(http.MethodPatch, "/users/me/image", body)
	req.Header.Set("Content-Type", ct)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("PATCH /users/me/image status = %d, body = %s", rec.Code, rec.Body)
	}

	url := "/users/image/" + strconv.FormatInt(p.ID, 10) + "/download"
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d", url, rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), pngBytes) {
		t.Error("downloaded body differs from upload")
	}
}

func TestHandlerDownloadMissingAvatar(t *testing.T) {
	router, _, p := newTestRouter(t)

	url := "/users/image/" + strconv.FormatInt(p.ID, 10) + "/download"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

