// AngelaMos | 2026
// handler_test.go

package comment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/classifieds/internal/core"
	"github.com/carterperez-dev/templates/classifieds/internal/middleware"
	"github.com/carterperez-dev/templates/classifieds/internal/policy"
)

type tokenVerifier map[string]policy.Principal

func (v tokenVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	p, ok := v[token]
	if !ok {
		return nil, core.ErrTokenInvalid
	}
	return &middleware.AccessTokenClaims{
		UserID:  p.ID,
		Role:    p.Role,
		TokenID: "jti-" + token,
	}, nil
}

// newTestRouter nests the comment routes inside /v1/ads, where the ad
// handler mounts them in production.
func newTestRouter(t *testing.T) (http.Handler, *Service, *memRepo) {
	t.Helper()

	svc, repo := newTestService()
	authenticator := middleware.Authenticator(tokenVerifier{
		"alice": alice,
		"bob":   bob,
		"admin": admin,
	})

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Route("/ads", func(r chi.Router) {
			NewHandler(svc).RegisterRoutes(r, authenticator)
		})
	})
	return r, svc, repo
}

func send(router http.Handler, method, url, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerAddAndList(t *testing.T) {
	router, _, _ := newTestRouter(t)

	tests := []struct {
		name   string
		url    string
		token  string
		body   string
		status int
	}{
		{"ok", "/v1/ads/10/comments/", "alice", `{"text":"still available?"}`, http.StatusCreated},
		{"anonymous", "/v1/ads/10/comments/", "", `{"text":"hi"}`, http.StatusUnauthorized},
		{"unknown ad", "/v1/ads/99/comments/", "alice", `{"text":"hi"}`, http.StatusNotFound},
		{"empty text", "/v1/ads/10/comments/", "alice", `{"text":""}`, http.StatusBadRequest},
		{"bad body", "/v1/ads/10/comments/", "alice", `{"text":`, http.StatusBadRequest},
		{"zero ad id", "/v1/ads/0/comments/", "alice", `{"text":"hi"}`, http.StatusBadRequest},
		{"negative ad id", "/v1/ads/-3/comments/", "alice", `{"text":"hi"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(router, http.MethodPost, tt.url, tt.token, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
		})
	}

	rec := send(router, http.MethodGet, "/v1/ads/10/comments/", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET comments status = %d", rec.Code)
	}

	var body struct {
		Success bool         `json:"success"`
		Data    ListResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Data.Count != 1 || body.Data.Results[0].Author != alice.ID ||
		body.Data.Results[0].AuthorFirstName != "Alice" ||
		body.Data.Results[0].Text != "still available?" {
		t.Errorf("list = %+v", body.Data)
	}
}

func TestHandlerMutations(t *testing.T) {
	tests := []struct {
		name   string
		method string
		adID   int64
		token  string
		body   string
		status int
	}{
		{"author edits", http.MethodPatch, 10, "alice", `{"text":"edited"}`, http.StatusOK},
		{"admin edits", http.MethodPatch, 10, "admin", `{"text":"edited"}`, http.StatusOK},
		{"other user edits", http.MethodPatch, 10, "bob", `{"text":"edited"}`, http.StatusForbidden},
		{"other user deletes", http.MethodDelete, 10, "bob", "", http.StatusForbidden},
		{"anonymous deletes", http.MethodDelete, 10, "", "", http.StatusUnauthorized},
		{"wrong ad on edit", http.MethodPatch, 20, "alice", `{"text":"edited"}`, http.StatusNotFound},
		{"wrong ad on delete", http.MethodDelete, 20, "alice", "", http.StatusNotFound},
		{"wrong ad as admin", http.MethodDelete, 20, "admin", "", http.StatusNotFound},
		{"empty edit", http.MethodPatch, 10, "alice", `{"text":""}`, http.StatusBadRequest},
		{"author deletes", http.MethodDelete, 10, "alice", "", http.StatusNoContent},
		{"admin deletes", http.MethodDelete, 10, "admin", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc, repo := newTestRouter(t)

			c, err := svc.Add(context.Background(), alice, 10, "original")
			if err != nil {
				t.Fatal(err)
			}

			url := fmt.Sprintf("/v1/ads/%d/comments/%d", tt.adID, c.ID)
			rec := send(router, tt.method, url, tt.token, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}

			stored, ok := repo.comments[c.ID]
			switch {
			case tt.status == http.StatusNoContent:
				if ok {
					t.Error("comment still stored after delete")
				}
			case tt.status == http.StatusOK:
				if !ok || stored.Text != "edited" || stored.AuthorID != alice.ID {
					t.Errorf("stored = %+v", stored)
				}
			default:
				if !ok || stored.Text != "original" {
					t.Errorf("rejected request changed the comment: %+v", stored)
				}
			}
		})
	}
}

func TestHandlerRejectsBadCommentID(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, id := range []string{"0", "-1", "x"} {
		for _, method := range []string{http.MethodPatch, http.MethodDelete} {
			rec := send(router, method, "/v1/ads/10/comments/"+id, "alice", `{"text":"edited"}`)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s comment %s status = %d, want 400", method, id, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "commentID") {
				t.Errorf("%s comment %s body = %s", method, id, rec.Body)
			}
		}
	}
}
