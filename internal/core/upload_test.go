// AngelaMos | 2026
// upload_test.go

package core

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
)

func multipartRequest(t *testing.T, field string, data []byte, contentType string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="photo.png"`)
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestReadUpload(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 32)

	t.Run("within limit", func(t *testing.T) {
		req := multipartRequest(t, "image", data, "image/png")

		up, err := ReadUpload(httptest.NewRecorder(), req, "image", 64)
		if err != nil {
			t.Fatalf("ReadUpload() error: %v", err)
		}
		if !bytes.Equal(up.Data, data) || up.ContentType != "image/png" || up.Filename != "photo.png" {
			t.Errorf("upload = %+v", up)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		req := multipartRequest(t, "image", data, "image/png")

		_, err := ReadUpload(httptest.NewRecorder(), req, "image", 16)
		if !errors.Is(err, ErrPayloadTooLarge) {
			t.Errorf("error = %v, want ErrPayloadTooLarge", err)
		}
	})

	t.Run("wrong field", func(t *testing.T) {
		req := multipartRequest(t, "avatar", data, "image/png")

		_, err := ReadUpload(httptest.NewRecorder(), req, "image", 64)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")

		_, err := ReadUpload(httptest.NewRecorder(), req, "image", 64)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})
}
