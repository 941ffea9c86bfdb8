// AngelaMos | 2026
// serve.go

package asset

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
)

// WriteObject streams obj as the response body and closes it.
func WriteObject(w http.ResponseWriter, obj *Object) {
	defer obj.Body.Close() //nolint:errcheck // read side only

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Cache-Control", "public, max-age=300")
	if obj.Size > 0 {
		h.Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, obj.Body); err != nil {
		slog.Warn("asset stream interrupted", "error", err)
	}
}
