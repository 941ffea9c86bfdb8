// AngelaMos | 2026
// upload.go

package core

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// multipartOverhead leaves room for boundaries and small text parts next to
// the file itself.
const multipartOverhead = 1 << 20

type Upload struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ReadUpload pulls one file part out of a multipart request. Files larger
// than maxBytes fail with ErrPayloadTooLarge before they are fully buffered.
func ReadUpload(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	maxBytes int64,
) (*Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("read upload: %w", ErrPayloadTooLarge)
		}
		return nil, fmt.Errorf("read upload: %v: %w", err, ErrInvalidInput)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("read upload: missing %q part: %w", field, ErrInvalidInput)
	}
	defer file.Close() //nolint:errcheck // read-only multipart part

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("read upload: %w", ErrPayloadTooLarge)
	}

	return &Upload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, nil
}
