// AngelaMos | 2026
// validate.go

package asset

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/carterperez-dev/templates/classifieds/internal/core"
)

// Validate checks an upload before anything is written and returns the
// content type to store. The type is sniffed from the bytes; the declared
// type only has to agree that the upload is an image.
func Validate(data []byte, declared string, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("validate upload: empty file: %w", core.ErrInvalidInput)
	}

	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf(
			"validate upload: %d bytes exceeds limit of %d: %w",
			len(data),
			maxBytes,
			core.ErrPayloadTooLarge,
		)
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", fmt.Errorf(
			"validate upload: %s is not an image: %w",
			detected.String(),
			core.ErrInvalidInput,
		)
	}

	if declared != "" && !strings.HasPrefix(declared, "image/") &&
		declared != "application/octet-stream" {
		return "", fmt.Errorf(
			"validate upload: declared type %q is not an image: %w",
			declared,
			core.ErrInvalidInput,
		)
	}

	return detected.String(), nil
}
