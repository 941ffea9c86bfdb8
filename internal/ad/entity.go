// AngelaMos | 2026
// entity.go

package ad

import (
	"strconv"
	"time"

	"github.com/carterperez-dev/templates/classifieds/internal/asset"
)

type Ad struct {
	ID             int64     `db:"id"`
	OwnerID        int64     `db:"owner_id"`
	Title          string    `db:"title"`
	Description    string    `db:"description"`
	Price          int64     `db:"price"`
	ImagePath      string    `db:"image_path"`
	ImageMediaType string    `db:"image_media_type"`
	ImageFileSize  int64     `db:"image_file_size"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (a *Ad) Image() asset.Ref {
	return asset.Ref{
		Path:        a.ImagePath,
		ContentType: a.ImageMediaType,
		Size:        a.ImageFileSize,
	}
}

func (a *Ad) SetImage(ref asset.Ref) {
	a.ImagePath = ref.Path
	a.ImageMediaType = ref.ContentType
	a.ImageFileSize = ref.Size
}

// Detail is an ad joined with its owner's contact fields.
type Detail struct {
	Ad
	OwnerFirstName string `db:"owner_first_name"`
	OwnerLastName  string `db:"owner_last_name"`
	OwnerEmail     string `db:"owner_email"`
	OwnerPhone     string `db:"owner_phone"`
}

func ImageURL(adID int64) string {
	return "/v1/ads/image/" + strconv.FormatInt(adID, 10) + "/download"
}
