// AngelaMos | 2026
// entity.go

package user

import (
	"strconv"
	"time"

	"github.com/carterperez-dev/templates/classifieds/internal/asset"
	"github.com/carterperez-dev/templates/classifieds/internal/policy"
)

type User struct {
	ID              int64     `db:"id"`
	Email           string    `db:"email"`
	PasswordHash    string    `db:"password_hash"`
	FirstName       string    `db:"first_name"`
	LastName        string    `db:"last_name"`
	Phone           string    `db:"phone"`
	Role            string    `db:"role"`
	AvatarPath      string    `db:"avatar_path"`
	AvatarMediaType string    `db:"avatar_media_type"`
	AvatarFileSize  int64     `db:"avatar_file_size"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == policy.RoleAdmin
}

func (u *User) Principal() policy.Principal {
	return policy.Principal{ID: u.ID, Role: u.Role}
}

func (u *User) Avatar() asset.Ref {
	return asset.Ref{
		Path:        u.AvatarPath,
		ContentType: u.AvatarMediaType,
		Size:        u.AvatarFileSize,
	}
}

func (u *User) SetAvatar(ref asset.Ref) {
	u.AvatarPath = ref.Path
	u.AvatarMediaType = ref.ContentType
	u.AvatarFileSize = ref.Size
}

// ImageURL is the public download path for a user's avatar.
func ImageURL(userID int64) string {
	return "/v1/users/image/" + strconv.FormatInt(userID, 10) + "/download"
}
