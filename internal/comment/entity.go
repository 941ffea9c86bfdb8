// AngelaMos | 2026
// entity.go

package comment

import (
	"time"
)

type Comment struct {
	ID        int64     `db:"id"`
	AdID      int64     `db:"ad_id"`
	AuthorID  int64     `db:"author_id"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}

// View is a comment joined with what the listing shows about its author.
type View struct {
	Comment
	AuthorFirstName  string `db:"author_first_name"`
	AuthorAvatarPath string `db:"author_avatar_path"`
}
