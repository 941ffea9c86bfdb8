// AngelaMos | 2026
// asset.go

package asset

import (
	"context"
	"io"
	"strconv"
)

type Kind string

const (
	KindAvatar Kind = "avatars"
	KindAd     Kind = "ads"
)

// Key addresses the single blob owned by one entity.
type Key struct {
	Kind Kind
	ID   int64
}

func (k Key) Path() string {
	return string(k.Kind) + "/" + strconv.FormatInt(k.ID, 10)
}

func AvatarKey(userID int64) Key {
	return Key{Kind: KindAvatar, ID: userID}
}

func AdKey(adID int64) Key {
	return Key{Kind: KindAd, ID: adID}
}

// Ref is what the owning row remembers about its blob. The three fields are
// written together from a successful Put and cleared together.
type Ref struct {
	Path        string
	ContentType string
	Size        int64
}

func (r Ref) IsZero() bool {
	return r.Path == ""
}

// Object is an open blob. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

type Store interface {
	// Put writes data under key, replacing whatever was there.
	Put(ctx context.Context, key Key, data []byte, contentType string) (Ref, error)
	// Open returns core.ErrNotFound when nothing is stored under key.
	Open(ctx context.Context, key Key) (*Object, error)
	// Delete is idempotent: removing an absent key is not an error.
	Delete(ctx context.Context, key Key) error
	Ping(ctx context.Context) error
}
