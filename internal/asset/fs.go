// AngelaMos | 2026
// fs.go

package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/carterperez-dev/templates/classifieds/internal/core"
)

// FSStore keeps blobs as plain files on an afero filesystem.
type FSStore struct {
	fs afero.Fs
}

func NewFSStore(fsys afero.Fs) *FSStore {
	return &FSStore{fs: fsys}
}

// NewLocalStore roots an FSStore at dir on the host filesystem.
func NewLocalStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return NewFSStore(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

func (s *FSStore) Put(
	_ context.Context,
	key Key,
	data []byte,
	contentType string,
) (Ref, error) {
	p := key.Path()

	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return Ref{}, fmt.Errorf("put %s: %w", p, err)
	}

	if err := afero.WriteFile(s.fs, p, data, 0o644); err != nil {
		return Ref{}, fmt.Errorf("put %s: %w", p, err)
	}

	return Ref{
		Path:        p,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (s *FSStore) Open(_ context.Context, key Key) (*Object, error) {
	p := key.Path()

	f, err := s.fs.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("open %s: %w", p, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close() //nolint:errcheck // cleanup on stat failure
		return nil, fmt.Errorf("stat %s: %w", p, err)
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		_ = f.Close() //nolint:errcheck // cleanup on read failure
		return nil, fmt.Errorf("detect %s: %w", p, err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close() //nolint:errcheck // cleanup on seek failure
		return nil, fmt.Errorf("rewind %s: %w", p, err)
	}

	return &Object{
		Body:        f,
		ContentType: mt.String(),
		Size:        info.Size(),
	}, nil
}

func (s *FSStore) Delete(_ context.Context, key Key) error {
	p := key.Path()

	err := s.fs.Remove(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", p, err)
	}

	return nil
}

func (s *FSStore) Ping(_ context.Context) error {
	if _, err := s.fs.Stat("."); err != nil {
		return fmt.Errorf("storage root unavailable: %w", err)
	}
	return nil
}

var _ Store = (*FSStore)(nil)
