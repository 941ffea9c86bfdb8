// AngelaMos | 2026
// repository.go

package ad

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/classifieds/internal/asset"
	"github.com/carterperez-dev/templates/classifieds/internal/core"
)

type Repository interface {
	NextID(ctx context.Context) (int64, error)
	Create(ctx context.Context, ad *Ad) error
	GetByID(ctx context.Context, id int64) (*Ad, error)
	GetDetail(ctx context.Context, id int64) (*Detail, error)
	List(ctx context.Context) ([]Ad, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Ad, error)
	SearchByTitle(ctx context.Context, title string) ([]Ad, error)
	Update(ctx context.Context, ad *Ad) error
	UpdateImage(ctx context.Context, id int64, ref asset.Ref) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const adColumns = `
	a.id, a.owner_id, a.title, a.description, a.price,
	a.image_path, a.image_media_type, a.image_file_size,
	a.created_at, a.updated_at`

// NextID reserves an id so the image can be stored before the row exists.
func (r *repository) NextID(ctx context.Context) (int64, error) {
	var id int64
	query := `SELECT nextval(pg_get_serial_sequence('ads', 'id'))`
	if err := r.db.GetContext(ctx, &id, query); err != nil {
		return 0, fmt.Errorf("reserve ad id: %w", err)
	}
	return id, nil
}

// Create inserts ad under its reserved id together with its image ref.
func (r *repository) Create(ctx context.Context, ad *Ad) error {
	query := `
		INSERT INTO ads (id, owner_id, title, description, price,
		                 image_path, image_media_type, image_file_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		ad.ID,
		ad.OwnerID,
		ad.Title,
		ad.Description,
		ad.Price,
		ad.ImagePath,
		ad.ImageMediaType,
		ad.ImageFileSize,
	).Scan(&ad.CreatedAt, &ad.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create ad: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Ad, error) {
	query := `SELECT ` + adColumns + ` FROM ads a WHERE a.id = $1`

	var ad Ad
	err := r.db.GetContext(ctx, &ad, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get ad: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get ad: %w", err)
	}

	return &ad, nil
}

func (r *repository) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	query := `
		SELECT ` + adColumns + `,
		       u.first_name AS owner_first_name,
		       u.last_name  AS owner_last_name,
		       u.email      AS owner_email,
		       u.phone      AS owner_phone
		FROM ads a
		JOIN users u ON u.id = a.owner_id
		WHERE a.id = $1`

	var detail Detail
	err := r.db.GetContext(ctx, &detail, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get ad detail: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get ad detail: %w", err)
	}

	return &detail, nil
}

func (r *repository) List(ctx context.Context) ([]Ad, error) {
	query := `SELECT ` + adColumns + ` FROM ads a ORDER BY a.id`

	ads := []Ad{}
	if err := r.db.SelectContext(ctx, &ads, query); err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}

	return ads, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID int64) ([]Ad, error) {
	query := `SELECT ` + adColumns + ` FROM ads a WHERE a.owner_id = $1 ORDER BY a.id`

	ads := []Ad{}
	if err := r.db.SelectContext(ctx, &ads, query, ownerID); err != nil {
		return nil, fmt.Errorf("list ads by owner: %w", err)
	}

	return ads, nil
}

func (r *repository) SearchByTitle(ctx context.Context, title string) ([]Ad, error) {
	query := `
		SELECT ` + adColumns + `
		FROM ads a
		WHERE a.title ILIKE $1
		ORDER BY a.id`

	ads := []Ad{}
	pattern := "%" + escapeLike(title) + "%"
	if err := r.db.SelectContext(ctx, &ads, query, pattern); err != nil {
		return nil, fmt.Errorf("search ads: %w", err)
	}

	return ads, nil
}

func (r *repository) Update(ctx context.Context, ad *Ad) error {
	query := `
		UPDATE ads
		SET title = $2, description = $3, price = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &ad.UpdatedAt, query,
		ad.ID,
		ad.Title,
		ad.Description,
		ad.Price,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update ad: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update ad: %w", err)
	}

	return nil
}

func (r *repository) UpdateImage(ctx context.Context, id int64, ref asset.Ref) error {
	query := `
		UPDATE ads
		SET image_path = $2, image_media_type = $3, image_file_size = $4,
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, ref.Path, ref.ContentType, ref.Size)
	if err != nil {
		return fmt.Errorf("update ad image: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ad image: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update ad image: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ad: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete ad: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete ad: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM ads`); err != nil {
		return 0, fmt.Errorf("count ads: %w", err)
	}
	return n, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
