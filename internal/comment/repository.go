// AngelaMos | 2026
// repository.go

package comment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/classifieds/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Comment) error
	GetInAd(ctx context.Context, adID, commentID int64) (*Comment, error)
	GetView(ctx context.Context, commentID int64) (*View, error)
	ListByAd(ctx context.Context, adID int64) ([]View, error)
	UpdateText(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, id int64) error
	DeleteByAd(ctx context.Context, adID int64) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const viewQuery = `
	SELECT c.id, c.ad_id, c.author_id, c.text, c.created_at,
	       u.first_name  AS author_first_name,
	       u.avatar_path AS author_avatar_path
	FROM comments c
	JOIN users u ON u.id = c.author_id`

func (r *repository) Create(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (ad_id, author_id, text, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.GetContext(ctx, &c.ID, query,
		c.AdID,
		c.AuthorID,
		c.Text,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

// GetInAd looks a comment up by the (ad, comment) pair. A comment that
// exists under another ad is reported as not found.
func (r *repository) GetInAd(
	ctx context.Context,
	adID, commentID int64,
) (*Comment, error) {
	query := `
		SELECT id, ad_id, author_id, text, created_at
		FROM comments
		WHERE id = $1 AND ad_id = $2`

	var c Comment
	err := r.db.GetContext(ctx, &c, query, commentID, adID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get comment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return &c, nil
}

func (r *repository) GetView(ctx context.Context, commentID int64) (*View, error) {
	var v View
	err := r.db.GetContext(ctx, &v, viewQuery+` WHERE c.id = $1`, commentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get comment view: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get comment view: %w", err)
	}

	return &v, nil
}

func (r *repository) ListByAd(ctx context.Context, adID int64) ([]View, error) {
	views := []View{}
	err := r.db.SelectContext(ctx, &views, viewQuery+` WHERE c.ad_id = $1 ORDER BY c.id`, adID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return views, nil
}

func (r *repository) UpdateText(ctx context.Context, c *Comment) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE comments SET text = $2 WHERE id = $1`,
		c.ID,
		c.Text,
	)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update comment: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete comment: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DeleteByAd(ctx context.Context, adID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE ad_id = $1`, adID)
	if err != nil {
		return 0, fmt.Errorf("delete ad comments: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete ad comments: %w", err)
	}

	return rows, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM comments`); err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}
