// AngelaMos | 2026
// service.go

package comment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterperez-dev/templates/classifieds/internal/core"
	"github.com/carterperez-dev/templates/classifieds/internal/policy"
)

// AdChecker answers whether an ad exists. The ad service implements it.
type AdChecker interface {
	Exists(ctx context.Context, adID int64) (bool, error)
}

type Service struct {
	repo   Repository
	ads    AdChecker
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, ads AdChecker, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		ads:    ads,
		logger: logger,
		now:    time.Now,
	}
}

// List needs no principal. An ad without comments, or one that no longer
// exists, yields an empty list.
func (s *Service) List(ctx context.Context, adID int64) ([]View, error) {
	return s.repo.ListByAd(ctx, adID)
}

func (s *Service) Add(
	ctx context.Context,
	principal policy.Principal,
	adID int64,
	text string,
) (*View, error) {
	if principal.IsZero() {
		return nil, fmt.Errorf("add comment: %w", core.ErrUnauthorized)
	}

	exists, err := s.ads.Exists(ctx, adID)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("add comment: ad %d: %w", adID, core.ErrNotFound)
	}

	c := &Comment{
		AdID:      adID,
		AuthorID:  principal.ID,
		Text:      text,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	return s.repo.GetView(ctx, c.ID)
}

// Update changes the text only. Author and creation time are fixed.
func (s *Service) Update(
	ctx context.Context,
	principal policy.Principal,
	adID, commentID int64,
	text string,
) (*View, error) {
	c, err := s.loadForMutation(ctx, principal, adID, commentID)
	if err != nil {
		return nil, err
	}

	c.Text = text

	if err := s.repo.UpdateText(ctx, c); err != nil {
		return nil, err
	}

	return s.repo.GetView(ctx, c.ID)
}

func (s *Service) Delete(
	ctx context.Context,
	principal policy.Principal,
	adID, commentID int64,
) error {
	c, err := s.loadForMutation(ctx, principal, adID, commentID)
	if err != nil {
		return err
	}

	return s.repo.Delete(ctx, c.ID)
}

// DeleteByAd is the cascade step of ad deletion and performs no
// authorization of its own.
func (s *Service) DeleteByAd(ctx context.Context, adID int64) (int64, error) {
	n, err := s.repo.DeleteByAd(ctx, adID)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		s.logger.DebugContext(ctx, "ad comments removed", "ad_id", adID, "count", n)
	}

	return n, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) loadForMutation(
	ctx context.Context,
	principal policy.Principal,
	adID, commentID int64,
) (*Comment, error) {
	if principal.IsZero() {
		return nil, fmt.Errorf("load comment: %w", core.ErrUnauthorized)
	}

	c, err := s.repo.GetInAd(ctx, adID, commentID)
	if err != nil {
		return nil, err
	}

	if err := policy.Authorize(principal, c.AuthorID); err != nil {
		return nil, err
	}

	return c, nil
}
