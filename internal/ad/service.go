// AngelaMos | 2026
// service.go

package ad

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carterperez-dev/templates/classifieds/internal/asset"
	"github.com/carterperez-dev/templates/classifieds/internal/core"
	"github.com/carterperez-dev/templates/classifieds/internal/policy"
)

// CommentPurger removes every comment attached to an ad. The comment
// service implements it.
type CommentPurger interface {
	DeleteByAd(ctx context.Context, adID int64) (int64, error)
}

type Service struct {
	repo      Repository
	comments  CommentPurger
	store     asset.Store
	maxUpload int64
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	comments CommentPurger,
	store asset.Store,
	maxUploadBytes int64,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		comments:  comments,
		store:     store,
		maxUpload: maxUploadBytes,
		logger:    logger,
	}
}

// Create writes the image first, under a reserved id, then inserts the row
// carrying its ref. A failed insert removes the blob again so no ad is ever
// visible without its image.
func (s *Service) Create(
	ctx context.Context,
	principal policy.Principal,
	req AdRequest,
	image []byte,
	contentType string,
) (*Ad, error) {
	if principal.IsZero() {
		return nil, fmt.Errorf("create ad: %w", core.ErrUnauthorized)
	}

	detected, err := asset.Validate(image, contentType, s.maxUpload)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.NextID(ctx)
	if err != nil {
		return nil, err
	}

	key := asset.AdKey(id)

	ref, err := s.store.Put(ctx, key, image, detected)
	if err != nil {
		return nil, fmt.Errorf("create ad: %w", err)
	}

	ad := &Ad{
		ID:          id,
		OwnerID:     principal.ID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
	}
	ad.SetImage(ref)

	if err := s.repo.Create(ctx, ad); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.ErrorContext(ctx, "orphan ad image after failed insert",
				"ad_id", id,
				"error", delErr,
			)
			core.SetSpanError(ctx, delErr)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "ad created", "ad_id", ad.ID, "owner_id", ad.OwnerID)

	return ad, nil
}

func (s *Service) Get(ctx context.Context, adID int64) (*Detail, error) {
	return s.repo.GetDetail(ctx, adID)
}

func (s *Service) Exists(ctx context.Context, adID int64) (bool, error) {
	_, err := s.repo.GetByID(ctx, adID)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) ListAll(ctx context.Context) ([]Ad, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListMine(
	ctx context.Context,
	principal policy.Principal,
) ([]Ad, error) {
	if principal.IsZero() {
		return nil, fmt.Errorf("list my ads: %w", core.ErrUnauthorized)
	}
	return s.repo.ListByOwner(ctx, principal.ID)
}

// Search matches title case-insensitively anywhere in the string. A blank
// query returns every ad.
func (s *Service) Search(ctx context.Context, title string) ([]Ad, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return s.repo.List(ctx)
	}
	return s.repo.SearchByTitle(ctx, title)
}

func (s *Service) Update(
	ctx context.Context,
	principal policy.Principal,
	adID int64,
	req AdRequest,
) (*Ad, error) {
	ad, err := s.loadForMutation(ctx, principal, adID)
	if err != nil {
		return nil, err
	}

	ad.Title = req.Title
	ad.Description = req.Description
	ad.Price = req.Price

	if err := s.repo.Update(ctx, ad); err != nil {
		return nil, err
	}

	return ad, nil
}

// UpdateImage swaps the ad image. The old blob is dropped before the new
// one is written and a missing old blob is fine.
func (s *Service) UpdateImage(
	ctx context.Context,
	principal policy.Principal,
	adID int64,
	image []byte,
	contentType string,
) (*Ad, error) {
	ad, err := s.loadForMutation(ctx, principal, adID)
	if err != nil {
		return nil, err
	}

	detected, err := asset.Validate(image, contentType, s.maxUpload)
	if err != nil {
		return nil, err
	}

	key := asset.AdKey(ad.ID)

	if err := s.store.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("update ad image: %w", err)
	}

	ref, err := s.store.Put(ctx, key, image, detected)
	if err != nil {
		return nil, fmt.Errorf("update ad image: %w", err)
	}

	if err := s.repo.UpdateImage(ctx, ad.ID, ref); err != nil {
		return nil, err
	}

	ad.SetImage(ref)
	return ad, nil
}

// Delete removes comments, then the ad row, then the image blob. A blob
// that cannot be removed after the row is gone is logged, not returned.
func (s *Service) Delete(
	ctx context.Context,
	principal policy.Principal,
	adID int64,
) error {
	ad, err := s.loadForMutation(ctx, principal, adID)
	if err != nil {
		return err
	}

	removed, err := s.comments.DeleteByAd(ctx, ad.ID)
	if err != nil {
		return fmt.Errorf("delete ad comments: %w", err)
	}

	if err := s.repo.Delete(ctx, ad.ID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, asset.AdKey(ad.ID)); err != nil {
		s.logger.ErrorContext(ctx, "ad image not removed",
			"ad_id", ad.ID,
			"error", err,
		)
		core.SetSpanError(ctx, err)
	}

	s.logger.InfoContext(ctx, "ad deleted",
		"ad_id", ad.ID,
		"by", principal.ID,
		"comments_removed", removed,
	)

	return nil
}

func (s *Service) DownloadImage(ctx context.Context, adID int64) (*asset.Object, error) {
	ad, err := s.repo.GetByID(ctx, adID)
	if err != nil {
		return nil, err
	}

	ref := ad.Image()
	if ref.IsZero() {
		return nil, fmt.Errorf("download ad image: %w", core.ErrNotFound)
	}

	obj, err := s.store.Open(ctx, asset.AdKey(ad.ID))
	if err != nil {
		return nil, err
	}

	obj.ContentType = ref.ContentType
	if obj.Size <= 0 {
		obj.Size = ref.Size
	}
	return obj, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) loadForMutation(
	ctx context.Context,
	principal policy.Principal,
	adID int64,
) (*Ad, error) {
	if principal.IsZero() {
		return nil, fmt.Errorf("load ad: %w", core.ErrUnauthorized)
	}

	ad, err := s.repo.GetByID(ctx, adID)
	if err != nil {
		return nil, err
	}

	if err := policy.Authorize(principal, ad.OwnerID); err != nil {
		return nil, err
	}

	return ad, nil
}
