// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carterperez-dev/templates/classifieds/internal/asset"
	"github.com/carterperez-dev/templates/classifieds/internal/auth"
	"github.com/carterperez-dev/templates/classifieds/internal/core"
	"github.com/carterperez-dev/templates/classifieds/internal/policy"
)

type Service struct {
	repo      Repository
	hasher    core.PasswordHasher
	store     asset.Store
	maxUpload int64
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	hasher core.PasswordHasher,
	store asset.Store,
	maxUploadBytes int64,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		hasher:    hasher,
		store:     store,
		maxUpload: maxUploadBytes,
		logger:    logger,
	}
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	reg auth.Registration,
) (*auth.UserInfo, error) {
	if !policy.ValidRole(reg.Role) {
		return nil, fmt.Errorf(
			"create user: invalid role %q: %w",
			reg.Role,
			core.ErrInvalidInput,
		)
	}

	user := &User{
		Email:        normalizeEmail(reg.Email),
		PasswordHash: reg.PasswordHash,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Phone:        reg.Phone,
		Role:         reg.Role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetProfile(
	ctx context.Context,
	principal policy.Principal,
) (*User, error) {
	if principal.IsZero() {
		return nil, fmt.Errorf("get profile: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, principal.ID)
}

// UpdateProfile overwrites contact fields only. Id, role and password are
// never touched here.
func (s *Service) UpdateProfile(
	ctx context.Context,
	principal policy.Principal,
	req UpdateProfileRequest,
) (*User, error) {
	user, err := s.GetProfile(ctx, principal)
	if err != nil {
		return nil, err
	}

	user.Email = normalizeEmail(req.Email)
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Phone = req.Phone

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword reports false without error when current does not match.
func (s *Service) ChangePassword(
	ctx context.Context,
	principal policy.Principal,
	current, next string,
) (bool, error) {
	if strings.TrimSpace(next) == "" {
		return false, fmt.Errorf(
			"change password: new password is blank: %w",
			core.ErrInvalidInput,
		)
	}

	user, err := s.GetProfile(ctx, principal)
	if err != nil {
		return false, err
	}

	ok, err := s.hasher.Matches(current, user.PasswordHash)
	if err != nil {
		return false, fmt.Errorf("change password: %w", err)
	}
	if !ok {
		return false, nil
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return false, fmt.Errorf("change password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return false, err
	}

	s.logger.InfoContext(ctx, "password changed", "user_id", user.ID)

	return true, nil
}

// UpdateAvatar replaces the caller's avatar. The upload is checked before
// storage is touched.
func (s *Service) UpdateAvatar(
	ctx context.Context,
	principal policy.Principal,
	data []byte,
	contentType string,
) (*User, error) {
	user, err := s.GetProfile(ctx, principal)
	if err != nil {
		return nil, err
	}

	detected, err := asset.Validate(data, contentType, s.maxUpload)
	if err != nil {
		return nil, err
	}

	ref, err := s.store.Put(ctx, asset.AvatarKey(user.ID), data, detected)
	if err != nil {
		return nil, fmt.Errorf("update avatar: %w", err)
	}

	if err := s.repo.UpdateAvatar(ctx, user.ID, ref); err != nil {
		return nil, err
	}

	user.SetAvatar(ref)
	return user, nil
}

func (s *Service) DownloadAvatar(
	ctx context.Context,
	userID int64,
) (*asset.Object, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ref := user.Avatar()
	if ref.IsZero() {
		return nil, fmt.Errorf("download avatar: %w", core.ErrNotFound)
	}

	obj, err := s.store.Open(ctx, asset.AvatarKey(user.ID))
	if err != nil {
		return nil, err
	}

	obj.ContentType = ref.ContentType
	if obj.Size <= 0 {
		obj.Size = ref.Size
	}
	return obj, nil
}

// EnsureAdmin creates an ADMIN account or promotes an existing one. The
// password is only set when the account is new.
func (s *Service) EnsureAdmin(
	ctx context.Context,
	reg auth.Registration,
	password string,
) (*User, bool, error) {
	existing, err := s.repo.GetByEmail(ctx, normalizeEmail(reg.Email))
	if err == nil {
		if existing.IsAdmin() {
			return existing, false, nil
		}
		if err := s.repo.UpdateRole(ctx, existing.ID, policy.RoleAdmin); err != nil {
			return nil, false, err
		}
		existing.Role = policy.RoleAdmin
		return existing, false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, false, err
	}

	if len(password) < minPasswordLength {
		return nil, false, fmt.Errorf(
			"ensure admin: password shorter than %d: %w",
			minPasswordLength,
			core.ErrInvalidInput,
		)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, false, fmt.Errorf("ensure admin: %w", err)
	}

	reg.PasswordHash = hash
	reg.Role = policy.RoleAdmin

	info, err := s.Create(ctx, reg)
	if err != nil {
		return nil, false, err
	}

	user, err := s.repo.GetByID(ctx, info.ID)
	if err != nil {
		return nil, false, err
	}

	return user, true, nil
}

const minPasswordLength = 8

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
	}
}

var _ auth.UserProvider = (*Service)(nil)
