package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "avodah/internal/errors"
	"avodah/internal/model"
	"avodah/internal/repository"
	"avodah/internal/storage"
)

// UserService exposes profile operations outside the auth flow.
type UserService interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	SetProfilePicture(ctx context.Context, email, picture string) error
}

type userService struct {
	repo     repository.UserRepository
	pictures storage.PictureStore
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository, pictures storage.PictureStore) UserService {
	return &userService{repo: repo, pictures: pictures}
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperrors.ErrUserNotFound
	}
	return s.repo.FindByUsername(ctx, username)
}

// SetProfilePicture stores an image data URI as the user's picture.
func (s *userService) SetProfilePicture(ctx context.Context, email, picture string) error {
	picture = strings.TrimSpace(picture)
	if strings.TrimSpace(email) == "" || !strings.HasPrefix(picture, "data:image/") {
		return apperrors.ErrInvalidPicture
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	ref, err := s.pictures.Save(ctx, user.ID, picture)
	if err != nil {
		if errors.Is(err, storage.ErrMalformedDataURI) {
			return apperrors.ErrInvalidPicture
		}
		return fmt.Errorf("store picture: %w", err)
	}

	if err := s.repo.UpdateFields(ctx, user.ID, map[string]interface{}{
		"profile_picture": ref,
	}); err != nil {
		return fmt.Errorf("update picture: %w", err)
	}
	return nil
}
