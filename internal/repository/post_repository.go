package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "avodah/internal/errors"
	"avodah/internal/model"
)

// PostRepository defines feed persistence operations.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	ListNewestFirst(ctx context.Context) ([]model.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB, timeout time.Duration) PostRepository {
	return &postRepository{db: db, timeout: timeout}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var post model.Post
	if err := r.db.WithContext(ctx).Where("post_id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListNewestFirst(ctx context.Context) ([]model.Post, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var posts []model.Post
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Delete removes a post, returning apperrors.ErrPostNotFound when nothing matched.
func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).Where("post_id = ?", id).Delete(&model.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}
