package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"avodah/internal/cache"
	apperrors "avodah/internal/errors"
	"avodah/internal/model"
	"avodah/internal/repository"
)

const (
	feedCacheKey = "posts:feed"
	feedCacheTTL = time.Minute
)

// NewPost is the input for creating a post.
type NewPost struct {
	Title    string
	Content  string
	Author   string
	AuthorID string
	Image    string
}

// PostService exposes the community feed.
type PostService interface {
	Create(ctx context.Context, in NewPost) (*model.Post, error)
	List(ctx context.Context) ([]model.Post, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	Remove(ctx context.Context, id string) error
}

type postService struct {
	repo  repository.PostRepository
	cache cache.Store
}

// NewPostService builds a PostService with repository and cache.
func NewPostService(repo repository.PostRepository, cache cache.Store) PostService {
	return &postService{repo: repo, cache: cache}
}

func (s *postService) Create(ctx context.Context, in NewPost) (*model.Post, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" ||
		strings.TrimSpace(in.Author) == "" || strings.TrimSpace(in.AuthorID) == "" {
		return nil, apperrors.ErrIncompletePost
	}

	post := &model.Post{
		Title:    in.Title,
		Content:  in.Content,
		Author:   in.Author,
		AuthorID: in.AuthorID,
		Image:    in.Image,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	_ = s.cache.Delete(ctx, feedCacheKey)
	return post, nil
}

// List returns the feed newest first, served from cache when possible.
func (s *postService) List(ctx context.Context) ([]model.Post, error) {
	if data, _ := s.cache.Get(ctx, feedCacheKey); data != nil {
		var cached []model.Post
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	posts, err := s.repo.ListNewestFirst(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if posts == nil {
		posts = []model.Post{}
	}

	if payload, err := json.Marshal(posts); err == nil {
		_ = s.cache.Set(ctx, feedCacheKey, payload, feedCacheTTL)
	}
	return posts, nil
}

func (s *postService) Get(ctx context.Context, id string) (*model.Post, error) {
	postID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrPostNotFound
	}
	return s.repo.FindByID(ctx, postID)
}

func (s *postService) Remove(ctx context.Context, id string) error {
	postID, err := uuid.Parse(id)
	if err != nil {
		return apperrors.ErrPostNotFound
	}
	if err := s.repo.Delete(ctx, postID); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, feedCacheKey)
	return nil
}
