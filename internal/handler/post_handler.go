package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"avodah/internal/service"
)

// PostHandler serves the community feed.
type PostHandler struct {
	svc service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(svc service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// CreatePostRequest represents a new post.
type CreatePostRequest struct {
	Title    string `json:"title" validate:"omitempty,max=255"`
	Content  string `json:"content"`
	Author   string `json:"author" validate:"omitempty,max=64"`
	AuthorID string `json:"authorId"`
	Image    string `json:"image"`
}

// Create godoc
// @Summary Publish a post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body CreatePostRequest true "Post"
// @Success 201 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/auth/posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	var req CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.svc.Create(c.Request().Context(), service.NewPost{
		Title:    req.Title,
		Content:  req.Content,
		Author:   req.Author,
		AuthorID: req.AuthorID,
		Image:    req.Image,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, Response{
		Message: "Post criado com sucesso.",
		Success: true,
		Data:    post,
	})
}

// List godoc
// @Summary List posts, newest first
// @Tags posts
// @Produce json
// @Success 200 {object} Response
// @Router /api/auth/posts [get]
func (h *PostHandler) List(c echo.Context) error {
	posts, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Response{
		Message: "Posts encontrados.",
		Success: true,
		Data:    posts,
	})
}

// Get godoc
// @Summary Get a post by id
// @Tags posts
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/auth/posts/{postId} [get]
func (h *PostHandler) Get(c echo.Context) error {
	post, err := h.svc.Get(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Response{
		Message: "Post encontrado.",
		Success: true,
		Data:    post,
	})
}

// Remove godoc
// @Summary Delete a post by id
// @Tags posts
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/auth/posts/remove/{postId} [post]
func (h *PostHandler) Remove(c echo.Context) error {
	if err := h.svc.Remove(c.Request().Context(), c.Param("postId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Response{
		Message: "Post removido com sucesso.",
		Success: true,
	})
}
