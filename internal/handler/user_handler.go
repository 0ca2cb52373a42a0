package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "avodah/internal/errors"
	"avodah/internal/model"
	"avodah/internal/service"
)

// SessionOwner resolves the user a session token belongs to.
type SessionOwner interface {
	WhoAmI(ctx context.Context, token string) (*model.User, error)
}

// UserHandler serves profile endpoints.
type UserHandler struct {
	svc      service.UserService
	sessions SessionOwner
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc service.UserService, sessions SessionOwner) *UserHandler {
	return &UserHandler{svc: svc, sessions: sessions}
}

// ChangePictureRequest carries the target user and an image data URI.
type ChangePictureRequest struct {
	User struct {
		Email string `json:"email"`
	} `json:"user"`
	Picture string `json:"picture"`
}

// GetUser godoc
// @Summary Look up a public profile by username
// @Tags users
// @Produce json
// @Param id query string true "Username"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/auth/getUser [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.svc.GetByUsername(c.Request().Context(), c.QueryParam("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Response{
		Message: "Usuário encontrado.",
		Success: true,
		Data:    user,
	})
}

// ChangePicture godoc
// @Summary Replace the session owner's profile picture
// @Tags users
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body ChangePictureRequest true "User email and data URI"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/auth/change-picture [post]
func (h *UserHandler) ChangePicture(c echo.Context) error {
	var req ChangePictureRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	owner, err := h.sessions.WhoAmI(ctx, sessionToken(c))
	if err != nil {
		return err
	}
	// The body email is optional; when sent it must name the session owner.
	if email := strings.TrimSpace(req.User.Email); email != "" && !strings.EqualFold(email, owner.Email) {
		return apperrors.ErrPermissionDenied
	}

	if err := h.svc.SetProfilePicture(ctx, owner.Email, req.Picture); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Response{
		Message: "Foto de perfil atualizada com sucesso.",
		Success: true,
	})
}
