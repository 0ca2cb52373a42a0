package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "avodah/internal/errors"
	"avodah/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	cookies     CookiePolicy
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, cookies CookiePolicy) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username" validate:"omitempty,max=64"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Password string `json:"password" validate:"omitempty,max=72"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SetPasswordRequest represents a password reset request.
type SetPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password" validate:"omitempty,max=72"`
}

// SetRoleRequest represents a role assignment request.
type SetRoleRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Register godoc
// @Summary Register a new member
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, Response{
		Message: "Usuário criado com sucesso.",
		Success: true,
		Data:    user,
	})
}

// Login godoc
// @Summary Login and receive the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	user := *result.User
	user.Role = result.Role

	c.SetCookie(h.cookies.session(result.Token, h.authService.TokenTTL()))
	return c.JSON(http.StatusOK, Response{
		Message: "Usuário logado com sucesso.",
		Success: true,
		Token:   result.Token,
		Data:    user,
	})
}

// Logout godoc
// @Summary Clear the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} Response
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if token := PresentedToken(c); token != "" {
		if err := h.authService.Logout(c.Request().Context(), token); err != nil {
			c.Logger().Warnf("logout: %v", err)
		}
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.SetCookie(h.cookies.cleared())

	return c.JSON(http.StatusOK, Response{
		Message: "Usuário deslogado com sucesso.",
		Success: true,
	})
}

// IsLogged godoc
// @Summary Return the user owning the session
// @Tags auth
// @Produce json
// @Security CookieAuth
// @Success 200 {object} Response
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/auth/isLogged [get]
func (h *AuthHandler) IsLogged(c echo.Context) error {
	user, err := h.authService.WhoAmI(c.Request().Context(), sessionToken(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Response{
		Message: "Usuário autenticado com sucesso.",
		Success: true,
		Data:    user,
	})
}

// SetPassword godoc
// @Summary Reset another user's password (developer only)
// @Tags auth
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body SetPasswordRequest true "Target email and new password"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/auth/set-password [post]
func (h *AuthHandler) SetPassword(c echo.Context) error {
	var req SetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.ResetPassword(c.Request().Context(), sessionToken(c), req.Email, req.Password); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Response{
		Message: "Senha atualizada com sucesso.",
		Success: true,
	})
}

// SetRole godoc
// @Summary Assign a role to a user (developer only)
// @Tags auth
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body SetRoleRequest true "Target email and role name"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/auth/set-role [post]
func (h *AuthHandler) SetRole(c echo.Context) error {
	var req SetRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.AssignRole(c.Request().Context(), sessionToken(c), req.Email, req.Role); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Response{
		Message: "Cargo atualizado com sucesso.",
		Success: true,
	})
}

const invalidInputMessage = "Dados inválidos."

func sessionToken(c echo.Context) string {
	token, _ := c.Get(TokenContextKey).(string)
	return token
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Validation("Corpo da requisição inválido.")
	}
	if err := c.Validate(req); err != nil {
		c.Logger().Debugf("request validation: %v", err)
		return apperrors.Validation(invalidInputMessage)
	}
	return nil
}
