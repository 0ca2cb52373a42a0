package router

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"avodah/internal/auth"
	"avodah/internal/config"
	apperrors "avodah/internal/errors"
	"avodah/internal/handler"
	"avodah/internal/metrics"
)

const bodyLimit = "10M"

// TokenVerifier checks a session token's signature and expiry.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
	Post   *handler.PostHandler
	Extras *handler.ExtrasHandler
	Health *handler.HealthHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, tokens TokenVerifier, m *metrics.Metrics, h Handlers) {
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	if m != nil {
		// Outside Recover, so recovered panics are counted as 500s.
		e.Use(m.Middleware())
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	e.GET("/healthz", h.Health.Healthz)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/auth")

	// Middleware is attached per route: group-level middleware would also
	// claim unknown paths under the prefix and turn 404s into 401s.
	limited := authRateLimiter(cfg.AuthRateLimit)
	session := sessionMiddleware(tokens)

	// Public routes
	api.POST("/login", h.Auth.Login, limited)
	api.POST("/register", h.Auth.Register, limited)
	api.POST("/logout", h.Auth.Logout)

	api.GET("/getUser", h.User.GetUser)
	api.GET("/posts", h.Post.List)
	api.POST("/posts", h.Post.Create)
	api.GET("/posts/:postId", h.Post.Get)
	api.POST("/posts/remove/:postId", h.Post.Remove)
	api.GET("/generateVerse", h.Extras.GenerateVerse)
	api.POST("/send-report", h.Extras.SendReport)

	// Secured routes (require a session token)
	api.GET("/isLogged", h.Auth.IsLogged, session)
	api.POST("/set-password", h.Auth.SetPassword, session)
	api.POST("/set-role", h.Auth.SetRole, session)
	api.POST("/change-picture", h.User.ChangePicture, session)
}

// sessionMiddleware extracts the session token from the cookie or the
// Authorization header and stores the raw token for handlers. Revocation
// and the stored role are checked by the auth service.
func sessionMiddleware(tokens TokenVerifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.TokenContextKey,
		TokenLookup: "cookie:" + handler.SessionCookieName + ",header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			if _, err := tokens.Verify(token); err != nil {
				return nil, err
			}
			return token, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var parseErr *echojwt.TokenParsingError
			if errors.As(err, &parseErr) {
				return apperrors.ErrInvalidToken
			}
			return apperrors.ErrMissingToken
		},
	})
}

func authRateLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Muitas tentativas. Tente novamente em instantes.")
		},
	})
}

// ErrorHandler renders every error in the response envelope. Domain errors
// are mapped by kind; anything else is logged and reported as internal.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *apperrors.HTTPError
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		httpErr = apperrors.NewHTTPError(echoErr.Code, fmt.Sprint(echoErr.Message), codeForStatus(echoErr.Code))
	} else {
		httpErr = apperrors.MapErrorToHTTP(err)
	}

	if httpErr.StatusCode >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(httpErr.StatusCode)
	} else {
		writeErr = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	if writeErr != nil {
		c.Logger().Error(writeErr)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return apperrors.CodeValidation
	case http.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case http.StatusForbidden:
		return apperrors.CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return apperrors.CodeNotFound
	case http.StatusTooManyRequests:
		return apperrors.CodeRateLimited
	}
	if status >= http.StatusInternalServerError {
		return apperrors.CodeInternal
	}
	return apperrors.CodeValidation
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
