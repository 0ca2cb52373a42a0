package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// TokenContextKey is where the router's token extractor stores the raw session token.
const TokenContextKey = "session_token"

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

const bearerPrefix = "Bearer "

// PresentedToken returns the session token sent with the request: the
// session cookie first, then an Authorization Bearer header. The session
// middleware looks in the same places in the same order.
func PresentedToken(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	return ""
}

// Response is the envelope shared by every endpoint.
type Response struct {
	Message string      `json:"message"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Token   string      `json:"token,omitempty"`
}

// CookiePolicy holds the attributes of the session cookie. SameSite is
// always Lax, so Secure can be left off in development without browsers
// dropping the cookie.
type CookiePolicy struct {
	Secure bool
}

func (p CookiePolicy) session(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (p CookiePolicy) cleared() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
