package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	apperrors "avodah/internal/errors"
	"avodah/internal/rbac"
)

// DefaultTokenTTL is the session lifetime used when none is configured.
const DefaultTokenTTL = 7 * 24 * time.Hour

// ErrNonPositiveTTL is returned when a token would be issued without a finite lifetime.
var ErrNonPositiveTTL = errors.New("token ttl must be positive")

// Identity is the user information embedded in a session token.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Email    string
	Role     string
	RoleRank rbac.Rank
}

// Claims represents JWT claims.
type Claims struct {
	UserID   string    `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	RoleRank rbac.Rank `json:"rolePosition"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies session tokens.
type JWTService struct {
	secret []byte
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue generates a signed session token valid for ttl.
func (s *JWTService) Issue(id Identity, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrNonPositiveTTL
	}
	now := s.now()
	claims := &Claims{
		UserID:   id.UserID.String(),
		Username: id.Username,
		Email:    id.Email,
		Role:     id.Role,
		RoleRank: id.RoleRank,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and returns its claims. Any failure, whether a
// bad signature, an unexpected algorithm, malformed input or expiry, yields
// apperrors.ErrInvalidToken.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrMissingToken
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	// jwt/v4 treats a missing exp as valid; sessions must always expire.
	if claims.ExpiresAt == nil {
		return nil, apperrors.ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}

// UserUUID returns the user id carried by the claims.
func (c *Claims) UserUUID() uuid.UUID {
	id, _ := uuid.Parse(c.UserID)
	return id
}

// TTL returns how long the token remains valid from now.
func (c *Claims) TTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}
