package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"missing fields", ErrMissingFields, http.StatusBadRequest, CodeValidation, "Todos os campos devem ser preenchidos."},
		{"invalid role", ErrInvalidRole, http.StatusBadRequest, CodeValidation, "Cargo inválido."},
		{"bad password", ErrInvalidPassword, http.StatusUnauthorized, CodeUnauthorized, "Senha inválida."},
		{"invalid token", ErrInvalidToken, http.StatusUnauthorized, CodeUnauthorized, "Token inválido ou expirado."},
		{"forbidden", ErrPermissionDenied, http.StatusForbidden, CodeForbidden, "Usuário sem permissão."},
		{"user not found", ErrUserNotFound, http.StatusNotFound, CodeNotFound, "Usuário não encontrado."},
		{"conflict", ErrUserAlreadyExists, http.StatusConflict, CodeConflict, "Usuário já existente."},
		{"wrapped domain error", fmt.Errorf("login: %w", ErrUserNotFound), http.StatusNotFound, CodeNotFound, "Usuário não encontrado."},
		{"custom validation", Validation("username inválido"), http.StatusBadRequest, CodeValidation, "username inválido"},
		{"unknown error", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, CodeInternal, "Erro interno no servidor."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
			assert.Equal(t, tt.wantMsg, httpErr.Message)

			resp := httpErr.ToErrorResponse()
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantMsg, resp.Message)
		})
	}
}

func TestKindMembership(t *testing.T) {
	assert.ErrorIs(t, ErrInvalidPassword, ErrUnauthorized)
	assert.ErrorIs(t, ErrPermissionDenied, ErrForbidden)
	assert.NotErrorIs(t, ErrPermissionDenied, ErrUnauthorized)
	assert.True(t, IsInternal(errors.New("boom")))
	assert.False(t, IsInternal(ErrUserAlreadyExists))
}
