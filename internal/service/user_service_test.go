package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "avodah/internal/errors"
	"avodah/internal/model"
	"avodah/internal/storage"
)

type stubPictureStore struct {
	ref string
	err error
}

func (s stubPictureStore) Save(_ context.Context, _ uuid.UUID, dataURI string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.ref != "" {
		return s.ref, nil
	}
	return dataURI, nil
}

const testPicture = "data:image/png;base64,iVBORw0KGgo="

func TestUserService_SetProfilePicture(t *testing.T) {
	joao := &model.User{ID: uuid.New(), Email: "joao@x.com"}

	t.Run("stores the reference returned by the picture store", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "joao@x.com").Return(joao, nil)
		repo.On("UpdateFields", mock.Anything, joao.ID, map[string]interface{}{
			"profile_picture": "https://cdn/x.png",
		}).Return(nil)

		err := NewUserService(repo, stubPictureStore{ref: "https://cdn/x.png"}).SetProfilePicture(context.Background(), "joao@x.com", "  "+testPicture)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("inline pictures are trimmed", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "joao@x.com").Return(joao, nil)
		repo.On("UpdateFields", mock.Anything, joao.ID, map[string]interface{}{
			"profile_picture": testPicture,
		}).Return(nil)

		err := NewUserService(repo, storage.InlineStore{}).SetProfilePicture(context.Background(), "joao@x.com", testPicture+"\n")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("rejects non image data", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, storage.InlineStore{})

		assert.ErrorIs(t, svc.SetProfilePicture(context.Background(), "joao@x.com", "https://x/a.png"), apperrors.ErrInvalidPicture)
		assert.ErrorIs(t, svc.SetProfilePicture(context.Background(), "", testPicture), apperrors.ErrInvalidPicture)
		repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("malformed payload reported by the store", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "joao@x.com").Return(joao, nil)

		err := NewUserService(repo, stubPictureStore{err: storage.ErrMalformedDataURI}).SetProfilePicture(context.Background(), "joao@x.com", testPicture)
		assert.ErrorIs(t, err, apperrors.ErrInvalidPicture)
	})

	t.Run("upload failure is internal", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "joao@x.com").Return(joao, nil)

		err := NewUserService(repo, stubPictureStore{err: errors.New("s3 down")}).SetProfilePicture(context.Background(), "joao@x.com", testPicture)
		assert.True(t, apperrors.IsInternal(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "ghost@x.com").Return(nil, apperrors.ErrUserNotFound)

		err := NewUserService(repo, storage.InlineStore{}).SetProfilePicture(context.Background(), "ghost@x.com", testPicture)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestUserService_GetByUsername(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByUsername", mock.Anything, "joao").Return(&model.User{Username: "joao"}, nil)
	svc := NewUserService(repo, storage.InlineStore{})

	user, err := svc.GetByUsername(context.Background(), "joao")
	require.NoError(t, err)
	assert.Equal(t, "joao", user.Username)

	_, err = svc.GetByUsername(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
