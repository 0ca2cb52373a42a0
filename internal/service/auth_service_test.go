package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"avodah/internal/auth"
	apperrors "avodah/internal/errors"
	"avodah/internal/model"
	"avodah/internal/rbac"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

const testSecret = "test-secret"

func newTestAuthService(repo *MockUserRepository, store *MockTokenStore) AuthService {
	return NewAuthService(repo, auth.NewJWTService(testSecret), auth.NewPasswordHasher(bcrypt.MinCost), store, time.Hour)
}

func newUser(t *testing.T, username string, rank rbac.Rank, password string) *model.User {
	t.Helper()
	hash, err := auth.NewPasswordHasher(bcrypt.MinCost).Hash(password)
	require.NoError(t, err)
	u := &model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@x.com",
		PasswordHash: hash,
	}
	u.SetRank(rank)
	return u
}

func tokenFor(t *testing.T, u *model.User) string {
	t.Helper()
	token, err := auth.NewJWTService(testSecret).Issue(auth.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		RoleRank: u.RoleRank,
	}, time.Hour)
	require.NoError(t, err)
	return token
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			username: "joao",
			email:    "joao@x.com",
			password: "s3nha123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsernameOrEmail", mock.Anything, "joao", "joao@x.com").Return(nil, apperrors.ErrUserNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:     "username or email taken",
			username: "JOAO",
			email:    "other@x.com",
			password: "s3nha123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsernameOrEmail", mock.Anything, "JOAO", "other@x.com").Return(&model.User{Username: "joao"}, nil)
			},
			expectedError: apperrors.ErrUserAlreadyExists,
		},
		{
			name:     "lost the race against a concurrent registration",
			username: "joao",
			email:    "joao@x.com",
			password: "s3nha123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsernameOrEmail", mock.Anything, "joao", "joao@x.com").Return(nil, apperrors.ErrUserNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(apperrors.ErrUserAlreadyExists)
			},
			expectedError: apperrors.ErrUserAlreadyExists,
		},
		{
			name:          "missing email",
			username:      "joao",
			password:      "s3nha123",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrMissingFields,
		},
		{
			name:          "missing password",
			username:      "joao",
			email:         "joao@x.com",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrMissingFields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := newTestAuthService(mockRepo, new(MockTokenStore))
			user, err := service.Register(context.Background(), tt.username, tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.username, user.Username)
				assert.Equal(t, rbac.Member, user.RoleRank)
				assert.Equal(t, "Membro", user.Role)
				assert.NotEqual(t, tt.password, user.PasswordHash)
				assert.True(t, auth.NewPasswordHasher(bcrypt.MinCost).Verify(tt.password, user.PasswordHash))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_StoreFailureIsInternal(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsernameOrEmail", mock.Anything, "joao", "joao@x.com").Return(nil, errors.New("connection refused"))

	_, err := newTestAuthService(mockRepo, new(MockTokenStore)).Register(context.Background(), "joao", "joao@x.com", "s3nha123")

	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	joao := newUser(t, "joao", rbac.Member, "s3nha123")

	tests := []struct {
		name          string
		username      string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			username: "Joao",
			password: "s3nha123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "Joao").Return(joao, nil)
			},
		},
		{
			name:     "wrong password",
			username: "joao",
			password: "wrong",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "joao").Return(joao, nil)
			},
			expectedError: apperrors.ErrInvalidPassword,
		},
		{
			name:     "unknown user",
			username: "maria",
			password: "s3nha123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "maria").Return(nil, apperrors.ErrUserNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name:     "missing password",
			username: "joao",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "joao").Return(joao, nil)
			},
			expectedError: apperrors.ErrMissingFields,
		},
		{
			name:          "missing username",
			password:      "s3nha123",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrMissingFields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := newTestAuthService(mockRepo, new(MockTokenStore))
			result, err := service.Login(context.Background(), tt.username, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Membro", result.Role)
				assert.Same(t, joao, result.User)

				claims, err := auth.NewJWTService(testSecret).Verify(result.Token)
				require.NoError(t, err)
				assert.Equal(t, joao.ID, claims.UserUUID())
				assert.Equal(t, joao.Username, claims.Username)
				assert.Equal(t, joao.Email, claims.Email)
				assert.Equal(t, joao.RoleRank, claims.RoleRank)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_WhoAmI(t *testing.T) {
	joao := newUser(t, "joao", rbac.Member, "s3nha123")
	token := tokenFor(t, joao)

	t.Run("returns the stored user, not the token claims", func(t *testing.T) {
		promoted := *joao
		promoted.SetRank(rbac.Pastor)

		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockStore.On("IsRevoked", mock.Anything, mock.Anything).Return(false, nil)
		mockRepo.On("FindByID", mock.Anything, joao.ID).Return(&promoted, nil)

		user, err := newTestAuthService(mockRepo, mockStore).WhoAmI(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, rbac.Pastor, user.RoleRank)
		assert.Equal(t, "Pastor Presidente", user.Role)
	})

	t.Run("user deleted since login", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockStore.On("IsRevoked", mock.Anything, mock.Anything).Return(false, nil)
		mockRepo.On("FindByID", mock.Anything, joao.ID).Return(nil, apperrors.ErrUserNotFound)

		_, err := newTestAuthService(mockRepo, mockStore).WhoAmI(context.Background(), token)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("revoked token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockStore := new(MockTokenStore)
		mockStore.On("IsRevoked", mock.Anything, mock.Anything).Return(true, nil)

		_, err := newTestAuthService(mockRepo, mockStore).WhoAmI(context.Background(), token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
		mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("missing and forged tokens", func(t *testing.T) {
		forged, err := auth.NewJWTService("other-secret").Issue(auth.Identity{UserID: joao.ID}, time.Hour)
		require.NoError(t, err)

		service := newTestAuthService(new(MockUserRepository), new(MockTokenStore))

		_, err = service.WhoAmI(context.Background(), "")
		assert.ErrorIs(t, err, apperrors.ErrMissingToken)

		_, err = service.WhoAmI(context.Background(), forged)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	joao := newUser(t, "joao", rbac.Member, "s3nha123")

	t.Run("revokes a valid token for its remaining lifetime", func(t *testing.T) {
		mockStore := new(MockTokenStore)
		mockStore.On("Revoke", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(ttl time.Duration) bool {
			return ttl > 0 && ttl <= time.Hour
		})).Return(nil)

		err := newTestAuthService(new(MockUserRepository), mockStore).Logout(context.Background(), tokenFor(t, joao))
		assert.NoError(t, err)
		mockStore.AssertExpectations(t)
	})

	t.Run("reports a failed revocation", func(t *testing.T) {
		mockStore := new(MockTokenStore)
		mockStore.On("Revoke", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis: connection refused"))

		err := newTestAuthService(new(MockUserRepository), mockStore).Logout(context.Background(), tokenFor(t, joao))
		assert.Error(t, err)
		assert.True(t, apperrors.IsInternal(err))
	})

	t.Run("ignores missing or invalid tokens", func(t *testing.T) {
		mockStore := new(MockTokenStore)
		service := newTestAuthService(new(MockUserRepository), mockStore)

		assert.NoError(t, service.Logout(context.Background(), ""))
		assert.NoError(t, service.Logout(context.Background(), "garbage"))
		mockStore.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	developer := newUser(t, "dev", rbac.Developer, "root")
	pastor := newUser(t, "pastor", rbac.Pastor, "amen")
	joao := newUser(t, "joao", rbac.Member, "s3nha123")

	tests := []struct {
		name          string
		actor         *model.User
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "developer resets a member's password",
			actor:    developer,
			email:    "JOAO@x.com",
			password: "nova-senha",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, developer.ID).Return(developer, nil)
				m.On("FindByEmail", mock.Anything, "JOAO@x.com").Return(joao, nil)
				m.On("UpdateFields", mock.Anything, joao.ID, mock.MatchedBy(func(f map[string]interface{}) bool {
					hash, ok := f["password"].(string)
					return ok && len(f) == 1 && auth.NewPasswordHasher(bcrypt.MinCost).Verify("nova-senha", hash)
				})).Return(nil)
			},
		},
		{
			name:     "second highest rank is still forbidden",
			actor:    pastor,
			email:    "joao@x.com",
			password: "nova-senha",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, pastor.ID).Return(pastor, nil)
			},
			expectedError: apperrors.ErrPermissionDenied,
		},
		{
			name:     "actor no longer exists",
			actor:    developer,
			email:    "joao@x.com",
			password: "nova-senha",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, developer.ID).Return(nil, apperrors.ErrUserNotFound)
			},
			expectedError: apperrors.ErrPermissionDenied,
		},
		{
			name:     "target email unknown",
			actor:    developer,
			email:    "ghost@x.com",
			password: "nova-senha",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, developer.ID).Return(developer, nil)
				m.On("FindByEmail", mock.Anything, "ghost@x.com").Return(nil, apperrors.ErrUserNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name:  "missing new password",
			actor: developer,
			email: "joao@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, developer.ID).Return(developer, nil)
			},
			expectedError: apperrors.ErrMissingFields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockStore := new(MockTokenStore)
			mockStore.On("IsRevoked", mock.Anything, mock.Anything).Return(false, nil)
			tt.setupMock(mockRepo)

			err := newTestAuthService(mockRepo, mockStore).ResetPassword(context.Background(), tokenFor(t, tt.actor), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				mockRepo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_AssignRole(t *testing.T) {
	developer := newUser(t, "dev", rbac.Developer, "root")
	member := newUser(t, "member", rbac.Member, "pw")
	joao := newUser(t, "joao", rbac.Member, "s3nha123")

	tests := []struct {
		name          string
		actor         *model.User
		email         string
		role          string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "developer promotes member to pastor",
			actor: developer,
			email: "joao@x.com",
			role:  "Pastor",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, developer.ID).Return(developer, nil)
				m.On("FindByEmail", mock.Anything, "joao@x.com").Return(joao, nil)
				m.On("UpdateFields", mock.Anything, joao.ID, map[string]interface{}{
					"role":          "Pastor Presidente",
					"role_position": 1,
				}).Return(nil)
			},
		},
		{
			name:  "developer grants developer",
			actor: developer,
			email: "joao@x.com",
			role:  "developer",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, developer.ID).Return(developer, nil)
				m.On("FindByEmail", mock.Anything, "joao@x.com").Return(joao, nil)
				m.On("UpdateFields", mock.Anything, joao.ID, map[string]interface{}{
					"role":          "Desenvolvedor",
					"role_position": 0,
				}).Return(nil)
			},
		},
		{
			name:  "lowest rank is forbidden even with a bad role name",
			actor: member,
			email: "joao@x.com",
			role:  "bispo",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, member.ID).Return(member, nil)
			},
			expectedError: apperrors.ErrPermissionDenied,
		},
		{
			name:  "lowest rank is forbidden",
			actor: member,
			email: "joao@x.com",
			role:  "membro",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, member.ID).Return(member, nil)
			},
			expectedError: apperrors.ErrPermissionDenied,
		},
		{
			name:  "unknown role",
			actor: developer,
			email: "joao@x.com",
			role:  "bispo",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, developer.ID).Return(developer, nil)
				m.On("FindByEmail", mock.Anything, "joao@x.com").Return(joao, nil)
			},
			expectedError: apperrors.ErrInvalidRole,
		},
		{
			name:  "unknown target",
			actor: developer,
			email: "ghost@x.com",
			role:  "pastor",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, developer.ID).Return(developer, nil)
				m.On("FindByEmail", mock.Anything, "ghost@x.com").Return(nil, apperrors.ErrUserNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockStore := new(MockTokenStore)
			mockStore.On("IsRevoked", mock.Anything, mock.Anything).Return(false, nil)
			tt.setupMock(mockRepo)

			err := newTestAuthService(mockRepo, mockStore).AssignRole(context.Background(), tokenFor(t, tt.actor), tt.email, tt.role)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				mockRepo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_AssignRole_UsesStoredRankNotTokenClaims(t *testing.T) {
	// Token says developer, store says the account was demoted since.
	demoted := newUser(t, "dev", rbac.Developer, "root")
	token := tokenFor(t, demoted)
	stored := *demoted
	stored.SetRank(rbac.Member)

	mockRepo := new(MockUserRepository)
	mockStore := new(MockTokenStore)
	mockStore.On("IsRevoked", mock.Anything, mock.Anything).Return(false, nil)
	mockRepo.On("FindByID", mock.Anything, demoted.ID).Return(&stored, nil)

	err := newTestAuthService(mockRepo, mockStore).AssignRole(context.Background(), token, "joao@x.com", "pastor")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	mockRepo.AssertExpectations(t)
}
