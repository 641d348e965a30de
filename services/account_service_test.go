package services

import (
	"log/slog"
	"testing"
	"time"

	"group-lab/auth"
	"group-lab/domain"
	"group-lab/errors"
	"group-lab/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAccountService_Register(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	log := logs.GetLoggerFromLevel(slog.LevelError)

	t.Run("should store a hashed password and hand back a valid token", func(t *testing.T) {
		mockUsers := mocks.NewMockIUserDirectory(ctrl)
		service := NewAccountService(mockUsers, time.Hour, log)

		var created domain.User
		mockUsers.EXPECT().
			CreateUser(gomock.Any()).
			DoAndReturn(func(user domain.User) error {
				created = user
				return nil
			}).
			Times(1)

		user, token, err := service.Register("alice", "alice@example.com", "Str0ng!Passw0rd")
		req.NoError(err)
		req.NotEmpty(user.ID)
		req.Equal(created.ID, user.ID)
		req.Equal("alice", created.Username)
		req.Equal("alice@example.com", created.Email)

		// The directory must never see the plain password
		req.NotEqual("Str0ng!Passw0rd", created.PasswordHash)
		match, err := auth.ComparePassword("Str0ng!Passw0rd", created.PasswordHash)
		req.NoError(err)
		req.True(match)

		claims, err := auth.ValidateToken(token.String())
		req.NoError(err)
		req.Equal(user.ID, claims.UserID)
	})

	t.Run("should refuse a weak password before touching the directory", func(t *testing.T) {
		mockUsers := mocks.NewMockIUserDirectory(ctrl)
		service := NewAccountService(mockUsers, time.Hour, log)

		_, _, err := service.Register("alice", "alice@example.com", "weakpasswordnodigits")
		req.ErrorIs(err, errors.ErrInvalidPassword)
	})

	t.Run("should refuse a malformed email before touching the directory", func(t *testing.T) {
		mockUsers := mocks.NewMockIUserDirectory(ctrl)
		service := NewAccountService(mockUsers, time.Hour, log)

		_, _, err := service.Register("alice", "not-an-email", "Str0ng!Passw0rd")
		req.ErrorIs(err, errors.ErrInvalidRegistration)
	})

	t.Run("should surface a taken email", func(t *testing.T) {
		mockUsers := mocks.NewMockIUserDirectory(ctrl)
		service := NewAccountService(mockUsers, time.Hour, log)

		mockUsers.EXPECT().
			CreateUser(gomock.Any()).
			Return(errors.ErrEmailTaken).
			Times(1)

		_, _, err := service.Register("alice", "alice@example.com", "Str0ng!Passw0rd")
		req.ErrorIs(err, errors.ErrEmailTaken)
		req.Equal(errors.KindConflict, errors.KindOf(err))
	})
}

func TestAccountService_Login(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	log := logs.GetLoggerFromLevel(slog.LevelError)

	hash, err := auth.HashPassword("Str0ng!Passw0rd")
	req.NoError(err)
	stored := domain.User{
		ID:           "user-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	t.Run("should hand back a token carrying the user id", func(t *testing.T) {
		mockUsers := mocks.NewMockIUserDirectory(ctrl)
		service := NewAccountService(mockUsers, time.Hour, log)

		mockUsers.EXPECT().
			UserByEmail("alice@example.com").
			Return(stored, nil).
			Times(1)

		token, err := service.Login("alice@example.com", "Str0ng!Passw0rd")
		req.NoError(err)

		claims, err := auth.ValidateToken(token.String())
		req.NoError(err)
		req.Equal("user-1", claims.UserID)
	})

	t.Run("should refuse a wrong password", func(t *testing.T) {
		mockUsers := mocks.NewMockIUserDirectory(ctrl)
		service := NewAccountService(mockUsers, time.Hour, log)

		mockUsers.EXPECT().
			UserByEmail("alice@example.com").
			Return(stored, nil).
			Times(1)

		_, err := service.Login("alice@example.com", "Wr0ng!Passw0rd")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should hide unknown accounts behind invalid credentials", func(t *testing.T) {
		mockUsers := mocks.NewMockIUserDirectory(ctrl)
		service := NewAccountService(mockUsers, time.Hour, log)

		mockUsers.EXPECT().
			UserByEmail("ghost@example.com").
			Return(domain.User{}, errors.ErrUserNotFound).
			Times(1)

		_, err := service.Login("ghost@example.com", "Str0ng!Passw0rd")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
		req.Equal(errors.KindForbidden, errors.KindOf(err))
	})
}
