package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/mocks"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Create(t *testing.T) {
	env := newMemEnv(t, config.LoginPolicyReuse)

	u, err := env.users.Create(context.Background(), NewUser{
		Name: "Ann", Surname: "Lee", Login: " ann ", Mail: "ann@example.com", Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "ann", u.Login)
	assert.Equal(t, "user", u.Role, "role defaults to user")
	assert.NotEqual(t, "pw", u.PasswordHash)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "pw"))

	_, err = env.users.Create(context.Background(), NewUser{Login: "ann", Password: "x"})
	require.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestUserService_CreateValidation(t *testing.T) {
	env := newMemEnv(t, config.LoginPolicyReuse)

	tests := []struct {
		name string
		in   NewUser
		want error
	}{
		{name: "missing login", in: NewUser{Password: "p"}, want: common.ErrInvalidRequest},
		{name: "blank login", in: NewUser{Login: "  ", Password: "p"}, want: common.ErrInvalidRequest},
		{name: "missing password", in: NewUser{Login: "bob"}, want: common.ErrInvalidRequest},
		{name: "unknown role", in: NewUser{Login: "bob", Password: "p", Role: "root"}, want: common.ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.Create(context.Background(), tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUserService_CreateAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUsersRepository(ctrl)
	rm := &mockRepoManager{users: users}

	users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *models.User) (*models.User, error) {
			assert.Equal(t, "admin", u.Role)
			u.ID = 12
			return u, nil
		})

	svc := NewUserService(nil, rm)
	u, err := svc.Create(context.Background(), NewUser{Login: "root", Password: "p", Role: "Admin"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), u.ID)
}

func TestUserService_CreateStorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUsersRepository(ctrl)
	users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	svc := NewUserService(nil, &mockRepoManager{users: users})
	_, err := svc.Create(context.Background(), NewUser{Login: "x", Password: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error creating user")
}
