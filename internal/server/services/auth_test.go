package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func TestVerifyCredentials(t *testing.T) {
	env := newMemEnv(t, config.LoginPolicyReuse)
	alice := env.addUser(t, "alice", "p", "admin")

	u, err := env.auth.VerifyCredentials(ctx, "alice", "p")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)
	assert.Equal(t, "admin", u.Role)

	_, errWrong := env.auth.VerifyCredentials(ctx, "alice", "wrong")
	_, errUnknown := env.auth.VerifyCredentials(ctx, "nobody", "p")
	require.ErrorIs(t, errWrong, common.ErrInvalidCredentials)
	require.ErrorIs(t, errUnknown, common.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error(), "failures must be indistinguishable")
}

func TestVerifyCredentials_StorageError(t *testing.T) {
	env := newMockEnv(t, config.LoginPolicyReuse)
	env.rm.users.EXPECT().GetUserByLogin(gomock.Any(), "alice").Return(nil, errors.New("db down"))

	_, err := env.auth.VerifyCredentials(ctx, "alice", "p")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrInvalidCredentials))
}

func TestLogin_AccessClaimsMatchUser(t *testing.T) {
	env := newMemEnv(t, config.LoginPolicyReuse)
	alice := env.addUser(t, "alice", "p", "user")

	pair, err := env.auth.Login(ctx, "alice", "p")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, pair.UserID)
	assert.Equal(t, "user", pair.Role)

	claims, err := env.issuer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, auth.NewRoles(auth.RoleUser), claims.Roles)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newMemEnv(t, config.LoginPolicyReuse)
	env.addUser(t, "alice", "p", "user")

	_, err := env.auth.Login(ctx, "alice", "nope")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLogin_ReusePolicyReturnsActiveToken(t *testing.T) {
	env := newMemEnv(t, config.LoginPolicyReuse)
	env.addUser(t, "alice", "p", "user")

	first, err := env.auth.Login(ctx, "alice", "p")
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	second, err := env.auth.Login(ctx, "alice", "p")
	require.NoError(t, err)

	assert.Equal(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken, "access token is always fresh")
}

func TestLogin_ReusePolicyAfterExpiryMintsNew(t *testing.T) {
	env := newMemEnv(t, config.LoginPolicyReuse)
	env.addUser(t, "alice", "p", "user")

	first, err := env.auth.Login(ctx, "alice", "p")
	require.NoError(t, err)

	env.clock.Advance(7*24*time.Hour + time.Second)
	second, err := env.auth.Login(ctx, "alice", "p")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestLogin_ReusePolicyReturnsSuccessorAfterRotation(t *testing.T) {
	env := newMemEnv(t, config.LoginPolicyReuse)
	env.addUser(t, "alice", "p", "user")

	first, err := env.auth.Login(ctx, "alice", "p")
	require.NoError(t, err)
	rotated, err := env.auth.Rotate(ctx, first.RefreshToken)
	require.NoError(t, err)

	again, err := env.auth.Login(ctx, "alice", "p")
	require.NoError(t, err)
	assert.Equal(t, rotated.RefreshToken, again.RefreshToken)
}

func TestLogin_AlwaysNewPolicy(t *testing.T) {
	env := newMemEnv(t, config.LoginPolicyAlwaysNew)
	env.addUser(t, "alice", "p", "user")

	first, err := env.auth.Login(ctx, "alice", "p")
	require.NoError(t, err)
	second, err := env.auth.Login(ctx, "alice", "p")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// Both stay usable under this policy.
	_, err = env.auth.Rotate(ctx, first.RefreshToken)
	require.NoError(t, err)
	_, err = env.auth.Rotate(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestLogin_ReuseRunsInTransaction(t *testing.T) {
	env := newMockEnv(t, config.LoginPolicyReuse)
	user := &models.User{ID: 3, Login: "alice", PasswordHash: mustHash(t, "p"), Role: "user"}
	active := &models.RefreshToken{ID: 8, UserID: 3, Token: "active-token"}

	env.sql.ExpectBegin()
	env.sql.ExpectCommit()
	gomock.InOrder(
		env.rm.users.EXPECT().GetUserByLogin(gomock.Any(), "alice").Return(user, nil),
		env.rm.users.EXPECT().LockUser(gomock.Any(), int64(3)).Return(nil),
		env.rm.tokens.EXPECT().GetActive(gomock.Any(), int64(3), env.clock.Now()).Return(active, nil),
	)

	pair, err := env.auth.Login(ctx, "alice", "p")
	require.NoError(t, err)
	assert.Equal(t, "active-token", pair.RefreshToken)
	require.NoError(t, env.sql.ExpectationsWereMet())
}

func TestLogin_InsertFailureRollsBack(t *testing.T) {
	env := newMockEnv(t, config.LoginPolicyReuse)
	user := &models.User{ID: 3, Login: "alice", PasswordHash: mustHash(t, "p"), Role: "user"}

	env.sql.ExpectBegin()
	env.sql.ExpectRollback()
	env.rm.users.EXPECT().GetUserByLogin(gomock.Any(), "alice").Return(user, nil)
	env.rm.users.EXPECT().LockUser(gomock.Any(), int64(3)).Return(nil)
	env.rm.tokens.EXPECT().GetActive(gomock.Any(), int64(3), gomock.Any()).Return(nil, common.ErrTokenNotFound)
	env.rm.tokens.EXPECT().Insert(gomock.Any(), int64(3), gomock.Any(), gomock.Any()).Return(nil, errors.New("disk full"))

	pair, err := env.auth.Login(ctx, "alice", "p")
	require.Error(t, err)
	assert.Nil(t, pair)
	require.NoError(t, env.sql.ExpectationsWereMet())
}

func TestRotate_OneShot(t *testing.T) {
	env := newMemEnv(t, config.LoginPolicyReuse)
	env.addUser(t, "alice", "p", "user")

	login, err := env.auth.Login(ctx, "alice", "p")
	require.NoError(t, err)

	next, err := env.auth.Rotate(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, next.RefreshToken)
	assert.NotEmpty(t, next.AccessToken)
	assert.Equal(t, login.UserID, next.UserID)

	_, err = env.auth.Rotate(ctx, login.RefreshToken)
	require.ErrorIs(t, err, common.ErrTokenRevoked)

	_, err = env.auth.Rotate(ctx, next.RefreshToken)
	require.NoError(t, err)
}

func TestRotate_NotFound(t *testing.T) {
	env := newMemEnv(t, config.LoginPolicyReuse)
	_, err := env.auth.Rotate(ctx, "never-issued")
	require.ErrorIs(t, err, common.ErrTokenNotFound)
}

func TestRotate_ExpiredRegardlessOfRevoked(t *testing.T) {
	tests := []struct {
		name    string
		revoked bool
	}{
		{name: "active then expired", revoked: false},
		{name: "revoked then expired", revoked: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newMemEnv(t, config.LoginPolicyReuse)
			env.addUser(t, "alice", "p", "user")

			login, err := env.auth.Login(ctx, "alice", "p")
			require.NoError(t, err)
			if tt.revoked {
				_, err := env.auth.Rotate(ctx, login.RefreshToken)
				require.NoError(t, err)
			}

			env.clock.Advance(7*24*time.Hour + time.Second)
			_, err = env.auth.Rotate(ctx, login.RefreshToken)
			require.ErrorIs(t, err, common.ErrTokenExpired)
		})
	}
}

func TestRotate_InvalidUser(t *testing.T) {
	env := newMemEnv(t, config.LoginPolicyReuse)
	orphan, exp, err := env.issuer.SignRefresh(404)
	require.NoError(t, err)
	_, err = env.rm.RefreshTokens(env.store.Conn()).Insert(ctx, 404, orphan, exp)
	require.NoError(t, err)

	_, err = env.auth.Rotate(ctx, orphan)
	require.ErrorIs(t, err, common.ErrInvalidUser)

	// The failed rotation must leave the token untouched.
	rt, err := env.rm.RefreshTokens(env.store.Conn()).Lookup(ctx, orphan)
	require.NoError(t, err)
	assert.False(t, rt.Revoked)
}

func validRecord(env *mockEnv) *models.RefreshToken {
	return &models.RefreshToken{
		ID:        5,
		UserID:    3,
		Token:     "presented",
		CreatedAt: env.clock.Now().Add(-time.Hour),
		ExpiresAt: env.clock.Now().Add(time.Hour),
	}
}

func TestRotate_InconsistentRevokeIsFatal(t *testing.T) {
	for _, rows := range []int64{0, 2} {
		env := newMockEnv(t, config.LoginPolicyReuse)
		env.sql.ExpectBegin()
		env.sql.ExpectRollback()

		env.rm.tokens.EXPECT().LookupForUpdate(gomock.Any(), "presented").Return(validRecord(env), nil)
		env.rm.users.EXPECT().GetUserByID(gomock.Any(), int64(3)).Return(&models.User{ID: 3, Login: "alice", Role: "user"}, nil)
		env.rm.tokens.EXPECT().Revoke(gomock.Any(), "presented").Return(rows, nil)

		pair, err := env.auth.Rotate(ctx, "presented")
		require.ErrorIs(t, err, common.ErrInternalInconsistency, "rows=%d", rows)
		assert.Nil(t, pair)
		require.NoError(t, env.sql.ExpectationsWereMet())
	}
}

func TestRotate_InsertFailureReturnsNoPair(t *testing.T) {
	env := newMockEnv(t, config.LoginPolicyReuse)
	env.sql.ExpectBegin()
	env.sql.ExpectRollback()

	env.rm.tokens.EXPECT().LookupForUpdate(gomock.Any(), "presented").Return(validRecord(env), nil)
	env.rm.users.EXPECT().GetUserByID(gomock.Any(), int64(3)).Return(&models.User{ID: 3, Login: "alice", Role: "user"}, nil)
	env.rm.tokens.EXPECT().Revoke(gomock.Any(), "presented").Return(int64(1), nil)
	env.rm.tokens.EXPECT().Insert(gomock.Any(), int64(3), gomock.Any(), gomock.Any()).Return(nil, context.DeadlineExceeded)

	pair, err := env.auth.Rotate(ctx, "presented")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, pair)
	require.NoError(t, env.sql.ExpectationsWereMet())
}

func TestRotate_CommitFailureReturnsNoPair(t *testing.T) {
	env := newMockEnv(t, config.LoginPolicyReuse)
	env.sql.ExpectBegin()
	env.sql.ExpectCommit().WillReturnError(errors.New("connection reset"))

	env.rm.tokens.EXPECT().LookupForUpdate(gomock.Any(), "presented").Return(validRecord(env), nil)
	env.rm.users.EXPECT().GetUserByID(gomock.Any(), int64(3)).Return(&models.User{ID: 3, Login: "alice", Role: "user"}, nil)
	env.rm.tokens.EXPECT().Revoke(gomock.Any(), "presented").Return(int64(1), nil)
	env.rm.tokens.EXPECT().Insert(gomock.Any(), int64(3), gomock.Any(), gomock.Any()).
		Return(&models.RefreshToken{ID: 6}, nil)

	pair, err := env.auth.Rotate(ctx, "presented")
	require.Error(t, err)
	assert.Nil(t, pair)
}

func TestRotate_ChecksOrder(t *testing.T) {
	env := newMockEnv(t, config.LoginPolicyReuse)
	env.sql.ExpectBegin()
	env.sql.ExpectRollback()

	rec := validRecord(env)
	rec.Revoked = true
	env.rm.tokens.EXPECT().LookupForUpdate(gomock.Any(), "presented").Return(rec, nil)

	// No user lookup and no revoke happen for a revoked token.
	_, err := env.auth.Rotate(ctx, "presented")
	require.ErrorIs(t, err, common.ErrTokenRevoked)
}

func TestLogout(t *testing.T) {
	env := newMemEnv(t, config.LoginPolicyReuse)
	env.addUser(t, "alice", "p", "user")

	login, err := env.auth.Login(ctx, "alice", "p")
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, login.RefreshToken))
	require.ErrorIs(t, env.auth.Logout(ctx, login.RefreshToken), common.ErrTokenNotFound)
	require.ErrorIs(t, env.auth.Logout(ctx, "unknown"), common.ErrTokenNotFound)

	_, err = env.auth.Rotate(ctx, login.RefreshToken)
	require.ErrorIs(t, err, common.ErrTokenRevoked)
}

func TestLogout_StorageError(t *testing.T) {
	env := newMockEnv(t, config.LoginPolicyReuse)
	env.rm.tokens.EXPECT().RevokeActive(gomock.Any(), "t").Return(int64(0), errors.New("db down"))

	err := env.auth.Logout(ctx, "t")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrTokenNotFound))
}

func TestScenario_LoginRefreshLogout(t *testing.T) {
	env := newMemEnv(t, config.LoginPolicyReuse)
	env.addUser(t, "a", "p", "user")

	p1, err := env.auth.Login(ctx, "a", "p")
	require.NoError(t, err)

	p2, err := env.auth.Rotate(ctx, p1.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, p1.RefreshToken, p2.RefreshToken)

	_, err = env.auth.Rotate(ctx, p1.RefreshToken)
	require.ErrorIs(t, err, common.ErrTokenRevoked)

	require.NoError(t, env.auth.Logout(ctx, p2.RefreshToken))

	_, err = env.auth.Rotate(ctx, p2.RefreshToken)
	require.ErrorIs(t, err, common.ErrTokenRevoked)
}

func TestRotate_ConcurrentSameToken(t *testing.T) {
	env := newMemEnv(t, config.LoginPolicyReuse)
	env.addUser(t, "alice", "p", "user")
	login, err := env.auth.Login(ctx, "alice", "p")
	require.NoError(t, err)

	const n = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		replayed int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.auth.Rotate(ctx, login.RefreshToken)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, common.ErrTokenRevoked):
				replayed++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, replayed)
}

func TestLogin_ConcurrentReuseCreatesOneToken(t *testing.T) {
	env := newMemEnv(t, config.LoginPolicyReuse)
	env.addUser(t, "alice", "p", "user")

	const n = 8
	tokens := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pair, err := env.auth.Login(ctx, "alice", "p")
			if err == nil {
				tokens[i] = pair.RefreshToken
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		require.NotEmpty(t, tokens[i])
		assert.Equal(t, tokens[0], tokens[i])
	}
}
