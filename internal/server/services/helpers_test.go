package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/mocks"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/memory"
	refreshtokensrepo "github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/users"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func testConfig(policy config.LoginPolicy) *config.Config {
	return &config.Config{
		AccessTokenSecret:            "access-secret",
		RefreshTokenSecret:           "refresh-secret",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 7 * 24 * time.Hour,
		LoginPolicy:                  policy,
	}
}

// memEnv is a service stack over the in-memory store.
type memEnv struct {
	clock   *fakeClock
	store   *memory.Store
	rm      *memory.InMemoryRepositoryManager
	issuer  *auth.TokenIssuer
	auth    *AuthService
	users   *UserService
	gate    *AccessGate
	metrics *metrics.Metrics
}

func newMemEnv(t *testing.T, policy config.LoginPolicy) *memEnv {
	t.Helper()
	clock := newClock()
	store := memory.NewStore(clock.Now)
	rm := memory.NewInMemoryRepositoryManager(store)
	cfg := testConfig(policy)
	issuer := auth.NewTokenIssuer(cfg, clock.Now)
	m := metrics.New()
	return &memEnv{
		clock:   clock,
		store:   store,
		rm:      rm,
		issuer:  issuer,
		auth:    NewAuthService(store, rm, issuer, cfg, nil, m),
		users:   NewUserService(store.Conn(), rm),
		gate:    NewAccessGate(issuer, m),
		metrics: m,
	}
}

func (e *memEnv) addUser(t *testing.T, login, password, role string) *models.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), NewUser{Login: login, Password: password, Role: role})
	require.NoError(t, err)
	return u
}

// mockRepoManager hands out gomock repositories regardless of handle.
type mockRepoManager struct {
	users  *mocks.MockUsersRepository
	tokens *mocks.MockRefreshTokensRepository
}

func (m *mockRepoManager) RunMigrations(context.Context, *sql.DB) error         { return nil }
func (m *mockRepoManager) Users(dbx.DBTX) usersrepo.Repository                  { return m.users }
func (m *mockRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository { return m.tokens }

type mockEnv struct {
	clock  *fakeClock
	sql    sqlmock.Sqlmock
	rm     *mockRepoManager
	issuer *auth.TokenIssuer
	auth   *AuthService
}

func newMockEnv(t *testing.T, policy config.LoginPolicy) *mockEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := newClock()
	cfg := testConfig(policy)
	rm := &mockRepoManager{
		users:  mocks.NewMockUsersRepository(ctrl),
		tokens: mocks.NewMockRefreshTokensRepository(ctrl),
	}
	issuer := auth.NewTokenIssuer(cfg, clock.Now)
	return &mockEnv{
		clock:  clock,
		sql:    mock,
		rm:     rm,
		issuer: issuer,
		auth:   NewAuthService(dbx.NewSQLTransactor(db, nil), rm, issuer, cfg, nil, nil),
	}
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := auth.HashPassword([]byte(pw))
	require.NoError(t, err)
	return h
}
