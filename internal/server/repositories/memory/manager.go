// Package memory is a process-local RepositoryManager. It backs the
// "memory://" database setting and the service and HTTP tests.
//
// Store.WithinTx holds the store lock for the whole unit of work and
// restores the previous state when the work fails, which gives the same
// serialization the PostgreSQL row locks give.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/users"
)

var errNotSQL = errors.New("memory store has no SQL connection")

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users       []models.User
	tokens      []models.RefreshToken
	nextUserID  int64
	nextTokenID int64
}

// NewStore returns an empty store. A nil now uses time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{now: now}
}

// handle is the DBTX the store hands out. It only carries identity; SQL
// calls on it fail.
type handle struct {
	store *Store
	inTx  bool
}

func (h *handle) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errNotSQL
}

func (h *handle) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errNotSQL
}

// QueryRowContext has no way to carry an error in *sql.Row, so it returns nil.
func (h *handle) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

// Conn returns the non-transactional handle.
func (s *Store) Conn() dbx.DBTX {
	return &handle{store: s}
}

// WithinTx runs fn while holding the store lock. Repositories obtained from
// the tx handle do not lock again.
func (s *Store) WithinTx(ctx context.Context, fn dbx.TxFunc) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
		if err != nil {
			s.restore(snap)
		}
	}()

	return fn(ctx, &handle{store: s, inTx: true})
}

type snapshot struct {
	users       []models.User
	tokens      []models.RefreshToken
	nextUserID  int64
	nextTokenID int64
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		users:       append([]models.User(nil), s.users...),
		tokens:      append([]models.RefreshToken(nil), s.tokens...),
		nextUserID:  s.nextUserID,
		nextTokenID: s.nextTokenID,
	}
}

func (s *Store) restore(snap snapshot) {
	s.users = snap.users
	s.tokens = snap.tokens
	s.nextUserID = snap.nextUserID
	s.nextTokenID = snap.nextTokenID
}

// run executes fn under the store lock unless the handle is already inside
// WithinTx.
func (s *Store) run(db dbx.DBTX, fn func()) {
	if h, ok := db.(*handle); ok && h.store == s && h.inTx {
		fn()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// InMemoryRepositoryManager vends repositories over a Store.
type InMemoryRepositoryManager struct {
	store *Store
}

func NewInMemoryRepositoryManager(store *Store) *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{store: store}
}

// RunMigrations is a no-op; the store has no schema.
func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return &usersRepo{store: m.store, db: db}
}

func (m *InMemoryRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return &tokensRepo{store: m.store, db: db}
}
