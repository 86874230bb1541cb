package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const tokenColumns = `id, user_id, token, created_at, expires_at, revoked`

func scanToken(row *sql.Row) (*models.RefreshToken, error) {
	rt := &models.RefreshToken{}
	err := row.Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.CreatedAt, &rt.ExpiresAt, &rt.Revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrTokenNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return rt, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, userID int64, token string, expiresAt time.Time) (*models.RefreshToken, error) {

	query :=
		`INSERT INTO refresh_tokens (user_id, token, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	rt := &models.RefreshToken{UserID: userID, Token: token, ExpiresAt: expiresAt}
	err := r.db.QueryRowContext(ctx, query, userID, token, expiresAt).Scan(&rt.ID, &rt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return rt, nil
}

func (r *PostgresRepository) Lookup(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM refresh_tokens
		 WHERE token = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`
	return scanToken(r.db.QueryRowContext(ctx, query, token))
}

func (r *PostgresRepository) LookupForUpdate(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM refresh_tokens
		 WHERE token = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1
		 FOR UPDATE`
	return scanToken(r.db.QueryRowContext(ctx, query, token))
}

func (r *PostgresRepository) Revoke(ctx context.Context, token string) (int64, error) {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`
	return r.exec(ctx, query, token)
}

func (r *PostgresRepository) RevokeActive(ctx context.Context, token string) (int64, error) {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1 AND revoked = FALSE`
	return r.exec(ctx, query, token)
}

func (r *PostgresRepository) GetActive(ctx context.Context, userID int64, now time.Time) (*models.RefreshToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM refresh_tokens
		 WHERE user_id = $1 AND revoked = FALSE AND expires_at > $2
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`
	return scanToken(r.db.QueryRowContext(ctx, query, userID, now))
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
