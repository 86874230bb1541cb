// Package refreshtokens declares the server-side repository contract for
// persisting refresh tokens. Rows are never deleted: revoked and expired
// tokens stay for audit.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
)

// Repository defines operations for issuing, retrieving and revoking refresh tokens.
type Repository interface {
	// Insert stores a new, unrevoked token for userID.
	Insert(ctx context.Context, userID int64, token string, expiresAt time.Time) (*models.RefreshToken, error)

	// Lookup returns the most recently created record with this exact token
	// string, or common.ErrTokenNotFound.
	Lookup(ctx context.Context, token string) (*models.RefreshToken, error)

	// LookupForUpdate is Lookup with a row lock held until the transaction ends.
	// It must run inside a transaction.
	LookupForUpdate(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke marks every record with this token as revoked and returns the
	// number of rows matched. Revoking an already revoked token still counts.
	Revoke(ctx context.Context, token string) (int64, error)

	// RevokeActive revokes the token only if it is not already revoked and
	// returns the number of rows changed.
	RevokeActive(ctx context.Context, token string) (int64, error)

	// GetActive returns the most recently created unrevoked token of userID
	// that expires after now, or common.ErrTokenNotFound.
	GetActive(ctx context.Context, userID int64, now time.Time) (*models.RefreshToken, error)
}
