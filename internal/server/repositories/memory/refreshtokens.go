package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
)

type tokensRepo struct {
	store *Store
	db    dbx.DBTX
}

func (r *tokensRepo) Insert(ctx context.Context, userID int64, token string, expiresAt time.Time) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	r.store.run(r.db, func() {
		r.store.nextTokenID++
		rt = models.RefreshToken{
			ID:        r.store.nextTokenID,
			UserID:    userID,
			Token:     token,
			CreatedAt: r.store.now(),
			ExpiresAt: expiresAt,
		}
		r.store.tokens = append(r.store.tokens, rt)
	})
	return &rt, nil
}

func (r *tokensRepo) Lookup(ctx context.Context, token string) (*models.RefreshToken, error) {
	return r.latest(func(rt *models.RefreshToken) bool { return rt.Token == token })
}

// LookupForUpdate equals Lookup; row locking is covered by Store.WithinTx.
func (r *tokensRepo) LookupForUpdate(ctx context.Context, token string) (*models.RefreshToken, error) {
	return r.Lookup(ctx, token)
}

func (r *tokensRepo) Revoke(ctx context.Context, token string) (int64, error) {
	return r.revoke(token, false), nil
}

func (r *tokensRepo) RevokeActive(ctx context.Context, token string) (int64, error) {
	return r.revoke(token, true), nil
}

func (r *tokensRepo) GetActive(ctx context.Context, userID int64, now time.Time) (*models.RefreshToken, error) {
	return r.latest(func(rt *models.RefreshToken) bool {
		return rt.UserID == userID && rt.ActiveAt(now)
	})
}

func (r *tokensRepo) revoke(token string, onlyActive bool) int64 {
	var n int64
	r.store.run(r.db, func() {
		for i := range r.store.tokens {
			rt := &r.store.tokens[i]
			if rt.Token != token || (onlyActive && rt.Revoked) {
				continue
			}
			rt.Revoked = true
			n++
		}
	})
	return n
}

// latest returns the newest matching record, by created_at then id.
func (r *tokensRepo) latest(match func(*models.RefreshToken) bool) (*models.RefreshToken, error) {
	var found *models.RefreshToken
	r.store.run(r.db, func() {
		for i := range r.store.tokens {
			rt := &r.store.tokens[i]
			if !match(rt) {
				continue
			}
			if found == nil || rt.CreatedAt.After(found.CreatedAt) ||
				(rt.CreatedAt.Equal(found.CreatedAt) && rt.ID > found.ID) {
				found = rt
			}
		}
		if found != nil {
			cp := *found
			found = &cp
		}
	})
	if found == nil {
		return nil, common.ErrTokenNotFound
	}
	return found, nil
}
