package memory

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
)

type usersRepo struct {
	store *Store
	db    dbx.DBTX
}

func (r *usersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	var err error
	r.store.run(r.db, func() {
		for _, u := range r.store.users {
			if u.Login == user.Login {
				err = common.ErrAlreadyExists
				return
			}
		}
		r.store.nextUserID++
		user.ID = r.store.nextUserID
		user.CreatedAt = r.store.now()
		r.store.users = append(r.store.users, *user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *usersRepo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Login == login })
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

// LockUser only checks existence; the store lock already serializes writers.
func (r *usersRepo) LockUser(ctx context.Context, id int64) error {
	_, err := r.GetUserByID(ctx, id)
	return err
}

func (r *usersRepo) find(match func(*models.User) bool) (*models.User, error) {
	var found *models.User
	r.store.run(r.db, func() {
		for i := range r.store.users {
			if match(&r.store.users[i]) {
				u := r.store.users[i]
				found = &u
				return
			}
		}
	})
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}
