package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/repomanager"
)

// NewUser is the input for account creation. Role defaults to "user".
type NewUser struct {
	Name     string
	Surname  string
	Login    string
	Mail     string
	Password string
	Role     string
}

// UserService creates accounts. It backs both POST /users/new and the
// useradd command.
type UserService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
}

func NewUserService(db dbx.DBTX, rm repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: rm}
}

// Create validates input, hashes the password and stores the user.
// A taken login yields common.ErrAlreadyExists.
func (s *UserService) Create(ctx context.Context, in NewUser) (*models.User, error) {
	login := strings.TrimSpace(in.Login)
	if login == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: login and password are required", common.ErrInvalidRequest)
	}

	roleLabel := in.Role
	if roleLabel == "" {
		roleLabel = auth.RoleUser.String()
	}
	role, err := auth.ParseRole(roleLabel)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword([]byte(in.Password))
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}

	user := &models.User{
		Name:         in.Name,
		Surname:      in.Surname,
		Login:        login,
		Mail:         in.Mail,
		PasswordHash: hash,
		Role:         role.String(),
	}
	created, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return created, nil
}
