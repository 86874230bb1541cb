// Package cli implements the useradd administration command: it prompts for
// account details on the terminal and stores the user directly in the
// database, which is how the first admin account gets created.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/services"
)

type UserCreator interface {
	Create(ctx context.Context, in services.NewUser) (*models.User, error)
}

type App struct {
	users  UserCreator
	reader *bufio.Reader
	out    io.Writer
	logger logging.Logger
}

func NewApp(users UserCreator, in io.Reader, out io.Writer, l logging.Logger) *App {
	return &App{users: users, reader: bufio.NewReader(in), out: out, logger: l}
}

// Run collects the fields not preset in cfg and creates the account.
func (a *App) Run(ctx context.Context, cfg *Config) (*models.User, error) {
	var (
		in  = services.NewUser{Login: cfg.Login, Role: cfg.Role}
		err error
	)

	if in.Login == "" {
		if in.Login, err = GetSimpleText(a.reader, "Login", a.out); err != nil {
			return nil, err
		}
	}
	if in.Name, err = GetSimpleText(a.reader, "Name", a.out); err != nil {
		return nil, err
	}
	if in.Surname, err = GetSimpleText(a.reader, "Surname", a.out); err != nil {
		return nil, err
	}
	if in.Mail, err = GetSimpleText(a.reader, "Mail", a.out); err != nil {
		return nil, err
	}
	if in.Role == "" {
		if in.Role, err = GetSimpleText(a.reader, "Role (user|admin, empty for user)", a.out); err != nil {
			return nil, err
		}
	}

	pw, err := GetNewPassword(a.out)
	if err != nil {
		return nil, err
	}
	in.Password = string(pw)
	common.WipeByteArray(pw)

	user, err := a.users.Create(ctx, in)
	if err != nil {
		a.logger.Error(ctx, "user creation failed", "login", in.Login, "error", err.Error())
		return nil, err
	}

	a.logger.Info(ctx, "user created", "user_id", user.ID, "login", user.Login, "role", user.Role)
	fmt.Fprintf(a.out, "Created user %q with id %d (%s)\n", user.Login, user.ID, user.Role)
	return user, nil
}
