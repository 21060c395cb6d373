package commands

import (
	"context"
	"fmt"
	"strings"

	"FindIt/internal/cli/bootstrap"
	"FindIt/internal/cli/model"
	"FindIt/internal/config"
)

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Зарегистрироваться и сохранить токен" }
func (registerCmd) Usage() string       { return "register <login> <password> [full name]" }
func (registerCmd) Section() Section    { return SectionAccount }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	u, err := bootstrap.APIClient(cfg).Register(ctx, args[0], args[1], strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	if err := rememberUser(cfg, u); err != nil {
		return err
	}
	fmt.Fprintf(Out, "%s Registered as %s (id %d)\n", okMark, u.Login, u.ID)
	return nil
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Войти и сохранить токен" }
func (loginCmd) Usage() string       { return "login <login> <password>" }
func (loginCmd) Section() Section    { return SectionAccount }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	u, err := bootstrap.APIClient(cfg).Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if err := rememberUser(cfg, u); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged in successfully")
	return nil
}

// rememberUser сохраняет логин и создаёт локальную базу пользователя.
func rememberUser(cfg *config.Config, u *model.User) error {
	if err := bootstrap.Tokens(cfg).SaveLogin(u.Login); err != nil {
		return fmt.Errorf("saving login: %w", err)
	}
	_, done, err := bootstrap.OpenThreadRepo(cfg)
	if err != nil {
		return err
	}
	return done()
}

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Показать текущего пользователя" }
func (statusCmd) Usage() string       { return "status" }
func (statusCmd) Section() Section    { return SectionAccount }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	u, err := bootstrap.APIClient(cfg).Me(ctx)
	if err != nil {
		return err
	}
	name := u.FullName
	if name == "" {
		name = u.Login
	}
	fmt.Fprintf(Out, "Status: %s (login %s, id %d)\n", name, u.Login, u.ID)
	return nil
}

func init() {
	RegisterCmd(registerCmd{})
	RegisterCmd(loginCmd{})
	RegisterCmd(statusCmd{})
}
