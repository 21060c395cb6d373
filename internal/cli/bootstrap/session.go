package bootstrap

import (
	"fmt"

	"FindIt/internal/cli/api"
	"FindIt/internal/cli/repo"
	fsrepo "FindIt/internal/cli/repo/fs"
	reposqlite "FindIt/internal/cli/repo/sqlite"
	"FindIt/internal/config"
)

// Tokens возвращает хранилище токена по пути из конфига.
func Tokens(cfg *config.Config) fsrepo.AuthFSStore {
	return fsrepo.AuthFSStore{TokenPath: cfg.TokenFile}
}

// APIClient: клиент сервера с сохранённым токеном.
func APIClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.ServerURL, Tokens(cfg))
}

// OpenThreadRepo открывает локальную копию лент для текущего пользователя,
// выполняет миграции и возвращает (repo, cleanup, error).
// cleanup необходимо вызвать после окончания работы с репозиторием, чтобы закрыть соединение с БД.
func OpenThreadRepo(cfg *config.Config) (repo.ThreadRepository, func() error, error) {
	var users repo.UserContextStore = Tokens(cfg)
	login, err := users.LoadLogin()
	if err != nil {
		return nil, nil, fmt.Errorf("нет активного пользователя: выполните login/register: %w", err)
	}
	r, _, err := reposqlite.OpenForUser(cfg.ClientDBPath, login)
	if err != nil {
		return nil, nil, fmt.Errorf("open user db: %w", err)
	}
	if err := r.Migrate(); err != nil {
		_ = r.Close()
		return nil, nil, fmt.Errorf("migrate user db: %w", err)
	}
	cleanup := func() error { return r.Close() }
	return r, cleanup, nil
}
