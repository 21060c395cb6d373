package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"FindIt/internal/cli/repo"
)

// AuthFSStore: файловое хранилище токена и текущего логина для CLI.
// TokenPath пустой, файлы лежат в пользовательском каталоге конфигурации.
type AuthFSStore struct {
	TokenPath string
}

var (
	_ repo.TokenStore       = AuthFSStore{}
	_ repo.UserContextStore = AuthFSStore{}
)

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "FindIt"), nil
}

func (s AuthFSStore) tokenPath() (string, error) {
	p := s.TokenPath
	if p == "" {
		dir, err := configDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(dir, "auth_token")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return "", err
	}
	return p, nil
}

// логин хранится рядом с токеном
func (s AuthFSStore) loginPath() (string, error) {
	p, err := s.tokenPath()
	if err != nil {
		return "", err
	}
	return p + ".login", nil
}

func readTrimmed(p, what string) (string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	v := strings.TrimRight(string(b), "\r\n\t ")
	if v == "" {
		return "", errors.New("empty " + what + " file")
	}
	return v, nil
}

// Save сохраняет auth‑токен в файл.
func (s AuthFSStore) Save(token string) error {
	p, err := s.tokenPath()
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(token), 0o600)
}

// Load читает auth‑токен из файла.
func (s AuthFSStore) Load() (string, error) {
	p, err := s.tokenPath()
	if err != nil {
		return "", err
	}
	return readTrimmed(p, "token")
}

// SaveLogin сохраняет логин пользователя в файл.
func (s AuthFSStore) SaveLogin(login string) error {
	if login == "" {
		return errors.New("empty login")
	}
	p, err := s.loginPath()
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(login), 0o600)
}

// LoadLogin читает логин пользователя из файла.
func (s AuthFSStore) LoadLogin() (string, error) {
	p, err := s.loginPath()
	if err != nil {
		return "", err
	}
	return readTrimmed(p, "login")
}
