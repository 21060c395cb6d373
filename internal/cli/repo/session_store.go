package repo

// TokenStore хранит auth-токен, которым CLI подписывает запросы к серверу.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
}

// UserContextStore помнит, под каким логином работает CLI:
// от него зависит, какая локальная база лент открывается.
type UserContextStore interface {
	SaveLogin(login string) error
	LoadLogin() (string, error)
}
