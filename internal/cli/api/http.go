package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"FindIt/internal/cli/repo"
)

// PostJSON sends a JSON POST request. If token is non-empty, it is passed as auth cookie.
func PostJSON(url string, payload any, token string) (*http.Response, []byte, error) {
	return doJSON(context.Background(), http.MethodPost, url, payload, token)
}

// GetJSON sends a GET request with the auth cookie.
func GetJSON(url string, token string) (*http.Response, []byte, error) {
	return doJSON(context.Background(), http.MethodGet, url, nil, token)
}

func doJSON(ctx context.Context, method, url string, payload any, token string) (*http.Response, []byte, error) {
	var r io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Cookie", "auth_token="+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, body, nil
}

// PersistAuthFromResponse извлекает auth cookie из ответа и сохраняет его в store.
func PersistAuthFromResponse(resp *http.Response, store repo.TokenStore) error {
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" && c.Value != "" {
			return store.Save(c.Value)
		}
	}
	return fmt.Errorf("no auth cookie in response")
}

// Error: ошибка сервера в формате {"error","message"}.
type Error struct {
	Status  int
	Kind    string `json:"error"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("server status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// checkResponse превращает не-2xx ответ в *Error.
func checkResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	e := &Error{Status: resp.StatusCode}
	if err := json.Unmarshal(body, e); err != nil || e.Kind == "" {
		e.Kind = ""
		e.Message = strings.TrimSpace(string(body))
	}
	return e
}

// Client: вызовы FindIt API от имени сохранённого пользователя.
type Client struct {
	BaseURL string
	Tokens  repo.TokenStore
}

func NewClient(baseURL string, tokens repo.TokenStore) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Tokens: tokens}
}

func (c *Client) token() string {
	if c.Tokens == nil {
		return ""
	}
	t, _ := c.Tokens.Load()
	return t
}

// Call выполняет запрос и раскладывает успешный ответ в out (если out != nil).
func (c *Client) Call(ctx context.Context, method, path string, payload, out any) error {
	resp, body, err := doJSON(ctx, method, c.BaseURL+path, payload, c.token())
	if err != nil {
		return err
	}
	if err := checkResponse(resp, body); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// authenticate: общий код register/login: сохраняет cookie из ответа.
func (c *Client) authenticate(ctx context.Context, path string, payload, out any) error {
	resp, body, err := doJSON(ctx, http.MethodPost, c.BaseURL+path, payload, "")
	if err != nil {
		return err
	}
	if err := checkResponse(resp, body); err != nil {
		return err
	}
	if err := PersistAuthFromResponse(resp, c.Tokens); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
