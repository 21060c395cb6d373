package api

import (
	"context"
	"fmt"
	"net/http"

	"FindIt/internal/cli/model"
	"FindIt/internal/core/thread"
)

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

func (c *Client) Register(ctx context.Context, login, password, fullName string) (*model.User, error) {
	var u model.User
	if err := c.authenticate(ctx, "/api/user/register", credentials{login, password, fullName}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Login(ctx context.Context, login, password string) (*model.User, error) {
	var u model.User
	if err := c.authenticate(ctx, "/api/user/login", credentials{Login: login, Password: password}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	return &u, c.Call(ctx, http.MethodGet, "/api/user/me", nil, &u)
}

func (c *Client) ReportItem(ctx context.Context, title, description, location string) (*model.Item, error) {
	var it model.Item
	in := map[string]string{"title": title, "description": description, "location": location}
	return &it, c.Call(ctx, http.MethodPost, "/api/items", in, &it)
}

func (c *Client) CreateClaim(ctx context.Context, itemID, proof string) (*model.Claim, error) {
	var cl model.Claim
	in := map[string]string{"item_id": itemID, "proof": proof}
	return &cl, c.Call(ctx, http.MethodPost, "/api/claims", in, &cl)
}

func (c *Client) ListClaims(ctx context.Context) ([]model.Claim, error) {
	var out []model.Claim
	return out, c.Call(ctx, http.MethodGet, "/api/claims", nil, &out)
}

func (c *Client) GetClaim(ctx context.Context, claimID string) (*model.Claim, error) {
	var cl model.Claim
	return &cl, c.Call(ctx, http.MethodGet, "/api/claims/"+claimID, nil, &cl)
}

// Messages возвращает сообщения ленты с seq > after.
func (c *Client) Messages(ctx context.Context, claimID string, after int64) ([]thread.Entry, error) {
	var wire []model.WireEntry
	path := fmt.Sprintf("/api/claims/%s/messages?after=%d", claimID, after)
	if err := c.Call(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]thread.Entry, 0, len(wire))
	for _, w := range wire {
		e, err := w.Decode()
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", w.Seq, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *Client) PostMessage(ctx context.Context, claimID, content string) error {
	return c.Call(ctx, http.MethodPost, "/api/claims/"+claimID+"/messages", map[string]string{"content": content}, nil)
}

func (c *Client) RequestIdentity(ctx context.Context, claimID string, schema thread.IdentitySchema) (*model.Claim, error) {
	return c.claimAction(ctx, claimID, "/identity/request", map[string]string{"schema": string(schema)})
}

func (c *Client) SubmitIdentity(ctx context.Context, claimID string, resp thread.IdentityResponsePayload) (*model.Claim, error) {
	return c.claimAction(ctx, claimID, "/identity/submit", resp)
}

func (c *Client) InitiateHandover(ctx context.Context, claimID string) (*model.Claim, error) {
	return c.claimAction(ctx, claimID, "/handover/initiate", nil)
}

func (c *Client) StartHandoverCode(ctx context.Context, claimID string) (*model.CodeGrant, error) {
	var g model.CodeGrant
	return &g, c.Call(ctx, http.MethodPost, "/api/claims/"+claimID+"/handover/code", nil, &g)
}

func (c *Client) VerifyHandoverCode(ctx context.Context, claimID, code string) (*model.Claim, error) {
	return c.claimAction(ctx, claimID, "/handover/verify", map[string]string{"code": code})
}

func (c *Client) RejectClaim(ctx context.Context, claimID, reason string) (*model.Claim, error) {
	return c.claimAction(ctx, claimID, "/reject", map[string]string{"reason": reason})
}

func (c *Client) claimAction(ctx context.Context, claimID, suffix string, payload any) (*model.Claim, error) {
	var cl model.Claim
	if err := c.Call(ctx, http.MethodPost, "/api/claims/"+claimID+suffix, payload, &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}
