package api

import (
	"context"
	"net/http"

	"github.com/caloriediary/go-diary-client/diary"
)

// LoginResponse is the backend's answer to a successful login. The user
// payload may be omitted; the session is still valid on the token alone.
type LoginResponse struct {
	Token string      `json:"token"`
	User  *diary.User `json:"user,omitempty"`
}

// RegisterResponse carries the registration result together with the HTTP
// status. The backend distinguishes 200 (immediate login, token present)
// from 201 (account created, pending a separate login step).
type RegisterResponse struct {
	Token   string      `json:"token,omitempty"`
	User    *diary.User `json:"user,omitempty"`
	Message string      `json:"message,omitempty"`
	Status  int         `json:"-"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/login", nil, loginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register submits the full registration payload and reports the status the
// backend answered with alongside the body.
func (c *Client) Register(ctx context.Context, input diary.RegisterInput) (*RegisterResponse, error) {
	var out RegisterResponse
	status, err := c.do(ctx, http.MethodPost, "/api/register", nil, input, &out)
	if err != nil {
		return nil, err
	}
	out.Status = status
	return &out, nil
}
