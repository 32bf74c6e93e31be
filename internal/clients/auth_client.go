package clients

import (
	"context"
	"errors"
	"net/url"

	"chargedash/internal/models"
)

// AuthClient talks to the backend auth endpoints.
type AuthClient struct {
	base *BaseClient
}

// NewAuthClient returns client.
func NewAuthClient(base *BaseClient) *AuthClient {
	return &AuthClient{base: base}
}

// Login submits credentials form-encoded and returns the access token.
func (c *AuthClient) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.base.PostForm(ctx, "/auth/login", form, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", errors.New("clients: login response missing access_token")
	}
	return resp.AccessToken, nil
}

// Me fetches the profile behind the given token.
func (c *AuthClient) Me(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := c.base.GetJSON(ctx, "/auth/me", token, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
