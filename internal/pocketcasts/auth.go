package pocketcasts

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Login exchanges account credentials for a bearer token. On success the
// token is stored on the client and returned.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", errors.New("email and password are required")
	}

	path, err := endpoint("login")
	if err != nil {
		return "", err
	}

	var resp loginResponse
	req := loginRequest{Email: email, Password: password, Scope: "webplayer"}
	if err := c.send(ctx, http.MethodPost, makeURL(c.APIBase(), path), req, false, &resp); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login: %w", ErrUnauthorized)
	}

	c.SetToken(resp.Token)
	logrus.WithField("user", resp.UUID).Info("logged in to Pocket Casts")
	return resp.Token, nil
}
