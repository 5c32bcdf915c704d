// Package auth persists the Pocket Casts token in the system keyring and
// inspects it before use.
package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	DefaultService = "castsync"
	DefaultUser    = "pocketcasts-token"
)

// ErrNoToken is returned by Load when nothing is stored
var ErrNoToken = errors.New("no stored Pocket Casts token, run `castsync login`")

// TokenStore keeps one token under a keyring service/user pair
type TokenStore struct {
	service string
	user    string
}

// NewTokenStore creates a store; empty names fall back to the defaults
func NewTokenStore(service, user string) *TokenStore {
	if service == "" {
		service = DefaultService
	}
	if user == "" {
		user = DefaultUser
	}
	return &TokenStore{service: service, user: user}
}

// Save persists token to the keyring
func (s *TokenStore) Save(token string) error {
	if token == "" {
		return errors.New("refusing to store an empty token")
	}
	if err := keyring.Set(s.service, s.user, token); err != nil {
		return fmt.Errorf("storing token in keyring: %w", err)
	}
	return nil
}

// Load returns the stored token or ErrNoToken
func (s *TokenStore) Load() (string, error) {
	token, err := keyring.Get(s.service, s.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("reading token from keyring: %w", err)
	}
	return token, nil
}

// Delete removes the stored token. Deleting a missing token is not an error.
func (s *TokenStore) Delete() error {
	if err := keyring.Delete(s.service, s.user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("removing token from keyring: %w", err)
	}
	return nil
}
