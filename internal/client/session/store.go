// Package session owns the client's login state: the current token and
// user, persisted durably and supplied to the API client.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bookworm/bookworm-go/internal/client/api"
	"github.com/bookworm/bookworm-go/internal/model"
)

// Durable storage keys; the token is stored as the raw string, the user
// as serialized JSON.
const (
	keyToken = "token"
	keyUser  = "user"
)

// Store holds the current session. It is constructed explicitly and
// injected wherever requests are issued; there is no package-global
// session state. Token and user are always set and cleared together.
type Store struct {
	client  *api.Client
	storage Storage

	token string
	user  *model.UserResponse
}

// New creates a session store bound to an API client and durable storage.
func New(client *api.Client, storage Storage) *Store {
	return &Store{client: client, storage: storage}
}

// Register creates an account and establishes the session. On failure
// the prior session state is untouched.
func (s *Store) Register(ctx context.Context, req model.CreateUserRequest) error {
	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return err
	}
	return s.establish(resp)
}

// Login authenticates and establishes the session. On failure the prior
// session state is untouched.
func (s *Store) Login(ctx context.Context, req model.LoginRequest) error {
	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return err
	}
	return s.establish(resp)
}

// CheckAuth loads a previously persisted session into memory. A missing
// or partial persisted session just leaves the store logged out.
func (s *Store) CheckAuth() error {
	entries, err := s.storage.Load()
	if err != nil {
		return err
	}

	token, okToken := entries[keyToken]
	userJSON, okUser := entries[keyUser]
	if !okToken || !okUser || token == "" {
		return nil
	}

	var user model.UserResponse
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return fmt.Errorf("parsing persisted user: %w", err)
	}

	s.token = token
	s.user = &user
	s.client.SetAuthToken(token)
	return nil
}

// Logout clears durable and in-memory state unconditionally. Calling it
// while logged out is a no-op.
func (s *Store) Logout() error {
	if err := s.storage.Save(map[string]string{}); err != nil {
		return err
	}

	s.token = ""
	s.user = nil
	s.client.ClearAuthToken()
	return nil
}

// Token returns the current session token, or "" when logged out.
func (s *Store) Token() string { return s.token }

// User returns the current user, or nil when logged out.
func (s *Store) User() *model.UserResponse { return s.user }

// Authenticated reports whether a session is established.
func (s *Store) Authenticated() bool { return s.token != "" }

// establish persists the new session and updates memory and the API
// client. Persistence happens first: if it fails, nothing changes.
func (s *Store) establish(resp model.AuthResponse) error {
	userJSON, err := json.Marshal(resp.User)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	err = s.storage.Save(map[string]string{
		keyToken: resp.Token,
		keyUser:  string(userJSON),
	})
	if err != nil {
		return err
	}

	s.token = resp.Token
	user := resp.User
	s.user = &user
	s.client.SetAuthToken(resp.Token)
	return nil
}
