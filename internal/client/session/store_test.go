package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/bookworm/bookworm-go/internal/client/api"
	"github.com/bookworm/bookworm-go/internal/model"
)

// memStorage is an in-memory Storage with an optional forced Save error.
type memStorage struct {
	entries map[string]string
	saveErr error
	saves   int
}

func newMemStorage() *memStorage {
	return &memStorage{entries: map[string]string{}}
}

func (m *memStorage) Load() (map[string]string, error) {
	out := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out, nil
}

func (m *memStorage) Save(entries map[string]string) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries = entries
	return nil
}

// authServer serves the login endpoint, accepting one known credential
// pair and echoing the Authorization header on /api/auth/me.
func authServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if req.Email != "reader@example.com" || req.Password != "hunter22" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(model.AuthResponse{
			Token: "issued-token",
			User: model.UserResponse{
				ID:       7,
				Email:    req.Email,
				Username: "reader",
			},
		})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer issued-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid or expired token"})
			return
		}
		json.NewEncoder(w).Encode(model.UserResponse{ID: 7, Username: "reader"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginEstablishesSession(t *testing.T) {
	srv := authServer(t)
	storage := newMemStorage()
	store := New(api.New(srv.URL), storage)

	err := store.Login(context.Background(), model.LoginRequest{
		Email:    "reader@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}

	if !store.Authenticated() {
		t.Error("Authenticated() = false after login")
	}
	if store.Token() != "issued-token" {
		t.Errorf("Token() = %q, want %q", store.Token(), "issued-token")
	}
	if store.User() == nil || store.User().Username != "reader" {
		t.Errorf("User() = %+v, want username reader", store.User())
	}

	// Token and user must land in storage together.
	if storage.entries[keyToken] != "issued-token" {
		t.Errorf("persisted token = %q, want %q", storage.entries[keyToken], "issued-token")
	}
	var persisted model.UserResponse
	if err := json.Unmarshal([]byte(storage.entries[keyUser]), &persisted); err != nil {
		t.Fatalf("persisted user is not valid JSON: %v", err)
	}
	if persisted.ID != 7 {
		t.Errorf("persisted user ID = %d, want 7", persisted.ID)
	}
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	srv := authServer(t)
	storage := newMemStorage()
	store := New(api.New(srv.URL), storage)

	err := store.Login(context.Background(), model.LoginRequest{
		Email:    "reader@example.com",
		Password: "wrong",
	})
	if err == nil {
		t.Fatal("Login() expected error for bad credentials")
	}
	if err.Error() != "Invalid credentials" {
		t.Errorf("Login() error = %q, want server message", err)
	}

	if store.Authenticated() {
		t.Error("Authenticated() = true after failed login")
	}
	if storage.saves != 0 {
		t.Errorf("failed login wrote to storage %d times", storage.saves)
	}
}

func TestLoginPersistFailureEstablishesNothing(t *testing.T) {
	srv := authServer(t)
	storage := newMemStorage()
	storage.saveErr = errors.New("disk full")
	store := New(api.New(srv.URL), storage)

	err := store.Login(context.Background(), model.LoginRequest{
		Email:    "reader@example.com",
		Password: "hunter22",
	})
	if err == nil {
		t.Fatal("Login() expected error when persistence fails")
	}
	if store.Authenticated() {
		t.Error("Authenticated() = true though the session was never persisted")
	}
	if store.Token() != "" {
		t.Errorf("Token() = %q, want empty", store.Token())
	}
}

func TestCheckAuthRestoresSession(t *testing.T) {
	srv := authServer(t)

	storage := newMemStorage()
	first := New(api.New(srv.URL), storage)
	err := first.Login(context.Background(), model.LoginRequest{
		Email:    "reader@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}

	// A fresh process picks the session back up from the same storage.
	client := api.New(srv.URL)
	second := New(client, storage)
	if err := second.CheckAuth(); err != nil {
		t.Fatalf("CheckAuth() unexpected error: %v", err)
	}
	if !second.Authenticated() {
		t.Fatal("Authenticated() = false after CheckAuth")
	}
	if second.User() == nil || second.User().ID != 7 {
		t.Errorf("User() = %+v, want ID 7", second.User())
	}

	// The restored token must reach the API client.
	if _, err := client.Me(context.Background()); err != nil {
		t.Errorf("Me() with restored token: %v", err)
	}
}

func TestCheckAuthPartialSessionMeansLoggedOut(t *testing.T) {
	storage := newMemStorage()
	storage.entries[keyToken] = "dangling-token"

	store := New(api.New("http://localhost:0"), storage)
	if err := store.CheckAuth(); err != nil {
		t.Fatalf("CheckAuth() unexpected error: %v", err)
	}
	if store.Authenticated() {
		t.Error("Authenticated() = true from a token without a user")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	srv := authServer(t)
	storage := newMemStorage()
	store := New(api.New(srv.URL), storage)

	err := store.Login(context.Background(), model.LoginRequest{
		Email:    "reader@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}

	if err := store.Logout(); err != nil {
		t.Fatalf("Logout() unexpected error: %v", err)
	}
	if store.Authenticated() {
		t.Error("Authenticated() = true after logout")
	}
	if store.User() != nil {
		t.Errorf("User() = %+v after logout, want nil", store.User())
	}
	if len(storage.entries) != 0 {
		t.Errorf("storage still holds %d entries after logout", len(storage.entries))
	}

	// Logging out twice is fine.
	if err := store.Logout(); err != nil {
		t.Errorf("second Logout() unexpected error: %v", err)
	}
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs := NewFileStorage(path)

	// A missing file is just an empty session.
	entries, err := fs.Load()
	if err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Load() on missing file = %v, want empty", entries)
	}

	want := map[string]string{keyToken: "tok", keyUser: `{"id":1}`}
	if err := fs.Save(want); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	got, err := fs.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if got[keyToken] != "tok" || got[keyUser] != `{"id":1}` {
		t.Errorf("Load() = %v, want %v", got, want)
	}
}
