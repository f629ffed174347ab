package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bookworm/bookworm-go/internal/crypto"
	"github.com/bookworm/bookworm-go/internal/model"
)

const testSecret = "test-secret"

// fakeResolver resolves a single known user ID.
type fakeResolver struct {
	user *model.User
}

func (f *fakeResolver) GetByID(_ context.Context, id int64) (*model.User, error) {
	if f.user != nil && f.user.ID == id {
		u := *f.user
		return &u, nil
	}
	return nil, errors.New("user not found")
}

func doRequest(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMissingHeader(t *testing.T) {
	h := JWTAuth(testSecret, &fakeResolver{})(okHandler())
	rec := doRequest(h, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthWrongScheme(t *testing.T) {
	h := JWTAuth(testSecret, &fakeResolver{})(okHandler())
	rec := doRequest(h, "Basic dXNlcjpwYXNz")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthEmptyToken(t *testing.T) {
	h := JWTAuth(testSecret, &fakeResolver{})(okHandler())
	for _, token := range []string{"Bearer ", "Bearer null"} {
		rec := doRequest(h, token)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", token, rec.Code)
		}
	}
}

func TestJWTAuthMalformedToken(t *testing.T) {
	h := JWTAuth(testSecret, &fakeResolver{})(okHandler())
	for _, token := range []string{"Bearer abc", "Bearer a.b", "Bearer a.b.c.d"} {
		rec := doRequest(h, token)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", token, rec.Code)
		}
	}
}

func TestJWTAuthInvalidSignature(t *testing.T) {
	token, err := crypto.GenerateToken(1, "other-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() unexpected error: %v", err)
	}

	h := JWTAuth(testSecret, &fakeResolver{})(okHandler())
	rec := doRequest(h, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthUnknownUser(t *testing.T) {
	token, err := crypto.GenerateToken(99, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() unexpected error: %v", err)
	}

	resolver := &fakeResolver{user: &model.User{ID: 1, Username: "reader"}}
	h := JWTAuth(testSecret, resolver)(okHandler())
	rec := doRequest(h, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for deleted user", rec.Code)
	}
}

func TestJWTAuthSuccess(t *testing.T) {
	resolver := &fakeResolver{user: &model.User{
		ID:           7,
		Username:     "reader",
		PasswordHash: "should-not-leak",
	}}

	token, err := crypto.GenerateToken(7, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() unexpected error: %v", err)
	}

	var got *model.User
	h := JWTAuth(testSecret, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := doRequest(h, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil || got.ID != 7 || got.Username != "reader" {
		t.Fatalf("context user = %+v, want ID 7", got)
	}
	if got.PasswordHash != "" {
		t.Error("context user carries the password hash")
	}
}

func TestWithUserRoundTrip(t *testing.T) {
	user := &model.User{ID: 3, Username: "writer"}
	ctx := WithUser(context.Background(), user)

	got, ok := UserFromContext(ctx)
	if !ok || got.ID != 3 {
		t.Fatalf("UserFromContext() = %+v, %v", got, ok)
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
