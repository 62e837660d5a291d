package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tharunK03/RealEstate/internal/adapter/auth"
	"github.com/tharunK03/RealEstate/internal/domain"
)

var secret = []byte("test-secret")

type mockUsers struct {
	users map[string]domain.User
}

func (m *mockUsers) Create(_ context.Context, u domain.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUsers) GetByID(_ context.Context, id string) (domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func newUsers() *mockUsers {
	return &mockUsers{users: map[string]domain.User{
		"u-1": domain.NewUser("u-1", "alice", "alice@example.com", domain.RoleAdmin),
	}}
}

func sign(t *testing.T, method jwt.SigningMethod, key any, sub string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func TestAuthenticate_Valid(t *testing.T) {
	v := auth.NewVerifier(secret, newUsers())

	actor, err := v.Authenticate(context.Background(), sign(t, jwt.SigningMethodHS256, secret, "u-1", time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actor.ID != "u-1" {
		t.Errorf("ID = %q, want %q", actor.ID, "u-1")
	}
	if actor.Role != domain.RoleAdmin {
		t.Errorf("Role = %q, want %q", actor.Role, domain.RoleAdmin)
	}
}

func TestAuthenticate_RoleComesFromDirectory(t *testing.T) {
	users := newUsers()
	v := auth.NewVerifier(secret, users)
	token := sign(t, jwt.SigningMethodHS256, secret, "u-1", time.Hour)

	demoted := users.users["u-1"]
	demoted.Role = domain.RoleBuyer
	users.users["u-1"] = demoted

	actor, err := v.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actor.Role != domain.RoleBuyer {
		t.Errorf("Role = %q, want %q", actor.Role, domain.RoleBuyer)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	v := auth.NewVerifier(secret, newUsers())

	cases := map[string]string{
		"wrong secret": sign(t, jwt.SigningMethodHS256, []byte("other"), "u-1", time.Hour),
		"expired":      sign(t, jwt.SigningMethodHS256, secret, "u-1", -time.Minute),
		"wrong method": sign(t, jwt.SigningMethodHS512, secret, "u-1", time.Hour),
		"unknown user": sign(t, jwt.SigningMethodHS256, secret, "u-404", time.Hour),
		"no subject":   sign(t, jwt.SigningMethodHS256, secret, "", time.Hour),
		"garbage":      "not-a-token",
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Authenticate(context.Background(), token)
			if !errors.Is(err, domain.ErrUnauthenticated) {
				t.Errorf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

type whoamiOutput struct {
	Body struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("auth-test", "0.0.1"))
	api.UseMiddleware(auth.Middleware(api, auth.NewVerifier(secret, newUsers())))

	huma.Register(api, huma.Operation{
		OperationID: "whoami",
		Method:      http.MethodGet,
		Path:        "/whoami",
	}, func(ctx context.Context, _ *struct{}) (*whoamiOutput, error) {
		out := &whoamiOutput{}
		if actor := auth.ActorFrom(ctx); actor != nil {
			out.Body.ID = actor.ID
			out.Body.Role = string(actor.Role)
		}
		return out, nil
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url, authorization string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	return resp
}

func TestMiddleware_AttachesActor(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv.URL+"/whoami", "Bearer "+sign(t, jwt.SigningMethodHS256, secret, "u-1", time.Hour))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var out whoamiOutput
	if err := json.NewDecoder(resp.Body).Decode(&out.Body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Body.ID != "u-1" || out.Body.Role != "admin" {
		t.Errorf("got %+v, want u-1/admin", out.Body)
	}
}

func TestMiddleware_Anonymous(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv.URL+"/whoami", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var out whoamiOutput
	if err := json.NewDecoder(resp.Body).Decode(&out.Body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Body.ID != "" {
		t.Errorf("anonymous request got actor %q", out.Body.ID)
	}
}

func TestMiddleware_InvalidToken(t *testing.T) {
	srv := newTestServer(t)

	for _, header := range []string{"Bearer nope", "Basic dXNlcjpwYXNz"} {
		resp := get(t, srv.URL+"/whoami", header)
		resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%q: status = %d, want %d", header, resp.StatusCode, http.StatusUnauthorized)
		}
	}
}
