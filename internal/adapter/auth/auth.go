package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tharunK03/RealEstate/internal/domain"
)

// SchemeName is the OpenAPI security scheme registered for bearer tokens.
const SchemeName = "bearer"

type actorKey struct{}

// Verifier resolves bearer tokens into actors. Tokens are HS256 JWTs whose
// subject is a user id; the role always comes from the user directory so
// that role changes apply to tokens already issued.
type Verifier struct {
	secret []byte
	users  domain.UserRepository
}

// NewVerifier creates a verifier for tokens signed with secret.
func NewVerifier(secret []byte, users domain.UserRepository) *Verifier {
	return &Verifier{secret: secret, users: users}
}

// Authenticate validates a raw token and loads the caller's current role.
// Every credential problem is reported as domain.ErrUnauthenticated.
func (v *Verifier) Authenticate(ctx context.Context, raw string) (domain.Actor, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return domain.Actor{}, fmt.Errorf("%w: token has no subject", domain.ErrUnauthenticated)
	}

	user, err := v.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Actor{}, fmt.Errorf("%w: unknown user", domain.ErrUnauthenticated)
		}
		return domain.Actor{}, err
	}

	return domain.Actor{ID: user.ID, Role: user.Role}, nil
}

// Middleware attaches the authenticated actor to each request. Requests
// without an Authorization header pass through anonymously; a header that
// does not verify is answered with 401.
func Middleware(api huma.API, v *Verifier) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")
		if header == "" {
			next(ctx)
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "bearer token required")
			return
		}

		actor, err := v.Authenticate(ctx.Context(), raw)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid token")
				return
			}
			slog.ErrorContext(ctx.Context(), "resolving actor", "error", err)
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error")
			return
		}

		next(huma.WithValue(ctx, actorKey{}, &actor))
	}
}

// ActorFrom returns the actor attached by Middleware, or nil for anonymous requests.
func ActorFrom(ctx context.Context) *domain.Actor {
	actor, _ := ctx.Value(actorKey{}).(*domain.Actor)
	return actor
}

// SecurityScheme describes bearer authentication for the OpenAPI document.
func SecurityScheme() *huma.SecurityScheme {
	return &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
}
