package middleware

import (
	"context"
	"net/http"
	"strings"

	"dukaan/pkg/auth"
	"dukaan/pkg/httperr"
)

// Principal is the authenticated identity resolved from a bearer token.
// Scopes come from the token as issued, not from the user's current admin
// flag: a token keeps the authorization it was minted with until it
// expires. Known staleness tradeoff, kept deliberately.
type Principal struct {
	UserID uint
	Name   string
	Email  string
	Scopes []string
}

// HasScope reports whether the principal holds scope by exact string
// membership. There is no hierarchy: "admin" does not imply "user".
func (p Principal) HasScope(scope string) bool {
	for _, s := range p.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// UserFinder resolves a user ID to its current name and email. Returning
// an error means the user no longer exists.
type UserFinder func(id uint) (name, email string, err error)

type principalKey struct{}

// PrincipalFromCtx returns the Principal injected by Guard.
func PrincipalFromCtx(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Guard authenticates the request: it decodes the bearer token and loads
// the user behind its subject. A missing header, an undecodable token, or
// a vanished user all yield the same 401.
func Guard(tokens *auth.TokenManager, find UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				httperr.Write(w, httperr.Auth())
				return
			}

			claims, err := tokens.Decode(tokenString)
			if err != nil {
				httperr.Write(w, httperr.Auth())
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				httperr.Write(w, httperr.Auth())
				return
			}

			name, email, err := find(userID)
			if err != nil {
				httperr.Write(w, httperr.Auth())
				return
			}

			principal := Principal{
				UserID: userID,
				Name:   name,
				Email:  email,
				Scopes: claims.Scopes,
			}

			ctx := context.WithValue(r.Context(), principalKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope allows the request through only when the authenticated
// principal holds the given scope. Guard must run first.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromCtx(r.Context())
			if !ok {
				httperr.Write(w, httperr.Auth())
				return
			}
			if !principal.HasScope(scope) {
				httperr.Write(w, httperr.Permission())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
