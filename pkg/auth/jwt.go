// Package auth implements password hashing and the JWT token service.
//
// Tokens are self-contained HS256 JWTs carrying the user ID as subject and
// a list of scope strings. There is no server-side session store, so an
// issued token cannot be revoked before it expires; accepted limitation.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Scope tags embedded in tokens. Scopes are checked by exact membership:
// holding ScopeAdmin does not imply ScopeUser, which is why Issue always
// lists both for admins.
const (
	ScopeUser  = "user"
	ScopeAdmin = "admin"
)

// ErrInvalidToken is returned by Decode for any unusable token: bad
// signature, malformed payload, or past expiry.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// Claims holds the typed JWT payload.
type Claims struct {
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user ID.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// HasScope reports whether scope is present by exact string match.
func (c *Claims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// TokenManager issues and validates access tokens. The signing key and
// lifetime are fixed at construction; nothing is read from package state.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a TokenManager with the given signing secret and
// token lifetime.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// ScopesFor derives the scope list from the admin flag at issuance time.
// Every token carries "user"; admins additionally carry "admin".
func ScopesFor(isAdmin bool) []string {
	scopes := []string{ScopeUser}
	if isAdmin {
		scopes = append(scopes, ScopeAdmin)
	}
	return scopes
}

// Issue creates a signed token for the user. The scopes are fixed at
// issuance from isAdmin and are not re-derived on later requests.
func (tm *TokenManager) Issue(userID uint, isAdmin bool) (string, error) {
	now := tm.now()
	claims := Claims{
		Scopes: ScopesFor(isAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
}

// Decode parses and validates a token string. Signature, structure, and
// expiry failures all collapse into ErrInvalidToken; callers must not be
// able to tell them apart. Expiry is enforced at the exact boundary: no
// leeway is configured.
func (tm *TokenManager) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// HashPassword returns a bcrypt hash of the plain-text password. The hash
// embeds its own salt and cost, so verification needs no extra state.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
// A malformed hash is treated as a mismatch, never an error.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
