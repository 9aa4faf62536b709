package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a session token fails verification.
var ErrInvalidToken = errors.New("invalid session token")

// Session identifies an authenticated household member.
type Session struct {
	UserID      string
	HouseholdID string
}

// Claims carries the session inside a JWT.
type Claims struct {
	HouseholdID string `json:"household_id"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies HS256 session tokens.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
}

// NewAuthenticator creates a new authenticator.
func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs a new session token for the user.
func (a *Authenticator) Issue(s Session) (string, error) {
	now := time.Now()
	claims := &Claims{
		HouseholdID: s.HouseholdID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Verify parses and validates a session token.
func (a *Authenticator) Verify(tokenString string) (Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return Session{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" || claims.HouseholdID == "" {
		return Session{}, ErrInvalidToken
	}

	return Session{UserID: claims.Subject, HouseholdID: claims.HouseholdID}, nil
}

type contextKey struct{}

var sessionKey contextKey

// WithSession returns a context carrying the session.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext extracts the session stored by Middleware.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}

// Middleware rejects requests without a valid bearer token and stores the
// verified session on the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
			return
		}

		session, err := a.Verify(token)
		if err != nil {
			http.Error(w, `{"error":"invalid session token"}`, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}
