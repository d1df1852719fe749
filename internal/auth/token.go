// Package auth issues and checks the bearer tokens that tie a client to the
// editing session it created.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ErrInvalidToken covers malformed, expired and wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid session token")

// Claims binds a token to one session.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	log    *zap.SugaredLogger
}

func NewIssuer(secret string, ttl time.Duration, log *zap.SugaredLogger) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, log: log}
}

// Issue returns a signed token for sessionID.
func (i *Issuer) Issue(sessionID string) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks the token and returns the session it was issued for.
func (i *Issuer) Verify(token string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	// signed by us but not bound to a session
	if !parsed.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}

// RequireSession rejects requests whose token was not issued for the session
// named by the {id} route variable. The token comes from the Authorization
// header, or from the token query parameter for websocket clients.
func (i *Issuer) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["id"]
		token := bearerToken(r)
		if token == "" {
			http.Error(w, "Missing session token", http.StatusUnauthorized)
			i.log.Infof("[Auth] missing token for %s %s", r.Method, r.URL.Path)
			return
		}

		tokenSession, err := i.Verify(token)
		if err != nil || tokenSession != sessionID {
			http.Error(w, "Invalid session token", http.StatusUnauthorized)
			i.log.Infof("[Auth] rejected token for session %s: %v", sessionID, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}
