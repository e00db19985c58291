package services

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/AnshRaj112/clima-backend/pkg/utils"
)

const (
	// AdminSessionDuration is how long an admin token stays valid.
	AdminSessionDuration = 24 * time.Hour
	// AdminSessionCookie is the cookie carrying the signed session token.
	AdminSessionCookie = "admin-token"
	// AdminRole is the only role this service knows about.
	AdminRole = "admin"
)

// AdminClaims is the payload of an admin session token.
type AdminClaims struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	LoginTime string `json:"loginTime"`
	jwt.RegisteredClaims
}

// AdminCredentials is the single operator-provisioned admin identity.
// PasswordHash is an argon2id hash.
type AdminCredentials struct {
	Username     string
	PasswordHash string
}

// NewAdminCredentials builds credentials from config. password may be either
// plaintext or an argon2id hash; plaintext is hashed once here.
func NewAdminCredentials(username, password string) (AdminCredentials, error) {
	if username == "" || password == "" {
		return AdminCredentials{}, nil
	}
	if utils.IsPasswordHash(password) {
		return AdminCredentials{Username: username, PasswordHash: password}, nil
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return AdminCredentials{}, fmt.Errorf("hash admin password: %w", err)
	}
	return AdminCredentials{Username: username, PasswordHash: hash}, nil
}

// SessionAuthority issues and verifies admin session tokens. It keeps no
// server-side session state; rotating the secret invalidates every token.
type SessionAuthority struct {
	secret       []byte
	credentials  AdminCredentials
	clock        clockwork.Clock
	secureCookie bool
}

// NewSessionAuthority creates a session authority. secureCookie should be
// true when the service is served over TLS.
func NewSessionAuthority(secret string, credentials AdminCredentials, clock clockwork.Clock, secureCookie bool) *SessionAuthority {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SessionAuthority{
		secret:       []byte(secret),
		credentials:  credentials,
		clock:        clock,
		secureCookie: secureCookie,
	}
}

// Issue signs a 24h admin token for username.
func (a *SessionAuthority) Issue(username string) (string, error) {
	now := a.clock.Now()
	claims := AdminClaims{
		Username:  username,
		Role:      AdminRole,
		LoginTime: now.UTC().Format(time.RFC3339),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AdminSessionDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign admin token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, expiry and role. Any failure returns
// ErrUnauthorized.
func (a *SessionAuthority) Verify(tokenString string) (*AdminClaims, error) {
	if tokenString == "" {
		return nil, ErrUnauthorized
	}

	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	if claims.Role != AdminRole {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// ValidateCredentials compares username/password against the configured
// admin. The password is always hashed, even for an unknown username.
func (a *SessionAuthority) ValidateCredentials(username, password string) bool {
	if a.credentials.Username == "" || a.credentials.PasswordHash == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.credentials.Username)) == 1
	passOK, err := utils.VerifyPassword(password, a.credentials.PasswordHash)
	if err != nil {
		return false
	}
	return userOK && passOK
}

// Login validates credentials and issues a token.
func (a *SessionAuthority) Login(username, password string) (string, error) {
	if !a.ValidateCredentials(username, password) {
		return "", ErrInvalidCredentials
	}
	return a.Issue(username)
}

// SessionCookie wraps a token in the admin session cookie.
func (a *SessionAuthority) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     AdminSessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(AdminSessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearedSessionCookie deletes the admin session cookie on the client.
func (a *SessionAuthority) ClearedSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     AdminSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionFromRequest reads and verifies the session cookie.
func (a *SessionAuthority) SessionFromRequest(r *http.Request) (*AdminClaims, error) {
	cookie, err := r.Cookie(AdminSessionCookie)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return a.Verify(cookie.Value)
}
