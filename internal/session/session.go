package session

import (
	"encoding/json/v2"
	"fmt"
	"net/http"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/bookstandapp/bookstand-web/internal/domain"
	"github.com/bookstandapp/bookstand-web/internal/errors"
	"github.com/bookstandapp/bookstand-web/internal/id"
)

const (
	// CookieName is the session cookie key.
	CookieName = "user"

	tokenIssuer   = "bookstand-web"
	tokenAudience = "bookstand-browser"
)

// Claims are the fields embedded in a session token. The user snapshot is
// encrypted inside the v4.local token, so it is not readable without the key.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// Manager issues and verifies session cookies.
type Manager struct {
	symmetricKey paseto.V4SymmetricKey
	ttl          time.Duration
	secure       bool
}

// NewManager creates a session manager from a 32-byte symmetric key.
func NewManager(key []byte, ttl time.Duration, secure bool) (*Manager, error) {
	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create PASETO symmetric key: %w", err)
	}

	return &Manager{
		symmetricKey: symmetricKey,
		ttl:          ttl,
		secure:       secure,
	}, nil
}

// Issue creates a signed session token embedding the user record.
// The password never goes into the token.
func (m *Manager) Issue(user domain.User) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(m.ttl))

	tokenID, err := id.Generate("sess")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("user_id", user.ID)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("username", user.Username)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("name", user.Name)

	return token.V4Encrypt(m.symmetricKey, nil), nil
}

// Verify parses and validates a session token, returning its claims.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(m.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnauthorized, "invalid session token")
	}

	var claims Claims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, errors.Wrap(err, errors.CodeUnauthorized, "parse session claims")
	}

	return &claims, nil
}

// User reconstructs the user snapshot carried by the claims.
func (c *Claims) User() domain.User {
	return domain.User{
		ID:       c.UserID,
		Username: c.Username,
		Name:     c.Name,
	}
}

// SetCookie attaches the session cookie to the response. The cookie expires
// with the token TTL, one day by default.
func (m *Manager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie removes the session cookie (sign-out).
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest extracts and verifies the session from the request cookie.
// A missing cookie is not an error condition; it returns (nil, nil).
func (m *Manager) FromRequest(r *http.Request) (*Claims, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil
	}
	return m.Verify(cookie.Value)
}
