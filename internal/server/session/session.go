// Package session implements the server-side encrypted-cookie session that
// carries short-lived token material across requests. The payload is sealed
// with AES-GCM; the cookie itself is an opaque base64 blob to the client.
package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// CookieName identifies the session cookie. Stable across versions.
const CookieName = "ficom_session"

// MaxAge is the session cookie lifetime.
const MaxAge = 7 * 24 * time.Hour

// MinSecretLength is the minimum accepted secret size. A shorter secret is
// a configuration error and must abort startup.
const MinSecretLength = 32

var (
	ErrSecretTooShort = errors.New("session secret must be at least 32 characters")
	ErrInvalidCookie  = errors.New("invalid session cookie")
)

// Payload is the encrypted session content. All fields are optional; an
// empty payload is a logged-out session.
type Payload struct {
	AccessToken          string     `json:"accessToken,omitempty"`
	RefreshToken         string     `json:"refreshToken,omitempty"`
	AccessTokenExpiresAt *time.Time `json:"accessTokenExpiresAt,omitempty"`
}

// Manager seals and opens session cookies.
type Manager struct {
	key    []byte
	secure bool
}

// NewManager derives the AES key from the configured secret. secure
// controls the cookie's Secure attribute and should be true outside
// development.
func NewManager(secret string, secure bool) (*Manager, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	key := sha256.Sum256([]byte(secret))
	return &Manager{key: key[:], secure: secure}, nil
}

// Seal serializes the payload and encrypts it with AES-GCM under a fresh
// random nonce. The nonce is prepended to the ciphertext.
func (m *Manager) Seal(p *Payload) (string, error) {
	plaintext, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(m.key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := aesgcm.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a cookie value produced by Seal. Tampered or truncated
// values yield ErrInvalidCookie.
func (m *Manager) Open(value string) (*Payload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}

	block, err := aes.NewCipher(m.key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(raw) < aesgcm.NonceSize() {
		return nil, ErrInvalidCookie
	}
	nonce, ciphertext := raw[:aesgcm.NonceSize()], raw[aesgcm.NonceSize():]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}

	p := &Payload{}
	if err := json.Unmarshal(plaintext, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}
	return p, nil
}

// Cookie seals the payload into a ready-to-set session cookie.
func (m *Manager) Cookie(p *Payload) (*http.Cookie, error) {
	value, err := m.Seal(p)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// ClearCookie returns an expired empty cookie that destroys the session.
func (m *Manager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
