// Package auth manages the session credential pair and the authentication
// operations of the remote storefront API (OTP and WhatsApp code flows).
package auth

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Mohamedmnem11/ivita/internal/storage"
	"github.com/Mohamedmnem11/ivita/pkg/logger"
)

// Session is the session-scoped access/refresh token pair, persisted under
// fixed storage keys. It satisfies the API client's CredentialStore.
type Session struct {
	mu      sync.RWMutex
	store   storage.Store
	access  string
	refresh string
	log     *logger.Logger
}

// NewSession loads any persisted credentials from the store.
func NewSession(store storage.Store, log *logger.Logger) *Session {
	if log == nil {
		log = logger.NewDefault("session")
	}
	s := &Session{store: store, log: log}
	if store != nil {
		if v, ok := store.Get(storage.KeyAccessToken); ok {
			s.access = string(v)
		}
		if v, ok := store.Get(storage.KeyRefreshToken); ok {
			s.refresh = string(v)
		}
	}
	return s
}

// AccessToken returns the current access token, or "" when anonymous.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// RefreshToken returns the current refresh token, or "".
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// Authenticated reports whether an access token is present.
func (s *Session) Authenticated() bool {
	return s.AccessToken() != ""
}

// SetAccessToken replaces the access token, keeping the refresh token.
func (s *Session) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = token
	s.persist(storage.KeyAccessToken, token)
}

// SetTokens stores a fresh credential pair after a successful verification.
func (s *Session) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
	s.persist(storage.KeyAccessToken, access)
	s.persist(storage.KeyRefreshToken, refresh)
}

// Clear drops both tokens, in memory and on disk. Called on logout and when
// a refresh attempt fails.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	if s.store != nil {
		if err := s.store.Delete(storage.KeyAccessToken); err != nil {
			s.log.WithError(err).Warn("failed to remove access token")
		}
		if err := s.store.Delete(storage.KeyRefreshToken); err != nil {
			s.log.WithError(err).Warn("failed to remove refresh token")
		}
	}
}

func (s *Session) persist(key, value string) {
	if s.store == nil {
		return
	}
	if err := s.store.Set(key, []byte(value)); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("failed to persist credential")
	}
}

// AccessTokenExpiry returns the exp claim of the access token, when the
// token parses as a JWT. The signature is not verified; this exists only so
// callers can refresh proactively instead of waiting for a 401.
func (s *Session) AccessTokenExpiry() (time.Time, bool) {
	token := s.AccessToken()
	if token == "" {
		return time.Time{}, false
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// DeviceID returns a stable identifier for this client installation,
// generating and persisting one on first use.
func (s *Session) DeviceID() string {
	if s.store != nil {
		if v, ok := s.store.Get(storage.KeyDeviceID); ok && len(v) > 0 {
			return string(v)
		}
	}
	id := uuid.NewString()
	if s.store != nil {
		if err := s.store.Set(storage.KeyDeviceID, []byte(id)); err != nil {
			s.log.WithError(err).Warn("failed to persist device id")
		}
	}
	return id
}
