// internal/session/session.go
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/giftcraft/storefront/internal/kvstore"
)

const (
	userKey = "user"
	jwtKey  = "jwt"
)

// User is the CMS-issued account profile kept alongside the token.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session is a restored login: the user profile plus the bearer token the
// CMS issued.
type Session struct {
	User User
	JWT  string
}

// Store persists a login across restarts when "remember me" was checked.
// Tokens are issued and validated by the CMS; this store only reads the
// expiry claim to avoid restoring a session that is already dead.
type Store struct {
	kv    *kvstore.Store
	now   func() time.Time
	cache *Session
}

func NewStore(kv *kvstore.Store) *Store {
	return &Store{kv: kv, now: time.Now}
}

// Save records the login. Without remember the session lives in memory
// only and dies with the process.
func (s *Store) Save(user User, token string, remember bool) error {
	s.cache = &Session{User: user, JWT: token}

	if !remember {
		return nil
	}

	if err := s.kv.Put(userKey, user); err != nil {
		return err
	}
	return s.kv.Put(jwtKey, token)
}

// Restore returns the current session, falling back to the persisted one.
// A persisted token whose exp claim has passed is discarded.
func (s *Store) Restore() (*Session, bool) {
	if s.cache != nil {
		return s.cache, true
	}

	var user User
	var token string
	if !s.kv.Get(userKey, &user) || !s.kv.Get(jwtKey, &token) {
		return nil, false
	}

	if expired(token, s.now()) {
		logrus.Debug("Persisted session token expired, clearing")
		s.Clear()
		return nil, false
	}

	s.cache = &Session{User: user, JWT: token}
	return s.cache, true
}

// Clear forgets the session in both layers.
func (s *Store) Clear() {
	s.cache = nil
	s.kv.Delete(userKey)
	s.kv.Delete(jwtKey)
}

// expired reads the exp claim without verifying the signature; the CMS
// holds the signing key and remains the validation authority.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
