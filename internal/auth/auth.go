// Package auth validates agent API keys for the authenticated HTTP
// surface (spec.md §6), following the teacher's internal/auth.Validator
// shape: a small interface with sentinel errors, here backed by a local
// SHA-256 hash comparison instead of an external HTTP callback, since
// spec.md has the server own the key store rather than delegate to a
// separate auth service.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// KeyPrefix is the required prefix of every agent API key.
const KeyPrefix = "pa_sk_"

// ErrInvalidKey indicates the key is malformed or does not match any
// stored hash.
var ErrInvalidKey = errors.New("auth: invalid api key")

// Identity is the agent/user a validated key resolves to.
type Identity struct {
	AgentID       string
	WalletAddress string
}

// Validator resolves a bearer API key to an Identity.
type Validator interface {
	Validate(apiKey string) (Identity, error)
}

// Store is a local, in-memory Validator: it holds SHA-256 hashes of
// issued keys rather than the keys themselves, following the teacher's
// preference for comparing hashes rather than storing secrets in the
// clear.
type Store struct {
	mu     sync.RWMutex
	hashes map[string]Identity // hex(sha256(key)) -> identity
}

// NewStore returns an empty key store.
func NewStore() *Store {
	return &Store{hashes: make(map[string]Identity)}
}

// IssueKey registers rawKey for identity, retaining only its hash. It
// returns ErrInvalidKey if rawKey lacks KeyPrefix.
func IssueKey(store *Store, rawKey string, identity Identity) error {
	if !strings.HasPrefix(rawKey, KeyPrefix) {
		return fmt.Errorf("auth: %w: key must start with %s", ErrInvalidKey, KeyPrefix)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.hashes[hashKey(rawKey)] = identity
	return nil
}

// Revoke removes rawKey from the store; subsequent Validate calls fail.
func (s *Store) Revoke(rawKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes, hashKey(rawKey))
}

// Validate hashes apiKey and compares against stored hashes in constant
// time, returning the associated Identity on a match.
func (s *Store) Validate(apiKey string) (Identity, error) {
	if !strings.HasPrefix(apiKey, KeyPrefix) {
		return Identity{}, ErrInvalidKey
	}
	want := hashKey(apiKey)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for stored, identity := range s.hashes {
		if subtle.ConstantTimeCompare([]byte(stored), []byte(want)) == 1 {
			return identity, nil
		}
	}
	return Identity{}, ErrInvalidKey
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	return strings.TrimPrefix(header, prefix), true
}
