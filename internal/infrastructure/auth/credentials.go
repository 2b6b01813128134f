package auth

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Credential errors
var (
	ErrInvalidCredentials = errors.New("invalid client credentials")
	ErrMissingCredentials = errors.New("client_id and client_secret are required")
)

// CredentialStore verifies client_id/client_secret pairs against bcrypt hashes.
// Secrets are never kept in plain text.
type CredentialStore struct {
	mu     sync.RWMutex
	hashes map[string][]byte
	cost   int
}

// NewCredentialStore creates an empty store. Cost outside bcrypt's range falls back to the default.
func NewCredentialStore(cost int) *CredentialStore {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialStore{
		hashes: make(map[string][]byte),
		cost:   cost,
	}
}

// Register stores the hash of secret for clientID, replacing any previous secret
func (s *CredentialStore) Register(clientID, secret string) error {
	if clientID == "" || secret == "" {
		return ErrMissingCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.hashes[clientID] = hash
	s.mu.Unlock()
	return nil
}

// Verify checks a client_id/client_secret pair
func (s *CredentialStore) Verify(clientID, secret string) error {
	if clientID == "" || secret == "" {
		return ErrMissingCredentials
	}

	s.mu.RLock()
	hash, ok := s.hashes[clientID]
	s.mu.RUnlock()
	if !ok {
		return ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(secret)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Len returns the number of registered clients
func (s *CredentialStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hashes)
}
