// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the authenticated identity and bearer
// credential for the running client.
//
// Exactly one session is live per process. It persists across restarts
// as two durable artifacts in the state directory: the identity file
// (who is acting) and the credential file (the bearer token, encrypted
// at rest). Both are required together; if either is missing or
// malformed the client starts unauthenticated. A damaged session is
// never fatal.
//
// The store makes no network calls and performs no expiry check; an
// expired token is only discovered when the backend rejects it.
package session

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/webitof/crmdash/internal/model"
	"github.com/webitof/crmdash/internal/util"
)

// File names inside the state directory.
const (
	identityFile   = "identity.json"
	credentialFile = "credential.bin"
	keyFile        = "session.key"
)

// Session is the authenticated identity plus bearer credential.
// It is shared by reference with every component that needs it.
type Session struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	Token    string     `json:"-"`
}

// Store loads, holds, and persists the live session.
type Store struct {
	mu      sync.RWMutex
	dir     string
	current *Session
}

// NewStore creates a session store rooted at the given state directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load reads the persisted session from disk. It returns nil when no
// session is stored, and treats any malformed or undecryptable state as
// absent rather than failing. The loaded session becomes current.
func (s *Store) Load() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, err := os.ReadFile(filepath.Join(s.dir, identityFile))
	if err != nil {
		return nil
	}

	var sess Session
	if err := json.Unmarshal(identity, &sess); err != nil || !sess.Role.Valid() || sess.Username == "" {
		log.Printf("session: discarding malformed identity file")
		return nil
	}

	token, err := s.readCredential()
	if err != nil {
		log.Printf("session: discarding unreadable credential: %v", err)
		return nil
	}

	sess.Token = token
	s.current = &sess
	return s.current
}

// Current returns the live session, or nil when logged out.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token implements api.TokenSource. It returns the live bearer
// credential, or an empty string when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Login replaces the current session and persists it. On a persist
// failure the in-memory session is still replaced (the user is logged
// in for this run) and the error is returned for reporting.
func (s *Store) Login(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &sess
	log.Printf("session: login user=%s role=%s", sess.Username, sess.Role)

	identity, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(filepath.Join(s.dir, identityFile), identity, 0o600); err != nil {
		return err
	}
	return s.writeCredential(sess.Token)
}

// Logout clears the current session and removes the persisted copy.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		log.Printf("session: logout user=%s", s.current.Username)
	}
	s.current = nil

	var firstErr error
	for _, name := range []string{identityFile, credentialFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// =============================================================================
// CREDENTIAL ENCRYPTION AT REST
// =============================================================================

// loadOrCreateKey returns the machine-local key protecting the stored
// credential, generating one on first use.
func (s *Store) loadOrCreateKey() ([]byte, error) {
	path := filepath.Join(s.dir, keyFile)

	key, err := os.ReadFile(path)
	if err == nil && len(key) == chacha20poly1305.KeySize {
		return key, nil
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	if err := util.AtomicWriteFile(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}

// writeCredential encrypts and persists the bearer token.
func (s *Store) writeCredential(token string) error {
	key, err := s.loadOrCreateKey()
	if err != nil {
		return err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}

	sealed := aead.Seal(nonce, nonce, []byte(token), nil)
	return util.AtomicWriteFile(filepath.Join(s.dir, credentialFile), sealed, 0o600)
}

// readCredential decrypts the persisted bearer token.
func (s *Store) readCredential() (string, error) {
	key, err := s.loadOrCreateKey()
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", err
	}

	sealed, err := os.ReadFile(filepath.Join(s.dir, credentialFile))
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize() {
		return "", errors.New("credential file too short")
	}

	token, err := aead.Open(nil, sealed[:aead.NonceSize()], sealed[aead.NonceSize():], nil)
	if err != nil {
		return "", err
	}
	return string(token), nil
}
