// Package csrf holds the anti-forgery token the API requires on
// state-changing requests.
package csrf

import "sync"

// HeaderName is the request header the server reads the token from.
const HeaderName = "X-CSRFToken"

// Store keeps the most recently fetched token. It is created by the
// application and handed to whoever issues mutating calls; there is no
// package-level instance. The zero value is an empty store.
//
// There is no expiry tracking: a stale token surfaces as a server-side
// rejection of the next mutating request.
type Store struct {
	mu    sync.RWMutex
	token string
	set   bool
}

func NewStore() *Store {
	return &Store{}
}

// Set overwrites the stored token. Last write wins.
func (s *Store) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.set = true
}

// Get returns the stored token and whether one was ever set.
func (s *Store) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.set
}

// Reset forgets the token.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.set = false
}
