package session

import "sync"

// InMemoryCredentialStore backs per-profile credentials in process memory.
type InMemoryCredentialStore struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

var _ CredentialStore = (*InMemoryCredentialStore)(nil)

func NewInMemoryCredentialStore() *InMemoryCredentialStore {
	return &InMemoryCredentialStore{creds: make(map[string]Credential)}
}

func (s *InMemoryCredentialStore) Save(profileID string, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[profileID] = cred
	return nil
}

func (s *InMemoryCredentialStore) Load(profileID string) (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[profileID]
	if !ok || cred.Token == "" {
		return Credential{}, ErrNoSession
	}
	return cred, nil
}

func (s *InMemoryCredentialStore) Clear(profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, profileID)
	return nil
}

// InMemoryScopedStore holds browsing-session-scoped values.
type InMemoryScopedStore struct {
	mu     sync.RWMutex
	values map[string]scopedValues
}

type scopedValues struct {
	navPermitted         bool
	incompleteRestaurant string
}

var _ ScopedStore = (*InMemoryScopedStore)(nil)

func NewInMemoryScopedStore() *InMemoryScopedStore {
	return &InMemoryScopedStore{values: make(map[string]scopedValues)}
}

func (s *InMemoryScopedStore) PermitNavigation(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[sessionID]
	v.navPermitted = true
	s.values[sessionID] = v
}

func (s *InMemoryScopedStore) NavigationPermitted(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[sessionID].navPermitted
}

func (s *InMemoryScopedStore) SetIncompleteRestaurant(sessionID, restaurantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[sessionID]
	v.incompleteRestaurant = restaurantID
	s.values[sessionID] = v
}

func (s *InMemoryScopedStore) IncompleteRestaurant(sessionID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[sessionID].incompleteRestaurant
}

func (s *InMemoryScopedStore) EndSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, sessionID)
}
