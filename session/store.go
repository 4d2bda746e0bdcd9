package session

import "errors"

// ErrNoSession is returned whenever a usable credential is absent: never
// stored, already cleared, or stored but malformed.
var ErrNoSession = errors.New("no active session")

// Credential is what survives a browser reload: the bearer token plus the
// display fields shown in the page chrome.
type Credential struct {
	Token string
	Email string
	Name  string
}

// CredentialStore is the durable half of client state, keyed by browser
// profile. It is shared by every tab of the same profile.
type CredentialStore interface {
	Save(profileID string, cred Credential) error
	Load(profileID string) (Credential, error)
	Clear(profileID string) error
}

// ScopedStore is the browsing-session half: values that end with the
// tab/window session. The navigation-permitted flag distinguishes "arrived
// via the resolver" from "typed the URL directly".
type ScopedStore interface {
	PermitNavigation(sessionID string)
	NavigationPermitted(sessionID string) bool
	SetIncompleteRestaurant(sessionID, restaurantID string)
	IncompleteRestaurant(sessionID string) string
	EndSession(sessionID string)
}
