// Package session owns the client's only persistent state: the access token,
// refresh token and user id of the authenticated session. Everything else in
// the module reads and writes it through the Store interface: the request
// pipeline auto-attaches and clears it, and the auth service mutates it on
// login/refresh/logout.
package session

// Store keys. Three named string entries under a fixed namespace, surviving
// process restarts, cleared on logout or terminal auth failure.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUserID       = "userId"
)

// Keys lists every entry a full session occupies, in the order they are
// removed when the session is cleared.
var Keys = []string{KeyAccessToken, KeyRefreshToken, KeyUserID}

// Store defines durable key-value persistence for the session entries.
//
// Absence is a normal, expected state (logged out): Get returns "" with a
// nil error for a missing key. Errors are storage-medium failures only, and
// callers treat them as "logged out" (fail-safe).
type Store interface {
	// Get returns the stored value for key, or "" if absent.
	Get(key string) (string, error)

	// Set overwrites the value for key. The write is atomic from the
	// caller's perspective.
	Set(key, value string) error

	// RemoveMany removes the given keys as a unit. Used on logout and on
	// irrecoverable refresh failure; keys are removed in a fixed order so a
	// transient partial state reads as "logged out" at worst.
	RemoveMany(keys ...string) error
}

// Snapshot is a read-only view of the session taken at a point in time.
type Snapshot struct {
	AccessToken  string
	RefreshToken string
	UserID       string
}

// Authenticated reports whether an access token is stored. Presence of a
// token says nothing about its validity; the server remains the authority.
func (s Snapshot) Authenticated() bool {
	return s.AccessToken != ""
}

// Read collects the three session entries from a store into a Snapshot.
func Read(store Store) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.AccessToken, err = store.Get(KeyAccessToken); err != nil {
		return Snapshot{}, err
	}
	if snap.RefreshToken, err = store.Get(KeyRefreshToken); err != nil {
		return Snapshot{}, err
	}
	if snap.UserID, err = store.Get(KeyUserID); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
