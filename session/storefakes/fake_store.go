// Package storefakes provides a hand-maintained in-memory fake of
// session.Store for tests.
package storefakes

import (
	"sync"

	"github.com/novademy/novademy-go/session"
)

// FakeStore is an in-memory session.Store. Zero value is ready to use.
// Per-operation errors can be injected to simulate a failing storage medium,
// and removed keys are recorded for assertions.
type FakeStore struct {
	mu      sync.Mutex
	entries map[string]string

	GetErr    error
	SetErr    error
	RemoveErr error

	Removed [][]string
}

func New() *FakeStore {
	return &FakeStore{entries: make(map[string]string)}
}

// NewWithSession returns a fake pre-populated with a full session.
func NewWithSession(accessToken, refreshToken, userID string) *FakeStore {
	fs := New()
	fs.entries[session.KeyAccessToken] = accessToken
	fs.entries[session.KeyRefreshToken] = refreshToken
	fs.entries[session.KeyUserID] = userID
	return fs
}

func (f *FakeStore) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return "", f.GetErr
	}
	return f.entries[key], nil
}

func (f *FakeStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	if f.entries == nil {
		f.entries = make(map[string]string)
	}
	f.entries[key] = value
	return nil
}

func (f *FakeStore) RemoveMany(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	f.Removed = append(f.Removed, keys)
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

// Len returns the number of stored entries.
func (f *FakeStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

var _ session.Store = (*FakeStore)(nil)
