package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const sessionFileName = "session.json"

// FileStore persists session entries as a small JSON object in a single file
// under the configured data folder. Writes go through a temp file and rename
// so a crash mid-write never leaves a torn session on disk. A missing file
// reads as an empty session (logged out).
//
// The store supports read-after-write consistency within one process; there
// is no cross-process locking.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// NewFileStore creates the data folder if needed and returns a store backed
// by <dataFolder>/session.json.
func NewFileStore(dataFolder string) (*FileStore, error) {
	if dataFolder == "" {
		return nil, fmt.Errorf("[NewFileStore] data folder is required")
	}
	if err := os.MkdirAll(dataFolder, 0o700); err != nil {
		return nil, fmt.Errorf("create data folder: %w", err)
	}
	return &FileStore{path: filepath.Join(dataFolder, sessionFileName)}, nil
}

// Path returns the location of the backing file.
func (fs *FileStore) Path() string { return fs.path }

func (fs *FileStore) Get(key string) (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := fs.load()
	if err != nil {
		return "", err
	}
	return entries[key], nil
}

func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return fs.save(entries)
}

func (fs *FileStore) RemoveMany(keys ...string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.load()
	if err != nil {
		return err
	}
	for _, key := range keys {
		delete(entries, key)
	}
	return fs.save(entries)
}

func (fs *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	entries := map[string]string{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupted session file is treated as logged out rather than
		// wedging every subsequent request.
		return map[string]string{}, nil
	}
	return entries, nil
}

func (fs *FileStore) save(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
