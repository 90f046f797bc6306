package session

import (
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
)

// FileStorage keeps each session key in its own file under a directory,
// typically somewhere beneath the user's home. It is the terminal client's
// stand-in for browser storage.
type FileStorage struct {
	dir string
}

// NewFileStorage creates the directory if needed and returns a FileStorage
// over it.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create session dir")
	}
	return &FileStorage{dir: dir}, nil
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get returns the stored value, or nil when the key is absent.
func (s *FileStorage) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read session key")
	}
	return data, nil
}

// Set writes the value for a key.
func (s *FileStorage) Set(key string, value []byte) error {
	if err := os.WriteFile(s.path(key), value, 0o600); err != nil {
		return errors.Wrap(err, "write session key")
	}
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *FileStorage) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "delete session key")
	}
	return nil
}
