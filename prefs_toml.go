package keystone

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// FilePreferences persists preferences as a flat TOML table. The file is
// read once when opened; every Edit rewrites it through a temporary file
// and a rename so a crash never leaves a half-written record.
type FilePreferences struct {
	path string

	mu     sync.RWMutex
	values map[string]float64
}

// OpenFilePreferences opens (or prepares to create) the TOML file at path.
// A missing file is an empty store. A file that cannot be parsed is logged
// and treated as empty; it is replaced on the next Edit.
func OpenFilePreferences(path string) (*FilePreferences, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create preferences dir: %w", err)
	}
	p := &FilePreferences{path: path, values: make(map[string]float64)}

	values := make(map[string]float64)
	_, err := toml.DecodeFile(path, &values)
	switch {
	case err == nil:
		p.values = values
	case errors.Is(err, fs.ErrNotExist):
	default:
		logFor("prefs").WithError(err).WithField("path", path).
			Warn("unreadable preferences file, using defaults")
	}
	return p, nil
}

// Path returns the backing file path.
func (p *FilePreferences) Path() string {
	return p.path
}

// Float implements Preferences.
func (p *FilePreferences) Float(key string) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

// Edit implements Preferences.
func (p *FilePreferences) Edit(fn func(e Editor)) error {
	b := newBatch()
	fn(b)

	p.mu.Lock()
	defer p.mu.Unlock()

	next := b.apply(p.values)
	if err := writeTOMLAtomic(p.path, next); err != nil {
		return err
	}
	p.values = next
	return nil
}

func writeTOMLAtomic(path string, values map[string]float64) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(values); err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	tmp := path + ".tmp"
	if err := writeSynced(tmp, buf.Bytes()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write temporary preferences: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename preferences: %w", err)
	}
	return nil
}

// writeSynced writes data to path and flushes it to disk before closing.
func writeSynced(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// DefaultPreferencesPath returns the per-user location of a preferences
// namespace, under $XDG_CONFIG_HOME/keystone or ~/.config/keystone.
func DefaultPreferencesPath(namespace string) string {
	return filepath.Join(configDir(), namespace+".toml")
}

func configDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(xdgOrFallback("XDG_CONFIG_HOME", filepath.Join(home, ".config")), "keystone")
}

func xdgOrFallback(xdg string, fallback string) string {
	dir := os.Getenv(xdg)
	if dir != "" {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			return dir
		}
	}
	return fallback
}
