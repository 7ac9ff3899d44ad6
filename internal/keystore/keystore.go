// Package keystore persists small string values in a local JSON file,
// the terminal counterpart of browser localStorage.
package keystore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"multichat/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// GeminiAPIKey is the entry holding the Gemini credential.
const GeminiAPIKey = "geminiApiKey"

// Store is a file-backed string map. Values are stored unencrypted.
type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// Change describes an entry that differs after an external write.
type Change struct {
	Name    string
	Value   string
	Present bool
}

// Open loads the store at path. A missing file is an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: make(map[string]string)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value for name.
func (s *Store) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// Keys returns the stored names in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set stores value under name and flushes to disk.
func (s *Store) Set(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[name]
	s.values[name] = value
	if err := s.flushLocked(); err != nil {
		if had {
			s.values[name] = prev
		} else {
			delete(s.values, name)
		}
		return err
	}
	logging.Store("set %s", name)
	return nil
}

// Remove deletes name and flushes to disk. Removing a missing name is a no-op.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[name]
	if !had {
		return nil
	}
	delete(s.values, name)
	if err := s.flushLocked(); err != nil {
		s.values[name] = prev
		return err
	}
	logging.Store("removed %s", name)
	return nil
}

// Reload re-reads the backing file.
func (s *Store) Reload() error {
	values, err := readFile(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

func readFile(path string) (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read key store: %w", err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse key store %s: %w", path, err)
	}
	return values, nil
}

// flushLocked writes through a temp file and rename so readers never see a partial file.
func (s *Store) flushLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create key store dir: %w", err)
	}

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal key store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".storage-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write key store: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod key store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close key store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		logging.StoreError("rename %s: %v", s.path, err)
		return fmt.Errorf("replace key store: %w", err)
	}
	return nil
}

// watchDebounce collapses the create/write/rename burst of one save.
const watchDebounce = 100 * time.Millisecond

// Watch reports entries changed by other processes. The directory is
// watched rather than the file because saves replace the file by rename.
// The channel closes when ctx is done.
func (s *Store) Watch(ctx context.Context) (<-chan Change, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create key store dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	logging.Store("watching %s", s.path)

	out := make(chan Change, 8)
	go s.run(ctx, watcher, out)
	return out, nil
}

func (s *Store) run(ctx context.Context, watcher *fsnotify.Watcher, out chan<- Change) {
	defer close(out)
	defer watcher.Close()

	var (
		pending bool
		timer   = time.NewTimer(watchDebounce)
	)
	timer.Stop()
	defer timer.Stop()

	base := filepath.Base(s.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !pending {
				pending = true
				timer.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.StoreError("watch error: %v", err)

		case <-timer.C:
			pending = false
			for _, c := range s.sync() {
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// sync reloads from disk and returns entries that differ from memory.
func (s *Store) sync() []Change {
	fresh, err := readFile(s.path)
	if err != nil {
		logging.StoreError("reload after change: %v", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var changes []Change
	for name, v := range fresh {
		if old, ok := s.values[name]; !ok || old != v {
			changes = append(changes, Change{Name: name, Value: v, Present: true})
		}
	}
	for name := range s.values {
		if _, ok := fresh[name]; !ok {
			changes = append(changes, Change{Name: name})
		}
	}
	s.values = fresh
	sort.Slice(changes, func(i, j int) bool { return changes[i].Name < changes[j].Name })
	return changes
}
