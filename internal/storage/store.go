// Package storage is the filesystem document store. Every document is a file
// under a namespace directory below the store root. Writes go to a temp file
// in the same directory and are renamed into place, so readers never observe
// a partially written document.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/georgemunganga/nota-backend/internal/apperr"
)

// Namespace is a slash-separated directory relative to the store root.
type Namespace string

// Store reads and writes documents below root.
type Store struct {
	root  string
	locks *KeyedMutex
}

// New opens (and creates if needed) a store rooted at dir.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{root: abs, locks: NewKeyedMutex()}, nil
}

// Root returns the absolute store root.
func (s *Store) Root() string { return s.root }

// Lock serializes access to one document of one namespace. Callers doing a
// read-modify-write hold it across the whole sequence.
func (s *Store) Lock(ns Namespace, name string) (unlock func()) {
	return s.locks.Lock(lockKey(ns, name))
}

// lockKey names a document by its cleaned path, so spellings of one file
// share a lock. Names that do not clean fail later in resolve.
func lockKey(ns Namespace, name string) string {
	nsClean, err := cleanRelative(string(ns))
	if err != nil {
		nsClean = string(ns)
	}
	nameClean, err := cleanRelative(name)
	if err != nil {
		nameClean = name
	}
	return nsClean + "\x00" + nameClean
}

// WithLock runs fn while holding the (ns, name) lock.
func (s *Store) WithLock(ns Namespace, name string, fn func() error) error {
	unlock := s.Lock(ns, name)
	defer unlock()
	return fn()
}

// ReadJSON decodes document name into v. It does not lock; the rename-based
// write path already guarantees whole-file reads.
func (s *Store) ReadJSON(ns Namespace, name string, v interface{}) error {
	data, err := s.ReadBytes(ns, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperr.Corrupt(fmt.Sprintf("document %s is unreadable", path.Base(name)), err)
	}
	return nil
}

// WriteJSON encodes v and replaces document name. It does not lock; use Put
// or WithLock when concurrent writers are possible.
func (s *Store) WriteJSON(ns Namespace, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperr.Storage("failed to encode document", err)
	}
	return s.WriteBytes(ns, name, data)
}

// Put is WriteJSON under the document lock.
func (s *Store) Put(ns Namespace, name string, v interface{}) error {
	return s.WithLock(ns, name, func() error { return s.WriteJSON(ns, name, v) })
}

// ReadBytes returns the raw content of document name.
func (s *Store) ReadBytes(ns Namespace, name string) ([]byte, error) {
	p, err := s.resolve(ns, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NotFound("document %s not found", path.Base(name))
		}
		return nil, apperr.Storage("failed to read document", err)
	}
	return data, nil
}

// WriteBytes atomically replaces document name with data.
func (s *Store) WriteBytes(ns Namespace, name string, data []byte) error {
	p, err := s.resolve(ns, name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperr.Storage("failed to create namespace directory", err)
	}

	// the temp file is a dot file next to p, which List skips
	if err := renameio.WriteFile(p, data, 0644, renameio.WithTempDir(dir)); err != nil {
		return apperr.Storage("failed to write document", err)
	}
	syncDir(dir)
	return nil
}

// Delete removes document name. A missing document is NotFound.
func (s *Store) Delete(ns Namespace, name string) error {
	p, err := s.resolve(ns, name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.NotFound("document %s not found", path.Base(name))
		}
		return apperr.Storage("failed to delete document", err)
	}
	return nil
}

// Exists reports whether document (or directory) name is present.
func (s *Store) Exists(ns Namespace, name string) (bool, error) {
	p, err := s.resolve(ns, name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, apperr.Storage("failed to stat document", err)
}

// EnsureDir creates directory name inside ns.
func (s *Store) EnsureDir(ns Namespace, name string) error {
	p, err := s.resolve(ns, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p, 0755); err != nil {
		return apperr.Storage("failed to create directory", err)
	}
	return nil
}

// List returns the sorted names of regular files in directory dir of ns. A
// missing directory yields an empty list.
func (s *Store) List(ns Namespace, dir string) ([]string, error) {
	p, err := s.resolve(ns, dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, apperr.Storage("failed to list directory", err)
	}
	var names []string
	for _, e := range entries {
		// dot files are in-flight temp files
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ListDirs returns the sorted names of subdirectories of dir in ns. A missing
// directory yields an empty list.
func (s *Store) ListDirs(ns Namespace, dir string) ([]string, error) {
	p, err := s.resolve(ns, dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, apperr.Storage("failed to list directory", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Move renames document src in srcNS to dst in dstNS. The destination must
// not exist yet.
func (s *Store) Move(srcNS Namespace, src string, dstNS Namespace, dst string) error {
	from, err := s.resolve(srcNS, src)
	if err != nil {
		return err
	}
	to, err := s.resolve(dstNS, dst)
	if err != nil {
		return err
	}
	if _, err := os.Stat(to); err == nil {
		return apperr.Conflict("document %s already exists", path.Base(dst))
	}
	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return apperr.Storage("failed to create namespace directory", err)
	}
	if err := os.Rename(from, to); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.NotFound("document %s not found", path.Base(src))
		}
		return apperr.Storage("failed to move document", err)
	}
	syncDir(filepath.Dir(to))
	return nil
}

// RemoveDirIfEmpty removes the namespace directory itself when it holds no
// entries. It reports whether the directory is gone afterwards.
func (s *Store) RemoveDirIfEmpty(ns Namespace) (bool, error) {
	p, err := s.resolve(ns, ".")
	if err != nil {
		return false, err
	}
	entries, err := os.ReadDir(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, apperr.Storage("failed to read directory", err)
	}
	if len(entries) > 0 {
		return false, nil
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, apperr.Storage("failed to remove directory", err)
	}
	return true, nil
}

// resolve turns (ns, name) into an absolute path and refuses anything that
// would land outside ns.
func (s *Store) resolve(ns Namespace, name string) (string, error) {
	nsClean, err := cleanRelative(string(ns))
	if err != nil {
		return "", err
	}
	nameClean, err := cleanRelative(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(nsClean), filepath.FromSlash(nameClean)), nil
}

func cleanRelative(p string) (string, error) {
	if p == "" {
		return ".", nil
	}
	if strings.ContainsRune(p, '\\') || strings.ContainsRune(p, 0) {
		return "", apperr.InvalidInput("invalid document name")
	}
	c := path.Clean(p)
	if path.IsAbs(c) || c == ".." || strings.HasPrefix(c, "../") {
		return "", apperr.InvalidInput("invalid document name")
	}
	return c, nil
}

func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
