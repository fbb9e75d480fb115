// Package regcache keeps decided registries on disk, keyed by the digest of
// the host profile they were decided from.
package regcache

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"hostfold/internal/hostprofile"
	"hostfold/internal/registry"
)

// Cache stores registry snapshots in one directory.
// Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open returns the cache of app under $XDG_CACHE_HOME, or ~/.cache when it
// is unset.
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir returns a cache rooted at dir, creating it when needed.
func OpenDir(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) pathFor(digest [32]byte) string {
	return filepath.Join(c.dir, "registries", hex.EncodeToString(digest[:])+".mp")
}

// Put writes r's snapshot. The file is replaced atomically.
func (c *Cache) Put(r *registry.Registry) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(r.Profile().Digest())
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := r.Encode(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Get reads the registry decided from the profile with the given digest.
// A missing entry is not an error. An entry that does not decode, or that
// belongs to another profile, is removed and reported as a miss.
func (c *Cache) Get(digest [32]byte) (*registry.Registry, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	p := c.pathFor(digest)
	r, err := read(p)
	c.mu.RUnlock()

	switch {
	case err == nil && r.Profile().Digest() == digest:
		return r, true, nil
	case errors.Is(err, os.ErrNotExist):
		return nil, false, nil
	case err == nil, errors.Is(err, registry.ErrSnapshot):
		return c.dropStale(p, digest)
	default:
		return nil, false, err
	}
}

// dropStale removes a bad entry at p. The entry is read again under the
// write lock, so a Put that replaced it after the first read is kept and
// returned as a hit.
func (c *Cache) dropStale(p string, digest [32]byte) (*registry.Registry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := read(p)
	switch {
	case err == nil && r.Profile().Digest() == digest:
		return r, true, nil
	case errors.Is(err, os.ErrNotExist):
		return nil, false, nil
	case err == nil, errors.Is(err, registry.ErrSnapshot):
		if rmErr := os.Remove(p); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return nil, false, rmErr
		}
		return nil, false, nil
	default:
		return nil, false, err
	}
}

func read(p string) (*registry.Registry, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return registry.Decode(f)
}

// Load returns the registry for p, deciding and storing it on a miss.
// hit reports whether it came from disk.
func (c *Cache) Load(p hostprofile.Profile) (r *registry.Registry, hit bool, err error) {
	r, hit, err = c.Get(p.Digest())
	if err != nil || hit {
		return r, hit, err
	}
	r = registry.New(p)
	return r, false, c.Put(r)
}

// DropAll removes every cached entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
