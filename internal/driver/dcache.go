package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"kestrel/internal/observ"
	"kestrel/internal/project"
	"kestrel/internal/version"
)

// Current schema version - increment when CacheEntry format changes
const cacheSchemaVersion uint16 = 1

// DiskCache хранит сгенерированный ассемблер по ключу на диске.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CacheEntry is the stored result of one successful compilation.
type CacheEntry struct {
	// Schema version for safe invalidation when format changes
	Schema   uint16        `msgpack:"schema"`
	Path     string        `msgpack:"path"`
	Assembly string        `msgpack:"asm"`
	Timings  observ.Report `msgpack:"timings"`
}

// CacheKey digests the tree bytes together with everything else that can
// change the emitted assembly.
func CacheKey(tree []byte, opts Options) project.Digest {
	return project.Combine(
		project.Hash(tree),
		project.Hash([]byte(opts.fingerprint())),
		project.Hash([]byte(version.Current().Version)),
	)
}

// OpenDiskCache creates dir if needed and returns a cache rooted there.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		return nil, errors.New("empty cache directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key project.Digest) string {
	// записи лежат в подкаталоге "asm"
	return filepath.Join(c.dir, "asm", key.String()+".mp")
}

// Put serializes and writes an entry to the disk cache.
func (c *DiskCache) Put(key project.Digest, entry *CacheEntry) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := msgpack.NewEncoder(f).Encode(entry); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Атомарная замена
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Get reads and deserializes an entry. Entries written by another schema
// count as misses.
func (c *DiskCache) Get(key project.Digest, out *CacheEntry) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	if out.Schema != cacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог и удалим
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
