package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"siergen/internal/lower"
	"siergen/internal/project"
	"siergen/internal/sierra"
)

// Current schema version - increment when the payload format changes.
const diskCacheSchemaVersion uint16 = 2

// DiskCache stores lowered programs on disk keyed by digest. A nil cache
// is valid and never hits. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// cachePayload wraps the program with a schema version for safe
// invalidation. The skip report travels with the program: warm runs must
// surface the same skipped-instruction warnings as cold ones.
type cachePayload struct {
	Schema  uint16
	Program *sierra.Program
	Report  *lower.Report
}

// OpenDiskCache initializes and returns a disk cache at the standard
// location (XDG_CACHE_HOME or ~/.cache).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt returns a disk cache rooted at an explicit directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "programs", hexKey+".mp")
}

// Put serializes and atomically writes a program and its skip report to
// the disk cache.
func (c *DiskCache) Put(key project.Digest, prog *sierra.Program, report *lower.Report) error {
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
	defer os.Remove(f.Name())

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&cachePayload{Schema: diskCacheSchemaVersion, Program: prog, Report: report}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a program and its skip report from the disk cache. The bool
// reports a hit; a schema mismatch is a miss, not an error.
func (c *DiskCache) Get(key project.Digest) (*sierra.Program, *lower.Report, bool, error) {
	if c == nil {
		return nil, nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, false, nil
		}
		return nil, nil, false, err
	}
	defer f.Close()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, nil, false, err
	}
	if payload.Schema != diskCacheSchemaVersion || payload.Program == nil {
		return nil, nil, false, nil
	}
	report := payload.Report
	if report == nil {
		report = &lower.Report{}
	}
	return payload.Program, report, true, nil
}

// cacheKey combines the file content digest with the lowering options so
// a predicate-set change never serves a stale program.
func cacheKey(content project.Digest, opts lower.Options) project.Digest {
	h := sha256.New()

	preds := make([]string, 0, len(opts.Predicates))
	for k, v := range opts.Predicates {
		preds = append(preds, k+"="+v)
	}
	sort.Strings(preds)
	for _, p := range preds {
		fmt.Fprintln(h, p)
	}
	fmt.Fprintln(h, opts.FallbackPredicate)

	var optDigest project.Digest
	copy(optDigest[:], h.Sum(nil))
	return project.Combine(content, optDigest)
}
