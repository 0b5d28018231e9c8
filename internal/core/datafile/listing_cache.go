package datafile

import (
	"container/list"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"
)

// ListingCache caches the sorted, truncated listing of a data directory.
//
// Unlike payloads, directory contents change as the collector writes new
// files, so entries expire after a TTL. Entries are keyed on the full
// (directory, limit) pair: different limits are never conflated.
type ListingCache struct {
	fs       afero.Fs
	clock    clockwork.Clock
	ttl      time.Duration
	capacity int

	mu    sync.Mutex
	cache map[listingKey]*list.Element
	order *list.List // front is most recently used

	group singleflight.Group
}

type listingKey struct {
	dir   string
	limit int
}

func (k listingKey) String() string {
	return fmt.Sprintf("%s\x00%d", k.dir, k.limit)
}

type listingEntry struct {
	key     listingKey
	paths   []string
	expires time.Time
}

// NewListingCache creates a listing cache over fs.
func NewListingCache(fs afero.Fs, clock clockwork.Clock, capacity int, ttl time.Duration) *ListingCache {
	if capacity < 1 {
		capacity = 1
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ListingCache{
		fs:       fs,
		clock:    clock,
		ttl:      ttl,
		capacity: capacity,
		cache:    make(map[listingKey]*list.Element),
		order:    list.New(),
	}
}

// Get returns up to limit file paths from dir in descending name order.
// A missing directory yields a *DirectoryNotFoundError, which is not cached.
func (c *ListingCache) Get(dir string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	key := listingKey{dir: dir, limit: limit}

	if paths, ok := c.lookup(key); ok {
		cacheHits.WithLabelValues(cacheListing).Inc()
		return slices.Clone(paths), nil
	}
	cacheMisses.WithLabelValues(cacheListing).Inc()

	// Concurrent misses for one key share a single directory read.
	result, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		if paths, ok := c.lookup(key); ok {
			return paths, nil
		}
		return c.populate(key)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(result.([]string)), nil
}

// Populate lists dir unconditionally and (re)sets the cache entry for (dir, limit).
func (c *ListingCache) Populate(dir string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	paths, err := c.populate(listingKey{dir: dir, limit: limit})
	if err != nil {
		return nil, err
	}
	return slices.Clone(paths), nil
}

func (c *ListingCache) populate(key listingKey) ([]string, error) {
	paths, err := c.list(key.dir, key.limit)
	if err != nil {
		return nil, err
	}
	c.store(key, paths)
	return paths, nil
}

// list reads dir and keeps the limit largest regular-file names.
func (c *ListingCache) list(dir string, limit int) ([]string, error) {
	infos, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &DirectoryNotFoundError{Dir: dir, Err: err}
		}
		return nil, fmt.Errorf("listing data directory %q: %w", dir, err)
	}

	// ReadDir sorts ascending by name; walk it backwards.
	paths := make([]string, 0, min(limit, len(infos)))
	for i := len(infos) - 1; i >= 0 && len(paths) < limit; i-- {
		if !infos[i].Mode().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Join(dir, infos[i].Name()))
	}
	return paths, nil
}

func (c *ListingCache) lookup(key listingKey) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*listingEntry)
	if !c.clock.Now().Before(entry.expires) {
		c.removeLocked(elem)
		return nil, false
	}
	c.order.MoveToFront(elem)
	return entry.paths, true
}

func (c *ListingCache) store(key listingKey, paths []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.clock.Now().Add(c.ttl)
	if elem, ok := c.cache[key]; ok {
		entry := elem.Value.(*listingEntry)
		entry.paths = paths
		entry.expires = expires
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		c.expireLocked()
	}
	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.removeLocked(oldest)
			cacheEvictions.WithLabelValues(cacheListing).Inc()
		}
	}

	c.cache[key] = c.order.PushFront(&listingEntry{key: key, paths: paths, expires: expires})
}

// expireLocked drops every expired entry.
func (c *ListingCache) expireLocked() {
	now := c.clock.Now()
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if !now.Before(elem.Value.(*listingEntry).expires) {
			c.removeLocked(elem)
		}
		elem = prev
	}
}

func (c *ListingCache) removeLocked(elem *list.Element) {
	delete(c.cache, elem.Value.(*listingEntry).key)
	c.order.Remove(elem)
}

// Len returns the number of cached listings, expired or not.
func (c *ListingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
