package datafile

import (
	"container/list"
	"encoding/json"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// PayloadCache is a thread-safe LRU cache of decoded data files keyed by path.
//
// Data files are never rewritten, so entries are only ever evicted for
// capacity. The capacity should be at least the scan file limit; otherwise
// entries are evicted before a following scan can reuse them.
type PayloadCache struct {
	fs       afero.Fs
	mu       sync.Mutex
	capacity int
	cache    map[string]*list.Element
	order    *list.List
	stats    PayloadStats
}

// PayloadStats counts cache activity since construction.
type PayloadStats struct {
	Hits      int64
	Parses    int64 // files read from disk and decoded (successfully or not)
	Evictions int64
	Size      int
}

type payloadEntry struct {
	path    string
	payload Payload
}

// NewPayloadCache creates a payload cache reading from fs.
func NewPayloadCache(fs afero.Fs, capacity int) *PayloadCache {
	if capacity < 1 {
		capacity = 1
	}
	return &PayloadCache{
		fs:       fs,
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the decoded payload for path, reading and decoding it on a miss.
// Decode failures are reported as ErrMalformedPayload and are not cached, so a
// file caught mid-write is retried on the next access.
func (c *PayloadCache) Get(path string) (Payload, error) {
	c.mu.Lock()
	if elem, ok := c.cache[path]; ok {
		c.order.MoveToFront(elem)
		c.stats.Hits++
		c.mu.Unlock()
		cacheHits.WithLabelValues(cachePayload).Inc()
		return elem.Value.(*payloadEntry).payload, nil
	}
	c.stats.Parses++
	c.mu.Unlock()
	cacheMisses.WithLabelValues(cachePayload).Inc()

	payload, err := c.load(path)
	if err != nil {
		malformedFiles.Inc()
		return nil, err
	}

	c.put(path, payload)
	return payload, nil
}

func (c *PayloadCache) load(path string) (Payload, error) {
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s: invalid UTF-8", ErrMalformedPayload, path)
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, path, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: %s: not a JSON object", ErrMalformedPayload, path)
	}
	return payload, nil
}

func (c *PayloadCache) put(path string, payload Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A concurrent reader may have loaded the same file first.
	if elem, ok := c.cache[path]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*payloadEntry).payload = payload
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			delete(c.cache, oldest.Value.(*payloadEntry).path)
			c.order.Remove(oldest)
			c.stats.Evictions++
			cacheEvictions.WithLabelValues(cachePayload).Inc()
		}
	}

	c.cache[path] = c.order.PushFront(&payloadEntry{path: path, payload: payload})
}

// Len returns the number of cached payloads.
func (c *PayloadCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *PayloadCache) Stats() PayloadStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.order.Len()
	return s
}
