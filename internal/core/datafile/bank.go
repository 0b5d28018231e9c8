package datafile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultMeasurementPrefix = "Measurements"
	DefaultMetaPrefix        = "Meta"
	DefaultFileLimit         = 5000
)

// Points maps operation names to their results.
type Points map[string]any

// BankOptions configures a Bank.
type BankOptions struct {
	Prefix     string   // measurement prefix; empty means the whole payload
	MetaPrefix string   // metadata prefix
	FileLimit  int      // global scan budget across all directories
	Dirs       []string // scanned in order, highest priority first
	RoundTo    *int32   // decimal places; nil disables rounding
	Clock      clockwork.Clock
}

// Bank reads named values out of the data files of a set of directories.
// A Bank holds no mutable state of its own; any number of goroutines may
// scan concurrently, sharing the caches.
type Bank struct {
	caches *Caches
	opts   BankOptions
}

// NewBank creates a bank over the given caches.
func NewBank(caches *Caches, opts BankOptions) *Bank {
	if opts.MetaPrefix == "" {
		opts.MetaPrefix = DefaultMetaPrefix
	}
	if opts.FileLimit <= 0 {
		opts.FileLimit = DefaultFileLimit
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Bank{caches: caches, opts: opts}
}

// WithRounding returns a copy of the bank rounding results to places.
func (b *Bank) WithRounding(places int32) *Bank {
	opts := b.opts
	opts.RoundTo = &places
	return &Bank{caches: b.caches, opts: opts}
}

// Scan runs every operation over a single pass of the data files and
// returns their results by name. Operations that never complete yield nil.
func (b *Bank) Scan(ctx context.Context, ops map[string]Aggregator) (Points, error) {
	return b.scan(ctx, ops, false)
}

// ScanFlat runs exactly one operation and returns its bare result.
func (b *Bank) ScanFlat(ctx context.Context, ops ...Aggregator) (any, error) {
	if len(ops) != 1 {
		return nil, ErrFlattenMultiple
	}
	points, err := b.scan(ctx, map[string]Aggregator{ops[0].Name(): ops[0]}, true)
	if err != nil {
		return nil, err
	}
	return points[ops[0].Name()], nil
}

type pending struct {
	agg     Aggregator
	state   any
	invoked bool
}

func (b *Bank) scan(ctx context.Context, ops map[string]Aggregator, flat bool) (Points, error) {
	start := time.Now()
	points := make(Points, len(ops))
	active := make(map[string]*pending, len(ops))
	for name, agg := range ops {
		points[name] = nil
		active[name] = &pending{agg: agg}
	}

	paths := newPathIterator(b.caches.Listings, b.opts.Dirs, b.opts.FileLimit)
	visited := 0
	var lastSC ScanContext

	for len(active) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path, last, ok, err := paths.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		visited++

		payload, err := b.caches.Payloads.Get(path)
		if err != nil {
			slog.Debug("[Bank] Skipping unreadable data file", "path", path, "error", err)
			continue
		}

		values := any(payload)
		if b.opts.Prefix != "" {
			v, found := lookup(payload, b.opts.Prefix)
			if !found {
				continue
			}
			values = v
		}

		now := b.opts.Clock.Now()
		for name, p := range active {
			sc := ScanContext{
				Payload:    payload,
				MetaPrefix: b.opts.MetaPrefix,
				Last:       last,
				Name:       name,
				Flat:       flat,
				Now:        now,
			}
			lastSC = sc

			step := p.agg.Apply(values, p.state, sc)
			p.invoked = true
			if step.done {
				points[name] = b.round(step.value)
				delete(active, name)
				continue
			}
			p.state = step.state
		}
	}

	// The path sequence ended before these operations signalled completion,
	// e.g. because the final files could not be decoded.
	for name, p := range active {
		if f, ok := p.agg.(Finisher); ok && p.invoked {
			sc := lastSC
			sc.Name = name
			sc.Last = true
			points[name] = b.round(f.Finish(p.state, sc))
		}
	}

	scanFiles.Observe(float64(visited))
	scanDuration.Observe(time.Since(start).Seconds())

	return points, nil
}

func (b *Bank) round(value any) any {
	if b.opts.RoundTo == nil {
		return value
	}
	return roundValue(value, *b.opts.RoundTo)
}

// IsNoData reports whether err only means that a data directory has not been
// created yet, which callers usually render as empty results.
func IsNoData(err error) bool {
	return errors.Is(err, ErrDirectoryNotFound)
}

// pathIterator yields data file paths newest first across all directories,
// never more than limit in total. The listing of the following directory is
// fetched only when needed to tell whether the current path is the last.
type pathIterator struct {
	listings *ListingCache
	dirs     []string
	limit    int

	count   int      // paths yielded so far
	listed  int      // paths listed so far, across directories
	current []string // remaining paths of the current directory
}

func newPathIterator(listings *ListingCache, dirs []string, limit int) *pathIterator {
	return &pathIterator{listings: listings, dirs: dirs, limit: limit}
}

// next returns the next path and whether it is the final one.
func (it *pathIterator) next() (path string, last bool, ok bool, err error) {
	if it.count >= it.limit {
		return "", false, false, nil
	}
	if len(it.current) == 0 {
		if err := it.advance(); err != nil {
			return "", false, false, err
		}
		if len(it.current) == 0 {
			return "", false, false, nil
		}
	}

	path = it.current[0]
	it.current = it.current[1:]
	it.count++

	if it.count >= it.limit {
		return path, true, true, nil
	}
	if len(it.current) == 0 {
		if err := it.advance(); err != nil {
			return "", false, false, err
		}
		return path, len(it.current) == 0, true, nil
	}
	return path, false, true, nil
}

// advance lists directories until one yields paths or none are left.
func (it *pathIterator) advance() error {
	for len(it.current) == 0 && len(it.dirs) > 0 {
		remaining := it.limit - it.listed
		if remaining <= 0 {
			it.dirs = nil
			return nil
		}
		dir := it.dirs[0]
		it.dirs = it.dirs[1:]

		paths, err := it.listings.Get(dir, remaining)
		if err != nil {
			return err
		}
		it.listed += len(paths)
		it.current = paths
	}
	return nil
}
