package datafile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
)

// CacheOptions sizes the two cache tiers.
type CacheOptions struct {
	PayloadCapacity int
	ListingCapacity int
	ListingTTL      time.Duration
	Clock           clockwork.Clock
}

// Caches bundles the process-wide listing and payload caches. It is created
// once at startup and shared by banks, handlers and the warming scheduler.
type Caches struct {
	Listings *ListingCache
	Payloads *PayloadCache
}

// NewCaches creates both cache tiers over fs.
func NewCaches(fs afero.Fs, opts CacheOptions) *Caches {
	return &Caches{
		Listings: NewListingCache(fs, opts.Clock, opts.ListingCapacity, opts.ListingTTL),
		Payloads: NewPayloadCache(fs, opts.PayloadCapacity),
	}
}

// PopulateReport summarizes one warming run.
type PopulateReport struct {
	Dirs       int // directories listed
	Files      int // files listed
	Malformed  int // files that could not be decoded
	Listings   int // cache sizes after the run
	Payloads   int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Populate pre- or re-populates both caches for dirs, up to limit files in
// total, using the same per-directory limits a scan would request.
//
// A missing directory does not stop the run: the remaining directories are
// still warmed and the not-found errors are returned joined.
func (c *Caches) Populate(ctx context.Context, dirs []string, limit int) (PopulateReport, error) {
	report := PopulateReport{StartedAt: time.Now()}
	slog.Debug("[Caches] Initial sizes", "listings", c.Listings.Len(), "payloads", c.Payloads.Len())

	var errs []error
	count := 0
	for _, dir := range dirs {
		if count >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		paths, err := c.Listings.Populate(dir, limit-count)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		report.Dirs++

		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			if _, err := c.Payloads.Get(path); err != nil {
				report.Malformed++
			}
		}
		count += len(paths)
	}

	report.Files = count
	report.Listings = c.Listings.Len()
	report.Payloads = c.Payloads.Len()
	report.FinishedAt = time.Now()

	slog.Debug("[Caches] Final sizes", "listings", report.Listings, "payloads", report.Payloads)

	err := errors.Join(errs...)
	if err != nil {
		populateRuns.WithLabelValues("error").Inc()
	} else {
		populateRuns.WithLabelValues("ok").Inc()
	}
	return report, err
}
