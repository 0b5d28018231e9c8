package warming

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/netrics-lab/netrics-dashboard/internal/core/datafile"
)

// Warmer pre-populates the data file caches.
type Warmer interface {
	Populate(ctx context.Context, dirs []string, limit int) (datafile.PopulateReport, error)
}

// Status describes the most recent warming run.
type Status struct {
	Ran    bool                    `json:"ran"`
	At     time.Time               `json:"at"`
	Error  string                  `json:"error,omitempty"`
	Report datafile.PopulateReport `json:"report"`
}

// Scheduler warms the caches once at start and then on every interval tick.
// A failing or panicking run is logged and never stops the schedule; a run
// missed while the previous one is still going is skipped, not queued.
type Scheduler struct {
	interval time.Duration
	warmer   Warmer
	dirs     []string
	limit    int
	clock    clockwork.Clock

	mu     sync.Mutex
	status Status
}

// NewScheduler creates a warming scheduler for dirs, up to limit files.
func NewScheduler(interval time.Duration, warmer Warmer, dirs []string, limit int, clock clockwork.Clock) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		interval: interval,
		warmer:   warmer,
		dirs:     dirs,
		limit:    limit,
		clock:    clock,
	}
}

// Start runs the warming schedule until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("[Warming] Starting cache warming scheduler",
		"interval", s.interval,
		"dirs", s.dirs,
		"file_limit", s.limit,
	)

	// Warm immediately so the first request of the period is served from cache.
	s.RunOnce(ctx)

	for {
		select {
		case <-ticker.Chan():
			s.RunOnce(ctx)
		case <-ctx.Done():
			slog.Info("[Warming] Stopping (context cancelled)")
			return nil
		}
	}
}

// RunOnce performs one warming run and records its outcome.
func (s *Scheduler) RunOnce(ctx context.Context) {
	report, err := s.safePopulate(ctx)

	status := Status{Ran: true, At: s.clock.Now(), Report: report}
	switch {
	case err == nil:
		slog.Info("[Warming] Caches populated",
			"dirs", report.Dirs,
			"files", report.Files,
			"malformed", report.Malformed,
			"listings", report.Listings,
			"payloads", report.Payloads,
			"took", report.FinishedAt.Sub(report.StartedAt),
		)
	case errors.Is(err, context.Canceled):
		slog.Info("[Warming] Run interrupted by context cancellation")
		return
	case datafile.IsNoData(err):
		// The collector may not have created its directories yet.
		status.Error = err.Error()
		slog.Warn("[Warming] Data directory missing", "error", err, "files", report.Files)
	default:
		status.Error = err.Error()
		slog.Error("[Warming] Cache population failed", "error", err)
	}

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

func (s *Scheduler) safePopulate(ctx context.Context) (report datafile.PopulateReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cache population panicked: %v", r)
		}
	}()
	return s.warmer.Populate(ctx, s.dirs, s.limit)
}

// Status returns the outcome of the most recent run.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
