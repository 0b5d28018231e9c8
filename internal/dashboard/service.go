package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/netrics-lab/netrics-dashboard/internal/core/datafile"
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid dashboard query")

// Scanner is the read side of a datafile.Bank.
type Scanner interface {
	Scan(ctx context.Context, ops map[string]datafile.Aggregator) (datafile.Points, error)
	Columns(ctx context.Context, keys []string, age time.Duration, opts datafile.ColumnOptions) ([][]any, error)
}

// Service serves dashboard statistics out of the measurement data files.
type Service struct {
	stats  Scanner // rounds results for display
	series Scanner
	ops    map[string]datafile.Aggregator
}

// NewService creates the dashboard service. stats serves the named
// statistics of defs; series serves raw time series.
func NewService(stats, series Scanner, defs []Definition) (*Service, error) {
	ops, err := operations(defs)
	if err != nil {
		return nil, err
	}
	return &Service{stats: stats, series: series, ops: ops}, nil
}

// CurrentStats evaluates every configured statistic in a single scan.
// Missing data directories yield all-null statistics rather than an error.
func (s *Service) CurrentStats(ctx context.Context) (datafile.Points, error) {
	points, err := s.stats.Scan(ctx, s.ops)
	if datafile.IsNoData(err) {
		slog.Debug("[Dashboard] No data yet", "error", err)
		return s.nullStats(), nil
	}
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (s *Service) nullStats() datafile.Points {
	points := make(datafile.Points, len(s.ops))
	for name := range s.ops {
		points[name] = nil
	}
	return points
}

// SeriesRequest selects time series out of recent data files.
type SeriesRequest struct {
	Keys     []string
	Age      time.Duration
	Decorate []string
	Reverse  bool
}

// SeriesResponse holds one column per requested key, plus a metadata
// column when decoration was requested.
type SeriesResponse struct {
	Columns map[string][]any `json:"columns"`
	Meta    []any            `json:"meta,omitempty"`
}

// Series reads the requested keys' values recorded within the request's age.
func (s *Service) Series(ctx context.Context, req SeriesRequest) (*SeriesResponse, error) {
	if len(req.Keys) == 0 {
		return nil, errors.Join(ErrInvalidQuery, errors.New("at least one key is required"))
	}
	if req.Age <= 0 {
		return nil, errors.Join(ErrInvalidQuery, errors.New("age must be positive"))
	}

	columns, err := s.series.Columns(ctx, req.Keys, req.Age, datafile.ColumnOptions{
		Decorate: req.Decorate,
		Reverse:  req.Reverse,
	})
	if datafile.IsNoData(err) {
		slog.Debug("[Dashboard] No data yet", "error", err)
		columns, err = make([][]any, len(req.Keys)), nil
	}
	if err != nil {
		return nil, err
	}

	resp := &SeriesResponse{Columns: make(map[string][]any, len(req.Keys))}
	for i, key := range req.Keys {
		resp.Columns[key] = columns[i]
	}
	if len(req.Decorate) > 0 && len(columns) > len(req.Keys) {
		resp.Meta = columns[len(req.Keys)]
	}
	return resp, nil
}
