package dashboard

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/netrics-lab/netrics-dashboard/internal/core/datafile"
	dashboardmocks "github.com/netrics-lab/netrics-dashboard/internal/mocks/dashboard"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func defaultDefinitions(t *testing.T) []Definition {
	t.Helper()
	defs, err := LoadDefinitions("")
	require.NoError(t, err)
	return defs
}

func TestService_CurrentStats(t *testing.T) {
	stats := dashboardmocks.NewScanner(t)
	series := dashboardmocks.NewScanner(t)

	stats.EXPECT().
		Scan(mock.Anything, mock.MatchedBy(func(ops map[string]datafile.Aggregator) bool {
			return len(ops) == 5 && ops["latency"] != nil && ops["ookla_dl_sd"] != nil
		})).
		Return(datafile.Points{"latency": 12.3}, nil).
		Once()

	svc, err := NewService(stats, series, defaultDefinitions(t))
	require.NoError(t, err)

	points, err := svc.CurrentStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, datafile.Points{"latency": 12.3}, points)
}

func TestService_CurrentStats_NoDataIsAllNull(t *testing.T) {
	stats := dashboardmocks.NewScanner(t)
	stats.EXPECT().
		Scan(mock.Anything, mock.Anything).
		Return(nil, &datafile.DirectoryNotFoundError{Dir: "/data/pending", Err: os.ErrNotExist}).
		Once()

	svc, err := NewService(stats, dashboardmocks.NewScanner(t), defaultDefinitions(t))
	require.NoError(t, err)

	points, err := svc.CurrentStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, datafile.Points{
		"latency":     nil,
		"ndev_week":   nil,
		"ookla_dl":    nil,
		"ookla_ul":    nil,
		"ookla_dl_sd": nil,
	}, points)
}

func TestService_CurrentStats_ScanError(t *testing.T) {
	stats := dashboardmocks.NewScanner(t)
	stats.EXPECT().Scan(mock.Anything, mock.Anything).Return(nil, errors.New("disk failure")).Once()

	svc, err := NewService(stats, dashboardmocks.NewScanner(t), defaultDefinitions(t))
	require.NoError(t, err)

	_, err = svc.CurrentStats(context.Background())
	require.EqualError(t, err, "disk failure")
}

func TestService_Series(t *testing.T) {
	tests := []struct {
		name      string
		req       SeriesRequest
		configure func(series *dashboardmocks.Scanner)
		want      *SeriesResponse
		wantErr   error
	}{
		{
			name:      "no keys",
			req:       SeriesRequest{Age: time.Hour},
			configure: func(_ *dashboardmocks.Scanner) {},
			wantErr:   ErrInvalidQuery,
		},
		{
			name:      "non-positive age",
			req:       SeriesRequest{Keys: []string{"a"}},
			configure: func(_ *dashboardmocks.Scanner) {},
			wantErr:   ErrInvalidQuery,
		},
		{
			name: "columns per key",
			req:  SeriesRequest{Keys: []string{"a", "b"}, Age: time.Hour},
			configure: func(series *dashboardmocks.Scanner) {
				series.EXPECT().
					Columns(mock.Anything, []string{"a", "b"}, time.Hour, datafile.ColumnOptions{}).
					Return([][]any{{1.0, 2.0}, {3.0, 4.0}}, nil).
					Once()
			},
			want: &SeriesResponse{Columns: map[string][]any{
				"a": {1.0, 2.0},
				"b": {3.0, 4.0},
			}},
		},
		{
			name: "decorated with meta column",
			req:  SeriesRequest{Keys: []string{"a"}, Age: time.Hour, Decorate: []string{"Time"}, Reverse: true},
			configure: func(series *dashboardmocks.Scanner) {
				series.EXPECT().
					Columns(mock.Anything, []string{"a"}, time.Hour, datafile.ColumnOptions{Decorate: []string{"Time"}, Reverse: true}).
					Return([][]any{{1.0, 2.0}, {100.0, 200.0}}, nil).
					Once()
			},
			want: &SeriesResponse{
				Columns: map[string][]any{"a": {1.0, 2.0}},
				Meta:    []any{100.0, 200.0},
			},
		},
		{
			name: "missing directory yields empty columns",
			req:  SeriesRequest{Keys: []string{"a", "b"}, Age: time.Hour},
			configure: func(series *dashboardmocks.Scanner) {
				series.EXPECT().
					Columns(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, &datafile.DirectoryNotFoundError{Dir: "/data/archive", Err: os.ErrNotExist}).
					Once()
			},
			want: &SeriesResponse{Columns: map[string][]any{"a": nil, "b": nil}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			series := dashboardmocks.NewScanner(t)
			tc.configure(series)

			svc, err := NewService(dashboardmocks.NewScanner(t), series, nil)
			require.NoError(t, err)

			resp, err := svc.Series(context.Background(), tc.req)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, resp)
		})
	}
}
