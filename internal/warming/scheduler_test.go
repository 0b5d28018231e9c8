package warming

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/netrics-lab/netrics-dashboard/internal/core/datafile"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWarmer struct {
	mock.Mock
	calls chan struct{}
}

func newMockWarmer() *mockWarmer {
	return &mockWarmer{calls: make(chan struct{}, 16)}
}

func (m *mockWarmer) Populate(ctx context.Context, dirs []string, limit int) (datafile.PopulateReport, error) {
	defer func() { m.calls <- struct{}{} }()
	args := m.Called(ctx, dirs, limit)
	return args.Get(0).(datafile.PopulateReport), args.Error(1)
}

func waitForCall(t *testing.T, m *mockWarmer) {
	t.Helper()
	select {
	case <-m.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for populate call")
	}
}

// tickUntilCalled advances the fake clock until the scheduler reacts; the
// ticker may not exist yet when the first advance happens.
func tickUntilCalled(t *testing.T, clock *clockwork.FakeClock, interval time.Duration, m *mockWarmer) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		clock.Advance(interval)
		select {
		case <-m.calls:
			return
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatal("timed out waiting for scheduled populate call")
		}
	}
}

func TestScheduler_RunsAtStartAndOnEveryTick(t *testing.T) {
	dirs := []string{"/data/pending", "/data/archive"}
	warmer := newMockWarmer()
	warmer.On("Populate", mock.Anything, dirs, 500).
		Return(datafile.PopulateReport{Dirs: 2, Files: 10}, nil)

	clock := clockwork.NewFakeClock()
	s := NewScheduler(4*time.Hour, warmer, dirs, 500, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	waitForCall(t, warmer)
	tickUntilCalled(t, clock, 4*time.Hour, warmer)

	cancel()
	require.NoError(t, <-done)

	status := s.Status()
	require.True(t, status.Ran)
	require.Empty(t, status.Error)
	require.Equal(t, 10, status.Report.Files)
}

func TestScheduler_FailuresDoNotStopSchedule(t *testing.T) {
	notFound := &datafile.DirectoryNotFoundError{Dir: "/data/pending", Err: errors.New("missing")}

	warmer := newMockWarmer()
	warmer.On("Populate", mock.Anything, mock.Anything, mock.Anything).
		Return(datafile.PopulateReport{}, notFound).Once()
	warmer.On("Populate", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { panic("boom") }).Once()
	warmer.On("Populate", mock.Anything, mock.Anything, mock.Anything).
		Return(datafile.PopulateReport{Files: 3}, nil)

	clock := clockwork.NewFakeClock()
	s := NewScheduler(time.Minute, warmer, []string{"/data/pending"}, 10, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	waitForCall(t, warmer)
	tickUntilCalled(t, clock, time.Minute, warmer)
	tickUntilCalled(t, clock, time.Minute, warmer)

	cancel()
	require.NoError(t, <-done)
	require.Empty(t, s.Status().Error)
	require.Equal(t, 3, s.Status().Report.Files)
}

func TestScheduler_RunOnceRecordsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "missing directory", err: fmt.Errorf("warm: %w", &datafile.DirectoryNotFoundError{Dir: "/x", Err: errors.New("missing")})},
		{name: "other failure", err: errors.New("disk on fire")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			warmer := newMockWarmer()
			warmer.On("Populate", mock.Anything, mock.Anything, mock.Anything).
				Return(datafile.PopulateReport{}, tc.err).Once()

			s := NewScheduler(time.Minute, warmer, nil, 10, clockwork.NewFakeClock())
			s.RunOnce(context.Background())

			require.Equal(t, tc.err.Error(), s.Status().Error)
			warmer.AssertExpectations(t)
		})
	}
}
