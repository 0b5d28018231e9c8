package datafile

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const (
	pendingDir = "/data/pending"
	archiveDir = "/data/archive"
)

// writeRecord writes a data file carrying measurements and a Meta.Time of ts.
func writeRecord(t *testing.T, fs afero.Fs, dir, name string, measurements map[string]any, ts float64) {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"Measurements": measurements,
		"Meta":         map[string]any{"Time": ts},
	})
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll(dir, 0o755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, name), body, 0o644))
}

func writeRaw(t *testing.T, fs afero.Fs, dir, name, body string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(dir, 0o755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, name), []byte(body), 0o644))
}

type fixture struct {
	fs     afero.Fs
	clock  *clockwork.FakeClock
	caches *Caches
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	clock := clockwork.NewFakeClockAt(now)
	return &fixture{
		fs:    fs,
		clock: clock,
		caches: NewCaches(fs, CacheOptions{
			PayloadCapacity: 100,
			ListingCapacity: 10,
			ListingTTL:      time.Hour,
			Clock:           clock,
		}),
	}
}

func (f *fixture) bank(limit int, dirs ...string) *Bank {
	return NewBank(f.caches, BankOptions{
		Prefix:     DefaultMeasurementPrefix,
		MetaPrefix: DefaultMetaPrefix,
		FileLimit:  limit,
		Dirs:       dirs,
		Clock:      f.clock,
	})
}

func (f *fixture) parses() int64 {
	return f.caches.Payloads.Stats().Parses
}
