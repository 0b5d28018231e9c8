package dashboard

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/netrics-lab/netrics-dashboard/internal/core/datafile"
	"github.com/stretchr/testify/require"
)

func TestLoadDefinitions_Default(t *testing.T) {
	defs, err := LoadDefinitions("")
	require.NoError(t, err)

	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	require.Equal(t, []string{"latency", "ndev_week", "ookla_dl", "ookla_ul", "ookla_dl_sd"}, names)

	sd := defs[4].Spec
	require.Equal(t, datafile.OpStdDev, sd.Operator)
	require.Equal(t, []string{"ookla.speedtest_ookla_download"}, sd.Keys)
	require.Equal(t, datafile.OneWeek, sd.Age)
}

func TestLoadDefinitions_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
stats:
  - name: recent_rtt
    operator: multi
    keys: [ping_latency.google_rtt_avg_ms]
    age: 36h
    decorate: [Time]
    reverse: true
`), 0o644))

	defs, err := LoadDefinitions(path)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, Definition{
		Name: "recent_rtt",
		Spec: datafile.OpSpec{
			Operator: datafile.OpMulti,
			Keys:     []string{"ping_latency.google_rtt_avg_ms"},
			Age:      36 * time.Hour,
			Decorate: []string{"Time"},
			Reverse:  true,
		},
	}, defs[0])
}

func TestLoadDefinitions_MissingFile(t *testing.T) {
	_, err := LoadDefinitions(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseDefinitions_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			yaml:    "stats: [",
			wantErr: "parsing stat definitions",
		},
		{
			name:    "empty name",
			yaml:    "stats:\n  - operator: last\n    keys: [a]\n",
			wantErr: "stat #1: name must not be empty",
		},
		{
			name:    "duplicate name",
			yaml:    "stats:\n  - {name: a, operator: last, keys: [a]}\n  - {name: a, operator: last, keys: [b]}\n",
			wantErr: `stat "a": duplicate name`,
		},
		{
			name:    "unknown operator",
			yaml:    "stats:\n  - {name: a, operator: median, keys: [a]}\n",
			wantErr: `unsupported operator "median"`,
		},
		{
			name:    "no keys",
			yaml:    "stats:\n  - {name: a, operator: last}\n",
			wantErr: "at least one key required",
		},
		{
			name:    "bad age",
			yaml:    "stats:\n  - {name: a, operator: multi, keys: [a], age: soon}\n",
			wantErr: `invalid age "soon"`,
		},
		{
			name:    "multi without age",
			yaml:    "stats:\n  - {name: a, operator: multi, keys: [a]}\n",
			wantErr: "age must be positive",
		},
		{
			name:    "stddev with decoration",
			yaml:    "stats:\n  - {name: a, operator: stddev, keys: [a], age: 1w, decorate: [Time]}\n",
			wantErr: "decorate is not supported",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDefinitions([]byte(tc.yaml))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
