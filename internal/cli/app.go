package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"
	corecfg "github.com/netrics-lab/netrics-dashboard/internal/core/config"
	"github.com/netrics-lab/netrics-dashboard/internal/core/datafile"
	"github.com/netrics-lab/netrics-dashboard/internal/dashboard"
	"github.com/spf13/afero"
)

// app holds the components shared by the commands. The caches are created
// once and shared by every bank and the warming scheduler.
type app struct {
	cfg     *corecfg.Config
	caches  *datafile.Caches
	bank    *datafile.Bank
	service *dashboard.Service
}

// loadConfig loads the configuration file. A missing default file falls
// back to defaults and the environment.
func loadConfig() (*corecfg.Config, error) {
	path := configPath
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !rootCmd.PersistentFlags().Changed("config") {
		path = ""
	}
	cfg, err := corecfg.Load(path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func setupLogger(w io.Writer, level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

func newApp(cfg *corecfg.Config, fsys afero.Fs, clock clockwork.Clock) (*app, error) {
	caches := datafile.NewCaches(fsys, datafile.CacheOptions{
		PayloadCapacity: cfg.Cache.PayloadCapacity,
		ListingCapacity: cfg.Cache.ListingCapacity,
		ListingTTL:      cfg.Cache.TTL(),
		Clock:           clock,
	})

	bank := datafile.NewBank(caches, datafile.BankOptions{
		Prefix:     cfg.Data.MeasurementPrefix,
		MetaPrefix: cfg.Data.MetaPrefix,
		FileLimit:  cfg.Data.FileLimit,
		Dirs:       cfg.Data.Dirs(),
		Clock:      clock,
	})
	stats := bank
	if places := cfg.Data.RoundPlaces(); places != nil {
		stats = bank.WithRounding(*places)
	}

	defs, err := dashboard.LoadDefinitions(cfg.Stats.Path)
	if err != nil {
		return nil, err
	}
	svc, err := dashboard.NewService(stats, bank, defs)
	if err != nil {
		return nil, fmt.Errorf("building dashboard service: %w", err)
	}

	return &app{cfg: cfg, caches: caches, bank: bank, service: svc}, nil
}
