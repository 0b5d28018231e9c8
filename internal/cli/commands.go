package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/netrics-lab/netrics-dashboard/internal/core/datafile"
	"github.com/netrics-lab/netrics-dashboard/internal/server"
	"github.com/netrics-lab/netrics-dashboard/internal/warming"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(warmCmd)
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().Bool("warm", false, "Populate the caches before reading")
}

// serveCmd runs the HTTP server and the cache warming scheduler
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	Args:  cobra.NoArgs,
	RunE:  handleServe,
}

// warmCmd populates the caches once, reporting what was read
var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Read every data file once and report the result",
	Args:  cobra.NoArgs,
	RunE:  handleWarm,
}

// statsCmd prints the current statistics
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the current statistics as JSON",
	Args:  cobra.NoArgs,
	RunE:  handleStats,
}

func handleServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogger(os.Stdout, cfg.Log.Level)
	slog.Info("[CLI] Loaded config", "config", cfg)

	a, err := newApp(cfg, afero.NewOsFs(), clockwork.NewRealClock())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := server.Options{
		Addr:            fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Mode:            cfg.Server.Mode,
		SoftwareVersion: cfg.Server.SoftwareVersion,
		Caches:          a.caches,
	}

	if cfg.Warming.Enabled {
		scheduler := warming.NewScheduler(
			cfg.Warming.EffectiveInterval(),
			a.caches,
			cfg.Data.Dirs(),
			cfg.Data.FileLimit,
			clockwork.NewRealClock(),
		)
		opts.Warming = scheduler
		go func() {
			if err := scheduler.Start(ctx); err != nil {
				slog.Error("[CLI] Warming scheduler stopped with error", "error", err)
			}
		}()
	} else {
		slog.Info("[CLI] Cache warming disabled by config")
	}

	srv := server.New(opts)
	a.service.RegisterRoutes(srv.Engine)

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	slog.Info("[CLI] Shutdown complete")
	return nil
}

func handleWarm(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogger(os.Stderr, cfg.Log.Level)

	a, err := newApp(cfg, afero.NewOsFs(), clockwork.NewRealClock())
	if err != nil {
		return err
	}

	report, err := a.caches.Populate(cmd.Context(), cfg.Data.Dirs(), cfg.Data.FileLimit)
	if err != nil && !datafile.IsNoData(err) {
		return err
	}
	if err != nil {
		slog.Warn("[CLI] Data directory missing", "error", err)
	}
	return writeJSON(cmd, report)
}

func handleStats(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogger(os.Stderr, cfg.Log.Level)

	a, err := newApp(cfg, afero.NewOsFs(), clockwork.NewRealClock())
	if err != nil {
		return err
	}

	if warm, _ := cmd.Flags().GetBool("warm"); warm {
		if _, err := a.caches.Populate(cmd.Context(), cfg.Data.Dirs(), cfg.Data.FileLimit); err != nil && !datafile.IsNoData(err) {
			return err
		}
	}

	points, err := a.service.CurrentStats(cmd.Context())
	if err != nil {
		return err
	}
	return writeJSON(cmd, points)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
