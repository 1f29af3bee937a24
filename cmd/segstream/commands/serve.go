package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ostraka/segstream/config"
	"github.com/ostraka/segstream/errors"
	"github.com/ostraka/segstream/logger"
	"github.com/ostraka/segstream/model"
	"github.com/ostraka/segstream/server"
)

// ErrModelInit marks a fatal failure to load the default model at startup.
// main maps it to its own exit code so supervisors can tell "model broken"
// from "port busy".
var ErrModelInit = errors.New("default model initialization failed")

// ServeCmd starts the segmentation gateway
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the WebSocket segmentation gateway",
	Long: `Launch the gateway: accept WebSocket sessions on /ws, run webcam frames
through the configured segmentation backend, and stream rendered overlays
back to each client.`,
	RunE: runServe,
}

var (
	servePort       int
	servePreload    bool
	serveConfigPath string
)

func init() {
	ServeCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config, default 8000)")
	ServeCmd.Flags().BoolVar(&servePreload, "preload", false, "Load every model profile at startup")
	ServeCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a config file (overrides discovery)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	if servePort != 0 {
		cfg.Server.Port = &servePort
	}
	if servePreload {
		cfg.Model.Preload = true
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	// Re-initialize logging with the configured level; the root command only
	// had the flags to go on.
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	logger.SetTheme(cfg.GetLogTheme())
	if err := logger.InitializeAtLevel(jsonLogs || cfg.Log.JSON, logger.ParseLevel(cfg.Log.Level)); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}

	printStartupBanner(cfg)

	if total, available := model.HostMemoryMB(); total > 0 {
		logger.Infow("Host memory",
			"total_mb", total,
			"available_mb", available,
		)
	}

	pool, err := buildPool(cfg)
	if err != nil {
		return err
	}
	defer pool.Clear()

	srv := server.NewServer(cfg, pool, logger.Logger.Named("server"))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return errors.Wrap(err, "server failed")
	case <-sigChan:
		pterm.Info.Println("\nShutting down gracefully (press Ctrl+C again to force)...")

		shutdownDone := make(chan error, 1)
		go func() {
			shutdownDone <- srv.Stop()
		}()

		select {
		case err := <-shutdownDone:
			if err != nil {
				return errors.Wrap(err, "shutdown error")
			}
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigChan:
			pterm.Warning.Println("\nForce shutdown - exiting immediately")
			os.Exit(1)
			return nil // unreachable
		}
	}
}

func loadConfig() (*config.Config, error) {
	if serveConfigPath != "" {
		return config.LoadFromFile(serveConfigPath)
	}
	return config.Load()
}

// buildPool constructs the model pool and eagerly loads the default mode:
// a gateway that cannot serve its default profile should fail at startup,
// not on the first connection.
func buildPool(cfg *config.Config) (*model.Pool, error) {
	defaultMode, err := model.ParseMode(cfg.Model.DefaultMode)
	if err != nil {
		return nil, errors.Wrapf(ErrModelInit, "bad default mode %q", cfg.Model.DefaultMode)
	}

	loader, err := buildLoader(cfg)
	if err != nil {
		return nil, err
	}
	pool := model.NewPool(loader, logger.Logger.Named("pool"))

	ctx := context.Background()
	if _, err := pool.Get(ctx, defaultMode); err != nil {
		pool.Clear()
		return nil, errors.Wrapf(errors.Join(ErrModelInit, err), "loading default mode %s", defaultMode)
	}
	logger.Infow("Default model loaded", "mode", defaultMode)

	if cfg.Model.Preload {
		for _, mode := range model.Modes() {
			if mode == defaultMode {
				continue
			}
			if err := model.CheckMemory(mode.Profile()); err != nil {
				logger.Warnw("Skipping preload, insufficient memory",
					"mode", mode, "error", err.Error())
				continue
			}
			if _, err := pool.Get(ctx, mode); err != nil {
				// Non-default profiles are best-effort at startup; sessions
				// that request them will retry the load.
				logger.Warnw("Preload failed", "mode", mode, "error", err.Error())
				continue
			}
			logger.Infow("Preloaded model", "mode", mode)
		}
	}

	return pool, nil
}

// buildLoader picks the configured inference backend. Only the dev backend
// ships in-tree; it synthesizes deterministic outputs shaped exactly like
// the real models'.
func buildLoader(cfg *config.Config) (model.Loader, error) {
	switch cfg.Model.Backend {
	case "", "dev":
		return &model.DevLoader{}, nil
	default:
		return nil, errors.Newf("unknown inference backend %q", cfg.Model.Backend)
	}
}
