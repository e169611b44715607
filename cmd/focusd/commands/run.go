package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"focusd/internal/api"
	"focusd/internal/config"
	"focusd/internal/event"
	"focusd/internal/hook"
	"focusd/internal/input"
	"focusd/internal/logger"
	"focusd/internal/proc"
	"focusd/internal/tracker"
	"focusd/internal/window"
	"focusd/internal/x11"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start monitoring and emit the event stream on stdout",
	Long: `Start watching the focused window and raw input activity.

The event stream goes to stdout, one JSON record per line; diagnostics go
to stderr. Stop with Ctrl+C.`,
	Example: `  # Run with defaults (20s flush interval)
  focusd run

  # Flush input counts every 5 seconds
  focusd run --interval 5

  # Mirror the stream on a local websocket
  focusd run --port 8137

  # Run with debug logging
  focusd run --log-level debug`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to initialize config manager: %w", err)
	}

	// Flag overrides
	if viper.IsSet("log_level") && viper.GetString("log_level") != "" {
		configMgr.SetLogLevel(viper.GetString("log_level"))
	}
	if viper.IsSet("flush_interval") && viper.GetInt("flush_interval") > 0 {
		configMgr.SetFlushInterval(viper.GetInt("flush_interval"))
	}
	if viper.IsSet("server_port") && viper.GetInt("server_port") > 0 {
		configMgr.SetServerPort(viper.GetInt("server_port"))
	}

	cfg := configMgr.Get()
	logger.Init(cfg.LogLevel, false)
	log := logger.WithComponent("main")
	log.Info().Str("config", configMgr.GetConfigPath()).Msg("Starting focusd")

	client, err := x11.NewClient()
	if err != nil {
		return fmt.Errorf("failed to connect to X server: %w", err)
	}
	defer client.Close()

	if err := client.WatchRoot(); err != nil {
		return fmt.Errorf("failed to watch root window: %w", err)
	}

	stream := event.NewStream(os.Stdout)

	cache, err := proc.NewCache(cfg.CacheCapacity, proc.NewTableInspector(), stream)
	if err != nil {
		return err
	}
	resolver := window.NewResolver(client, cache)
	aggregator := input.NewAggregator(cfg.FlushIntervalDuration(), stream)
	trk := tracker.New(client, resolver, aggregator, stream)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go aggregator.Run(ctx)

	// Input listeners are best-effort: without device access the window
	// stream still works, just with no input records.
	listeners := []hook.Listener{hook.NewKeyboard(), hook.NewMouse()}
	for _, l := range listeners {
		if err := l.Start(aggregator.Record); err != nil {
			log.Warn().Err(err).Msg("Input listener unavailable")
			continue
		}
		defer l.Stop()
	}

	if cfg.Server.Enabled {
		server := api.NewServer(stream, trk)
		go func() {
			if err := server.Start(cfg.Server.Port); err != nil {
				log.Error().Err(err).Msg("Stream server stopped")
			}
		}()
	}

	// Shutdown: cancel stops the ticker, closing the X connection
	// unblocks the tracker's event wait. Counts accumulated since the
	// last flush are dropped.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Shutting down")
		cancel()
		client.Close()
	}()

	return trk.Run(ctx)
}
