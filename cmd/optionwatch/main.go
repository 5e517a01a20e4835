package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/optionwatch/optionwatch/internal/api"
	"github.com/optionwatch/optionwatch/internal/checker"
	"github.com/optionwatch/optionwatch/internal/config"
	"github.com/optionwatch/optionwatch/internal/logger"
	"github.com/optionwatch/optionwatch/internal/marketdata"
	"github.com/optionwatch/optionwatch/internal/notify"
	"github.com/optionwatch/optionwatch/internal/positions"
	"github.com/optionwatch/optionwatch/internal/state"
	"github.com/optionwatch/optionwatch/internal/worker"
)

var (
	configPath = flag.String("config", "", "Path to configuration file")
	testMode   = flag.Bool("test", false, "Dry run: local positions file, in-memory state, print alerts")
	serveMode  = flag.Bool("serve", false, "Run continuously with a status HTTP server")
)

func main() {
	flag.Parse()

	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(*testMode); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Infof("shutdown signal received")
		cancel()
	}()

	chk, cleanup, err := buildChecker(ctx, cfg, *testMode)
	if err != nil {
		logger.Fatalf("failed to initialize: %v", err)
	}
	defer cleanup()

	if *serveMode {
		runServe(ctx, cfg, chk)
		return
	}

	result, err := chk.RunPass(ctx)
	if err != nil {
		logger.Errorf("pass failed: %v", err)
		os.Exit(1)
	}
	if *testMode {
		printResult(result)
	}
	if result.Outcome() == checker.OutcomeFailure {
		os.Exit(1)
	}
}

// buildChecker wires the pass pipeline for the selected mode. The returned
// cleanup closes every owned resource.
func buildChecker(ctx context.Context, cfg *config.Config, dryRun bool) (*checker.Checker, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var source positions.Source
	var store state.Store
	var channels []notify.Channel

	if dryRun {
		source = &positions.FileSource{Path: cfg.Positions.LocalFile}
		store = state.NewMemory()
		channels = append(channels, notify.NewConsole())
	} else {
		s3Source, err := positions.NewS3Source(ctx, cfg.Positions)
		if err != nil {
			return nil, cleanup, err
		}
		source = s3Source

		redisStore, err := state.NewRedis(ctx, cfg.State)
		if err != nil {
			return nil, cleanup, err
		}
		cleanups = append(cleanups, func() {
			if err := redisStore.Close(); err != nil {
				logger.Errorf("failed to close state store: %v", err)
			}
		})
		store = redisStore

		channels, cleanups = buildChannels(cfg, cleanups)
	}

	pool := worker.NewPool(cfg.Workers.PoolSize)
	cleanups = append(cleanups, pool.Close)

	gateway := marketdata.NewGateway(cfg.MarketData, pool)
	engine := checker.NewEngine(cfg.Alerts, store)
	dispatcher := notify.NewDispatcher(channels...)
	if dispatcher.Channels() == 0 && !dryRun {
		logger.Warnf("no notification channels enabled")
	}

	return checker.New(source, gateway, engine, store, dispatcher), cleanup, nil
}

func buildChannels(cfg *config.Config, cleanups []func()) ([]notify.Channel, []func()) {
	var channels []notify.Channel

	if cfg.Notify.Telegram.Enabled {
		tg, err := notify.NewTelegram(cfg.Notify.Telegram)
		if err != nil {
			logger.Fatalf("failed to initialize Telegram channel: %v", err)
		}
		channels = append(channels, tg)
	}
	if cfg.Notify.Slack.Enabled {
		channels = append(channels, notify.NewSlack(cfg.Notify.Slack.URL))
	}
	if cfg.Notify.Discord.Enabled {
		channels = append(channels, notify.NewDiscord(cfg.Notify.Discord.URL))
	}
	if cfg.Notify.Voice.Enabled {
		channels = append(channels, notify.NewVoice(cfg.Notify.Voice.URL))
	}
	if cfg.Notify.Kafka.Enabled {
		kafkaChannel := notify.NewKafka(cfg.Notify.Kafka)
		cleanups = append(cleanups, func() {
			if err := kafkaChannel.Close(); err != nil {
				logger.Errorf("failed to close kafka channel: %v", err)
			}
		})
		channels = append(channels, kafkaChannel)
	}

	return channels, cleanups
}

// runServe runs passes on the configured interval alongside a status server.
func runServe(ctx context.Context, cfg *config.Config, chk *checker.Checker) {
	tracker := api.NewTracker()
	router := api.SetupRoutes(api.NewHandler(tracker))

	server := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: router,
	}
	go func() {
		logger.Infof("status server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("status server failed: %v", err)
		}
	}()

	runOnce := func() {
		result, err := chk.RunPass(ctx)
		if err != nil {
			logger.Errorf("pass failed: %v", err)
			return
		}
		tracker.Record(result)
	}

	logger.Infof("starting poll loop (interval: %v)", cfg.Alerts.PollInterval)
	runOnce()

	ticker := time.NewTicker(cfg.Alerts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Errorf("status server shutdown failed: %v", err)
			}
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func printResult(result *checker.PassResult) {
	fmt.Printf("\nPass outcome: %s\n", result.Outcome())
	fmt.Printf("Positions checked:        %d\n", result.PositionsChecked)
	fmt.Printf("Snapshots fetched:        %d\n", result.SnapshotsFetched)
	fmt.Printf("Alerts sent:              %d\n", result.AlertsSent)
	fmt.Printf("Skipped already alerted:  %d\n", result.SkippedAlreadyAlerted)

	for _, a := range result.Alerts {
		fmt.Printf("  ALERT %s %s/%s #%d %+.2f%% (%s)\n",
			a.Ticker, a.AlertType, a.TriggerType, a.AlertCount, a.PercentChange, a.Reason)
	}
	for _, s := range result.Skipped {
		fmt.Printf("  skip %s: %s\n", s.Ticker, s.Reason)
	}
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
}
