package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/n0rdy/queuewatch/api"
	"github.com/n0rdy/queuewatch/bridge"
	"github.com/n0rdy/queuewatch/broker"
	"github.com/n0rdy/queuewatch/configs"
	"github.com/n0rdy/queuewatch/db"
	"github.com/n0rdy/queuewatch/jobs/maintenance"
	"github.com/n0rdy/queuewatch/metrics"
	"github.com/n0rdy/queuewatch/services"
	"github.com/n0rdy/queuewatch/ui"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	shutdownTimeout           = 10 * time.Second
	dbOptimizationMaxDuration = 30 * time.Second
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to a YAML config file")
	flag.Parse()

	appConfigs, err := configs.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogging(appConfigs)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()

	store, err := db.NewStore(ctx, appConfigs.Store, clock)
	if err != nil {
		log.Fatal().Err(err).Str("store", appConfigs.Store.Type).Msg("failed to open address store")
	}
	defer store.Close()

	if optimizer, ok := store.(maintenance.Optimizer); ok {
		optimizationJob := maintenance.NewDbOptimizationJob(
			optimizer,
			clock,
			time.Duration(appConfigs.Store.OptimizeIntervalMs)*time.Millisecond,
			dbOptimizationMaxDuration,
		)
		defer optimizationJob.Close()
	}

	metricsService := metrics.NewMetricsService(appConfigs.MetricsEnabled)
	brokerClient := broker.NewClient(appConfigs.FetchTimeout(), clock)

	connectionService := services.NewConnectionService(brokerClient, store, metricsService, clock, appConfigs)
	defer connectionService.Close()

	if err := connectionService.LoadPersistedAddress(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to load the last server address, using the default")
	}

	monitoringService := services.NewMonitoringService(store)
	sessionsService := services.NewSessionsService(clock)
	defer sessionsService.Close()

	var queuesLister api.QueuesLister
	if appConfigs.Bridge.Enabled {
		b, err := bridge.NewBridge(appConfigs.Bridge)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create the management bridge")
		}
		queuesLister = b
		log.Info().Str("url", appConfigs.Bridge.ManagementURL).Msg("management bridge enabled")
	}

	var metricsHandler http.Handler
	if pms, ok := metricsService.(*metrics.PrometheusMetricsService); ok {
		metricsHandler = pms.Handler()
	}

	apiRouter := api.NewRouter(connectionService, monitoringService, queuesLister, metricsHandler, appConfigs)
	uiRouter := ui.NewRouter(connectionService, sessionsService, appConfigs)

	router := apiRouter.NewRouter()
	router.Mount("/ui", ui.WithCSRF(uiRouter.NewRouter()))
	router.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/ui/", http.StatusFound)
	})

	server := &http.Server{
		Addr:              appConfigs.ServerConfig.Addr,
		Handler:           http.TimeoutHandler(router, appConfigs.ServerConfig.Timeouts.Handle, "timeout"),
		WriteTimeout:      appConfigs.ServerConfig.Timeouts.Write,
		ReadTimeout:       appConfigs.ServerConfig.Timeouts.Read,
		ReadHeaderTimeout: appConfigs.ServerConfig.Timeouts.ReadHeader,
		IdleTimeout:       appConfigs.ServerConfig.Timeouts.Idle,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server started")
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("server shutdown requested")
	case err := <-serverErrCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
		}
	}

	shutdownCtx, cancelFunc := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelFunc()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown failed, closing the server")
		if err := server.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close server")
		}
	}
	log.Info().Msg("server shutdown")
}

func setupLogging(appConfigs *configs.AppConfigs) {
	level, err := zerolog.ParseLevel(strings.ToLower(appConfigs.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if appConfigs.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
