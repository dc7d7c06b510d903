package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stakehire/config"
	"stakehire/native/escrow"
	"stakehire/native/marketplace"
	"stakehire/native/reputation"
	"stakehire/observability"
	"stakehire/observability/logging"
	"stakehire/state"
)

const adminEnv = "STAKEHIRE_ADMIN"

func main() {
	configFile := flag.String("config", "./economics.toml", "Path to the economics parameter file")
	listenAddr := flag.String("listen", ":9464", "Listen address for the metrics endpoint")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("STAKEHIRE_ENV"))
	logger := logging.Setup("stakehired", env)

	cfg, err := config.LoadEconomics(*configFile)
	if err != nil {
		logger.Error("Failed to load economics", slog.Any("error", err))
		os.Exit(1)
	}

	admin, err := resolveAdmin(os.Getenv(adminEnv))
	if err != nil {
		logger.Error("Failed to resolve admin address", slog.Any("error", err))
		os.Exit(1)
	}
	if admin == ([20]byte{}) {
		logger.Warn("No admin address configured; admin operations are disabled", slog.String("env", adminEnv))
	}

	store := state.NewInMemory()
	emitter := observability.NewFanoutEmitter(
		observability.NewLogEmitter(logger),
		observability.NewMetricsEmitter(),
	)

	market := marketplace.NewEngine(cfg)
	market.SetState(store)
	market.SetOwner(admin)
	market.SetEmitter(emitter)

	reputationEngine := reputation.NewEngine()
	reputationEngine.SetState(store)
	reputationEngine.SetAdmin(admin)
	reputationEngine.SetAuthority(marketplace.ModuleAddress())
	reputationEngine.SetPauses(market.Pauses())
	reputationEngine.SetThresholds(cfg.BadgeThresholds)
	reputationEngine.SetEmitter(emitter)
	market.SetReputation(reputationEngine)

	escrowEngine := escrow.NewEngine()
	escrowEngine.SetState(store)
	escrowEngine.SetAdmin(admin)
	escrowEngine.SetMarketplace(marketplace.ModuleAddress())
	escrowEngine.SetPauses(market.Pauses())
	escrowEngine.SetEmergencyDelay(cfg.EmergencyDelay)
	escrowEngine.SetEmitter(emitter)

	logger.Info("Engines initialized",
		slog.String("baseStake", cfg.BaseStake.String()),
		slog.String("minApplicationFee", cfg.MinApplicationFee.String()),
		slog.Int64("jobDuration", cfg.JobDuration),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              *listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Metrics listener starting", slog.String("addr", *listenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics listener failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", slog.Any("error", err))
	}
	logger.Info("Shutdown complete")
}

func resolveAdmin(raw string) ([20]byte, error) {
	var admin [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if trimmed == "" {
		return admin, nil
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return admin, fmt.Errorf("decode admin address: %w", err)
	}
	if len(decoded) != len(admin) {
		return admin, fmt.Errorf("admin address must be %d bytes, got %d", len(admin), len(decoded))
	}
	copy(admin[:], decoded)
	return admin, nil
}
