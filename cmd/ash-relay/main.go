package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ashmsg/ash/relay/config"
	"github.com/ashmsg/ash/relay/notify"
	"github.com/ashmsg/ash/relay/server"
	"github.com/ashmsg/ash/relay/store"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	bindAddr := flag.String("bind-addr", "", "override BIND_ADDR")
	port := flag.Int("port", 0, "override PORT")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	fmt.Printf("=== ASH Relay %s ===\n", Version)
	server.Version = Version

	cfg := config.FromEnv()
	if *bindAddr != "" {
		cfg.BindAddr = *bindAddr
	}
	if *port != 0 {
		cfg.Port = uint16(*port)
	}
	st := store.New()
	st.BurnTTL = cfg.BurnTTL
	st.DeviceTokenTTL = cfg.DeviceTokenTTL
	st.MaxCiphertextSize = cfg.MaxCiphertextSize
	st.MaxBlobsPerConversation = cfg.MaxBlobsPerConversation

	var notifier notify.Notifier = notify.NewLoggingNotifier(logger)
	if cfg.APNSConfigured() {
		logger.Warn("APNS credentials present but push delivery is not wired in this build; falling back to logging notifier")
	}

	addr := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.Port)
	srv := server.New(addr, st, notifier, logger)
	srv.CleanupInterval = cfg.CleanupInterval

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting relay", "addr", addr, "blob_ttl", cfg.BlobTTL, "cleanup_interval", cfg.CleanupInterval)
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("relay exited", "error", err)
		os.Exit(1)
	}
}
