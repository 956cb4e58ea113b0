package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"easypark/internal/config"
	"easypark/internal/logging"
	"easypark/internal/parking"
	"easypark/internal/server"
)

func main() {
	cfg := config.Load()

	mode := flag.String("mode", cfg.Mode, "Mode to run: cli, server, or both")
	port := flag.String("port", cfg.Port, "Port for HTTP server")
	flag.Parse()

	cfg.Mode = *mode
	cfg.Port = *port

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	policy, err := parking.ParsePolicy(cfg.DefaultPolicy)
	if err != nil {
		return err
	}

	switch cfg.Mode {
	case "cli", "server", "both":
	default:
		return fmt.Errorf("invalid mode: %s. Must be cli, server, or both", cfg.Mode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := parking.NewTelemetryProvider(ctx, parking.TelemetryConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTelEndpoint,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}

	// stdout belongs to the shell whenever it runs.
	logOutput := os.Stderr
	if cfg.Mode == "server" {
		logOutput = os.Stdout
	}
	logging.Init(logOutput, cfg.ServiceName, cfg.Environment)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch cfg.Mode {
	case "cli":
		runCLI(ctx, cancel, policy, telemetryProvider, sigChan)
	case "server":
		runServer(ctx, cancel, cfg, policy, telemetryProvider, sigChan)
	case "both":
		runBoth(ctx, cancel, cfg, policy, telemetryProvider, sigChan)
	}

	shutdownTelemetry(telemetryProvider)
	return nil
}

func runCLI(ctx context.Context, cancel context.CancelFunc, policy parking.Policy, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Info(ctx, "shutting down")
		cancel()
	}()

	logging.Info(ctx, "starting cli mode", "policy", policy.String())
	shell := parking.NewShell(os.Stdin, os.Stdout, telemetryProvider, policy)
	shell.Run(ctx)
}

func runServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, policy parking.Policy, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	srv := server.NewServer(cfg.Port, telemetryProvider, policy, cfg.ServiceName)

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")
		shutdownServer(srv, cfg.ShutdownTimeout)
		cancel()
	}()

	logging.Info(ctx, "starting server mode", "address", srv.GetAddress(), "policy", policy.String())
	if err := srv.Start(); err != nil {
		logging.Error(ctx, "server error", "error", err)
	}
}

func runBoth(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, policy parking.Policy, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	srv := server.NewServer(cfg.Port, telemetryProvider, policy, cfg.ServiceName)

	logging.Info(ctx, "starting cli and server mode", "address", srv.GetAddress(), "policy", policy.String())
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan struct{})
	go func() {
		shell := parking.NewShell(os.Stdin, os.Stdout, telemetryProvider, policy)
		shell.Run(ctx)
		close(cliDone)
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			logging.Error(ctx, "server error", "error", err)
		}
	case <-cliDone:
		logging.Info(ctx, "cli exited")
	case <-sigChan:
		logging.Info(ctx, "received shutdown signal")
	}

	cancel()
	shutdownServer(srv, cfg.ShutdownTimeout)
}

func shutdownServer(srv *server.Server, timeout time.Duration) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(shutdownCtx, "server shutdown error", "error", err)
	}
}

func shutdownTelemetry(telemetryProvider *parking.TelemetryProvider) {
	logging.Info(context.Background(), "shutting down telemetry")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "error shutting down telemetry: %v\n", err)
	}
}
