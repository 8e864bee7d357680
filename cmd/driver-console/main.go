package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/ride-console/internal/api"
	"github.com/example/ride-console/internal/auth"
	"github.com/example/ride-console/internal/config"
	"github.com/example/ride-console/internal/dashboard"
	"github.com/example/ride-console/internal/logging"
	"github.com/example/ride-console/internal/observability"
	"github.com/example/ride-console/internal/poll"
)

func main() {
	cfg, err := config.LoadConsoleConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}
	defer logFile.Close()
	logger := logging.NewLogger(logFile, cfg.LogLevel)

	tokens, err := auth.FromEnvOrFile(cfg.APIToken, cfg.APITokenFile)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	client := api.NewClient(cfg.APIBaseURL, tokens, logger)
	client.SetTimeout(cfg.RequestTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go observability.ServeMetrics(cfg.MetricsAddr, logger.With("component", "metrics"))
	}

	ridePoller := &poll.Poller{
		Interval: cfg.PollInterval,
		Resource: "rides",
	}

	model := dashboard.New(ctx, client, ridePoller.Kick)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	ridePoller.Fetch = func(ctx context.Context) error {
		rides, err := client.ListRides(ctx)
		if err != nil {
			program.Send(dashboard.PollErrMsg{Err: err})
			return err
		}
		program.Send(dashboard.RidesMsg{Rides: rides})
		return nil
	}
	go ridePoller.Run(ctx)

	if cfg.ListenWS {
		listener := &poll.Listener{
			URL:    poll.WSURL(cfg.APIBaseURL),
			Logger: logger.With("component", "listener"),
			OnUpdate: func(frame poll.UpdateFrame) {
				if frame.Resource == "ride" {
					ridePoller.Kick()
				}
			},
		}
		go listener.Run(ctx)
	}

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		logger.Error("program exited", "error", err)
		os.Exit(1)
	}
}
