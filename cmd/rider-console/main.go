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
	"github.com/example/ride-console/internal/logging"
	"github.com/example/ride-console/internal/observability"
	"github.com/example/ride-console/internal/offers"
	"github.com/example/ride-console/internal/poll"
)

func main() {
	cfg, err := config.LoadConsoleConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.RideID == "" {
		log.Fatal("RIDE_ID must be set: the offers screen is bound to one pending ride")
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

	offerPoller := &poll.Poller{
		Interval: cfg.PollInterval,
		Resource: "offers",
	}

	// the rider's ride list lives in another process; invalidating it here
	// is a hook with nothing behind it
	model := offers.New(ctx, client, cfg.RideID, offerPoller.Kick, nil)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	offerPoller.Fetch = func(ctx context.Context) error {
		list, err := client.ListOffers(ctx, cfg.RideID)
		if err != nil {
			program.Send(offers.PollErrMsg{Err: err})
			return err
		}
		program.Send(offers.OffersMsg{Offers: list})
		return nil
	}
	go offerPoller.Run(ctx)

	if cfg.ListenWS {
		listener := &poll.Listener{
			URL:    poll.WSURL(cfg.APIBaseURL),
			Logger: logger.With("component", "listener"),
			OnUpdate: func(frame poll.UpdateFrame) {
				if frame.RideID == "" || frame.RideID == cfg.RideID {
					offerPoller.Kick()
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
