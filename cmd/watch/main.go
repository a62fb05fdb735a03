package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/procure-hub/procure-hub/internal/client"
	"github.com/procure-hub/procure-hub/internal/config"
	negsync "github.com/procure-hub/procure-hub/internal/sync"
)

// watch tails one negotiation's message log against a running portal,
// printing each changed snapshot. Poll cadence and request timeout come
// from the environment (POLL_INTERVAL, REQUEST_TIMEOUT).
func main() {
	var (
		baseURL       = flag.String("url", "http://localhost:8080", "portal base URL")
		actorFlag     = flag.String("actor", "", "acting party id (uuid)")
		negotiationID = flag.String("negotiation", "", "negotiation id to watch (uuid)")
	)
	flag.Parse()

	actorID, err := uuid.Parse(*actorFlag)
	if err != nil {
		log.Fatalf("invalid -actor: %v", err)
	}
	targetID, err := uuid.Parse(*negotiationID)
	if err != nil {
		log.Fatalf("invalid -negotiation: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	c := client.New(*baseURL, actorID, cfg.RequestTimeout)
	poller := negsync.NewPoller(c, cfg.PollInterval, cfg.RequestTimeout, logger)

	handle := poller.Start(targetID, func(s negsync.Snapshot) {
		if !s.Online {
			fmt.Printf("[%s] offline, showing last known log (%d messages)\n", s.PolledAt.Format("15:04:05"), len(s.Messages))
			return
		}
		fmt.Printf("[%s] %d messages\n", s.PolledAt.Format("15:04:05"), len(s.Messages))
		for _, m := range s.Messages {
			line := fmt.Sprintf("  %s %s %s: %s", m.MessageID, m.Type, m.SenderID, m.Body)
			if m.OfferStatus != nil {
				line += fmt.Sprintf(" [%s]", *m.OfferStatus)
			}
			fmt.Println(line)
		}
	})
	defer handle.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
