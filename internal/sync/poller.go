package sync

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/procure-hub/procure-hub/internal/domain/negotiation"
)

const (
	DefaultInterval       = 3 * time.Second
	DefaultRequestTimeout = 10 * time.Second
)

// Source supplies the authoritative message log. The local negotiation
// service and the remote HTTP client both satisfy it.
type Source interface {
	Messages(ctx context.Context, negotiationID uuid.UUID) ([]*negotiation.Message, error)
}

// Snapshot is what observers receive after a poll that changed anything.
// Messages is the last known-good log; Online is false while polls fail.
type Snapshot struct {
	NegotiationID uuid.UUID
	Messages      []*negotiation.Message
	Online        bool
	PolledAt      time.Time
}

// Observer receives snapshots. Called from the poller goroutine.
type Observer func(Snapshot)

// Poller keeps client views of negotiation logs eventually consistent with
// the authoritative store over interval polling.
type Poller struct {
	source         Source
	interval       time.Duration
	requestTimeout time.Duration
	logger         zerolog.Logger
}

// NewPoller creates a poller. Non-positive durations fall back to defaults.
func NewPoller(source Source, interval, requestTimeout time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	return &Poller{
		source:         source,
		interval:       interval,
		requestTimeout: requestTimeout,
		logger:         logger.With().Str("component", "poller").Logger(),
	}
}

// Start begins polling one negotiation and returns the owning handle. The
// caller must call Handle.Stop on every teardown path.
func (p *Poller) Start(negotiationID uuid.UUID, observer Observer) *Handle {
	h := &Handle{
		poller:        p,
		negotiationID: negotiationID,
		observer:      observer,
		visible:       true,
		wake:          make(chan struct{}, 1),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	go h.run()
	return h
}

// Handle is the scoped acquisition of one polling loop.
type Handle struct {
	poller        *Poller
	negotiationID uuid.UUID
	observer      Observer

	mu      sync.Mutex
	visible bool
	online  bool
	last    []*negotiation.Message
	started bool

	stopOnce sync.Once
	wake     chan struct{}
	stop     chan struct{}
	done     chan struct{}
}

// Stop cancels the polling loop and waits for it to exit. Idempotent.
func (h *Handle) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	<-h.done
}

// SetVisible gates polling on view visibility. Ticks are skipped while
// hidden; regaining visibility triggers one immediate poll.
func (h *Handle) SetVisible(visible bool) {
	h.mu.Lock()
	wasVisible := h.visible
	h.visible = visible
	h.mu.Unlock()

	if visible && !wasVisible {
		select {
		case h.wake <- struct{}{}:
		default:
		}
	}
}

// Online reports whether the last poll reached the store.
func (h *Handle) Online() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.online
}

// Messages returns the last known-good log.
func (h *Handle) Messages() []*negotiation.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

func (h *Handle) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.poller.interval)
	defer ticker.Stop()

	h.poll()
	for {
		select {
		case <-h.stop:
			return
		case <-h.wake:
			h.poll()
		case <-ticker.C:
			h.mu.Lock()
			visible := h.visible
			h.mu.Unlock()
			if visible {
				h.poll()
			}
		}
	}
}

// One poll cycle. A failed poll flips the offline flag and waits for the
// next tick; it is never retried inline.
func (h *Handle) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), h.poller.requestTimeout)
	messages, err := h.poller.source.Messages(ctx, h.negotiationID)
	cancel()

	now := time.Now().UTC()
	if err != nil {
		h.poller.logger.Warn().Err(err).
			Str("negotiationId", h.negotiationID.String()).
			Msg("poll failed")
		h.mu.Lock()
		wasOnline := h.online || !h.started
		h.online = false
		h.started = true
		last := h.last
		h.mu.Unlock()
		if wasOnline {
			h.notify(Snapshot{NegotiationID: h.negotiationID, Messages: last, Online: false, PolledAt: now})
		}
		return
	}

	h.mu.Lock()
	changed := !h.started || !h.online || !negotiation.EqualLogs(h.last, messages)
	if changed {
		h.last = messages
	}
	h.online = true
	h.started = true
	h.mu.Unlock()

	if changed {
		h.notify(Snapshot{NegotiationID: h.negotiationID, Messages: messages, Online: true, PolledAt: now})
	}
}

func (h *Handle) notify(s Snapshot) {
	if h.observer != nil {
		h.observer(s)
	}
}
