package sync

import (
	"sync"

	"github.com/procure-hub/procure-hub/internal/domain/negotiation"
)

// Overlay holds tentative local mutations rendered over the authoritative
// message log while their server round-trips are in flight. The log itself is
// never mutated: staged entries are either confirmed away once the
// authoritative copy reflects them, or discarded after a rejected call.
type Overlay struct {
	mu          sync.Mutex
	resolutions map[string]negotiation.OfferStatus
	appended    []*negotiation.Message
}

// NewOverlay creates an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{resolutions: make(map[string]negotiation.OfferStatus)}
}

// StageResolution records a tentative offer resolution.
func (o *Overlay) StageResolution(messageID string, to negotiation.OfferStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resolutions[messageID] = to
}

// DiscardResolution rolls back a tentative resolution after the store
// rejected the transition.
func (o *Overlay) DiscardResolution(messageID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.resolutions, messageID)
}

// StageMessage records a locally sent message awaiting confirmation.
func (o *Overlay) StageMessage(m *negotiation.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.appended = append(o.appended, m)
}

// DiscardMessage rolls back a staged message after a failed send.
func (o *Overlay) DiscardMessage(messageID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, m := range o.appended {
		if m.MessageID == messageID {
			o.appended = append(o.appended[:i], o.appended[i+1:]...)
			return
		}
	}
}

// Empty reports whether nothing is staged.
func (o *Overlay) Empty() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.resolutions) == 0 && len(o.appended) == 0
}

// Apply renders the authoritative log with staged mutations on top. Staged
// entries the authoritative log already reflects are reconciled away as a
// side effect, so each poll shrinks the overlay toward empty.
func (o *Overlay) Apply(authoritative []*negotiation.Message) []*negotiation.Message {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]*negotiation.Message, 0, len(authoritative)+len(o.appended))
	seen := make(map[string]struct{}, len(authoritative))
	for _, m := range authoritative {
		seen[m.MessageID] = struct{}{}
		if staged, ok := o.resolutions[m.MessageID]; ok {
			if m.OfferStatus != nil {
				// The server resolved it; authoritative state wins.
				delete(o.resolutions, m.MessageID)
				out = append(out, m)
				continue
			}
			clone := *m
			status := staged
			clone.OfferStatus = &status
			out = append(out, &clone)
			continue
		}
		out = append(out, m)
	}

	remaining := o.appended[:0]
	for _, m := range o.appended {
		if _, ok := seen[m.MessageID]; ok {
			continue
		}
		remaining = append(remaining, m)
		out = append(out, m)
	}
	o.appended = remaining
	return out
}
