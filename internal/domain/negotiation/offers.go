package negotiation

import "github.com/google/uuid"

// OfferState is the derived lifecycle of a single counter-offer message.
type OfferState struct {
	IsPending         bool `json:"isPending"`
	IsAccepted        bool `json:"isAccepted"`
	IsRejected        bool `json:"isRejected"`
	IsCancelled       bool `json:"isCancelled"`
	IsLatestOpenOffer bool `json:"isLatestOpenOffer"`
}

// DeriveOfferStates computes each counter-offer's state from the message log.
// A counter-offer's resolved state is its own OfferStatus when set, else
// pending. Only the chronologically last pending counter-offer is the latest
// open offer; older pending offers stay pending but are not actionable.
func DeriveOfferStates(messages []*Message) map[string]OfferState {
	states := make(map[string]OfferState)
	latestOpen := ""
	for _, m := range messages {
		if m.Type != TypeCounterOffer {
			continue
		}
		st := OfferState{}
		switch resolved(m) {
		case OfferAccepted:
			st.IsAccepted = true
		case OfferRejected:
			st.IsRejected = true
		case OfferCancelled:
			st.IsCancelled = true
		default:
			st.IsPending = true
			latestOpen = m.MessageID
		}
		states[m.MessageID] = st
	}
	if latestOpen != "" {
		st := states[latestOpen]
		st.IsLatestOpenOffer = true
		states[latestOpen] = st
	}
	return states
}

// CanAccept reports whether actorID may accept the given counter-offer.
// Only the counter-party may accept, only while the negotiation is open, and
// only the latest open offer is eligible.
func CanAccept(n *Negotiation, m *Message, actorID uuid.UUID) bool {
	return actionableBy(n, m, actorID) && actorID != m.SenderID
}

// CanReject reports whether actorID may reject the given counter-offer.
func CanReject(n *Negotiation, m *Message, actorID uuid.UUID) bool {
	return actionableBy(n, m, actorID) && actorID != m.SenderID
}

// CanWithdraw reports whether actorID may withdraw the given counter-offer.
// Withdrawal is the sender's move only.
func CanWithdraw(n *Negotiation, m *Message, actorID uuid.UUID) bool {
	return actionableBy(n, m, actorID) && actorID == m.SenderID
}

// CanDecide dispatches to the predicate matching the decision.
func CanDecide(n *Negotiation, m *Message, actorID uuid.UUID, d OfferDecision) bool {
	switch d {
	case DecisionAccept:
		return CanAccept(n, m, actorID)
	case DecisionReject:
		return CanReject(n, m, actorID)
	case DecisionWithdraw:
		return CanWithdraw(n, m, actorID)
	default:
		return false
	}
}

func actionableBy(n *Negotiation, m *Message, actorID uuid.UUID) bool {
	if n == nil || m == nil {
		return false
	}
	if n.Status != StatusOpen || !n.IsParticipant(actorID) {
		return false
	}
	if m.Type != TypeCounterOffer || m.OfferStatus != nil {
		return false
	}
	return DeriveOfferStates(n.Messages)[m.MessageID].IsLatestOpenOffer
}

func resolved(m *Message) OfferStatus {
	if m.OfferStatus == nil {
		return OfferPending
	}
	return *m.OfferStatus
}
