package domain

import "time"

// TradeStatus is the lifecycle state of a proposal. A countered proposal is
// PENDING with the requested side populated.
type TradeStatus string

const (
	TradePending   TradeStatus = "PENDING"
	TradeAccepted  TradeStatus = "ACCEPTED"
	TradeRejected  TradeStatus = "REJECTED"
	TradeCancelled TradeStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is possible.
func (s TradeStatus) IsTerminal() bool {
	return s == TradeAccepted || s == TradeRejected || s == TradeCancelled
}

// TradeProposal is an offer of one collectible-unit for another between two users.
type TradeProposal struct {
	ID                     string      `json:"id"`
	ProposerID             string      `json:"proposer_id"`
	OfferedCollectibleID   string      `json:"offered_collectible_id"`
	ResponderID            *string     `json:"responder_id,omitempty"`
	RequestedCollectibleID *string     `json:"requested_collectible_id,omitempty"`
	Status                 TradeStatus `json:"status"`
	CreatedAt              time.Time   `json:"created_at"`
	UpdatedAt              time.Time   `json:"updated_at"`
}

// IsCountered reports whether a responder has attached the requested side.
func (p *TradeProposal) IsCountered() bool {
	return p.ResponderID != nil && p.RequestedCollectibleID != nil
}

// Parties returns the users involved in the proposal.
func (p *TradeProposal) Parties() []string {
	if p.ResponderID == nil {
		return []string{p.ProposerID}
	}
	return []string{p.ProposerID, *p.ResponderID}
}

// ReservationSide tells which side of a proposal a reserved unit backs.
type ReservationSide string

const (
	SideOffered   ReservationSide = "OFFERED"
	SideRequested ReservationSide = "REQUESTED"
)

// Reservation binds one collectible-unit to one open proposal. At most one
// reservation exists per (user, collectible).
type Reservation struct {
	ProposalID    string
	UserID        string
	CollectibleID string
	Side          ReservationSide
}

// Key returns the collectible-unit the reservation holds.
func (r Reservation) Key() EntryKey {
	return EntryKey{UserID: r.UserID, CollectibleID: r.CollectibleID}
}

// TradeListing groups the open proposals visible to a user.
type TradeListing struct {
	Mine   []TradeProposal `json:"mine"`
	Others []TradeProposal `json:"others"`
}
