package domain

import "time"

// NotificationKind identifies the business event a notification reports.
type NotificationKind string

const (
	NotifyTradeListed    NotificationKind = "TRADE_LISTED"
	NotifyTradeCountered NotificationKind = "TRADE_COUNTERED"
	NotifyTradeAccepted  NotificationKind = "TRADE_ACCEPTED"
	NotifyTradeRejected  NotificationKind = "TRADE_REJECTED"
	NotifyTradeCancelled NotificationKind = "TRADE_CANCELLED"
	NotifyPacksGranted   NotificationKind = "PACKS_GRANTED"
)

// Notification is an inbox entry for one user.
type Notification struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id"`
	Kind       NotificationKind `json:"kind"`
	ProposalID *string          `json:"proposal_id,omitempty"`
	Payload    map[string]any   `json:"payload,omitempty"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"created_at"`
}
