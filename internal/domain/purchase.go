package domain

import "time"

// PurchaseKind says what a confirmed payment bought.
type PurchaseKind string

const (
	PurchasePacks PurchaseKind = "PACKS"
	PurchaseCard  PurchaseKind = "CARD"
)

// Purchase is the durable record of one processed payment reference. It is
// written in the same unit of work that delivers the goods.
type Purchase struct {
	PaymentRef    string       `json:"payment_ref"`
	UserID        string       `json:"user_id"`
	Kind          PurchaseKind `json:"kind"`
	Quantity      int          `json:"quantity"`
	CollectibleID *string      `json:"collectible_id,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// SameOrder reports whether other describes the same order as p, ignoring when it was recorded.
func (p Purchase) SameOrder(other Purchase) bool {
	if p.PaymentRef != other.PaymentRef || p.UserID != other.UserID ||
		p.Kind != other.Kind || p.Quantity != other.Quantity {
		return false
	}
	if p.CollectibleID == nil || other.CollectibleID == nil {
		return p.CollectibleID == nil && other.CollectibleID == nil
	}
	return *p.CollectibleID == *other.CollectibleID
}
