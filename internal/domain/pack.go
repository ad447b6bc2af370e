package domain

import "time"

// SourceKind records why a pack exists.
type SourceKind string

const (
	SourceInitialGrant SourceKind = "INITIAL_GRANT"
	SourceDailyGrant   SourceKind = "DAILY_GRANT"
	SourcePurchased    SourceKind = "PURCHASED"
)

// Pack is an entitlement that credits its owner with freshly drawn collectibles when opened.
// It moves from unopened to opened exactly once and is never deleted.
type Pack struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	SourceKind SourceKind `json:"source_kind"`
	Opened     bool       `json:"opened"`
	CreatedAt  time.Time  `json:"created_at"`
	OpenedAt   *time.Time `json:"opened_at,omitempty"`
	// Contents holds the collectible ids credited on open, in draw order.
	Contents []string `json:"contents,omitempty"`
}
