package purchase

import "time"

// DefaultKeyPrefix namespaces payment references in the idempotency store
const DefaultKeyPrefix = "purchase:idempotency:"

const (
	DefaultIdempotencyTTL  = 72 * time.Hour
	DefaultMemoryStoreSize = 100_000
	redisPingTimeout       = 5 * time.Second
	orderKeySeparator      = "|"
)

// Log messages
const (
	LogMsgPurchaseConfirmed     = "Purchase confirmed"
	LogMsgCardPurchaseConfirmed = "Card purchase confirmed"
	LogMsgPurchaseDuplicate     = "Purchase confirmation already processed"
	LogMsgStoreUnavailable      = "Idempotency store unavailable, relying on the purchase record"
)
