package pack

// MaxPurchaseQuantity caps the packs one confirmed payment may grant
const MaxPurchaseQuantity = 100

// Unit of work names, used as the op label on retry metrics
const (
	OpGrantInitial  = "grant_initial"
	OpGrantDaily    = "grant_daily"
	OpGrantPurchase = "grant_purchased"
	OpOpen          = "pack_open"
)

// Log messages
const (
	LogMsgPacksGranted   = "Packs granted"
	LogMsgGrantSkipped   = "Grant window already used"
	LogMsgGrantCoalesced = "Grant joined an in-flight request"
	LogMsgPackOpened     = "Pack opened"

	LogMsgPurchaseAlreadyGranted = "Payment reference already granted"
)
