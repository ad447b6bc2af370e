package ledger

// MinTradeableQuantity is the smallest holding a user may offer from: one
// unit always stays with the owner.
const MinTradeableQuantity = 2

// Unit of work names, used as the op label on retry metrics
const (
	OpCredit   = "ledger_credit"
	OpDebit    = "ledger_debit"
	OpTransfer = "ledger_transfer"

	OpCreditPurchase = "ledger_credit_purchase"
)

// Ranking page sizes
const (
	DefaultRankingLimit = 50
	MaxRankingLimit     = 500
)

const LogMsgUnknownCollectible = "Held collectible missing from catalog, skipped"
