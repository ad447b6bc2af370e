package postgres

// PostgreSQL Error Codes
const (
	PgErrorCodeUniqueViolation      = "23505"
	PgErrorCodeForeignKeyViolation  = "23503"
	PgErrorCodeSerializationFailure = "40001"
	PgErrorCodeDeadlockDetected     = "40P01"
	PgErrorCodeLockNotAvailable     = "55P03"
)

// Advisory lock hashing
const (
	HashSeparator         = ":"
	HashMaskPositiveInt64 = 0x7FFFFFFFFFFFFFFF
)

// Error Messages - Transaction Operations
const (
	ErrMsgFailedToBeginTransaction  = "failed to begin transaction"
	ErrMsgFailedToCommitTransaction = "failed to commit transaction"
)

// Error Messages - Ledger Operations
const (
	ErrMsgFailedToCreditEntry   = "failed to credit inventory entry"
	ErrMsgFailedToDebitEntry    = "failed to debit inventory entry"
	ErrMsgFailedToLockEntry     = "failed to lock inventory entry"
	ErrMsgFailedToGetQuantity   = "failed to get quantity"
	ErrMsgFailedToListEntries   = "failed to list inventory entries"
	ErrMsgFailedToSumQuantities = "failed to sum quantities"
	ErrMsgFailedToRankHolders   = "failed to rank holders"
)

// Error Messages - Purchase Operations
const (
	ErrMsgFailedToRecordPurchase = "failed to record purchase"
	ErrMsgFailedToGetPurchase    = "failed to get purchase"
)

// Error Messages - Pack Operations
const (
	ErrMsgFailedToLockGrantWindow = "failed to acquire grant lock"
	ErrMsgFailedToCountPacks      = "failed to count packs"
	ErrMsgFailedToCreatePacks     = "failed to create packs"
	ErrMsgFailedToGetPack         = "failed to get pack"
	ErrMsgFailedToListPacks       = "failed to list packs"
	ErrMsgFailedToMarkPackOpened  = "failed to mark pack opened"
)

// Error Messages - Trade Operations
const (
	ErrMsgFailedToCreateProposal = "failed to create proposal"
	ErrMsgFailedToGetProposal    = "failed to get proposal"
	ErrMsgFailedToUpdateProposal = "failed to update proposal"
	ErrMsgFailedToListProposals  = "failed to list proposals"
	ErrMsgFailedToReserve        = "failed to reserve collectible"
	ErrMsgFailedToRelease        = "failed to release reservations"
	ErrMsgFailedToLockReserving  = "failed to lock reserving proposals"
)

// Error Messages - Catalog and Notification Operations
const (
	ErrMsgFailedToListCollectibles   = "failed to list collectibles"
	ErrMsgFailedToUpsertCollectibles = "failed to upsert collectibles"
	ErrMsgFailedToInsertNotification = "failed to insert notification"
	ErrMsgFailedToListNotifications  = "failed to list notifications"
	ErrMsgFailedToMarkRead           = "failed to mark notification read"
)
