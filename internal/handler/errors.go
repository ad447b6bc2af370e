package handler

// Generic HTTP error messages for client responses.
// These never include internal error details.
const (
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgMissingQueryParam     = "Missing %s query parameter"
	ErrMsgInvalidQueryParam     = "Invalid %s query parameter"
	ErrMsgMissingUserID         = "Missing X-User-ID header"
)

// User-facing messages for service errors
const (
	ErrMsgGenericServerError    = "Something went wrong"
	ErrMsgUnknownError          = "Unknown error"
	ErrMsgInvalidRequestError   = "Invalid request. Please check your inputs."
	ErrMsgResourceNotFoundError = "Resource not found."
	ErrMsgForbiddenError        = "You are not allowed to do that."
	ErrMsgInvalidStateError     = "That action is not possible in the current state."
	ErrMsgInsufficientError     = "Not enough collectibles"
	ErrMsgConflictError         = "That conflicts with an earlier request. Only duplicates not promised elsewhere can be traded, and a payment reference pays for one order."
	ErrMsgUnavailableError      = "Server is temporarily unavailable. Please try again later."
	ErrMsgMisconfiguredError    = "The server is misconfigured. Please contact support."
)

// Success messages
const (
	MsgNotificationRead      = "Notification marked as read"
	MsgNotificationsReadDone = "Notifications marked as read"
)

// Operation names used in logs
const (
	OpGrantInitial    = "Grant initial packs"
	OpGrantDaily      = "Grant daily packs"
	OpListPacks       = "List packs"
	OpGetPack         = "Get pack"
	OpOpenPack        = "Open pack"
	OpGetInventory    = "Get inventory"
	OpGetDuplicates   = "Get duplicates"
	OpListCatalog     = "List catalog"
	OpProposeTrade    = "Propose trade"
	OpCounterTrade    = "Counter trade"
	OpAcceptTrade     = "Accept trade"
	OpRejectTrade     = "Reject trade"
	OpWithdrawTrade   = "Withdraw trade"
	OpGetTrade        = "Get trade"
	OpListTrades      = "List trades"
	OpTradeHistory    = "Trade history"
	OpListInbox       = "List notifications"
	OpMarkRead        = "Mark notification read"
	OpMarkAllRead     = "Mark notifications read"
	OpConfirmPurchase = "Confirm purchase"

	OpConfirmCardPurchase = "Confirm card purchase"
	OpGetAlbumStats       = "Get album stats"
	OpGetRanking          = "Get ranking"
)
