package notify

// Payload keys shared by producers and the inbox
const (
	PayloadProposalID    = "proposal_id"
	PayloadCollectibleID = "collectible_id"
	PayloadRequestedID   = "requested_collectible_id"
	PayloadCounterpartID = "counterpart_id"
	PayloadPackCount     = "pack_count"
	PayloadSourceKind    = "source_kind"
	PayloadCancelledBy   = "cancelled_by"
)

// Log messages
const (
	LogMsgNotificationDropped = "Notification dropped, dispatch queue full"
	LogMsgNotificationFailed  = "Notification delivery failed"
)
