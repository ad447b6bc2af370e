package trade

// Unit of work names, used as the op label on retry and transition metrics
const (
	OpPropose  = "propose"
	OpCounter  = "counter"
	OpAccept   = "accept"
	OpReject   = "reject"
	OpWithdraw = "withdraw"
)

// Log messages
const (
	LogMsgProposalCreated   = "Trade proposal created"
	LogMsgProposalCountered = "Trade proposal countered"
	LogMsgProposalAccepted  = "Trade proposal accepted"
	LogMsgProposalRejected  = "Trade proposal rejected"
	LogMsgProposalWithdrawn = "Trade proposal withdrawn"
)
