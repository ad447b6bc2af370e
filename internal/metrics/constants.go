package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Storage metric names
const (
	MetricNameTxRetries = "tx_retries_total"
)

// Business metric names
const (
	MetricNamePacksGranted         = "packs_granted_total"
	MetricNameGrantsCoalesced      = "grants_coalesced_total"
	MetricNamePacksOpened          = "packs_opened_total"
	MetricNameCollectiblesDrawn    = "collectibles_drawn_total"
	MetricNameTradeTransitions     = "trade_transitions_total"
	MetricNameTradesCascaded       = "trades_cascade_cancelled_total"
	MetricNameNotificationsFailed  = "notifications_failed_total"
	MetricNameNotificationsDropped = "notifications_dropped_total"
	MetricNamePurchasesConfirmed   = "purchases_confirmed_total"
	MetricNamePurchasesDuplicate   = "purchases_duplicate_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Storage metric help text
const (
	HelpTextTxRetries = "Units of work retried after storage contention"
)

// Business metric help text
const (
	HelpTextPacksGranted         = "Total number of packs created by grants and purchases"
	HelpTextGrantsCoalesced      = "Grant calls that joined an in-flight grant for the same user"
	HelpTextPacksOpened          = "Total number of packs opened"
	HelpTextCollectiblesDrawn    = "Total number of collectibles credited from packs"
	HelpTextTradeTransitions     = "Trade proposal state transitions"
	HelpTextTradesCascaded       = "Proposals cancelled because an accepted trade consumed their collectible"
	HelpTextNotificationsFailed  = "Notifications whose delivery failed"
	HelpTextNotificationsDropped = "Notifications dropped because the dispatch queue was full"
	HelpTextPurchasesConfirmed   = "Payment confirmations that granted packs"
	HelpTextPurchasesDuplicate   = "Payment confirmations ignored as redeliveries"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelOp     = "op"
	LabelSource = "source"
	LabelRarity = "rarity"
	LabelKind   = "kind"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
