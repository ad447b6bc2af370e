package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Storage Metrics
var (
	TxRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTxRetries,
			Help: HelpTextTxRetries,
		},
		[]string{LabelOp},
	)
)

// Business Metrics
var (
	PacksGranted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePacksGranted,
			Help: HelpTextPacksGranted,
		},
		[]string{LabelSource},
	)

	GrantsCoalesced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameGrantsCoalesced,
			Help: HelpTextGrantsCoalesced,
		},
		[]string{LabelSource},
	)

	PacksOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePacksOpened,
			Help: HelpTextPacksOpened,
		},
	)

	CollectiblesDrawn = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCollectiblesDrawn,
			Help: HelpTextCollectiblesDrawn,
		},
		[]string{LabelRarity},
	)

	TradeTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTradeTransitions,
			Help: HelpTextTradeTransitions,
		},
		[]string{LabelOp},
	)

	TradesCascaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameTradesCascaded,
			Help: HelpTextTradesCascaded,
		},
	)

	NotificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameNotificationsFailed,
			Help: HelpTextNotificationsFailed,
		},
		[]string{LabelKind},
	)

	NotificationsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameNotificationsDropped,
			Help: HelpTextNotificationsDropped,
		},
		[]string{LabelKind},
	)

	PurchasesConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePurchasesConfirmed,
			Help: HelpTextPurchasesConfirmed,
		},
	)

	PurchasesDuplicate = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePurchasesDuplicate,
			Help: HelpTextPurchasesDuplicate,
		},
	)
)
