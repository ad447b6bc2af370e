// Package server exposes the collection and trading operations over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osse101/StickerSwap_Go/internal/catalog"
	"github.com/osse101/StickerSwap_Go/internal/handler"
	"github.com/osse101/StickerSwap_Go/internal/ledger"
	"github.com/osse101/StickerSwap_Go/internal/logger"
	"github.com/osse101/StickerSwap_Go/internal/metrics"
	"github.com/osse101/StickerSwap_Go/internal/notify"
	"github.com/osse101/StickerSwap_Go/internal/pack"
	"github.com/osse101/StickerSwap_Go/internal/purchase"
	"github.com/osse101/StickerSwap_Go/internal/trade"
)

// Options holds the transport settings
type Options struct {
	Port           int
	APIKey         string
	TrustedProxies []string
	ServiceName    string
	Version        string
	// Readiness lists the dependencies /readyz pings, by name.
	Readiness map[string]handler.Pinger
}

// Services are the application services behind the routes
type Services struct {
	Catalog   catalog.Service
	Ledger    ledger.Service
	Packs     pack.Service
	Trades    trade.Service
	Inbox     notify.Inbox
	Purchases purchase.Service
}

type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server instance
func NewServer(opts Options, svc Services) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           NewRouter(opts, svc),
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
	}
}

// NewRouter builds the route tree. Middleware runs in the order added.
func NewRouter(opts Options, svc Services) http.Handler {
	r := chi.NewRouter()
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(opts.APIKey, opts.TrustedProxies, detector))
	r.Use(RateLimitMiddleware(opts.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(IdentityMiddleware)
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(opts.Readiness))
	r.Get("/version", handler.HandleVersion(opts.ServiceName, opts.Version))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", handler.HandleListCatalog(svc.Catalog))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", handler.HandleGetInventory(svc.Ledger))
			r.Get("/duplicates", handler.HandleGetDuplicates(svc.Ledger))
			r.Get("/stats", handler.HandleGetAlbumStats(svc.Ledger))
		})
		r.Get("/ranking", handler.HandleGetRanking(svc.Ledger))

		r.Route("/packs", func(r chi.Router) {
			r.Get("/", handler.HandleListPacks(svc.Packs))
			r.Post("/initial", handler.HandleGrantInitialPacks(svc.Packs))
			r.Post("/daily", handler.HandleGrantDailyPacks(svc.Packs))
			r.Get("/{packID}", handler.HandleGetPack(svc.Packs))
			r.Post("/{packID}/open", handler.HandleOpenPack(svc.Packs))
		})

		trades := handler.NewTradeHandler(svc.Trades)
		r.Route("/trades", func(r chi.Router) {
			r.Get("/", trades.HandleListOpen)
			r.Post("/", trades.HandlePropose)
			r.Get("/history", trades.HandleHistory)
			r.Get("/{proposalID}", trades.HandleGet)
			r.Post("/{proposalID}/counter", trades.HandleCounter)
			r.Post("/{proposalID}/accept", trades.HandleAccept)
			r.Post("/{proposalID}/reject", trades.HandleReject)
			r.Post("/{proposalID}/withdraw", trades.HandleWithdraw)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", handler.HandleListNotifications(svc.Inbox))
			r.Post("/read-all", handler.HandleMarkAllNotificationsRead(svc.Inbox))
			r.Post("/{notificationID}/read", handler.HandleMarkNotificationRead(svc.Inbox))
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Post("/confirm", handler.HandleConfirmPurchase(svc.Purchases))
			r.Post("/card/confirm", handler.HandleConfirmCardPurchase(svc.Purchases))
		})
	})

	return r
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > 64 {
			requestID = logger.GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)
		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"user_id", r.Header.Get(handler.HeaderUserID),
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength)

		sanitized := make(http.Header, len(r.Header))
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitized[k] = []string{RedactedValue}
			} else {
				sanitized[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitized)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start serves until Stop is called. It returns nil after a graceful stop.
func (s *Server) Start() error {
	logger.Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
