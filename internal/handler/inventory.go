package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/osse101/StickerSwap_Go/internal/ledger"
)

// HandleGetInventory returns the caller's holdings joined with the catalog
// @Summary Get inventory
// @Description List every collectible the caller owns at least one of
// @Tags inventory
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Success 200 {array} domain.Holding
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/inventory [get]
func HandleGetInventory(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		holdings, err := svc.Holdings(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, OpGetInventory, err)
			return
		}
		respondJSON(w, http.StatusOK, holdings)
	}
}

// HandleGetDuplicates returns only the holdings that can be traded
// @Summary Get duplicates
// @Description List the caller's holdings of two or more units
// @Tags inventory
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Success 200 {array} domain.Holding
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/inventory/duplicates [get]
func HandleGetDuplicates(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		holdings, err := svc.Duplicates(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, OpGetDuplicates, err)
			return
		}
		respondJSON(w, http.StatusOK, holdings)
	}
}

// HandleGetAlbumStats summarizes the caller's album progress
// @Summary Get album stats
// @Description Count unique, total and duplicate units, completed groups and per-rarity progress
// @Tags inventory
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Success 200 {object} domain.AlbumStats
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/inventory/stats [get]
func HandleGetAlbumStats(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		stats, err := svc.Stats(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, OpGetAlbumStats, err)
			return
		}
		respondJSON(w, http.StatusOK, stats)
	}
}

// HandleGetRanking lists holders by total units held
// @Summary Get ranking
// @Description Order users by total units held, ties broken by user id
// @Tags inventory
// @Produce json
// @Param limit query int false "Maximum rows (default 50, max 500)"
// @Success 200 {array} domain.RankingEntry
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/ranking [get]
func HandleGetRanking(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidQueryParam, "limit"))
				return
			}
			limit = n
		}
		ranking, err := svc.Ranking(r.Context(), limit)
		if err != nil {
			respondServiceError(w, r, OpGetRanking, err)
			return
		}
		respondJSON(w, http.StatusOK, ranking)
	}
}
