package handler

import (
	"net/http"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/logger"
	"github.com/osse101/StickerSwap_Go/internal/pack"
)

// GrantResponse reports how many packs a grant call created
type GrantResponse struct {
	Granted int `json:"granted"`
}

// OpenPackResponse lists what an opened pack credited
type OpenPackResponse struct {
	PackID       string               `json:"pack_id"`
	Collectibles []domain.Collectible `json:"collectibles"`
}

// HandleGrantInitialPacks grants the signup packs. Repeated calls grant nothing.
// @Summary Grant initial packs
// @Description Create the signup packs once per user
// @Tags packs
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Success 200 {object} GrantResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/packs/initial [post]
func HandleGrantInitialPacks(svc pack.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		n, err := svc.GrantInitialPacks(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, OpGrantInitial, err)
			return
		}
		respondJSON(w, http.StatusOK, GrantResponse{Granted: n})
	}
}

// HandleGrantDailyPacks grants today's packs. Repeated calls the same day grant nothing.
// @Summary Grant daily packs
// @Description Create the daily packs once per calendar day
// @Tags packs
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Success 200 {object} GrantResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/packs/daily [post]
func HandleGrantDailyPacks(svc pack.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		n, err := svc.GrantDailyPacks(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, OpGrantDaily, err)
			return
		}
		respondJSON(w, http.StatusOK, GrantResponse{Granted: n})
	}
}

// HandleListPacks lists the caller's packs, optionally filtered by ?opened=
// @Summary List packs
// @Description List the caller's packs
// @Tags packs
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param opened query bool false "Only opened or only unopened packs"
// @Success 200 {array} domain.Pack
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/packs [get]
func HandleListPacks(svc pack.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		opened, ok := optionalBoolParam(r, w, "opened")
		if !ok {
			return
		}
		packs, err := svc.ListPacks(r.Context(), userID, opened)
		if err != nil {
			respondServiceError(w, r, OpListPacks, err)
			return
		}
		respondJSON(w, http.StatusOK, packs)
	}
}

// @Summary Get pack
// @Tags packs
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param packID path string true "Pack id"
// @Success 200 {object} domain.Pack
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/packs/{packID} [get]
func HandleGetPack(svc pack.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		p, err := svc.GetPack(r.Context(), pathParam(r, "packID"), userID)
		if err != nil {
			respondServiceError(w, r, OpGetPack, err)
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

// HandleOpenPack opens one of the caller's packs
// @Summary Open pack
// @Description Draw the pack's contents and credit them to the caller
// @Tags packs
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param packID path string true "Pack id"
// @Success 200 {object} OpenPackResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/packs/{packID}/open [post]
func HandleOpenPack(svc pack.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		packID := pathParam(r, "packID")
		drawn, err := svc.Open(r.Context(), packID, userID)
		if err != nil {
			respondServiceError(w, r, OpOpenPack, err)
			return
		}
		logger.FromContext(r.Context()).Debug("Pack opened", "pack_id", packID, "user_id", userID)
		respondJSON(w, http.StatusOK, OpenPackResponse{PackID: packID, Collectibles: drawn})
	}
}
