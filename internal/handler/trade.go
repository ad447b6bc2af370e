package handler

import (
	"net/http"

	"github.com/osse101/StickerSwap_Go/internal/trade"
)

// ProposeTradeRequest offers one duplicate collectible
type ProposeTradeRequest struct {
	CollectibleID string `json:"collectible_id" validate:"required,max=100,excludesall=\x00\n\r\t"`
}

// CounterTradeRequest names the duplicate the responder gives in return
type CounterTradeRequest struct {
	CollectibleID string `json:"collectible_id" validate:"required,max=100,excludesall=\x00\n\r\t"`
}

// TradeHandler serves the trade proposal endpoints
type TradeHandler struct {
	svc trade.Service
}

func NewTradeHandler(svc trade.Service) *TradeHandler {
	return &TradeHandler{svc: svc}
}

// HandlePropose lists a duplicate for trade
// @Summary Propose trade
// @Description Offer one duplicate collectible
// @Tags trades
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param request body ProposeTradeRequest true "Offered collectible"
// @Success 201 {object} domain.TradeProposal
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/trades [post]
func (h *TradeHandler) HandlePropose(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req ProposeTradeRequest
	if err := DecodeAndValidateRequest(r, w, &req, OpProposeTrade); err != nil {
		return
	}
	p, err := h.svc.Propose(r.Context(), userID, req.CollectibleID)
	if err != nil {
		respondServiceError(w, r, OpProposeTrade, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// HandleCounter attaches the caller's duplicate to an open proposal
// @Summary Counter trade
// @Description Attach the caller's duplicate to an open proposal
// @Tags trades
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param proposalID path string true "Proposal id"
// @Param request body CounterTradeRequest true "Requested collectible"
// @Success 200 {object} domain.TradeProposal
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/trades/{proposalID}/counter [post]
func (h *TradeHandler) HandleCounter(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req CounterTradeRequest
	if err := DecodeAndValidateRequest(r, w, &req, OpCounterTrade); err != nil {
		return
	}
	p, err := h.svc.Counter(r.Context(), pathParam(r, "proposalID"), userID, req.CollectibleID)
	if err != nil {
		respondServiceError(w, r, OpCounterTrade, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// HandleAccept swaps both collectibles. Only the proposer may accept.
// @Summary Accept trade
// @Description Swap both collectibles and cancel every other open proposal promising either
// @Tags trades
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param proposalID path string true "Proposal id"
// @Success 200 {object} trade.AcceptResult
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/trades/{proposalID}/accept [post]
func (h *TradeHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Accept(r.Context(), pathParam(r, "proposalID"), userID)
	if err != nil {
		respondServiceError(w, r, OpAcceptTrade, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// @Summary Reject trade
// @Tags trades
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param proposalID path string true "Proposal id"
// @Success 200 {object} domain.TradeProposal
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/trades/{proposalID}/reject [post]
func (h *TradeHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Reject(r.Context(), pathParam(r, "proposalID"), userID)
	if err != nil {
		respondServiceError(w, r, OpRejectTrade, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// @Summary Withdraw trade
// @Description Withdraw an offer nobody has countered yet
// @Tags trades
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param proposalID path string true "Proposal id"
// @Success 200 {object} domain.TradeProposal
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/trades/{proposalID}/withdraw [post]
func (h *TradeHandler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Withdraw(r.Context(), pathParam(r, "proposalID"), userID)
	if err != nil {
		respondServiceError(w, r, OpWithdrawTrade, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// @Summary Get trade
// @Tags trades
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param proposalID path string true "Proposal id"
// @Success 200 {object} domain.TradeProposal
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/trades/{proposalID} [get]
func (h *TradeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), pathParam(r, "proposalID"))
	if err != nil {
		respondServiceError(w, r, OpGetTrade, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// HandleListOpen returns the caller's open proposals and the offers waiting for a counter
// @Summary List open trades
// @Tags trades
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Success 200 {object} domain.TradeListing
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/trades [get]
func (h *TradeHandler) HandleListOpen(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	listing, err := h.svc.ListOpen(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, OpListTrades, err)
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

// @Summary Trade history
// @Description List every proposal the caller took part in
// @Tags trades
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Success 200 {array} domain.TradeProposal
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/trades/history [get]
func (h *TradeHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	list, err := h.svc.History(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, OpTradeHistory, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}
