package handler

import (
	"net/http"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/purchase"
)

// ConfirmPurchaseRequest is the payment provider's confirmation. The buyer is
// named in the body because the caller is the payment system, not the user.
type ConfirmPurchaseRequest struct {
	PaymentRef string `json:"payment_ref" validate:"required,max=200"`
	UserID     string `json:"user_id" validate:"required,max=100,excludesall=\x00\n\r\t"`
	Quantity   int    `json:"quantity" validate:"min=1,max=100"`
}

// ConfirmCardPurchaseRequest confirms payment for one chosen collectible.
// Rarity, when set, is the tier that was paid for.
type ConfirmCardPurchaseRequest struct {
	PaymentRef    string `json:"payment_ref" validate:"required,max=200"`
	UserID        string `json:"user_id" validate:"required,max=100,excludesall=\x00\n\r\t"`
	CollectibleID string `json:"collectible_id" validate:"required,max=100,excludesall=\x00\n\r\t"`
	Rarity        string `json:"rarity,omitempty" validate:"omitempty,max=20"`
}

// HandleConfirmPurchase grants purchased packs once per payment reference.
// Redeliveries answer 200 with duplicate set.
// @Summary Confirm pack purchase
// @Description Grant purchased packs once per payment reference
// @Tags purchases
// @Accept json
// @Produce json
// @Param request body ConfirmPurchaseRequest true "Payment confirmation"
// @Success 200 {object} purchase.Receipt
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/purchases/confirm [post]
func HandleConfirmPurchase(svc purchase.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ConfirmPurchaseRequest
		if err := DecodeAndValidateRequest(r, w, &req, OpConfirmPurchase); err != nil {
			return
		}
		receipt, err := svc.Confirm(r.Context(), req.PaymentRef, req.UserID, req.Quantity)
		if err != nil {
			respondServiceError(w, r, OpConfirmPurchase, err)
			return
		}
		respondJSON(w, http.StatusOK, receipt)
	}
}

// HandleConfirmCardPurchase credits one chosen collectible once per payment reference
// @Summary Confirm card purchase
// @Description Credit one unit of the chosen collectible once per payment reference
// @Tags purchases
// @Accept json
// @Produce json
// @Param request body ConfirmCardPurchaseRequest true "Payment confirmation"
// @Success 200 {object} purchase.Receipt
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/purchases/card/confirm [post]
func HandleConfirmCardPurchase(svc purchase.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ConfirmCardPurchaseRequest
		if err := DecodeAndValidateRequest(r, w, &req, OpConfirmCardPurchase); err != nil {
			return
		}
		var tier *domain.Rarity
		if req.Rarity != "" {
			rarity, err := domain.ParseRarity(req.Rarity)
			if err != nil {
				respondServiceError(w, r, OpConfirmCardPurchase, err)
				return
			}
			tier = &rarity
		}
		receipt, err := svc.ConfirmCard(r.Context(), req.PaymentRef, req.UserID, req.CollectibleID, tier)
		if err != nil {
			respondServiceError(w, r, OpConfirmCardPurchase, err)
			return
		}
		respondJSON(w, http.StatusOK, receipt)
	}
}
