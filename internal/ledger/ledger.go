// Package ledger owns every change to (user, collectible) quantities. Other
// components mutate quantities only through the Tx functions below, inside
// their own units of work.
package ledger

import (
	"context"
	"fmt"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/repository"
)

func validate(userID, collectibleID string, amount int) error {
	if userID == "" || collectibleID == "" {
		return fmt.Errorf("%w: user and collectible ids are required", domain.ErrInvalidInput)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", domain.ErrInvalidInput, amount)
	}
	return nil
}

// CreditTx adds amount units inside tx and returns the new quantity.
func CreditTx(ctx context.Context, tx repository.LedgerTx, userID, collectibleID string, amount int) (int, error) {
	if err := validate(userID, collectibleID, amount); err != nil {
		return 0, err
	}
	return tx.CreditEntry(ctx, userID, collectibleID, amount)
}

// DebitTx removes amount units inside tx. It fails with domain.ErrInsufficientInventory,
// changing nothing, when the user holds fewer.
func DebitTx(ctx context.Context, tx repository.LedgerTx, userID, collectibleID string, amount int) (int, error) {
	if err := validate(userID, collectibleID, amount); err != nil {
		return 0, err
	}
	return tx.DebitEntry(ctx, userID, collectibleID, amount)
}

// TransferTx moves amount units from one user to another inside tx. The
// per-collectible total is unchanged.
func TransferTx(ctx context.Context, tx repository.LedgerTx, fromUserID, toUserID, collectibleID string, amount int) error {
	if err := validate(fromUserID, collectibleID, amount); err != nil {
		return err
	}
	if toUserID == "" || toUserID == fromUserID {
		return fmt.Errorf("%w: transfer needs two distinct users", domain.ErrInvalidInput)
	}
	if _, err := tx.DebitEntry(ctx, fromUserID, collectibleID, amount); err != nil {
		return err
	}
	_, err := tx.CreditEntry(ctx, toUserID, collectibleID, amount)
	return err
}

// RecordPurchaseTx stores p inside tx. It reports duplicate when the payment
// reference was already processed for the same order, and fails with
// domain.ErrConflict when the reference was used for a different order.
func RecordPurchaseTx(ctx context.Context, tx repository.LedgerTx, p domain.Purchase) (bool, error) {
	if p.PaymentRef == "" || p.UserID == "" {
		return false, fmt.Errorf("%w: payment reference and user id are required", domain.ErrInvalidInput)
	}
	if p.Quantity <= 0 {
		return false, fmt.Errorf("%w: quantity must be positive, got %d", domain.ErrInvalidInput, p.Quantity)
	}
	stored, created, err := tx.RecordPurchase(ctx, p)
	if err != nil {
		return false, err
	}
	if created {
		return false, nil
	}
	if !stored.SameOrder(p) {
		return false, fmt.Errorf("%w: payment reference %s was already used for another order",
			domain.ErrConflict, p.PaymentRef)
	}
	return true, nil
}
