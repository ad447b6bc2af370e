package memory

import "github.com/osse101/StickerSwap_Go/internal/repository"

var (
	_ repository.Catalog      = (*Store)(nil)
	_ repository.Inventory    = (*Store)(nil)
	_ repository.Pack         = (*Store)(nil)
	_ repository.Trade        = (*Store)(nil)
	_ repository.Notification = (*Store)(nil)
	_ repository.TradeTx      = (*storeTx)(nil)
	_ repository.PackTx       = (*storeTx)(nil)
)
