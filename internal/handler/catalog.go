package handler

import (
	"net/http"

	"github.com/osse101/StickerSwap_Go/internal/catalog"
	"github.com/osse101/StickerSwap_Go/internal/domain"
)

// HandleListCatalog lists the album, optionally for one ?rarity= tier and
// filtered by a ?q= name search
// @Summary List catalog
// @Description List the album's collectibles
// @Tags catalog
// @Produce json
// @Param rarity query string false "SILVER, GOLD or LEGENDARY"
// @Param q query string false "Name search"
// @Success 200 {array} domain.Collectible
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/catalog [get]
func HandleListCatalog(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tier *domain.Rarity
		if raw := r.URL.Query().Get("rarity"); raw != "" {
			rarity, err := domain.ParseRarity(raw)
			if err != nil {
				respondServiceError(w, r, OpListCatalog, err)
				return
			}
			tier = &rarity
		}
		list, err := svc.ListCollectibles(r.Context(), tier)
		if err != nil {
			respondServiceError(w, r, OpListCatalog, err)
			return
		}
		respondJSON(w, http.StatusOK, catalog.Search(list, r.URL.Query().Get("q")))
	}
}
