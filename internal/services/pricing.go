package service

import (
	"math"

	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

// TargetPrice converts a customer-requested robux amount into the listing
// price that must exist on the marketplace.
func TargetPrice(requested int64, markup float64) int64 {
	return int64(math.Round(float64(requested) * markup))
}

// MatchListing finds the gamepass whose price equals the target exactly and
// whose seller equals the requested seller. Ties break on the lowest listing
// id so the result does not depend on iteration order.
func MatchListing(listings []models.GamePass, target int64, sellerName string) (models.GamePass, error) {
	var found *models.GamePass
	for i := range listings {
		listing := &listings[i]
		if listing.Price != target || listing.SellerName != sellerName {
			continue
		}
		if found == nil || listing.ID < found.ID {
			found = listing
		}
	}
	if found == nil {
		return models.GamePass{}, pkgerrors.ErrListingNotFound
	}
	return *found, nil
}
