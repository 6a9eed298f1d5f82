package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	service "github.com/pikoUsername/roblox-searcher-backend/internal/services"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

func (h *Handler) BuyRobux(w http.ResponseWriter, r *http.Request) {
	var req service.BuyRobuxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	summary, err := h.purchases.BuyRobux(r.Context(), req)
	if err != nil {
		// No listing at the computed price means the storefront quote is
		// stale: payment required rather than plain not-found.
		if errors.Is(err, pkgerrors.ErrListingNotFound) {
			h.writeError(w, http.StatusPaymentRequired, err)
			return
		}
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, summary)
}

func (h *Handler) BuyRobuxByURL(w http.ResponseWriter, r *http.Request) {
	var req service.BuyByURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	summary, err := h.purchases.BuyRobuxByURL(r.Context(), req)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, summary)
}

// matchQuery parses the common game_id/robux_amount/roblox_username triple.
func matchQuery(r *http.Request) (int64, int64, string, error) {
	gameID, err := strconv.ParseInt(r.URL.Query().Get("game_id"), 10, 64)
	if err != nil {
		return 0, 0, "", errors.New("game_id is required")
	}
	robuxAmount, err := strconv.ParseInt(r.URL.Query().Get("robux_amount"), 10, 64)
	if err != nil {
		return 0, 0, "", errors.New("robux_amount is required")
	}
	sellerName := r.URL.Query().Get("roblox_username")
	if sellerName == "" {
		return 0, 0, "", errors.New("roblox_username is required")
	}
	return gameID, robuxAmount, sellerName, nil
}

// MatchGamePass returns the listing a purchase of the given amount would buy,
// without starting a purchase.
func (h *Handler) MatchGamePass(w http.ResponseWriter, r *http.Request) {
	gameID, robuxAmount, sellerName, err := matchQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	listing, err := h.purchases.FindListing(r.Context(), gameID, robuxAmount, sellerName)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrListingNotFound) {
			h.writeError(w, http.StatusPaymentRequired, err)
			return
		}
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, listing)
}

func (h *Handler) CheckPurchased(w http.ResponseWriter, r *http.Request) {
	gameID, robuxAmount, sellerName, err := matchQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	purchased, err := h.purchases.CheckAlreadyPurchased(r.Context(), gameID, robuxAmount, sellerName)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrListingNotFound) {
			h.writeError(w, http.StatusPaymentRequired, err)
			return
		}
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"already_purchased": purchased})
}
