package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func (h *Handler) SearchPlayer(w http.ResponseWriter, r *http.Request) {
	keyword := mux.Vars(r)["name"]
	if keyword == "" {
		h.writeError(w, http.StatusBadRequest, errors.New("player name is required"))
		return
	}

	players, err := h.catalog.SearchPlayers(r.Context(), keyword)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, players)
}

func (h *Handler) SearchGames(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.ParseInt(r.URL.Query().Get("player_id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("player_id is required"))
		return
	}

	games, err := h.catalog.PlayerGames(r.Context(), playerID)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, games)
}

func (h *Handler) SearchGamePasses(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(mux.Vars(r)["game_id"], 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("game_id must be numeric"))
		return
	}

	passes, err := h.catalog.GamePasses(r.Context(), gameID)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, passes)
}

// RobuxAmount reports how much stock the buyer account currently holds.
func (h *Handler) RobuxAmount(w http.ResponseWriter, r *http.Request) {
	amount, err := h.catalog.StockBalance(r.Context())
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int64{"robux_amount": amount})
}
