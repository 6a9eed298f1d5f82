package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
)

func (h *Handler) GetBonuses(w http.ResponseWriter, r *http.Request) {
	robloxName := mux.Vars(r)["roblox_name"]

	bonus, err := h.bonuses.GetOrCreate(r.Context(), robloxName)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, bonus)
}

func (h *Handler) AddBonusTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RobloxName string `json:"roblox_name"`
		Task       string `json:"task"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	bonus, err := h.bonuses.AwardTask(r.Context(), req.RobloxName, models.BonusTask(req.Task))
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, bonus)
}

func (h *Handler) IssueWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := h.withdrawals.Issue(r.Context())
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]int64{"withdrawal_id": id})
}

func (h *Handler) CheckWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("withdrawal id must be numeric"))
		return
	}

	valid, err := h.withdrawals.Check(r.Context(), id)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}
