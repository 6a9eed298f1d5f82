package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	robloxName := r.URL.Query().Get("roblox_name")
	if robloxName == "" {
		h.writeError(w, http.StatusBadRequest, errors.New("roblox_name is required"))
		return
	}

	txs, err := h.transactions.ListByPlayer(r.Context(), robloxName)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, txs)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("transaction id must be a uuid"))
		return
	}

	tx, err := h.transactions.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("transaction id must be a uuid"))
		return
	}

	if err := h.transactions.Delete(r.Context(), id); err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
