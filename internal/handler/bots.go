package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pikoUsername/roblox-searcher-backend/internal/repository"
)

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	token, err := h.auth.Login(r.Context(), req.Password)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) CreateBot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RobloxName string `json:"roblox_name"`
		Token      string `json:"token"`
		IsActive   bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	bot, err := h.bots.Create(r.Context(), req.RobloxName, req.Token, req.IsActive)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusCreated, bot)
}

func (h *Handler) ListBots(w http.ResponseWriter, r *http.Request) {
	bots, err := h.bots.List(r.Context())
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, bots)
}

func (h *Handler) GetBot(w http.ResponseWriter, r *http.Request) {
	id, ok := h.botID(w, r)
	if !ok {
		return
	}

	bot, err := h.bots.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, bot)
}

func (h *Handler) UpdateBot(w http.ResponseWriter, r *http.Request) {
	id, ok := h.botID(w, r)
	if !ok {
		return
	}

	var req struct {
		RobloxName *string `json:"roblox_name"`
		Token      *string `json:"token"`
		IsActive   *bool   `json:"is_active"`
		IsSelected *bool   `json:"is_selected"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	bot, err := h.bots.Update(r.Context(), id, repository.BotTokenUpdate{
		RobloxName: req.RobloxName,
		Token:      req.Token,
		IsActive:   req.IsActive,
		IsSelected: req.IsSelected,
	})
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, bot)
}

func (h *Handler) DeleteBot(w http.ResponseWriter, r *http.Request) {
	id, ok := h.botID(w, r)
	if !ok {
		return
	}

	if err := h.bots.Delete(r.Context(), id); err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SelectBot(w http.ResponseWriter, r *http.Request) {
	id, ok := h.botID(w, r)
	if !ok {
		return
	}

	bot, err := h.bots.Select(r.Context(), id)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, bot)
}

func (h *Handler) botID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("bot id must be numeric"))
		return 0, false
	}
	return id, true
}
