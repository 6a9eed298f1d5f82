package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pikoUsername/roblox-searcher-backend/internal/repository"
	service "github.com/pikoUsername/roblox-searcher-backend/internal/services"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

type Handler struct {
	purchases    service.PurchaseService
	catalog      service.CatalogService
	bots         service.BotService
	bonuses      service.BonusService
	withdrawals  service.WithdrawalService
	sessions     service.SessionService
	auth         service.AuthService
	transactions repository.TransactionRepository

	startedAt time.Time
}

func NewHandler(
	purchases service.PurchaseService,
	catalog service.CatalogService,
	bots service.BotService,
	bonuses service.BonusService,
	withdrawals service.WithdrawalService,
	sessions service.SessionService,
	auth service.AuthService,
	transactions repository.TransactionRepository,
) *Handler {
	return &Handler{
		purchases:    purchases,
		catalog:      catalog,
		bots:         bots,
		bonuses:      bonuses,
		withdrawals:  withdrawals,
		sessions:     sessions,
		auth:         auth,
		transactions: transactions,
		startedAt:    time.Now(),
	}
}

func (h *Handler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/heartbeat", h.Heartbeat).Methods("GET")
	r.HandleFunc("/search/player/{name}", h.SearchPlayer).Methods("GET")
	r.HandleFunc("/search/games", h.SearchGames).Methods("GET")
	r.HandleFunc("/search/{game_id}/gamepass", h.SearchGamePasses).Methods("GET")
	r.HandleFunc("/robux_amount", h.RobuxAmount).Methods("GET")
	r.HandleFunc("/bonuses/{roblox_name}", h.GetBonuses).Methods("GET")
	r.HandleFunc("/bonuses/task", h.AddBonusTask).Methods("POST")
	r.HandleFunc("/bonuses/withdrawal", h.IssueWithdrawal).Methods("POST")
	r.HandleFunc("/bonuses/withdrawal/{id}", h.CheckWithdrawal).Methods("GET")
	r.HandleFunc("/create-token", h.CreateToken).Methods("POST")
	r.HandleFunc("/login", h.AdminLogin).Methods("POST")
}

// RegisterSessionRoutes are gated by the session-token middleware.
func (h *Handler) RegisterSessionRoutes(r *mux.Router) {
	r.HandleFunc("/buy_robux", h.BuyRobux).Methods("POST")
	r.HandleFunc("/buy_robux/url", h.BuyRobuxByURL).Methods("POST")
	r.HandleFunc("/buy_robux/match", h.MatchGamePass).Methods("GET")
	r.HandleFunc("/buy_robux/check", h.CheckPurchased).Methods("GET")
}

// RegisterAdminRoutes are gated by the admin JWT middleware.
func (h *Handler) RegisterAdminRoutes(r *mux.Router) {
	r.HandleFunc("/bots", h.CreateBot).Methods("POST")
	r.HandleFunc("/bots", h.ListBots).Methods("GET")
	r.HandleFunc("/bots/{id}", h.GetBot).Methods("GET")
	r.HandleFunc("/bots/{id}", h.UpdateBot).Methods("PATCH")
	r.HandleFunc("/bots/{id}", h.DeleteBot).Methods("DELETE")
	r.HandleFunc("/bots/{id}/select", h.SelectBot).Methods("POST")
	r.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	r.HandleFunc("/transactions/{id}", h.GetTransaction).Methods("GET")
	r.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods("DELETE")
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps service errors onto HTTP statuses by taxonomy head.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pkgerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, pkgerrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, pkgerrors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, pkgerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pkgerrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, pkgerrors.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startedAt).String(),
	})
}
