package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
	service "github.com/pikoUsername/roblox-searcher-backend/internal/services"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

type stubPurchases struct {
	service.PurchaseService
	summary *service.TransactionSummary
	err     error
}

func (s *stubPurchases) BuyRobux(ctx context.Context, req service.BuyRobuxRequest) (*service.TransactionSummary, error) {
	return s.summary, s.err
}

type stubSessions struct {
	service.SessionService
	token *models.SessionToken
	err   error
}

func (s *stubSessions) Create(ctx context.Context, expiry time.Duration) (*models.SessionToken, error) {
	if s.token != nil {
		return s.token, s.err
	}
	return &models.SessionToken{ID: uuid.New(), ExpiresAt: time.Now().Add(expiry), IsActive: true}, s.err
}

func newTestHandler(purchases service.PurchaseService, sessions service.SessionService) *Handler {
	return NewHandler(purchases, nil, nil, nil, nil, sessions, nil, nil)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{pkgerrors.ErrInvalidInput, http.StatusBadRequest},
		{pkgerrors.ErrWithdrawalRequired, http.StatusBadRequest},
		{pkgerrors.ErrRateLimited, http.StatusTooManyRequests},
		{pkgerrors.ErrTransactionNotFound, http.StatusNotFound},
		{pkgerrors.ErrAlreadyPurchased, http.StatusConflict},
		{pkgerrors.ErrUpstream, http.StatusBadGateway},
		{pkgerrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "error %v", tt.err)
	}
}

func TestHandler_BuyRobux(t *testing.T) {
	body := `{"game_id":123,"robux_amount":100,"paid_amount":"100","roblox_username":"alice"}`

	t.Run("accepted", func(t *testing.T) {
		h := newTestHandler(&stubPurchases{summary: &service.TransactionSummary{
			ID:          uuid.New(),
			RobloxName:  "alice",
			RobuxAmount: 143,
			PaidAmount:  decimal.NewFromInt(100),
		}}, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/buy/robux", strings.NewReader(body))
		h.BuyRobux(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Contains(t, rec.Body.String(), `"successful":false`)
	})

	t.Run("stale quote maps to payment required", func(t *testing.T) {
		h := newTestHandler(&stubPurchases{err: pkgerrors.ErrListingNotFound}, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/buy/robux", strings.NewReader(body))
		h.BuyRobux(rec, req)

		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	})

	t.Run("unresolved purchase maps to conflict", func(t *testing.T) {
		h := newTestHandler(&stubPurchases{err: pkgerrors.ErrAlreadyPurchased}, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/buy/robux", strings.NewReader(body))
		h.BuyRobux(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("upstream throttling maps to 429", func(t *testing.T) {
		h := newTestHandler(&stubPurchases{err: pkgerrors.ErrRateLimited}, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/buy/robux", strings.NewReader(body))
		h.BuyRobux(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestHandler_CreateToken(t *testing.T) {
	t.Run("loopback caller gets a token", func(t *testing.T) {
		h := newTestHandler(nil, &stubSessions{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/token", nil)
		req.RemoteAddr = "127.0.0.1:54321"
		h.CreateToken(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id"`)
	})

	t.Run("remote caller is rejected", func(t *testing.T) {
		h := newTestHandler(nil, &stubSessions{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/token", nil)
		req.RemoteAddr = "203.0.113.7:54321"
		h.CreateToken(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("bad expiry", func(t *testing.T) {
		h := newTestHandler(nil, &stubSessions{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/token?expiry_minutes=-5", nil)
		req.RemoteAddr = "127.0.0.1:54321"
		h.CreateToken(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_CheckWithdrawal_BadID(t *testing.T) {
	h := newTestHandler(nil, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bonuses/withdrawal/abc", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "abc"})
	h.CheckWithdrawal(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
