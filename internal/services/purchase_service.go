package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"sync/atomic"

	stderrors "errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/pikoUsername/roblox-searcher-backend/internal/config"
	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/automation"
	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/kafka"
	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/observability"
	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
	"github.com/pikoUsername/roblox-searcher-backend/internal/repository"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

var gamePassURLRe = regexp.MustCompile(`^https://www\.roblox\.com/game-pass/(\d+)(/.*)?$`)

type BuyRobuxRequest struct {
	GameID         int64           `json:"game_id"`
	RobuxAmount    int64           `json:"robux_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	RobloxUsername string          `json:"roblox_username"`
	Email          string          `json:"email,omitempty"`
	BonusUsername  string          `json:"bonus_username,omitempty"`
	WithdrawalID   int64           `json:"bonus_withdrawal_id,omitempty"`
}

type BuyByURLRequest struct {
	URL            string `json:"url"`
	Amount         int64  `json:"amount"`
	RobloxUsername string `json:"roblox_username"`
}

// TransactionSummary is what the caller gets back right after dispatch.
// Successful is always false here: purchase completion is asynchronous and
// reported on the result topic.
type TransactionSummary struct {
	ID              uuid.UUID       `json:"id"`
	RobloxName      string          `json:"roblox_name"`
	RobuxAmount     int64           `json:"robux_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	Successful      bool            `json:"successful"`
	CouponActivated bool            `json:"coupon_activated"`
}

// purchaseCommand is the message handed to the buyer worker.
type purchaseCommand struct {
	URL           string `json:"url"`
	Price         int64  `json:"price"`
	TxID          int64  `json:"tx_id"`
	TransactionID string `json:"transaction_id"`
}

type PurchaseService interface {
	BuyRobux(ctx context.Context, req BuyRobuxRequest) (*TransactionSummary, error)
	BuyRobuxByURL(ctx context.Context, req BuyByURLRequest) (*TransactionSummary, error)
	FindListing(ctx context.Context, gameID, robuxAmount int64, sellerName string) (models.GamePass, error)
	CheckAlreadyPurchased(ctx context.Context, gameID, robuxAmount int64, sellerName string) (bool, error)
}

type purchaseService struct {
	catalog         CatalogService
	transactionRepo repository.TransactionRepository
	bonusRepo       repository.BonusRepository
	withdrawals     WithdrawalService
	poller          automation.ConfirmationPoller
	dispatcher      kafka.Dispatcher
	pricing         config.Pricing
	cache           config.CacheConfig

	seq atomic.Int64
}

func NewPurchaseService(
	catalog CatalogService,
	transactionRepo repository.TransactionRepository,
	bonusRepo repository.BonusRepository,
	withdrawals WithdrawalService,
	poller automation.ConfirmationPoller,
	dispatcher kafka.Dispatcher,
	pricing config.Pricing,
	cache config.CacheConfig,
) *purchaseService {
	return &purchaseService{
		catalog:         catalog,
		transactionRepo: transactionRepo,
		bonusRepo:       bonusRepo,
		withdrawals:     withdrawals,
		poller:          poller,
		dispatcher:      dispatcher,
		pricing:         pricing,
		cache:           cache,
	}
}

func (s *purchaseService) BuyRobux(ctx context.Context, req BuyRobuxRequest) (*TransactionSummary, error) {
	tracer := otel.Tracer("purchase-service")
	ctx, span := tracer.Start(ctx, "BuyRobux")
	defer span.End()

	if req.GameID <= 0 || req.RobuxAmount <= 0 || req.RobloxUsername == "" {
		span.SetStatus(codes.Error, "invalid purchase request")
		observability.PurchaseOutcomes.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: game id, robux amount and roblox username are required", pkgerrors.ErrInvalidInput)
	}

	// Low-value requests are withdrawal redemptions and must carry a live
	// authorization id. Consuming it makes the authorization single use.
	if req.RobuxAmount <= s.pricing.WithdrawalThreshold {
		if req.WithdrawalID == 0 {
			observability.PurchaseOutcomes.WithLabelValues("rejected").Inc()
			return nil, pkgerrors.ErrWithdrawalRequired
		}
		ok, err := s.withdrawals.Consume(ctx, req.WithdrawalID)
		if err != nil {
			return nil, err
		}
		if !ok {
			slog.Warn("withdrawal authorization missing or expired", "withdrawal_id", req.WithdrawalID)
			observability.PurchaseOutcomes.WithLabelValues("rejected").Inc()
			return nil, pkgerrors.ErrWithdrawalRequired
		}
	}

	passes, err := s.catalog.GamePasses(ctx, req.GameID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	target := TargetPrice(req.RobuxAmount, s.pricing.MarkupFactor)
	slog.Info("matching gamepass listing", "game_id", req.GameID, "target_price", target, "seller", req.RobloxUsername)
	listing, err := MatchListing(passes, target, req.RobloxUsername)
	if err != nil {
		observability.PurchaseOutcomes.WithLabelValues("not_found").Inc()
		return nil, err
	}

	// A marker present at this point means a listing for this seller is
	// already owned by the buyer account: there is an unresolved purchase in
	// flight, so a new one would conflict. Absence is the expected case.
	marker, err := s.poller.WaitForMarker(ctx, s.cache.ConfirmPollTimeout)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if marker == automation.MarkerPresent {
		observability.PurchaseOutcomes.WithLabelValues("conflict").Inc()
		return nil, pkgerrors.ErrAlreadyPurchased
	}

	tx := &models.Transaction{
		ID:             uuid.New(),
		Amount:         req.PaidAmount,
		RobuxAmount:    decimal.NewFromInt(target),
		GameID:         req.GameID,
		GamepassID:     listing.ID,
		Email:          req.Email,
		RobloxUsername: req.RobloxUsername,
		Status:         models.StatusPending,
	}
	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: persist transaction: %v", pkgerrors.ErrUpstream, err)
	}

	if err := s.dispatch(ctx, gamePassURL(listing.ID), target, tx.ID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	couponActivated := s.creditReferral(ctx, req.BonusUsername, req.RobloxUsername)

	observability.PurchaseOutcomes.WithLabelValues("dispatched").Inc()
	slog.Info("purchase dispatched", "transaction_id", tx.ID, "gamepass_id", listing.ID, "price", target, "coupon_activated", couponActivated)
	return &TransactionSummary{
		ID:              tx.ID,
		RobloxName:      listing.SellerName,
		RobuxAmount:     target,
		PaidAmount:      req.PaidAmount,
		Successful:      false,
		CouponActivated: couponActivated,
	}, nil
}

func (s *purchaseService) BuyRobuxByURL(ctx context.Context, req BuyByURLRequest) (*TransactionSummary, error) {
	tracer := otel.Tracer("purchase-service")
	ctx, span := tracer.Start(ctx, "BuyRobuxByURL")
	defer span.End()

	match := gamePassURLRe.FindStringSubmatch(req.URL)
	if match == nil {
		return nil, pkgerrors.ErrInvalidGamePassURL
	}
	if req.Amount <= 0 || req.RobloxUsername == "" {
		return nil, fmt.Errorf("%w: amount and roblox username are required", pkgerrors.ErrInvalidInput)
	}
	gamepassID, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return nil, pkgerrors.ErrInvalidGamePassURL
	}

	paid := decimal.NewFromInt(req.Amount).Mul(decimal.NewFromFloat(s.pricing.RobuxRate))
	tx := &models.Transaction{
		ID:             uuid.New(),
		Amount:         paid,
		RobuxAmount:    decimal.NewFromInt(req.Amount),
		GamepassID:     gamepassID,
		RobloxUsername: req.RobloxUsername,
		Status:         models.StatusPending,
	}
	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: persist transaction: %v", pkgerrors.ErrUpstream, err)
	}

	if err := s.dispatch(ctx, req.URL, req.Amount, tx.ID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	slog.Info("url purchase dispatched", "transaction_id", tx.ID, "gamepass_id", gamepassID, "price", req.Amount)
	return &TransactionSummary{
		ID:          tx.ID,
		RobloxName:  req.RobloxUsername,
		RobuxAmount: req.Amount,
		PaidAmount:  paid,
		Successful:  false,
	}, nil
}

// FindListing computes the markup-adjusted target price and matches it against
// the game's current listings, without touching the purchase state machine.
func (s *purchaseService) FindListing(ctx context.Context, gameID, robuxAmount int64, sellerName string) (models.GamePass, error) {
	passes, err := s.catalog.GamePasses(ctx, gameID)
	if err != nil {
		return models.GamePass{}, err
	}
	return MatchListing(passes, TargetPrice(robuxAmount, s.pricing.MarkupFactor), sellerName)
}

// CheckAlreadyPurchased runs the matching and polling stages without creating
// a transaction or dispatching, so a caller can probe before committing funds.
func (s *purchaseService) CheckAlreadyPurchased(ctx context.Context, gameID, robuxAmount int64, sellerName string) (bool, error) {
	tracer := otel.Tracer("purchase-service")
	ctx, span := tracer.Start(ctx, "CheckAlreadyPurchased")
	defer span.End()

	passes, err := s.catalog.GamePasses(ctx, gameID)
	if err != nil {
		return false, err
	}

	target := TargetPrice(robuxAmount, s.pricing.MarkupFactor)
	if _, err := MatchListing(passes, target, sellerName); err != nil {
		return false, err
	}

	marker, err := s.poller.WaitForMarker(ctx, s.cache.ConfirmPollTimeout)
	if err != nil {
		return false, err
	}
	return marker == automation.MarkerPresent, nil
}

func (s *purchaseService) dispatch(ctx context.Context, url string, price int64, txID uuid.UUID) error {
	cmd := purchaseCommand{
		URL:           url,
		Price:         price,
		TxID:          s.seq.Add(1),
		TransactionID: txID.String(),
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("%w: marshal purchase command: %v", pkgerrors.ErrUpstream, err)
	}
	if err := s.dispatcher.Send(ctx, cmd.TxID, payload); err != nil {
		return fmt.Errorf("%w: dispatch purchase command: %v", pkgerrors.ErrUpstream, err)
	}
	return nil
}

// creditReferral applies the referral reward when the named player has a
// bonus record. A missing record means the referral silently has no effect;
// nothing here may fail the purchase.
func (s *purchaseService) creditReferral(ctx context.Context, bonusUsername, buyerName string) bool {
	if bonusUsername == "" {
		return false
	}

	if _, err := s.bonusRepo.GetByName(ctx, bonusUsername); err != nil {
		if !stderrors.Is(err, pkgerrors.ErrBonusNotFound) {
			slog.Error("failed to look up referral record", "bonus_username", bonusUsername, "error", err)
		}
		return false
	}

	if _, err := s.bonusRepo.CreditReferral(ctx, bonusUsername, s.pricing.ReferralReward, buyerName); err != nil {
		slog.Error("failed to credit referral", "bonus_username", bonusUsername, "error", err)
		return false
	}

	slog.Info("referral credited", "bonus_username", bonusUsername, "reward", s.pricing.ReferralReward)
	return true
}

func gamePassURL(gamepassID int64) string {
	return fmt.Sprintf("https://www.roblox.com/game-pass/%d/", gamepassID)
}
