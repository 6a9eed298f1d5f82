package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	StatusPending          TransactionStatus = "pending"
	StatusPendingToResolve TransactionStatus = "pending_to_resolve"
	StatusCompleted        TransactionStatus = "completed"
	StatusClosed           TransactionStatus = "closed"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPendingToResolve, StatusCompleted, StatusClosed:
		return true
	}
	return false
}

// Transaction is one purchase attempt. Amount is what the customer paid,
// RobuxAmount is the markup-adjusted listing price that was actually matched
// on the marketplace, never the raw requested amount.
type Transaction struct {
	ID             uuid.UUID         `json:"id"`
	Amount         decimal.Decimal   `json:"amount"`
	RobuxAmount    decimal.Decimal   `json:"robux_amount"`
	GameID         int64             `json:"game_id"`
	GamepassID     int64             `json:"gamepass_id"`
	Email          string            `json:"email,omitempty"`
	RobloxUsername string            `json:"roblox_username"`
	Status         TransactionStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
