package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MachineState is derived from a machine row and the current time
type MachineState string

const (
	MachineStateIdle      MachineState = "idle"
	MachineStateActive    MachineState = "active"
	MachineStateClaimable MachineState = "claimable"
)

// MachineProjection is the server-computed view a client renders its timer from
type MachineProjection struct {
	UserMachineID    string          `json:"user_machine_id"`
	MachineTypeID    string          `json:"machine_type_id"`
	Name             string          `json:"name,omitempty"`
	State            MachineState    `json:"state"`
	StartTime        *time.Time      `json:"start_time,omitempty"`
	PeriodSeconds    int64           `json:"period_seconds"`
	ElapsedSeconds   int64           `json:"elapsed_seconds"`
	RemainingSeconds int64           `json:"remaining_seconds"`
	Progress         float64         `json:"progress"`
	DailyEarnings    decimal.Decimal `json:"daily_earnings"`
	TotalEarned      decimal.Decimal `json:"total_earned"`
	ServerTime       time.Time       `json:"server_time"`
}

// ClaimResult is the outcome of a claim. A retry of an already claimed period
// has AlreadyClaimed set and carries the originally credited amount.
type ClaimResult struct {
	UserMachineID  string            `json:"user_machine_id"`
	CreditedAmount decimal.Decimal   `json:"credited_amount"`
	AlreadyClaimed bool              `json:"already_claimed"`
	TransactionID  string            `json:"transaction_id,omitempty"`
	Balance        *Balance          `json:"balance,omitempty"`
	Machine        MachineProjection `json:"machine"`
}

// AdRewardResult is the outcome of an ad reward event
type AdRewardResult struct {
	SessionID      string          `json:"session_id"`
	CreditedAmount decimal.Decimal `json:"credited_amount"`
	Duplicate      bool            `json:"duplicate"`
	TransactionID  string          `json:"transaction_id"`
	Balance        *Balance        `json:"balance,omitempty"`
}

// EarningsUseCase covers machine activation, claims and ad rewards
type EarningsUseCase interface {
	ListMachineTypes(ctx context.Context) ([]*MachineType, error)
	ListMachines(ctx context.Context, userID string) ([]MachineProjection, error)
	Activate(ctx context.Context, userID, userMachineID string) (*MachineProjection, error)
	Claim(ctx context.Context, userID, userMachineID string) (*ClaimResult, error)
	StartAdSession(ctx context.Context, userID string) (*AdSession, error)
	RewardAd(ctx context.Context, userID, sessionID string, reportedAmount decimal.Decimal) (*AdRewardResult, error)
}
