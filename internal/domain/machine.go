package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MachineType is seeded reference data: a purchasable machine and its daily yield
type MachineType struct {
	ID            string          `json:"id" gorm:"primaryKey;column:id;type:varchar(64)"`
	Name          string          `json:"name" gorm:"not null;type:varchar(128)"`
	Price         int64           `json:"price" gorm:"type:bigint;not null"`
	DailyEarnings decimal.Decimal `json:"daily_earnings" gorm:"type:numeric(24,8);not null"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null"`
}

// TableName specifies the table name for MachineType
func (m MachineType) TableName() string {
	return "machine_types"
}

// UserMachine is a machine owned by a user. A user owns at most one machine per type.
type UserMachine struct {
	ID                 string          `json:"id" gorm:"primaryKey;column:id;type:varchar(64)"`
	UserID             string          `json:"user_id" gorm:"not null;type:varchar(64);uniqueIndex:idx_user_machine_type"`
	MachineTypeID      string          `json:"machine_type_id" gorm:"not null;type:varchar(64);uniqueIndex:idx_user_machine_type"`
	IsActive           bool            `json:"is_active" gorm:"not null;default:false"`
	ActivatedAt        *time.Time      `json:"activated_at,omitempty"`
	LastClaimTime      *time.Time      `json:"last_claim_time,omitempty"`
	TotalEarned        decimal.Decimal `json:"total_earned" gorm:"type:numeric(24,8);not null;default:0"`
	PurchaseExternalID string          `json:"purchase_external_id" gorm:"type:varchar(191)"`
	CreatedAt          time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"not null"`

	MachineType *MachineType `json:"machine_type,omitempty" gorm:"foreignKey:MachineTypeID"`
}

// TableName specifies the table name for UserMachine
func (m UserMachine) TableName() string {
	return "user_machines"
}

// MachineRepository defines the interface for machine type and ownership data
type MachineRepository interface {
	GetType(ctx context.Context, id string) (*MachineType, error)
	ListTypes(ctx context.Context) ([]*MachineType, error)
	UpsertType(ctx context.Context, machineType *MachineType) error

	// CreateUserMachine inserts unless the (user, type) pair already exists.
	CreateUserMachine(ctx context.Context, machine *UserMachine) (bool, error)
	GetUserMachine(ctx context.Context, id string) (*UserMachine, error)
	GetUserMachineForUpdate(ctx context.Context, id string) (*UserMachine, error)
	GetUserMachineByType(ctx context.Context, userID, machineTypeID string) (*UserMachine, error)
	ListUserMachines(ctx context.Context, userID string) ([]*UserMachine, error)
	CountUserMachines(ctx context.Context, userID string) (int64, error)

	// Activate starts a new earning period; false when the machine was not idle.
	Activate(ctx context.Context, id string, at time.Time) (bool, error)
	// RecordClaim closes the current period and adds amount to the machine total.
	RecordClaim(ctx context.Context, id string, amount decimal.Decimal, at time.Time) error
}
