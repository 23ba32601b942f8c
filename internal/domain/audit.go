package domain

import (
	"context"
	"time"
)

// Admin audit actions
const (
	AuditActionRestoreBalance    = "restore_balance"
	AuditActionAdjustBalance     = "adjust_balance"
	AuditActionReconcile         = "reconcile"
	AuditActionApproveWithdrawal = "approve_withdrawal"
	AuditActionRejectWithdrawal  = "reject_withdrawal"
)

// AdminAuditLog records an administrative action
type AdminAuditLog struct {
	ID           string    `json:"id" gorm:"primaryKey;column:id;type:varchar(64)"`
	AdminID      string    `json:"admin_id" gorm:"index;not null;type:varchar(64)"`
	Action       string    `json:"action" gorm:"type:varchar(64);not null"`
	TargetUserID string    `json:"target_user_id" gorm:"index;type:varchar(64)"`
	Details      JSONB     `json:"details,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`
}

// TableName specifies the table name for AdminAuditLog
func (a AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}

// AuditRepository defines the interface for admin audit data
type AuditRepository interface {
	Create(ctx context.Context, entry *AdminAuditLog) error
	GetByTargetUserID(ctx context.Context, userID string, limit, offset int) ([]*AdminAuditLog, error)
}
