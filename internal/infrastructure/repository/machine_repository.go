package repository

import (
	"context"
	"time"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MachineRepository implements domain.MachineRepository
type MachineRepository struct {
	db *gorm.DB
}

// NewMachineRepository creates a new machine repository
func NewMachineRepository(db *gorm.DB) domain.MachineRepository {
	return &MachineRepository{db: db}
}

// GetType retrieves a machine type by ID
func (r *MachineRepository) GetType(ctx context.Context, id string) (*domain.MachineType, error) {
	return findOne[domain.MachineType](r.db.WithContext(ctx).Where("id = ?", id))
}

// ListTypes lists machine types by ascending price
func (r *MachineRepository) ListTypes(ctx context.Context) ([]*domain.MachineType, error) {
	var types []*domain.MachineType
	if err := r.db.WithContext(ctx).Order("price ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

// UpsertType creates or updates a machine type
func (r *MachineRepository) UpsertType(ctx context.Context, machineType *domain.MachineType) error {
	now := time.Now()
	if machineType.CreatedAt.IsZero() {
		machineType.CreatedAt = now
	}
	machineType.UpdatedAt = now
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "price", "daily_earnings", "updated_at"}),
		}).
		Create(machineType).Error
}

// CreateUserMachine inserts a user machine unless the user already owns that type
func (r *MachineRepository) CreateUserMachine(ctx context.Context, machine *domain.UserMachine) (bool, error) {
	now := time.Now()
	machine.CreatedAt = now
	machine.UpdatedAt = now

	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "machine_type_id"}},
			DoNothing: true,
		}).
		Create(machine)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// GetUserMachine retrieves a user machine with its type
func (r *MachineRepository) GetUserMachine(ctx context.Context, id string) (*domain.UserMachine, error) {
	return findOne[domain.UserMachine](r.db.WithContext(ctx).Preload("MachineType").Where("id = ?", id))
}

// GetUserMachineForUpdate retrieves a user machine with its type and locks the machine row
func (r *MachineRepository) GetUserMachineForUpdate(ctx context.Context, id string) (*domain.UserMachine, error) {
	machine, err := findOne[domain.UserMachine](forUpdate(r.db.WithContext(ctx)).Where("id = ?", id))
	if err != nil || machine == nil {
		return machine, err
	}

	machineType, err := r.GetType(ctx, machine.MachineTypeID)
	if err != nil {
		return nil, err
	}
	machine.MachineType = machineType
	return machine, nil
}

// GetUserMachineByType retrieves the machine of a given type owned by a user
func (r *MachineRepository) GetUserMachineByType(ctx context.Context, userID, machineTypeID string) (*domain.UserMachine, error) {
	return findOne[domain.UserMachine](r.db.WithContext(ctx).
		Where("user_id = ? AND machine_type_id = ?", userID, machineTypeID))
}

// ListUserMachines lists the machines of a user with their types
func (r *MachineRepository) ListUserMachines(ctx context.Context, userID string) ([]*domain.UserMachine, error) {
	var machines []*domain.UserMachine
	err := r.db.WithContext(ctx).Preload("MachineType").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&machines).Error
	if err != nil {
		return nil, err
	}
	return machines, nil
}

// CountUserMachines counts the machines owned by a user
func (r *MachineRepository) CountUserMachines(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.UserMachine{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Activate starts a new period if the machine is idle
func (r *MachineRepository) Activate(ctx context.Context, id string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&domain.UserMachine{}).
		Where("id = ? AND is_active = ?", id, false).
		Updates(map[string]interface{}{
			"is_active":    true,
			"activated_at": at,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// RecordClaim closes the current period of a machine
func (r *MachineRepository) RecordClaim(ctx context.Context, id string, amount decimal.Decimal, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.UserMachine{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":       false,
			"last_claim_time": at,
			"total_earned":    gorm.Expr("total_earned + ?", amount),
			"updated_at":      time.Now(),
		}).Error
}
