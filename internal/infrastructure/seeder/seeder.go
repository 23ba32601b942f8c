package seeder

import (
	"context"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/saradorri/edrewards/internal/usecase/user"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Seeder handles database seeding operations
type Seeder struct {
	userRepo    domain.UserRepository
	machineRepo domain.MachineRepository
	logger      *logger.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(userRepo domain.UserRepository, machineRepo domain.MachineRepository, log *logger.Logger) *Seeder {
	return &Seeder{
		userRepo:    userRepo,
		machineRepo: machineRepo,
		logger:      log.Named("seeder"),
	}
}

// DefaultMachineTypes is the machine catalog shipped with the service
func DefaultMachineTypes() []*domain.MachineType {
	return []*domain.MachineType{
		{ID: "starter", Name: "Starter Rig", Price: 10000, DailyEarnings: decimal.NewFromInt(10)},
		{ID: "miner", Name: "Miner", Price: 50000, DailyEarnings: decimal.NewFromInt(60)},
		{ID: "pro", Name: "Pro Miner", Price: 100000, DailyEarnings: decimal.NewFromInt(130)},
		{ID: "farm", Name: "Mining Farm", Price: 250000, DailyEarnings: decimal.NewFromInt(350)},
	}
}

// SeedMachineTypes creates or updates the machine catalog
func (s *Seeder) SeedMachineTypes(ctx context.Context) error {
	s.logger.Info("Seeding machine types...")
	for _, machineType := range DefaultMachineTypes() {
		if err := s.machineRepo.UpsertType(ctx, machineType); err != nil {
			s.logger.Error("Error upserting machine type", zap.String("machineTypeID", machineType.ID), zap.Error(err))
			return err
		}
	}
	s.logger.Info("Machine type seeding completed successfully")
	return nil
}

// SeedUsers seeds the database with initial users
func (s *Seeder) SeedUsers(ctx context.Context) error {
	s.logger.Info("Seeding users...")

	passwordHash := user.HashPassword("password123")
	referrer := "USER1REF"

	users := []*domain.User{
		{ID: "usr_admin", Username: "admin", Role: domain.RoleAdmin, ReferralCode: "ADMINREF"},
		{ID: "usr_1", Username: "user1", Role: domain.RoleUser, ReferralCode: "USER1REF", Phone: "677123456"},
		{ID: "usr_2", Username: "user2", Role: domain.RoleUser, ReferralCode: "USER2REF", ReferredBy: &referrer},
		{ID: "usr_3", Username: "user3", Role: domain.RoleUser, ReferralCode: "USER3REF", ReferredBy: &referrer},
	}

	for _, u := range users {
		existingUser, err := s.userRepo.GetByID(ctx, u.ID)
		if err != nil {
			s.logger.Warn("Error checking existing user, skipping", zap.String("userID", u.ID), zap.Error(err))
			continue
		}

		if existingUser != nil {
			s.logger.Info("User already exists, skipping", zap.String("userID", u.ID))
			continue
		}

		u.Password = passwordHash
		if err := s.userRepo.Create(ctx, u); err != nil {
			s.logger.Error("Error creating user", zap.String("userID", u.ID), zap.Error(err))
			return err
		}
		s.logger.Info("Successfully created user", zap.String("userID", u.ID), zap.String("username", u.Username))
	}

	s.logger.Info("User seeding completed successfully")
	return nil
}
