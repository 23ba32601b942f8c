package user

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/auth"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// UserUseCase implements domain.UserUseCase
type UserUseCase struct {
	userRepo         domain.UserRepository
	notificationRepo domain.NotificationRepository
	jwtSvc           auth.JWTService
	logger           *logger.Logger
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(userRepo domain.UserRepository, notificationRepo domain.NotificationRepository, jwtSvc auth.JWTService, logger *logger.Logger) domain.UserUseCase {
	return &UserUseCase{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		jwtSvc:           jwtSvc,
		logger:           logger.Named("user"),
	}
}

// Authenticate validates user credentials and returns a JWT token carrying the role
func (uc *UserUseCase) Authenticate(ctx context.Context, username, password string) (string, error) {
	log := uc.logger.WithContext(ctx)
	log.Info("Starting user authentication", zap.String("username", username))

	if username == "" || password == "" {
		log.Warn("Authentication attempt with empty credentials",
			zap.String("username", username),
			zap.Bool("has_password", password != ""))
		return "", domain.NewAppError(domain.ErrCodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized, nil)
	}

	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		log.Error("Failed to get user from database during authentication",
			zap.String("username", username),
			zap.Error(err))
		return "", domain.NewPersistenceError("get user", err)
	}

	if user == nil {
		log.Warn("Authentication failed - user not found", zap.String("username", username))
		return "", domain.NewAppError(domain.ErrCodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized, nil)
	}

	if !verifyPassword(password, user.Password) {
		log.Warn("Authentication failed - invalid password",
			zap.String("user_id", user.ID),
			zap.String("username", username))
		return "", domain.NewAppError(domain.ErrCodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized, nil)
	}

	token, err := uc.jwtSvc.GenerateToken(user)
	if err != nil {
		log.Error("Failed to generate JWT token",
			zap.String("user_id", user.ID),
			zap.Error(err))
		return "", domain.NewAppError(domain.ErrCodeTokenInvalid, "Token generation failed", http.StatusInternalServerError, err)
	}

	log.Info("User authentication successful",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))
	return token, nil
}

// GetUserInfo retrieves user information by user ID
func (uc *UserUseCase) GetUserInfo(ctx context.Context, userID string) (*domain.User, error) {
	log := uc.logger.WithContext(ctx)

	if userID == "" {
		log.Warn("Empty user ID provided")
		return nil, domain.NewAppError(domain.ErrCodeInvalidFormat, "Invalid user ID", http.StatusBadRequest, nil)
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		log.Error("Failed to get user from database", zap.String("user_id", userID), zap.Error(err))
		return nil, domain.NewPersistenceError("get user", err)
	}
	if user == nil {
		log.Warn("User not found", zap.String("user_id", userID))
		return nil, domain.NewAppError(domain.ErrCodeUserNotFound, "User not found", http.StatusNotFound, nil)
	}

	return user, nil
}

// ListNotifications lists the notifications of a user, newest first
func (uc *UserUseCase) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	notifications, err := uc.notificationRepo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		uc.logger.WithContext(ctx).Error("Failed to list notifications", zap.String("user_id", userID), zap.Error(err))
		return nil, domain.NewPersistenceError("list notifications", err)
	}
	return notifications, nil
}

// MarkNotificationRead marks one notification of the user as read
func (uc *UserUseCase) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	updated, err := uc.notificationRepo.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return domain.NewPersistenceError("mark notification read", err)
	}
	if !updated {
		return domain.NewNotFoundError("Notification")
	}
	return nil
}

// verifyPassword checks a password against its stored sha256 hex hash
func verifyPassword(password, hashedPassword string) bool {
	if password == "" || hashedPassword == "" {
		return false
	}
	hash := sha256.Sum256([]byte(password))
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(hash[:])), []byte(hashedPassword)) == 1
}

// HashPassword returns the stored form of a password
func HashPassword(password string) string {
	hash := sha256.Sum256([]byte(password))
	return hex.EncodeToString(hash[:])
}
