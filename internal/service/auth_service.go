package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/courseforge/backend/internal/domain"
	"github.com/courseforge/backend/internal/dto"
	"github.com/courseforge/backend/internal/repository"
	"github.com/courseforge/backend/internal/utils"
)

// TokenBlacklist is the revocation surface the auth service needs.
// *TokenBlacklistService is the Redis-backed implementation.
type TokenBlacklist interface {
	AddToken(ctx context.Context, token string, expiry time.Duration) error
	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)
}

// authService implements AuthService interface
type authService struct {
	userRepo           repository.UserRepository
	tokenRepo          repository.TokenRepository
	emailTokenRepo     repository.EmailTokenRepository
	jwtManager         *utils.JWTManager
	blacklistService   TokenBlacklist
	mailer             Mailer
	logger             *zap.Logger
	bcryptCost         int
	refreshTokenExpiry time.Duration
	emailTokenExpiry   time.Duration
	resetTokenExpiry   time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	emailTokenRepo repository.EmailTokenRepository,
	jwtManager *utils.JWTManager,
	blacklistService TokenBlacklist,
	mailer Mailer,
	logger *zap.Logger,
	bcryptCost int,
	refreshTokenExpiry, emailTokenExpiry, resetTokenExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:           userRepo,
		tokenRepo:          tokenRepo,
		emailTokenRepo:     emailTokenRepo,
		jwtManager:         jwtManager,
		blacklistService:   blacklistService,
		mailer:             mailer,
		logger:             logger,
		bcryptCost:         bcryptCost,
		refreshTokenExpiry: refreshTokenExpiry,
		emailTokenExpiry:   emailTokenExpiry,
		resetTokenExpiry:   resetTokenExpiry,
	}
}

// Register registers a new user and issues a first token pair
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResponseWithRefreshToken, error) {
	email := utils.SanitizeEmail(req.Email)

	role := req.Role
	if role == "" {
		role = domain.RoleStudent
	}

	// Check if user already exists
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("user with email %s already exists: %w", email, ErrConflict)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           email,
		PasswordHash:    passwordHash,
		Role:            role,
		IsActive:        true,
		IsEmailVerified: false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, fmt.Errorf("user with email %s already exists: %w", email, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.issueVerificationToken(ctx, user); err != nil {
		// Verification can be re-requested later; registration still succeeds
		s.logger.Error("failed to issue verification token", zap.String("user_id", user.ID), zap.Error(err))
	}
	s.mailer.SendWelcome(user.Email, user.FirstName)

	return s.generateAuthResponseWithRefreshToken(ctx, user)
}

// issueVerificationToken prunes old verification tokens and issues a fresh one,
// so at most one verification token per user is live.
func (s *authService) issueVerificationToken(ctx context.Context, user *domain.User) error {
	if err := s.emailTokenRepo.DeleteByUserAndPurpose(ctx, user.ID, domain.EmailTokenVerification); err != nil {
		return err
	}

	token, err := utils.GenerateRandomToken(32)
	if err != nil {
		return err
	}

	entity := &domain.EmailToken{
		UserID:    user.ID,
		Token:     token,
		Purpose:   domain.EmailTokenVerification,
		ExpiresAt: time.Now().Add(s.emailTokenExpiry),
	}
	if err := s.emailTokenRepo.Create(ctx, entity); err != nil {
		return err
	}

	s.mailer.SendVerification(user.Email, token)
	return nil
}

// Login authenticates a user
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*AuthResponseWithRefreshToken, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("user account is inactive: %w", ErrUnauthorized)
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		// Best effort, never fails the login
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return s.generateAuthResponseWithRefreshToken(ctx, user)
}

// RefreshToken rotates a refresh token: the presented token must be validly
// signed AND still have a live row. Rotation deletes the old row, so a second
// refresh with the same token fails even though its signature is still valid.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponseWithRefreshToken, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	}

	tokenHash := s.hashToken(refreshToken)

	dbToken, err := s.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("refresh token revoked or rotated: %w", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	if dbToken.UserID != userID || time.Now().After(dbToken.ExpiresAt) {
		return nil, fmt.Errorf("refresh token expired: %w", ErrUnauthorized)
	}

	isBlacklisted, err := s.blacklistService.IsTokenBlacklisted(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if isBlacklisted {
		return nil, fmt.Errorf("refresh token is blacklisted: %w", ErrUnauthorized)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user missing for refresh token: %w", ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user account is inactive: %w", ErrUnauthorized)
	}

	// Invalidate the old token before issuing the new pair. A crash between
	// the delete and the insert forces a re-login but never leaves the old
	// token honored after rotation began.
	if err := s.blacklistService.AddToken(ctx, refreshToken, s.refreshTokenExpiry); err != nil {
		s.logger.Warn("failed to blacklist rotated token", zap.Error(err))
	}
	if err := s.tokenRepo.DeleteByTokenHash(ctx, tokenHash); err != nil {
		s.logger.Warn("failed to delete rotated token", zap.Error(err))
	}

	return s.generateAuthResponseWithRefreshToken(ctx, user)
}

// Logout revokes the presented refresh token
func (s *authService) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	tokenHash := s.hashToken(refreshToken)

	dbToken, err := s.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil || dbToken.UserID != userID {
		// Unknown or foreign token: nothing to revoke
		return nil
	}

	if err := s.blacklistService.AddToken(ctx, refreshToken, s.refreshTokenExpiry); err != nil {
		s.logger.Warn("failed to blacklist token on logout", zap.Error(err))
	}
	if err := s.tokenRepo.DeleteByTokenHash(ctx, tokenHash); err != nil {
		s.logger.Warn("failed to delete token on logout", zap.Error(err))
	}

	return nil
}

// GetUser gets the full user record; callers serialize via Public()
func (s *authService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateProfile updates the user's name fields and optionally the avatar URL
func (s *authService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest, avatarURL *string) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	if avatarURL != nil {
		user.AvatarURL = avatarURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// ChangePassword verifies the current password, sets the new one and revokes
// every refresh token the user holds.
func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return fmt.Errorf("current password is incorrect: %w", ErrUnauthorized)
	}

	newHash, err := utils.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.tokenRepo.DeleteByUserID(ctx, userID); err != nil {
		s.logger.Warn("failed to revoke refresh tokens on password change",
			zap.String("user_id", userID), zap.Error(err))
	}

	return nil
}

// ForgotPassword issues a reset token. The response is identical whether the
// email exists or not, to avoid enumeration. Older reset tokens stay live.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, err := utils.GenerateRandomToken(32)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	entity := &domain.EmailToken{
		UserID:    user.ID,
		Token:     token,
		Purpose:   domain.EmailTokenPasswordReset,
		ExpiresAt: time.Now().Add(s.resetTokenExpiry),
	}
	if err := s.emailTokenRepo.Create(ctx, entity); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	s.mailer.SendPasswordReset(user.Email, token)
	return nil
}

// ResetPassword redeems a reset token exactly once
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	entity, err := s.emailTokenRepo.GetByToken(ctx, token, domain.EmailTokenPasswordReset)
	if err != nil {
		return fmt.Errorf("invalid or expired reset token: %w", ErrValidation)
	}

	if !entity.IsUsable() {
		return fmt.Errorf("invalid or expired reset token: %w", ErrValidation)
	}

	// MarkUsed only flips an unused row, so a concurrent double-redeem loses
	if err := s.emailTokenRepo.MarkUsed(ctx, entity.ID); err != nil {
		return fmt.Errorf("invalid or expired reset token: %w", ErrValidation)
	}

	newHash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, entity.UserID, newHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.tokenRepo.DeleteByUserID(ctx, entity.UserID); err != nil {
		s.logger.Warn("failed to revoke refresh tokens on password reset",
			zap.String("user_id", entity.UserID), zap.Error(err))
	}

	return nil
}

// VerifyEmail redeems a verification token exactly once
func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	entity, err := s.emailTokenRepo.GetByToken(ctx, token, domain.EmailTokenVerification)
	if err != nil {
		return fmt.Errorf("invalid or expired verification token: %w", ErrValidation)
	}

	if !entity.IsUsable() {
		return fmt.Errorf("invalid or expired verification token: %w", ErrValidation)
	}

	if err := s.emailTokenRepo.MarkUsed(ctx, entity.ID); err != nil {
		return fmt.Errorf("invalid or expired verification token: %w", ErrValidation)
	}

	if err := s.userRepo.SetEmailVerified(ctx, entity.UserID); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}

	return nil
}

// ValidateToken validates an access token
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	isBlacklisted, err := s.blacklistService.IsTokenBlacklisted(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if isBlacklisted {
		return nil, fmt.Errorf("token is blacklisted: %w", ErrUnauthorized)
	}

	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, utils.ErrTokenExpired
		}
		return nil, fmt.Errorf("invalid token: %w", ErrUnauthorized)
	}

	return claims, nil
}

// hashToken hashes a token using SHA256
func (s *authService) hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
