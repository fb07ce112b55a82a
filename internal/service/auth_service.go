package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"uiet-connect/backend/config"
	"uiet-connect/backend/internal/dto"
	"uiet-connect/backend/internal/repository"

	pkgerrors "uiet-connect/backend/pkg/errors"
)

var (
	ErrBlacklistUnavailable = errors.New("token revocation is unavailable")
	ErrTokenIDMissing       = errors.New("token carries no id")
)

// TokenBlacklist revoked token store; *redis.Client implements it
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService session operations on tokens issued by the identity service.
// Login and registration happen there.
type AuthService interface {
	// Logout revokes the token until it would have expired
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	Me(ctx context.Context, scope Scope) (*dto.MeResponse, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	blacklist TokenBlacklist
	now       Clock
	logger    *zap.Logger
}

// NewAuthService creates an AuthService
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		blacklist: blacklist,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return ErrTokenIDMissing
	}
	if s.blacklist == nil {
		return ErrBlacklistUnavailable
	}

	ttl := expiresAt.Sub(s.now())
	if expiresAt.IsZero() {
		ttl = s.cfg.Auth.AccessTokenTTL
	}
	if err := s.blacklist.BlacklistToken(ctx, tokenID, ttl); err != nil {
		s.logger.Error("failed to blacklist token", zap.Error(err))
		return ErrBlacklistUnavailable
	}
	return nil
}

func (s *authService) Me(ctx context.Context, scope Scope) (*dto.MeResponse, error) {
	resp := &dto.MeResponse{
		UserID:       scope.UserID,
		Role:         scope.Role,
		DepartmentID: scope.DepartmentID,
		Timezone:     s.cfg.Attendance.Location().String(),
	}

	dept, err := s.repo.Department.GetByID(ctx, scope.DepartmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resp, nil
		}
		s.logger.Error("failed to load department", zap.String("department_id", scope.DepartmentID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	resp.DepartmentName = dept.Name
	if dept.Timezone != "" {
		resp.Timezone = dept.Timezone
	}
	return resp, nil
}
