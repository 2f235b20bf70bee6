package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows for clients and
// operators.
type AuthService struct {
	clients    repository.ClientRepository
	operators  repository.OperatorRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	ClientRepo   repository.ClientRepository
	OperatorRepo repository.OperatorRepository
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		clients:    deps.ClientRepo,
		operators:  deps.OperatorRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     deps.Logger,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterClient creates a new client account and issues a token.
func (s *AuthService) RegisterClient(ctx context.Context, name, email, company, password string) (*domain.Client, string, time.Time, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, "", time.Time{}, errorutil.NewValidationError("name, email, password required", nil)
	}

	if _, err := s.clients.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, errorutil.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, errorutil.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, errorutil.MapError(err)
	}

	client := &domain.Client{
		Name:         name,
		Email:        email,
		Company:      strings.TrimSpace(company),
		PasswordHash: hash,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, "", time.Time{}, errorutil.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(client.ID, domain.SubjectTypeClient)
	if err != nil {
		return nil, "", time.Time{}, errorutil.MapError(err)
	}
	return client, token, exp, nil
}

// LoginClient authenticates a client and issues a token.
func (s *AuthService) LoginClient(ctx context.Context, email, password string) (*domain.Client, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	client, err := s.clients.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, invalidCredentials(err)
	}
	if err := auth.ComparePassword(client.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, errorutil.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(client.ID, domain.SubjectTypeClient)
	if err != nil {
		return nil, "", time.Time{}, errorutil.MapError(err)
	}
	return client, token, exp, nil
}

// LoginOperator authenticates an operator and issues a token.
func (s *AuthService) LoginOperator(ctx context.Context, email, password string) (*domain.Operator, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	operator, err := s.operators.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, invalidCredentials(err)
	}
	if !operator.Active {
		return nil, "", time.Time{}, errorutil.NewForbidden("operator account disabled")
	}
	if err := auth.ComparePassword(operator.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, errorutil.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(operator.ID, domain.SubjectTypeOperator)
	if err != nil {
		return nil, "", time.Time{}, errorutil.MapError(err)
	}
	return operator, token, exp, nil
}

// BootstrapOperator seeds the first operator account when none exist yet.
// Does nothing when any operator row is already present.
func (s *AuthService) BootstrapOperator(ctx context.Context, cfg config.OperatorBootstrapConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}

	count, err := s.operators.Count(ctx)
	if err != nil {
		return errorutil.MapError(err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.Password, s.bcryptCost)
	if err != nil {
		return errorutil.MapError(err)
	}

	operator := &domain.Operator{
		Name:         cfg.Name,
		Email:        strings.ToLower(strings.TrimSpace(cfg.Email)),
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.operators.Create(ctx, operator); err != nil {
		return errorutil.MapError(err)
	}
	s.logger.Info("bootstrap operator created", zap.String("email", operator.Email))
	return nil
}

func invalidCredentials(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errorutil.NewUnauthorized("invalid credentials")
	}
	return errorutil.MapError(err)
}
