// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"
	"unicode"

	deliverycontext "brokerage/internal/delivery/context"
	"brokerage/internal/domain/entity"
	domainerrors "brokerage/internal/domain/errors"
	"brokerage/internal/domain/repository"
	"brokerage/internal/domain/service"
	"brokerage/internal/domain/valueobject"
	"brokerage/internal/errors"
	"brokerage/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const (
	minPasswordLength = 8
	// maxPasswordBytes is the bcrypt input limit.
	maxPasswordBytes = 72
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	metrics      service.MetricsRecorder
	logger       *slog.Logger
	now          func() time.Time
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Metrics      service.MetricsRecorder `optional:"true"`
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		metrics:      metricsOrNoop(params.Metrics),
		logger:       params.Logger,
		now:          time.Now,
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register validates the input, rejects a taken email and stores an active account.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	email, err := valueobject.NewEmail(input.Email)
	if err != nil {
		return nil, err
	}
	role, err := entity.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}
	if err := validatePasswordStrength(input.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed.WithDetails(err.Error()), "failed to hash password")
	}

	user := entity.NewUser(email, role, hashedPassword, input.EmployeeID)
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		exists, err := userRepo.ExistsByEmail(ctx, email.String())
		if err != nil {
			return errors.Wrap(err, "failed to check email")
		}
		if exists {
			return domainerrors.NewEmailAlreadyExistsError(email.String())
		}

		return errors.Wrap(userRepo.Create(ctx, user), "failed to create user")
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("email", email.String()), slog.Any("error", err))

		return nil, err
	}

	srv.metrics.RecordRegistration()
	srv.log(ctx).Info("User registered", slog.Any("userID", user.ID), slog.String("role", role.String()))

	return &usecase.RegisterOutput{User: user.WithoutSecret()}, nil
}

// Login verifies the credentials and stamps the last login.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	output, err := srv.login(ctx, input)
	srv.metrics.RecordLogin(err == nil)

	return output, err
}

func (srv *authService) login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	email, err := valueobject.NewEmail(input.Email)
	if err != nil {
		return nil, domainerrors.ErrInvalidCredentials
	}

	user, err := srv.userRepo.FindByEmailWithSecret(ctx, email.String())
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Info("Login rejected", slog.String("reason", "unknown email"))

		return nil, domainerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user by email")
	}

	if !srv.hasher.Verify(input.Password, user.PasswordHash) {
		srv.log(ctx).Info("Login rejected", slog.String("reason", "wrong password"), slog.Any("userID", user.ID))

		return nil, domainerrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		srv.log(ctx).Info("Login rejected", slog.String("reason", "inactive"), slog.Any("userID", user.ID))

		return nil, domainerrors.ErrInvalidCredentials
	}

	now := srv.now().UTC()
	if err := srv.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, errors.Wrap(err, "failed to update last login")
	}
	user.LastLoginAt = &now

	tokens, err := srv.issuePair(user)
	if err != nil {
		return nil, err
	}

	return &usecase.LoginOutput{User: user.WithoutSecret(), Tokens: *tokens}, nil
}

// Refresh exchanges a valid refresh token for a new pair.
func (srv *authService) Refresh(ctx context.Context, refreshToken string) (*usecase.TokenPair, error) {
	tokens, err := srv.refresh(ctx, refreshToken)
	srv.metrics.RecordRefresh(err == nil)

	return tokens, err
}

func (srv *authService) refresh(ctx context.Context, refreshToken string) (*usecase.TokenPair, error) {
	claims, err := srv.tokenService.DecodeRefresh(refreshToken)
	if err != nil {
		return nil, err //nolint:wrapcheck // already an InvalidToken.
	}

	user, err := srv.activeUser(ctx, claims)
	if err != nil {
		return nil, err
	}

	return srv.issuePair(user)
}

// GetCurrentUser resolves the account behind an access token.
func (srv *authService) GetCurrentUser(ctx context.Context, accessToken string) (*entity.User, error) {
	claims, err := srv.tokenService.DecodeAccess(accessToken)
	if err != nil {
		return nil, err //nolint:wrapcheck // already an InvalidToken.
	}

	return srv.activeUser(ctx, claims)
}

// DeactivateUser disables another account. Users are never deleted.
func (srv *authService) DeactivateUser(ctx context.Context, actor usecase.Actor, targetID uuid.UUID) (*entity.User, error) {
	if err := actor.Role.Authorize(entity.PermissionDeactivateUsers); err != nil {
		return nil, err
	}
	if actor.UserID == targetID {
		return nil, domainerrors.NewBusinessRuleViolationError("Un usuario no puede desactivarse a sí mismo")
	}

	var target *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		user, err := userRepo.FindByID(ctx, targetID)
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrUserNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to find user")
		}

		user.Deactivate()
		if err := userRepo.Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to deactivate user")
		}
		target = user

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("User deactivated", slog.Any("userID", targetID), slog.Any("actorID", actor.UserID))

	return target.WithoutSecret(), nil
}

func (srv *authService) activeUser(ctx context.Context, claims *service.Claims) (*entity.User, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, domainerrors.ErrInvalidToken.WithDetails("invalid subject")
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}
	if !user.IsActive {
		return nil, domainerrors.ErrInvalidToken.WithDetails("user is inactive")
	}

	return user.WithoutSecret(), nil
}

func (srv *authService) issuePair(user *entity.User) (*usecase.TokenPair, error) {
	access, err := srv.tokenService.IssueAccess(user.ID, user.Email, user.Role, 0)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrTokenIssueFailed.WithDetails(err.Error()), "failed to issue access token")
	}
	refresh, err := srv.tokenService.IssueRefresh(user.ID, 0)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrTokenIssueFailed.WithDetails(err.Error()), "failed to issue refresh token")
	}

	return &usecase.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    usecase.TokenTypeBearer,
		ExpiresIn:    int64(srv.tokenService.AccessTTL().Seconds()),
	}, nil
}

// validatePasswordStrength requires 8+ characters, at most 72 bytes, with
// upper, lower and digit.
func validatePasswordStrength(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return domainerrors.NewInvalidValueError("Password", "***", "Debe tener al menos 8 caracteres")
	}
	if len(password) > maxPasswordBytes {
		return domainerrors.NewInvalidValueError("Password", "***", "No puede superar los 72 bytes")
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	switch {
	case !upper:
		return domainerrors.NewInvalidValueError("Password", "***", "Debe contener al menos una mayúscula")
	case !lower:
		return domainerrors.NewInvalidValueError("Password", "***", "Debe contener al menos una minúscula")
	case !digit:
		return domainerrors.NewInvalidValueError("Password", "***", "Debe contener al menos un número")
	}

	return nil
}

type noopMetrics struct{}

func (noopMetrics) RecordLogin(bool)        {}
func (noopMetrics) RecordRegistration()     {}
func (noopMetrics) RecordRefresh(bool)      {}
func (noopMetrics) RecordTransition(string) {}
func (noopMetrics) RecordPropertyCreated()  {}

func metricsOrNoop(m service.MetricsRecorder) service.MetricsRecorder {
	if m == nil {
		return noopMetrics{}
	}

	return m
}
