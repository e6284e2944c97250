package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/osteovet/clinic-backend/internal/auditlog"
	"github.com/osteovet/clinic-backend/internal/users"
	pkgauth "github.com/osteovet/clinic-backend/pkg/auth"
	"github.com/osteovet/clinic-backend/pkg/auth/session"
	"github.com/osteovet/clinic-backend/pkg/config"
	"github.com/osteovet/clinic-backend/pkg/db"
	"github.com/osteovet/clinic-backend/pkg/db/models"
	"github.com/osteovet/clinic-backend/pkg/enums"
	pkgerrors "github.com/osteovet/clinic-backend/pkg/errors"
	"github.com/osteovet/clinic-backend/pkg/logger"
	"github.com/osteovet/clinic-backend/pkg/security"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage  = "invalid email or password"
	invalidRefreshTokenMessage = "invalid refresh token"
	pendingValidationMessage   = "your account is awaiting validation by the clinic"
	tokenTypeBearer            = "Bearer"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error)
	Logout(ctx context.Context, sessionID string) error
	Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
	ValidateClient(ctx context.Context, actorID, clientID uuid.UUID) (*users.UserDTO, error)
	PendingClients(ctx context.Context) ([]users.UserDTO, error)
}

type dbClient interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sessionManager interface {
	Open(ctx context.Context, userID uuid.UUID) (string, error)
	Rotate(ctx context.Context, oldSessionID string, userID uuid.UUID) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}

type clientValidator interface {
	ValidateClient(ctx context.Context, actorID, clientID uuid.UUID) (*users.UserDTO, error)
	PendingClients(ctx context.Context) ([]users.UserDTO, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	DB             dbClient
	SessionManager sessionManager
	Users          clientValidator
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
	Now            func() time.Time
}

type service struct {
	db          dbClient
	sessions    sessionManager
	users       clientValidator
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService constructs the auth service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users service is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		db:          params.DB,
		sessions:    params.SessionManager,
		users:       params.Users,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		logg:        logg,
		now:         now,
	}, nil
}

// Login checks credentials, then the validation gate, and opens a session.
// Unknown emails and wrong passwords share one error and similar timing.
func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}

	userRepo := users.NewRepository(s.db.DB())
	user, err := userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			security.BurnVerify(req.Password, s.passwordCfg)
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		if errors.Is(err, security.ErrInvalidHash) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	if !user.CanAuthenticate() {
		return nil, pkgerrors.New(pkgerrors.CodePendingValidation, pendingValidationMessage)
	}

	now := s.now()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txUsers := users.NewRepository(tx)
		if err := txUsers.UpdateLastLogin(ctx, user.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
		}
		if security.NeedsRehash(user.PasswordHash) {
			if hash, err := security.HashPassword(req.Password, s.passwordCfg); err == nil {
				if _, err := txUsers.UpdateFields(ctx, user.ID, map[string]any{"password_hash": hash}); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upgrade password hash")
				}
			}
		}
		if _, err := auditlog.NewRepository(tx).Append(ctx, auditlog.Entry{
			UserID:   &user.ID,
			Action:   enums.AuditActionUserLoggedIn,
			Entity:   "user",
			EntityID: &user.ID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append audit log")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	sessionID, err := s.sessions.Open(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session")
	}
	return s.issueTokens(user, sessionID, now)
}

// Refresh rotates the session behind a refresh token. A client whose validation
// was lost since login gets PENDING_VALIDATION and the session is revoked.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := pkgauth.ParseRefreshToken(s.jwtCfg, req.RefreshToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidRefreshToken, err, invalidRefreshTokenMessage)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidRefreshToken, err, invalidRefreshTokenMessage)
	}
	sessionID := claims.SessionID()

	user, err := users.NewRepository(s.db.DB()).FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidRefreshToken, invalidRefreshTokenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !user.CanAuthenticate() {
		if err := s.sessions.Revoke(ctx, sessionID); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "revoke session of unvalidated client failed")
		}
		return nil, pkgerrors.New(pkgerrors.CodePendingValidation, pendingValidationMessage)
	}

	newSessionID, err := s.sessions.Rotate(ctx, sessionID, user.ID)
	if err != nil {
		if errors.Is(err, session.ErrInvalidSession) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidRefreshToken, invalidRefreshTokenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}
	return s.issueTokens(user, newSessionID, s.now())
}

// Logout revokes the session behind the current access token.
func (s *service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	user, err := users.NewRepository(s.db.DB()).FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return users.FromModel(user), nil
}

func (s *service) ValidateClient(ctx context.Context, actorID, clientID uuid.UUID) (*users.UserDTO, error) {
	return s.users.ValidateClient(ctx, actorID, clientID)
}

func (s *service) PendingClients(ctx context.Context) ([]users.UserDTO, error) {
	return s.users.PendingClients(ctx)
}

func (s *service) issueTokens(user *models.User, sessionID string, now time.Time) (*TokenResponse, error) {
	payload := pkgauth.TokenPayload{UserID: user.ID, SessionID: sessionID}
	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, now, payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refreshToken, err := pkgauth.MintRefreshToken(s.jwtCfg, now, payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint refresh token")
	}
	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int64(s.jwtCfg.AccessTokenTTL().Seconds()),
		User:         users.FromModel(user),
	}, nil
}
