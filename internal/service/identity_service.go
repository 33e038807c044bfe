package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campuskit/coursedesk/internal/auth"
	"github.com/campuskit/coursedesk/internal/config"
	"github.com/campuskit/coursedesk/internal/domain"
	"github.com/campuskit/coursedesk/internal/events"
	"github.com/campuskit/coursedesk/internal/repository"
	apperrors "github.com/campuskit/coursedesk/pkg/util"
)

// IdentityService manages accounts: authentication, admin-driven invitation,
// one-time activation and the enable/disable lifecycle.
type IdentityService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	sessions   *auth.SessionStore
	dispatcher events.Dispatcher
	bcryptCost int
}

// IdentityDependencies bundles requirements for the identity service.
type IdentityDependencies struct {
	UserRepo   repository.UserRepository
	Sessions   *auth.SessionStore
	Dispatcher events.Dispatcher
}

// NewIdentityService builds the service.
func NewIdentityService(cfg config.Config, deps IdentityDependencies) *IdentityService {
	return &IdentityService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Authenticate checks credentials against a stored hash. A matching password
// on a disabled account is still rejected.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewAuthError("invalid email or password")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewAuthError("invalid email or password")
	}
	if !user.Active {
		return nil, apperrors.NewAccountDisabled()
	}
	return user, nil
}

// Login authenticates and issues a session token.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Logout revokes the session token until its natural expiry.
func (s *IdentityService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return s.sessions.Revoke(ctx, tokenID, expiresAt)
}

// InviteUser creates an inactive account with a one-time activation code and
// emits the invitation event. Admin only.
func (s *IdentityService) InviteUser(ctx context.Context, actor *domain.User, name, email string, role domain.Role) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewPermissionError("admin rank required")
	}
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	user := &domain.User{
		Name:           name,
		Email:          email,
		Role:           role,
		Active:         false,
		ActivationCode: uuid.NewString(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserInvited,
		ActorID: actor.ID,
		Payload: events.UserInvitedPayload{
			UserID:         user.ID,
			Name:           user.Name,
			Email:          user.Email,
			ActivationCode: user.ActivationCode,
		},
	})
	return user, nil
}

// Activate consumes a one-time activation code, sets the initial password
// and enables the account.
func (s *IdentityService) Activate(ctx context.Context, code, password string) (*domain.User, error) {
	if password == "" {
		return nil, apperrors.NewValidationError("password required", nil)
	}
	user, err := s.users.GetByActivationCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("invalid activation code", nil)
		}
		return nil, err
	}
	if user.Active {
		return nil, apperrors.NewConflict("account already active", nil)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.Active = true
	user.ActivationCode = ""
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetActive enables or disables an account. Admin only. Disabling does not
// cascade to the user's tickets or comments.
func (s *IdentityService) SetActive(ctx context.Context, actor *domain.User, userID int64, active bool) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewPermissionError("admin rank required")
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Active = active
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EditUser updates name and role of an account. Admin only.
func (s *IdentityService) EditUser(ctx context.Context, actor *domain.User, userID int64, name string, role domain.Role) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewPermissionError("admin rank required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns all accounts split into active and inactive. Admin only.
func (s *IdentityService) ListUsers(ctx context.Context, actor *domain.User) (active, inactive []domain.User, err error) {
	if actor.Role != domain.RoleAdmin {
		return nil, nil, apperrors.NewPermissionError("admin rank required")
	}
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, user := range all {
		if user.Active {
			active = append(active, user)
		} else {
			inactive = append(inactive, user)
		}
	}
	return active, inactive, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *IdentityService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *IdentityService) getUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}
	return user, nil
}

func (s *IdentityService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
