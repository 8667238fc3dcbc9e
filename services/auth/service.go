package auth

import (
	"context"
	"strings"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/pkg/repository"
	"autocare-controlplane/pkg/security"
	"autocare-controlplane/pkg/session"
	"autocare-controlplane/services/authz"
	"autocare-controlplane/services/user"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sessionStore is the slice of session.Store the login flow needs; tests
// substitute a fake.
type sessionStore interface {
	Create(ctx context.Context, userID, tenantID, role string) (string, error)
	Destroy(ctx context.Context, token string) error
}

type Service struct {
	sessions sessionStore
	users    repository.Repository[user.User]
}

type ServiceParams struct {
	fx.In
	DB       *gorm.DB
	Sessions *session.Store
}

func NewService(p ServiceParams) *Service {
	return &Service{
		sessions: p.Sessions,
		users:    repository.ProvideStore[user.User](p.DB),
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// Login verifies credentials and mints a session. Unknown email, wrong
// password and deactivated account are deliberately the same error.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
	)

	if req.Email == "" || req.Password == "" {
		return nil, errutil.Unauthorized("invalid email or password", nil)
	}

	// Email is unique per tenant, not globally. The password picks the
	// account when the same address exists in more than one tenant.
	candidates, err := s.users.Find(ctx, &user.User{Email: strings.ToLower(req.Email)})
	if err != nil {
		zapLog.Error("failed query get users by email", zap.Error(err))
		return nil, errutil.Internal("failed to login", err)
	}

	var account *user.User
	for _, candidate := range candidates {
		if candidate.Status != user.StatusActive {
			continue
		}

		ok, err := security.VerifyArgon2(req.Password, candidate.PasswordHash)
		if err == nil && ok {
			account = candidate
			break
		}
	}

	if account == nil {
		return nil, errutil.Unauthorized("invalid email or password", nil)
	}

	token, err := s.sessions.Create(ctx, account.ID, account.TenantID, string(account.Role))
	if err != nil {
		zapLog.Error("failed to create session", zap.Error(err))
		return nil, errutil.Internal("failed to login", err)
	}

	return &LoginResponse{Token: token, User: account}, nil
}

// Logout revokes the presented session token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Destroy(ctx, token)
}

// Me returns the account behind the authenticated actor.
func (s *Service) Me(ctx context.Context) (*user.User, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	account, err := s.users.FindOne(ctx, &user.User{ID: actor.UserID})
	if err != nil {
		return nil, errutil.Internal("failed to load account", err)
	}

	if account == nil {
		return nil, errutil.Unauthorized("session is invalid or expired", nil)
	}

	return account, nil
}
