package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"autocare-controlplane/pkg/db/option"
	"autocare-controlplane/pkg/db/pagination"
	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/pkg/repository"
	"autocare-controlplane/pkg/security"
	"autocare-controlplane/pkg/session"
	"autocare-controlplane/services/authz"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sessionRevoker invalidates every live session of a user; tests substitute
// a fake.
type sessionRevoker interface {
	DestroyAll(ctx context.Context, userID string) error
}

type Service struct {
	db       *gorm.DB
	node     *snowflake.Node
	repo     repository.Repository[User]
	sessions sessionRevoker
}

type ServiceParams struct {
	fx.In
	DB       *gorm.DB
	Node     *snowflake.Node
	Sessions *session.Store `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	svc := &Service{
		db:   p.DB,
		node: p.Node,
		repo: repository.ProvideStore[User](p.DB),
	}
	if p.Sessions != nil {
		svc.sessions = p.Sessions
	}
	return svc
}

type ListUsersRequest struct {
	Limit    int    `form:"limit"`
	TenantID string `form:"tenant_id"`
}

type ListUsersResponse struct {
	Users []*User `json:"users"`
}

func (s *Service) ListUsers(ctx context.Context, req *ListUsersRequest) (*ListUsersResponse, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
	)

	tenantID := scopeTenantID(ctx, req.TenantID)

	opts := []option.QueryOption{
		option.ApplyPagination(pagination.Pagination{Limit: req.Limit}),
	}

	users, err := s.repo.Find(ctx, &User{TenantID: tenantID}, opts...)
	if err != nil {
		zapLog.Error("failed to list users", zap.Error(err))
		return nil, errutil.Internal("failed to list users", err)
	}

	return &ListUsersResponse{Users: users}, nil
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (req *CreateUserRequest) validate() error {
	var details []errutil.Detail
	if req.Email == "" {
		details = append(details, errutil.Detail{Field: "email", Message: "email is required"})
	}
	switch authz.Role(req.Role) {
	case authz.RoleOwner, authz.RoleManager, authz.RoleMember:
	default:
		details = append(details, errutil.Detail{Field: "role", Message: "role must be owner, manager or member"})
	}
	if len(req.Password) < 8 {
		details = append(details, errutil.Detail{Field: "password", Message: "password must be at least 8 characters"})
	}
	if len(details) > 0 {
		return errutil.ValidationFailed("invalid create user request", nil, errutil.WithDetails(details...))
	}
	return nil
}

func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
	)

	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	if err := req.validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(req.Email)

	exist, err := s.repo.FindOne(ctx, &User{TenantID: actor.TenantID, Email: email})
	if err != nil {
		zapLog.Error("failed query get user by email", zap.Error(err))
		return nil, errutil.Internal("failed to create user", err)
	}

	if exist != nil {
		return nil, errutil.Conflict("a user with this email already exists", nil)
	}

	hash, err := security.HashArgon2(req.Password)
	if err != nil {
		zapLog.Error("failed to hash password", zap.Error(err))
		return nil, errutil.Internal("failed to create user", err)
	}

	record := &User{
		ID:           s.node.Generate().String(),
		TenantID:     actor.TenantID,
		Email:        email,
		Name:         req.Name,
		Role:         authz.Role(req.Role),
		Status:       StatusActive,
		PasswordHash: hash,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		zapLog.Error("failed to create user", zap.Error(err))
		return nil, errutil.Internal("failed to create user", err)
	}

	return record, nil
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// UpdateProfile lets any authenticated member change their own name or
// password. Role and status are never touched here.
func (s *Service) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*User, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	values := map[string]any{}
	if req.Name != "" {
		values["name"] = req.Name
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			return nil, errutil.ValidationFailed("invalid update profile request", nil,
				errutil.WithDetails(errutil.Detail{Field: "password", Message: "password must be at least 8 characters"}))
		}
		hash, err := security.HashArgon2(req.Password)
		if err != nil {
			return nil, errutil.Internal("failed to update profile", err)
		}
		values["password_hash"] = hash
	}

	if len(values) > 0 {
		if err := s.repo.Update(ctx, actor.UserID, values); err != nil {
			return nil, errutil.Internal("failed to update profile", err)
		}
	}

	current, err := s.repo.FindOne(ctx, &User{ID: actor.UserID})
	if err != nil || current == nil {
		return nil, errutil.Internal("failed to update profile", err)
	}

	return current, nil
}

type UpdateRoleRequest struct {
	UserID string `json:"-"`
	Role   string `json:"role"`
}

// UpdateRole changes a staff member's role. Self role changes are rejected
// before anything else; demoting the last active owner is rejected inside the
// same transaction that applies the change.
func (s *Service) UpdateRole(ctx context.Context, req *UpdateRoleRequest) (*User, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	if actor.UserID == req.UserID {
		return nil, errutil.BadRequest("cannot change your own role", nil)
	}

	newRole := authz.Role(req.Role)
	switch newRole {
	case authz.RoleOwner, authz.RoleManager, authz.RoleMember:
	default:
		return nil, errutil.ValidationFailed("invalid update role request", nil,
			errutil.WithDetails(errutil.Detail{Field: "role", Message: "role must be owner, manager or member"}))
	}

	out, err := s.mutateGuarded(ctx, actor, req.UserID, func(target *User) (map[string]any, bool) {
		losesOwner := target.Role == authz.RoleOwner && target.Status == StatusActive && newRole != authz.RoleOwner
		return map[string]any{"role": string(newRole)}, losesOwner
	})
	if err != nil {
		return nil, err
	}

	// Live sessions still carry the old role claim.
	s.revokeSessions(ctx, out.ID)

	return out, nil
}

type DeactivateRequest struct {
	UserID string `json:"-"`
}

// Deactivate disables a staff account. The self check runs first so a sole
// owner deactivating themselves sees the self-deactivation error, not the
// last-owner one.
func (s *Service) Deactivate(ctx context.Context, req *DeactivateRequest) (*User, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	if actor.UserID == req.UserID {
		return nil, errutil.BadRequest("cannot deactivate your own account", nil)
	}

	out, err := s.mutateGuarded(ctx, actor, req.UserID, func(target *User) (map[string]any, bool) {
		losesOwner := target.Role == authz.RoleOwner && target.Status == StatusActive
		return map[string]any{"status": string(StatusInactive)}, losesOwner
	})
	if err != nil {
		return nil, err
	}

	// A deactivated account must not keep authenticating until its session
	// TTL runs out.
	s.revokeSessions(ctx, out.ID)

	return out, nil
}

type ReactivateRequest struct {
	UserID string `json:"-"`
}

func (s *Service) Reactivate(ctx context.Context, req *ReactivateRequest) (*User, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	return s.mutateGuarded(ctx, actor, req.UserID, func(target *User) (map[string]any, bool) {
		return map[string]any{"status": string(StatusActive)}, false
	})
}

// mutateGuarded loads the target inside a row-locked transaction, applies the
// mutation values, and enforces the last-active-owner invariant when the
// mutation would remove an active owner.
func (s *Service) mutateGuarded(ctx context.Context, actor authz.Actor, userID string, mutate func(*User) (map[string]any, bool)) (*User, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
	)

	var out *User
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTrx(tx)

		target, err := repo.FindOne(ctx, &User{ID: userID, TenantID: actor.TenantID}, option.WithLockingUpdate())
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}

		if target == nil {
			return errutil.NotFound("user not found", nil)
		}

		values, losesOwner := mutate(target)

		if losesOwner {
			owners, err := repo.Count(ctx, &User{
				TenantID: target.TenantID,
				Role:     authz.RoleOwner,
				Status:   StatusActive,
			})
			if err != nil {
				return fmt.Errorf("failed to count active owners: %w", err)
			}
			if owners <= 1 {
				return errutil.BadRequest("tenant must retain at least one active owner", nil)
			}
		}

		if err := repo.Update(ctx, target.ID, values); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		fresh, err := repo.FindOne(ctx, &User{ID: target.ID})
		if err != nil || fresh == nil {
			return fmt.Errorf("failed to reload user: %w", err)
		}

		out = fresh
		return nil
	}); err != nil {
		var base errutil.BaseError
		if errors.As(err, &base) {
			return nil, err
		}
		zapLog.Error("failed to update user", zap.String("user_id", userID), zap.Error(err))
		return nil, errutil.Internal("failed to update user", err)
	}

	return out, nil
}

// revokeSessions is best effort; the mutation itself has already committed.
func (s *Service) revokeSessions(ctx context.Context, userID string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.DestroyAll(ctx, userID); err != nil {
		zap.L().Warn("failed to revoke user sessions", zap.String("user_id", userID), zap.Error(err))
	}
}

// scopeTenantID resolves which tenant a read should be scoped to. Platform
// administrators may address any tenant explicitly; everyone else is pinned
// to their own.
func scopeTenantID(ctx context.Context, requested string) string {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return requested
	}
	if actor.IsPlatformAdmin() && requested != "" {
		return requested
	}
	return actor.TenantID
}
