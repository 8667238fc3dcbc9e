package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"autocare-controlplane/pkg/config"
	"autocare-controlplane/pkg/db/option"
	"autocare-controlplane/pkg/db/pagination"
	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/pkg/rediskey"
	"autocare-controlplane/pkg/repository"
	"autocare-controlplane/pkg/security"
	"autocare-controlplane/pkg/sequence"
	"autocare-controlplane/pkg/task"
	"autocare-controlplane/pkg/taskname"
	"autocare-controlplane/services/authz"
	"autocare-controlplane/services/user"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/hibiken/asynq"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// statusCacheTTL bounds how stale the per-request status gate may be after an
// administrator changes a tenant's status.
const statusCacheTTL = 30 * time.Second

const defaultTrialDays = 14

type Service struct {
	db     *gorm.DB
	rdb    *goredis.Client
	asynq  task.Enqueuer
	node   *snowflake.Node
	seq    sequence.Generator
	config *config.Config
	repo   repository.Repository[Tenant]
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Redis  *goredis.Client
	Asynq  task.Enqueuer
	Node   *snowflake.Node
	Seq    sequence.Generator
	Config *config.Config
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:     p.DB,
		rdb:    p.Redis,
		asynq:  p.Asynq,
		node:   p.Node,
		seq:    p.Seq,
		config: p.Config,
		repo:   repository.ProvideStore[Tenant](p.DB),
	}
}

type ListTenantsRequest struct {
	Limit  int    `form:"limit"`
	Status string `form:"status"`
}

type ListTenantsResponse struct {
	Tenants []*Tenant `json:"tenants"`
}

func (s *Service) ListTenants(ctx context.Context, req *ListTenantsRequest) (*ListTenantsResponse, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
	)

	opts := []option.QueryOption{
		option.ApplyPagination(pagination.Pagination{
			Limit: req.Limit,
		}),
	}

	tenants, err := s.repo.Find(ctx, &Tenant{Status: Status(req.Status)}, opts...)
	if err != nil {
		zapLog.Error("failed to list tenants", zap.Error(err))
		return nil, errutil.Internal("failed to list tenants", err)
	}

	return &ListTenantsResponse{Tenants: tenants}, nil
}

type GetTenantRequest struct {
	TenantID string `json:"tenant_id"`
}

func (s *Service) GetTenant(ctx context.Context, req *GetTenantRequest) (*Tenant, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
	)

	tenant, err := s.repo.FindOne(ctx, &Tenant{ID: req.TenantID})
	if err != nil {
		zapLog.Error("failed query get tenant by id", zap.Error(err))
		return nil, errutil.Internal("failed to get tenant", err)
	}

	if tenant == nil {
		zapLog.Warn("failed get tenant, tenant not found", zap.String("tenant_id", req.TenantID))
		return nil, errutil.NotFound("tenant not found", nil)
	}

	return tenant, nil
}

type CreateTenantRequest struct {
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	CountryCode   string `json:"country_code"`
	Timezone      string `json:"timezone"`
	OwnerEmail    string `json:"owner_email"`
	OwnerName     string `json:"owner_name"`
	OwnerPassword string `json:"owner_password"`
}

func (req *CreateTenantRequest) validate() error {
	var details []errutil.Detail
	if req.Name == "" {
		details = append(details, errutil.Detail{Field: "name", Message: "name is required"})
	}
	if req.OwnerEmail == "" {
		details = append(details, errutil.Detail{Field: "owner_email", Message: "owner_email is required"})
	}
	if len(req.OwnerPassword) < 8 {
		details = append(details, errutil.Detail{Field: "owner_password", Message: "owner_password must be at least 8 characters"})
	}
	if len(details) > 0 {
		return errutil.ValidationFailed("invalid create tenant request", nil, errutil.WithDetails(details...))
	}
	return nil
}

// CreateTenant registers a new shop in pending_activation together with its
// initial owner account, then enqueues catalog provisioning for the worker.
func (s *Service) CreateTenant(ctx context.Context, req *CreateTenantRequest) (*Tenant, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
	)

	if err := req.validate(); err != nil {
		return nil, err
	}

	slugName := req.Slug
	if slugName == "" {
		slugName = slug.Make(req.Name)
	}

	exist, err := s.repo.FindOne(ctx, &Tenant{Slug: slugName})
	if err != nil {
		zapLog.Error("failed query get tenant by slug", zap.Error(err))
		return nil, errutil.Internal("failed to check existing tenant", err)
	}

	if exist != nil {
		zapLog.Warn("tenant already exists", zap.String("slug", slugName))
		return nil, errutil.Conflict("tenant already exists", nil)
	}

	tenantID := s.node.Generate().String()
	tenantCode, err := s.seq.NextTenantCode(ctx)
	if err != nil {
		zapLog.Error("failed to generate tenant code", zap.Error(err))
		return nil, errutil.Internal("failed to create tenant", err)
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		tenant := &Tenant{
			ID:          tenantID,
			Code:        tenantCode,
			Name:        req.Name,
			Slug:        slugName,
			CountryCode: req.CountryCode,
			Timezone:    req.Timezone,
			Status:      PendingActivation,
		}

		if err := tx.Create(tenant).Error; err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		hash, err := security.HashArgon2(req.OwnerPassword)
		if err != nil {
			return fmt.Errorf("failed to hash owner password: %w", err)
		}

		owner := &user.User{
			ID:           s.node.Generate().String(),
			TenantID:     tenantID,
			Email:        strings.ToLower(req.OwnerEmail),
			Name:         req.OwnerName,
			Role:         authz.RoleOwner,
			Status:       user.StatusActive,
			PasswordHash: hash,
		}

		if err := tx.Create(owner).Error; err != nil {
			return fmt.Errorf("failed to create owner account: %w", err)
		}

		return nil
	}); err != nil {
		zapLog.Error("failed to create tenant transaction", zap.Error(err))
		return nil, errutil.Internal("failed to create tenant", err)
	}

	// Enqueued only after the commit so the worker never provisions a tenant
	// that was rolled back. The task itself is idempotent.
	payload, _ := json.Marshal(map[string]interface{}{
		"tenant_id":   tenantID,
		"tenant_slug": slugName,
	})

	if _, err := s.asynq.Enqueue(asynq.NewTask(taskname.TenantProvisioningCatalog, payload), asynq.Queue("critical")); err != nil {
		zapLog.Warn("failed to enqueue provisioning task", zap.String("tenant_id", tenantID), zap.Error(err))
	}

	return s.GetTenant(ctx, &GetTenantRequest{TenantID: tenantID})
}

type ActivateTrialRequest struct {
	TenantID  string `json:"-"`
	TrialDays int    `json:"trial_days"`
}

// ActivateTrial moves a pending shop onto a time-boxed trial.
func (s *Service) ActivateTrial(ctx context.Context, req *ActivateTrialRequest) (*Tenant, error) {
	days := req.TrialDays
	if days <= 0 {
		days = defaultTrialDays
	}

	return s.updateStatus(ctx, req.TenantID, []Status{PendingActivation}, func(t *Tenant) {
		now := time.Now()
		ends := now.AddDate(0, 0, days)
		t.Status = Trial
		t.TrialStartsAt = &now
		t.TrialEndsAt = &ends
	})
}

type ActivateRequest struct {
	TenantID string `json:"-"`
}

// Activate puts a shop on a paid subscription, either straight from
// pending_activation or by converting a trial.
func (s *Service) Activate(ctx context.Context, req *ActivateRequest) (*Tenant, error) {
	return s.updateStatus(ctx, req.TenantID, []Status{PendingActivation, Trial}, func(t *Tenant) {
		t.Status = Active
	})
}

type SuspendRequest struct {
	TenantID string `json:"-"`
	Reason   string `json:"reason"`
}

func (s *Service) Suspend(ctx context.Context, req *SuspendRequest) (*Tenant, error) {
	return s.updateStatus(ctx, req.TenantID, []Status{Trial, Active}, func(t *Tenant) {
		now := time.Now()
		t.Status = Suspended
		t.SuspendedAt = &now
		t.SuspendReason = req.Reason
	})
}

type ReactivateRequest struct {
	TenantID string `json:"-"`
}

func (s *Service) Reactivate(ctx context.Context, req *ReactivateRequest) (*Tenant, error) {
	return s.updateStatus(ctx, req.TenantID, []Status{Suspended}, func(t *Tenant) {
		t.Status = Active
		t.SuspendedAt = nil
		t.SuspendReason = ""
	})
}

type CancelRequest struct {
	TenantID string `json:"-"`
}

func (s *Service) Cancel(ctx context.Context, req *CancelRequest) (*Tenant, error) {
	return s.updateStatus(ctx, req.TenantID, []Status{PendingActivation, Trial, Active, Suspended}, func(t *Tenant) {
		now := time.Now()
		t.Status = Canceled
		t.CanceledAt = &now
	})
}

// updateStatus applies a lifecycle transition under a row lock so concurrent
// administrator actions serialize, then drops the cached status.
func (s *Service) updateStatus(ctx context.Context, tenantID string, from []Status, mutate func(*Tenant)) (*Tenant, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
	)

	var out *Tenant
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		tenant, err := s.repo.WithTrx(tx).FindOne(ctx, &Tenant{ID: tenantID}, option.WithLockingUpdate())
		if err != nil {
			return fmt.Errorf("failed to load tenant: %w", err)
		}

		if tenant == nil {
			return errutil.NotFound("tenant not found", nil)
		}

		allowed := false
		for _, st := range from {
			if tenant.Status == st {
				allowed = true
				break
			}
		}
		if !allowed {
			return errutil.Conflict(fmt.Sprintf("tenant status %s does not allow this transition", tenant.Status), nil)
		}

		mutate(tenant)

		if err := tx.Save(tenant).Error; err != nil {
			return fmt.Errorf("failed to update tenant: %w", err)
		}

		out = tenant
		return nil
	}); err != nil {
		var base errutil.BaseError
		if errors.As(err, &base) {
			return nil, err
		}
		zapLog.Error("failed to update tenant status", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, errutil.Internal("failed to update tenant status", err)
	}

	s.invalidateStatusCache(ctx, tenantID)

	return out, nil
}

// EnsureOperational is the per-request status gate. Only trial and active
// tenants pass; every blocked status maps to a categorical forbidden error so
// responses never leak billing detail beyond the named state.
func (s *Service) EnsureOperational(ctx context.Context, tenantID string) error {
	status, err := s.lookupStatus(ctx, tenantID)
	if err != nil {
		return errutil.Internal("failed to check tenant status", err)
	}

	switch status {
	case Trial, Active:
		return nil
	case PendingActivation:
		return errutil.Forbidden("tenant account is pending activation", nil)
	case Suspended:
		return errutil.Forbidden("tenant account is suspended", nil)
	case Canceled:
		return errutil.Forbidden("tenant account is canceled", nil)
	default:
		return errutil.Forbidden("tenant account is not available", nil)
	}
}

func (s *Service) lookupStatus(ctx context.Context, tenantID string) (Status, error) {
	key := rediskey.BuildTenantIDKey(tenantID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			return Status(cached), nil
		}
	}

	tenant, err := s.repo.FindOne(ctx, &Tenant{ID: tenantID})
	if err != nil {
		return "", err
	}
	if tenant == nil {
		return "", nil
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, key, string(tenant.Status), statusCacheTTL).Err(); err != nil {
			zap.L().Warn("failed to cache tenant status", zap.String("tenant_id", tenantID), zap.Error(err))
		}
	}

	return tenant.Status, nil
}

func (s *Service) invalidateStatusCache(ctx context.Context, tenantID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, rediskey.BuildTenantIDKey(tenantID)).Err(); err != nil {
		zap.L().Warn("failed to drop cached tenant status", zap.String("tenant_id", tenantID), zap.Error(err))
	}
}
