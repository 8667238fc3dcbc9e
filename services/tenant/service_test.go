package tenant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"autocare-controlplane/pkg/config"
	"autocare-controlplane/pkg/db/option"
	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/pkg/repository"
	"autocare-controlplane/services/authz"
	"autocare-controlplane/services/testutil"
	"autocare-controlplane/services/user"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type mockTenantRepository struct {
	findFn    func(ctx context.Context, query *Tenant, opts ...option.QueryOption) ([]*Tenant, error)
	findOneFn func(ctx context.Context, query *Tenant, opts ...option.QueryOption) (*Tenant, error)
}

func (m *mockTenantRepository) WithTrx(tx *gorm.DB) repository.Repository[Tenant] {
	return m
}

func (m *mockTenantRepository) Find(ctx context.Context, query *Tenant, opts ...option.QueryOption) ([]*Tenant, error) {
	if m.findFn != nil {
		return m.findFn(ctx, query, opts...)
	}
	return nil, nil
}

func (m *mockTenantRepository) FindOne(ctx context.Context, query *Tenant, opts ...option.QueryOption) (*Tenant, error) {
	if m.findOneFn != nil {
		return m.findOneFn(ctx, query, opts...)
	}
	return nil, nil
}

func (m *mockTenantRepository) Create(context.Context, *Tenant) error         { return nil }
func (m *mockTenantRepository) Update(context.Context, string, any) error     { return nil }
func (m *mockTenantRepository) BatchCreate(context.Context, []*Tenant) error  { return nil }
func (m *mockTenantRepository) BatchUpdate(context.Context, []*Tenant) error  { return nil }
func (m *mockTenantRepository) Count(context.Context, *Tenant) (int64, error) { return 0, nil }

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return nil, nil
}

type fakeSequence struct{}

func (fakeSequence) NextTenantCode(context.Context) (string, error) { return "T001", nil }
func (fakeSequence) NextOrderCode(context.Context, string) (string, error) {
	return "WO-260831-001AA", nil
}
func (fakeSequence) NextInvoiceCode(context.Context, string) (string, error) {
	return "INV-260831-001AA", nil
}

func requireStatus(t *testing.T, err error, want errutil.CoreStatus) {
	t.Helper()
	require.Error(t, err)
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, want, be.Status())
}

func TestListTenantsSuccess(t *testing.T) {
	now := time.Now()
	repo := &mockTenantRepository{}
	repo.findFn = func(ctx context.Context, _ *Tenant, _ ...option.QueryOption) ([]*Tenant, error) {
		return []*Tenant{
			{ID: "tenant-1", Name: "Sparkle Detailing", Slug: "sparkle-detailing", CreatedAt: now, UpdatedAt: now},
			{ID: "tenant-2", Name: "Shine Works", Slug: "shine-works", CreatedAt: now, UpdatedAt: now},
		}, nil
	}
	svc := &Service{repo: repo}

	resp, err := svc.ListTenants(context.Background(), &ListTenantsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Tenants, 2)
	require.Equal(t, "sparkle-detailing", resp.Tenants[0].Slug)
}

func TestListTenantsRepositoryError(t *testing.T) {
	repo := &mockTenantRepository{}
	repo.findFn = func(ctx context.Context, _ *Tenant, _ ...option.QueryOption) ([]*Tenant, error) {
		return nil, errors.New("boom")
	}
	svc := &Service{repo: repo}

	_, err := svc.ListTenants(context.Background(), &ListTenantsRequest{})
	requireStatus(t, err, errutil.StatusInternal)
}

func TestGetTenantNotFound(t *testing.T) {
	repo := &mockTenantRepository{}
	svc := &Service{repo: repo}

	_, err := svc.GetTenant(context.Background(), &GetTenantRequest{TenantID: "unknown"})
	requireStatus(t, err, errutil.StatusNotFound)
}

func TestCreateTenantValidation(t *testing.T) {
	svc := &Service{}

	_, err := svc.CreateTenant(context.Background(), &CreateTenantRequest{})
	requireStatus(t, err, errutil.StatusValidationFailed)
}

func TestCreateTenantSlugExists(t *testing.T) {
	repo := &mockTenantRepository{}
	repo.findOneFn = func(ctx context.Context, _ *Tenant, _ ...option.QueryOption) (*Tenant, error) {
		return &Tenant{ID: "existing"}, nil
	}
	svc := &Service{repo: repo}

	_, err := svc.CreateTenant(context.Background(), &CreateTenantRequest{
		Name:          "Sparkle Detailing",
		OwnerEmail:    "owner@example.com",
		OwnerPassword: "super-secret",
	})
	requireStatus(t, err, errutil.StatusConflict)
}

func TestCreateTenantSuccess(t *testing.T) {
	db := testutil.NewTestDB(t, &Tenant{}, &user.User{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	enqueuer := &fakeEnqueuer{}
	svc := NewService(ServiceParams{
		DB:     db,
		Node:   node,
		Seq:    fakeSequence{},
		Asynq:  enqueuer,
		Config: &config.Config{},
	})

	resp, err := svc.CreateTenant(context.Background(), &CreateTenantRequest{
		Name:          "Sparkle Detailing",
		CountryCode:   "US",
		Timezone:      "America/Chicago",
		OwnerEmail:    "Owner@Example.com",
		OwnerName:     "Alex Owner",
		OwnerPassword: "super-secret",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Equal(t, "sparkle-detailing", resp.Slug)
	require.Equal(t, "T001", resp.Code)
	require.Equal(t, PendingActivation, resp.Status)

	var owner user.User
	require.NoError(t, db.Where("tenant_id = ?", resp.ID).First(&owner).Error)
	require.Equal(t, "owner@example.com", owner.Email)
	require.Equal(t, authz.RoleOwner, owner.Role)
	require.Equal(t, user.StatusActive, owner.Status)
	require.NotEmpty(t, owner.PasswordHash)

	require.Len(t, enqueuer.tasks, 1)
	require.Equal(t, "tenant:provisioning:catalog", enqueuer.tasks[0].Type())
}

func TestCreateTenantEnqueueFailureKeepsTenant(t *testing.T) {
	db := testutil.NewTestDB(t, &Tenant{}, &user.User{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	enqueuer := &fakeEnqueuer{err: errors.New("broker down")}
	svc := NewService(ServiceParams{
		DB:     db,
		Node:   node,
		Seq:    fakeSequence{},
		Asynq:  enqueuer,
		Config: &config.Config{},
	})

	resp, err := svc.CreateTenant(context.Background(), &CreateTenantRequest{
		Name:          "Sparkle Detailing",
		OwnerEmail:    "owner@example.com",
		OwnerPassword: "super-secret",
	})
	require.NoError(t, err)

	// The commit already happened; a failed enqueue must not undo it.
	var count int64
	require.NoError(t, db.Model(&Tenant{}).Where("id = ?", resp.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
	require.NoError(t, db.Model(&user.User{}).Where("tenant_id = ?", resp.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

// lockFreeRepo reads without query options so transition tests run on
// SQLite, which has no SELECT FOR UPDATE.
type lockFreeRepo struct {
	mockTenantRepository
	db *gorm.DB
}

func (r *lockFreeRepo) WithTrx(tx *gorm.DB) repository.Repository[Tenant] {
	if tx == nil {
		return r
	}
	return &lockFreeRepo{db: tx}
}

func (r *lockFreeRepo) FindOne(ctx context.Context, query *Tenant, _ ...option.QueryOption) (*Tenant, error) {
	var out Tenant
	if err := r.db.WithContext(ctx).Where(query).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func lifecycleService(t *testing.T, seed *Tenant) (*Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t, &Tenant{})
	if seed != nil {
		require.NoError(t, db.Create(seed).Error)
	}

	return &Service{db: db, repo: &lockFreeRepo{db: db}}, db
}

func TestActivateTrialFromPending(t *testing.T) {
	svc, _ := lifecycleService(t, &Tenant{ID: "tenant-1", Slug: "a", Status: PendingActivation})

	resp, err := svc.ActivateTrial(context.Background(), &ActivateTrialRequest{TenantID: "tenant-1"})
	require.NoError(t, err)
	require.Equal(t, Trial, resp.Status)
	require.NotNil(t, resp.TrialStartsAt)
	require.NotNil(t, resp.TrialEndsAt)
	require.WithinDuration(t, resp.TrialStartsAt.AddDate(0, 0, defaultTrialDays), *resp.TrialEndsAt, time.Second)
}

func TestActivateTrialFromActiveConflicts(t *testing.T) {
	svc, _ := lifecycleService(t, &Tenant{ID: "tenant-1", Slug: "a", Status: Active})

	_, err := svc.ActivateTrial(context.Background(), &ActivateTrialRequest{TenantID: "tenant-1"})
	requireStatus(t, err, errutil.StatusConflict)
}

func TestActivateFromTrial(t *testing.T) {
	svc, _ := lifecycleService(t, &Tenant{ID: "tenant-1", Slug: "a", Status: Trial})

	resp, err := svc.Activate(context.Background(), &ActivateRequest{TenantID: "tenant-1"})
	require.NoError(t, err)
	require.Equal(t, Active, resp.Status)
}

func TestSuspendAndReactivate(t *testing.T) {
	svc, _ := lifecycleService(t, &Tenant{ID: "tenant-1", Slug: "a", Status: Active})

	suspended, err := svc.Suspend(context.Background(), &SuspendRequest{TenantID: "tenant-1", Reason: "unpaid invoice"})
	require.NoError(t, err)
	require.Equal(t, Suspended, suspended.Status)
	require.NotNil(t, suspended.SuspendedAt)
	require.Equal(t, "unpaid invoice", suspended.SuspendReason)

	reactivated, err := svc.Reactivate(context.Background(), &ReactivateRequest{TenantID: "tenant-1"})
	require.NoError(t, err)
	require.Equal(t, Active, reactivated.Status)
	require.Nil(t, reactivated.SuspendedAt)
	require.Empty(t, reactivated.SuspendReason)
}

func TestCancelIsTerminal(t *testing.T) {
	svc, _ := lifecycleService(t, &Tenant{ID: "tenant-1", Slug: "a", Status: Suspended})

	canceled, err := svc.Cancel(context.Background(), &CancelRequest{TenantID: "tenant-1"})
	require.NoError(t, err)
	require.Equal(t, Canceled, canceled.Status)
	require.NotNil(t, canceled.CanceledAt)

	_, err = svc.Cancel(context.Background(), &CancelRequest{TenantID: "tenant-1"})
	requireStatus(t, err, errutil.StatusConflict)

	_, err = svc.Reactivate(context.Background(), &ReactivateRequest{TenantID: "tenant-1"})
	requireStatus(t, err, errutil.StatusConflict)
}

func TestUpdateStatusUnknownTenant(t *testing.T) {
	svc, _ := lifecycleService(t, nil)

	_, err := svc.Activate(context.Background(), &ActivateRequest{TenantID: "missing"})
	requireStatus(t, err, errutil.StatusNotFound)
}

func TestEnsureOperational(t *testing.T) {
	cases := []struct {
		status  Status
		blocked bool
		message string
	}{
		{status: Trial, blocked: false},
		{status: Active, blocked: false},
		{status: PendingActivation, blocked: true, message: "tenant account is pending activation"},
		{status: Suspended, blocked: true, message: "tenant account is suspended"},
		{status: Canceled, blocked: true, message: "tenant account is canceled"},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			repo := &mockTenantRepository{}
			repo.findOneFn = func(ctx context.Context, _ *Tenant, _ ...option.QueryOption) (*Tenant, error) {
				return &Tenant{ID: "tenant-1", Status: tc.status}, nil
			}
			svc := &Service{repo: repo}

			err := svc.EnsureOperational(context.Background(), "tenant-1")
			if !tc.blocked {
				require.NoError(t, err)
				return
			}

			requireStatus(t, err, errutil.StatusForbidden)
			var be errutil.BaseError
			require.True(t, errors.As(err, &be))
			require.Equal(t, tc.message, be.Message)
		})
	}
}

func TestEnsureOperationalUnknownTenant(t *testing.T) {
	svc := &Service{repo: &mockTenantRepository{}}

	err := svc.EnsureOperational(context.Background(), "missing")
	requireStatus(t, err, errutil.StatusForbidden)
}
