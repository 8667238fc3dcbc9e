package order

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"autocare-controlplane/pkg/db/option"
	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/pkg/repository"
	"autocare-controlplane/services/authz"
	"autocare-controlplane/services/catalog"
	"autocare-controlplane/services/customer"
	"autocare-controlplane/services/testutil"
	"autocare-controlplane/services/user"
	"autocare-controlplane/services/vehicle"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// plainOrderRepo drops query options so transitions run on SQLite, which has
// no SELECT FOR UPDATE.
type plainOrderRepo struct {
	db *gorm.DB
}

func (r *plainOrderRepo) WithTrx(tx *gorm.DB) repository.Repository[Order] {
	if tx == nil {
		return r
	}
	return &plainOrderRepo{db: tx}
}

func (r *plainOrderRepo) Find(ctx context.Context, query *Order, _ ...option.QueryOption) ([]*Order, error) {
	var out []*Order
	if err := r.db.WithContext(ctx).Where(query).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *plainOrderRepo) FindOne(ctx context.Context, query *Order, _ ...option.QueryOption) (*Order, error) {
	var out Order
	if err := r.db.WithContext(ctx).Where(query).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *plainOrderRepo) Create(ctx context.Context, record *Order) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *plainOrderRepo) Update(ctx context.Context, id string, values any) error {
	return r.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Updates(values).Error
}

func (r *plainOrderRepo) BatchCreate(ctx context.Context, records []*Order) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(records).Error
}

func (r *plainOrderRepo) BatchUpdate(ctx context.Context, records []*Order) error {
	for _, record := range records {
		if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *plainOrderRepo) Count(ctx context.Context, query *Order) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Order{}).Where(query).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
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

func memberCtx(tenantID string) context.Context {
	return authz.WithActor(context.Background(), authz.Actor{
		UserID:   "member-1",
		TenantID: tenantID,
		Role:     authz.RoleMember,
	})
}

func requireStatus(t *testing.T, err error, want errutil.CoreStatus, message string) {
	t.Helper()
	require.Error(t, err)
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, want, be.Status())
	if message != "" {
		require.Equal(t, message, be.Message)
	}
}

func transitionService(t *testing.T) (*Service, *gorm.DB, *fakeEnqueuer) {
	t.Helper()

	db := testutil.NewTestDB(t, &Order{})
	enqueuer := &fakeEnqueuer{}
	svc := &Service{db: db, repo: &plainOrderRepo{db: db}, asynq: enqueuer}
	return svc, db, enqueuer
}

func seedOrder(t *testing.T, db *gorm.DB, id string, status Status) {
	t.Helper()
	require.NoError(t, db.Create(&Order{
		ID:         id,
		TenantID:   "tenant-a",
		Code:       "WO-" + id,
		CustomerID: "cust-1",
		VehicleID:  "veh-1",
		Status:     status,
	}).Error)
}

var allStatuses = []Status{
	StatusScheduled,
	StatusInInspection,
	StatusInProgress,
	StatusAwaitingPayment,
	StatusCompleted,
	StatusCanceled,
}

var legalEdges = map[Status][]Status{
	StatusScheduled:       {StatusInInspection, StatusCanceled},
	StatusInInspection:    {StatusInProgress, StatusCanceled},
	StatusInProgress:      {StatusAwaitingPayment, StatusCanceled},
	StatusAwaitingPayment: {StatusCompleted},
}

func isLegal(from, to Status) bool {
	for _, next := range legalEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TestTransitionTableExhaustive checks every (from, to) pair: declared edges
// succeed, everything else is rejected with a bad-request naming the pair.
func TestTransitionTableExhaustive(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			t.Run(fmt.Sprintf("%s_to_%s", from, to), func(t *testing.T) {
				svc, db, _ := transitionService(t)
				seedOrder(t, db, "order-1", from)

				resp, err := svc.Transition(memberCtx("tenant-a"), &TransitionRequest{OrderID: "order-1", To: string(to)})

				if isLegal(from, to) {
					require.NoError(t, err)
					require.Equal(t, to, resp.Status)

					var stored Order
					require.NoError(t, db.Where("id = ?", "order-1").First(&stored).Error)
					require.Equal(t, to, stored.Status)
					return
				}

				requireStatus(t, err, errutil.StatusBadRequest, fmt.Sprintf("invalid transition: %s -> %s", from, to))

				var stored Order
				require.NoError(t, db.Where("id = ?", "order-1").First(&stored).Error)
				require.Equal(t, from, stored.Status)
			})
		}
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	svc, db, _ := transitionService(t)
	seedOrder(t, db, "order-1", StatusScheduled)

	_, err := svc.Transition(memberCtx("tenant-a"), &TransitionRequest{OrderID: "order-1", To: "repainted"})
	requireStatus(t, err, errutil.StatusBadRequest, "")
}

func TestTransitionSetsStartedAtOnce(t *testing.T) {
	svc, db, _ := transitionService(t)
	seedOrder(t, db, "order-1", StatusInInspection)

	resp, err := svc.Transition(memberCtx("tenant-a"), &TransitionRequest{OrderID: "order-1", To: string(StatusInProgress)})
	require.NoError(t, err)
	require.NotNil(t, resp.StartedAt)

	// An order carrying a start timestamp from a prior cycle must keep it.
	earlier := time.Now().Add(-2 * time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, db.Create(&Order{
		ID: "order-2", TenantID: "tenant-a", Code: "WO-order-2",
		CustomerID: "cust-1", VehicleID: "veh-1",
		Status: StatusInInspection, StartedAt: &earlier,
	}).Error)

	resp2, err := svc.Transition(memberCtx("tenant-a"), &TransitionRequest{OrderID: "order-2", To: string(StatusInProgress)})
	require.NoError(t, err)
	require.NotNil(t, resp2.StartedAt)
	require.True(t, resp2.StartedAt.Equal(earlier))
}

func TestTransitionSetsCompletedAtUnconditionally(t *testing.T) {
	svc, db, _ := transitionService(t)

	stale := time.Now().Add(-24 * time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, db.Create(&Order{
		ID: "order-1", TenantID: "tenant-a", Code: "WO-order-1",
		CustomerID: "cust-1", VehicleID: "veh-1",
		Status: StatusAwaitingPayment, CompletedAt: &stale,
	}).Error)

	resp, err := svc.Transition(memberCtx("tenant-a"), &TransitionRequest{OrderID: "order-1", To: string(StatusCompleted)})
	require.NoError(t, err)
	require.NotNil(t, resp.CompletedAt)
	require.False(t, resp.CompletedAt.Equal(stale))
}

func TestTransitionToAwaitingPaymentHasNoTimestampSideEffect(t *testing.T) {
	svc, db, _ := transitionService(t)
	seedOrder(t, db, "order-1", StatusInProgress)

	resp, err := svc.Transition(memberCtx("tenant-a"), &TransitionRequest{OrderID: "order-1", To: string(StatusAwaitingPayment)})
	require.NoError(t, err)
	require.Nil(t, resp.StartedAt)
	require.Nil(t, resp.CompletedAt)
}

func TestTransitionEnqueuesCompletedTask(t *testing.T) {
	svc, db, enqueuer := transitionService(t)
	seedOrder(t, db, "order-1", StatusAwaitingPayment)

	_, err := svc.Transition(memberCtx("tenant-a"), &TransitionRequest{OrderID: "order-1", To: string(StatusCompleted)})
	require.NoError(t, err)
	require.Len(t, enqueuer.tasks, 1)
	require.Equal(t, "order:completed", enqueuer.tasks[0].Type())
}

func TestTransitionCrossTenantNotFound(t *testing.T) {
	svc, db, _ := transitionService(t)
	seedOrder(t, db, "order-1", StatusScheduled)

	_, err := svc.Transition(memberCtx("tenant-b"), &TransitionRequest{OrderID: "order-1", To: string(StatusInInspection)})
	requireStatus(t, err, errutil.StatusNotFound, "order not found")

	_, err = svc.Transition(memberCtx("tenant-b"), &TransitionRequest{OrderID: "no-such-order", To: string(StatusInInspection)})
	requireStatus(t, err, errutil.StatusNotFound, "order not found")
}

func fullService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t, &Order{}, &LineItem{}, &customer.Customer{}, &vehicle.Vehicle{}, &catalog.ServiceItem{}, &user.User{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	require.NoError(t, db.Create(&customer.Customer{ID: "cust-1", TenantID: "tenant-a", Name: "Dana Driver"}).Error)
	require.NoError(t, db.Create(&vehicle.Vehicle{ID: "veh-1", TenantID: "tenant-a", CustomerID: "cust-1", Plate: "ABC-123"}).Error)
	require.NoError(t, db.Create(&catalog.ServiceItem{ID: "svc-1", TenantID: "tenant-a", Name: "Full Detail", PriceCents: 17500, Active: true}).Error)
	require.NoError(t, db.Create(&catalog.ServiceItem{ID: "svc-2", TenantID: "tenant-a", Name: "Wax", PriceCents: 4500, Active: false}).Error)

	return NewService(ServiceParams{DB: db, Node: node, Seq: fakeSequence{}, Asynq: &fakeEnqueuer{}}), db
}

func TestCreateOrder(t *testing.T) {
	svc, _ := fullService(t)

	created, err := svc.CreateOrder(memberCtx("tenant-a"), &CreateOrderRequest{
		CustomerID: "cust-1",
		VehicleID:  "veh-1",
		ServiceIDs: []string{"svc-1"},
	})
	require.NoError(t, err)
	require.Equal(t, StatusScheduled, created.Status)
	require.Equal(t, "WO-260831-001AA", created.Code)
	require.Equal(t, int64(17500), created.TotalCents)
	require.Len(t, created.Items, 1)
	require.Equal(t, "Full Detail", created.Items[0].Name)

	got, err := svc.GetOrder(memberCtx("tenant-a"), &GetOrderRequest{OrderID: created.ID})
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
}

func TestCreateOrderInactiveService(t *testing.T) {
	svc, _ := fullService(t)

	_, err := svc.CreateOrder(memberCtx("tenant-a"), &CreateOrderRequest{
		CustomerID: "cust-1",
		VehicleID:  "veh-1",
		ServiceIDs: []string{"svc-2"},
	})
	requireStatus(t, err, errutil.StatusBadRequest, "")
}

func TestCreateOrderCrossTenantReferences(t *testing.T) {
	svc, _ := fullService(t)

	_, err := svc.CreateOrder(memberCtx("tenant-b"), &CreateOrderRequest{
		CustomerID: "cust-1",
		VehicleID:  "veh-1",
		ServiceIDs: []string{"svc-1"},
	})
	requireStatus(t, err, errutil.StatusNotFound, "customer not found")
}

func TestAssignOrder(t *testing.T) {
	svc, db := fullService(t)

	require.NoError(t, db.Create(&user.User{ID: "tech-1", TenantID: "tenant-a", Email: "t@example.com", Role: authz.RoleMember, Status: user.StatusActive}).Error)
	require.NoError(t, db.Create(&user.User{ID: "tech-2", TenantID: "tenant-b", Email: "u@example.com", Role: authz.RoleMember, Status: user.StatusActive}).Error)

	created, err := svc.CreateOrder(memberCtx("tenant-a"), &CreateOrderRequest{
		CustomerID: "cust-1",
		VehicleID:  "veh-1",
		ServiceIDs: []string{"svc-1"},
	})
	require.NoError(t, err)

	assigned, err := svc.AssignOrder(memberCtx("tenant-a"), &AssignOrderRequest{OrderID: created.ID, AssigneeID: "tech-1"})
	require.NoError(t, err)
	require.Equal(t, "tech-1", assigned.AssigneeID)

	_, err = svc.AssignOrder(memberCtx("tenant-a"), &AssignOrderRequest{OrderID: created.ID, AssigneeID: "tech-2"})
	requireStatus(t, err, errutil.StatusNotFound, "user not found")
}

func TestListOrdersScopedToTenant(t *testing.T) {
	svc, db := fullService(t)

	seedOrder(t, db, "order-a", StatusScheduled)
	require.NoError(t, db.Create(&Order{
		ID: "order-b", TenantID: "tenant-b", Code: "WO-order-b",
		CustomerID: "cust-9", VehicleID: "veh-9", Status: StatusScheduled,
	}).Error)

	resp, err := svc.ListOrders(memberCtx("tenant-a"), &ListOrdersRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	require.Equal(t, "order-a", resp.Orders[0].ID)
}

func TestCanTransitionMatchesTable(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			require.Equal(t, isLegal(from, to), CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}
