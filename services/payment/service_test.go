package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/services/authz"
	"autocare-controlplane/services/order"
	"autocare-controlplane/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fakeSequence struct {
	invoices int
}

func (f *fakeSequence) NextTenantCode(ctx context.Context) (string, error) {
	return "T001", nil
}

func (f *fakeSequence) NextOrderCode(ctx context.Context, tenantID string) (string, error) {
	return "WO-260831-001AA", nil
}

func (f *fakeSequence) NextInvoiceCode(ctx context.Context, tenantID string) (string, error) {
	f.invoices++
	return fmt.Sprintf("INV-260831-%03dAA", f.invoices), nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &Payment{}, &order.Order{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	require.NoError(t, db.Create(&order.Order{
		ID: "order-1", TenantID: "tenant-a", Code: "WO-1",
		CustomerID: "cust-1", VehicleID: "veh-1",
		Status: order.StatusAwaitingPayment, TotalCents: 7500,
	}).Error)
	require.NoError(t, db.Create(&order.Order{
		ID: "order-2", TenantID: "tenant-a", Code: "WO-2",
		CustomerID: "cust-1", VehicleID: "veh-1",
		Status: order.StatusInProgress, TotalCents: 5000,
	}).Error)

	return NewService(ServiceParams{DB: db, Node: node, Seq: &fakeSequence{}})
}

func managerCtx(tenantID string) context.Context {
	return authz.WithActor(context.Background(), authz.Actor{
		UserID:   "manager-1",
		TenantID: tenantID,
		Role:     authz.RoleManager,
	})
}

func requireStatus(t *testing.T, err error, want errutil.CoreStatus) {
	t.Helper()
	require.Error(t, err)
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, want, be.Status())
}

func TestCreatePayment(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreatePayment(managerCtx("tenant-a"), &CreatePaymentRequest{
		OrderID:     "order-1",
		AmountCents: 7500,
		Method:      "card",
		Reference:   "ch_123",
	})
	require.NoError(t, err)
	require.Equal(t, "tenant-a", created.TenantID)
	require.Equal(t, "manager-1", created.CreatedBy)
	require.Contains(t, created.InvoiceCode, "INV-")

	// Recording full payment must not move the order off awaiting_payment.
	var current order.Order
	require.NoError(t, svc.db.First(&current, "id = ?", "order-1").Error)
	require.Equal(t, order.StatusAwaitingPayment, current.Status)
}

func TestCreatePaymentOrderNotAwaitingPayment(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreatePayment(managerCtx("tenant-a"), &CreatePaymentRequest{
		OrderID:     "order-2",
		AmountCents: 5000,
		Method:      "cash",
	})
	requireStatus(t, err, errutil.StatusBadRequest)
}

func TestCreatePaymentValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreatePayment(managerCtx("tenant-a"), &CreatePaymentRequest{
		OrderID:     "order-1",
		AmountCents: 0,
		Method:      "crypto",
	})
	requireStatus(t, err, errutil.StatusValidationFailed)
}

func TestCreatePaymentCrossTenantNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreatePayment(managerCtx("tenant-b"), &CreatePaymentRequest{
		OrderID:     "order-1",
		AmountCents: 7500,
		Method:      "card",
	})
	requireStatus(t, err, errutil.StatusNotFound)
}

func TestListPaymentsScopedToTenant(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreatePayment(managerCtx("tenant-a"), &CreatePaymentRequest{
		OrderID:     "order-1",
		AmountCents: 2500,
		Method:      "cash",
	})
	require.NoError(t, err)

	resp, err := svc.ListPayments(managerCtx("tenant-a"), &ListPaymentsRequest{OrderID: "order-1"})
	require.NoError(t, err)
	require.Len(t, resp.Payments, 1)

	other, err := svc.ListPayments(managerCtx("tenant-b"), &ListPaymentsRequest{OrderID: "order-1"})
	require.NoError(t, err)
	require.Empty(t, other.Payments)
}
