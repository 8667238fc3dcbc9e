package customer

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/services/authz"
	"autocare-controlplane/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &Customer{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node})
}

func memberCtx(tenantID string) context.Context {
	return authz.WithActor(context.Background(), authz.Actor{
		UserID:   "member-1",
		TenantID: tenantID,
		Role:     authz.RoleMember,
	})
}

func requireStatus(t *testing.T, err error, want errutil.CoreStatus) {
	t.Helper()
	require.Error(t, err)
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, want, be.Status())
}

func TestCreateAndGetCustomer(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateCustomer(memberCtx("tenant-a"), &CreateCustomerRequest{
		Name:  "Dana Driver",
		Phone: "+1-555-0100",
	})
	require.NoError(t, err)
	require.Equal(t, "tenant-a", created.TenantID)

	got, err := svc.GetCustomer(memberCtx("tenant-a"), &GetCustomerRequest{CustomerID: created.ID})
	require.NoError(t, err)
	require.Equal(t, "Dana Driver", got.Name)
}

func TestCreateCustomerValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateCustomer(memberCtx("tenant-a"), &CreateCustomerRequest{})
	requireStatus(t, err, errutil.StatusValidationFailed)
}

func TestGetCustomerCrossTenantNotFound(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateCustomer(memberCtx("tenant-a"), &CreateCustomerRequest{Name: "Dana Driver"})
	require.NoError(t, err)

	_, err = svc.GetCustomer(memberCtx("tenant-b"), &GetCustomerRequest{CustomerID: created.ID})
	requireStatus(t, err, errutil.StatusNotFound)

	_, err = svc.GetCustomer(memberCtx("tenant-b"), &GetCustomerRequest{CustomerID: "no-such-customer"})
	requireStatus(t, err, errutil.StatusNotFound)
}

func TestUpdateCustomer(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateCustomer(memberCtx("tenant-a"), &CreateCustomerRequest{Name: "Dana Driver"})
	require.NoError(t, err)

	updated, err := svc.UpdateCustomer(memberCtx("tenant-a"), &UpdateCustomerRequest{
		CustomerID: created.ID,
		Phone:      "+1-555-0199",
	})
	require.NoError(t, err)
	require.Equal(t, "+1-555-0199", updated.Phone)
	require.Equal(t, "Dana Driver", updated.Name)

	_, err = svc.UpdateCustomer(memberCtx("tenant-b"), &UpdateCustomerRequest{CustomerID: created.ID, Name: "x"})
	requireStatus(t, err, errutil.StatusNotFound)
}

func TestListCustomersScopedToTenant(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateCustomer(memberCtx("tenant-a"), &CreateCustomerRequest{Name: "A"})
	require.NoError(t, err)
	_, err = svc.CreateCustomer(memberCtx("tenant-b"), &CreateCustomerRequest{Name: "B"})
	require.NoError(t, err)

	resp, err := svc.ListCustomers(memberCtx("tenant-a"), &ListCustomersRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	require.Equal(t, "A", resp.Customers[0].Name)
}
