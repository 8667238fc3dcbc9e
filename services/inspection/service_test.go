package inspection

import (
	"context"
	"encoding/json"
	"errors"
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

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &Inspection{}, &order.Order{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	require.NoError(t, db.Create(&order.Order{
		ID: "order-1", TenantID: "tenant-a", Code: "WO-1",
		CustomerID: "cust-1", VehicleID: "veh-1", Status: order.StatusInInspection,
	}).Error)
	require.NoError(t, db.Create(&order.Order{
		ID: "order-2", TenantID: "tenant-a", Code: "WO-2",
		CustomerID: "cust-1", VehicleID: "veh-1", Status: order.StatusScheduled,
	}).Error)

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

func TestCreateInspection(t *testing.T) {
	svc := newTestService(t)

	checklist := json.RawMessage(`{"tires":"ok","brakes":"worn"}`)
	created, err := svc.CreateInspection(memberCtx("tenant-a"), &CreateInspectionRequest{
		OrderID:   "order-1",
		Checklist: checklist,
		Notes:     "front brakes at 30%",
	})
	require.NoError(t, err)
	require.Equal(t, "member-1", created.InspectorID)
	require.JSONEq(t, string(checklist), string(created.Checklist))

	resp, err := svc.ListInspections(memberCtx("tenant-a"), &ListInspectionsRequest{OrderID: "order-1"})
	require.NoError(t, err)
	require.Len(t, resp.Inspections, 1)
}

func TestCreateInspectionWrongOrderStatus(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateInspection(memberCtx("tenant-a"), &CreateInspectionRequest{OrderID: "order-2"})
	requireStatus(t, err, errutil.StatusBadRequest)
}

func TestCreateInspectionCrossTenantNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateInspection(memberCtx("tenant-b"), &CreateInspectionRequest{OrderID: "order-1"})
	requireStatus(t, err, errutil.StatusNotFound)
}
