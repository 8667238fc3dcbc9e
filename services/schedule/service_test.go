package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

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

	db := testutil.NewTestDB(t, &Appointment{}, &order.Order{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	require.NoError(t, db.Create(&order.Order{
		ID: "order-1", TenantID: "tenant-a", Code: "WO-1",
		CustomerID: "cust-1", VehicleID: "veh-1", Status: order.StatusScheduled,
	}).Error)
	require.NoError(t, db.Create(&order.Order{
		ID: "order-2", TenantID: "tenant-a", Code: "WO-2",
		CustomerID: "cust-1", VehicleID: "veh-1", Status: order.StatusInProgress,
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

func TestBookAppointment(t *testing.T) {
	svc := newTestService(t)

	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	created, err := svc.BookAppointment(memberCtx("tenant-a"), &BookAppointmentRequest{
		OrderID:     "order-1",
		ScheduledAt: at,
		Notes:       "customer waiting on site",
	})
	require.NoError(t, err)
	require.Equal(t, defaultDurationMinutes, created.DurationMinutes)
	require.True(t, created.ScheduledAt.Equal(at))
}

func TestBookAppointmentOrderNotScheduled(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.BookAppointment(memberCtx("tenant-a"), &BookAppointmentRequest{
		OrderID:     "order-2",
		ScheduledAt: time.Now().Add(time.Hour),
	})
	requireStatus(t, err, errutil.StatusBadRequest)
}

func TestBookAppointmentCrossTenantNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.BookAppointment(memberCtx("tenant-b"), &BookAppointmentRequest{
		OrderID:     "order-1",
		ScheduledAt: time.Now().Add(time.Hour),
	})
	requireStatus(t, err, errutil.StatusNotFound)
}

func TestListAppointmentsByDay(t *testing.T) {
	svc := newTestService(t)

	day1 := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)

	for _, at := range []time.Time{day1, day1.Add(2 * time.Hour), day2} {
		_, err := svc.BookAppointment(memberCtx("tenant-a"), &BookAppointmentRequest{
			OrderID:     "order-1",
			ScheduledAt: at,
		})
		require.NoError(t, err)
	}

	resp, err := svc.ListAppointments(memberCtx("tenant-a"), &ListAppointmentsRequest{Date: "2026-09-01"})
	require.NoError(t, err)
	require.Len(t, resp.Appointments, 2)
	require.True(t, resp.Appointments[0].ScheduledAt.Before(resp.Appointments[1].ScheduledAt))

	_, err = svc.ListAppointments(memberCtx("tenant-a"), &ListAppointmentsRequest{Date: "09/01/2026"})
	requireStatus(t, err, errutil.StatusBadRequest)

	other, err := svc.ListAppointments(memberCtx("tenant-b"), &ListAppointmentsRequest{})
	require.NoError(t, err)
	require.Empty(t, other.Appointments)
}
