package catalog

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

	db := testutil.NewTestDB(t, &ServiceItem{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node})
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

func TestCreateAndListItems(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateItem(managerCtx("tenant-a"), &CreateItemRequest{
		Name:            "Full Detail",
		PriceCents:      17500,
		DurationMinutes: 240,
	})
	require.NoError(t, err)
	require.True(t, created.Active)

	_, err = svc.CreateItem(managerCtx("tenant-b"), &CreateItemRequest{Name: "Wash", PriceCents: 2500})
	require.NoError(t, err)

	resp, err := svc.ListItems(managerCtx("tenant-a"), &ListItemsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "Full Detail", resp.Items[0].Name)
}

func TestCreateItemValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateItem(managerCtx("tenant-a"), &CreateItemRequest{PriceCents: -1})
	requireStatus(t, err, errutil.StatusValidationFailed)
}

func TestUpdateItem(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateItem(managerCtx("tenant-a"), &CreateItemRequest{Name: "Wash", PriceCents: 2500})
	require.NoError(t, err)

	price := int64(3000)
	inactive := false
	updated, err := svc.UpdateItem(managerCtx("tenant-a"), &UpdateItemRequest{
		ServiceID:  created.ID,
		PriceCents: &price,
		Active:     &inactive,
	})
	require.NoError(t, err)
	require.Equal(t, int64(3000), updated.PriceCents)
	require.False(t, updated.Active)
}

func TestUpdateItemCrossTenantNotFound(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateItem(managerCtx("tenant-a"), &CreateItemRequest{Name: "Wash", PriceCents: 2500})
	require.NoError(t, err)

	_, err = svc.UpdateItem(managerCtx("tenant-b"), &UpdateItemRequest{ServiceID: created.ID, Name: "x"})
	requireStatus(t, err, errutil.StatusNotFound)
}
