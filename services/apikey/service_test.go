package apikey

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/pkg/security"
	"autocare-controlplane/services/authz"
	"autocare-controlplane/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &APIKey{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node})
}

func ownerCtx(tenantID string) context.Context {
	return authz.WithActor(context.Background(), authz.Actor{
		UserID:   "owner-1",
		TenantID: tenantID,
		Role:     authz.RoleOwner,
	})
}

func requireStatus(t *testing.T, err error, want errutil.CoreStatus) {
	t.Helper()
	require.Error(t, err)
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, want, be.Status())
}

func TestCreateKeyReturnsSecretOnce(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.CreateKey(ownerCtx("tenant-a"), &CreateKeyRequest{Label: "pos terminal"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Secret)
	require.True(t, strings.HasPrefix(resp.Key.KeyID, "acsk_live_"))
	require.Equal(t, KeyStatusActive, resp.Key.Status)
	require.Equal(t, []string{"*"}, []string(resp.Key.Scopes))

	ok, err := security.VerifyArgon2(resp.Secret, resp.Key.SecretHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestListKeysScopedToTenant(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateKey(ownerCtx("tenant-a"), &CreateKeyRequest{})
	require.NoError(t, err)
	_, err = svc.CreateKey(ownerCtx("tenant-b"), &CreateKeyRequest{})
	require.NoError(t, err)

	resp, err := svc.ListKeys(ownerCtx("tenant-a"))
	require.NoError(t, err)
	require.Len(t, resp.Keys, 1)
	require.Equal(t, "tenant-a", resp.Keys[0].TenantID)
}

func TestRevokeKey(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateKey(ownerCtx("tenant-a"), &CreateKeyRequest{})
	require.NoError(t, err)

	revoked, err := svc.RevokeKey(ownerCtx("tenant-a"), &RevokeKeyRequest{KeyID: created.Key.ID})
	require.NoError(t, err)
	require.Equal(t, KeyStatusRevoked, revoked.Status)
	require.NotNil(t, revoked.RevokedAt)

	_, err = svc.RevokeKey(ownerCtx("tenant-a"), &RevokeKeyRequest{KeyID: created.Key.ID})
	requireStatus(t, err, errutil.StatusConflict)
}

func TestRevokeKeyCrossTenantNotFound(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateKey(ownerCtx("tenant-a"), &CreateKeyRequest{})
	require.NoError(t, err)

	_, err = svc.RevokeKey(ownerCtx("tenant-b"), &RevokeKeyRequest{KeyID: created.Key.ID})
	requireStatus(t, err, errutil.StatusNotFound)

	_, err = svc.RevokeKey(ownerCtx("tenant-b"), &RevokeKeyRequest{KeyID: "no-such-key"})
	requireStatus(t, err, errutil.StatusNotFound)
}
