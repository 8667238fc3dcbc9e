package apikey

import (
	"context"
	"fmt"
	"time"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/pkg/repository"
	"autocare-controlplane/pkg/security"
	"autocare-controlplane/services/authz"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
	repo repository.Repository[APIKey]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,
		repo: repository.ProvideStore[APIKey](p.DB),
	}
}

type ListKeysResponse struct {
	Keys []*APIKey `json:"api_keys"`
}

func (s *Service) ListKeys(ctx context.Context) (*ListKeysResponse, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	keys, err := s.repo.Find(ctx, &APIKey{TenantID: actor.TenantID})
	if err != nil {
		zap.L().Error("failed to list api keys", zap.Error(err))
		return nil, errutil.Internal("failed to list api keys", err)
	}

	return &ListKeysResponse{Keys: keys}, nil
}

type CreateKeyRequest struct {
	Label  string   `json:"label"`
	Scopes []string `json:"scopes"`
}

type CreateKeyResponse struct {
	Key *APIKey `json:"api_key"`
	// Secret is the plaintext credential, returned exactly once.
	Secret string `json:"secret"`
}

func (s *Service) CreateKey(ctx context.Context, req *CreateKeyRequest) (*CreateKeyResponse, error) {
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

	scopes := req.Scopes
	if len(scopes) == 0 {
		scopes = []string{"*"}
	}

	secret, err := security.GenerateBase64Secret(32)
	if err != nil {
		zapLog.Error("failed to generate api key secret", zap.Error(err))
		return nil, errutil.Internal("failed to create api key", err)
	}

	hash, err := security.HashArgon2(secret)
	if err != nil {
		zapLog.Error("failed to hash api key secret", zap.Error(err))
		return nil, errutil.Internal("failed to create api key", err)
	}

	id := s.node.Generate().String()
	record := &APIKey{
		ID:         id,
		TenantID:   actor.TenantID,
		KeyID:      fmt.Sprintf("acsk_live_%s", id),
		KeyType:    KeyTypeServer,
		Label:      req.Label,
		SecretHash: hash,
		Scopes:     scopes,
		Status:     KeyStatusActive,
		CreatedBy:  actor.UserID,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		zapLog.Error("failed to create api key", zap.Error(err))
		return nil, errutil.Internal("failed to create api key", err)
	}

	return &CreateKeyResponse{Key: record, Secret: secret}, nil
}

type RevokeKeyRequest struct {
	KeyID string `json:"-"`
}

func (s *Service) RevokeKey(ctx context.Context, req *RevokeKeyRequest) (*APIKey, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	key, err := s.repo.FindOne(ctx, &APIKey{ID: req.KeyID, TenantID: actor.TenantID})
	if err != nil {
		zap.L().Error("failed query get api key", zap.Error(err))
		return nil, errutil.Internal("failed to revoke api key", err)
	}

	if key == nil {
		return nil, errutil.NotFound("api key not found", nil)
	}

	if key.Status == KeyStatusRevoked {
		return nil, errutil.Conflict("api key is already revoked", nil)
	}

	now := time.Now()
	if err := s.repo.Update(ctx, key.ID, map[string]any{
		"status":     string(KeyStatusRevoked),
		"revoked_at": now,
	}); err != nil {
		zap.L().Error("failed to revoke api key", zap.Error(err))
		return nil, errutil.Internal("failed to revoke api key", err)
	}

	key.Status = KeyStatusRevoked
	key.RevokedAt = &now
	return key, nil
}
