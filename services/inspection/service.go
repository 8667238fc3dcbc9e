package inspection

import (
	"context"
	"encoding/json"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/pkg/repository"
	"autocare-controlplane/services/authz"
	"autocare-controlplane/services/order"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	node   *snowflake.Node
	repo   repository.Repository[Inspection]
	orders repository.Repository[order.Order]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:     p.DB,
		node:   p.Node,
		repo:   repository.ProvideStore[Inspection](p.DB),
		orders: repository.ProvideStore[order.Order](p.DB),
	}
}

type ListInspectionsRequest struct {
	OrderID string `form:"order_id"`
}

type ListInspectionsResponse struct {
	Inspections []*Inspection `json:"inspections"`
}

func (s *Service) ListInspections(ctx context.Context, req *ListInspectionsRequest) (*ListInspectionsResponse, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	inspections, err := s.repo.Find(ctx, &Inspection{TenantID: actor.TenantID, OrderID: req.OrderID})
	if err != nil {
		zap.L().Error("failed to list inspections", zap.Error(err))
		return nil, errutil.Internal("failed to list inspections", err)
	}

	return &ListInspectionsResponse{Inspections: inspections}, nil
}

type CreateInspectionRequest struct {
	OrderID   string          `json:"order_id"`
	Checklist json.RawMessage `json:"checklist"`
	Notes     string          `json:"notes"`
}

// CreateInspection attaches a checklist to an order currently under
// inspection. Orders in any other status reject the write.
func (s *Service) CreateInspection(ctx context.Context, req *CreateInspectionRequest) (*Inspection, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	if req.OrderID == "" {
		return nil, errutil.ValidationFailed("invalid create inspection request", nil,
			errutil.WithDetails(errutil.Detail{Field: "order_id", Message: "order_id is required"}))
	}

	target, err := s.orders.FindOne(ctx, &order.Order{ID: req.OrderID, TenantID: actor.TenantID})
	if err != nil {
		zap.L().Error("failed query get order", zap.Error(err))
		return nil, errutil.Internal("failed to create inspection", err)
	}

	if target == nil {
		return nil, errutil.NotFound("order not found", nil)
	}

	if target.Status != order.StatusInInspection {
		return nil, errutil.BadRequest("order is not in inspection", nil)
	}

	record := &Inspection{
		ID:          s.node.Generate().String(),
		TenantID:    actor.TenantID,
		OrderID:     target.ID,
		InspectorID: actor.UserID,
		Checklist:   datatypes.JSON(req.Checklist),
		Notes:       req.Notes,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		zap.L().Error("failed to create inspection", zap.Error(err))
		return nil, errutil.Internal("failed to create inspection", err)
	}

	return record, nil
}
