package catalog

import (
	"context"

	"autocare-controlplane/pkg/db/option"
	"autocare-controlplane/pkg/db/pagination"
	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/pkg/repository"
	"autocare-controlplane/services/authz"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
	repo repository.Repository[ServiceItem]
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
		repo: repository.ProvideStore[ServiceItem](p.DB),
	}
}

type ListItemsRequest struct {
	Limit int `form:"limit"`
}

type ListItemsResponse struct {
	Items []*ServiceItem `json:"services"`
}

func (s *Service) ListItems(ctx context.Context, req *ListItemsRequest) (*ListItemsResponse, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	items, err := s.repo.Find(ctx, &ServiceItem{TenantID: actor.TenantID},
		option.ApplyPagination(pagination.Pagination{Limit: req.Limit}))
	if err != nil {
		zap.L().Error("failed to list catalog items", zap.Error(err))
		return nil, errutil.Internal("failed to list services", err)
	}

	return &ListItemsResponse{Items: items}, nil
}

type CreateItemRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"price_cents"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (s *Service) CreateItem(ctx context.Context, req *CreateItemRequest) (*ServiceItem, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	var details []errutil.Detail
	if req.Name == "" {
		details = append(details, errutil.Detail{Field: "name", Message: "name is required"})
	}
	if req.PriceCents < 0 {
		details = append(details, errutil.Detail{Field: "price_cents", Message: "price_cents must not be negative"})
	}
	if len(details) > 0 {
		return nil, errutil.ValidationFailed("invalid create service request", nil, errutil.WithDetails(details...))
	}

	record := &ServiceItem{
		ID:              s.node.Generate().String(),
		TenantID:        actor.TenantID,
		Name:            req.Name,
		Description:     req.Description,
		PriceCents:      req.PriceCents,
		DurationMinutes: req.DurationMinutes,
		Active:          true,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		zap.L().Error("failed to create catalog item", zap.Error(err))
		return nil, errutil.Internal("failed to create service", err)
	}

	return record, nil
}

type UpdateItemRequest struct {
	ServiceID       string `json:"-"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	PriceCents      *int64 `json:"price_cents"`
	DurationMinutes *int   `json:"duration_minutes"`
	Active          *bool  `json:"active"`
}

func (s *Service) UpdateItem(ctx context.Context, req *UpdateItemRequest) (*ServiceItem, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	record, err := s.repo.FindOne(ctx, &ServiceItem{ID: req.ServiceID, TenantID: actor.TenantID})
	if err != nil {
		zap.L().Error("failed query get catalog item", zap.Error(err))
		return nil, errutil.Internal("failed to update service", err)
	}

	if record == nil {
		return nil, errutil.NotFound("service not found", nil)
	}

	values := map[string]any{}
	if req.Name != "" {
		values["name"] = req.Name
	}
	if req.Description != "" {
		values["description"] = req.Description
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return nil, errutil.ValidationFailed("invalid update service request", nil,
				errutil.WithDetails(errutil.Detail{Field: "price_cents", Message: "price_cents must not be negative"}))
		}
		values["price_cents"] = *req.PriceCents
	}
	if req.DurationMinutes != nil {
		values["duration_minutes"] = *req.DurationMinutes
	}
	if req.Active != nil {
		values["active"] = *req.Active
	}

	if len(values) > 0 {
		if err := s.repo.Update(ctx, record.ID, values); err != nil {
			zap.L().Error("failed to update catalog item", zap.Error(err))
			return nil, errutil.Internal("failed to update service", err)
		}
	}

	fresh, err := s.repo.FindOne(ctx, &ServiceItem{ID: record.ID})
	if err != nil || fresh == nil {
		return nil, errutil.Internal("failed to update service", err)
	}

	return fresh, nil
}
