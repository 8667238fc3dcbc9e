package customer

import (
	"context"

	"autocare-controlplane/pkg/db/option"
	"autocare-controlplane/pkg/db/pagination"
	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/pkg/repository"
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
	repo repository.Repository[Customer]
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
		repo: repository.ProvideStore[Customer](p.DB),
	}
}

type ListCustomersRequest struct {
	Limit int `form:"limit"`
}

type ListCustomersResponse struct {
	Customers []*Customer `json:"customers"`
}

func (s *Service) ListCustomers(ctx context.Context, req *ListCustomersRequest) (*ListCustomersResponse, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	customers, err := s.repo.Find(ctx, &Customer{TenantID: actor.TenantID},
		option.ApplyPagination(pagination.Pagination{Limit: req.Limit}))
	if err != nil {
		zap.L().Error("failed to list customers", zap.Error(err))
		return nil, errutil.Internal("failed to list customers", err)
	}

	return &ListCustomersResponse{Customers: customers}, nil
}

type GetCustomerRequest struct {
	CustomerID string `json:"-"`
}

func (s *Service) GetCustomer(ctx context.Context, req *GetCustomerRequest) (*Customer, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	record, err := s.repo.FindOne(ctx, &Customer{ID: req.CustomerID, TenantID: actor.TenantID})
	if err != nil {
		zap.L().Error("failed query get customer", zap.Error(err))
		return nil, errutil.Internal("failed to get customer", err)
	}

	if record == nil {
		return nil, errutil.NotFound("customer not found", nil)
	}

	return record, nil
}

type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

func (s *Service) CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*Customer, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	if req.Name == "" {
		return nil, errutil.ValidationFailed("invalid create customer request", nil,
			errutil.WithDetails(errutil.Detail{Field: "name", Message: "name is required"}))
	}

	record := &Customer{
		ID:       s.node.Generate().String(),
		TenantID: actor.TenantID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Notes:    req.Notes,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		zap.L().Error("failed to create customer", zap.Error(err))
		return nil, errutil.Internal("failed to create customer", err)
	}

	return record, nil
}

type UpdateCustomerRequest struct {
	CustomerID string `json:"-"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Notes      string `json:"notes"`
}

func (s *Service) UpdateCustomer(ctx context.Context, req *UpdateCustomerRequest) (*Customer, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	record, err := s.repo.FindOne(ctx, &Customer{ID: req.CustomerID, TenantID: actor.TenantID})
	if err != nil {
		zap.L().Error("failed query get customer", zap.Error(err))
		return nil, errutil.Internal("failed to update customer", err)
	}

	if record == nil {
		return nil, errutil.NotFound("customer not found", nil)
	}

	values := map[string]any{}
	if req.Name != "" {
		values["name"] = req.Name
	}
	if req.Phone != "" {
		values["phone"] = req.Phone
	}
	if req.Email != "" {
		values["email"] = req.Email
	}
	if req.Notes != "" {
		values["notes"] = req.Notes
	}

	if len(values) > 0 {
		if err := s.repo.Update(ctx, record.ID, values); err != nil {
			zap.L().Error("failed to update customer", zap.Error(err))
			return nil, errutil.Internal("failed to update customer", err)
		}
	}

	return s.GetCustomer(ctx, &GetCustomerRequest{CustomerID: record.ID})
}
