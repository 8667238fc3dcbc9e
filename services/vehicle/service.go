package vehicle

import (
	"context"
	"strings"

	"autocare-controlplane/pkg/db/option"
	"autocare-controlplane/pkg/db/pagination"
	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/pkg/repository"
	"autocare-controlplane/services/authz"
	"autocare-controlplane/services/customer"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db        *gorm.DB
	node      *snowflake.Node
	repo      repository.Repository[Vehicle]
	customers repository.Repository[customer.Customer]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:        p.DB,
		node:      p.Node,
		repo:      repository.ProvideStore[Vehicle](p.DB),
		customers: repository.ProvideStore[customer.Customer](p.DB),
	}
}

type ListVehiclesRequest struct {
	Limit      int    `form:"limit"`
	CustomerID string `form:"customer_id"`
}

type ListVehiclesResponse struct {
	Vehicles []*Vehicle `json:"vehicles"`
}

func (s *Service) ListVehicles(ctx context.Context, req *ListVehiclesRequest) (*ListVehiclesResponse, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	vehicles, err := s.repo.Find(ctx, &Vehicle{TenantID: actor.TenantID, CustomerID: req.CustomerID},
		option.ApplyPagination(pagination.Pagination{Limit: req.Limit}))
	if err != nil {
		zap.L().Error("failed to list vehicles", zap.Error(err))
		return nil, errutil.Internal("failed to list vehicles", err)
	}

	return &ListVehiclesResponse{Vehicles: vehicles}, nil
}

type GetVehicleRequest struct {
	VehicleID string `json:"-"`
}

func (s *Service) GetVehicle(ctx context.Context, req *GetVehicleRequest) (*Vehicle, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	record, err := s.repo.FindOne(ctx, &Vehicle{ID: req.VehicleID, TenantID: actor.TenantID})
	if err != nil {
		zap.L().Error("failed query get vehicle", zap.Error(err))
		return nil, errutil.Internal("failed to get vehicle", err)
	}

	if record == nil {
		return nil, errutil.NotFound("vehicle not found", nil)
	}

	return record, nil
}

type CreateVehicleRequest struct {
	CustomerID string `json:"customer_id"`
	Plate      string `json:"plate"`
	Make       string `json:"make"`
	Model      string `json:"model"`
	Year       int    `json:"year"`
	Color      string `json:"color"`
}

func (req *CreateVehicleRequest) validate() error {
	var details []errutil.Detail
	if req.CustomerID == "" {
		details = append(details, errutil.Detail{Field: "customer_id", Message: "customer_id is required"})
	}
	if req.Plate == "" {
		details = append(details, errutil.Detail{Field: "plate", Message: "plate is required"})
	}
	if len(details) > 0 {
		return errutil.ValidationFailed("invalid create vehicle request", nil, errutil.WithDetails(details...))
	}
	return nil
}

func (s *Service) CreateVehicle(ctx context.Context, req *CreateVehicleRequest) (*Vehicle, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	if err := req.validate(); err != nil {
		return nil, err
	}

	owner, err := s.customers.FindOne(ctx, &customer.Customer{ID: req.CustomerID, TenantID: actor.TenantID})
	if err != nil {
		zap.L().Error("failed query get customer", zap.Error(err))
		return nil, errutil.Internal("failed to create vehicle", err)
	}

	if owner == nil {
		return nil, errutil.NotFound("customer not found", nil)
	}

	plate := strings.ToUpper(strings.TrimSpace(req.Plate))

	exist, err := s.repo.FindOne(ctx, &Vehicle{TenantID: actor.TenantID, Plate: plate})
	if err != nil {
		zap.L().Error("failed query get vehicle by plate", zap.Error(err))
		return nil, errutil.Internal("failed to create vehicle", err)
	}

	if exist != nil {
		return nil, errutil.Conflict("a vehicle with this plate already exists", nil)
	}

	record := &Vehicle{
		ID:         s.node.Generate().String(),
		TenantID:   actor.TenantID,
		CustomerID: owner.ID,
		Plate:      plate,
		Make:       req.Make,
		Model:      req.Model,
		Year:       req.Year,
		Color:      req.Color,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		zap.L().Error("failed to create vehicle", zap.Error(err))
		return nil, errutil.Internal("failed to create vehicle", err)
	}

	return record, nil
}

type UpdateVehicleRequest struct {
	VehicleID string `json:"-"`
	Make      string `json:"make"`
	Model     string `json:"model"`
	Year      int    `json:"year"`
	Color     string `json:"color"`
}

func (s *Service) UpdateVehicle(ctx context.Context, req *UpdateVehicleRequest) (*Vehicle, error) {
	record, err := s.GetVehicle(ctx, &GetVehicleRequest{VehicleID: req.VehicleID})
	if err != nil {
		return nil, err
	}

	values := map[string]any{}
	if req.Make != "" {
		values["make"] = req.Make
	}
	if req.Model != "" {
		values["model"] = req.Model
	}
	if req.Year != 0 {
		values["year"] = req.Year
	}
	if req.Color != "" {
		values["color"] = req.Color
	}

	if len(values) > 0 {
		if err := s.repo.Update(ctx, record.ID, values); err != nil {
			zap.L().Error("failed to update vehicle", zap.Error(err))
			return nil, errutil.Internal("failed to update vehicle", err)
		}
	}

	return s.GetVehicle(ctx, &GetVehicleRequest{VehicleID: record.ID})
}
