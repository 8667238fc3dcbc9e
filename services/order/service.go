package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"autocare-controlplane/pkg/db/option"
	"autocare-controlplane/pkg/db/pagination"
	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/pkg/repository"
	"autocare-controlplane/pkg/sequence"
	"autocare-controlplane/pkg/task"
	"autocare-controlplane/pkg/taskname"
	"autocare-controlplane/services/authz"
	"autocare-controlplane/services/catalog"
	"autocare-controlplane/services/customer"
	"autocare-controlplane/services/user"
	"autocare-controlplane/services/vehicle"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db        *gorm.DB
	node      *snowflake.Node
	seq       sequence.Generator
	asynq     task.Enqueuer
	repo      repository.Repository[Order]
	items     repository.Repository[LineItem]
	customers repository.Repository[customer.Customer]
	vehicles  repository.Repository[vehicle.Vehicle]
	users     repository.Repository[user.User]
	services  repository.Repository[catalog.ServiceItem]
}

type ServiceParams struct {
	fx.In
	DB    *gorm.DB
	Node  *snowflake.Node
	Seq   sequence.Generator
	Asynq task.Enqueuer
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:        p.DB,
		node:      p.Node,
		seq:       p.Seq,
		asynq:     p.Asynq,
		repo:      repository.ProvideStore[Order](p.DB),
		items:     repository.ProvideStore[LineItem](p.DB),
		customers: repository.ProvideStore[customer.Customer](p.DB),
		vehicles:  repository.ProvideStore[vehicle.Vehicle](p.DB),
		users:     repository.ProvideStore[user.User](p.DB),
		services:  repository.ProvideStore[catalog.ServiceItem](p.DB),
	}
}

type ListOrdersRequest struct {
	Limit  int    `form:"limit"`
	Status string `form:"status"`
}

type ListOrdersResponse struct {
	Orders []*Order `json:"orders"`
}

func (s *Service) ListOrders(ctx context.Context, req *ListOrdersRequest) (*ListOrdersResponse, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	orders, err := s.repo.Find(ctx, &Order{TenantID: actor.TenantID, Status: Status(req.Status)},
		option.ApplyPagination(pagination.Pagination{Limit: req.Limit}),
		option.WithSortBy(option.QuerySortBy{
			SortBy:  "created_at",
			OrderBy: "desc",
			Allow:   map[string]bool{"created_at": true},
		}))
	if err != nil {
		zap.L().Error("failed to list orders", zap.Error(err))
		return nil, errutil.Internal("failed to list orders", err)
	}

	return &ListOrdersResponse{Orders: orders}, nil
}

type GetOrderRequest struct {
	OrderID string `json:"-"`
}

func (s *Service) GetOrder(ctx context.Context, req *GetOrderRequest) (*Order, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	record, err := s.repo.FindOne(ctx, &Order{ID: req.OrderID, TenantID: actor.TenantID})
	if err != nil {
		zap.L().Error("failed query get order", zap.Error(err))
		return nil, errutil.Internal("failed to get order", err)
	}

	if record == nil {
		return nil, errutil.NotFound("order not found", nil)
	}

	items, err := s.items.Find(ctx, &LineItem{OrderID: record.ID})
	if err != nil {
		zap.L().Error("failed query order line items", zap.Error(err))
		return nil, errutil.Internal("failed to get order", err)
	}

	record.Items = items
	return record, nil
}

type CreateOrderRequest struct {
	CustomerID  string     `json:"customer_id"`
	VehicleID   string     `json:"vehicle_id"`
	ServiceIDs  []string   `json:"service_ids"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Notes       string     `json:"notes"`
}

func (req *CreateOrderRequest) validate() error {
	var details []errutil.Detail
	if req.CustomerID == "" {
		details = append(details, errutil.Detail{Field: "customer_id", Message: "customer_id is required"})
	}
	if req.VehicleID == "" {
		details = append(details, errutil.Detail{Field: "vehicle_id", Message: "vehicle_id is required"})
	}
	if len(req.ServiceIDs) == 0 {
		details = append(details, errutil.Detail{Field: "service_ids", Message: "at least one service is required"})
	}
	if len(details) > 0 {
		return errutil.ValidationFailed("invalid create order request", nil, errutil.WithDetails(details...))
	}
	return nil
}

// CreateOrder opens a work order in scheduled, snapshotting the selected
// catalog services into line items.
func (s *Service) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
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

	if err := req.validate(); err != nil {
		return nil, err
	}

	cust, err := s.customers.FindOne(ctx, &customer.Customer{ID: req.CustomerID, TenantID: actor.TenantID})
	if err != nil {
		zapLog.Error("failed query get customer", zap.Error(err))
		return nil, errutil.Internal("failed to create order", err)
	}
	if cust == nil {
		return nil, errutil.NotFound("customer not found", nil)
	}

	veh, err := s.vehicles.FindOne(ctx, &vehicle.Vehicle{ID: req.VehicleID, TenantID: actor.TenantID})
	if err != nil {
		zapLog.Error("failed query get vehicle", zap.Error(err))
		return nil, errutil.Internal("failed to create order", err)
	}
	if veh == nil {
		return nil, errutil.NotFound("vehicle not found", nil)
	}

	orderID := s.node.Generate().String()
	var lineItems []*LineItem
	var total int64

	for _, serviceID := range req.ServiceIDs {
		item, err := s.services.FindOne(ctx, &catalog.ServiceItem{ID: serviceID, TenantID: actor.TenantID})
		if err != nil {
			zapLog.Error("failed query get catalog item", zap.Error(err))
			return nil, errutil.Internal("failed to create order", err)
		}
		if item == nil {
			return nil, errutil.NotFound("service not found", nil)
		}
		if !item.Active {
			return nil, errutil.BadRequest(fmt.Sprintf("service %q is not active", item.Name), nil)
		}

		lineItems = append(lineItems, &LineItem{
			ID:         s.node.Generate().String(),
			TenantID:   actor.TenantID,
			OrderID:    orderID,
			ServiceID:  item.ID,
			Name:       item.Name,
			PriceCents: item.PriceCents,
			Quantity:   1,
		})
		total += item.PriceCents
	}

	code, err := s.seq.NextOrderCode(ctx, actor.TenantID)
	if err != nil {
		zapLog.Error("failed to generate order code", zap.Error(err))
		return nil, errutil.Internal("failed to create order", err)
	}

	record := &Order{
		ID:          orderID,
		TenantID:    actor.TenantID,
		Code:        code,
		CustomerID:  cust.ID,
		VehicleID:   veh.ID,
		Status:      StatusScheduled,
		Notes:       req.Notes,
		TotalCents:  total,
		ScheduledAt: req.ScheduledAt,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := tx.Create(lineItems).Error; err != nil {
			return fmt.Errorf("failed to create line items: %w", err)
		}
		return nil
	}); err != nil {
		zapLog.Error("failed to create order transaction", zap.Error(err))
		return nil, errutil.Internal("failed to create order", err)
	}

	record.Items = lineItems
	return record, nil
}

type AssignOrderRequest struct {
	OrderID    string `json:"-"`
	AssigneeID string `json:"assignee_id"`
}

func (s *Service) AssignOrder(ctx context.Context, req *AssignOrderRequest) (*Order, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	record, err := s.repo.FindOne(ctx, &Order{ID: req.OrderID, TenantID: actor.TenantID})
	if err != nil {
		zap.L().Error("failed query get order", zap.Error(err))
		return nil, errutil.Internal("failed to assign order", err)
	}
	if record == nil {
		return nil, errutil.NotFound("order not found", nil)
	}

	assignee, err := s.users.FindOne(ctx, &user.User{ID: req.AssigneeID, TenantID: record.TenantID})
	if err != nil {
		zap.L().Error("failed query get assignee", zap.Error(err))
		return nil, errutil.Internal("failed to assign order", err)
	}
	if assignee == nil || assignee.Status != user.StatusActive {
		return nil, errutil.NotFound("user not found", nil)
	}

	if err := s.repo.Update(ctx, record.ID, map[string]any{"assignee_id": assignee.ID}); err != nil {
		zap.L().Error("failed to assign order", zap.Error(err))
		return nil, errutil.Internal("failed to assign order", err)
	}

	record.AssigneeID = assignee.ID
	return record, nil
}

type TransitionRequest struct {
	OrderID string `json:"-"`
	To      string `json:"to"`
}

// Transition moves an order along a declared edge under a row lock. Entering
// in_progress stamps StartedAt only when unset; entering completed stamps
// CompletedAt unconditionally. No other edge has a side effect.
func (s *Service) Transition(ctx context.Context, req *TransitionRequest) (*Order, error) {
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

	to := Status(req.To)

	var out *Order
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		record, err := s.repo.WithTrx(tx).FindOne(ctx, &Order{ID: req.OrderID, TenantID: actor.TenantID}, option.WithLockingUpdate())
		if err != nil {
			return fmt.Errorf("failed to load order: %w", err)
		}

		if record == nil {
			return errutil.NotFound("order not found", nil)
		}

		if err := ValidateTransition(record.Status, to); err != nil {
			return err
		}

		record.Status = to
		switch to {
		case StatusInProgress:
			if record.StartedAt == nil {
				now := time.Now()
				record.StartedAt = &now
			}
		case StatusCompleted:
			now := time.Now()
			record.CompletedAt = &now
		}

		if err := tx.Save(record).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		out = record
		return nil
	}); err != nil {
		var base errutil.BaseError
		if errors.As(err, &base) {
			return nil, err
		}
		zapLog.Error("failed to transition order", zap.String("order_id", req.OrderID), zap.Error(err))
		return nil, errutil.Internal("failed to transition order", err)
	}

	if out.Status == StatusCompleted && s.asynq != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"tenant_id": out.TenantID,
			"order_id":  out.ID,
		})
		if _, err := s.asynq.Enqueue(asynq.NewTask(taskname.OrderCompleted, payload)); err != nil {
			zapLog.Warn("failed to enqueue order completed task", zap.Error(err))
		}
	}

	return out, nil
}
