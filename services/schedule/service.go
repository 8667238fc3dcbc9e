package schedule

import (
	"context"
	"time"

	"autocare-controlplane/pkg/db/option"
	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/pkg/repository"
	"autocare-controlplane/services/authz"
	"autocare-controlplane/services/order"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultDurationMinutes = 60

type Service struct {
	db     *gorm.DB
	node   *snowflake.Node
	repo   repository.Repository[Appointment]
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
		repo:   repository.ProvideStore[Appointment](p.DB),
		orders: repository.ProvideStore[order.Order](p.DB),
	}
}

type ListAppointmentsRequest struct {
	// Date filters to a single calendar day, formatted 2006-01-02.
	Date string `form:"date"`
}

type ListAppointmentsResponse struct {
	Appointments []*Appointment `json:"appointments"`
}

func (s *Service) ListAppointments(ctx context.Context, req *ListAppointmentsRequest) (*ListAppointmentsResponse, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	opts := []option.QueryOption{
		option.WithSortBy(option.QuerySortBy{SortBy: "scheduled_at", OrderBy: "ASC", Allow: map[string]bool{"scheduled_at": true}}),
	}

	if req.Date != "" {
		day, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, errutil.BadRequest("date must be formatted YYYY-MM-DD", err)
		}
		opts = append(opts,
			option.ApplyOperator(option.Condition{Field: "scheduled_at", Operator: option.GTE, Value: day}),
			option.ApplyOperator(option.Condition{Field: "scheduled_at", Operator: option.LT, Value: day.AddDate(0, 0, 1)}),
		)
	}

	appointments, err := s.repo.Find(ctx, &Appointment{TenantID: actor.TenantID}, opts...)
	if err != nil {
		zap.L().Error("failed to list appointments", zap.Error(err))
		return nil, errutil.Internal("failed to list appointments", err)
	}

	return &ListAppointmentsResponse{Appointments: appointments}, nil
}

type BookAppointmentRequest struct {
	OrderID         string    `json:"order_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes"`
}

func (req *BookAppointmentRequest) validate() error {
	var details []errutil.Detail
	if req.OrderID == "" {
		details = append(details, errutil.Detail{Field: "order_id", Message: "order_id is required"})
	}
	if req.ScheduledAt.IsZero() {
		details = append(details, errutil.Detail{Field: "scheduled_at", Message: "scheduled_at is required"})
	}
	if req.DurationMinutes < 0 {
		details = append(details, errutil.Detail{Field: "duration_minutes", Message: "duration_minutes must not be negative"})
	}
	if len(details) > 0 {
		return errutil.ValidationFailed("invalid book appointment request", nil, errutil.WithDetails(details...))
	}
	return nil
}

func (s *Service) BookAppointment(ctx context.Context, req *BookAppointmentRequest) (*Appointment, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	if err := req.validate(); err != nil {
		return nil, err
	}

	target, err := s.orders.FindOne(ctx, &order.Order{ID: req.OrderID, TenantID: actor.TenantID})
	if err != nil {
		zap.L().Error("failed query get order", zap.Error(err))
		return nil, errutil.Internal("failed to book appointment", err)
	}

	if target == nil {
		return nil, errutil.NotFound("order not found", nil)
	}

	if target.Status != order.StatusScheduled {
		return nil, errutil.BadRequest("order can only be booked while scheduled", nil)
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = defaultDurationMinutes
	}

	record := &Appointment{
		ID:              s.node.Generate().String(),
		TenantID:        actor.TenantID,
		OrderID:         target.ID,
		ScheduledAt:     req.ScheduledAt.UTC(),
		DurationMinutes: duration,
		Notes:           req.Notes,
		CreatedBy:       actor.UserID,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		zap.L().Error("failed to book appointment", zap.Error(err))
		return nil, errutil.Internal("failed to book appointment", err)
	}

	return record, nil
}
