package payment

import (
	"context"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/pkg/repository"
	"autocare-controlplane/pkg/sequence"
	"autocare-controlplane/services/authz"
	"autocare-controlplane/services/order"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	node   *snowflake.Node
	seq    sequence.Generator
	repo   repository.Repository[Payment]
	orders repository.Repository[order.Order]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
	Seq  sequence.Generator
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:     p.DB,
		node:   p.Node,
		seq:    p.Seq,
		repo:   repository.ProvideStore[Payment](p.DB),
		orders: repository.ProvideStore[order.Order](p.DB),
	}
}

type ListPaymentsRequest struct {
	OrderID string `form:"order_id"`
}

type ListPaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}

func (s *Service) ListPayments(ctx context.Context, req *ListPaymentsRequest) (*ListPaymentsResponse, error) {
	actor, ok := authz.ActorFromContext(ctx)
	if !ok {
		return nil, errutil.Unauthorized("authentication required", nil)
	}

	payments, err := s.repo.Find(ctx, &Payment{TenantID: actor.TenantID, OrderID: req.OrderID})
	if err != nil {
		zap.L().Error("failed to list payments", zap.Error(err))
		return nil, errutil.Internal("failed to list payments", err)
	}

	return &ListPaymentsResponse{Payments: payments}, nil
}

type CreatePaymentRequest struct {
	OrderID     string `json:"order_id"`
	AmountCents int64  `json:"amount_cents"`
	Method      string `json:"method"`
	Reference   string `json:"reference"`
}

func (req *CreatePaymentRequest) validate() error {
	var details []errutil.Detail
	if req.OrderID == "" {
		details = append(details, errutil.Detail{Field: "order_id", Message: "order_id is required"})
	}
	if req.AmountCents <= 0 {
		details = append(details, errutil.Detail{Field: "amount_cents", Message: "amount_cents must be positive"})
	}
	if !Method(req.Method).Valid() {
		details = append(details, errutil.Detail{Field: "method", Message: "method must be cash, card or transfer"})
	}
	if len(details) > 0 {
		return errutil.ValidationFailed("invalid create payment request", nil, errutil.WithDetails(details...))
	}
	return nil
}

// CreatePayment records a payment against an awaiting_payment order. Moving
// the order to completed stays an explicit transition call; full payment only
// makes it legal.
func (s *Service) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*Payment, error) {
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
		return nil, errutil.Internal("failed to create payment", err)
	}

	if target == nil {
		return nil, errutil.NotFound("order not found", nil)
	}

	if target.Status != order.StatusAwaitingPayment {
		return nil, errutil.BadRequest("order is not awaiting payment", nil)
	}

	code, err := s.seq.NextInvoiceCode(ctx, actor.TenantID)
	if err != nil {
		zap.L().Error("failed to generate invoice code", zap.Error(err))
		return nil, errutil.Internal("failed to create payment", err)
	}

	record := &Payment{
		ID:          s.node.Generate().String(),
		TenantID:    actor.TenantID,
		OrderID:     target.ID,
		InvoiceCode: code,
		AmountCents: req.AmountCents,
		Method:      Method(req.Method),
		Reference:   req.Reference,
		CreatedBy:   actor.UserID,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		zap.L().Error("failed to create payment", zap.Error(err))
		return nil, errutil.Internal("failed to create payment", err)
	}

	return record, nil
}
