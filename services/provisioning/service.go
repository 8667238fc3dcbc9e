package provisioning

import (
	"context"
	"encoding/json"
	"fmt"

	"autocare-controlplane/pkg/repository"
	"autocare-controlplane/pkg/taskname"
	"autocare-controlplane/services/catalog"
	"autocare-controlplane/services/order"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service runs the background side of tenant onboarding and order lifecycle
// events consumed from asynq.
type Service struct {
	db     *gorm.DB
	node   *snowflake.Node
	items  repository.Repository[catalog.ServiceItem]
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
		items:  repository.ProvideStore[catalog.ServiceItem](p.DB),
		orders: repository.ProvideStore[order.Order](p.DB),
	}
}

type tenantProvisionPayload struct {
	TenantID   string `json:"tenant_id"`
	TenantSlug string `json:"tenant_slug"`
}

// HandleTenantProvisioningCatalog seeds the starter service catalog for a
// freshly created tenant. Re-delivery is safe, a tenant that already has
// catalog rows is left untouched.
func (s *Service) HandleTenantProvisioningCatalog(ctx context.Context, t *asynq.Task) error {
	var payload tenantProvisionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		zap.L().Error("invalid tenant provisioning payload", zap.Error(err))
		return err
	}

	if payload.TenantID == "" {
		return fmt.Errorf("tenant provisioning payload missing tenant_id")
	}

	existing, err := s.items.Count(ctx, &catalog.ServiceItem{TenantID: payload.TenantID})
	if err != nil {
		return err
	}

	if existing > 0 {
		zap.L().Info("tenant catalog already provisioned",
			zap.String("tenant_id", payload.TenantID),
			zap.Int64("items", existing),
		)
		return nil
	}

	defaults := catalog.DefaultItems()
	records := make([]*catalog.ServiceItem, 0, len(defaults))
	for _, item := range defaults {
		item.ID = s.node.Generate().String()
		item.TenantID = payload.TenantID
		item.Active = true
		record := item
		records = append(records, &record)
	}

	if err := s.items.BatchCreate(ctx, records); err != nil {
		zap.L().Error("failed to seed tenant catalog",
			zap.String("tenant_id", payload.TenantID),
			zap.Error(err),
		)
		return err
	}

	zap.L().Info("tenant catalog provisioned",
		zap.String("tenant_id", payload.TenantID),
		zap.String("tenant_slug", payload.TenantSlug),
		zap.Int("items", len(records)),
	)
	return nil
}

type orderCompletedPayload struct {
	TenantID string `json:"tenant_id"`
	OrderID  string `json:"order_id"`
}

// HandleOrderCompleted records the completion of a work order for downstream
// reporting. Missing orders are not retried, the row may have been purged.
func (s *Service) HandleOrderCompleted(ctx context.Context, t *asynq.Task) error {
	var payload orderCompletedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		zap.L().Error("invalid order completed payload", zap.Error(err))
		return err
	}

	record, err := s.orders.FindOne(ctx, &order.Order{ID: payload.OrderID, TenantID: payload.TenantID})
	if err != nil {
		return err
	}

	if record == nil {
		zap.L().Warn("completed order no longer exists",
			zap.String("tenant_id", payload.TenantID),
			zap.String("order_id", payload.OrderID),
		)
		return nil
	}

	zap.L().Info("order completed",
		zap.String("tenant_id", record.TenantID),
		zap.String("order_id", record.ID),
		zap.String("order_code", record.Code),
		zap.Int64("total_cents", record.TotalCents),
	)
	return nil
}

func RegisterHandlers(mux *asynq.ServeMux, svc *Service) {
	mux.HandleFunc(taskname.TenantProvisioningCatalog, svc.HandleTenantProvisioningCatalog)
	mux.HandleFunc(taskname.OrderCompleted, svc.HandleOrderCompleted)
}

var Module = fx.Module("provisioning.module",
	fx.Provide(
		NewService,
	),
)

var Worker = fx.Module("provisioning.worker",
	Module,
	fx.Invoke(RegisterHandlers),
)
