package bootstrap

import (
	"strings"

	"autocare-controlplane/pkg/config"
	"autocare-controlplane/pkg/security"
	"autocare-controlplane/services/apikey"
	"autocare-controlplane/services/authz"
	"autocare-controlplane/services/catalog"
	"autocare-controlplane/services/customer"
	"autocare-controlplane/services/inspection"
	"autocare-controlplane/services/order"
	"autocare-controlplane/services/payment"
	"autocare-controlplane/services/schedule"
	"autocare-controlplane/services/tenant"
	"autocare-controlplane/services/user"
	"autocare-controlplane/services/vehicle"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("bootstrap",
	fx.Invoke(
		migrate,
		seedPlatformAdmin,
	),
)

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&tenant.Tenant{},
		&user.User{},
		&apikey.APIKey{},
		&customer.Customer{},
		&vehicle.Vehicle{},
		&catalog.ServiceItem{},
		&order.Order{},
		&order.LineItem{},
		&inspection.Inspection{},
		&payment.Payment{},
		&schedule.Appointment{},
	)
}

// seedPlatformAdmin creates the operator account on first boot. Platform
// admins carry no tenant of their own.
func seedPlatformAdmin(db *gorm.DB, node *snowflake.Node, cfg *config.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.Platform.AdminEmail))
	if email == "" || cfg.Platform.AdminPassword == "" {
		zap.L().Warn("platform admin seed skipped, no credentials configured")
		return nil
	}

	var count int64
	if err := db.Model(&user.User{}).Where("email = ? AND role = ?", email, authz.RolePlatformAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	hash, err := security.HashArgon2(cfg.Platform.AdminPassword)
	if err != nil {
		return err
	}

	admin := &user.User{
		ID:           node.Generate().String(),
		TenantID:     "",
		Email:        email,
		Name:         cfg.Platform.AdminName,
		Role:         authz.RolePlatformAdmin,
		Status:       user.StatusActive,
		PasswordHash: hash,
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	zap.L().Info("platform admin seeded", zap.String("email", email))
	return nil
}
