package services

import (
	"context"

	"github.com/vladimiradmaev/supplies-tracker/internal/database"
	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
	"github.com/vladimiradmaev/supplies-tracker/internal/logger"
	"github.com/vladimiradmaev/supplies-tracker/internal/notifications"
	"gorm.io/gorm"
)

// Reconciler feeds the current record set to the notification engine after
// every mutation. Failures are logged, never surfaced: reminders are
// best-effort and must not block record CRUD.
type Reconciler struct {
	db     *gorm.DB
	engine *notifications.Engine
}

func NewReconciler(db *gorm.DB, engine *notifications.Engine) *Reconciler {
	return &Reconciler{db: db, engine: engine}
}

// Run loads the current supplies and in-use items and reconciles reminders.
func (r *Reconciler) Run(ctx context.Context) {
	var supplyRecords []database.Supply
	if err := r.db.WithContext(ctx).Find(&supplyRecords).Error; err != nil {
		logger.Warn("Skipping reminder reconcile, failed to load supplies", "error", err)
		return
	}

	var itemRecords []database.InUseItem
	if err := r.db.WithContext(ctx).Find(&itemRecords).Error; err != nil {
		logger.Warn("Skipping reminder reconcile, failed to load in-use items", "error", err)
		return
	}

	r.engine.Reconcile(ctx, toDomainSupplies(supplyRecords), toDomainItems(itemRecords))
}

func toDomainSupplies(records []database.Supply) []domain.Supply {
	supplies := make([]domain.Supply, 0, len(records))
	for i := range records {
		supplies = append(supplies, *database.SupplyToDomain(&records[i]))
	}
	return supplies
}

func toDomainItems(records []database.InUseItem) []domain.InUseItem {
	items := make([]domain.InUseItem, 0, len(records))
	for i := range records {
		items = append(items, *database.InUseItemToDomain(&records[i]))
	}
	return items
}
