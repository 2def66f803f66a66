package services

import (
	"context"
	"errors"

	"go-print-erp/internal/logger"
	"go-print-erp/internal/metrics"
	"go-print-erp/internal/models"
	"go-print-erp/internal/workflow"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var errItemGone = errors.New("invoice item no longer exists")

// StatusPropagator keeps an item's overallStatus and taskProgress in step
// with the tasks assigned against it.
type StatusPropagator struct {
	db      *gorm.DB
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewStatusPropagator(db *gorm.DB, m *metrics.Metrics) *StatusPropagator {
	return &StatusPropagator{db: db, metrics: m, log: logger.WithComponent("status-propagator")}
}

// Recompute rebuilds the rollup of one item from its live tasks and
// stores it.
func (p *StatusPropagator) Recompute(ctx context.Context, itemID uint) (workflow.Rollup, error) {
	db := p.db.WithContext(ctx)

	var statuses []workflow.TaskStatus
	err := db.Model(&models.TaskAssignment{}).Scopes(models.NotDeleted).
		Where("invoice_item_id = ?", itemID).
		Pluck("status", &statuses).Error
	if err != nil {
		return workflow.Rollup{}, err
	}

	rollup := workflow.Derive(statuses)
	res := db.Model(&models.InvoiceItem{}).Scopes(models.NotDeleted).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"overall_status": rollup.OverallStatus,
			"task_progress":  rollup.TaskProgress,
		})
	if res.Error != nil {
		return workflow.Rollup{}, res.Error
	}
	if res.RowsAffected == 0 {
		return workflow.Rollup{}, errItemGone
	}
	return rollup, nil
}

// Propagate is the best-effort form used after a task mutation has been
// committed: failures are logged and counted, never returned.
func (p *StatusPropagator) Propagate(ctx context.Context, itemID uint) {
	rollup, err := p.Recompute(ctx, itemID)
	if err != nil {
		p.metrics.PropagationFailed()
		p.log.Warn().Err(err).Uint("invoice_item_id", itemID).Msg("Item status propagation failed")
		return
	}
	p.log.Debug().
		Uint("invoice_item_id", itemID).
		Str("overall_status", string(rollup.OverallStatus)).
		Int("task_progress", rollup.TaskProgress).
		Msg("Item status recomputed")
}
