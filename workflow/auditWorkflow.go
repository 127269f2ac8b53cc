package workflow

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// differences below this threshold are measurement noise, not shrinkage
var auditMaterialityEpsilon = decimal.NewFromFloat(0.01)

// materialAuditDifference returns the dip-minus-book difference and whether
// it is large enough to warrant an adjustment movement.
func materialAuditDifference(bookStock, physicalCount decimal.Decimal) (decimal.Decimal, bool) {
	difference := physicalCount.Sub(bookStock)
	return difference, !difference.Abs().LessThan(auditMaterialityEpsilon)
}

// RunStockAudit reconciles physical dip readings against the book stock. One
// shared reference uuid covers the batch, but each tank commits in its own
// transaction: a failed tank reports its error without rolling back the
// others. Tanks whose reading matches the book value within epsilon are
// skipped entirely, so running the same counts twice adjusts on the first run
// and skips everything on the second.
func RunStockAudit(ctx context.Context, logger *logrus.Logger, input models.NewStockAudit, idempotencyKey string) (*models.StockAuditResult, error) {

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}
	if len(input.Counts) == 0 {
		return nil, fmt.Errorf("%w: at least one tank count is required", utils.ErrInvalidArgument)
	}
	seen := make(map[int]bool, len(input.Counts))
	for _, count := range input.Counts {
		if seen[count.TankId] {
			return nil, fmt.Errorf("%w: tank %d is counted twice", utils.ErrInvalidArgument, count.TankId)
		}
		seen[count.TankId] = true
	}

	station, err := models.GetStation(ctx)
	if err != nil {
		config.LogError(logger, "auditWorkflow.go", "RunStockAudit", "GetStation", stationId, err)
		return nil, err
	}

	db := config.GetDB()

	// the key must outlive the per-tank transactions, so it gets its own
	if idempotencyKey != "" {
		keyTx := db.WithContext(ctx).Begin()
		if keyTx.Error != nil {
			return nil, keyTx.Error
		}
		if err := BeginIdempotency(keyTx, stationId, "stock_audit", idempotencyKey); err != nil {
			keyTx.Rollback()
			return nil, err
		}
		if err := keyTx.Commit().Error; err != nil {
			return nil, err
		}
	}

	result := models.StockAuditResult{
		ReferenceId: uuid.NewString(),
		Adjusted:    make([]models.StockAuditAdjustment, 0, len(input.Counts)),
		Skipped:     make([]int, 0),
		Failed:      make([]models.StockAuditFailure, 0),
	}

	for _, count := range input.Counts {
		tx := db.WithContext(ctx).Begin()
		if tx.Error != nil {
			result.Failed = append(result.Failed, models.StockAuditFailure{TankId: count.TankId, Error: tx.Error.Error()})
			continue
		}

		tank, err := lockTank(tx, stationId, count.TankId)
		if err != nil {
			tx.Rollback()
			config.LogError(logger, "auditWorkflow.go", "RunStockAudit", "lockTank", count.TankId, err)
			result.Failed = append(result.Failed, models.StockAuditFailure{TankId: count.TankId, Error: err.Error()})
			continue
		}

		difference, material := materialAuditDifference(tank.CurrentStock, count.PhysicalCount)
		if !material {
			tx.Rollback()
			result.Skipped = append(result.Skipped, count.TankId)
			continue
		}

		movement, err := ApplyStockMovement(tx, logger, stationId, station.Timezone, models.NewStockMovement{
			TankId:        count.TankId,
			MovementType:  models.MovementTypeAudit,
			Quantity:      count.PhysicalCount,
			ReferenceType: models.MovementReferenceTypeAudit,
			ReferenceId:   &result.ReferenceId,
			Notes:         input.Notes,
			MovementDate:  input.AuditDate,
		})
		if err != nil {
			tx.Rollback()
			result.Failed = append(result.Failed, models.StockAuditFailure{TankId: count.TankId, Error: err.Error()})
			continue
		}

		if err := tx.Commit().Error; err != nil {
			config.LogError(logger, "auditWorkflow.go", "RunStockAudit", "Commit", count.TankId, err)
			result.Failed = append(result.Failed, models.StockAuditFailure{TankId: count.TankId, Error: err.Error()})
			continue
		}

		result.Adjusted = append(result.Adjusted, models.StockAuditAdjustment{
			TankId:        tank.ID,
			TankName:      tank.Name,
			PreviousStock: tank.CurrentStock,
			PhysicalCount: count.PhysicalCount,
			Difference:    difference,
			MovementId:    movement.ID,
		})

		if err := models.RemoveRedisBoth(models.Tank{ID: tank.ID, StationId: stationId}); err != nil {
			config.LogError(logger, "auditWorkflow.go", "RunStockAudit", "RemoveRedis", tank.ID, err)
		}
	}

	if idempotencyKey != "" {
		dbCtx := db.WithContext(ctx)
		if len(result.Adjusted) == 0 && len(result.Skipped) == 0 && len(result.Failed) > 0 {
			batchErr := fmt.Errorf("all %d tanks failed", len(result.Failed))
			if err := MarkIdempotencyFailed(dbCtx, stationId, "stock_audit", idempotencyKey, batchErr); err != nil {
				config.LogError(logger, "auditWorkflow.go", "RunStockAudit", "MarkIdempotencyFailed", idempotencyKey, err)
			}
		} else {
			if err := MarkIdempotencySucceeded(dbCtx, stationId, "stock_audit", idempotencyKey); err != nil {
				config.LogError(logger, "auditWorkflow.go", "RunStockAudit", "MarkIdempotencySucceeded", idempotencyKey, err)
			}
		}
	}

	return &result, nil
}
