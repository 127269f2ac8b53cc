package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// computeNewStock applies the delta rule for one movement against the stock
// snapshot read under lock. Audit counts are absolute: the supplied quantity
// IS the new stock level, not a delta. Decreases clamp at zero instead of
// failing; only transfers reject up front (see TransferStock).
func computeNewStock(movementType models.MovementType, previousStock, quantity decimal.Decimal) decimal.Decimal {
	var newStock decimal.Decimal
	switch movementType {
	case models.MovementTypeIn:
		newStock = previousStock.Add(quantity.Abs())
	case models.MovementTypeOut, models.MovementTypeTransfer:
		newStock = previousStock.Sub(quantity.Abs())
	case models.MovementTypeAdjustment:
		// the one kind that accepts a signed quantity
		newStock = previousStock.Add(quantity)
	case models.MovementTypeAudit:
		newStock = quantity
	default:
		newStock = previousStock
	}
	if newStock.IsNegative() {
		return decimal.Zero
	}
	return newStock
}

func validateMovementQuantity(movementType models.MovementType, quantity decimal.Decimal) error {
	switch movementType {
	case models.MovementTypeIn, models.MovementTypeOut, models.MovementTypeTransfer:
		if !quantity.IsPositive() {
			return fmt.Errorf("%w: quantity must be positive for %s movements", utils.ErrInvalidArgument, movementType)
		}
	case models.MovementTypeAdjustment:
		if quantity.IsZero() {
			return fmt.Errorf("%w: adjustment quantity must be non-zero", utils.ErrInvalidArgument)
		}
	case models.MovementTypeAudit:
		if quantity.IsNegative() {
			return fmt.Errorf("%w: physical count cannot be negative", utils.ErrInvalidArgument)
		}
	}
	return nil
}

func defaultReferenceType(movementType models.MovementType) models.MovementReferenceType {
	switch movementType {
	case models.MovementTypeAdjustment:
		return models.MovementReferenceTypeAdjustment
	case models.MovementTypeTransfer:
		return models.MovementReferenceTypeTransfer
	case models.MovementTypeAudit:
		return models.MovementReferenceTypeAudit
	default:
		return models.MovementReferenceTypeManual
	}
}

// resolveDocumentDate turns an optional client-supplied local date into the
// stored UTC instant, defaulting to now.
func resolveDocumentDate(input *models.MyDateString, timezone string) (time.Time, error) {
	if input == nil {
		return time.Now().UTC(), nil
	}
	date := *input
	if err := date.UTCTime(timezone); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", utils.ErrInvalidArgument, err)
	}
	return time.Time(date), nil
}

// lockTank reads the tank row under SELECT ... FOR UPDATE so concurrent
// movements against the same tank serialize.
func lockTank(tx *gorm.DB, stationId string, tankId int) (*models.Tank, error) {
	var tank models.Tank
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("station_id = ? AND id = ?", stationId, tankId).
		First(&tank).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: tank %d", utils.ErrorRecordNotFound, tankId)
		}
		return nil, err
	}
	return &tank, nil
}

// ApplyStockMovement runs inside the caller's transaction: it locks the tank,
// derives the stock snapshots, inserts the immutable movement row and writes
// the new stock back. The movement insert and the tank update are never
// visible separately.
func ApplyStockMovement(tx *gorm.DB, logger *logrus.Logger, stationId string, timezone string, input models.NewStockMovement) (*models.StockMovement, error) {

	ctx := tx.Statement.Context

	if !input.MovementType.IsValid() {
		return nil, fmt.Errorf("%w: unknown movement type %q", utils.ErrInvalidArgument, input.MovementType)
	}
	if err := validateMovementQuantity(input.MovementType, input.Quantity); err != nil {
		return nil, err
	}
	referenceType := input.ReferenceType
	if referenceType == "" {
		referenceType = defaultReferenceType(input.MovementType)
	} else if !referenceType.IsValid() {
		return nil, fmt.Errorf("%w: unknown reference type %q", utils.ErrInvalidArgument, referenceType)
	}

	movementDate, err := resolveDocumentDate(input.MovementDate, timezone)
	if err != nil {
		return nil, err
	}

	tank, err := lockTank(tx, stationId, input.TankId)
	if err != nil {
		config.LogError(logger, "stockMovementWorkflow.go", "ApplyStockMovement", "lockTank", input.TankId, err)
		return nil, err
	}

	previousStock := tank.CurrentStock
	newStock := computeNewStock(input.MovementType, previousStock, input.Quantity)

	seqNo, number, err := models.NextTransactionNumber[models.StockMovement](ctx, stationId, "Stock Movement", "MV-")
	if err != nil {
		config.LogError(logger, "stockMovementWorkflow.go", "ApplyStockMovement", "NextTransactionNumber", stationId, err)
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	movement := models.StockMovement{
		StationId:      stationId,
		TankId:         tank.ID,
		MovementType:   input.MovementType,
		Quantity:       input.Quantity.Abs(),
		PreviousStock:  previousStock,
		NewStock:       newStock,
		ReferenceType:  referenceType,
		ReferenceId:    input.ReferenceId,
		MovementNumber: number,
		SequenceNo:     decimal.NewFromInt(seqNo),
		Notes:          input.Notes,
		MovementDate:   movementDate,
		CreatedBy:      userId,
	}
	if err := tx.Create(&movement).Error; err != nil {
		config.LogError(logger, "stockMovementWorkflow.go", "ApplyStockMovement", "CreateMovement", movement.MovementNumber, err)
		return nil, err
	}

	columns := map[string]interface{}{"current_stock": newStock}
	if input.MovementType == models.MovementTypeIn {
		columns["last_refill_date"] = movementDate
	}
	if err := tx.Model(&models.Tank{}).
		Where("station_id = ? AND id = ?", stationId, tank.ID).
		UpdateColumns(columns).Error; err != nil {
		config.LogError(logger, "stockMovementWorkflow.go", "ApplyStockMovement", "UpdateTankStock", tank.ID, err)
		return nil, err
	}

	return &movement, nil
}

// RecordStockMovement is the manual entrypoint (receipts, dispensing,
// corrections). Transfer and audit movements carry pairing/batch invariants,
// so they only come in through their own operations.
func RecordStockMovement(ctx context.Context, logger *logrus.Logger, input models.NewStockMovement, idempotencyKey string) (*models.StockMovement, error) {

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}
	if input.MovementType == models.MovementTypeTransfer || input.MovementType == models.MovementTypeAudit {
		return nil, fmt.Errorf("%w: %s movements are created by their own operations", utils.ErrInvalidArgument, input.MovementType)
	}

	station, err := models.GetStation(ctx)
	if err != nil {
		config.LogError(logger, "stockMovementWorkflow.go", "RecordStockMovement", "GetStation", stationId, err)
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if err := BeginIdempotency(tx, stationId, "stock_movement", idempotencyKey); err != nil {
		tx.Rollback()
		return nil, err
	}

	movement, err := ApplyStockMovement(tx, logger, stationId, station.Timezone, input)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := MarkIdempotencySucceeded(tx, stationId, "stock_movement", idempotencyKey); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "stockMovementWorkflow.go", "RecordStockMovement", "Commit", movement.MovementNumber, err)
		return nil, err
	}

	// the cached tank row and pickers now carry a stale stock level
	if err := models.RemoveRedisBoth(models.Tank{ID: movement.TankId, StationId: stationId}); err != nil {
		config.LogError(logger, "stockMovementWorkflow.go", "RecordStockMovement", "RemoveRedis", movement.TankId, err)
	}

	return movement, nil
}
