package workflow

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TransferStock moves fuel between two tanks of the same station as one
// transaction: both tank rows are locked in ascending id order (stable order
// prevents AB/BA deadlocks between concurrent opposite transfers), the
// preconditions are checked on the locked rows, then both legs are written.
// A failure anywhere rolls back both legs; a one-sided transfer is never
// visible.
//
// The source leg is a transfer-type movement (out semantics), the destination
// leg an in-type movement, equal quantities, one shared reference uuid.
func TransferStock(ctx context.Context, logger *logrus.Logger, input models.NewStockTransfer, idempotencyKey string) (*models.StockTransferResult, error) {

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	if input.SourceTankId == input.DestinationTankId {
		return nil, fmt.Errorf("%w: source and destination tanks must differ", utils.ErrInvalidArgument)
	}
	if !input.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: transfer quantity must be positive", utils.ErrInvalidArgument)
	}

	station, err := models.GetStation(ctx)
	if err != nil {
		config.LogError(logger, "transferWorkflow.go", "TransferStock", "GetStation", stationId, err)
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if err := BeginIdempotency(tx, stationId, "stock_transfer", idempotencyKey); err != nil {
		tx.Rollback()
		return nil, err
	}

	firstTankId, secondTankId := input.SourceTankId, input.DestinationTankId
	if secondTankId < firstTankId {
		firstTankId, secondTankId = secondTankId, firstTankId
	}
	tanks := make(map[int]*models.Tank, 2)
	for _, tankId := range []int{firstTankId, secondTankId} {
		tank, err := lockTank(tx, stationId, tankId)
		if err != nil {
			tx.Rollback()
			config.LogError(logger, "transferWorkflow.go", "TransferStock", "lockTank", tankId, err)
			return nil, err
		}
		tanks[tankId] = tank
	}
	source := tanks[input.SourceTankId]
	destination := tanks[input.DestinationTankId]

	// reject before any write
	if source.CurrentStock.LessThan(input.Quantity) {
		tx.Rollback()
		return nil, &utils.InsufficientStockError{
			TankId:    source.ID,
			Available: source.CurrentStock,
			Requested: input.Quantity,
		}
	}
	if destination.Capacity.Sub(destination.CurrentStock).LessThan(input.Quantity) {
		tx.Rollback()
		return nil, &utils.CapacityExceededError{
			TankId:    destination.ID,
			Capacity:  destination.Capacity,
			Current:   destination.CurrentStock,
			Requested: input.Quantity,
		}
	}

	referenceId := uuid.NewString()

	sourceMovement, err := ApplyStockMovement(tx, logger, stationId, station.Timezone, models.NewStockMovement{
		TankId:        source.ID,
		MovementType:  models.MovementTypeTransfer,
		Quantity:      input.Quantity,
		ReferenceType: models.MovementReferenceTypeTransfer,
		ReferenceId:   &referenceId,
		Notes:         input.Notes,
		MovementDate:  input.MovementDate,
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	destinationMovement, err := ApplyStockMovement(tx, logger, stationId, station.Timezone, models.NewStockMovement{
		TankId:        destination.ID,
		MovementType:  models.MovementTypeIn,
		Quantity:      input.Quantity,
		ReferenceType: models.MovementReferenceTypeTransfer,
		ReferenceId:   &referenceId,
		Notes:         input.Notes,
		MovementDate:  input.MovementDate,
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := MarkIdempotencySucceeded(tx, stationId, "stock_transfer", idempotencyKey); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "transferWorkflow.go", "TransferStock", "Commit", referenceId, err)
		return nil, err
	}

	for _, tankId := range []int{source.ID, destination.ID} {
		if err := models.RemoveRedisBoth(models.Tank{ID: tankId, StationId: stationId}); err != nil {
			config.LogError(logger, "transferWorkflow.go", "TransferStock", "RemoveRedis", tankId, err)
		}
	}

	return &models.StockTransferResult{
		ReferenceId:         referenceId,
		SourceMovement:      sourceMovement,
		DestinationMovement: destinationMovement,
	}, nil
}
