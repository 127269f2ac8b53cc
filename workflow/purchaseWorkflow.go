package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func validatePurchaseInput(input models.NewPurchaseTransaction) error {
	if !input.Quantity.IsPositive() {
		return fmt.Errorf("%w: purchase quantity must be positive", utils.ErrInvalidArgument)
	}
	if !input.UnitCost.IsPositive() {
		return fmt.Errorf("%w: unit cost must be positive", utils.ErrInvalidArgument)
	}
	if input.PaidAmount.IsNegative() {
		return fmt.Errorf("%w: paid amount cannot be negative", utils.ErrInvalidArgument)
	}
	total := input.Quantity.Mul(input.UnitCost)
	if input.PaidAmount.GreaterThan(total) {
		return fmt.Errorf("%w: paid amount exceeds the purchase total", utils.ErrInvalidArgument)
	}
	if input.PaidAmount.LessThan(total) && input.DueDate == nil {
		return fmt.Errorf("%w: credit purchases require a due date", utils.ErrInvalidArgument)
	}
	return nil
}

// PostPurchase records a fuel delivery as one transaction: the purchase row,
// the `in` movement into the receiving tank, and the supplier's outstanding
// increase for the unpaid remainder. The mirror of PostSale.
func PostPurchase(ctx context.Context, logger *logrus.Logger, input models.NewPurchaseTransaction, idempotencyKey string) (*models.PurchaseTransaction, error) {

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}
	if err := validatePurchaseInput(input); err != nil {
		return nil, err
	}

	station, err := models.GetStation(ctx)
	if err != nil {
		config.LogError(logger, "purchaseWorkflow.go", "PostPurchase", "GetStation", stationId, err)
		return nil, err
	}

	deliveryDate, err := resolveDocumentDate(input.DeliveryDate, station.Timezone)
	if err != nil {
		return nil, err
	}
	var dueDate *time.Time
	if input.DueDate != nil {
		resolved, err := resolveDocumentDate(input.DueDate, station.Timezone)
		if err != nil {
			return nil, err
		}
		dueDate = &resolved
	}

	tank, err := utils.FetchModel[models.Tank](ctx, stationId, input.TankId)
	if err != nil {
		config.LogError(logger, "purchaseWorkflow.go", "PostPurchase", "FetchTank", input.TankId, err)
		return nil, err
	}

	total := input.Quantity.Mul(input.UnitCost)
	unpaid := total.Sub(input.PaidAmount)
	referenceUid := uuid.NewString()

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if err := BeginIdempotency(tx, stationId, "purchase", idempotencyKey); err != nil {
		tx.Rollback()
		return nil, err
	}

	supplier, err := lockSupplier(tx, stationId, input.SupplierId)
	if err != nil {
		tx.Rollback()
		config.LogError(logger, "purchaseWorkflow.go", "PostPurchase", "lockSupplier", input.SupplierId, err)
		return nil, err
	}

	movement, err := ApplyStockMovement(tx, logger, stationId, station.Timezone, models.NewStockMovement{
		TankId:        input.TankId,
		MovementType:  models.MovementTypeIn,
		Quantity:      input.Quantity,
		ReferenceType: models.MovementReferenceTypePurchase,
		ReferenceId:   &referenceUid,
		Notes:         input.Notes,
		MovementDate:  input.DeliveryDate,
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	seqNo, number, err := models.NextTransactionNumber[models.PurchaseTransaction](ctx, stationId, "Purchase", "PUR-")
	if err != nil {
		tx.Rollback()
		config.LogError(logger, "purchaseWorkflow.go", "PostPurchase", "NextTransactionNumber", stationId, err)
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	purchase := models.PurchaseTransaction{
		StationId:      stationId,
		PurchaseNumber: number,
		SequenceNo:     decimal.NewFromInt(seqNo),
		ReferenceUid:   referenceUid,
		SupplierId:     input.SupplierId,
		TankId:         input.TankId,
		FuelProductId:  tank.FuelProductId,
		Quantity:       input.Quantity,
		UnitCost:       input.UnitCost,
		TotalAmount:    total,
		PaidAmount:     input.PaidAmount,
		DueDate:        dueDate,
		PaymentStatus:  paymentStatusFor(total, input.PaidAmount),
		DeliveryDate:   deliveryDate,
		Notes:          input.Notes,
		CreatedBy:      userId,
	}
	if err := tx.Create(&purchase).Error; err != nil {
		tx.Rollback()
		config.LogError(logger, "purchaseWorkflow.go", "PostPurchase", "CreatePurchase", number, err)
		return nil, fmt.Errorf("%w: %v", utils.ErrStorageError, err)
	}

	if unpaid.IsPositive() {
		if err := tx.Model(&models.Supplier{}).
			Where("station_id = ? AND id = ?", stationId, supplier.ID).
			UpdateColumn("outstanding_amount", gorm.Expr("outstanding_amount + ?", unpaid)).Error; err != nil {
			tx.Rollback()
			config.LogError(logger, "purchaseWorkflow.go", "PostPurchase", "IncrementOutstanding", number, err)
			return nil, fmt.Errorf("%w: %v", utils.ErrStorageError, err)
		}
	}

	if err := MarkIdempotencySucceeded(tx, stationId, "purchase", idempotencyKey); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "purchaseWorkflow.go", "PostPurchase", "Commit", number, err)
		return nil, fmt.Errorf("%w: %v", utils.ErrStorageError, err)
	}

	if err := models.RemoveRedisBoth(models.Tank{ID: movement.TankId, StationId: stationId}); err != nil {
		config.LogError(logger, "purchaseWorkflow.go", "PostPurchase", "RemoveRedisTank", movement.TankId, err)
	}
	if err := models.RemoveRedisBoth(*supplier); err != nil {
		config.LogError(logger, "purchaseWorkflow.go", "PostPurchase", "RemoveRedisSupplier", supplier.ID, err)
	}

	return &purchase, nil
}
