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

func paymentStatusFor(total, paid decimal.Decimal) models.PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return models.PaymentStatusPaid
	case paid.IsPositive():
		return models.PaymentStatusPartial
	default:
		return models.PaymentStatusCredit
	}
}

func validateSaleInput(input models.NewSaleTransaction) error {
	if !input.Quantity.IsPositive() {
		return fmt.Errorf("%w: sale quantity must be positive", utils.ErrInvalidArgument)
	}
	if !input.UnitPrice.IsPositive() {
		return fmt.Errorf("%w: unit price must be positive", utils.ErrInvalidArgument)
	}
	if input.PaidAmount.IsNegative() {
		return fmt.Errorf("%w: paid amount cannot be negative", utils.ErrInvalidArgument)
	}
	total := input.Quantity.Mul(input.UnitPrice)
	if input.PaidAmount.GreaterThan(total) {
		return fmt.Errorf("%w: paid amount exceeds the sale total", utils.ErrInvalidArgument)
	}
	if input.PaidAmount.LessThan(total) {
		// the unpaid remainder becomes a receivable against a named customer
		if input.CustomerId == nil {
			return fmt.Errorf("%w: credit sales require a customer", utils.ErrInvalidArgument)
		}
		if input.DueDate == nil {
			return fmt.Errorf("%w: credit sales require a due date", utils.ErrInvalidArgument)
		}
	}
	return nil
}

// PostSale records a fuel sale as one transaction: the sale row, the `out`
// movement against the dispensing tank, and, when part of the total stays
// unpaid, the customer's outstanding increase. All three commit together.
func PostSale(ctx context.Context, logger *logrus.Logger, input models.NewSaleTransaction, idempotencyKey string) (*models.SaleTransaction, error) {

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}
	if err := validateSaleInput(input); err != nil {
		return nil, err
	}

	station, err := models.GetStation(ctx)
	if err != nil {
		config.LogError(logger, "saleWorkflow.go", "PostSale", "GetStation", stationId, err)
		return nil, err
	}

	saleDate, err := resolveDocumentDate(input.SaleDate, station.Timezone)
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

	// resolve the product before opening the transaction; the authoritative
	// stock read happens later under the row lock
	tank, err := utils.FetchModel[models.Tank](ctx, stationId, input.TankId)
	if err != nil {
		config.LogError(logger, "saleWorkflow.go", "PostSale", "FetchTank", input.TankId, err)
		return nil, err
	}

	total := input.Quantity.Mul(input.UnitPrice)
	unpaid := total.Sub(input.PaidAmount)
	referenceUid := uuid.NewString()

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if err := BeginIdempotency(tx, stationId, "sale", idempotencyKey); err != nil {
		tx.Rollback()
		return nil, err
	}

	// a credit sale needs the customer row locked for the balance increase
	var customer *models.Customer
	if input.CustomerId != nil {
		customer, err = lockCustomer(tx, stationId, *input.CustomerId)
		if err != nil {
			tx.Rollback()
			config.LogError(logger, "saleWorkflow.go", "PostSale", "lockCustomer", *input.CustomerId, err)
			return nil, err
		}
	}

	movement, err := ApplyStockMovement(tx, logger, stationId, station.Timezone, models.NewStockMovement{
		TankId:        input.TankId,
		MovementType:  models.MovementTypeOut,
		Quantity:      input.Quantity,
		ReferenceType: models.MovementReferenceTypeSale,
		ReferenceId:   &referenceUid,
		Notes:         input.Notes,
		MovementDate:  input.SaleDate,
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	seqNo, number, err := models.NextTransactionNumber[models.SaleTransaction](ctx, stationId, "Sale", "SL-")
	if err != nil {
		tx.Rollback()
		config.LogError(logger, "saleWorkflow.go", "PostSale", "NextTransactionNumber", stationId, err)
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	sale := models.SaleTransaction{
		StationId:     stationId,
		SaleNumber:    number,
		SequenceNo:    decimal.NewFromInt(seqNo),
		ReferenceUid:  referenceUid,
		TankId:        input.TankId,
		FuelProductId: tank.FuelProductId,
		CustomerId:    input.CustomerId,
		Quantity:      input.Quantity,
		UnitPrice:     input.UnitPrice,
		TotalAmount:   total,
		PaidAmount:    input.PaidAmount,
		DueDate:       dueDate,
		PaymentStatus: paymentStatusFor(total, input.PaidAmount),
		SaleDate:      saleDate,
		Notes:         input.Notes,
		CreatedBy:     userId,
	}
	if err := tx.Create(&sale).Error; err != nil {
		tx.Rollback()
		config.LogError(logger, "saleWorkflow.go", "PostSale", "CreateSale", number, err)
		return nil, fmt.Errorf("%w: %v", utils.ErrStorageError, err)
	}

	if unpaid.IsPositive() && customer != nil {
		if err := tx.Model(&models.Customer{}).
			Where("station_id = ? AND id = ?", stationId, customer.ID).
			UpdateColumn("outstanding_amount", gorm.Expr("outstanding_amount + ?", unpaid)).Error; err != nil {
			tx.Rollback()
			config.LogError(logger, "saleWorkflow.go", "PostSale", "IncrementOutstanding", number, err)
			return nil, fmt.Errorf("%w: %v", utils.ErrStorageError, err)
		}
	}

	if err := MarkIdempotencySucceeded(tx, stationId, "sale", idempotencyKey); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "saleWorkflow.go", "PostSale", "Commit", number, err)
		return nil, fmt.Errorf("%w: %v", utils.ErrStorageError, err)
	}

	if err := models.RemoveRedisBoth(models.Tank{ID: movement.TankId, StationId: stationId}); err != nil {
		config.LogError(logger, "saleWorkflow.go", "PostSale", "RemoveRedisTank", movement.TankId, err)
	}
	if customer != nil {
		if err := models.RemoveRedisBoth(*customer); err != nil {
			config.LogError(logger, "saleWorkflow.go", "PostSale", "RemoveRedisCustomer", customer.ID, err)
		}
	}

	return &sale, nil
}
