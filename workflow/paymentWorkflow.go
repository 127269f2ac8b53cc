package workflow

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func lockCustomer(tx *gorm.DB, stationId string, customerId int) (*models.Customer, error) {
	var customer models.Customer
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("station_id = ? AND id = ?", stationId, customerId).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer %d", utils.ErrorRecordNotFound, customerId)
		}
		return nil, err
	}
	return &customer, nil
}

func lockSupplier(tx *gorm.DB, stationId string, supplierId int) (*models.Supplier, error) {
	var supplier models.Supplier
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("station_id = ? AND id = ?", stationId, supplierId).
		First(&supplier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: supplier %d", utils.ErrorRecordNotFound, supplierId)
		}
		return nil, err
	}
	return &supplier, nil
}

func validatePaymentInput(input models.NewPayment) error {
	if !input.PaymentType.IsValid() {
		return fmt.Errorf("%w: unknown payment type %q", utils.ErrInvalidArgument, input.PaymentType)
	}
	if !input.PaymentMethod.IsValid() {
		return fmt.Errorf("%w: unknown payment method %q", utils.ErrInvalidArgument, input.PaymentMethod)
	}
	if !input.Amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive", utils.ErrInvalidArgument)
	}
	switch input.PaymentType {
	case models.PaymentTypeReceivable:
		if input.CustomerId == nil || input.SupplierId != nil {
			return fmt.Errorf("%w: a receivable payment takes exactly a customer", utils.ErrInvalidArgument)
		}
	case models.PaymentTypePayable:
		if input.SupplierId == nil || input.CustomerId != nil {
			return fmt.Errorf("%w: a payable payment takes exactly a supplier", utils.ErrInvalidArgument)
		}
	}
	return nil
}

// RecordPayment settles part of a counterparty's outstanding balance. The
// payment row and the balance decrement commit together; neither may exist
// without the other. Payments do not allocate to individual documents, they
// reduce the running outstanding amount, which may go negative on
// overpayment. That asymmetry with stock clamping is deliberate: money owed
// can flip direction, fuel in a tank cannot.
func RecordPayment(ctx context.Context, logger *logrus.Logger, input models.NewPayment, idempotencyKey string) (*models.Payment, error) {

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}
	if err := validatePaymentInput(input); err != nil {
		return nil, err
	}

	station, err := models.GetStation(ctx)
	if err != nil {
		config.LogError(logger, "paymentWorkflow.go", "RecordPayment", "GetStation", stationId, err)
		return nil, err
	}

	paymentDate, err := resolveDocumentDate(input.PaymentDate, station.Timezone)
	if err != nil {
		return nil, err
	}
	currencyCode := input.CurrencyCode
	if currencyCode == "" {
		currencyCode = "MMK"
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if err := BeginIdempotency(tx, stationId, "payment", idempotencyKey); err != nil {
		tx.Rollback()
		return nil, err
	}

	// lock the counterparty row so the decrement applies to a stable balance
	var customer *models.Customer
	var supplier *models.Supplier
	if input.PaymentType == models.PaymentTypeReceivable {
		customer, err = lockCustomer(tx, stationId, *input.CustomerId)
	} else {
		supplier, err = lockSupplier(tx, stationId, *input.SupplierId)
	}
	if err != nil {
		tx.Rollback()
		config.LogError(logger, "paymentWorkflow.go", "RecordPayment", "lockCounterparty", input, err)
		return nil, err
	}

	seqNo, number, err := models.NextTransactionNumber[models.Payment](ctx, stationId, "Payment", "PAY-")
	if err != nil {
		tx.Rollback()
		config.LogError(logger, "paymentWorkflow.go", "RecordPayment", "NextTransactionNumber", stationId, err)
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	payment := models.Payment{
		StationId:       stationId,
		PaymentType:     input.PaymentType,
		CustomerId:      input.CustomerId,
		SupplierId:      input.SupplierId,
		Amount:          input.Amount,
		PaymentMethod:   input.PaymentMethod,
		CurrencyCode:    currencyCode,
		PaymentNumber:   number,
		SequenceNo:      decimal.NewFromInt(seqNo),
		ReferenceNumber: input.ReferenceNumber,
		Notes:           input.Notes,
		PaymentDate:     paymentDate,
		CreatedBy:       userId,
	}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		config.LogError(logger, "paymentWorkflow.go", "RecordPayment", "CreatePayment", number, err)
		return nil, fmt.Errorf("%w: %v", utils.ErrStorageError, err)
	}

	// arithmetic decrement on the locked row, no floor clamp
	decrement := gorm.Expr("outstanding_amount - ?", input.Amount)
	if customer != nil {
		err = tx.Model(&models.Customer{}).
			Where("station_id = ? AND id = ?", stationId, customer.ID).
			UpdateColumn("outstanding_amount", decrement).Error
	} else {
		err = tx.Model(&models.Supplier{}).
			Where("station_id = ? AND id = ?", stationId, supplier.ID).
			UpdateColumn("outstanding_amount", decrement).Error
	}
	if err != nil {
		tx.Rollback()
		config.LogError(logger, "paymentWorkflow.go", "RecordPayment", "DecrementOutstanding", number, err)
		return nil, fmt.Errorf("%w: %v", utils.ErrStorageError, err)
	}

	if err := MarkIdempotencySucceeded(tx, stationId, "payment", idempotencyKey); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "paymentWorkflow.go", "RecordPayment", "Commit", number, err)
		return nil, fmt.Errorf("%w: %v", utils.ErrStorageError, err)
	}

	if customer != nil {
		if err := models.RemoveRedisBoth(*customer); err != nil {
			config.LogError(logger, "paymentWorkflow.go", "RecordPayment", "RemoveRedis", customer.ID, err)
		}
	} else {
		if err := models.RemoveRedisBoth(*supplier); err != nil {
			config.LogError(logger, "paymentWorkflow.go", "RecordPayment", "RemoveRedis", supplier.ID, err)
		}
	}

	return &payment, nil
}
