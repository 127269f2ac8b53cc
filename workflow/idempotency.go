package workflow

import (
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// BeginIdempotency inserts a STARTED key inside the caller's transaction.
// A duplicate insert means the same submission was already posted (or is
// being posted on another connection, which blocks on the unique index until
// that transaction resolves), so the caller must abort before writing
// anything. messageId comes from the client's Idempotency-Key header; an
// empty messageId disables the guard.
func BeginIdempotency(tx *gorm.DB, stationId, handlerName, messageId string) error {
	if messageId == "" {
		return nil
	}
	key := models.IdempotencyKey{
		StationId:   stationId,
		HandlerName: handlerName,
		MessageId:   messageId,
		Status:      models.IdempotencyStatusStarted,
	}
	if err := tx.Create(&key).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return fmt.Errorf("%w: %s already submitted", utils.ErrDuplicateSubmission, handlerName)
		}
		return err
	}
	return nil
}

func MarkIdempotencySucceeded(tx *gorm.DB, stationId, handlerName, messageId string) error {
	if messageId == "" {
		return nil
	}
	return tx.Model(&models.IdempotencyKey{}).
		Where("station_id = ? AND handler_name = ? AND message_id = ?", stationId, handlerName, messageId).
		Updates(map[string]interface{}{"status": models.IdempotencyStatusSucceeded, "last_error": nil}).Error
}

// MarkIdempotencyFailed records a terminal failure for batch operations whose
// key row lives outside the failed per-item transactions (stock audits).
func MarkIdempotencyFailed(db *gorm.DB, stationId, handlerName, messageId string, cause error) error {
	if messageId == "" {
		return nil
	}
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return db.Model(&models.IdempotencyKey{}).
		Where("station_id = ? AND handler_name = ? AND message_id = ?", stationId, handlerName, messageId).
		Updates(map[string]interface{}{"status": models.IdempotencyStatusFailed, "last_error": &msg}).Error
}
