package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/google/uuid"
)

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// get transactionPrefix for module, redis or db
func getTransactionPrefix(ctx context.Context, stationId string, moduleName string) (string, error) {
	transactionPrefixes := make(map[string]string, 0) // moduleName => prefix
	redisKey := "tnsPrefixMap:" + stationId
	exists, err := config.GetRedisObject(redisKey, &transactionPrefixes)
	if err != nil {
		return "", err
	}
	if !exists {

		// retrieves moduleName:prefix map of the station from db
		db := config.GetDB()
		var tnsId int
		if err := db.WithContext(ctx).Model(&Station{}).
			Where("id = ?", stationId).Select("transaction_number_series_id").Scan(&tnsId).Error; err != nil {
			return "", err
		}
		var tnsModules []*TransactionNumberSeriesModule
		if err := db.WithContext(ctx).Model(&TransactionNumberSeriesModule{}).
			Where("series_id = ?", tnsId).Find(&tnsModules).Error; err != nil {
			return "", err
		}

		for _, modulePrefix := range tnsModules {
			transactionPrefixes[modulePrefix.ModuleName] = modulePrefix.Prefix
		}
		if err := config.SetRedisObject(redisKey, &transactionPrefixes, 0); err != nil {
			return "", err
		}
	}

	prefix, ok := transactionPrefixes[moduleName]
	if !ok || prefix == "" {
		// a station without a configured prefix still gets numbered documents
		return "", nil
	}
	return prefix, nil
}

// FormatTransactionNumber renders a document number like MV-000123.
func FormatTransactionNumber(prefix string, seqNo int64) string {
	return fmt.Sprintf("%s%06d", prefix, seqNo)
}

// NextTransactionNumber reserves the next sequence value and renders the
// document number, falling back to defaultPrefix when the station's series
// has no entry for the module.
func NextTransactionNumber[T any](ctx context.Context, stationId string, moduleName string, defaultPrefix string) (int64, string, error) {
	seqNo, err := utils.GetSequence[T](ctx, stationId)
	if err != nil {
		return 0, "", err
	}
	prefix, err := getTransactionPrefix(ctx, stationId, moduleName)
	if err != nil {
		return 0, "", err
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	return seqNo, FormatTransactionNumber(prefix, seqNo), nil
}

func CalculateDueDate(date time.Time, paymentTerms PaymentTerms, customDays int) *time.Time {
	var dueDate time.Time
	switch terms := paymentTerms; terms {
	case PaymentTermsDueOnReceipt:
		dueDate = date
	case PaymentTermsNet15:
		dueDate = date.AddDate(0, 0, 15)
	case PaymentTermsNet30:
		dueDate = date.AddDate(0, 0, 30)
	case PaymentTermsNet45:
		dueDate = date.AddDate(0, 0, 45)
	case PaymentTermsNet60:
		dueDate = date.AddDate(0, 0, 60)
	case PaymentTermsDueEndOfMonth:
		year, month, _ := date.Date()
		firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, date.Location())
		dueDate = firstOfMonth.AddDate(0, 1, -1)
	case PaymentTermsDueEndOfNextMonth:
		year, month, _ := date.Date()
		firstOfNextMonth := time.Date(year, month+1, 1, 0, 0, 0, 0, date.Location())
		dueDate = firstOfNextMonth.AddDate(0, 1, -1)
	case PaymentTermsCustom:
		dueDate = date.AddDate(0, 0, customDays)
	}
	return &dueDate
}

func ParseDateString(dateString string, timezone string) (time.Time, error) {

	// Parse the date string into a time.Time object
	localTime, err := time.Parse("2006-01-02T15:04:05", dateString)
	if err != nil {
		// date-only filters are accepted as well
		localTime, err = time.Parse("2006-01-02", dateString)
		if err != nil {
			return time.Time{}, err
		}
	}

	if timezone == "" {
		timezone = "Asia/Yangon"
	}

	// Load the location for the given timezone
	location, err := time.LoadLocation(timezone)
	if err != nil {
		fmt.Println("Error loading location:", err)
		return time.Time{}, err
	}

	// Convert the local time to the specified timezone
	localTimeInZone := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		localTime.Hour(), localTime.Minute(), localTime.Second(), localTime.Nanosecond(),
		location,
	)

	// Convert the time to UTC
	return localTimeInZone.UTC(), nil
}
