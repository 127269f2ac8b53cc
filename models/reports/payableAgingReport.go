package reports

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/shopspring/decimal"
)

type PayableAgingSummaryRow struct {
	SupplierId    int             `json:"supplierId"`
	SupplierName  string          `json:"supplierName"`
	DocumentCount int             `json:"documentCount"`
	Current       decimal.Decimal `json:"current"`
	Int1to30      decimal.Decimal `json:"int1to30"`
	Int31to60     decimal.Decimal `json:"int31to60"`
	Int61to90     decimal.Decimal `json:"int61to90"`
	Int90plus     decimal.Decimal `json:"int90plus"`
	Total         decimal.Decimal `json:"total"`
}

type PayableAgingSummaryResponse struct {
	Rows       []*PayableAgingSummaryRow `json:"rows"`
	Current    decimal.Decimal           `json:"current"`
	Int1to30   decimal.Decimal           `json:"int1to30"`
	Int31to60  decimal.Decimal           `json:"int31to60"`
	Int61to90  decimal.Decimal           `json:"int61to90"`
	Int90plus  decimal.Decimal           `json:"int90plus"`
	GrandTotal decimal.Decimal           `json:"grandTotal"`
}

// GetPayableAgingSummary buckets what the station still owes its suppliers,
// per unpaid purchase document. Same bucket boundaries as the receivable
// side, aged on the purchase due dates.
func GetPayableAgingSummary(ctx context.Context, asOfDate models.MyDateString) (*PayableAgingSummaryResponse, error) {

	sql := `
WITH PurchaseAging AS (
    SELECT
        supplier_id,
        total_amount - paid_amount AS remaining_amount,
        CASE
            WHEN due_date IS NULL THEN 0
            ELSE GREATEST(DATEDIFF(@asOfDate, due_date), 0)
        END AS days_overdue
    FROM
        purchase_transactions
    WHERE
        station_id = @stationId
        AND delivery_date <= @asOfDate
        AND total_amount - paid_amount > 0
)
SELECT
    PurchaseAging.supplier_id,
    suppliers.name AS supplier_name,
    COUNT(*) AS document_count,
    SUM(remaining_amount) AS total,
    SUM(CASE WHEN days_overdue <= 0 THEN remaining_amount ELSE 0 END) AS current,
    SUM(CASE WHEN days_overdue BETWEEN 1 AND 30 THEN remaining_amount ELSE 0 END) AS int1to30,
    SUM(CASE WHEN days_overdue BETWEEN 31 AND 60 THEN remaining_amount ELSE 0 END) AS int31to60,
    SUM(CASE WHEN days_overdue BETWEEN 61 AND 90 THEN remaining_amount ELSE 0 END) AS int61to90,
    SUM(CASE WHEN days_overdue > 90 THEN remaining_amount ELSE 0 END) AS int90plus
FROM
    PurchaseAging
    LEFT JOIN suppliers ON suppliers.id = PurchaseAging.supplier_id
GROUP BY
    PurchaseAging.supplier_id, supplier_name
ORDER BY
    supplier_name, PurchaseAging.supplier_id;
`

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}
	station, err := models.GetStation(ctx)
	if err != nil {
		return nil, err
	}
	if err := asOfDate.EndOfDayUTCTime(station.Timezone); err != nil {
		return nil, err
	}

	cacheKey := "report:payableAgingSummary:" + stationId + ":" + time.Time(asOfDate).Format("2006-01-02")
	if reportCacheEnabled() {
		var cached PayableAgingSummaryResponse
		if hit, err := cacheGet(cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
		release, err := utils.StationLock(ctx, stationId, "reportLock", "payableAgingReport.go", "GetPayableAgingSummary")
		if err == nil {
			defer release()
		}
	}

	started := time.Now()
	var rows []*PayableAgingSummaryRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"stationId": stationId,
		"asOfDate":  asOfDate,
	}).Scan(&rows).Error; err != nil {
		return nil, err
	}
	logSlowReport(ctx, "payableAgingSummary", started, nil)

	response := PayableAgingSummaryResponse{Rows: rows}
	for _, row := range rows {
		response.Current = response.Current.Add(row.Current)
		response.Int1to30 = response.Int1to30.Add(row.Int1to30)
		response.Int31to60 = response.Int31to60.Add(row.Int31to60)
		response.Int61to90 = response.Int61to90.Add(row.Int61to90)
		response.Int90plus = response.Int90plus.Add(row.Int90plus)
		response.GrandTotal = response.GrandTotal.Add(row.Total)
	}

	if reportCacheEnabled() {
		if err := cacheSet(cacheKey, &response, reportCacheTTL()); err != nil {
			return &response, nil
		}
	}

	return &response, nil
}

type PayableAgingDetail struct {
	PurchaseId      int             `json:"purchaseId"`
	PurchaseNumber  string          `json:"purchaseNumber"`
	DeliveryDate    time.Time       `json:"deliveryDate"`
	DueDate         *time.Time      `json:"dueDate"`
	SupplierId      int             `json:"supplierId"`
	SupplierName    *string         `json:"supplierName"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	Age             int             `json:"age"`
	DueInterval     string          `json:"dueInterval"`
}

type PayableAgingDetailGroup struct {
	Interval   string                `json:"interval"`
	Details    []*PayableAgingDetail `json:"details,omitempty"`
	Amount     decimal.Decimal       `json:"amount"`
	BalanceDue decimal.Decimal       `json:"balanceDue"`
}

func GetPayableAgingDetail(ctx context.Context, asOfDate models.MyDateString) ([]*PayableAgingDetailGroup, error) {

	sql := `
WITH PurchaseAging AS (
    SELECT
        id,
        purchase_number,
        delivery_date,
        due_date,
        supplier_id,
        total_amount,
        total_amount - paid_amount AS remaining_amount,
        CASE
            WHEN due_date IS NULL THEN 0
            ELSE GREATEST(DATEDIFF(@asOfDate, due_date), 0)
        END AS days_overdue
    FROM
        purchase_transactions
    WHERE
        station_id = @stationId
        AND delivery_date <= @asOfDate
        AND total_amount - paid_amount > 0
)
SELECT
    PurchaseAging.id AS purchase_id,
    PurchaseAging.purchase_number,
    PurchaseAging.delivery_date,
    PurchaseAging.due_date,
    PurchaseAging.supplier_id,
    suppliers.name AS supplier_name,
    PurchaseAging.total_amount,
    PurchaseAging.remaining_amount,
    days_overdue AS age,
    (
        CASE
            WHEN days_overdue <= 0 THEN 'current'
            WHEN days_overdue BETWEEN 1 AND 30 THEN 'int1to30'
            WHEN days_overdue BETWEEN 31 AND 60 THEN 'int31to60'
            WHEN days_overdue BETWEEN 61 AND 90 THEN 'int61to90'
            ELSE 'int90plus'
        END
    ) AS due_interval
FROM
    PurchaseAging
    LEFT JOIN suppliers ON suppliers.id = PurchaseAging.supplier_id
ORDER BY
    days_overdue, PurchaseAging.id;
`

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}
	station, err := models.GetStation(ctx)
	if err != nil {
		return nil, err
	}
	if err := asOfDate.EndOfDayUTCTime(station.Timezone); err != nil {
		return nil, err
	}

	started := time.Now()
	var details []*PayableAgingDetail
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"stationId": stationId,
		"asOfDate":  asOfDate,
	}).Scan(&details).Error; err != nil {
		return nil, err
	}
	logSlowReport(ctx, "payableAgingDetail", started, nil)

	return groupPayableAgingDetails(details), nil
}

func groupPayableAgingDetails(details []*PayableAgingDetail) []*PayableAgingDetailGroup {
	if len(details) == 0 {
		return nil
	}

	var results []*PayableAgingDetailGroup

	currentInterval := details[0].DueInterval
	currentAmount := decimal.Zero
	currentBalanceDue := decimal.Zero
	currentDetails := make([]*PayableAgingDetail, 0)

	for _, purchase := range details {
		if purchase.DueInterval != currentInterval {
			results = append(results, &PayableAgingDetailGroup{
				Interval:   currentInterval,
				Amount:     currentAmount,
				BalanceDue: currentBalanceDue,
				Details:    currentDetails,
			})

			currentInterval = purchase.DueInterval
			currentAmount = decimal.Zero
			currentBalanceDue = decimal.Zero
			currentDetails = nil
		}

		currentAmount = currentAmount.Add(purchase.TotalAmount)
		currentBalanceDue = currentBalanceDue.Add(purchase.RemainingAmount)
		currentDetails = append(currentDetails, purchase)
	}

	results = append(results, &PayableAgingDetailGroup{
		Interval:   currentInterval,
		Details:    currentDetails,
		Amount:     currentAmount,
		BalanceDue: currentBalanceDue,
	})

	return results
}
