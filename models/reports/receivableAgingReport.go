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

type ReceivableAgingSummaryRow struct {
	CustomerId    int             `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	DocumentCount int             `json:"documentCount"`
	Current       decimal.Decimal `json:"current"`
	Int1to30      decimal.Decimal `json:"int1to30"`
	Int31to60     decimal.Decimal `json:"int31to60"`
	Int61to90     decimal.Decimal `json:"int61to90"`
	Int90plus     decimal.Decimal `json:"int90plus"`
	Total         decimal.Decimal `json:"total"`
}

// ReceivableAgingSummaryResponse carries per-customer rows plus the bucket
// totals across the whole station. GrandTotal always equals both the sum of
// the bucket totals and the sum of every row's Total.
type ReceivableAgingSummaryResponse struct {
	Rows       []*ReceivableAgingSummaryRow `json:"rows"`
	Current    decimal.Decimal              `json:"current"`
	Int1to30   decimal.Decimal              `json:"int1to30"`
	Int31to60  decimal.Decimal              `json:"int31to60"`
	Int61to90  decimal.Decimal              `json:"int61to90"`
	Int90plus  decimal.Decimal              `json:"int90plus"`
	GrandTotal decimal.Decimal              `json:"grandTotal"`
}

func GetReceivableAgingSummary(ctx context.Context, asOfDate models.MyDateString) (*ReceivableAgingSummaryResponse, error) {

	sql := `
WITH SaleAging AS (
    SELECT
        customer_id,
        total_amount - paid_amount AS remaining_amount,
        CASE
            WHEN due_date IS NULL THEN 0
            ELSE GREATEST(DATEDIFF(@asOfDate, due_date), 0)
        END AS days_overdue
    FROM
        sale_transactions
    WHERE
        station_id = @stationId
        AND sale_date <= @asOfDate
        AND total_amount - paid_amount > 0
)
SELECT
    SaleAging.customer_id,
    COALESCE(customers.name, 'Walk-in') AS customer_name,
    COUNT(*) AS document_count,
    SUM(remaining_amount) AS total,
    SUM(CASE WHEN days_overdue <= 0 THEN remaining_amount ELSE 0 END) AS current,
    SUM(CASE WHEN days_overdue BETWEEN 1 AND 30 THEN remaining_amount ELSE 0 END) AS int1to30,
    SUM(CASE WHEN days_overdue BETWEEN 31 AND 60 THEN remaining_amount ELSE 0 END) AS int31to60,
    SUM(CASE WHEN days_overdue BETWEEN 61 AND 90 THEN remaining_amount ELSE 0 END) AS int61to90,
    SUM(CASE WHEN days_overdue > 90 THEN remaining_amount ELSE 0 END) AS int90plus
FROM
    SaleAging
    LEFT JOIN customers ON customers.id = SaleAging.customer_id
GROUP BY
    SaleAging.customer_id, customer_name
ORDER BY
    customer_name, SaleAging.customer_id;
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

	cacheKey := "report:receivableAgingSummary:" + stationId + ":" + time.Time(asOfDate).Format("2006-01-02")
	if reportCacheEnabled() {
		var cached ReceivableAgingSummaryResponse
		if hit, err := cacheGet(cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
		release, err := utils.StationLock(ctx, stationId, "reportLock", "receivableAgingReport.go", "GetReceivableAgingSummary")
		if err == nil {
			defer release()
		}
	}

	started := time.Now()
	var rows []*ReceivableAgingSummaryRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"stationId": stationId,
		"asOfDate":  asOfDate,
	}).Scan(&rows).Error; err != nil {
		return nil, err
	}
	logSlowReport(ctx, "receivableAgingSummary", started, nil)

	response := ReceivableAgingSummaryResponse{Rows: rows}
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

type ReceivableAgingDetail struct {
	SaleId          int             `json:"saleId"`
	SaleNumber      string          `json:"saleNumber"`
	SaleDate        time.Time       `json:"saleDate"`
	DueDate         *time.Time      `json:"dueDate"`
	CustomerId      *int            `json:"customerId"`
	CustomerName    *string         `json:"customerName"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	Age             int             `json:"age"`
	DueInterval     string          `json:"dueInterval"`
}

type ReceivableAgingDetailGroup struct {
	Interval   string                   `json:"interval"`
	Details    []*ReceivableAgingDetail `json:"details,omitempty"`
	Amount     decimal.Decimal          `json:"amount"`
	BalanceDue decimal.Decimal          `json:"balanceDue"`
}

func GetReceivableAgingDetail(ctx context.Context, asOfDate models.MyDateString) ([]*ReceivableAgingDetailGroup, error) {

	sql := `
WITH SaleAging AS (
    SELECT
        id,
        sale_number,
        sale_date,
        due_date,
        customer_id,
        total_amount,
        total_amount - paid_amount AS remaining_amount,
        CASE
            WHEN due_date IS NULL THEN 0
            ELSE GREATEST(DATEDIFF(@asOfDate, due_date), 0)
        END AS days_overdue
    FROM
        sale_transactions
    WHERE
        station_id = @stationId
        AND sale_date <= @asOfDate
        AND total_amount - paid_amount > 0
)
SELECT
    SaleAging.id AS sale_id,
    SaleAging.sale_number,
    SaleAging.sale_date,
    SaleAging.due_date,
    SaleAging.customer_id,
    customers.name AS customer_name,
    SaleAging.total_amount,
    SaleAging.remaining_amount,
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
    SaleAging
    LEFT JOIN customers ON customers.id = SaleAging.customer_id
ORDER BY
    days_overdue, SaleAging.id;
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
	var details []*ReceivableAgingDetail
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"stationId": stationId,
		"asOfDate":  asOfDate,
	}).Scan(&details).Error; err != nil {
		return nil, err
	}
	logSlowReport(ctx, "receivableAgingDetail", started, nil)

	return groupReceivableAgingDetails(details), nil
}

// groupReceivableAgingDetails folds the ORDER BY days_overdue stream into one
// group per bucket, subtotalling as it goes.
func groupReceivableAgingDetails(details []*ReceivableAgingDetail) []*ReceivableAgingDetailGroup {
	if len(details) == 0 {
		return nil
	}

	var results []*ReceivableAgingDetailGroup

	currentInterval := details[0].DueInterval
	currentAmount := decimal.Zero
	currentBalanceDue := decimal.Zero
	currentDetails := make([]*ReceivableAgingDetail, 0)

	for _, sale := range details {
		if sale.DueInterval != currentInterval {
			results = append(results, &ReceivableAgingDetailGroup{
				Interval:   currentInterval,
				Amount:     currentAmount,
				BalanceDue: currentBalanceDue,
				Details:    currentDetails,
			})

			currentInterval = sale.DueInterval
			currentAmount = decimal.Zero
			currentBalanceDue = decimal.Zero
			currentDetails = nil
		}

		currentAmount = currentAmount.Add(sale.TotalAmount)
		currentBalanceDue = currentBalanceDue.Add(sale.RemainingAmount)
		currentDetails = append(currentDetails, sale)
	}

	results = append(results, &ReceivableAgingDetailGroup{
		Interval:   currentInterval,
		Details:    currentDetails,
		Amount:     currentAmount,
		BalanceDue: currentBalanceDue,
	})

	return results
}
