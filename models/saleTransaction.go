package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/shopspring/decimal"
)

// SaleTransaction is a posted fuel sale. Posting writes the row, the `out`
// stock movement and, for credit/partial sales, the customer's outstanding
// increase in one transaction (see workflow.PostSale).
type SaleTransaction struct {
	ID            int             `gorm:"primary_key" json:"id"`
	StationId     string          `gorm:"index;not null" json:"station_id"`
	SaleNumber    string          `gorm:"size:30;not null" json:"sale_number"`
	SequenceNo    decimal.Decimal `gorm:"type:decimal(20,0);default:0" json:"sequence_no"`
	ReferenceUid  string          `gorm:"size:36;index" json:"reference_uid"`
	TankId        int             `gorm:"index;not null" json:"tank_id"`
	Tank          *Tank           `json:"tank,omitempty"`
	FuelProductId int             `gorm:"index;not null" json:"fuel_product_id"`
	FuelProduct   *FuelProduct    `json:"fuel_product,omitempty"`
	CustomerId    *int            `gorm:"index" json:"customer_id"`
	Customer      *Customer       `json:"customer,omitempty"`
	Quantity      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	DueDate       *time.Time      `json:"due_date"`
	PaymentStatus PaymentStatus   `gorm:"type:enum('paid','partial','credit');not null" json:"payment_status"`
	SaleDate      time.Time       `gorm:"index;not null" json:"sale_date"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedBy     int             `gorm:"not null" json:"created_by"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSaleTransaction struct {
	TankId     int             `json:"tank_id" binding:"required"`
	CustomerId *int            `json:"customer_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	DueDate    *MyDateString   `json:"due_date"`
	SaleDate   *MyDateString   `json:"sale_date"`
	Notes      string          `json:"notes"`
}

type SaleTransactionsEdge Edge[SaleTransaction]
type SaleTransactionsConnection struct {
	Edges    []*SaleTransactionsEdge `json:"edges"`
	PageInfo *PageInfo               `json:"pageInfo"`
}

func (s SaleTransaction) GetCursor() string {
	return s.SaleDate.String()
}

func GetSaleTransaction(ctx context.Context, id int) (*SaleTransaction, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}
	return utils.FetchModel[SaleTransaction](ctx, stationId, id, "Tank", "FuelProduct", "Customer")
}

func PaginateSaleTransaction(ctx context.Context, limit *int, after *string,
	customerId *int, tankId *int, paymentStatus *PaymentStatus,
	fromDate *MyDateString, toDate *MyDateString) (*SaleTransactionsConnection, error) {

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("station_id = ?", stationId)
	if customerId != nil && *customerId > 0 {
		dbCtx = dbCtx.Where("customer_id = ?", *customerId)
	}
	if tankId != nil && *tankId > 0 {
		dbCtx = dbCtx.Where("tank_id = ?", *tankId)
	}
	if paymentStatus != nil && *paymentStatus != "" {
		dbCtx = dbCtx.Where("payment_status = ?", *paymentStatus)
	}
	if fromDate != nil {
		if err := fromDate.StartOfDayUTCTime(""); err != nil {
			return nil, err
		}
		dbCtx = dbCtx.Where("sale_date >= ?", time.Time(*fromDate))
	}
	if toDate != nil {
		if err := toDate.EndOfDayUTCTime(""); err != nil {
			return nil, err
		}
		dbCtx = dbCtx.Where("sale_date <= ?", time.Time(*toDate))
	}

	edges, pageInfo, err := FetchPageCompositeCursor[SaleTransaction](dbCtx, *limit, after, "sale_date", "<")
	if err != nil {
		return nil, err
	}

	var salesConnection SaleTransactionsConnection
	salesConnection.PageInfo = pageInfo
	for _, edge := range edges {
		saleEdge := SaleTransactionsEdge(edge)
		salesConnection.Edges = append(salesConnection.Edges, &saleEdge)
	}

	return &salesConnection, err
}
