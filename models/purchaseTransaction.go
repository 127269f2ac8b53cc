package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/shopspring/decimal"
)

// PurchaseTransaction is a posted fuel delivery. Posting writes the row, the
// `in` stock movement and the supplier's outstanding increase in one
// transaction (see workflow.PostPurchase).
type PurchaseTransaction struct {
	ID             int             `gorm:"primary_key" json:"id"`
	StationId      string          `gorm:"index;not null" json:"station_id"`
	PurchaseNumber string          `gorm:"size:30;not null" json:"purchase_number"`
	SequenceNo     decimal.Decimal `gorm:"type:decimal(20,0);default:0" json:"sequence_no"`
	ReferenceUid   string          `gorm:"size:36;index" json:"reference_uid"`
	SupplierId     int             `gorm:"index;not null" json:"supplier_id"`
	Supplier       *Supplier       `json:"supplier,omitempty"`
	TankId         int             `gorm:"index;not null" json:"tank_id"`
	Tank           *Tank           `json:"tank,omitempty"`
	FuelProductId  int             `gorm:"index;not null" json:"fuel_product_id"`
	FuelProduct    *FuelProduct    `json:"fuel_product,omitempty"`
	Quantity       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_cost"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	DueDate        *time.Time      `json:"due_date"`
	PaymentStatus  PaymentStatus   `gorm:"type:enum('paid','partial','credit');not null" json:"payment_status"`
	DeliveryDate   time.Time       `gorm:"index;not null" json:"delivery_date"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedBy      int             `gorm:"not null" json:"created_by"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPurchaseTransaction struct {
	SupplierId   int             `json:"supplier_id" binding:"required"`
	TankId       int             `json:"tank_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	DueDate      *MyDateString   `json:"due_date"`
	DeliveryDate *MyDateString   `json:"delivery_date"`
	Notes        string          `json:"notes"`
}

type PurchaseTransactionsEdge Edge[PurchaseTransaction]
type PurchaseTransactionsConnection struct {
	Edges    []*PurchaseTransactionsEdge `json:"edges"`
	PageInfo *PageInfo                   `json:"pageInfo"`
}

func (p PurchaseTransaction) GetCursor() string {
	return p.DeliveryDate.String()
}

func GetPurchaseTransaction(ctx context.Context, id int) (*PurchaseTransaction, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}
	return utils.FetchModel[PurchaseTransaction](ctx, stationId, id, "Tank", "FuelProduct", "Supplier")
}

func PaginatePurchaseTransaction(ctx context.Context, limit *int, after *string,
	supplierId *int, tankId *int, paymentStatus *PaymentStatus,
	fromDate *MyDateString, toDate *MyDateString) (*PurchaseTransactionsConnection, error) {

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("station_id = ?", stationId)
	if supplierId != nil && *supplierId > 0 {
		dbCtx = dbCtx.Where("supplier_id = ?", *supplierId)
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
		dbCtx = dbCtx.Where("delivery_date >= ?", time.Time(*fromDate))
	}
	if toDate != nil {
		if err := toDate.EndOfDayUTCTime(""); err != nil {
			return nil, err
		}
		dbCtx = dbCtx.Where("delivery_date <= ?", time.Time(*toDate))
	}

	edges, pageInfo, err := FetchPageCompositeCursor[PurchaseTransaction](dbCtx, *limit, after, "delivery_date", "<")
	if err != nil {
		return nil, err
	}

	var purchasesConnection PurchaseTransactionsConnection
	purchasesConnection.PageInfo = pageInfo
	for _, edge := range edges {
		purchaseEdge := PurchaseTransactionsEdge(edge)
		purchasesConnection.Edges = append(purchasesConnection.Edges, &purchaseEdge)
	}

	return &purchasesConnection, err
}
