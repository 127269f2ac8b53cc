package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/shopspring/decimal"
)

// Payment is one append-only settlement entry against a customer (receivable)
// or a supplier (payable). Exactly one counterparty is set, matching the
// type. Rows are never updated or deleted.
type Payment struct {
	ID              int             `gorm:"primary_key" json:"id"`
	StationId       string          `gorm:"index;not null" json:"station_id"`
	PaymentType     PaymentType     `gorm:"type:enum('receivable','payable');not null" json:"payment_type"`
	CustomerId      *int            `gorm:"index" json:"customer_id"`
	Customer        *Customer       `json:"customer,omitempty"`
	SupplierId      *int            `gorm:"index" json:"supplier_id"`
	Supplier        *Supplier       `json:"supplier,omitempty"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	PaymentMethod   PaymentMethod   `gorm:"type:enum('cash','card','bank_transfer','mobile_money','cheque');not null" json:"payment_method"`
	CurrencyCode    string          `gorm:"size:3;not null;default:'MMK'" json:"currency_code"`
	PaymentNumber   string          `gorm:"size:30;not null" json:"payment_number"`
	SequenceNo      decimal.Decimal `gorm:"type:decimal(20,0);default:0" json:"sequence_no"`
	ReferenceNumber *string         `gorm:"size:100" json:"reference_number"`
	Notes           string          `gorm:"type:text" json:"notes"`
	PaymentDate     time.Time       `gorm:"index;not null" json:"payment_date"`
	CreatedBy       int             `gorm:"not null" json:"created_by"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPayment struct {
	PaymentType     PaymentType     `json:"payment_type" binding:"required"`
	CustomerId      *int            `json:"customer_id"`
	SupplierId      *int            `json:"supplier_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   PaymentMethod   `json:"payment_method" binding:"required"`
	CurrencyCode    string          `json:"currency_code"`
	ReferenceNumber *string         `json:"reference_number"`
	Notes           string          `json:"notes"`
	PaymentDate     *MyDateString   `json:"payment_date"`
}

type PaymentsEdge Edge[Payment]
type PaymentsConnection struct {
	Edges    []*PaymentsEdge `json:"edges"`
	PageInfo *PageInfo       `json:"pageInfo"`
}

func (p Payment) GetCursor() string {
	return p.PaymentDate.String()
}

func GetPayment(ctx context.Context, id int) (*Payment, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}
	return utils.FetchModel[Payment](ctx, stationId, id, "Customer", "Supplier")
}

func PaginatePayment(ctx context.Context, limit *int, after *string,
	paymentType *PaymentType, customerId *int, supplierId *int,
	paymentMethod *PaymentMethod, fromDate *MyDateString, toDate *MyDateString) (*PaymentsConnection, error) {

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("station_id = ?", stationId)
	if paymentType != nil && *paymentType != "" {
		dbCtx = dbCtx.Where("payment_type = ?", *paymentType)
	}
	if customerId != nil && *customerId > 0 {
		dbCtx = dbCtx.Where("customer_id = ?", *customerId)
	}
	if supplierId != nil && *supplierId > 0 {
		dbCtx = dbCtx.Where("supplier_id = ?", *supplierId)
	}
	if paymentMethod != nil && *paymentMethod != "" {
		dbCtx = dbCtx.Where("payment_method = ?", *paymentMethod)
	}
	if fromDate != nil {
		if err := fromDate.StartOfDayUTCTime(""); err != nil {
			return nil, err
		}
		dbCtx = dbCtx.Where("payment_date >= ?", time.Time(*fromDate))
	}
	if toDate != nil {
		if err := toDate.EndOfDayUTCTime(""); err != nil {
			return nil, err
		}
		dbCtx = dbCtx.Where("payment_date <= ?", time.Time(*toDate))
	}

	edges, pageInfo, err := FetchPageCompositeCursor[Payment](dbCtx, *limit, after, "payment_date", "<")
	if err != nil {
		return nil, err
	}

	var paymentsConnection PaymentsConnection
	paymentsConnection.PageInfo = pageInfo
	for _, edge := range edges {
		paymentEdge := PaymentsEdge(edge)
		paymentsConnection.Edges = append(paymentsConnection.Edges, &paymentEdge)
	}

	return &paymentsConnection, err
}
