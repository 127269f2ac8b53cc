package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/shopspring/decimal"
)

// StockMovement is one append-only ledger entry against a tank. Rows are
// never updated or deleted; corrections are compensating movements. Quantity
// is stored as a positive magnitude, the direction lives in the snapshots.
type StockMovement struct {
	ID             int                   `gorm:"primary_key" json:"id"`
	StationId      string                `gorm:"index;not null" json:"station_id"`
	TankId         int                   `gorm:"index;not null" json:"tank_id"`
	Tank           *Tank                 `json:"tank,omitempty"`
	MovementType   MovementType          `gorm:"type:enum('in','out','adjustment','transfer','audit');not null" json:"movement_type"`
	Quantity       decimal.Decimal       `gorm:"type:decimal(20,4);not null" json:"quantity"`
	PreviousStock  decimal.Decimal       `gorm:"type:decimal(20,4);not null" json:"previous_stock"`
	NewStock       decimal.Decimal       `gorm:"type:decimal(20,4);not null" json:"new_stock"`
	ReferenceType  MovementReferenceType `gorm:"type:enum('sale','purchase','adjustment','transfer','audit','manual');not null" json:"reference_type"`
	ReferenceId    *string               `gorm:"size:36;index" json:"reference_id"`
	MovementNumber string                `gorm:"size:30;not null" json:"movement_number"`
	SequenceNo     decimal.Decimal       `gorm:"type:decimal(20,0);default:0" json:"sequence_no"`
	Notes          string                `gorm:"type:text" json:"notes"`
	MovementDate   time.Time             `gorm:"index;not null" json:"movement_date"`
	CreatedBy      int                   `gorm:"not null" json:"created_by"`
	CreatedAt      time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStockMovement struct {
	TankId        int                   `json:"tank_id" binding:"required"`
	MovementType  MovementType          `json:"movement_type" binding:"required"`
	Quantity      decimal.Decimal       `json:"quantity"`
	ReferenceType MovementReferenceType `json:"reference_type"`
	ReferenceId   *string               `json:"reference_id"`
	Notes         string                `json:"notes"`
	MovementDate  *MyDateString         `json:"movement_date"`
}

type StockMovementsEdge Edge[StockMovement]
type StockMovementsConnection struct {
	Edges    []*StockMovementsEdge `json:"edges"`
	PageInfo *PageInfo             `json:"pageInfo"`
}

type NewStockTransfer struct {
	SourceTankId      int             `json:"source_tank_id" binding:"required"`
	DestinationTankId int             `json:"destination_tank_id" binding:"required"`
	Quantity          decimal.Decimal `json:"quantity"`
	Notes             string          `json:"notes"`
	MovementDate      *MyDateString   `json:"movement_date"`
}

// StockTransferResult carries both legs; they share ReferenceId.
type StockTransferResult struct {
	ReferenceId         string         `json:"reference_id"`
	SourceMovement      *StockMovement `json:"source_movement"`
	DestinationMovement *StockMovement `json:"destination_movement"`
}

type StockAuditCount struct {
	TankId        int             `json:"tank_id" binding:"required"`
	PhysicalCount decimal.Decimal `json:"physical_count"`
}

type NewStockAudit struct {
	Counts    []StockAuditCount `json:"counts" binding:"required,min=1"`
	Notes     string            `json:"notes"`
	AuditDate *MyDateString     `json:"audit_date"`
}

type StockAuditAdjustment struct {
	TankId        int             `json:"tank_id"`
	TankName      string          `json:"tank_name"`
	PreviousStock decimal.Decimal `json:"previous_stock"`
	PhysicalCount decimal.Decimal `json:"physical_count"`
	Difference    decimal.Decimal `json:"difference"`
	MovementId    int             `json:"movement_id"`
}

type StockAuditFailure struct {
	TankId int    `json:"tank_id"`
	Error  string `json:"error"`
}

// StockAuditResult reports per-tank outcomes; a failed tank rolls back alone,
// the rest of the batch still commits.
type StockAuditResult struct {
	ReferenceId string                 `json:"reference_id"`
	Adjusted    []StockAuditAdjustment `json:"adjusted"`
	Skipped     []int                  `json:"skipped"`
	Failed      []StockAuditFailure    `json:"failed"`
}

func (m StockMovement) GetCursor() string {
	return m.MovementDate.String()
}

func GetStockMovement(ctx context.Context, id int) (*StockMovement, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}
	return utils.FetchModel[StockMovement](ctx, stationId, id, "Tank")
}

// GetStockMovementsByReference returns every leg sharing one reference id,
// e.g. both sides of a transfer or a whole audit batch.
func GetStockMovementsByReference(ctx context.Context, referenceId string) ([]*StockMovement, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	db := config.GetDB()
	var results []*StockMovement
	if err := db.WithContext(ctx).
		Where("station_id = ? AND reference_id = ?", stationId, referenceId).
		Order("id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func PaginateStockMovement(ctx context.Context, limit *int, after *string,
	tankId *int, movementType *MovementType, referenceType *MovementReferenceType,
	fromDate *MyDateString, toDate *MyDateString) (*StockMovementsConnection, error) {

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("station_id = ?", stationId)
	if tankId != nil && *tankId > 0 {
		dbCtx = dbCtx.Where("tank_id = ?", *tankId)
	}
	if movementType != nil && *movementType != "" {
		dbCtx = dbCtx.Where("movement_type = ?", *movementType)
	}
	if referenceType != nil && *referenceType != "" {
		dbCtx = dbCtx.Where("reference_type = ?", *referenceType)
	}
	if fromDate != nil {
		if err := fromDate.StartOfDayUTCTime(""); err != nil {
			return nil, err
		}
		dbCtx = dbCtx.Where("movement_date >= ?", time.Time(*fromDate))
	}
	if toDate != nil {
		if err := toDate.EndOfDayUTCTime(""); err != nil {
			return nil, err
		}
		dbCtx = dbCtx.Where("movement_date <= ?", time.Time(*toDate))
	}

	edges, pageInfo, err := FetchPageCompositeCursor[StockMovement](dbCtx, *limit, after, "movement_date", "<")
	if err != nil {
		return nil, err
	}

	var movementsConnection StockMovementsConnection
	movementsConnection.PageInfo = pageInfo
	for _, edge := range edges {
		movementEdge := StockMovementsEdge(edge)
		movementsConnection.Edges = append(movementsConnection.Edges, &movementEdge)
	}

	return &movementsConnection, err
}
