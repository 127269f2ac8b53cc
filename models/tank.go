package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/shopspring/decimal"
)

// Tank tracks the physical stock of one fuel product. CurrentStock is only
// ever written through a stock movement; tank CRUD never touches it after
// creation.
type Tank struct {
	ID             int             `gorm:"primary_key" json:"id"`
	StationId      string          `gorm:"index;not null" json:"station_id"`
	FuelProductId  int             `gorm:"index;not null" json:"fuel_product_id"`
	FuelProduct    *FuelProduct    `json:"fuel_product,omitempty"`
	Name           string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Code           string          `gorm:"size:20;not null" json:"code" binding:"required"`
	Capacity       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"capacity"`
	CurrentStock   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_stock"`
	MinimumLevel   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"minimum_level"`
	LastRefillDate *time.Time      `json:"last_refill_date"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTank struct {
	FuelProductId int             `json:"fuel_product_id" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Code          string          `json:"code" binding:"required"`
	Capacity      decimal.Decimal `json:"capacity"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinimumLevel  decimal.Decimal `json:"minimum_level"`
}

type TanksEdge Edge[Tank]
type TanksConnection struct {
	Edges    []*TanksEdge `json:"edges"`
	PageInfo *PageInfo    `json:"pageInfo"`
}

func (t Tank) GetCursor() string {
	return t.CreatedAt.String()
}

func (input *NewTank) validate(ctx context.Context, stationId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Tank](ctx, stationId, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[Tank](ctx, stationId, "name", input.Name, id); err != nil {
		return err
	}
	if err := utils.ValidateUnique[Tank](ctx, stationId, "code", input.Code, id); err != nil {
		return err
	}
	if err := utils.ValidateResourceId[FuelProduct](ctx, stationId, input.FuelProductId); err != nil {
		return errors.New("fuel product not found")
	}
	if !input.Capacity.IsPositive() {
		return errors.New("capacity must be greater than zero")
	}
	if input.MinimumLevel.IsNegative() {
		return errors.New("minimum level cannot be negative")
	}
	return nil
}

func CreateTank(ctx context.Context, input *NewTank) (*Tank, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	if err := input.validate(ctx, stationId, 0); err != nil {
		return nil, err
	}
	// opening stock must already fit the tank
	if input.CurrentStock.IsNegative() || input.CurrentStock.GreaterThan(input.Capacity) {
		return nil, errors.New("current stock must be between zero and capacity")
	}

	tank := Tank{
		StationId:     stationId,
		FuelProductId: input.FuelProductId,
		Name:          input.Name,
		Code:          input.Code,
		Capacity:      input.Capacity,
		CurrentStock:  input.CurrentStock,
		MinimumLevel:  input.MinimumLevel,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&tank).Error; err != nil {
		return nil, err
	}

	if err := tank.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &tank, nil
}

// UpdateTank edits tank metadata. CurrentStock is deliberately absent from
// the update set.
func UpdateTank(ctx context.Context, id int, input *NewTank) (*Tank, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	if err := input.validate(ctx, stationId, id); err != nil {
		return nil, err
	}

	tank, err := utils.FetchModel[Tank](ctx, stationId, id)
	if err != nil {
		return nil, err
	}
	if input.Capacity.LessThan(tank.CurrentStock) {
		return nil, errors.New("capacity cannot be less than the current stock")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(tank).Updates(map[string]interface{}{
		"FuelProductId": input.FuelProductId,
		"Name":          input.Name,
		"Code":          input.Code,
		"Capacity":      input.Capacity,
		"MinimumLevel":  input.MinimumLevel,
	}).Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*tank); err != nil {
		return nil, err
	}
	return tank, nil
}

func GetTank(ctx context.Context, id int) (*Tank, error) {
	return GetResource[Tank](ctx, id)
}

func ToggleActiveTank(ctx context.Context, id int, isActive bool) (*Tank, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}
	return ToggleActiveModel[Tank](ctx, stationId, id, isActive)
}

func PaginateTank(ctx context.Context, limit *int, after *string,
	name *string, code *string, fuelProductId *int, isActive *bool) (*TanksConnection, error) {

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("station_id = ?", stationId)
	if name != nil && *name != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if code != nil && *code != "" {
		dbCtx = dbCtx.Where("code LIKE ?", "%"+*code+"%")
	}
	if fuelProductId != nil && *fuelProductId > 0 {
		dbCtx = dbCtx.Where("fuel_product_id = ?", *fuelProductId)
	}
	if isActive != nil {
		dbCtx = dbCtx.Where("is_active = ?", isActive)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[Tank](dbCtx, *limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}

	var connection TanksConnection
	connection.PageInfo = pageInfo
	for _, edge := range edges {
		tankEdge := TanksEdge(edge)
		connection.Edges = append(connection.Edges, &tankEdge)
	}

	return &connection, err
}

// ListAllTanks serves the tank picker from the redis list cache.
func ListAllTanks(ctx context.Context) ([]*AllTank, error) {
	return ListAllResource[Tank, AllTank](ctx, "name")
}

// GetLowStockTanks lists active tanks that have fallen below their minimum
// level.
func GetLowStockTanks(ctx context.Context) ([]*Tank, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	db := config.GetDB()
	var results []*Tank
	if err := db.WithContext(ctx).
		Where("station_id = ?", stationId).
		Where("is_active = ?", true).
		Where("current_stock < minimum_level").
		Order("current_stock").
		Preload("FuelProduct").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
