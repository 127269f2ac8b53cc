package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/shopspring/decimal"
)

type FuelProduct struct {
	ID            int             `gorm:"primary_key" json:"id"`
	StationId     string          `gorm:"index;not null" json:"station_id"`
	Name          string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Code          string          `gorm:"size:20;not null" json:"code" binding:"required"`
	Unit          string          `gorm:"size:20;not null;default:'liter'" json:"unit"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sale_price"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"purchase_price"`
	IsActive      *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFuelProduct struct {
	Name          string          `json:"name" binding:"required"`
	Code          string          `json:"code" binding:"required"`
	Unit          string          `json:"unit"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

type FuelProductsEdge Edge[FuelProduct]
type FuelProductsConnection struct {
	Edges    []*FuelProductsEdge `json:"edges"`
	PageInfo *PageInfo           `json:"pageInfo"`
}

func (p FuelProduct) GetCursor() string {
	return p.CreatedAt.String()
}

func (input *NewFuelProduct) validate(ctx context.Context, stationId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[FuelProduct](ctx, stationId, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[FuelProduct](ctx, stationId, "name", input.Name, id); err != nil {
		return err
	}
	if err := utils.ValidateUnique[FuelProduct](ctx, stationId, "code", input.Code, id); err != nil {
		return err
	}
	if input.SalePrice.IsNegative() || input.PurchasePrice.IsNegative() {
		return errors.New("price cannot be negative")
	}
	return nil
}

func CreateFuelProduct(ctx context.Context, input *NewFuelProduct) (*FuelProduct, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	if err := input.validate(ctx, stationId, 0); err != nil {
		return nil, err
	}

	unit := input.Unit
	if unit == "" {
		unit = "liter"
	}

	product := FuelProduct{
		StationId:     stationId,
		Name:          input.Name,
		Code:          input.Code,
		Unit:          unit,
		SalePrice:     input.SalePrice,
		PurchasePrice: input.PurchasePrice,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}

	if err := product.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateFuelProduct(ctx context.Context, id int, input *NewFuelProduct) (*FuelProduct, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	if err := input.validate(ctx, stationId, id); err != nil {
		return nil, err
	}

	product, err := utils.FetchModel[FuelProduct](ctx, stationId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(product).Updates(map[string]interface{}{
		"Name":          input.Name,
		"Code":          input.Code,
		"Unit":          input.Unit,
		"SalePrice":     input.SalePrice,
		"PurchasePrice": input.PurchasePrice,
	}).Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*product); err != nil {
		return nil, err
	}
	return product, nil
}

func GetFuelProduct(ctx context.Context, id int) (*FuelProduct, error) {
	return GetResource[FuelProduct](ctx, id)
}

func ToggleActiveFuelProduct(ctx context.Context, id int, isActive bool) (*FuelProduct, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}
	return ToggleActiveModel[FuelProduct](ctx, stationId, id, isActive)
}

func PaginateFuelProduct(ctx context.Context, limit *int, after *string,
	name *string, code *string, isActive *bool) (*FuelProductsConnection, error) {

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
	if isActive != nil {
		dbCtx = dbCtx.Where("is_active = ?", isActive)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[FuelProduct](dbCtx, *limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}

	var connection FuelProductsConnection
	connection.PageInfo = pageInfo
	for _, edge := range edges {
		productEdge := FuelProductsEdge(edge)
		connection.Edges = append(connection.Edges, &productEdge)
	}

	return &connection, err
}

// ListAllFuelProducts serves the active-product picker from the redis list
// cache.
func ListAllFuelProducts(ctx context.Context) ([]*AllFuelProduct, error) {
	return ListAllResource[FuelProduct, AllFuelProduct](ctx, "name")
}
