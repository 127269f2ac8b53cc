package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/shopspring/decimal"
)

// embedding struct will receive ID field, satisfy Identifier interface
type HasId struct {
	ID int `json:"id"`
}

func (h HasId) GetId() int {
	return h.ID
}

type AllFuelProduct struct {
	HasId
	Name          string          `json:"name"`
	Code          string          `json:"code"`
	Unit          string          `json:"unit"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	IsActive      bool            `json:"is_active"`
}

type AllTank struct {
	HasId
	Name          string          `json:"name"`
	Code          string          `json:"code"`
	FuelProductId int             `json:"fuel_product_id"`
	Capacity      decimal.Decimal `json:"capacity"`
	CurrentStock  decimal.Decimal `json:"currentStock"`
	MinimumLevel  decimal.Decimal `json:"minimumLevel"`
	IsActive      bool            `json:"is_active"`
}

type AllCustomer struct {
	HasId
	Name              string          `json:"name"`
	Phone             string          `json:"phone"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	IsActive          bool            `json:"is_active"`
}

type AllSupplier struct {
	HasId
	Name              string          `json:"name"`
	Phone             string          `json:"phone"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	IsActive          bool            `json:"is_active"`
}

type AllStation struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
	IsActive bool   `json:"is_active"`
}

// get AllModelMap for lookups, redis or db
func MapAllModel[ModelT any, AllT Identifier](ctx context.Context) (map[int]*AllT, error) {

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	key := utils.GetTypeName[AllT]() + "Map:" + stationId

	var allMap map[int]*AllT

	// retrieve from redis
	if exists, err := config.GetRedisObject(key, &allMap); err != nil {
		return nil, err
	} else if !exists {
		// if the map has not been cached yet
		// fetch resources and construct the map, cache the result

		allMap = make(map[int]*AllT)
		var allSlice []*AllT
		db := config.GetDB()
		var m ModelT
		dbCtx := db.WithContext(ctx).Model(&m).Where("station_id = ?", stationId)
		if err := dbCtx.Find(&allSlice).Error; err != nil {
			return nil, err
		}

		for _, allModel := range allSlice {
			allMap[(*allModel).GetId()] = allModel
		}

		var duration time.Duration
		if err := config.SetRedisObject(key, &allMap, duration); err != nil {
			return nil, err
		}
	}

	return allMap, nil
}

func MapAllFuelProduct(ctx context.Context) (map[int]*AllFuelProduct, error) {
	return MapAllModel[FuelProduct, AllFuelProduct](ctx)
}

func MapAllTank(ctx context.Context) (map[int]*AllTank, error) {
	return MapAllModel[Tank, AllTank](ctx)
}

func MapAllCustomer(ctx context.Context) (map[int]*AllCustomer, error) {
	return MapAllModel[Customer, AllCustomer](ctx)
}

func MapAllSupplier(ctx context.Context) (map[int]*AllSupplier, error) {
	return MapAllModel[Supplier, AllSupplier](ctx)
}

func ListAllStations(ctx context.Context) ([]*AllStation, error) {
	return ListAllAdmin[Station, AllStation](ctx, "id", "name", "timezone", "is_active")
}
