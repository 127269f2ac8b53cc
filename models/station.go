package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/google/uuid"
)

// Station is the tenant root: every scoped table carries its id in a
// station_id column. Stations are deactivated, never deleted.
type Station struct {
	ID                        string    `gorm:"primary_key;size:36" json:"id"`
	Name                      string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Address                   string    `gorm:"type:text" json:"address"`
	Phone                     string    `gorm:"size:20" json:"phone"`
	Email                     string    `gorm:"size:255" json:"email"`
	Timezone                  string    `gorm:"size:50" json:"timezone"`
	TransactionNumberSeriesId int       `json:"transaction_number_series_id"`
	IsActive                  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt                 time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                 time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStation struct {
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Timezone string `json:"timezone"`
}

/*
caches:
	Station:$id
*/

func (obj Station) StoreRedis() error {
	return config.SetRedisObject("Station:"+obj.ID, &obj, 0)
}

func (obj Station) RemoveInstanceRedis() error {
	return config.RemoveRedisKey("Station:" + obj.ID)
}

func (obj Station) RemoveAllRedis() error {
	return utils.RemoveRedisList[AllStation]("")
}

func (input *NewStation) validate() error {
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return err
		}
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email address")
	}
	return nil
}

// default document number prefixes seeded for every new station
var defaultSeriesModules = []TransactionNumberSeriesModule{
	{ModuleName: "Stock Movement", Prefix: "MV-"},
	{ModuleName: "Payment", Prefix: "PAY-"},
	{ModuleName: "Sale", Prefix: "SL-"},
	{ModuleName: "Purchase", Prefix: "PUR-"},
}

// CreateStation provisions the tenant together with its document number
// series. Admin only.
func CreateStation(ctx context.Context, input *NewStation) (*Station, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	timezone := input.Timezone
	if timezone == "" {
		timezone = "Asia/Yangon"
	}

	station := Station{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Address:  input.Address,
		Phone:    input.Phone,
		Email:    input.Email,
		Timezone: timezone,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	tx := db.Begin()

	series := TransactionNumberSeries{
		StationId: station.ID,
		Name:      "Default",
	}
	for i := range defaultSeriesModules {
		module := defaultSeriesModules[i]
		series.Modules = append(series.Modules, &module)
	}

	if err := tx.WithContext(ctx).Create(&station).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Create(&series).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Model(&station).
		UpdateColumn("transaction_number_series_id", series.ID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	station.TransactionNumberSeriesId = series.ID

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := station.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &station, nil
}

func UpdateStation(ctx context.Context, id string, input *NewStation) (*Station, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var station Station
	if err := db.WithContext(ctx).Where("id = ?", id).First(&station).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if err := db.WithContext(ctx).Model(&station).Updates(map[string]interface{}{
		"Name":     input.Name,
		"Address":  input.Address,
		"Phone":    input.Phone,
		"Email":    input.Email,
		"Timezone": input.Timezone,
	}).Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(station); err != nil {
		return nil, err
	}
	return &station, nil
}

// GetStationById reads through the Station:$id cache.
func GetStationById(ctx context.Context, id string) (*Station, error) {

	var result Station

	exists, err := config.GetRedisObject("Station:"+id, &result)
	if err != nil {
		return nil, err
	}

	if !exists {
		db := config.GetDB()
		// db query
		err := db.WithContext(ctx).Where("id = ?", id).First(&result).Error
		if err != nil {
			return nil, utils.ErrorRecordNotFound
		}
		// caching
		if err := result.StoreRedis(); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

// GetStation resolves the caller's own station from the request context.
func GetStation(ctx context.Context) (*Station, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}
	return GetStationById(ctx, stationId)
}

// GetStations lists every station. Admin only; station scoping is skipped by
// the caller marking the context.
func GetStations(ctx context.Context, name *string) ([]*Station, error) {
	db := config.GetDB()
	var results []*Station

	dbCtx := db.WithContext(ctx)
	if name != nil && *name != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if err := dbCtx.Order("created_at").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveStation(ctx context.Context, id string, isActive bool) (*Station, error) {
	db := config.GetDB()
	var station Station
	if err := db.WithContext(ctx).Where("id = ?", id).First(&station).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if err := db.WithContext(ctx).Model(&station).
		UpdateColumn("IsActive", isActive).Error; err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(station); err != nil {
		return nil, err
	}
	return &station, nil
}
