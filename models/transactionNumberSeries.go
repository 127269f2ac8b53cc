package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"gorm.io/gorm"
)

// TransactionNumberSeries holds the per-station document number prefixes
// (MV-, PAY-, SL-, PUR-). Sequence values themselves live in redis, reseeded
// from the max stored sequence_no on a cold start.
type TransactionNumberSeries struct {
	ID        int                              `gorm:"primary_key" json:"id"`
	StationId string                           `gorm:"index;not null" json:"station_id" binding:"required"`
	Name      string                           `gorm:"size:100;not null" json:"name" binding:"required"`
	Modules   []*TransactionNumberSeriesModule `gorm:"foreignKey:SeriesId" json:"modules"`
	CreatedAt time.Time                        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time                        `gorm:"autoUpdateTime" json:"updated_at"`
}

type TransactionNumberSeriesModule struct {
	SeriesId   int    `gorm:"primaryKey;autoIncrement:false" json:"series_id"`
	ModuleName string `gorm:"primaryKey;autoIncrement:false" json:"module_name" binding:"required"`
	Prefix     string `gorm:"size:10" json:"prefix"`
}

type NewTransactionNumberSeries struct {
	Name    string                             `json:"name" binding:"required"`
	Modules []NewTransactionNumberSeriesModule `json:"modules"`
}

type NewTransactionNumberSeriesModule struct {
	ModuleName string `json:"module_name" binding:"required"`
	Prefix     string `json:"prefix"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewTransactionNumberSeries) validate(ctx context.Context, stationId string, id int) error {
	if err := utils.ValidateUnique[TransactionNumberSeries](ctx, stationId, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func mapTransactionNumberSeriesModules(input []NewTransactionNumberSeriesModule) []TransactionNumberSeriesModule {
	modules := make([]TransactionNumberSeriesModule, 0)
	for _, m := range input {
		modules = append(modules, TransactionNumberSeriesModule{
			ModuleName: m.ModuleName,
			Prefix:     m.Prefix,
		})
	}
	return modules
}

func CreateTransactionNumberSeries(ctx context.Context, input *NewTransactionNumberSeries) (*TransactionNumberSeries, error) {

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	// validate name
	if err := input.validate(ctx, stationId, 0); err != nil {
		return nil, err
	}

	series := TransactionNumberSeries{
		StationId: stationId,
		Name:      input.Name,
	}
	modules := mapTransactionNumberSeriesModules(input.Modules)
	for i := range modules {
		series.Modules = append(series.Modules, &modules[i])
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&series).Error; err != nil {
		return nil, err
	}
	return &series, nil
}

func UpdateTransactionNumberSeries(ctx context.Context, id int, input *NewTransactionNumberSeries) (*TransactionNumberSeries, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	if err := input.validate(ctx, stationId, id); err != nil {
		return nil, err
	}

	series, err := utils.FetchModel[TransactionNumberSeries](ctx, stationId, id)
	if err != nil {
		return nil, err
	}

	modules := mapTransactionNumberSeriesModules(input.Modules)

	db := config.GetDB()
	tx := db.Begin()
	if err = tx.WithContext(ctx).Model(series).
		Updates(map[string]interface{}{
			"Name": input.Name,
		}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err = tx.WithContext(ctx).Model(series).
		Session(&gorm.Session{FullSaveAssociations: true, SkipHooks: true}).
		Association("Modules").
		Unscoped().Replace(&modules); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// prefixes are cached per station; drop the stale map
	if err := config.RemoveRedisKey("tnsPrefixMap:" + stationId); err != nil {
		return nil, err
	}

	return series, nil
}

func GetTransactionNumberSeries(ctx context.Context, id int) (*TransactionNumberSeries, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}
	return utils.FetchModel[TransactionNumberSeries](ctx, stationId, id, "Modules")
}

func GetAllTransactionNumberSeries(ctx context.Context) ([]*TransactionNumberSeries, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	db := config.GetDB()
	var results []*TransactionNumberSeries
	if err := db.WithContext(ctx).Where("station_id = ?", stationId).
		Preload("Modules").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
