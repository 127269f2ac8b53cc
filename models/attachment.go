package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
)

// Attachment stores receipt / audit-sheet file metadata. The bytes live in
// GCS under ObjectKey; images additionally get a 200px thumbnail.
type Attachment struct {
	ID            int       `gorm:"primary_key" json:"id"`
	StationId     string    `gorm:"index;not null" json:"station_id"`
	ReferenceType string    `gorm:"size:30;not null" json:"reference_type"`
	ReferenceId   string    `gorm:"size:36;index;not null" json:"reference_id"`
	FileName      string    `gorm:"size:255;not null" json:"file_name"`
	ContentType   string    `gorm:"size:100" json:"content_type"`
	ObjectKey     string    `gorm:"size:500;not null" json:"object_key"`
	ThumbnailKey  *string   `gorm:"size:500" json:"thumbnail_key"`
	CreatedBy     int       `json:"created_by"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAttachment struct {
	ReferenceType string  `json:"reference_type"`
	ReferenceId   string  `json:"reference_id"`
	FileName      string  `json:"file_name"`
	ContentType   string  `json:"content_type"`
	ObjectKey     string  `json:"object_key"`
	ThumbnailKey  *string `json:"thumbnail_key"`
}

// attachment reference targets
func validateAttachmentReference(ctx context.Context, stationId string, referenceType string, referenceId string) error {
	db := config.GetDB()

	var count int64
	switch referenceType {
	case "payment":
		if err := db.WithContext(ctx).Model(&Payment{}).
			Where("station_id = ? AND id = ?", stationId, referenceId).
			Count(&count).Error; err != nil {
			return err
		}
	case "stock_audit":
		// audit batches are addressed by their shared reference uuid
		if err := db.WithContext(ctx).Model(&StockMovement{}).
			Where("station_id = ? AND reference_id = ?", stationId, referenceId).
			Count(&count).Error; err != nil {
			return err
		}
	default:
		return errors.New("invalid reference type")
	}
	if count <= 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func CreateAttachment(ctx context.Context, input *NewAttachment) (*Attachment, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	if err := validateAttachmentReference(ctx, stationId, input.ReferenceType, input.ReferenceId); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	attachment := Attachment{
		StationId:     stationId,
		ReferenceType: input.ReferenceType,
		ReferenceId:   input.ReferenceId,
		FileName:      input.FileName,
		ContentType:   input.ContentType,
		ObjectKey:     input.ObjectKey,
		ThumbnailKey:  input.ThumbnailKey,
		CreatedBy:     userId,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func GetAttachments(ctx context.Context, referenceType string, referenceId string) ([]*Attachment, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	db := config.GetDB()
	var results []*Attachment
	if err := db.WithContext(ctx).
		Where("station_id = ? AND reference_type = ? AND reference_id = ?", stationId, referenceType, referenceId).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteAttachment removes the row and the stored objects. A missing GCS
// object is not an error.
func DeleteAttachment(ctx context.Context, id int) (*Attachment, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	db := config.GetDB()
	var result Attachment
	if err := db.WithContext(ctx).
		Where("station_id = ?", stationId).
		First(&result, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if err := db.WithContext(ctx).Delete(&result).Error; err != nil {
		return nil, err
	}

	if err := utils.DeleteObjectFromGCS(ctx, result.ObjectKey); err != nil {
		return nil, err
	}
	if result.ThumbnailKey != nil && *result.ThumbnailKey != "" {
		if err := utils.DeleteObjectFromGCS(ctx, *result.ThumbnailKey); err != nil {
			return nil, err
		}
	}
	return &result, nil
}
