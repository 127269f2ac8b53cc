package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxUploadSizeBytes int64 = 5 * 1024 * 1024

var receiptMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

type uploadReceiptResponse struct {
	Attachment   *models.Attachment `json:"attachment"`
	FileURL      string             `json:"file_url"`
	ThumbnailURL string             `json:"thumbnail_url,omitempty"`
}

// uploadReceiptHandler stores a receipt or audit sheet against a ledger
// record. The file arrives as multipart form data; images additionally get
// a 200px thumbnail rendered server side.
func uploadReceiptHandler(c *gin.Context) {
	logger := config.GetLogger()
	ctx := c.Request.Context()

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "station scope is required"})
		return
	}

	referenceType := strings.TrimSpace(c.PostForm("reference_type"))
	referenceId := strings.TrimSpace(c.PostForm("reference_id"))
	if referenceType == "" || referenceId == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "reference_type and reference_id are required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadSizeBytes {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "file size exceeds 5MB limit"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !receiptMimeTypes[contentType] {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unsupported file type"})
		return
	}

	if utils.GetStorageProvider() != utils.StorageProviderGCS {
		c.JSON(http.StatusBadRequest, gin.H{"error": "storage provider not supported"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		respondError(c, utils.ErrStorageError)
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadSizeBytes+1))
	if err != nil {
		respondError(c, utils.ErrStorageError)
		return
	}
	if int64(len(data)) > maxUploadSizeBytes {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "file size exceeds 5MB limit"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = extensionFromMimeType(contentType)
	}
	objectKey := path.Join(stationId, "receipts", uuid.New().String()+ext)

	if err := utils.UploadBytesToGCS(ctx, objectKey, data, contentType); err != nil {
		config.LogError(logger, "uploads.go", "uploadReceiptHandler", "UploadBytesToGCS", map[string]any{
			"object_key": objectKey,
		}, err)
		respondError(c, utils.ErrStorageError)
		return
	}

	var thumbnailKey *string
	if strings.HasPrefix(contentType, "image/") {
		tk, err := createThumbnail(ctx, objectKey, data)
		if err != nil {
			// thumbnail failure should not lose the receipt itself
			logger.WithFields(logrus.Fields{
				"object_key": objectKey,
			}).Warn("thumbnail generation failed: " + err.Error())
		} else {
			thumbnailKey = &tk
		}
	}

	attachment, err := models.CreateAttachment(ctx, &models.NewAttachment{
		ReferenceType: referenceType,
		ReferenceId:   referenceId,
		FileName:      fileHeader.Filename,
		ContentType:   contentType,
		ObjectKey:     objectKey,
		ThumbnailKey:  thumbnailKey,
	})
	if err != nil {
		// DB rejected the metadata; remove the orphaned object
		if delErr := utils.DeleteObjectFromGCS(ctx, objectKey); delErr != nil {
			logger.WithFields(logrus.Fields{
				"object_key": objectKey,
			}).Warn("orphan cleanup failed: " + delErr.Error())
		}
		respondError(c, err)
		return
	}

	resp := uploadReceiptResponse{
		Attachment: attachment,
		FileURL:    utils.BuildObjectAccessURL(objectKey),
	}
	if thumbnailKey != nil {
		resp.ThumbnailURL = utils.BuildObjectAccessURL(*thumbnailKey)
	}

	logger.WithFields(logrus.Fields{
		"station_id":     stationId,
		"reference_type": referenceType,
		"reference_id":   referenceId,
		"object_key":     objectKey,
		"size":           len(data),
	}).Info("[upload.receipt]")

	c.JSON(http.StatusCreated, resp)
}

func listAttachmentsHandler(c *gin.Context) {
	referenceType := strings.TrimSpace(c.Query("reference_type"))
	referenceId := strings.TrimSpace(c.Query("reference_id"))
	if referenceType == "" || referenceId == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "reference_type and reference_id are required"})
		return
	}

	attachments, err := models.GetAttachments(c.Request.Context(), referenceType, referenceId)
	if err != nil {
		respondError(c, err)
		return
	}

	type attachmentWithURL struct {
		*models.Attachment
		FileURL      string `json:"file_url"`
		ThumbnailURL string `json:"thumbnail_url,omitempty"`
	}
	out := make([]attachmentWithURL, 0, len(attachments))
	for _, a := range attachments {
		item := attachmentWithURL{Attachment: a, FileURL: utils.BuildObjectAccessURL(a.ObjectKey)}
		if a.ThumbnailKey != nil {
			item.ThumbnailURL = utils.BuildObjectAccessURL(*a.ThumbnailKey)
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func deleteAttachmentHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	logger := config.GetLogger()

	attachment, err := models.DeleteAttachment(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	// best-effort object cleanup; the metadata row is already gone
	if err := utils.DeleteObjectFromGCS(ctx, attachment.ObjectKey); err != nil {
		logger.WithFields(logrus.Fields{
			"object_key": attachment.ObjectKey,
		}).Warn("object cleanup failed: " + err.Error())
	}
	if attachment.ThumbnailKey != nil {
		if err := utils.DeleteObjectFromGCS(ctx, *attachment.ThumbnailKey); err != nil {
			logger.WithFields(logrus.Fields{
				"object_key": *attachment.ThumbnailKey,
			}).Warn("thumbnail cleanup failed: " + err.Error())
		}
	}

	c.JSON(http.StatusOK, gin.H{"deleted": attachment.ID})
}

func createThumbnail(ctx context.Context, objectKey string, data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
		return "", err
	}

	thumbnailKey := thumbnailObjectKey(objectKey)
	if err := utils.UploadBytesToGCS(ctx, thumbnailKey, buf.Bytes(), "image/jpeg"); err != nil {
		return "", err
	}
	return thumbnailKey, nil
}

func thumbnailObjectKey(objectKey string) string {
	dir := path.Dir(objectKey)
	filename := strings.TrimSuffix(path.Base(objectKey), path.Ext(objectKey)) + ".jpg"
	return path.Join(dir, "thumbnails", filename)
}

func extensionFromMimeType(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
