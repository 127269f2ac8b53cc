package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"bitbucket.org/mmdatafocus/fuelstation_backend/workflow"
	"github.com/gin-gonic/gin"
)

func recordStockMovementHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "RecordStockMovement")
	defer span.End()

	var input models.NewStockMovement
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}

	movement, err := workflow.RecordStockMovement(ctx, config.GetLogger(), input, idempotencyKeyFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, movement)
}

func paginateStockMovementsHandler(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}
	tankId, err := queryInt(c, "tank_id")
	if err != nil {
		respondError(c, err)
		return
	}
	fromDate, err := queryDate(c, "from_date")
	if err != nil {
		respondError(c, err)
		return
	}
	toDate, err := queryDate(c, "to_date")
	if err != nil {
		respondError(c, err)
		return
	}

	var movementType *models.MovementType
	if v := queryString(c, "movement_type"); v != nil {
		mt := models.MovementType(*v)
		if !mt.IsValid() {
			respondError(c, utils.ErrInvalidArgument)
			return
		}
		movementType = &mt
	}
	var referenceType *models.MovementReferenceType
	if v := queryString(c, "reference_type"); v != nil {
		rt := models.MovementReferenceType(*v)
		if !rt.IsValid() {
			respondError(c, utils.ErrInvalidArgument)
			return
		}
		referenceType = &rt
	}

	conn, err := models.PaginateStockMovement(c.Request.Context(), limit, queryString(c, "after"),
		tankId, movementType, referenceType, fromDate, toDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func getStockMovementHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	movement, err := models.GetStockMovement(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, movement)
}

func stockMovementsByReferenceHandler(c *gin.Context) {
	movements, err := models.GetStockMovementsByReference(c.Request.Context(), c.Param("referenceId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": movements})
}

func transferStockHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "TransferStock")
	defer span.End()

	var input models.NewStockTransfer
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}

	result, err := workflow.TransferStock(ctx, config.GetLogger(), input, idempotencyKeyFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func runStockAuditHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "RunStockAudit")
	defer span.End()

	var input models.NewStockAudit
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}

	result, err := workflow.RunStockAudit(ctx, config.GetLogger(), input, idempotencyKeyFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	// partial failures are reported, not hidden
	status := http.StatusCreated
	if len(result.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}
