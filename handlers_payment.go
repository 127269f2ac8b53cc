package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"bitbucket.org/mmdatafocus/fuelstation_backend/workflow"
	"github.com/gin-gonic/gin"
)

func recordPaymentHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "RecordPayment")
	defer span.End()

	var input models.NewPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}

	payment, err := workflow.RecordPayment(ctx, config.GetLogger(), input, idempotencyKeyFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func paginatePaymentsHandler(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}
	customerId, err := queryInt(c, "customer_id")
	if err != nil {
		respondError(c, err)
		return
	}
	supplierId, err := queryInt(c, "supplier_id")
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

	var paymentType *models.PaymentType
	if v := queryString(c, "payment_type"); v != nil {
		pt := models.PaymentType(*v)
		if !pt.IsValid() {
			respondError(c, utils.ErrInvalidArgument)
			return
		}
		paymentType = &pt
	}
	var paymentMethod *models.PaymentMethod
	if v := queryString(c, "payment_method"); v != nil {
		pm := models.PaymentMethod(*v)
		if !pm.IsValid() {
			respondError(c, utils.ErrInvalidArgument)
			return
		}
		paymentMethod = &pm
	}

	conn, err := models.PaginatePayment(c.Request.Context(), limit, queryString(c, "after"),
		paymentType, customerId, supplierId, paymentMethod, fromDate, toDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func getPaymentHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	payment, err := models.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// ---- sales ----

func postSaleHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "PostSale")
	defer span.End()

	var input models.NewSaleTransaction
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}

	sale, err := workflow.PostSale(ctx, config.GetLogger(), input, idempotencyKeyFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func paginateSalesHandler(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}
	customerId, err := queryInt(c, "customer_id")
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

	var paymentStatus *models.PaymentStatus
	if v := queryString(c, "payment_status"); v != nil {
		ps := models.PaymentStatus(*v)
		if !ps.IsValid() {
			respondError(c, utils.ErrInvalidArgument)
			return
		}
		paymentStatus = &ps
	}

	conn, err := models.PaginateSaleTransaction(c.Request.Context(), limit, queryString(c, "after"),
		customerId, tankId, paymentStatus, fromDate, toDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func getSaleHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	sale, err := models.GetSaleTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// ---- purchases ----

func postPurchaseHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "PostPurchase")
	defer span.End()

	var input models.NewPurchaseTransaction
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}

	purchase, err := workflow.PostPurchase(ctx, config.GetLogger(), input, idempotencyKeyFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func paginatePurchasesHandler(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}
	supplierId, err := queryInt(c, "supplier_id")
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

	var paymentStatus *models.PaymentStatus
	if v := queryString(c, "payment_status"); v != nil {
		ps := models.PaymentStatus(*v)
		if !ps.IsValid() {
			respondError(c, utils.ErrInvalidArgument)
			return
		}
		paymentStatus = &ps
	}

	conn, err := models.PaginatePurchaseTransaction(c.Request.Context(), limit, queryString(c, "after"),
		supplierId, tankId, paymentStatus, fromDate, toDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func getPurchaseHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	purchase, err := models.GetPurchaseTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}
