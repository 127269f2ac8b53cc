package main

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/models/reports"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func receivableAgingHandler(c *gin.Context) {
	asOf, err := queryAsOfDate(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if detail, _ := strconv.ParseBool(c.Query("detail")); detail {
		groups, err := reports.GetReceivableAgingDetail(c.Request.Context(), asOf)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"as_of": asOf, "data": groups})
		return
	}

	summary, err := reports.GetReceivableAgingSummary(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func payableAgingHandler(c *gin.Context) {
	asOf, err := queryAsOfDate(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if detail, _ := strconv.ParseBool(c.Query("detail")); detail {
		groups, err := reports.GetPayableAgingDetail(c.Request.Context(), asOf)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"as_of": asOf, "data": groups})
		return
	}

	summary, err := reports.GetPayableAgingSummary(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func exportReceivableAgingHandler(c *gin.Context) {
	asOf, err := queryAsOfDate(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", "attachment; filename=\""+reports.AgingExportFileName("receivable_aging", asOf)+"\"")
	if err := reports.ExportReceivableAgingExcel(c.Request.Context(), asOf, c.Writer); err != nil {
		// headers may already be out; log and drop the connection
		_ = c.Error(err)
		c.Abort()
	}
}

func exportPayableAgingHandler(c *gin.Context) {
	asOf, err := queryAsOfDate(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", "attachment; filename=\""+reports.AgingExportFileName("payable_aging", asOf)+"\"")
	if err := reports.ExportPayableAgingExcel(c.Request.Context(), asOf, c.Writer); err != nil {
		_ = c.Error(err)
		c.Abort()
	}
}

// outstandingTotalsHandler returns the headline receivable/payable figures
// for the dashboard cards.
func outstandingTotalsHandler(c *gin.Context) {
	ctx := c.Request.Context()

	receivable, err := models.GetTotalOutstandingReceivable(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	payable, err := models.GetTotalOutstandingPayable(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_receivable": receivable,
		"total_payable":    payable,
	})
}
