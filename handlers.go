package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/gin-gonic/gin"
)

// sessionUserMiddleware hydrates the request context for redis-session
// clients. SessionMiddleware only resolves token -> username; the user row
// carries the station, role and id the rest of the stack scopes by. JWT
// clients are already hydrated by AuthMiddleware and are left alone.
func sessionUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if _, ok := utils.GetUserIdFromContext(ctx); ok {
			// JWT path already set the identity.
			c.Next()
			return
		}

		username, ok := utils.GetUsernameFromContext(ctx)
		if !ok || username == "" {
			c.Next()
			return
		}

		user, err := models.GetUserByUsername(ctx, username)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		if user.IsActive != nil && !*user.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
			c.Abort()
			return
		}

		ctx = utils.SetUserIdInContext(ctx, user.ID)
		ctx = utils.SetUserNameInContext(ctx, user.Name)
		ctx = utils.SetRoleInContext(ctx, string(user.Role))
		if user.Role == models.UserRoleAdmin {
			ctx = utils.SetIsAdminInContext(ctx, true)
			// Admins may act on a specific station by header.
			if sid := strings.TrimSpace(c.GetHeader("x-station-id")); sid != "" {
				ctx = utils.SetStationIdInContext(ctx, sid)
			}
		} else {
			ctx = utils.SetStationIdInContext(ctx, user.StationId)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requireAuth rejects requests that carry no resolved identity.
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := utils.GetUserIdFromContext(c.Request.Context()); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, _ := utils.GetIsAdminFromContext(c.Request.Context())
		if !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// requireRole allows any of the given roles; admins always pass.
func requireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if isAdmin, _ := utils.GetIsAdminFromContext(ctx); isAdmin {
			c.Next()
			return
		}
		role, _ := utils.GetRoleFromContext(ctx)
		for _, r := range roles {
			if string(r) == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		c.Abort()
	}
}

func respondError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)
	body := gin.H{"error": err.Error()}
	if cid, ok := utils.GetCorrelationIdFromContext(c.Request.Context()); ok {
		body["correlation_id"] = cid
	}
	if status >= http.StatusInternalServerError {
		// surface on the gin error chain for customErrorLogger
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func idempotencyKeyFrom(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("Idempotency-Key"))
}

// query helpers; absent params stay nil so the model filters skip them

func queryString(c *gin.Context, name string) *string {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil
	}
	return &v
}

func queryInt(c *gin.Context, name string) (*int, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, utils.ErrInvalidArgument
	}
	return &n, nil
}

func queryBool(c *gin.Context, name string) (*bool, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, utils.ErrInvalidArgument
	}
	return &b, nil
}

func queryDate(c *gin.Context, name string) (*models.MyDateString, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", v)
	if err != nil {
		t, err = time.Parse("2006-01-02", v)
		if err != nil {
			return nil, utils.ErrInvalidArgument
		}
	}
	d := models.MyDateString(t)
	return &d, nil
}

// queryAsOfDate defaults the aging as-of date to today when absent.
func queryAsOfDate(c *gin.Context) (models.MyDateString, error) {
	d, err := queryDate(c, "as_of")
	if err != nil {
		return models.MyDateString{}, err
	}
	if d == nil {
		today := models.MyDateString(time.Now().UTC())
		return today, nil
	}
	return *d, nil
}

func registerRoutes(r *gin.Engine) {
	// session bootstrap
	r.POST("/auth/login", loginHandler)

	api := r.Group("/", requireAuth())
	{
		api.POST("/auth/logout", logoutHandler)
		api.GET("/auth/me", meHandler)
		api.POST("/auth/change-password", changePasswordHandler)

		// stations are platform-level master data
		stations := api.Group("/stations", requireAdmin())
		{
			stations.GET("", listStationsHandler)
			stations.POST("", createStationHandler)
			stations.GET("/:id", getStationHandler)
			stations.PATCH("/:id", updateStationHandler)
			stations.POST("/:id/toggle-active", toggleStationHandler)
		}

		users := api.Group("/users", requireRole(models.UserRoleManager))
		{
			users.GET("", listUsersHandler)
			users.POST("", createUserHandler)
			users.GET("/:id", getUserHandler)
			users.PATCH("/:id", updateUserHandler)
		}

		products := api.Group("/fuel-products")
		{
			products.GET("", paginateFuelProductsHandler)
			products.GET("/all", listAllFuelProductsHandler)
			products.GET("/:id", getFuelProductHandler)
			products.POST("", requireRole(models.UserRoleManager), createFuelProductHandler)
			products.PATCH("/:id", requireRole(models.UserRoleManager), updateFuelProductHandler)
			products.POST("/:id/toggle-active", requireRole(models.UserRoleManager), toggleFuelProductHandler)
		}

		tanks := api.Group("/tanks")
		{
			tanks.GET("", paginateTanksHandler)
			tanks.GET("/all", listAllTanksHandler)
			tanks.GET("/low-stock", lowStockTanksHandler)
			tanks.GET("/:id", getTankHandler)
			tanks.POST("", requireRole(models.UserRoleManager), createTankHandler)
			tanks.PATCH("/:id", requireRole(models.UserRoleManager), updateTankHandler)
			tanks.POST("/:id/toggle-active", requireRole(models.UserRoleManager), toggleTankHandler)
		}

		customers := api.Group("/customers")
		{
			customers.GET("", paginateCustomersHandler)
			customers.GET("/all", listAllCustomersHandler)
			customers.GET("/:id", getCustomerHandler)
			customers.POST("", createCustomerHandler)
			customers.PATCH("/:id", updateCustomerHandler)
			customers.POST("/:id/toggle-active", requireRole(models.UserRoleManager), toggleCustomerHandler)
		}

		suppliers := api.Group("/suppliers")
		{
			suppliers.GET("", paginateSuppliersHandler)
			suppliers.GET("/all", listAllSuppliersHandler)
			suppliers.GET("/:id", getSupplierHandler)
			suppliers.POST("", createSupplierHandler)
			suppliers.PATCH("/:id", updateSupplierHandler)
			suppliers.POST("/:id/toggle-active", requireRole(models.UserRoleManager), toggleSupplierHandler)
		}

		// ledger mutations
		api.POST("/stock-movements", recordStockMovementHandler)
		api.GET("/stock-movements", paginateStockMovementsHandler)
		api.GET("/stock-movements/:id", getStockMovementHandler)
		api.GET("/stock-movements/by-reference/:referenceId", stockMovementsByReferenceHandler)
		api.POST("/stock-transfers", transferStockHandler)
		api.POST("/stock-audits", requireRole(models.UserRoleManager), runStockAuditHandler)

		api.POST("/payments", recordPaymentHandler)
		api.GET("/payments", paginatePaymentsHandler)
		api.GET("/payments/:id", getPaymentHandler)

		api.POST("/sales", postSaleHandler)
		api.GET("/sales", paginateSalesHandler)
		api.GET("/sales/:id", getSaleHandler)

		api.POST("/purchases", postPurchaseHandler)
		api.GET("/purchases", paginatePurchasesHandler)
		api.GET("/purchases/:id", getPurchaseHandler)

		reports := api.Group("/reports")
		{
			reports.GET("/receivable-aging", receivableAgingHandler)
			reports.GET("/receivable-aging/export", exportReceivableAgingHandler)
			reports.GET("/payable-aging", payableAgingHandler)
			reports.GET("/payable-aging/export", exportPayableAgingHandler)
			reports.GET("/outstanding-totals", outstandingTotalsHandler)
		}

		api.POST("/uploads/receipt", uploadReceiptHandler)
		api.GET("/attachments", listAttachmentsHandler)
		api.DELETE("/attachments/:id", requireRole(models.UserRoleManager), deleteAttachmentHandler)
	}
}
