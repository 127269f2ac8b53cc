package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/gin-gonic/gin"
)

type toggleActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// ---- stations (admin only) ----

func listStationsHandler(c *gin.Context) {
	stations, err := models.GetStations(c.Request.Context(), queryString(c, "name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stations})
}

func createStationHandler(c *gin.Context) {
	var input models.NewStation
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	station, err := models.CreateStation(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, station)
}

func getStationHandler(c *gin.Context) {
	station, err := models.GetStationById(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, station)
}

func updateStationHandler(c *gin.Context) {
	var input models.NewStation
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	station, err := models.UpdateStation(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, station)
}

func toggleStationHandler(c *gin.Context) {
	var req toggleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	station, err := models.ToggleActiveStation(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, station)
}

// ---- users ----

func listUsersHandler(c *gin.Context) {
	users, err := models.GetUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	for _, u := range users {
		u.PrepareGive()
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

func createUserHandler(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	user, err := models.CreateUser(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	user.PrepareGive()
	c.JSON(http.StatusCreated, user)
}

func getUserHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	user, err := models.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	user.PrepareGive()
	c.JSON(http.StatusOK, user)
}

func updateUserHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	user, err := models.UpdateUser(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	user.PrepareGive()
	c.JSON(http.StatusOK, user)
}

// ---- fuel products ----

func paginateFuelProductsHandler(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}
	isActive, err := queryBool(c, "is_active")
	if err != nil {
		respondError(c, err)
		return
	}
	conn, err := models.PaginateFuelProduct(c.Request.Context(), limit, queryString(c, "after"),
		queryString(c, "name"), queryString(c, "code"), isActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func listAllFuelProductsHandler(c *gin.Context) {
	all, err := models.ListAllFuelProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": all})
}

func getFuelProductHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	product, err := models.GetFuelProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func createFuelProductHandler(c *gin.Context) {
	var input models.NewFuelProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	product, err := models.CreateFuelProduct(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func updateFuelProductHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewFuelProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	product, err := models.UpdateFuelProduct(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func toggleFuelProductHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req toggleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	product, err := models.ToggleActiveFuelProduct(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ---- tanks ----

func paginateTanksHandler(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}
	fuelProductId, err := queryInt(c, "fuel_product_id")
	if err != nil {
		respondError(c, err)
		return
	}
	isActive, err := queryBool(c, "is_active")
	if err != nil {
		respondError(c, err)
		return
	}
	conn, err := models.PaginateTank(c.Request.Context(), limit, queryString(c, "after"),
		queryString(c, "name"), queryString(c, "code"), fuelProductId, isActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func listAllTanksHandler(c *gin.Context) {
	all, err := models.ListAllTanks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": all})
}

func lowStockTanksHandler(c *gin.Context) {
	tanks, err := models.GetLowStockTanks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tanks})
}

func getTankHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	tank, err := models.GetTank(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tank)
}

func createTankHandler(c *gin.Context) {
	var input models.NewTank
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	tank, err := models.CreateTank(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tank)
}

func updateTankHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewTank
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	tank, err := models.UpdateTank(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tank)
}

func toggleTankHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req toggleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	tank, err := models.ToggleActiveTank(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tank)
}

// ---- customers ----

func paginateCustomersHandler(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}
	isActive, err := queryBool(c, "is_active")
	if err != nil {
		respondError(c, err)
		return
	}
	conn, err := models.PaginateCustomer(c.Request.Context(), limit, queryString(c, "after"),
		queryString(c, "name"), queryString(c, "phone"), queryString(c, "email"), isActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func listAllCustomersHandler(c *gin.Context) {
	all, err := models.ListAllCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": all})
}

func getCustomerHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	customer, err := models.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func createCustomerHandler(c *gin.Context) {
	var input models.NewCustomer
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	customer, err := models.CreateCustomer(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func updateCustomerHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewCustomer
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	customer, err := models.UpdateCustomer(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func toggleCustomerHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req toggleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	customer, err := models.ToggleActiveCustomer(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// ---- suppliers ----

func paginateSuppliersHandler(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}
	isActive, err := queryBool(c, "is_active")
	if err != nil {
		respondError(c, err)
		return
	}
	conn, err := models.PaginateSupplier(c.Request.Context(), limit, queryString(c, "after"),
		queryString(c, "name"), queryString(c, "phone"), queryString(c, "email"), isActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func listAllSuppliersHandler(c *gin.Context) {
	all, err := models.ListAllSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": all})
}

func getSupplierHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	supplier, err := models.GetSupplier(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func createSupplierHandler(c *gin.Context) {
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	supplier, err := models.CreateSupplier(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func updateSupplierHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	supplier, err := models.UpdateSupplier(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func toggleSupplierHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req toggleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	supplier, err := models.ToggleActiveSupplier(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}
