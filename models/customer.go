package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/shopspring/decimal"
)

// Customer carries a running receivable balance. OutstandingAmount is only
// mutated inside payment and sale posting transactions; it may go negative
// after an overpayment.
type Customer struct {
	ID                    int             `gorm:"primary_key" json:"id"`
	StationId             string          `gorm:"index;not null" json:"station_id"`
	Name                  string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Email                 string          `gorm:"size:100" json:"email"`
	Phone                 string          `gorm:"size:20" json:"phone"`
	Address               string          `gorm:"type:text" json:"address"`
	PaymentTerms          PaymentTerms    `gorm:"type:enum('Net15','Net30','Net45','Net60','DueMonthEnd','DueNextMonthEnd','DueOnReceipt','Custom');not null;default:'DueOnReceipt'" json:"payment_terms"`
	PaymentTermsCustomDays int            `gorm:"default:0" json:"payment_terms_custom_days"`
	OutstandingAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"outstanding_amount"`
	Notes                 string          `gorm:"type:text" json:"notes"`
	IsActive              *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name                   string       `json:"name" binding:"required"`
	Email                  string       `json:"email"`
	Phone                  string       `json:"phone"`
	Address                string       `json:"address"`
	PaymentTerms           PaymentTerms `json:"payment_terms"`
	PaymentTermsCustomDays int          `json:"payment_terms_custom_days"`
	Notes                  string       `json:"notes"`
}

type CustomersEdge Edge[Customer]
type CustomersConnection struct {
	Edges    []*CustomersEdge `json:"edges"`
	PageInfo *PageInfo        `json:"pageInfo"`
}

// returns decoded cursor string
func (c Customer) GetCursor() string {
	return c.CreatedAt.String()
}

func (input *NewCustomer) validate(ctx context.Context, stationId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, stationId, id); err != nil {
			return err
		}
	}
	// validate unique name
	if err := utils.ValidateUnique[Customer](ctx, stationId, "name", input.Name, id); err != nil {
		return err
	}
	// validate email
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return errors.New("invalid email address")
		}
		if err := utils.ValidateUnique[Customer](ctx, stationId, "email", input.Email, id); err != nil {
			return err
		}
	}
	// validate phone
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return err
		}
		if err := utils.ValidateUnique[Customer](ctx, stationId, "phone", input.Phone, id); err != nil {
			return err
		}
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	if err := input.validate(ctx, stationId, 0); err != nil {
		return nil, err
	}

	paymentTerms := input.PaymentTerms
	if paymentTerms == "" {
		paymentTerms = PaymentTermsDueOnReceipt
	}

	customer := Customer{
		StationId:              stationId,
		Name:                   input.Name,
		Email:                  input.Email,
		Phone:                  input.Phone,
		Address:                input.Address,
		PaymentTerms:           paymentTerms,
		PaymentTermsCustomDays: input.PaymentTermsCustomDays,
		Notes:                  input.Notes,
		IsActive:               utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}

	if err := customer.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpdateCustomer edits contact data. OutstandingAmount is deliberately absent
// from the update set.
func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	if err := input.validate(ctx, stationId, id); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, stationId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(customer).Updates(map[string]interface{}{
		"Name":                   input.Name,
		"Email":                  input.Email,
		"Phone":                  input.Phone,
		"Address":                input.Address,
		"PaymentTerms":           input.PaymentTerms,
		"PaymentTermsCustomDays": input.PaymentTermsCustomDays,
		"Notes":                  input.Notes,
	}).Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func ToggleActiveCustomer(ctx context.Context, id int, isActive bool) (*Customer, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	return ToggleActiveModel[Customer](ctx, stationId, id, isActive)
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return GetResource[Customer](ctx, id)
}

func PaginateCustomer(ctx context.Context, limit *int, after *string,
	name *string, phone *string, email *string, isActive *bool) (*CustomersConnection, error) {

	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("station_id = ?", stationId)
	if name != nil && *name != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if phone != nil && *phone != "" {
		dbCtx = dbCtx.Where("phone LIKE ?", "%"+*phone+"%")
	}
	if email != nil && *email != "" {
		dbCtx = dbCtx.Where("email LIKE ?", "%"+*email+"%")
	}
	if isActive != nil {
		dbCtx = dbCtx.Where("is_active = ?", isActive)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[Customer](dbCtx, *limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}

	var customersConnection CustomersConnection
	customersConnection.PageInfo = pageInfo
	for _, edge := range edges {
		customerEdge := CustomersEdge(edge)
		customersConnection.Edges = append(customersConnection.Edges, &customerEdge)
	}

	return &customersConnection, err
}

// ListAllCustomers serves the customer picker from the redis list cache.
func ListAllCustomers(ctx context.Context) ([]*AllCustomer, error) {
	return ListAllResource[Customer, AllCustomer](ctx, "name")
}

// GetTotalOutstandingReceivable sums what every customer of the station still
// owes.
func GetTotalOutstandingReceivable(ctx context.Context) (*decimal.Decimal, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	db := config.GetDB()
	var totalOutstanding decimal.Decimal
	result := db.WithContext(ctx).Model(&Customer{}).
		Where("station_id = ?", stationId).
		Select("COALESCE(SUM(outstanding_amount), 0)").
		Scan(&totalOutstanding)
	if result.Error != nil {
		return nil, result.Error
	}

	return &totalOutstanding, nil
}
