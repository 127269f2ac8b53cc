package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/shopspring/decimal"
)

// Supplier mirrors Customer on the payable side. OutstandingAmount is only
// mutated inside payment and purchase posting transactions.
type Supplier struct {
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

type NewSupplier struct {
	Name                   string       `json:"name" binding:"required"`
	Email                  string       `json:"email"`
	Phone                  string       `json:"phone"`
	Address                string       `json:"address"`
	PaymentTerms           PaymentTerms `json:"payment_terms"`
	PaymentTermsCustomDays int          `json:"payment_terms_custom_days"`
	Notes                  string       `json:"notes"`
}

type SuppliersEdge Edge[Supplier]
type SuppliersConnection struct {
	Edges    []*SuppliersEdge `json:"edges"`
	PageInfo *PageInfo        `json:"pageInfo"`
}

func (s Supplier) GetCursor() string {
	return s.CreatedAt.String()
}

func (input *NewSupplier) validate(ctx context.Context, stationId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Supplier](ctx, stationId, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[Supplier](ctx, stationId, "name", input.Name, id); err != nil {
		return err
	}
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return errors.New("invalid email address")
		}
		if err := utils.ValidateUnique[Supplier](ctx, stationId, "email", input.Email, id); err != nil {
			return err
		}
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return err
		}
		if err := utils.ValidateUnique[Supplier](ctx, stationId, "phone", input.Phone, id); err != nil {
			return err
		}
	}
	return nil
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
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

	supplier := Supplier{
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
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}

	if err := supplier.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &supplier, nil
}

// UpdateSupplier edits contact data. OutstandingAmount is deliberately absent
// from the update set.
func UpdateSupplier(ctx context.Context, id int, input *NewSupplier) (*Supplier, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	if err := input.validate(ctx, stationId, id); err != nil {
		return nil, err
	}

	supplier, err := utils.FetchModel[Supplier](ctx, stationId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(supplier).Updates(map[string]interface{}{
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

	if err := RemoveRedisBoth(*supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func ToggleActiveSupplier(ctx context.Context, id int, isActive bool) (*Supplier, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	return ToggleActiveModel[Supplier](ctx, stationId, id, isActive)
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	return GetResource[Supplier](ctx, id)
}

func PaginateSupplier(ctx context.Context, limit *int, after *string,
	name *string, phone *string, email *string, isActive *bool) (*SuppliersConnection, error) {

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

	edges, pageInfo, err := FetchPageCompositeCursor[Supplier](dbCtx, *limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}

	var suppliersConnection SuppliersConnection
	suppliersConnection.PageInfo = pageInfo
	for _, edge := range edges {
		supplierEdge := SuppliersEdge(edge)
		suppliersConnection.Edges = append(suppliersConnection.Edges, &supplierEdge)
	}

	return &suppliersConnection, err
}

// ListAllSuppliers serves the supplier picker from the redis list cache.
func ListAllSuppliers(ctx context.Context) ([]*AllSupplier, error) {
	return ListAllResource[Supplier, AllSupplier](ctx, "name")
}

// GetTotalOutstandingPayable sums what the station still owes its suppliers.
func GetTotalOutstandingPayable(ctx context.Context) (*decimal.Decimal, error) {
	stationId, ok := utils.GetStationIdFromContext(ctx)
	if !ok || stationId == "" {
		return nil, errors.New("station id is required")
	}

	db := config.GetDB()
	var totalOutstanding decimal.Decimal
	result := db.WithContext(ctx).Model(&Supplier{}).
		Where("station_id = ?", stationId).
		Select("COALESCE(SUM(outstanding_amount), 0)").
		Scan(&totalOutstanding)
	if result.Error != nil {
		return nil, result.Error
	}

	return &totalOutstanding, nil
}
