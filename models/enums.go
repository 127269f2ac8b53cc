package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type MovementType string

const (
	MovementTypeIn         MovementType = "in"
	MovementTypeOut        MovementType = "out"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeTransfer   MovementType = "transfer"
	MovementTypeAudit      MovementType = "audit"
)

func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment, MovementTypeTransfer, MovementTypeAudit:
		return true
	}
	return false
}

// convert input to enum type
func (t *MovementType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("movement type must be string")
	}
	switch str {
	case "in":
		*t = MovementTypeIn
	case "out":
		*t = MovementTypeOut
	case "adjustment":
		*t = MovementTypeAdjustment
	case "transfer":
		*t = MovementTypeTransfer
	case "audit":
		*t = MovementTypeAudit
	default:
		return errors.New("invalid movement type")
	}
	return nil
}

type MovementReferenceType string

const (
	MovementReferenceTypeSale       MovementReferenceType = "sale"
	MovementReferenceTypePurchase   MovementReferenceType = "purchase"
	MovementReferenceTypeAdjustment MovementReferenceType = "adjustment"
	MovementReferenceTypeTransfer   MovementReferenceType = "transfer"
	MovementReferenceTypeAudit      MovementReferenceType = "audit"
	MovementReferenceTypeManual     MovementReferenceType = "manual"
)

func (t MovementReferenceType) IsValid() bool {
	movementReferenceTypes := map[MovementReferenceType]bool{
		MovementReferenceTypeSale:       true,
		MovementReferenceTypePurchase:   true,
		MovementReferenceTypeAdjustment: true,
		MovementReferenceTypeTransfer:   true,
		MovementReferenceTypeAudit:      true,
		MovementReferenceTypeManual:     true,
	}
	return movementReferenceTypes[t]
}

func (t *MovementReferenceType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("movement reference type must be string")
	}
	movementReferenceTypes := map[string]MovementReferenceType{
		"sale":       MovementReferenceTypeSale,
		"purchase":   MovementReferenceTypePurchase,
		"adjustment": MovementReferenceTypeAdjustment,
		"transfer":   MovementReferenceTypeTransfer,
		"audit":      MovementReferenceTypeAudit,
		"manual":     MovementReferenceTypeManual,
	}
	v, ok := movementReferenceTypes[str]
	if !ok {
		return errors.New("invalid movement reference type")
	}
	*t = v
	return nil
}

type PaymentType string

const (
	PaymentTypeReceivable PaymentType = "receivable"
	PaymentTypePayable    PaymentType = "payable"
)

func (t PaymentType) IsValid() bool {
	return t == PaymentTypeReceivable || t == PaymentTypePayable
}

func (t *PaymentType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("payment type must be string")
	}
	switch str {
	case "receivable":
		*t = PaymentTypeReceivable
	case "payable":
		*t = PaymentTypePayable
	default:
		return errors.New("invalid payment type")
	}
	return nil
}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodCheque       PaymentMethod = "cheque"
)

func (t PaymentMethod) IsValid() bool {
	switch t {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodMobileMoney, PaymentMethodCheque:
		return true
	}
	return false
}

func (t *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("payment method must be string")
	}
	paymentMethods := map[string]PaymentMethod{
		"cash":          PaymentMethodCash,
		"card":          PaymentMethodCard,
		"bank_transfer": PaymentMethodBankTransfer,
		"mobile_money":  PaymentMethodMobileMoney,
		"cheque":        PaymentMethodCheque,
	}
	v, ok := paymentMethods[str]
	if !ok {
		return errors.New("invalid payment method")
	}
	*t = v
	return nil
}

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusCredit  PaymentStatus = "credit"
)

func (t PaymentStatus) IsValid() bool {
	switch t {
	case PaymentStatusPaid, PaymentStatusPartial, PaymentStatusCredit:
		return true
	}
	return false
}

func (t *PaymentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("payment status must be string")
	}
	switch str {
	case "paid":
		*t = PaymentStatusPaid
	case "partial":
		*t = PaymentStatusPartial
	case "credit":
		*t = PaymentStatusCredit
	default:
		return errors.New("invalid payment status")
	}
	return nil
}

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleManager  UserRole = "manager"
	UserRoleOperator UserRole = "operator"
)

func (t UserRole) IsValid() bool {
	switch t {
	case UserRoleAdmin, UserRoleManager, UserRoleOperator:
		return true
	}
	return false
}

func (t *UserRole) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("user role must be string")
	}
	switch str {
	case "admin":
		*t = UserRoleAdmin
	case "manager":
		*t = UserRoleManager
	case "operator":
		*t = UserRoleOperator
	default:
		return errors.New("invalid user role")
	}
	return nil
}

type PaymentTerms string

const (
	PaymentTermsNet15             PaymentTerms = "Net15"
	PaymentTermsNet30             PaymentTerms = "Net30"
	PaymentTermsNet45             PaymentTerms = "Net45"
	PaymentTermsNet60             PaymentTerms = "Net60"
	PaymentTermsDueEndOfMonth     PaymentTerms = "DueMonthEnd"
	PaymentTermsDueEndOfNextMonth PaymentTerms = "DueNextMonthEnd"
	PaymentTermsDueOnReceipt      PaymentTerms = "DueOnReceipt"
	PaymentTermsCustom            PaymentTerms = "Custom"
)

func (t *PaymentTerms) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("payment terms must be string")
	}
	paymentTerms := map[string]PaymentTerms{
		"Net15":           PaymentTermsNet15,
		"Net30":           PaymentTermsNet30,
		"Net45":           PaymentTermsNet45,
		"Net60":           PaymentTermsNet60,
		"DueMonthEnd":     PaymentTermsDueEndOfMonth,
		"DueNextMonthEnd": PaymentTermsDueEndOfNextMonth,
		"DueOnReceipt":    PaymentTermsDueOnReceipt,
		"Custom":          PaymentTermsCustom,
	}
	v, ok := paymentTerms[str]
	if !ok {
		return errors.New("invalid payment terms")
	}
	*t = v
	return nil
}

const dateStringLayout = "2006-01-02T15:04:05"

type MyDateString time.Time

func (t MyDateString) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(dateStringLayout))
}

// Parse the string into time.Time object
func (t *MyDateString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("MyDateString must be string")
	}

	localTime, err := time.Parse(dateStringLayout, str)
	if err != nil {
		// date-only inputs are common for due dates
		localTime, err = time.Parse("2006-01-02", str)
		if err != nil {
			return errors.New("error parsing datetime")
		}
	}
	*t = MyDateString(localTime)

	return nil
}

func (t *MyDateString) StartOfDayUTCTime(timezone string) error {
	// do nothing if the pointer is nil
	if t == nil {
		return nil
	}

	localTime := time.Time(*t)

	location, err := loadLocationOrDefault(timezone)
	if err != nil {
		return err
	}

	// Convert the start of the day local time to the specified timezone
	localTimeInZone := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		0, 0, 0, 0,
		location,
	)

	*t = MyDateString(localTimeInZone.In(time.UTC))

	return nil
}

func (t *MyDateString) EndOfDayUTCTime(timezone string) error {
	// do nothing if the pointer is nil
	if t == nil {
		return nil
	}

	localTime := time.Time(*t)

	location, err := loadLocationOrDefault(timezone)
	if err != nil {
		return err
	}

	// Convert the end of the day local time to the specified timezone
	localTimeInZone := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		23, 59, 59, 999,
		location,
	)

	*t = MyDateString(localTimeInZone.In(time.UTC))

	return nil
}

func (t *MyDateString) UTCTime(timezone string) error {
	// do nothing if the pointer is nil
	if t == nil {
		return nil
	}

	localTime := time.Time(*t)

	location, err := loadLocationOrDefault(timezone)
	if err != nil {
		return err
	}

	localTimeInZone := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		localTime.Hour(), localTime.Minute(), localTime.Second(), localTime.Nanosecond(),
		location,
	)

	*t = MyDateString(localTimeInZone.In(time.UTC))

	return nil
}

func loadLocationOrDefault(timezone string) (*time.Location, error) {
	if timezone == "" {
		timezone = "Asia/Yangon"
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		fmt.Println("Error loading location:", err)
		return nil, err
	}
	return location, nil
}

// Value implements the driver.Valuer interface
func (t MyDateString) Value() (driver.Value, error) {
	return time.Time(t), nil
}

// Scan implements the sql.Scanner interface
func (t *MyDateString) Scan(value interface{}) error {
	if value == nil {
		*t = MyDateString(time.Time{})
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		*t = MyDateString(v)
	default:
		return fmt.Errorf("cannot convert %T to MyDateString", value)
	}
	return nil
}

func (t *MyDateString) SetDefaultNowIfNil() *MyDateString {
	if t == nil {
		now := MyDateString(time.Now())
		return &now
	}
	return t
}
