package workflow

import (
	"errors"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
)

func intPtr(n int) *int { return &n }

func datePtr(t time.Time) *models.MyDateString {
	d := models.MyDateString(t)
	return &d
}

func TestPaymentStatusFor(t *testing.T) {
	cases := []struct {
		total, paid string
		want        models.PaymentStatus
	}{
		{"100", "100", models.PaymentStatusPaid},
		{"100", "150", models.PaymentStatusPaid},
		{"100", "40", models.PaymentStatusPartial},
		{"100", "0", models.PaymentStatusCredit},
	}
	for _, tc := range cases {
		if got := paymentStatusFor(dec(tc.total), dec(tc.paid)); got != tc.want {
			t.Errorf("paymentStatusFor(%s, %s) = %s, want %s", tc.total, tc.paid, got, tc.want)
		}
	}
}

func TestValidateSaleInput(t *testing.T) {
	due := datePtr(time.Now().AddDate(0, 0, 30))

	cases := []struct {
		name    string
		input   models.NewSaleTransaction
		wantErr bool
	}{
		{
			"cash sale ok",
			models.NewSaleTransaction{TankId: 1, Quantity: dec("10"), UnitPrice: dec("2.5"), PaidAmount: dec("25")},
			false,
		},
		{
			"credit sale with customer and due date ok",
			models.NewSaleTransaction{TankId: 1, CustomerId: intPtr(7), Quantity: dec("10"), UnitPrice: dec("2.5"), PaidAmount: dec("10"), DueDate: due},
			false,
		},
		{
			"zero quantity rejected",
			models.NewSaleTransaction{TankId: 1, Quantity: dec("0"), UnitPrice: dec("2.5")},
			true,
		},
		{
			"zero unit price rejected",
			models.NewSaleTransaction{TankId: 1, Quantity: dec("10"), UnitPrice: dec("0")},
			true,
		},
		{
			"negative paid rejected",
			models.NewSaleTransaction{TankId: 1, Quantity: dec("10"), UnitPrice: dec("2.5"), PaidAmount: dec("-1")},
			true,
		},
		{
			"overpayment rejected",
			models.NewSaleTransaction{TankId: 1, Quantity: dec("10"), UnitPrice: dec("2.5"), PaidAmount: dec("26")},
			true,
		},
		{
			"credit sale without customer rejected",
			models.NewSaleTransaction{TankId: 1, Quantity: dec("10"), UnitPrice: dec("2.5"), PaidAmount: dec("10"), DueDate: due},
			true,
		},
		{
			"credit sale without due date rejected",
			models.NewSaleTransaction{TankId: 1, CustomerId: intPtr(7), Quantity: dec("10"), UnitPrice: dec("2.5"), PaidAmount: dec("10")},
			true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateSaleInput(tc.input)
			if tc.wantErr {
				if !errors.Is(err, utils.ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidatePurchaseInput(t *testing.T) {
	due := datePtr(time.Now().AddDate(0, 0, 30))

	cases := []struct {
		name    string
		input   models.NewPurchaseTransaction
		wantErr bool
	}{
		{
			"paid in full ok",
			models.NewPurchaseTransaction{SupplierId: 3, TankId: 1, Quantity: dec("1000"), UnitCost: dec("1.8"), PaidAmount: dec("1800")},
			false,
		},
		{
			"credit purchase with due date ok",
			models.NewPurchaseTransaction{SupplierId: 3, TankId: 1, Quantity: dec("1000"), UnitCost: dec("1.8"), PaidAmount: dec("800"), DueDate: due},
			false,
		},
		{
			"credit purchase without due date rejected",
			models.NewPurchaseTransaction{SupplierId: 3, TankId: 1, Quantity: dec("1000"), UnitCost: dec("1.8"), PaidAmount: dec("800")},
			true,
		},
		{
			"zero quantity rejected",
			models.NewPurchaseTransaction{SupplierId: 3, TankId: 1, Quantity: dec("0"), UnitCost: dec("1.8")},
			true,
		},
		{
			"overpayment rejected",
			models.NewPurchaseTransaction{SupplierId: 3, TankId: 1, Quantity: dec("1000"), UnitCost: dec("1.8"), PaidAmount: dec("1801")},
			true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePurchaseInput(tc.input)
			if tc.wantErr {
				if !errors.Is(err, utils.ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidatePaymentInput(t *testing.T) {
	cases := []struct {
		name    string
		input   models.NewPayment
		wantErr bool
	}{
		{
			"receivable with customer ok",
			models.NewPayment{PaymentType: models.PaymentTypeReceivable, CustomerId: intPtr(1), Amount: dec("50"), PaymentMethod: models.PaymentMethodCash},
			false,
		},
		{
			"payable with supplier ok",
			models.NewPayment{PaymentType: models.PaymentTypePayable, SupplierId: intPtr(1), Amount: dec("50"), PaymentMethod: models.PaymentMethodBankTransfer},
			false,
		},
		{
			"receivable without customer rejected",
			models.NewPayment{PaymentType: models.PaymentTypeReceivable, Amount: dec("50"), PaymentMethod: models.PaymentMethodCash},
			true,
		},
		{
			"receivable with supplier rejected",
			models.NewPayment{PaymentType: models.PaymentTypeReceivable, CustomerId: intPtr(1), SupplierId: intPtr(2), Amount: dec("50"), PaymentMethod: models.PaymentMethodCash},
			true,
		},
		{
			"payable without supplier rejected",
			models.NewPayment{PaymentType: models.PaymentTypePayable, Amount: dec("50"), PaymentMethod: models.PaymentMethodCash},
			true,
		},
		{
			"zero amount rejected",
			models.NewPayment{PaymentType: models.PaymentTypeReceivable, CustomerId: intPtr(1), Amount: dec("0"), PaymentMethod: models.PaymentMethodCash},
			true,
		},
		{
			"unknown payment type rejected",
			models.NewPayment{PaymentType: models.PaymentType("refund"), CustomerId: intPtr(1), Amount: dec("50"), PaymentMethod: models.PaymentMethodCash},
			true,
		},
		{
			"unknown payment method rejected",
			models.NewPayment{PaymentType: models.PaymentTypeReceivable, CustomerId: intPtr(1), Amount: dec("50"), PaymentMethod: models.PaymentMethod("crypto")},
			true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePaymentInput(tc.input)
			if tc.wantErr {
				if !errors.Is(err, utils.ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
