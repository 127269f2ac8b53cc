package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
)

func TestFormatTransactionNumber(t *testing.T) {
	cases := []struct {
		prefix string
		seqNo  int64
		want   string
	}{
		{"MV-", 1, "MV-000001"},
		{"PAY-", 42, "PAY-000042"},
		{"SL-", 999999, "SL-999999"},
		{"PUR-", 1234567, "PUR-1234567"},
	}
	for _, tc := range cases {
		if got := models.FormatTransactionNumber(tc.prefix, tc.seqNo); got != tc.want {
			t.Errorf("FormatTransactionNumber(%q, %d) = %q, want %q", tc.prefix, tc.seqNo, got, tc.want)
		}
	}
}

func TestCalculateDueDate(t *testing.T) {
	base := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		terms models.PaymentTerms
		days  int
		want  time.Time
	}{
		{"due on receipt", models.PaymentTermsDueOnReceipt, 0, base},
		{"net 15", models.PaymentTermsNet15, 0, base.AddDate(0, 0, 15)},
		{"net 30", models.PaymentTermsNet30, 0, base.AddDate(0, 0, 30)},
		{"end of month", models.PaymentTermsDueEndOfMonth, 0, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"end of next month", models.PaymentTermsDueEndOfNextMonth, 0, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"custom days", models.PaymentTermsCustom, 7, base.AddDate(0, 0, 7)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := models.CalculateDueDate(base, tc.terms, tc.days)
			if got == nil {
				t.Fatal("got nil due date")
			}
			if !got.Equal(tc.want) {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestMyDateString_UnmarshalJSON(t *testing.T) {
	var d models.MyDateString
	if err := json.Unmarshal([]byte(`"2026-03-05T14:30:00"`), &d); err != nil {
		t.Fatalf("datetime form: %v", err)
	}
	if got := time.Time(d); got.Day() != 5 || got.Hour() != 14 {
		t.Fatalf("datetime form parsed to %s", got)
	}

	if err := json.Unmarshal([]byte(`"2026-03-05"`), &d); err != nil {
		t.Fatalf("date-only form: %v", err)
	}
	if got := time.Time(d); got.Day() != 5 || got.Hour() != 0 {
		t.Fatalf("date-only form parsed to %s", got)
	}

	if err := json.Unmarshal([]byte(`"05/03/2026"`), &d); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
	if err := json.Unmarshal([]byte(`123`), &d); err == nil {
		t.Fatal("expected error for non-string input")
	}
}

func TestEnums_IsValid(t *testing.T) {
	for _, mt := range []models.MovementType{
		models.MovementTypeIn, models.MovementTypeOut,
		models.MovementTypeAdjustment, models.MovementTypeTransfer, models.MovementTypeAudit,
	} {
		if !mt.IsValid() {
			t.Errorf("movement type %q should be valid", mt)
		}
	}
	if models.MovementType("refill").IsValid() {
		t.Error("unknown movement type accepted")
	}

	if !models.PaymentStatusPartial.IsValid() {
		t.Error("partial payment status should be valid")
	}
	if models.PaymentStatus("overdue").IsValid() {
		t.Error("unknown payment status accepted")
	}

	if !models.PaymentMethodMobileMoney.IsValid() {
		t.Error("mobile money should be valid")
	}
	if models.PaymentType("refund").IsValid() {
		t.Error("unknown payment type accepted")
	}
}
