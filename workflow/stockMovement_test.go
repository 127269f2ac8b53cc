package workflow

import (
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeNewStock_DeltaRules(t *testing.T) {
	cases := []struct {
		name         string
		movementType models.MovementType
		previous     string
		quantity     string
		want         string
	}{
		{"in adds", models.MovementTypeIn, "100", "25.5", "125.5"},
		{"in uses absolute quantity", models.MovementTypeIn, "100", "-25.5", "125.5"},
		{"out subtracts", models.MovementTypeOut, "100", "40", "60"},
		{"out clamps at zero", models.MovementTypeOut, "10", "40", "0"},
		{"transfer subtracts like out", models.MovementTypeTransfer, "100", "100", "0"},
		{"adjustment positive", models.MovementTypeAdjustment, "50", "7.25", "57.25"},
		{"adjustment negative", models.MovementTypeAdjustment, "50", "-7.25", "42.75"},
		{"adjustment clamps at zero", models.MovementTypeAdjustment, "5", "-10", "0"},
		{"audit sets absolute count", models.MovementTypeAudit, "999", "123.45", "123.45"},
		{"audit to empty", models.MovementTypeAudit, "50", "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := computeNewStock(tc.movementType, dec(tc.previous), dec(tc.quantity))
			if !got.Equal(dec(tc.want)) {
				t.Fatalf("computeNewStock(%s, %s, %s) = %s, want %s",
					tc.movementType, tc.previous, tc.quantity, got, tc.want)
			}
		})
	}
}

func TestValidateMovementQuantity(t *testing.T) {
	cases := []struct {
		name         string
		movementType models.MovementType
		quantity     string
		wantErr      bool
	}{
		{"in positive ok", models.MovementTypeIn, "1", false},
		{"in zero rejected", models.MovementTypeIn, "0", true},
		{"in negative rejected", models.MovementTypeIn, "-1", true},
		{"out positive ok", models.MovementTypeOut, "0.01", false},
		{"out zero rejected", models.MovementTypeOut, "0", true},
		{"transfer negative rejected", models.MovementTypeTransfer, "-5", true},
		{"adjustment negative ok", models.MovementTypeAdjustment, "-5", false},
		{"adjustment zero rejected", models.MovementTypeAdjustment, "0", true},
		{"audit zero ok", models.MovementTypeAudit, "0", false},
		{"audit negative rejected", models.MovementTypeAudit, "-0.01", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateMovementQuantity(tc.movementType, dec(tc.quantity))
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

func TestDefaultReferenceType(t *testing.T) {
	cases := map[models.MovementType]models.MovementReferenceType{
		models.MovementTypeIn:         models.MovementReferenceTypeManual,
		models.MovementTypeOut:        models.MovementReferenceTypeManual,
		models.MovementTypeAdjustment: models.MovementReferenceTypeAdjustment,
		models.MovementTypeTransfer:   models.MovementReferenceTypeTransfer,
		models.MovementTypeAudit:      models.MovementReferenceTypeAudit,
	}
	for movementType, want := range cases {
		if got := defaultReferenceType(movementType); got != want {
			t.Errorf("defaultReferenceType(%s) = %s, want %s", movementType, got, want)
		}
	}
}
