package workflow

import (
	"context"
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
)

func TestMaterialAuditDifference(t *testing.T) {
	cases := []struct {
		name          string
		bookStock     string
		physicalCount string
		wantDiff      string
		wantMaterial  bool
	}{
		{"exact match", "500", "500", "0", false},
		{"below epsilon", "500", "500.005", "0.005", false},
		{"just below epsilon", "500", "500.009", "0.009", false},
		{"at epsilon", "500", "500.01", "0.01", true},
		{"above epsilon", "500", "510", "10", true},
		{"shrinkage at epsilon", "500", "499.99", "-0.01", true},
		{"shrinkage below epsilon", "500", "499.995", "-0.005", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			diff, material := materialAuditDifference(dec(tc.bookStock), dec(tc.physicalCount))
			if !diff.Equal(dec(tc.wantDiff)) {
				t.Fatalf("difference = %s, want %s", diff, tc.wantDiff)
			}
			if material != tc.wantMaterial {
				t.Fatalf("material = %v, want %v", material, tc.wantMaterial)
			}
		})
	}
}

func stationCtx() context.Context {
	return utils.SetStationIdInContext(context.Background(), "station-1")
}

// These reject before touching the database, so no store is needed.
func TestTransferStock_InputRejections(t *testing.T) {
	logger := config.GetLogger()

	if _, err := TransferStock(context.Background(), logger, models.NewStockTransfer{
		SourceTankId: 1, DestinationTankId: 2, Quantity: dec("10"),
	}, ""); err == nil {
		t.Fatal("expected error without station in context")
	}

	if _, err := TransferStock(stationCtx(), logger, models.NewStockTransfer{
		SourceTankId: 1, DestinationTankId: 1, Quantity: dec("10"),
	}, ""); !errors.Is(err, utils.ErrInvalidArgument) {
		t.Fatalf("same-tank transfer: got %v, want ErrInvalidArgument", err)
	}

	for _, quantity := range []string{"0", "-5"} {
		if _, err := TransferStock(stationCtx(), logger, models.NewStockTransfer{
			SourceTankId: 1, DestinationTankId: 2, Quantity: dec(quantity),
		}, ""); !errors.Is(err, utils.ErrInvalidArgument) {
			t.Fatalf("quantity %s: got %v, want ErrInvalidArgument", quantity, err)
		}
	}
}

func TestRunStockAudit_InputRejections(t *testing.T) {
	logger := config.GetLogger()

	if _, err := RunStockAudit(stationCtx(), logger, models.NewStockAudit{}, ""); !errors.Is(err, utils.ErrInvalidArgument) {
		t.Fatalf("empty counts: got %v, want ErrInvalidArgument", err)
	}

	if _, err := RunStockAudit(stationCtx(), logger, models.NewStockAudit{
		Counts: []models.StockAuditCount{
			{TankId: 3, PhysicalCount: dec("100")},
			{TankId: 3, PhysicalCount: dec("101")},
		},
	}, ""); !errors.Is(err, utils.ErrInvalidArgument) {
		t.Fatalf("duplicate tank: got %v, want ErrInvalidArgument", err)
	}
}
