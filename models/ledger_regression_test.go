package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
	"bitbucket.org/mmdatafocus/fuelstation_backend/models"
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
	"bitbucket.org/mmdatafocus/fuelstation_backend/workflow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// End-to-end ledger regression: purchase in, sale out, transfer between
// tanks, audit correction and payment settlement must all leave the tank
// stocks and counterparty balances exactly where the movement ledger says
// they should be.
func TestLedger_EndToEnd(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()
	logger := logrus.New()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "fuelstation_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")
	ctx = utils.SetUsernameInContext(ctx, "test@local")

	station, err := models.CreateStation(ctx, &models.NewStation{Name: "Test Station"})
	if err != nil {
		t.Fatalf("create station: %v", err)
	}
	ctx = utils.SetStationIdInContext(ctx, station.ID)

	product, err := models.CreateFuelProduct(ctx, &models.NewFuelProduct{
		Name: "Diesel", Code: "DSL",
		SalePrice: dec(t, "2"), PurchasePrice: dec(t, "1.5"),
	})
	if err != nil {
		t.Fatalf("create fuel product: %v", err)
	}

	tank1, err := models.CreateTank(ctx, &models.NewTank{
		FuelProductId: product.ID, Name: "Tank 1", Code: "T1",
		Capacity: dec(t, "10000"), MinimumLevel: dec(t, "500"),
	})
	if err != nil {
		t.Fatalf("create tank 1: %v", err)
	}
	tank2, err := models.CreateTank(ctx, &models.NewTank{
		FuelProductId: product.ID, Name: "Tank 2", Code: "T2",
		Capacity: dec(t, "2000"),
	})
	if err != nil {
		t.Fatalf("create tank 2: %v", err)
	}

	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{
		Name: "Fleet Co", PaymentTerms: models.PaymentTermsNet30,
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{
		Name: "Refinery Ltd", PaymentTerms: models.PaymentTermsNet30,
	})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}

	due := models.MyDateString(time.Now().AddDate(0, 0, 30))

	// Delivery: 5000 @ 1.5 = 7500, 4000 paid up front.
	purchase, err := workflow.PostPurchase(ctx, logger, models.NewPurchaseTransaction{
		SupplierId: supplier.ID, TankId: tank1.ID,
		Quantity: dec(t, "5000"), UnitCost: dec(t, "1.5"),
		PaidAmount: dec(t, "4000"), DueDate: &due,
	}, "itest-purchase-1")
	if err != nil {
		t.Fatalf("post purchase: %v", err)
	}
	if purchase.PaymentStatus != models.PaymentStatusPartial {
		t.Fatalf("purchase status = %s, want partial", purchase.PaymentStatus)
	}
	assertTankStock(t, ctx, tank1.ID, "5000")
	assertSupplierOutstanding(t, ctx, supplier.ID, "3500")

	// Credit sale: 1200 @ 2 = 2400, 1000 paid.
	sale, err := workflow.PostSale(ctx, logger, models.NewSaleTransaction{
		TankId: tank1.ID, CustomerId: &customer.ID,
		Quantity: dec(t, "1200"), UnitPrice: dec(t, "2"),
		PaidAmount: dec(t, "1000"), DueDate: &due,
	}, "itest-sale-1")
	if err != nil {
		t.Fatalf("post sale: %v", err)
	}
	if sale.PaymentStatus != models.PaymentStatusPartial {
		t.Fatalf("sale status = %s, want partial", sale.PaymentStatus)
	}
	assertTankStock(t, ctx, tank1.ID, "3800")
	assertCustomerOutstanding(t, ctx, customer.ID, "1400")

	// Transfer between tanks: both legs share a reference.
	transfer, err := workflow.TransferStock(ctx, logger, models.NewStockTransfer{
		SourceTankId: tank1.ID, DestinationTankId: tank2.ID,
		Quantity: dec(t, "500"),
	}, "itest-transfer-1")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if transfer.SourceMovement.ReferenceId == nil || transfer.DestinationMovement.ReferenceId == nil ||
		*transfer.SourceMovement.ReferenceId != *transfer.DestinationMovement.ReferenceId {
		t.Fatal("transfer legs do not share a reference id")
	}
	assertTankStock(t, ctx, tank1.ID, "3300")
	assertTankStock(t, ctx, tank2.ID, "500")

	// Over-draining transfer must fail atomically: neither tank changes.
	_, err = workflow.TransferStock(ctx, logger, models.NewStockTransfer{
		SourceTankId: tank1.ID, DestinationTankId: tank2.ID,
		Quantity: dec(t, "100000"),
	}, "itest-transfer-2")
	if !errors.Is(err, utils.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	assertTankStock(t, ctx, tank1.ID, "3300")
	assertTankStock(t, ctx, tank2.ID, "500")

	// Capacity guard on the destination.
	_, err = workflow.TransferStock(ctx, logger, models.NewStockTransfer{
		SourceTankId: tank1.ID, DestinationTankId: tank2.ID,
		Quantity: dec(t, "1600"),
	}, "itest-transfer-3")
	if !errors.Is(err, utils.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	// Audit: tank1 physically 3290 (10 short), tank2 within materiality.
	audit, err := workflow.RunStockAudit(ctx, logger, models.NewStockAudit{
		Counts: []models.StockAuditCount{
			{TankId: tank1.ID, PhysicalCount: dec(t, "3290")},
			{TankId: tank2.ID, PhysicalCount: dec(t, "500.005")},
		},
	}, "itest-audit-1")
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(audit.Adjusted) != 1 || audit.Adjusted[0].TankId != tank1.ID {
		t.Fatalf("audit adjusted = %+v, want only tank %d", audit.Adjusted, tank1.ID)
	}
	if len(audit.Skipped) != 1 || audit.Skipped[0] != tank2.ID {
		t.Fatalf("audit skipped = %v, want only tank %d", audit.Skipped, tank2.ID)
	}
	assertTankStock(t, ctx, tank1.ID, "3290")
	assertTankStock(t, ctx, tank2.ID, "500")

	// Settle the customer balance in full.
	payment, err := workflow.RecordPayment(ctx, logger, models.NewPayment{
		PaymentType: models.PaymentTypeReceivable, CustomerId: &customer.ID,
		Amount: dec(t, "1400"), PaymentMethod: models.PaymentMethodCash,
	}, "itest-payment-1")
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if !strings.HasPrefix(payment.PaymentNumber, "PAY-") {
		t.Fatalf("payment number %q lacks PAY- prefix", payment.PaymentNumber)
	}
	assertCustomerOutstanding(t, ctx, customer.ID, "0")

	// Same idempotency key resubmitted: rejected, balance untouched.
	_, err = workflow.RecordPayment(ctx, logger, models.NewPayment{
		PaymentType: models.PaymentTypeReceivable, CustomerId: &customer.ID,
		Amount: dec(t, "1400"), PaymentMethod: models.PaymentMethodCash,
	}, "itest-payment-1")
	if !errors.Is(err, utils.ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}
	assertCustomerOutstanding(t, ctx, customer.ID, "0")

	// The movement ledger holds every leg: purchase in, sale out,
	// two transfer legs, one audit adjustment.
	var movementCount int64
	if err := config.GetDB().WithContext(ctx).Model(&models.StockMovement{}).
		Where("station_id = ?", station.ID).Count(&movementCount).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if movementCount != 5 {
		t.Fatalf("movement count = %d, want 5", movementCount)
	}
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func assertTankStock(t *testing.T, ctx context.Context, tankId int, want string) {
	t.Helper()
	var tank models.Tank
	if err := config.GetDB().WithContext(ctx).Where("id = ?", tankId).Take(&tank).Error; err != nil {
		t.Fatalf("load tank %d: %v", tankId, err)
	}
	if !tank.CurrentStock.Equal(dec(t, want)) {
		t.Fatalf("tank %d stock = %s, want %s", tankId, tank.CurrentStock, want)
	}
}

func assertCustomerOutstanding(t *testing.T, ctx context.Context, customerId int, want string) {
	t.Helper()
	var customer models.Customer
	if err := config.GetDB().WithContext(ctx).Where("id = ?", customerId).Take(&customer).Error; err != nil {
		t.Fatalf("load customer %d: %v", customerId, err)
	}
	if !customer.OutstandingAmount.Equal(dec(t, want)) {
		t.Fatalf("customer %d outstanding = %s, want %s", customerId, customer.OutstandingAmount, want)
	}
}

func assertSupplierOutstanding(t *testing.T, ctx context.Context, supplierId int, want string) {
	t.Helper()
	var supplier models.Supplier
	if err := config.GetDB().WithContext(ctx).Where("id = ?", supplierId).Take(&supplier).Error; err != nil {
		t.Fatalf("load supplier %d: %v", supplierId, err)
	}
	if !supplier.OutstandingAmount.Equal(dec(t, want)) {
		t.Fatalf("supplier %d outstanding = %s, want %s", supplierId, supplier.OutstandingAmount, want)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("fuelstation-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("fuelstation-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=fuelstation_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
