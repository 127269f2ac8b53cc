package models

import (
	"log"

	"bitbucket.org/mmdatafocus/fuelstation_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Station{}, &User{},
		&TransactionNumberSeries{}, &TransactionNumberSeriesModule{},
		&FuelProduct{}, &Tank{},
		&Customer{}, &Supplier{},
		&StockMovement{},
		&Payment{},
		&SaleTransaction{}, &PurchaseTransaction{},
		&Attachment{},
		&History{},
		&IdempotencyKey{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
