package models

import (
	"fmt"

	"gorm.io/gorm"
)

// History rows ride the same transaction as the change via these hooks.
// Ledger documents are append-only, so they hook AfterCreate only; master
// data also records updates. Column updates done with UpdateColumn(s) skip
// hooks on purpose (tank stock, outstanding balances), their history is the
// ledger row itself.

func (m *StockMovement) AfterCreate(tx *gorm.DB) (err error) {
	description := fmt.Sprintf("Created StockMovement %s (%s)", m.MovementNumber, m.MovementType)
	return SaveHistoryCreate(tx, m.ID, m, description)
}

func (p *Payment) AfterCreate(tx *gorm.DB) (err error) {
	description := fmt.Sprintf("Created Payment %s (%s %s)", p.PaymentNumber, p.Amount, p.CurrencyCode)
	return SaveHistoryCreate(tx, p.ID, p, description)
}

func (s *SaleTransaction) AfterCreate(tx *gorm.DB) (err error) {
	description := fmt.Sprintf("Created SaleTransaction %s", s.SaleNumber)
	return SaveHistoryCreate(tx, s.ID, s, description)
}

func (p *PurchaseTransaction) AfterCreate(tx *gorm.DB) (err error) {
	description := fmt.Sprintf("Created PurchaseTransaction %s", p.PurchaseNumber)
	return SaveHistoryCreate(tx, p.ID, p, description)
}

func (c *Customer) AfterCreate(tx *gorm.DB) (err error) {
	return SaveHistoryCreate(tx, c.ID, c, "Created Customer")
}

func (c *Customer) BeforeUpdate(tx *gorm.DB) (err error) {
	return SaveHistoryUpdate(tx, c.ID, c, "Updated Customer")
}

func (s *Supplier) AfterCreate(tx *gorm.DB) (err error) {
	return SaveHistoryCreate(tx, s.ID, s, "Created Supplier")
}

func (s *Supplier) BeforeUpdate(tx *gorm.DB) (err error) {
	return SaveHistoryUpdate(tx, s.ID, s, "Updated Supplier")
}

func (f *FuelProduct) AfterCreate(tx *gorm.DB) (err error) {
	return SaveHistoryCreate(tx, f.ID, f, "Created FuelProduct")
}

func (f *FuelProduct) BeforeUpdate(tx *gorm.DB) (err error) {
	return SaveHistoryUpdate(tx, f.ID, f, "Updated FuelProduct")
}

func (t *Tank) AfterCreate(tx *gorm.DB) (err error) {
	return SaveHistoryCreate(tx, t.ID, t, "Created Tank")
}

func (t *Tank) BeforeUpdate(tx *gorm.DB) (err error) {
	return SaveHistoryUpdate(tx, t.ID, t, "Updated Tank")
}

func (a *Attachment) AfterCreate(tx *gorm.DB) (err error) {
	return SaveHistoryCreate(tx, a.ID, a, "Created Attachment "+a.FileName)
}

func (a *Attachment) AfterDelete(tx *gorm.DB) (err error) {
	return SaveHistoryDelete(tx, a.ID, a, "Deleted Attachment "+a.FileName)
}
