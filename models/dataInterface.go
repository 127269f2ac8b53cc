package models

type Identifier interface {
	GetId() int
}

// key
func (f FuelProduct) GetId() int {
	return f.ID
}

func (t Tank) GetId() int {
	return t.ID
}

func (c Customer) GetId() int {
	return c.ID
}

func (s Supplier) GetId() int {
	return s.ID
}

func (m StockMovement) GetId() int {
	return m.ID
}

func (p Payment) GetId() int {
	return p.ID
}

func (s SaleTransaction) GetId() int {
	return s.ID
}

func (p PurchaseTransaction) GetId() int {
	return p.ID
}

func (u User) GetId() int {
	return u.ID
}
