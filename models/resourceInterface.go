package models

func (a Attachment) GetStationId() string {
	return a.StationId
}

func (c Customer) GetStationId() string {
	return c.StationId
}

func (f FuelProduct) GetStationId() string {
	return f.StationId
}

func (h History) GetStationId() string {
	return h.StationId
}

func (p Payment) GetStationId() string {
	return p.StationId
}

func (p PurchaseTransaction) GetStationId() string {
	return p.StationId
}

func (s SaleTransaction) GetStationId() string {
	return s.StationId
}

func (m StockMovement) GetStationId() string {
	return m.StationId
}

func (s Supplier) GetStationId() string {
	return s.StationId
}

func (t Tank) GetStationId() string {
	return t.StationId
}

func (t TransactionNumberSeries) GetStationId() string {
	return t.StationId
}

func (u User) GetStationId() string {
	return u.StationId
}
