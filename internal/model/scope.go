package model

// LocationRef / DepartmentRef implementations used by the scope filters.

func (e LedgerEntry) LocationRef() string { return e.LocationID }

func (r AuditRecord) LocationRef() string { return r.LocationID }

func (m StockMovement) LocationRef() string   { return m.LocationID }
func (m StockMovement) DepartmentRef() string { return m.DepartmentID }

func (r Requisition) LocationRef() string   { return r.LocationID }
func (r Requisition) DepartmentRef() string { return r.DepartmentID }

func (o PurchaseOrder) LocationRef() string { return o.LocationID }

func (g GoodsReceipt) LocationRef() string { return g.LocationID }

func (v VendorInvoice) LocationRef() string { return v.LocationID }

func (p PaymentRequest) LocationRef() string { return p.LocationID }

func (e Expense) LocationRef() string { return e.LocationID }

func (s Sale) LocationRef() string { return s.LocationID }
