package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord is a quantity of a part held at a location. The engine
// deducts from, adds to, and creates records; it never deletes them.
type StockRecord struct {
	ID         int64
	PartID     int64
	Quantity   decimal.Decimal
	LocationID int64 // 0 when the record has no location
}

// StockLocation is a physical storage location.
type StockLocation struct {
	ID   int64
	Name string
}

// RunRecord is the audit entry persisted after a committed execution.
type RunRecord struct {
	ID           string
	ProcessID    string
	ProcessName  string
	OutputPartID int64
	N            int
	Note         string
	RanAt        time.Time
}
