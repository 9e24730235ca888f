package domain

import "github.com/shopspring/decimal"

// Part is a catalog item. Owned by the catalog; read-only here.
type Part struct {
	ID   int64
	Name string
}

// BOMLine declares how many units of a component part are required
// per one unit of the output part.
type BOMLine struct {
	PartID    int64           `json:"part_id"`
	PartName  string          `json:"part_name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reference string          `json:"reference,omitempty"`
}
