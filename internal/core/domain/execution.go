package domain

import "github.com/shopspring/decimal"

// WarningCreatedNewStockItem signals that production had to create a new
// stock record, so a physical label is still missing downstream.
const WarningCreatedNewStockItem = "created_new_stockitem"

// ExecutionRequest asks for one atomic application of a process at
// multiplier N.
type ExecutionRequest struct {
	ProcessID string
	N         int
	Note      string
}

// StockMovement is one deduction from or addition to a stock record.
type StockMovement struct {
	PartID        int64           `json:"part_id"`
	StockRecordID int64           `json:"stock_item_id"`
	Quantity      decimal.Decimal `json:"qty"`
}

// ExecutionResult reports what a committed execution consumed and produced.
// Consumed preserves BOM declaration order.
type ExecutionResult struct {
	Consumed []StockMovement `json:"consumed"`
	Produced StockMovement   `json:"produced"`
	Warnings []string        `json:"warnings"`
}

// BarcodeMatch is the resolution of a scanned process barcode.
type BarcodeMatch struct {
	ProcessID      string `json:"process_id"`
	ProcessName    string `json:"process_name"`
	OutputPartID   int64  `json:"output_part_id"`
	OutputPartName string `json:"output_part_name"`
	RunURL         string `json:"run_url"`
}
