package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mkessler/process-engine/internal/core/domain"
)

// StockTx is one atomic unit of work against the stock ledger.
type StockTx interface {
	Commit() error
	Rollback() error
}

// StockGateway reads and mutates stock records. All mutations happen
// inside a StockTx; records selected within a transaction stay locked
// until it commits or rolls back, so two concurrent executions cannot
// both observe the same pre-deduction quantity.
type StockGateway interface {
	Begin(ctx context.Context) (StockTx, error)

	// ListForItemLocked returns all stock records for a part ordered by
	// id, locked for the remainder of the transaction.
	ListForItemLocked(ctx context.Context, tx StockTx, partID int64) ([]domain.StockRecord, error)

	// Deduct removes qty from a record and writes a history entry with
	// the audit note. Fails when the record no longer holds qty.
	Deduct(ctx context.Context, tx StockTx, recordID int64, qty decimal.Decimal, note string) error

	// Add increases a record's quantity and writes a history entry.
	Add(ctx context.Context, tx StockTx, recordID int64, qty decimal.Decimal, note string) error

	// CreateRecord creates a zero-quantity record for a part at a location.
	CreateRecord(ctx context.Context, tx StockTx, partID, locationID int64) (*domain.StockRecord, error)

	// GetLocation returns nil without error when the location does not exist.
	GetLocation(ctx context.Context, tx StockTx, locationID int64) (*domain.StockLocation, error)

	// RecordRun persists an execution audit entry. Runs outside any
	// stock transaction; failures do not undo a committed execution.
	RecordRun(ctx context.Context, rec domain.RunRecord) error
}
