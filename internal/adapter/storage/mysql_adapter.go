package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mkessler/process-engine/internal/core/domain"
	"github.com/mkessler/process-engine/internal/port"
)

// ErrStockConflict means a guarded deduction matched no row: the record
// lost the required quantity between selection and update. The runner
// locks rows first, so hitting this means the transaction must abort.
var ErrStockConflict = errors.New("stock quantity conflict")

const (
	historyRemove = "remove"
	historyAdd    = "add"
)

// MySQLAdapter backs both the catalog gateway (parts, bom_items) and
// the stock gateway (stock_items, stock_locations, stock_history,
// process_runs).
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

type mysqlTx struct {
	tx *sql.Tx
}

func (t *mysqlTx) Commit() error   { return t.tx.Commit() }
func (t *mysqlTx) Rollback() error { return t.tx.Rollback() }

func sqlTx(tx port.StockTx) (*sql.Tx, error) {
	mt, ok := tx.(*mysqlTx)
	if !ok {
		return nil, fmt.Errorf("unexpected transaction type %T", tx)
	}
	return mt.tx, nil
}

func (m *MySQLAdapter) GetPart(ctx context.Context, id int64) (*domain.Part, error) {
	var part domain.Part
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name FROM parts WHERE id = ?`, id,
	).Scan(&part.ID, &part.Name)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query part: %w", err)
	}
	return &part, nil
}

// ListBOM returns BOM lines ordered by their declaration order (row id).
func (m *MySQLAdapter) ListBOM(ctx context.Context, outputPartID int64) ([]domain.BOMLine, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT b.sub_part_id, p.name, b.quantity, COALESCE(b.reference, '')
		FROM bom_items b
		JOIN parts p ON p.id = b.sub_part_id
		WHERE b.part_id = ?
		ORDER BY b.id`, outputPartID)
	if err != nil {
		return nil, fmt.Errorf("query bom: %w", err)
	}
	defer rows.Close()

	var lines []domain.BOMLine
	for rows.Next() {
		var line domain.BOMLine
		if err := rows.Scan(&line.PartID, &line.PartName, &line.Quantity, &line.Reference); err != nil {
			return nil, fmt.Errorf("scan bom line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bom: %w", err)
	}
	return lines, nil
}

func (m *MySQLAdapter) Begin(ctx context.Context) (port.StockTx, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &mysqlTx{tx: tx}, nil
}

// ListForItemLocked locks every stock row of the part until the
// transaction ends, so concurrent executions serialize per part.
func (m *MySQLAdapter) ListForItemLocked(ctx context.Context, tx port.StockTx, partID int64) ([]domain.StockRecord, error) {
	t, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	rows, err := t.QueryContext(ctx, `
		SELECT id, part_id, COALESCE(location_id, 0), quantity
		FROM stock_items
		WHERE part_id = ?
		ORDER BY id
		FOR UPDATE`, partID)
	if err != nil {
		return nil, fmt.Errorf("query stock items: %w", err)
	}
	defer rows.Close()

	var records []domain.StockRecord
	for rows.Next() {
		var rec domain.StockRecord
		if err := rows.Scan(&rec.ID, &rec.PartID, &rec.LocationID, &rec.Quantity); err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock items: %w", err)
	}
	return records, nil
}

func (m *MySQLAdapter) Deduct(ctx context.Context, tx port.StockTx, recordID int64, qty decimal.Decimal, note string) error {
	t, err := sqlTx(tx)
	if err != nil {
		return err
	}

	result, err := t.ExecContext(ctx, `
		UPDATE stock_items
		SET quantity = quantity - ?, updated_at = NOW()
		WHERE id = ? AND quantity >= ?`,
		qty, recordID, qty,
	)
	if err != nil {
		return fmt.Errorf("deduct stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrStockConflict
	}

	return m.insertHistory(ctx, t, recordID, historyRemove, qty, note)
}

func (m *MySQLAdapter) Add(ctx context.Context, tx port.StockTx, recordID int64, qty decimal.Decimal, note string) error {
	t, err := sqlTx(tx)
	if err != nil {
		return err
	}

	_, err = t.ExecContext(ctx, `
		UPDATE stock_items
		SET quantity = quantity + ?, updated_at = NOW()
		WHERE id = ?`,
		qty, recordID,
	)
	if err != nil {
		return fmt.Errorf("add stock: %w", err)
	}

	return m.insertHistory(ctx, t, recordID, historyAdd, qty, note)
}

func (m *MySQLAdapter) CreateRecord(ctx context.Context, tx port.StockTx, partID, locationID int64) (*domain.StockRecord, error) {
	t, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	result, err := t.ExecContext(ctx, `
		INSERT INTO stock_items (part_id, location_id, quantity, created_at, updated_at)
		VALUES (?, ?, 0, NOW(), NOW())`,
		partID, locationID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert stock item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("stock item id: %w", err)
	}

	return &domain.StockRecord{
		ID:         id,
		PartID:     partID,
		Quantity:   decimal.Zero,
		LocationID: locationID,
	}, nil
}

func (m *MySQLAdapter) GetLocation(ctx context.Context, tx port.StockTx, locationID int64) (*domain.StockLocation, error) {
	t, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	var loc domain.StockLocation
	err = t.QueryRowContext(ctx, `
		SELECT id, name FROM stock_locations WHERE id = ?`, locationID,
	).Scan(&loc.ID, &loc.Name)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query location: %w", err)
	}
	return &loc, nil
}

func (m *MySQLAdapter) RecordRun(ctx context.Context, rec domain.RunRecord) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO process_runs (id, process_id, process_name, output_part_id, n, note, ran_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ProcessID, rec.ProcessName, rec.OutputPartID, rec.N, rec.Note, rec.RanAt,
	)
	if err != nil {
		return fmt.Errorf("insert process run: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) insertHistory(ctx context.Context, t *sql.Tx, recordID int64, changeType string, qty decimal.Decimal, note string) error {
	_, err := t.ExecContext(ctx, `
		INSERT INTO stock_history (stock_item_id, change_type, quantity, note, created_at)
		VALUES (?, ?, ?, ?, NOW())`,
		recordID, changeType, qty, note,
	)
	if err != nil {
		return fmt.Errorf("insert stock history: %w", err)
	}
	return nil
}
