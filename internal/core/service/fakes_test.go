package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mkessler/process-engine/internal/core/domain"
	"github.com/mkessler/process-engine/internal/port"
)

// Fake process store

type fakeStore struct {
	mu      sync.Mutex
	raw     []byte
	loadErr error
	saveErr error
}

func (f *fakeStore) Load(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.raw, nil
}

func (f *fakeStore) Save(ctx context.Context, raw []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.raw = raw
	return nil
}

// Fake catalog gateway

type fakeCatalog struct {
	parts map[int64]string
	boms  map[int64][]domain.BOMLine
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		parts: make(map[int64]string),
		boms:  make(map[int64][]domain.BOMLine),
	}
}

func (f *fakeCatalog) addPart(id int64, name string) {
	f.parts[id] = name
}

func (f *fakeCatalog) addBOMLine(outputPartID, subPartID int64, qty string) {
	f.boms[outputPartID] = append(f.boms[outputPartID], domain.BOMLine{
		PartID:   subPartID,
		PartName: f.parts[subPartID],
		Quantity: decimal.RequireFromString(qty),
	})
}

func (f *fakeCatalog) GetPart(ctx context.Context, id int64) (*domain.Part, error) {
	name, ok := f.parts[id]
	if !ok {
		return nil, nil
	}
	return &domain.Part{ID: id, Name: name}, nil
}

func (f *fakeCatalog) ListBOM(ctx context.Context, outputPartID int64) ([]domain.BOMLine, error) {
	return f.boms[outputPartID], nil
}

// Fake stock gateway. The transaction mutex is held from Begin until
// Commit or Rollback, reproducing row-lock serialization so the
// concurrency properties are testable without a database.

type fakeHistory struct {
	recordID int64
	change   string
	qty      decimal.Decimal
	note     string
}

type fakeStock struct {
	mu        sync.Mutex
	records   map[int64]*domain.StockRecord
	locations map[int64]string
	nextID    int64
	history   []fakeHistory

	runsMu sync.Mutex
	runs   []domain.RunRecord
}

func newFakeStock() *fakeStock {
	return &fakeStock{
		records:   make(map[int64]*domain.StockRecord),
		locations: make(map[int64]string),
		nextID:    1000,
	}
}

func (f *fakeStock) addRecord(id, partID int64, qty string, locationID int64) {
	f.records[id] = &domain.StockRecord{
		ID:         id,
		PartID:     partID,
		Quantity:   decimal.RequireFromString(qty),
		LocationID: locationID,
	}
}

func (f *fakeStock) addLocation(id int64, name string) {
	f.locations[id] = name
}

func (f *fakeStock) quantity(id int64) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[id].Quantity
}

type fakeTx struct {
	s       *fakeStock
	undo    []func()
	pending []fakeHistory
	done    bool
}

func (t *fakeTx) Commit() error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	t.done = true
	t.s.history = append(t.s.history, t.pending...)
	t.s.mu.Unlock()
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.s.mu.Unlock()
	return nil
}

func (f *fakeStock) Begin(ctx context.Context) (port.StockTx, error) {
	f.mu.Lock()
	return &fakeTx{s: f}, nil
}

func (f *fakeStock) ListForItemLocked(ctx context.Context, tx port.StockTx, partID int64) ([]domain.StockRecord, error) {
	var records []domain.StockRecord
	for _, rec := range f.records {
		if rec.PartID == partID {
			records = append(records, *rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (f *fakeStock) Deduct(ctx context.Context, tx port.StockTx, recordID int64, qty decimal.Decimal, note string) error {
	t := tx.(*fakeTx)
	rec, ok := f.records[recordID]
	if !ok {
		return fmt.Errorf("stock record %d not found", recordID)
	}
	if rec.Quantity.LessThan(qty) {
		return fmt.Errorf("stock quantity conflict on record %d", recordID)
	}
	prev := rec.Quantity
	rec.Quantity = rec.Quantity.Sub(qty)
	t.undo = append(t.undo, func() { rec.Quantity = prev })
	t.pending = append(t.pending, fakeHistory{recordID, "remove", qty, note})
	return nil
}

func (f *fakeStock) Add(ctx context.Context, tx port.StockTx, recordID int64, qty decimal.Decimal, note string) error {
	t := tx.(*fakeTx)
	rec, ok := f.records[recordID]
	if !ok {
		return fmt.Errorf("stock record %d not found", recordID)
	}
	prev := rec.Quantity
	rec.Quantity = rec.Quantity.Add(qty)
	t.undo = append(t.undo, func() { rec.Quantity = prev })
	t.pending = append(t.pending, fakeHistory{recordID, "add", qty, note})
	return nil
}

func (f *fakeStock) CreateRecord(ctx context.Context, tx port.StockTx, partID, locationID int64) (*domain.StockRecord, error) {
	t := tx.(*fakeTx)
	f.nextID++
	id := f.nextID
	rec := &domain.StockRecord{
		ID:         id,
		PartID:     partID,
		Quantity:   decimal.Zero,
		LocationID: locationID,
	}
	f.records[id] = rec
	t.undo = append(t.undo, func() { delete(f.records, id) })
	return rec, nil
}

func (f *fakeStock) GetLocation(ctx context.Context, tx port.StockTx, locationID int64) (*domain.StockLocation, error) {
	name, ok := f.locations[locationID]
	if !ok {
		return nil, nil
	}
	return &domain.StockLocation{ID: locationID, Name: name}, nil
}

func (f *fakeStock) RecordRun(ctx context.Context, rec domain.RunRecord) error {
	f.runsMu.Lock()
	defer f.runsMu.Unlock()
	f.runs = append(f.runs, rec)
	return nil
}
