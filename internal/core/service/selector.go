package service

import "github.com/mkessler/process-engine/internal/core/domain"

// Stock selection policy: lowest record id with positive quantity wins.
// When no record has positive quantity, fall back to the lowest id
// regardless of quantity, so an insufficiency error can name a concrete
// record. Lowest-id-first is a deterministic, FIFO-like default and must
// stay exactly as is for behavioral compatibility.

// SelectForConsumption picks the record to deduct from, or nil when the
// part has no stock records at all.
func SelectForConsumption(records []domain.StockRecord) *domain.StockRecord {
	return selectLowest(records)
}

// SelectForProduction picks the record to add produced quantity to, or
// nil when none exists and a new record must be created.
func SelectForProduction(records []domain.StockRecord) *domain.StockRecord {
	return selectLowest(records)
}

func selectLowest(records []domain.StockRecord) *domain.StockRecord {
	var positive, any *domain.StockRecord
	for i := range records {
		rec := &records[i]
		if any == nil || rec.ID < any.ID {
			any = rec
		}
		if rec.Quantity.IsPositive() && (positive == nil || rec.ID < positive.ID) {
			positive = rec
		}
	}
	if positive != nil {
		return positive
	}
	return any
}
