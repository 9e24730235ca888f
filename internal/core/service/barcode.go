package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkessler/process-engine/internal/core/domain"
	"github.com/mkessler/process-engine/internal/port"
)

const barcodePrefix = "PROC:"

// BarcodeScanner resolves scanned process tokens of the form
// "PROC:<process_id>" to the process's output part and run reference.
type BarcodeScanner struct {
	registry *Registry
	catalog  port.CatalogGateway
}

func NewBarcodeScanner(registry *Registry, catalog port.CatalogGateway) *BarcodeScanner {
	return &BarcodeScanner{registry: registry, catalog: catalog}
}

// Scan returns nil without error for any token it does not recognize:
// wrong prefix, unknown process, or a process whose output part is gone.
func (s *BarcodeScanner) Scan(ctx context.Context, token string) (*domain.BarcodeMatch, error) {
	if !strings.HasPrefix(token, barcodePrefix) {
		return nil, nil
	}
	processID := strings.TrimSpace(strings.TrimPrefix(token, barcodePrefix))
	if processID == "" {
		return nil, nil
	}

	proc, err := s.registry.Find(ctx, processID)
	if err != nil {
		return nil, err
	}
	if proc == nil {
		return nil, nil
	}

	part, err := s.catalog.GetPart(ctx, proc.OutputPartID)
	if err != nil {
		return nil, fmt.Errorf("resolve output part: %w", err)
	}
	if part == nil {
		return nil, nil
	}

	return &domain.BarcodeMatch{
		ProcessID:      proc.ID,
		ProcessName:    proc.Name,
		OutputPartID:   part.ID,
		OutputPartName: part.Name,
		RunURL:         "/api/processes/" + proc.ID + "/run",
	}, nil
}
