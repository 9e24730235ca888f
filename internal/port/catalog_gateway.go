package port

import (
	"context"

	"github.com/mkessler/process-engine/internal/core/domain"
)

// CatalogGateway resolves parts and their bill of materials.
type CatalogGateway interface {
	// GetPart returns nil without error when the part does not exist.
	GetPart(ctx context.Context, id int64) (*domain.Part, error)

	// ListBOM returns the BOM lines for an output part in
	// catalog-declared order. Empty when the part has no BOM.
	ListBOM(ctx context.Context, outputPartID int64) ([]domain.BOMLine, error)
}
