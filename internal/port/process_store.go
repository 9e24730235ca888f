package port

import "context"

// ProcessStore persists the process list as one serialized blob.
// The registry owns the encoding; the store only moves bytes.
type ProcessStore interface {
	// Load returns nil without error when nothing has been saved yet.
	Load(ctx context.Context) ([]byte, error)

	Save(ctx context.Context, raw []byte) error
}
