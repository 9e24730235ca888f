package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkessler/process-engine/internal/core/domain"
	"github.com/mkessler/process-engine/internal/port"
)

const duplicateSuffix = " (Copy)"

// Registry manages the validated process list. The list is persisted as
// a single serialized array; mutations are serialized by the registry's
// own mutex, independent of any stock transaction.
type Registry struct {
	store   port.ProcessStore
	catalog port.CatalogGateway
	log     *zap.Logger
	mu      sync.Mutex
}

func NewRegistry(store port.ProcessStore, catalog port.CatalogGateway, log *zap.Logger) *Registry {
	return &Registry{
		store:   store,
		catalog: catalog,
		log:     log,
	}
}

// List returns all processes. Malformed or missing persisted data
// degrades to an empty list, never an error.
func (r *Registry) List(ctx context.Context) ([]domain.Process, error) {
	return r.load(ctx)
}

// Find returns nil without error when the id is absent.
func (r *Registry) Find(ctx context.Context, id string) (*domain.Process, error) {
	processes, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range processes {
		if processes[i].ID == id {
			return &processes[i], nil
		}
	}
	return nil, nil
}

func (r *Registry) Create(ctx context.Context, name string, outputPartID int64) (*domain.Process, error) {
	if err := r.validate(ctx, name, outputPartID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	processes, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	proc := domain.Process{
		ID:           uuid.NewString(),
		Name:         name,
		OutputPartID: outputPartID,
	}

	// Collision cannot occur with random uuids, but reject anyway.
	for _, existing := range processes {
		if existing.ID == proc.ID {
			return nil, domain.Validationf("process id %s already exists", proc.ID)
		}
	}

	processes = append(processes, proc)
	if err := r.save(ctx, processes); err != nil {
		return nil, err
	}

	r.log.Info("process created",
		zap.String("process_id", proc.ID),
		zap.Int64("output_part_id", proc.OutputPartID))
	return &proc, nil
}

func (r *Registry) Update(ctx context.Context, id, name string, outputPartID int64) (*domain.Process, error) {
	if err := r.validate(ctx, name, outputPartID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	processes, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	var updated *domain.Process
	for i := range processes {
		if processes[i].ID == id {
			processes[i].Name = name
			processes[i].OutputPartID = outputPartID
			updated = &processes[i]
			break
		}
	}
	if updated == nil {
		return nil, domain.NotFoundf("process %s not found", id)
	}

	if err := r.save(ctx, processes); err != nil {
		return nil, err
	}

	r.log.Info("process updated", zap.String("process_id", id))
	return updated, nil
}

func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	processes, err := r.load(ctx)
	if err != nil {
		return err
	}

	remaining := processes[:0:0]
	for _, proc := range processes {
		if proc.ID != id {
			remaining = append(remaining, proc)
		}
	}
	if len(remaining) == len(processes) {
		return domain.NotFoundf("process %s not found", id)
	}

	if err := r.save(ctx, remaining); err != nil {
		return err
	}

	r.log.Info("process deleted", zap.String("process_id", id))
	return nil
}

// Duplicate copies a process under a fresh id, appending a copy marker
// to the name. The source passed validation at creation time, so the
// BOM is not re-checked here.
func (r *Registry) Duplicate(ctx context.Context, id string) (*domain.Process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	processes, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	var source *domain.Process
	for i := range processes {
		if processes[i].ID == id {
			source = &processes[i]
			break
		}
	}
	if source == nil {
		return nil, domain.NotFoundf("process %s not found", id)
	}

	copyProc := domain.Process{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(source.Name) + duplicateSuffix,
		OutputPartID: source.OutputPartID,
	}

	processes = append(processes, copyProc)
	if err := r.save(ctx, processes); err != nil {
		return nil, err
	}

	r.log.Info("process duplicated",
		zap.String("source_id", id),
		zap.String("process_id", copyProc.ID))
	return &copyProc, nil
}

func (r *Registry) validate(ctx context.Context, name string, outputPartID int64) error {
	if strings.TrimSpace(name) == "" {
		return domain.Validationf("name is required")
	}

	part, err := r.catalog.GetPart(ctx, outputPartID)
	if err != nil {
		return fmt.Errorf("resolve output part: %w", err)
	}
	if part == nil {
		return domain.Validationf("output part %d not found", outputPartID)
	}

	bom, err := r.catalog.ListBOM(ctx, outputPartID)
	if err != nil {
		return fmt.Errorf("resolve bom: %w", err)
	}
	if len(bom) == 0 {
		return domain.Validationf("output part %d has no BOM lines", outputPartID)
	}
	return nil
}

func (r *Registry) load(ctx context.Context) ([]domain.Process, error) {
	raw, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load processes: %w", err)
	}
	if len(raw) == 0 {
		return []domain.Process{}, nil
	}

	var processes []domain.Process
	if err := json.Unmarshal(raw, &processes); err != nil {
		// Corrupt storage degrades to an empty list.
		r.log.Warn("malformed process storage, treating as empty", zap.Error(err))
		return []domain.Process{}, nil
	}
	if processes == nil {
		processes = []domain.Process{}
	}
	return processes, nil
}

func (r *Registry) save(ctx context.Context, processes []domain.Process) error {
	raw, err := json.Marshal(processes)
	if err != nil {
		return fmt.Errorf("encode processes: %w", err)
	}
	if err := r.store.Save(ctx, raw); err != nil {
		return fmt.Errorf("save processes: %w", err)
	}
	return nil
}
