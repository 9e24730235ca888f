package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mkessler/process-engine/internal/core/domain"
	"github.com/mkessler/process-engine/internal/port"
)

// RunnerConfig carries the explicit configuration the runner needs.
type RunnerConfig struct {
	// DefaultOutputLocation is the location id used when production must
	// create a new stock record. Empty means unconfigured.
	DefaultOutputLocation string

	// RunTimeout bounds one whole execution. Zero disables the deadline.
	RunTimeout time.Duration
}

// Runner executes a process as one atomic unit of work: consume every
// BOM line, then produce the output quantity. Any failure rolls the
// whole transaction back; no partial deduction ever becomes visible.
type Runner struct {
	registry *Registry
	catalog  port.CatalogGateway
	stock    port.StockGateway
	cfg      RunnerConfig
	log      *zap.Logger
	runQueue chan domain.RunRecord
}

func NewRunner(registry *Registry, catalog port.CatalogGateway, stock port.StockGateway, cfg RunnerConfig, log *zap.Logger, queueSize int) *Runner {
	return &Runner{
		registry: registry,
		catalog:  catalog,
		stock:    stock,
		cfg:      cfg,
		log:      log,
		runQueue: make(chan domain.RunRecord, queueSize),
	}
}

// Execute walks the run through Validating, Consuming and Producing.
// It returns a result only after the transaction committed.
func (r *Runner) Execute(ctx context.Context, req domain.ExecutionRequest) (*domain.ExecutionResult, error) {
	// Validating
	if req.N < 1 {
		return nil, domain.Validationf("n must be >= 1")
	}

	proc, err := r.registry.Find(ctx, req.ProcessID)
	if err != nil {
		return nil, err
	}
	if proc == nil {
		return nil, domain.NotFoundf("process %s not found", req.ProcessID)
	}

	if r.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RunTimeout)
		defer cancel()
	}

	bom, err := r.catalog.ListBOM(ctx, proc.OutputPartID)
	if err != nil {
		return nil, fmt.Errorf("resolve bom: %w", err)
	}
	// The BOM may have changed since the process was created.
	if len(bom) == 0 {
		return nil, domain.Validationf("output part %d has no BOM lines", proc.OutputPartID)
	}

	note := req.Note
	if note == "" {
		note = defaultRunNote(proc)
	}

	tx, err := r.stock.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin stock tx: %w", err)
	}
	defer tx.Rollback()

	n := decimal.NewFromInt(int64(req.N))
	result := &domain.ExecutionResult{
		Consumed: make([]domain.StockMovement, 0, len(bom)),
		Warnings: []string{},
	}

	// Consuming: BOM lines in catalog-declared order.
	for _, line := range bom {
		required := line.Quantity.Mul(n)

		records, err := r.stock.ListForItemLocked(ctx, tx, line.PartID)
		if err != nil {
			return nil, fmt.Errorf("lock stock for part %d: %w", line.PartID, err)
		}

		rec := SelectForConsumption(records)
		if rec == nil {
			return nil, domain.InsufficientStockf("no stock item for part %d", line.PartID)
		}
		if rec.Quantity.LessThan(required) {
			return nil, domain.InsufficientStockf(
				"insufficient stock for part %d (stock item %d holds %s, need %s)",
				line.PartID, rec.ID, rec.Quantity, required)
		}

		if err := r.stock.Deduct(ctx, tx, rec.ID, required, note); err != nil {
			return nil, fmt.Errorf("deduct stock item %d: %w", rec.ID, err)
		}

		result.Consumed = append(result.Consumed, domain.StockMovement{
			PartID:        line.PartID,
			StockRecordID: rec.ID,
			Quantity:      required,
		})
	}

	// Producing
	records, err := r.stock.ListForItemLocked(ctx, tx, proc.OutputPartID)
	if err != nil {
		return nil, fmt.Errorf("lock output stock: %w", err)
	}

	out := SelectForProduction(records)
	if out == nil {
		locationID, err := r.resolveDefaultLocation(ctx, tx)
		if err != nil {
			return nil, err
		}
		out, err = r.stock.CreateRecord(ctx, tx, proc.OutputPartID, locationID)
		if err != nil {
			return nil, fmt.Errorf("create output stock item: %w", err)
		}
		result.Warnings = append(result.Warnings, domain.WarningCreatedNewStockItem)
	}

	if err := r.stock.Add(ctx, tx, out.ID, n, note); err != nil {
		return nil, fmt.Errorf("add to stock item %d: %w", out.ID, err)
	}
	result.Produced = domain.StockMovement{
		PartID:        proc.OutputPartID,
		StockRecordID: out.ID,
		Quantity:      n,
	}

	// Committed
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit execution: %w", err)
	}

	r.log.Info("process run committed",
		zap.String("process_id", proc.ID),
		zap.Int("n", req.N),
		zap.Int("consumed_lines", len(result.Consumed)),
		zap.Strings("warnings", result.Warnings))

	r.enqueueRunRecord(domain.RunRecord{
		ID:           uuid.NewString(),
		ProcessID:    proc.ID,
		ProcessName:  proc.Name,
		OutputPartID: proc.OutputPartID,
		N:            req.N,
		Note:         note,
		RanAt:        time.Now(),
	})

	return result, nil
}

// RunRecords exposes committed executions for asynchronous audit
// persistence by worker goroutines.
func (r *Runner) RunRecords() <-chan domain.RunRecord {
	return r.runQueue
}

// Close stops accepting audit records. Call after all executions finished.
func (r *Runner) Close() {
	close(r.runQueue)
}

func (r *Runner) enqueueRunRecord(rec domain.RunRecord) {
	// The audit trail is best effort; never block a committed run.
	select {
	case r.runQueue <- rec:
	default:
		r.log.Warn("run audit queue full, dropping record",
			zap.String("run_id", rec.ID),
			zap.String("process_id", rec.ProcessID))
	}
}

func (r *Runner) resolveDefaultLocation(ctx context.Context, tx port.StockTx) (int64, error) {
	if r.cfg.DefaultOutputLocation == "" {
		return 0, domain.Configurationf("no output stock item and no default output location")
	}
	locationID, err := strconv.ParseInt(r.cfg.DefaultOutputLocation, 10, 64)
	if err != nil {
		return 0, domain.Configurationf("default output location %q is not a valid id", r.cfg.DefaultOutputLocation)
	}
	location, err := r.stock.GetLocation(ctx, tx, locationID)
	if err != nil {
		return 0, fmt.Errorf("resolve default output location: %w", err)
	}
	if location == nil {
		return 0, domain.Configurationf("default output location %d not found", locationID)
	}
	return locationID, nil
}

func defaultRunNote(proc *domain.Process) string {
	name := proc.Name
	if name == "" {
		name = proc.ID
	}
	return "Process run: " + name
}
