package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mkessler/process-engine/internal/core/domain"
	"github.com/mkessler/process-engine/internal/port"
)

// ProcessRegistry is the slice of the registry the HTTP layer needs.
type ProcessRegistry interface {
	List(ctx context.Context) ([]domain.Process, error)
	Create(ctx context.Context, name string, outputPartID int64) (*domain.Process, error)
	Update(ctx context.Context, id, name string, outputPartID int64) (*domain.Process, error)
	Delete(ctx context.Context, id string) error
	Duplicate(ctx context.Context, id string) (*domain.Process, error)
}

// ProcessRunner executes one process run atomically.
type ProcessRunner interface {
	Execute(ctx context.Context, req domain.ExecutionRequest) (*domain.ExecutionResult, error)
}

// BarcodeScanner resolves scanned tokens; nil match means not recognized.
type BarcodeScanner interface {
	Scan(ctx context.Context, token string) (*domain.BarcodeMatch, error)
}

// HTTPHandler serves the process action API. Every response carries the
// {ok: bool, ...} envelope; failures add an error string.
type HTTPHandler struct {
	registry ProcessRegistry
	runner   ProcessRunner
	scanner  BarcodeScanner
	catalog  port.CatalogGateway
	log      *zap.Logger
}

func NewHTTPHandler(registry ProcessRegistry, runner ProcessRunner, scanner BarcodeScanner, catalog port.CatalogGateway, log *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		registry: registry,
		runner:   runner,
		scanner:  scanner,
		catalog:  catalog,
		log:      log,
	}
}

// Register mounts one route per operation, replacing the legacy
// string-keyed method dispatch with a closed set of handlers.
func (h *HTTPHandler) Register(r *gin.Engine) {
	r.GET("/health", h.HealthCheck)
	r.GET("/api/processes", h.List)
	r.POST("/api/processes", h.Create)
	r.PUT("/api/processes/:id", h.Update)
	r.DELETE("/api/processes/:id", h.Delete)
	r.POST("/api/processes/:id/duplicate", h.Duplicate)
	r.POST("/api/processes/:id/run", h.Run)
	r.GET("/api/bom/:part_id", h.BOMPreview)
	r.POST("/api/barcode/scan", h.ScanBarcode)
}

type processRequest struct {
	Name         string `json:"name"`
	OutputPartID int64  `json:"output_part_id"`
}

type runRequest struct {
	N    int    `json:"n"`
	Note string `json:"note"`
}

type scanRequest struct {
	Barcode string `json:"barcode"`
}

func (h *HTTPHandler) List(c *gin.Context) {
	processes, err := h.registry.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "processes": processes})
}

func (h *HTTPHandler) Create(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.Validationf("invalid request body"))
		return
	}

	proc, err := h.registry.Create(c.Request.Context(), req.Name, req.OutputPartID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "process": proc})
}

func (h *HTTPHandler) Update(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.Validationf("invalid request body"))
		return
	}

	proc, err := h.registry.Update(c.Request.Context(), c.Param("id"), req.Name, req.OutputPartID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "process": proc})
}

func (h *HTTPHandler) Delete(c *gin.Context) {
	if err := h.registry.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *HTTPHandler) Duplicate(c *gin.Context) {
	proc, err := h.registry.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "process": proc})
}

func (h *HTTPHandler) Run(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.Validationf("invalid request body"))
		return
	}

	result, err := h.runner.Execute(c.Request.Context(), domain.ExecutionRequest{
		ProcessID: c.Param("id"),
		N:         req.N,
		Note:      req.Note,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"consumed": result.Consumed,
		"produced": result.Produced,
		"warnings": result.Warnings,
	})
}

func (h *HTTPHandler) BOMPreview(c *gin.Context) {
	partID, err := strconv.ParseInt(c.Param("part_id"), 10, 64)
	if err != nil {
		h.fail(c, domain.Validationf("output_part_id must be int"))
		return
	}

	ctx := c.Request.Context()
	part, err := h.catalog.GetPart(ctx, partID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if part == nil {
		h.fail(c, domain.NotFoundf("output part %d not found", partID))
		return
	}

	bom, err := h.catalog.ListBOM(ctx, partID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if bom == nil {
		bom = []domain.BOMLine{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "bom": bom})
}

func (h *HTTPHandler) ScanBarcode(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.Validationf("invalid request body"))
		return
	}

	match, err := h.scanner.Scan(c.Request.Context(), req.Barcode)
	if err != nil {
		h.fail(c, err)
		return
	}
	// An unresolvable token is not an error.
	if match == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "recognized": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "recognized": true, "match": match})
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	if kind, ok := domain.KindOf(err); ok {
		message = err.Error()
		switch kind {
		case domain.KindValidation:
			status = http.StatusBadRequest
		case domain.KindNotFound:
			status = http.StatusNotFound
		case domain.KindInsufficientStock:
			status = http.StatusConflict
		case domain.KindConfiguration:
			status = http.StatusInternalServerError
		}
	} else {
		h.log.Error("request failed", zap.Error(err))
	}

	c.JSON(status, gin.H{"ok": false, "error": message})
}
