package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mkessler/process-engine/internal/adapter/handler"
	"github.com/mkessler/process-engine/internal/adapter/storage"
	"github.com/mkessler/process-engine/internal/config"
	"github.com/mkessler/process-engine/internal/core/domain"
	"github.com/mkessler/process-engine/internal/core/service"
	"github.com/mkessler/process-engine/internal/port"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.FromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL: catalog and stock ledger
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal("failed to open mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("failed to ping mysql", zap.Error(err))
	}
	log.Info("connected to mysql")

	// Redis: process list storage
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	log.Info("connected to redis")

	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb, cfg.ProcessKey)

	registry := service.NewRegistry(redisAdapter, mysqlAdapter, log)
	runner := service.NewRunner(registry, mysqlAdapter, mysqlAdapter, service.RunnerConfig{
		DefaultOutputLocation: cfg.DefaultOutputLocation,
		RunTimeout:            cfg.RunTimeout,
	}, log, cfg.QueueSize)
	scanner := service.NewBarcodeScanner(registry, mysqlAdapter)

	// Worker pool persisting run audit records
	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			auditLoop(id, runner.RunRecords(), mysqlAdapter, log)
		}(i)
	}
	log.Info("started audit workers", zap.Int("count", cfg.WorkerCount))

	// HTTP server
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	httpHandler := handler.NewHTTPHandler(registry, runner, scanner, mysqlAdapter, log)
	httpHandler.Register(engine)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("http server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info("http server stopped")

	runner.Close()
	wg.Wait()
	log.Info("workers stopped")

	rdb.Close()
	db.Close()
	log.Info("connections closed")
}

func auditLoop(id int, records <-chan domain.RunRecord, stock port.StockGateway, log *zap.Logger) {
	for rec := range records {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if err := stock.RecordRun(ctx, rec); err != nil {
			log.Error("failed to persist run record",
				zap.Int("worker", id),
				zap.String("run_id", rec.ID),
				zap.Error(err))
		}

		cancel()
	}
}
