package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/smallbiznis/ledgerline/internal/config"
	"github.com/smallbiznis/ledgerline/internal/currency"
	"github.com/smallbiznis/ledgerline/internal/ingest"
	"github.com/smallbiznis/ledgerline/internal/observability"
	obsmiddleware "github.com/smallbiznis/ledgerline/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/ledgerline/internal/observability/metrics"
	"github.com/smallbiznis/ledgerline/internal/ratelimit"
	"github.com/smallbiznis/ledgerline/internal/report"
	reportdomain "github.com/smallbiznis/ledgerline/internal/report/domain"
	"github.com/smallbiznis/ledgerline/internal/task"
	taskdomain "github.com/smallbiznis/ledgerline/internal/task/domain"
	"github.com/smallbiznis/ledgerline/internal/transaction"
	txdomain "github.com/smallbiznis/ledgerline/internal/transaction/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	currency.Module,
	transaction.Module,
	ingest.Module,
	task.Module,
	report.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config

	transactionSvc txdomain.Service
	reportSvc      reportdomain.Service
	taskRunner     taskdomain.Runner
	uploadLimiter  *ratelimit.UploadLimiter
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	TransactionSvc txdomain.Service
	ReportSvc      reportdomain.Service
	TaskRunner     taskdomain.Runner
	UploadLimiter  *ratelimit.UploadLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		transactionSvc: p.TransactionSvc,
		reportSvc:      p.ReportSvc,
		taskRunner:     p.TaskRunner,
		uploadLimiter:  p.UploadLimiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	// -------- Transactions --------
	v1.POST("/transactions/upload", s.UploadTransactions)
	v1.GET("/transactions", s.ListTransactions)
	v1.GET("/transactions/:id", s.GetTransactionByID)

	// -------- Tasks --------
	v1.GET("/tasks/:id", s.GetTaskByID)

	// -------- Reports --------
	v1.GET("/reports/customer-summary/:id", s.GetCustomerSummary)
	v1.GET("/reports/product-summary/:id", s.GetProductSummary)
}
