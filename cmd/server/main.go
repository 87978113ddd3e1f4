package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appcalc "github.com/emgea/siscalculo/internal/application/calc"
	"github.com/emgea/siscalculo/internal/domain/calc"
	"github.com/emgea/siscalculo/internal/domain/indices"
	"github.com/emgea/siscalculo/internal/infrastructure/audit"
	"github.com/emgea/siscalculo/internal/infrastructure/cache"
	"github.com/emgea/siscalculo/internal/infrastructure/config"
	"github.com/emgea/siscalculo/internal/infrastructure/logger"
	"github.com/emgea/siscalculo/internal/infrastructure/persistence"
	"github.com/emgea/siscalculo/internal/infrastructure/printing"
	"github.com/emgea/siscalculo/internal/infrastructure/spreadsheet"
	"github.com/emgea/siscalculo/internal/infrastructure/telemetry"
	"github.com/emgea/siscalculo/internal/interfaces/http/handler"
	"github.com/emgea/siscalculo/internal/interfaces/http/middleware"
	"github.com/emgea/siscalculo/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	defer func() { _ = log.Sync() }()

	log.Info("starting siscalculo",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracer, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Tracing.Enabled,
		CollectorEndpoint: cfg.Tracing.CollectorEndpoint,
		SamplingRatio:     cfg.Tracing.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Tracing.Insecure,
	}, log)
	if err != nil {
		log.Fatal("failed to initialise tracing", zap.Error(err))
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level)))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Tracing.Enabled,
		SlowQueryThresh: cfg.Tracing.SlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("failed to register database tracing", zap.Error(err))
	}

	factorCache := cache.NewFactorCache(cfg.Redis, log)

	points := persistence.NewGormIndexPointRepository(db)
	staged := persistence.NewGormInstallmentRepository(db)
	prescribed := persistence.NewGormPrescribedRepository(db)
	lines := persistence.NewGormLineRepository(db)
	ledger := persistence.NewGormLedgerRepository(db)
	properties := persistence.NewGormPropertyRepository(db)

	factors := indices.NewFactorService(points, factorCache, fallbackRates(cfg.Calc))
	engine := calc.NewEngine(factors, enginePolicy(cfg.Calc))
	auditSink := audit.NewZapSink(log)

	honorariosDefault := decimal.NewFromFloat(cfg.Calc.HonorariosDefault)

	process := appcalc.NewProcessService(spreadsheet.NewParser(), engine, staged, prescribed, lines, db, auditSink, log)
	results := appcalc.NewResultsService(lines, prescribed, properties, honorariosDefault)
	compare := appcalc.NewCompareService(lines)
	prejudice := appcalc.NewPrejudiceService(lines, ledger, db, ledgerPolicy(cfg.Ledger), auditSink, log)

	var renderer printing.PDFRenderer
	if !cfg.Report.PDFDisabled {
		renderer, err = printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Report.PDFTimeout,
			ExecPath:       cfg.Report.ChromePath,
			NoSandbox:      true,
			Logger:         log,
		})
		if err != nil {
			log.Warn("pdf renderer unavailable, export/pdf disabled", zap.Error(err))
			renderer = nil
		} else {
			defer func() { _ = renderer.Close() }()
		}
	}
	export := appcalc.NewExportService(results, renderer, reportHeader(cfg.Report), log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	g := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := g.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("invalid trusted proxies", zap.Error(err))
		}
	}
	g.Use(
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.App.Name,
			Enabled:     cfg.Tracing.Enabled,
		}),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Identity(),
		middleware.SpanEnricher(),
		middleware.CORSWithConfig(middleware.DefaultCORSConfig()),
	)

	router.NewRouter(g).
		Register(handler.NewCalcHandler(process, results, compare, export, honorariosDefault, log)).
		Register(handler.NewPrejudiceHandler(prejudice)).
		Register(handler.NewSystemHandler(db)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        g,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}

func enginePolicy(cfg config.CalcConfig) calc.Policy {
	return calc.Policy{
		FineCutoff:          cfg.FineCutoffDate(),
		FineRateBefore:      decimal.NewFromFloat(cfg.FineRateBefore),
		FineRateAfter:       decimal.NewFromFloat(cfg.FineRateAfter),
		MonthlyInterestRate: decimal.NewFromFloat(cfg.MonthlyInterestRate),
	}
}

func fallbackRates(cfg config.CalcConfig) map[indices.Index]decimal.Decimal {
	return map[indices.Index]decimal.Decimal{
		indices.IndexTR:   decimal.NewFromFloat(cfg.FallbackRateTR),
		indices.IndexINPC: decimal.NewFromFloat(cfg.FallbackRateINPC),
		indices.IndexIGPM: decimal.NewFromFloat(cfg.FallbackRateIGPM),
		indices.IndexIPCA: decimal.NewFromFloat(cfg.FallbackRateIPCA),
	}
}

func ledgerPolicy(cfg config.LedgerConfig) appcalc.LedgerPolicy {
	return appcalc.LedgerPolicy{
		Creditor:     cfg.Creditor,
		CarteiraID:   cfg.CarteiraID,
		OcorrenciaID: cfg.OcorrenciaID,
		StatusID:     cfg.StatusID,
	}
}

func reportHeader(cfg config.ReportConfig) appcalc.ReportHeader {
	return appcalc.ReportHeader{
		Department: cfg.Department,
		Division:   cfg.Division,
		City:       cfg.City,
	}
}
