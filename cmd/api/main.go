package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/companion-booking/internal/audit"
	"github.com/BruksfildServices01/companion-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/companion-booking/internal/db"
	infraRepo "github.com/BruksfildServices01/companion-booking/internal/infra/repository"
	"github.com/BruksfildServices01/companion-booking/internal/logger"
	"github.com/BruksfildServices01/companion-booking/internal/payment"
	"github.com/BruksfildServices01/companion-booking/internal/payment/asaas"
	"github.com/BruksfildServices01/companion-booking/internal/payment/mercadopago"
	"github.com/BruksfildServices01/companion-booking/internal/qrarchive"
	"github.com/BruksfildServices01/companion-booking/internal/routes"
	"github.com/BruksfildServices01/companion-booking/internal/slotlock"
	"github.com/BruksfildServices01/companion-booking/internal/telemetry"
	ucAppointment "github.com/BruksfildServices01/companion-booking/internal/usecase/appointment"
	"github.com/BruksfildServices01/companion-booking/internal/worker"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ======================================================
	// 📡 TELEMETRIA
	// ======================================================
	shutdownTelemetry, err := telemetry.Init(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		zl.Fatal("telemetry init failed", zap.Error(err))
	}

	metrics, err := telemetry.NewMetrics(otel.Meter(cfg.ServiceName))
	if err != nil {
		zl.Fatal("metrics init failed", zap.Error(err))
	}

	// ======================================================
	// 🗄️ BANCO
	// ======================================================
	db, err := dbpkg.NewDB(cfg, zl)
	if err != nil {
		zl.Fatal("database init failed", zap.Error(err))
	}

	// ======================================================
	// 💳 GATEWAY / LOCK / ARQUIVO
	// ======================================================
	gateway, err := newGateway(cfg, zl)
	if err != nil {
		zl.Fatal("payment gateway init failed", zap.Error(err))
	}

	var locker slotlock.Locker = slotlock.Noop{}
	if cfg.RedisURL != "" {
		rdb, err := slotlock.Connect(ctx, cfg.RedisURL)
		if err != nil {
			zl.Fatal("redis connect failed", zap.Error(err))
		}
		defer rdb.Close()
		locker = slotlock.NewRedisLocker(rdb, cfg.SlotLockTTL)
	} else {
		zl.Warn("REDIS_URL not set, slot locking relies on the database index only")
	}

	repo := infraRepo.NewAppointmentGormRepository(db)

	auditDispatcher := audit.NewDispatcher(audit.New(db), zl)

	deps := routes.Deps{
		DB:      db,
		Config:  cfg,
		Gateway: gateway,
		Locker:  locker,
		Audit:   auditDispatcher,
		Metrics: metrics,
		Log:     zl,
	}
	if cfg.S3.Enabled() {
		deps.Archiver = qrarchive.New(qrarchive.NewS3Uploader(cfg.S3), repo, zl)
	}
	if cfg.CheckEmailDomain {
		deps.EmailResolver = net.DefaultResolver
	}

	// ======================================================
	// 🌐 HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ======================================================
	// 🔁 RECONCILIAÇÃO
	// ======================================================
	reconciler := worker.NewReconciler(
		repo,
		ucAppointment.NewCheckPaymentStatus(
			repo,
			gateway,
			auditDispatcher,
			metrics,
			routes.RetryPolicy(cfg),
			zl,
		),
		cfg.ReconcileInterval,
		routes.RetryPolicy(cfg),
		zl,
	)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		reconciler.Run(ctx)
	}()

	go func() {
		zl.Info("server running",
			zap.String("addr", cfg.Addr()),
			zap.String("payment_provider", cfg.PaymentProvider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("http shutdown", zap.Error(err))
	}
	<-workerDone

	auditDispatcher.Close()

	if err := shutdownTelemetry(shutdownCtx); err != nil {
		zl.Error("telemetry shutdown", zap.Error(err))
	}
}

func newGateway(cfg *config.Config, log *zap.Logger) (payment.Gateway, error) {
	switch cfg.PaymentProvider {
	case config.ProviderMercadoPago:
		return mercadopago.New(cfg.MercadoPagoToken, log)
	default:
		return asaas.New(
			asaas.TokenFunc(cfg.AsaasToken),
			asaas.Options{BaseURL: cfg.AsaasBaseURL, Timeout: cfg.GatewayTimeout},
			log,
		), nil
	}
}
