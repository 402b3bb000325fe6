package routes

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/companion-booking/internal/audit"
	"github.com/BruksfildServices01/companion-booking/internal/config"
	"github.com/BruksfildServices01/companion-booking/internal/handlers"
	infraRepo "github.com/BruksfildServices01/companion-booking/internal/infra/repository"
	"github.com/BruksfildServices01/companion-booking/internal/middleware"
	"github.com/BruksfildServices01/companion-booking/internal/payment"
	"github.com/BruksfildServices01/companion-booking/internal/retry"
	"github.com/BruksfildServices01/companion-booking/internal/slotlock"
	"github.com/BruksfildServices01/companion-booking/internal/telemetry"
	ucAppointment "github.com/BruksfildServices01/companion-booking/internal/usecase/appointment"
	"github.com/BruksfildServices01/companion-booking/internal/validators"
)

// Deps são os singletons montados em main.
type Deps struct {
	DB      *gorm.DB
	Config  *config.Config
	Gateway payment.Gateway
	Locker  slotlock.Locker
	Audit   *audit.Dispatcher
	Metrics *telemetry.Metrics
	Log     *zap.Logger

	// opcionais
	Archiver      ucAppointment.QRArchiver
	EmailResolver validators.Resolver
}

func RetryPolicy(cfg *config.Config) retry.Policy {
	return retry.Policy{Attempts: cfg.RetryAttempts, Delay: cfg.RetryDelay}
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(otelgin.Middleware(d.Config.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Log.Named("http")))
	r.Use(middleware.CORSMiddleware(d.Config.CORSOrigins))

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(d.DB)
	policy := RetryPolicy(d.Config)
	production := d.Config.IsProduction()

	// ======================================================
	// 🧠 USE CASES (BOOKING / PAYMENT)
	// ======================================================
	createBookingUC := ucAppointment.NewCreateBooking(
		appointmentRepo,
		d.Gateway,
		d.Locker,
		d.Audit,
		d.Metrics,
		d.Log,
	)
	if d.Archiver != nil {
		createBookingUC.WithArchiver(d.Archiver)
	}
	if d.EmailResolver != nil {
		createBookingUC.WithEmailResolver(d.EmailResolver)
	}

	availabilityUC := ucAppointment.NewGetAvailability(
		appointmentRepo,
		policy,
	)

	paymentStatusUC := ucAppointment.NewCheckPaymentStatus(
		appointmentRepo,
		d.Gateway,
		d.Audit,
		d.Metrics,
		policy,
		d.Log,
	)

	doneUC := ucAppointment.NewGetAppointmentDone(appointmentRepo)
	checkUserUC := ucAppointment.NewCheckUser(appointmentRepo)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	bookingHandler := handlers.NewBookingHandler(createBookingUC, availabilityUC, production, d.Log)
	paymentHandler := handlers.NewPaymentHandler(paymentStatusUC, doneUC, production, d.Log)
	userHandler := handlers.NewUserHandler(checkUserUC, production, d.Log)
	healthHandler := handlers.NewHealthHandler(d.DB)

	// ======================================================
	// 🌐 ROTAS (raiz e /api expõem o mesmo fluxo)
	// ======================================================
	register := func(g gin.IRoutes) {
		g.GET("/health", healthHandler.Health)

		g.POST("/book", bookingHandler.Book)
		g.POST("/appointments/duration", bookingHandler.Duration)

		g.GET("/appointments/:id/payment-status", paymentHandler.PaymentStatus)
		g.GET("/appointments/:id/done", paymentHandler.Done)
	}

	register(r)

	api := r.Group("/api")
	{
		register(api)

		api.POST("/appointments/check-user", userHandler.CheckUser)
	}
}
