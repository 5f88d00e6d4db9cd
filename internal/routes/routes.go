package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	"github.com/BruksfildServices01/groomer-scheduler/internal/config"
	"github.com/BruksfildServices01/groomer-scheduler/internal/handlers"
	infraRepo "github.com/BruksfildServices01/groomer-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/groomer-scheduler/internal/logger"
	"github.com/BruksfildServices01/groomer-scheduler/internal/metrics"
	"github.com/BruksfildServices01/groomer-scheduler/internal/middleware"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
	ucAppointment "github.com/BruksfildServices01/groomer-scheduler/internal/usecase/appointment"
	ucKennel "github.com/BruksfildServices01/groomer-scheduler/internal/usecase/kennel"
	"github.com/BruksfildServices01/groomer-scheduler/internal/usecase/usage"
)

// Deps are the long-lived pieces main owns and shuts down.
type Deps struct {
	// Bus is the local fan-out the event stream subscribes to.
	Bus *realtime.Bus

	// Publisher is where use cases send changes: the Bus itself, or the
	// Redis bridge when several instances share one feed.
	Publisher realtime.Publisher

	Audit *audit.Dispatcher

	// Logos is nil when object storage is not configured.
	Logos handlers.LogoUploader
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, deps Deps) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(logger.Middleware())
	r.Use(metrics.Middleware())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	kennelRepo := infraRepo.NewKennelGormRepository(db)

	bus := deps.Publisher
	auditDispatcher := deps.Audit

	usageUC := usage.NewCheckUsage(db, bus)

	// ======================================================
	// 🧠 USE CASES: APPOINTMENTS
	// ======================================================
	appointmentUC := handlers.AppointmentUseCases{
		Create:      ucAppointment.NewCreateAppointment(appointmentRepo, auditDispatcher, bus, usageUC),
		Update:      ucAppointment.NewUpdateAppointment(appointmentRepo, auditDispatcher, bus),
		Delete:      ucAppointment.NewDeleteAppointment(appointmentRepo, auditDispatcher, bus),
		ListByDate:  ucAppointment.NewListAppointmentsByDate(appointmentRepo),
		ListByMonth: ucAppointment.NewListAppointmentsByMonth(appointmentRepo),
		Overdue:     ucAppointment.NewListOverdue(appointmentRepo, cfg.OverdueHours),

		CheckIn:   ucAppointment.NewCheckIn(appointmentRepo, auditDispatcher, bus),
		Start:     ucAppointment.NewStartService(appointmentRepo, auditDispatcher, bus),
		Ready:     ucAppointment.NewMarkReady(appointmentRepo, auditDispatcher, bus),
		CheckOut:  ucAppointment.NewCheckOut(appointmentRepo, auditDispatcher, bus),
		SetStatus: ucAppointment.NewSetStatus(appointmentRepo, auditDispatcher, bus),
		AddNote:   ucAppointment.NewAddNote(appointmentRepo, auditDispatcher, bus),
	}

	recordPaymentUC := ucAppointment.NewRecordPayment(appointmentRepo, auditDispatcher, bus)

	// ======================================================
	// 🧠 USE CASES: KENNELS
	// ======================================================
	manageKennelsUC := ucKennel.NewManage(kennelRepo, auditDispatcher, bus)
	availableKennelsUC := ucKennel.NewListAvailable(kennelRepo, appointmentRepo)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	salonHandler := handlers.NewSalonHandler(db, deps.Logos, auditDispatcher)

	clientHandler := handlers.NewClientHandler(db, usageUC, bus, auditDispatcher)
	petHandler := handlers.NewPetHandler(db, usageUC, bus, auditDispatcher)
	staffHandler := handlers.NewStaffHandler(db, auditDispatcher)
	serviceHandler := handlers.NewServiceHandler(db, bus)
	kennelHandler := handlers.NewKennelHandler(manageKennelsUC, availableKennelsUC)

	appointmentHandler := handlers.NewAppointmentHandler(appointmentUC)
	paymentHandler := handlers.NewPaymentHandler(db, recordPaymentUC)
	stripeHandler := handlers.NewStripeWebhookHandler(recordPaymentUC, cfg.StripeWebhookSecret)

	usageHandler := handlers.NewUsageHandler(usageUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)
	eventsHandler := handlers.NewEventsHandler(deps.Bus)

	publicHandler := handlers.NewPublicHandler(db)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 PUBLIC
		// ------------------------------
		api.GET("/public/:slug", publicHandler.Salon)

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 💳 WEBHOOKS (signature auth)
		// ------------------------------
		api.POST("/webhooks/stripe", stripeHandler.Handle)

		// ------------------------------
		// 📡 EVENTS (EventSource may pass ?access_token=)
		// ------------------------------
		api.GET("/me/events", middleware.StreamAuthMiddleware(cfg), eventsHandler.Stream)

		// ------------------------------
		// 🔐 PRIVATE
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/salon", salonHandler.GetMeSalon)
			secured.PATCH("/me/salon", salonHandler.UpdateMeSalon)
			secured.PUT("/me/salon/logo", salonHandler.UploadLogo)

			// ------------------------------
			// 👥 STAFF
			// ------------------------------
			secured.GET("/me/staff", staffHandler.List)
			secured.PATCH("/me/staff/:id", staffHandler.Update)
			secured.GET("/me/invitations", staffHandler.ListInvitations)
			secured.POST("/me/invitations", staffHandler.CreateInvitation)
			secured.DELETE("/me/invitations/:id", staffHandler.DeleteInvitation)

			secured.GET("/me/clients", clientHandler.List)
			secured.POST("/me/clients", clientHandler.Create)
			secured.PATCH("/me/clients/:id", clientHandler.Update)
			secured.DELETE("/me/clients/:id", clientHandler.Delete)

			secured.GET("/me/pets", petHandler.List)
			secured.POST("/me/pets", petHandler.Create)
			secured.PATCH("/me/pets/:id", petHandler.Update)
			secured.DELETE("/me/pets/:id", petHandler.Delete)

			secured.GET("/me/services", serviceHandler.List)
			secured.POST("/me/services", serviceHandler.Create)
			secured.PATCH("/me/services/:id", serviceHandler.Update)

			// ------------------------------
			// KENNELS
			// ------------------------------
			secured.GET("/me/kennels", kennelHandler.List)
			secured.GET("/me/kennels/available", kennelHandler.Available)
			secured.POST("/me/kennels", kennelHandler.Create)
			secured.PATCH("/me/kennels/:id", kennelHandler.Update)
			secured.DELETE("/me/kennels/:id", kennelHandler.Delete)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.GET("/me/appointments", appointmentHandler.ListByDate)
			secured.GET("/me/appointments/month", appointmentHandler.ListByMonth)
			secured.GET("/me/appointments/overdue", appointmentHandler.Overdue)
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.PATCH("/me/appointments/:id", appointmentHandler.Update)
			secured.DELETE("/me/appointments/:id", appointmentHandler.Delete)

			secured.GET("/me/appointments/:id/kennels", kennelHandler.Available)
			secured.POST("/me/appointments/:id/check-in", appointmentHandler.CheckIn)
			secured.POST("/me/appointments/:id/start", appointmentHandler.Start)
			secured.POST("/me/appointments/:id/ready", appointmentHandler.Ready)
			secured.POST("/me/appointments/:id/check-out", appointmentHandler.CheckOut)
			secured.POST("/me/appointments/:id/status", appointmentHandler.SetStatus)
			secured.POST("/me/appointments/:id/notes", appointmentHandler.AddNote)

			// ------------------------------
			// PAYMENTS
			// ------------------------------
			secured.POST("/me/payments", paymentHandler.Record)
			secured.GET("/me/payments", paymentHandler.List)

			secured.GET("/me/usage", usageHandler.Get)
			secured.GET("/me/audit-logs", auditLogsHandler.List)
		}
	}
}
