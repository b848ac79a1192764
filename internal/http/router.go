package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/deangilmoreremix/smartcrm-backend/internal/http/handlers"
	httpMW "github.com/deangilmoreremix/smartcrm-backend/internal/http/middleware"
	"github.com/deangilmoreremix/smartcrm-backend/internal/observability"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
)

type RouterConfig struct {
	Logger  *logger.Logger
	Metrics *observability.Metrics
	Tracing bool

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	UserHandler         *httpH.UserHandler
	ContactHandler      *httpH.ContactHandler
	DealHandler         *httpH.DealHandler
	ActivityHandler     *httpH.ActivityHandler
	EmailHandler        *httpH.EmailHandler
	SMSHandler          *httpH.SMSHandler
	SequenceHandler     *httpH.SequenceHandler
	WebhookHandler      *httpH.WebhookHandler
	AnalyticsHandler    *httpH.AnalyticsHandler
	NotificationHandler *httpH.NotificationHandler
	RealtimeHandler     *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachTraceContext())
	if cfg.Tracing {
		r.Use(otelgin.Middleware("smartcrm-backend"))
	}
	if cfg.Logger != nil {
		r.Use(httpMW.RequestLogger(cfg.Logger))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}

		// Inbound webhooks authenticate with a shared secret, not a JWT.
		if cfg.WebhookHandler != nil {
			api.POST("/webhooks/zapier", cfg.WebhookHandler.Zapier)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me", cfg.UserHandler.UpdateMe)
		}

		// Contacts
		if cfg.ContactHandler != nil {
			protected.POST("/contacts", cfg.ContactHandler.Create)
			protected.GET("/contacts", cfg.ContactHandler.List)
			protected.GET("/contacts/:id", cfg.ContactHandler.Get)
			protected.PATCH("/contacts/:id", cfg.ContactHandler.Update)
			protected.DELETE("/contacts/:id", cfg.ContactHandler.Delete)
			protected.POST("/contacts/:id/score", cfg.ContactHandler.RecomputeScore)
			protected.POST("/contacts/:id/enrich", cfg.ContactHandler.Enrich)
			protected.GET("/contacts/:id/activities", cfg.ContactHandler.ListActivities)
		}

		// Deals
		if cfg.DealHandler != nil {
			protected.POST("/deals", cfg.DealHandler.Create)
			protected.GET("/deals", cfg.DealHandler.List)
			protected.GET("/deals/pipeline", cfg.DealHandler.Pipeline)
			protected.GET("/deals/:id", cfg.DealHandler.Get)
			protected.PATCH("/deals/:id", cfg.DealHandler.Update)
			protected.DELETE("/deals/:id", cfg.DealHandler.Delete)
			protected.POST("/deals/:id/stage", cfg.DealHandler.ChangeStage)
		}

		// Activities
		if cfg.ActivityHandler != nil {
			protected.POST("/activities", cfg.ActivityHandler.Create)
		}

		// AI email generation
		if cfg.EmailHandler != nil {
			protected.POST("/emails/generate", cfg.EmailHandler.Generate)
		}

		// SMS
		if cfg.SMSHandler != nil {
			protected.POST("/sms/send", cfg.SMSHandler.Send)
		}

		// Sequences
		if cfg.SequenceHandler != nil {
			protected.POST("/sequences/generate", cfg.SequenceHandler.Generate)
			protected.GET("/sequences", cfg.SequenceHandler.List)
			protected.GET("/sequences/:id", cfg.SequenceHandler.Get)
			protected.POST("/sequences/:id/activate", cfg.SequenceHandler.Activate)
			protected.POST("/sequences/:id/pause", cfg.SequenceHandler.Pause)
			protected.POST("/sequences/:id/resume", cfg.SequenceHandler.Resume)
			protected.DELETE("/sequences/:id", cfg.SequenceHandler.Delete)
		}

		// Webhook audit trail
		if cfg.WebhookHandler != nil {
			protected.GET("/webhooks/events", cfg.WebhookHandler.ListRecent)
		}

		// Analytics
		if cfg.AnalyticsHandler != nil {
			protected.GET("/analytics/dashboard", cfg.AnalyticsHandler.Dashboard)
		}

		// Notifications
		if cfg.NotificationHandler != nil {
			protected.GET("/notifications", cfg.NotificationHandler.List)
			protected.POST("/notifications/read", cfg.NotificationHandler.MarkRead)
			protected.POST("/notifications/read-all", cfg.NotificationHandler.MarkAllRead)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/realtime/stream", cfg.RealtimeHandler.Stream)
			protected.POST("/realtime/subscribe", cfg.RealtimeHandler.Subscribe)
			protected.POST("/realtime/unsubscribe", cfg.RealtimeHandler.Unsubscribe)
		}
	}

	return r
}
