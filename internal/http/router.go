package http

import (
	"net/http"
	"time"

	"github.com/Depado/ginprom"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"support-desk/internal/domain"
	"support-desk/internal/service"
)

// RouterOptions agrupa lo que el router toma de la configuración.
type RouterOptions struct {
	Production  bool
	CORSOrigins []string
	// Registry expone las métricas en /metrics; si es nil se crea uno propio.
	Registry *prometheus.Registry
}

// Handlers reúne los handlers que monta el router.
type Handlers struct {
	Auth           *AuthHandler
	User           *UserHandler
	Booking        *BookingHandler
	ServiceRequest *ServiceRequestHandler
	TicketLog      *TicketLogHandler
	Health         *HealthHandler
}

// NewRouter configura el router de Gin con middlewares y rutas de la API.
func NewRouter(
	logger *zap.Logger,
	opts RouterOptions,
	jwtSvc *service.JWTService,
	users UserResolver,
	h Handlers,
) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"http://localhost:3000"}
	}
	useJSONFieldNames()

	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Origin", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	p := ginprom.New(
		ginprom.Engine(r),
		ginprom.Registry(opts.Registry),
		ginprom.Subsystem("gin"),
		ginprom.Path("/metrics"),
	)
	r.Use(p.Instrument())
	r.Use(errorMiddleware(logger, opts.Production))

	r.GET("/healthz", h.Health.Health)

	gate := func(roles ...domain.Role) gin.HandlerFunc {
		return JWTAuthMiddleware(jwtSvc, users, roles...)
	}
	const (
		user       = domain.RoleUser
		admin      = domain.RoleAdmin
		superAdmin = domain.RoleSuperAdmin
	)

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/verify-otp", h.Auth.VerifyOTP)
	auth.POST("/forgot-password", h.Auth.ForgotPassword)
	auth.PATCH("/reset-password/:token", h.Auth.ResetPassword)
	auth.POST("/refresh-token", h.Auth.RefreshToken)
	auth.POST("/logout", h.Auth.Logout)

	booking := api.Group("/booking")
	booking.POST("", gate(user, admin), h.Booking.CreateBooking)
	booking.GET("", gate(user, admin), h.Booking.ListBookings)
	booking.POST("/available-slots", h.Booking.AvailableSlots)

	profile := api.Group("/user")
	profile.GET("", gate(user, admin, superAdmin), h.User.GetProfile)
	profile.PATCH("", gate(user, admin, superAdmin), h.User.UpdateProfile)

	tickets := api.Group("/service-request")
	tickets.POST("", gate(user), h.ServiceRequest.Create)
	tickets.GET("", gate(user), h.ServiceRequest.ListOwn)
	tickets.GET("/all", gate(admin), h.ServiceRequest.ListAll)
	tickets.PATCH("/:id/status", gate(admin), h.ServiceRequest.UpdateStatus)
	tickets.GET("/request-types", h.ServiceRequest.RequestTypes)

	notes := api.Group("/additional-information")
	notes.POST("", gate(user, admin), h.TicketLog.AddNote)
	notes.GET("/:id", gate(user, admin), h.TicketLog.ListNotes)

	spent := api.Group("/spent-time")
	spent.POST("", gate(admin), h.TicketLog.AddSpentTime)
	spent.GET("/:serviceId", gate(user, admin), h.TicketLog.SpentTime)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
