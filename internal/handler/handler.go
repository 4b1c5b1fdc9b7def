package handler

import (
	"database/sql"
	"net/http"

	"job_tracker/internal/auth"
	"job_tracker/internal/config"
	"job_tracker/internal/job"
	"job_tracker/internal/middleware"
	"job_tracker/internal/observability"
	"job_tracker/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Dependencies are the long-lived resources shared by every request.
type Dependencies struct {
	DB       *sql.DB
	Tokens   *auth.TokenIssuer
	Cache    job.Cache
	Events   job.EventPublisher
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
}

// SetupHandler initializes all dependencies and routes
func SetupHandler(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.PrometheusMiddleware(deps.Metrics))

	// Initialize repositories
	userRepo := user.NewUserRepository()
	jobRepo := job.NewJobRepository()

	// Initialize services
	userService := user.NewUserService(userRepo, deps.DB, deps.Tokens, deps.Events, deps.Cache, deps.Metrics)
	jobService := job.NewJobService(jobRepo, deps.DB, deps.Cache, deps.Events, deps.Metrics)

	// Initialize controllers
	userController := user.NewUserController(userService)
	jobController := job.NewJobController(jobService)
	healthController := NewHealthController(deps.DB)

	setupRoutes(r, userController, jobController, healthController, deps)

	return r
}

// setupRoutes configures all application routes
func setupRoutes(r *gin.Engine, userCtrl *user.UserController, jobCtrl *job.JobController, healthCtrl *HealthController, deps Dependencies) {
	r.GET("/health", healthCtrl.Readiness)
	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	authMiddleware := middleware.AuthMiddleware(deps.Tokens, deps.Metrics)

	api := r.Group("/api")
	{
		// Public routes
		api.POST("/register", userCtrl.Register)
		api.POST("/login", userCtrl.Login)

		users := api.Group("/users", authMiddleware)
		users.GET("", userCtrl.ListUsers)
		users.GET("/:id", userCtrl.GetUser)
		users.PUT("/:id", middleware.RequireOwner("id"), userCtrl.UpdateUser)
		users.DELETE("/:id", middleware.RequireOwner("id"), userCtrl.DeleteUser)

		jobs := api.Group("/:user_id/jobs", authMiddleware, middleware.RequireOwner("user_id"))
		jobs.POST("", jobCtrl.CreateJob)
		jobs.GET("", jobCtrl.ListJobs)
		jobs.GET("/:id", jobCtrl.GetJob)
		jobs.PUT("/:id", jobCtrl.UpdateJob)
		jobs.DELETE("/:id", jobCtrl.DeleteJob)
	}
}

// NewHTTPHandler wraps engine with the CORS policy.
func NewHTTPHandler(engine *gin.Engine, cfg config.CORSConfig) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPut,
			http.MethodPatch,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(engine)
}
