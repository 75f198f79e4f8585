package rest

import (
	"cardiostent/internal/cache"
	"cardiostent/internal/service"
	"cardiostent/internal/transport/rest/handler"
	"cardiostent/internal/transport/rest/middleware"
	"cardiostent/internal/transport/ws"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService       *service.AuthService
	SubmissionService *service.SubmissionService
	AnalyticsService  *service.AnalyticsService
	ReportService     *service.ReportService
	ExportService     *service.ExportService
	WSHub             *ws.Hub
	SubmitLimiter     cache.RateLimiter // nil disables submit rate limiting
	StaticDir         string
	AllowedOrigins    []string
	Logger            *zap.Logger
}

// NewRouter creates the HTTP router with all endpoints
func NewRouter(c *Container) http.Handler {
	log := c.Logger
	if log == nil {
		log = zap.NewNop()
	}
	r := mux.NewRouter()

	// Initialize handlers
	staticHandler := handler.NewStaticHandler(c.StaticDir)
	submitHandler := handler.NewSubmitHandler(c.SubmissionService, log)
	adminHandler := handler.NewAdminHandler(c.AnalyticsService, log)
	reportHandler := handler.NewReportHandler(c.ReportService, log)
	exportHandler := handler.NewExportHandler(c.ExportService, log)
	authHandler := handler.NewAuthHandler(c.AuthService, log)
	wsHandler := ws.NewHandler(c.WSHub, log)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService, log)

	// Public routes
	r.HandleFunc("/", staticHandler.Index).Methods("GET")
	r.HandleFunc("/health", handler.Health).Methods("GET")

	submit := http.Handler(http.HandlerFunc(submitHandler.Submit))
	if c.SubmitLimiter != nil {
		submit = middleware.RateLimit(c.SubmitLimiter, log)(submit)
	}
	r.Handle("/api/submit", submit).Methods("POST")

	// WebSocket route (token may come in the query string)
	r.Handle("/admin/ws", authMW.RequireAdminWS(http.HandlerFunc(wsHandler.AdminWS))).Methods("GET")

	// Token issuance takes Basic credentials only
	r.Handle("/admin/token", authMW.RequireBasic(http.HandlerFunc(authHandler.Token))).Methods("POST")

	// Admin routes (require admin auth)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(authMW.RequireAdmin)

	admin.HandleFunc("", adminHandler.Dashboard).Methods("GET")
	admin.HandleFunc("/", adminHandler.Dashboard).Methods("GET")
	admin.HandleFunc("/api/analytics", adminHandler.Analytics).Methods("GET")
	admin.HandleFunc("/report/{id}", reportHandler.Report).Methods("GET")
	admin.HandleFunc("/export", exportHandler.Export).Methods("GET")
	admin.HandleFunc("/export/archive", exportHandler.Archive).Methods("POST")

	origins := c.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsMW := cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	})

	return middleware.AccessLog(log)(corsMW(r))
}
