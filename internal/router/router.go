package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/formpulse/formpulse-backend/internal/config"
	"github.com/formpulse/formpulse-backend/internal/handler"
	"github.com/formpulse/formpulse-backend/internal/middleware"
	"github.com/formpulse/formpulse-backend/internal/response"
	"github.com/formpulse/formpulse-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	SurveyAdmin   *handler.SurveyAdminHandler
	ResponseAdmin *handler.ResponseAdminHandler
	Respondent    *handler.RespondentHandler
	WS            *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Respondent Group (Public) ──────────────────────────────────
	// Survey taking needs no account: published surveys are open by link.
	respondentAPI := router.Group("/api/v1/surveys")
	{
		respondentAPI.GET("/:survey_id", handlers.Respondent.GetSurvey)
		respondentAPI.POST("/:survey_id/responses", handlers.Respondent.SubmitResponse)
		respondentAPI.POST("/:survey_id/logic/evaluate", handlers.Respondent.EvaluateLogic)
	}

	// ─── 3. WebSocket Group (Public) ───────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/surveys/:survey_id/session", handlers.WS.SurveySessionStream)
	}

	// ─── 4. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/surveys", handlers.SurveyAdmin.ListSurveys)
		adminAPI.POST("/surveys", handlers.SurveyAdmin.CreateSurvey)
		adminAPI.GET("/surveys/:id", handlers.SurveyAdmin.GetSurvey)
		adminAPI.PUT("/surveys/:id", handlers.SurveyAdmin.UpdateSurvey)
		adminAPI.DELETE("/surveys/:id", handlers.SurveyAdmin.DeleteSurvey)
		adminAPI.POST("/surveys/:id/publish", handlers.SurveyAdmin.PublishSurvey)
		adminAPI.PUT("/surveys/:id/scoring", handlers.SurveyAdmin.UpdateScoringConfig)
		adminAPI.POST("/surveys/:id/scoring/validate", handlers.SurveyAdmin.ValidateScoringConfig)
		adminAPI.GET("/surveys/:id/responses", handlers.ResponseAdmin.ListResponses)
		adminAPI.GET("/responses/:id", handlers.ResponseAdmin.GetResponse)
	}

	return router
}
