package routes

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"github.com/lifeonloan/wealth-api/config"
	"github.com/lifeonloan/wealth-api/handlers"
	"github.com/lifeonloan/wealth-api/services"
)

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, db *sql.DB, cfg *config.Config) {
	authHandler := &handlers.AuthHandler{DB: db, JWTSecret: cfg.JWTSecret}

	rg.POST("/auth/signup", authHandler.Signup)
	rg.POST("/auth/login", authHandler.Login)
}

// SetupBudgetRoutes sets up the protected budget analysis routes.
func SetupBudgetRoutes(rg *gin.RouterGroup, db *sql.DB, cfg *config.Config) {
	var adviceService services.AdviceService
	if cfg.GeminiAPIKey != "" {
		adviceService = services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiAPIURL, cfg.AdviceTimeout)
	}

	budgetService := services.NewBudgetService(
		services.NewPostgresBudgetStore(db),
		services.NewAggregator(cfg.CoerceInvalidAmounts),
		services.NewPieChartRenderer(),
		services.NewAdviceClient(adviceService),
	)

	h := handlers.NewBudgetHandler(budgetService)

	rg.POST("/budgets", h.SubmitBudget)
	rg.GET("/budgets/:id", h.GetBudget)
	rg.GET("/dashboard", h.GetDashboard)
	rg.GET("/history", h.GetHistory)
}

// SetupUserRoutes sets up protected user routes.
func SetupUserRoutes(rg *gin.RouterGroup, db *sql.DB) {
	userHandler := &handlers.UserHandler{DB: db}

	rg.GET("/user/profile", userHandler.GetProfile)
	rg.POST("/user/password", userHandler.ChangePassword)
	rg.POST("/user/2fa/setup", userHandler.SetupTOTP)
	rg.POST("/user/2fa/verify", userHandler.VerifyTOTP)
	rg.POST("/user/2fa/disable", userHandler.DisableTOTP)
}
