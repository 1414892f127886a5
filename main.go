package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lifeonloan/wealth-api/config"
	"github.com/lifeonloan/wealth-api/middleware"
	"github.com/lifeonloan/wealth-api/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	db, err := config.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	log.Println("✅ Database connected successfully")

	if err := config.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	router := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("📨 %s %s - %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	})

	router.Use(middleware.RateLimiter(100, time.Minute))

	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, db, cfg)

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			routes.SetupBudgetRoutes(protected, db, cfg)
			routes.SetupUserRoutes(protected, db)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	log.Printf("🚀 Server starting on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
