package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"ruby-bot/internal/agent"
	"ruby-bot/internal/graph"
	"ruby-bot/pkg/config"
	apperrors "ruby-bot/pkg/errors"
	"ruby-bot/pkg/logger"
)

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify Neo4j connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	// Initialize dependencies. This binary is a read-only view over the
	// graph; it never generates replies, so no LLM client is wired here.
	graphRepo := graph.NewRepository(driver)
	aggregator := agent.NewLeaderboardAggregator(graphRepo)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		// Relationship snapshot for one user
		api.GET("/stats/:discord_id", func(c *gin.Context) {
			discordID := c.Param("discord_id")
			ctx := c.Request.Context()

			uc, err := graphRepo.GetUserContextByDiscordID(ctx, discordID)
			if err != nil {
				if apperrors.IsNotFound(err) {
					c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
					return
				}
				log.Error("Failed to fetch user stats", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"discord_id":   uc.User.DiscordID,
				"username":     uc.User.Username,
				"nickname":     uc.Nickname,
				"relationship": uc.Relationship,
				"personality":  uc.Personality,
			})
		})

		// Cross-user standings
		api.GET("/leaderboard", func(c *gin.Context) {
			ctx := c.Request.Context()

			lb, err := aggregator.Aggregate(ctx)
			if err != nil {
				log.Error("Failed to aggregate leaderboard", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"favorite":           lb.Favorite,
				"high_affinity":      lb.HighAffinity,
				"low_affinity":       lb.LowAffinity,
				"high_trust":         lb.HighTrust,
				"low_trust":          lb.LowTrust,
				"high_jealousy":      lb.HighJealousy,
				"never_jealous":      lb.NeverJealous,
				"most_insults":       lb.MostInsults,
				"never_insulted":     lb.NeverInsulted,
				"most_compliments":   lb.MostCompliments,
				"never_complimented": lb.NeverComplimented,
			})
		})
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
