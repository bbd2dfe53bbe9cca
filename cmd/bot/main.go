package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"ruby-bot/internal/adapter"
	"ruby-bot/internal/agent"
	"ruby-bot/internal/ambient"
	"ruby-bot/internal/discord"
	"ruby-bot/internal/graph"
	"ruby-bot/pkg/config"
	"ruby-bot/pkg/logger"
)

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting Ruby...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	if cfg.DiscordBotToken == "" {
		log.Fatal("DISCORD_BOT_TOKEN is required")
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

	// Create Discord session
	dg, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		log.Fatal("Failed to create Discord session", zap.Error(err))
	}

	// Initialize dependencies
	graphRepo := graph.NewRepository(driver)
	llmAdapter := adapter.NewLLMAdapter(
		cfg.LLMBaseURL, cfg.LLMAPIKey,
		cfg.ChatModel, cfg.VisionModel, cfg.ClassifierModel,
		cfg.LLMTimeout,
	)
	sender := discord.NewResponseSender(dg)
	orch := agent.NewOrchestrator(graphRepo, llmAdapter, sender, cfg.MemoryLimit, cfg.UpdateEvery)
	scheduler := ambient.NewScheduler(cfg.AmbientChance, cfg.AmbientCooldown)

	// Create message handler
	messageHandler := discord.NewHandler(orch, graphRepo, scheduler, log)
	dg.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		messageHandler.HandleMessage(s, m)
	})

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	// Open connection
	if err := dg.Open(); err != nil {
		log.Fatal("Failed to open Discord connection", zap.Error(err))
	}
	defer dg.Close()

	log.Info("Ruby is running. Press CTRL-C to exit.",
		zap.Float64("ambient_chance", cfg.AmbientChance),
		zap.Duration("ambient_cooldown", cfg.AmbientCooldown),
		zap.Int("update_every", cfg.UpdateEvery),
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Ruby...")
}
