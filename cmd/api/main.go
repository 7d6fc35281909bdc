package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ItzYourBread/cashmash-sub000/internal/config"
	"github.com/ItzYourBread/cashmash-sub000/internal/handlers"
	"github.com/ItzYourBread/cashmash-sub000/internal/ledger"
	"github.com/ItzYourBread/cashmash-sub000/internal/middleware"
	"github.com/ItzYourBread/cashmash-sub000/internal/outcome"
	"github.com/ItzYourBread/cashmash-sub000/internal/rng"
	"github.com/ItzYourBread/cashmash-sub000/internal/round"
	"github.com/ItzYourBread/cashmash-sub000/internal/session"
	"github.com/ItzYourBread/cashmash-sub000/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}

	if cfg.Env == "production" {
		log.SetFormatter(&log.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}

	redisStore, err := store.NewRedisStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisStore.Close()

	src := rng.NewTimeSeeded()
	bank := ledger.New(redisStore)

	generator := outcome.NewGenerator(bank, src)
	mines := session.NewMines(bank, src)
	blackjack := session.NewBlackjack(bank, src)

	hub := handlers.NewWebSocketHub()
	engine := round.NewEngine(bank, src, quartz.NewReal(), hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go engine.Run(ctx)
	defer engine.Stop()

	// Periodic rakeback drain, detached from per-bet accounting.
	go func() {
		ticker := time.NewTicker(cfg.RakebackInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				bank.DrainAllRakeback(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	jwtService := middleware.NewJWTService(cfg)

	authHandler := handlers.NewAuthHandler(jwtService)
	userHandler := handlers.NewUserHandler(bank)
	roundHandler := handlers.NewRoundHandler(engine)
	sessionHandler := handlers.NewSessionHandler(mines, blackjack)
	spinHandler := handlers.NewSpinHandler(generator)
	wsHandler := handlers.NewWebSocketHandler(hub)

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/auth/token", authHandler.IssueToken)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.Use(middleware.RateLimitMiddleware(redisStore))
	{
		protected.GET("/balance", userHandler.GetBalance)
		protected.GET("/history", userHandler.GetHistory)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		games := protected.Group("/games")
		{
			crash := games.Group("/crash")
			{
				crash.POST("/bet", roundHandler.PlaceBet)
				crash.POST("/cashout", roundHandler.CashOut)
				crash.GET("/round", roundHandler.Snapshot)
			}

			minesGroup := games.Group("/mines")
			{
				minesGroup.POST("/start", sessionHandler.StartMines)
				minesGroup.POST("/reveal", sessionHandler.RevealMines)
				minesGroup.POST("/cashout", sessionHandler.CashOutMines)
			}

			blackjackGroup := games.Group("/blackjack")
			{
				blackjackGroup.POST("/start", sessionHandler.StartBlackjack)
				blackjackGroup.POST("/hit", sessionHandler.HitBlackjack)
				blackjackGroup.POST("/stand", sessionHandler.StandBlackjack)
			}

			games.POST("/spin", spinHandler.Spin)
			games.POST("/cards", spinHandler.Cards)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
}
