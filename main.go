package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/shilloon/Virtual-Statistics-site/api/rest"
	"github.com/shilloon/Virtual-Statistics-site/cache"
	"github.com/shilloon/Virtual-Statistics-site/config"
	dbadapter "github.com/shilloon/Virtual-Statistics-site/db"
	mw "github.com/shilloon/Virtual-Statistics-site/middleware"
	"github.com/shilloon/Virtual-Statistics-site/model"
	"github.com/shilloon/Virtual-Statistics-site/ranking"
	"github.com/shilloon/Virtual-Statistics-site/scheduler"
	"github.com/shilloon/Virtual-Statistics-site/seed"
	"github.com/shilloon/Virtual-Statistics-site/stats"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := flag.String("config", "config/config.yaml", "path to config file")
	seedCount := flag.Int("seed", 0, "generate N fake players and exit")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// Seed-and-exit mode for local development.
	if *seedCount > 0 {
		summary, err := seed.Run(context.Background(), db, logger, seed.Options{Players: *seedCount})
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		logger.Info("seed done",
			zap.Int("players", summary.Players),
			zap.Int("items", summary.Items),
			zap.Int("skills", summary.Skills),
			zap.Int("usages", summary.Usages))
		return
	}

	// ---- Cache ----
	c, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	if cfg.Cache.RedisAddr != "" {
		logger.Info("Redis cache connected", zap.String("addr", cfg.Cache.RedisAddr))
	} else {
		logger.Info("Using in-process cache")
	}

	// ---- Services ----
	rankSvc := ranking.NewService(db, c, logger)
	statsSvc := stats.NewService(db, logger)
	feed := stats.NewFeed(statsSvc, cfg.Stats.IngestBuffer, logger)
	defer feed.Stop()

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	sched.AddTicker("leaderboard_refresh", cfg.Stats.LeaderboardRefresh, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if n, err := rankSvc.RefreshLeaderboard(ctx); err != nil {
			logger.Error("leaderboard refresh failed", zap.Error(err))
		} else {
			logger.Debug("leaderboard refreshed", zap.Int("entries", n))
		}
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	playerH := apirest.NewPlayerHandler(db, rankSvc, logger)
	itemH := apirest.NewItemHandler(db, rankSvc, logger)
	skillH := apirest.NewSkillHandler(db, rankSvc, logger)
	analyticsH := apirest.NewAnalyticsHandler(rankSvc, logger)
	adminH := apirest.NewAdminHandler(db, rankSvc, feed, sched, logger)

	api := r.Group("/api")
	{
		playersG := api.Group("/players")
		playersG.GET("", playerH.List)
		playersG.GET("/top_rankers", playerH.TopRankers)
		playersG.GET("/tier_stats", playerH.TierStats)
		playersG.GET("/:id", playerH.Get)

		itemsG := api.Group("/items")
		itemsG.GET("", itemH.List)
		itemsG.GET("/popular", itemH.Popular)
		itemsG.GET("/:id", itemH.Get)

		skillsG := api.Group("/skills")
		skillsG.GET("", skillH.List)
		skillsG.GET("/popular", skillH.Popular)
		skillsG.GET("/:id", skillH.Get)

		statsG := api.Group("/stats")
		statsG.GET("/top_players_items", analyticsH.TopPlayersItems)
		statsG.GET("/top_players_skills", analyticsH.TopPlayersSkills)

		adminG := api.Group("/admin")
		adminG.Use(mw.IPWhitelist(cfg.Security.AdminIPs))
		adminG.Use(apirest.AdminAuth(cfg.Server.AdminKey))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.POST("/seed", adminH.Seed)
		adminG.POST("/ranking/refresh", adminH.RefreshRanking)
		adminG.POST("/usage_events", adminH.IngestUsage)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
