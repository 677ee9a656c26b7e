package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"anonrelay/global"
	"anonrelay/logger"
	"anonrelay/middleware"
	"anonrelay/service/ratelimit"
	"anonrelay/service/relay"
	"anonrelay/service/storage"
	redisstore "anonrelay/service/storage/redis"
	"anonrelay/tools/ids"
)

func main() {
	_ = godotenv.Load()

	cfg, err := global.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ids.SetNodeID(cfg.NodeID)

	// The shared store is optional: without it (or when it is down at boot)
	// the relay runs entirely on in-process backends.
	if cfg.RedisAddr != "" {
		if err := redisstore.Init(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			PoolSize: cfg.RedisPoolSize,
		}); err != nil {
			logger.Warnf("[boot] redis unavailable, running on local backends: %v", err)
		}
	}

	var sharedStore storage.Store
	var sharedLimiter ratelimit.Limiter
	if rdb := redisstore.Client(); rdb != nil {
		sharedStore = storage.NewRedisStore(rdb, cfg.ChannelName, cfg.HistoryCapacity, cfg.HistoryRetention)
		sharedLimiter = ratelimit.NewRedisLimiter(rdb)
	}

	store := storage.NewFallbackStore(sharedStore, storage.NewMemoryStore(cfg.HistoryCapacity), cfg.BackendTimeout)
	limits := ratelimit.NewService(sharedLimiter, ratelimit.NewMemoryLimiter(ratelimit.MemoryConf{}), cfg.BackendTimeout)
	defer limits.Close()

	srv := relay.NewServer(cfg, store, limits)
	defer srv.Shutdown()

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ws", srv.HandleWS)
	r.GET("/health", middleware.RateLimit(ratelimit.NewAPILimiter(limits)), srv.HandleHealth)
	r.POST("/admin/reset", middleware.RateLimit(ratelimit.NewBurstLimiter(limits)), srv.HandleReset)

	logger.Infof("[boot] relay listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}
