package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-backend/internal/config"
	"github.com/pu-ac-cn/rbac-backend/internal/database"
	"github.com/pu-ac-cn/rbac-backend/internal/handler"
	"github.com/pu-ac-cn/rbac-backend/internal/logger"
	"github.com/pu-ac-cn/rbac-backend/internal/lookup"
	"github.com/pu-ac-cn/rbac-backend/internal/redis"
	"github.com/pu-ac-cn/rbac-backend/internal/repository"
	"github.com/pu-ac-cn/rbac-backend/internal/service"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// 加载配置
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化日志
	zlog, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zlog.Sync()

	// 初始化数据库连接
	if err := database.Init(&cfg.Database); err != nil {
		zlog.Fatal("初始化数据库失败", zap.Error(err))
	}
	defer database.Close()
	zlog.Info("数据库连接成功", zap.String("driver", cfg.Database.Driver))

	// 初始化 Redis 连接
	if err := redis.Init(&cfg.Redis); err != nil {
		zlog.Fatal("初始化 Redis 失败", zap.Error(err))
	}
	defer redis.Close()
	zlog.Info("Redis 连接成功", zap.String("addr", cfg.Redis.Addr))

	// 组织/职位服务
	orgClient := lookup.NewOrganizationClient(lookup.ClientConfig{
		BaseURL:    cfg.Lookup.OrganizationURL,
		Timeout:    cfg.Lookup.Timeout,
		RetryCount: cfg.Lookup.RetryCount,
	}, zlog)
	positionClient := lookup.NewPositionClient(lookup.ClientConfig{
		BaseURL:    cfg.Lookup.PositionURL,
		Timeout:    cfg.Lookup.Timeout,
		RetryCount: cfg.Lookup.RetryCount,
	}, zlog)
	var orgs lookup.OrganizationService = orgClient
	var positions lookup.PositionService = positionClient
	if cfg.Lookup.CacheTTL > 0 {
		orgs = lookup.NewCachedOrganizationService(orgClient, redis.GetClient(), cfg.Lookup.CacheTTL, zlog)
		positions = lookup.NewCachedPositionService(positionClient, redis.GetClient(), cfg.Lookup.CacheTTL, zlog)
	}

	// 初始化 Repository
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permRepo := repository.NewPermissionRepository(db)

	// 初始化 Service
	policy, err := service.ParseEnrichPolicy(cfg.Enrichment.Policy)
	if err != nil {
		zlog.Fatal("补全策略配置错误", zap.Error(err))
	}
	enricher := service.NewEnricher(orgs, positions, policy, cfg.Enrichment.Workers, zlog)
	resolver := service.NewEligibilityResolver(userRepo, roleRepo, enricher)
	compositor := service.NewQueryCompositor(userRepo, orgs, enricher)
	identity := service.NewIdentityChecker(userRepo)
	tree := service.NewPermissionTreeBuilder(permRepo, zlog)

	userDomain := service.NewUserDomainService(userRepo, resolver, compositor, enricher, zlog)
	userService := service.NewUserService(userRepo, userDomain, identity, resolver, compositor, zlog)
	roleService := service.NewRoleService(roleRepo, permRepo, userRepo, tree, enricher, zlog)

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Users:       userService,
		Roles:       roleService,
		Verifier:    service.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer),
		Permissions: permRepo,
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": func(context.Context) error { return database.Ping() },
			"redis":    redis.Ping,
		}),
		Logger: zlog,
	})

	// 创建 HTTP 服务器
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zlog.Info("服务启动", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("正在关闭服务...")

	// 优雅关闭，等待 5 秒
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("服务关闭失败", zap.Error(err))
	}

	zlog.Info("服务已关闭")
}
