package raid

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	custommiddleware "tsu-raid/internal/middleware"
	"tsu-raid/internal/modules/raid/handler"
	"tsu-raid/internal/modules/raid/service"
	"tsu-raid/internal/modules/raid/tasks"
	"tsu-raid/internal/pkg/config"
	"tsu-raid/internal/pkg/i18n"
	"tsu-raid/internal/pkg/log"
	"tsu-raid/internal/pkg/metrics"
	redisClient "tsu-raid/internal/pkg/redis"
	"tsu-raid/internal/pkg/response"
	"tsu-raid/internal/pkg/security"
	"tsu-raid/internal/pkg/trace"
	"tsu-raid/internal/pkg/validation"
	"tsu-raid/internal/pkg/validator"

	"github.com/labstack/echo/v4"
	"github.com/liangdas/mqant/conf"
	"github.com/liangdas/mqant/module"
	basemodule "github.com/liangdas/mqant/module/base"
	"github.com/liangdas/mqant/server"
	_ "github.com/lib/pq"
)

type RaidModule struct {
	basemodule.BaseModule
	db                  *sql.DB
	redis               *redisClient.Client
	httpServer          *echo.Echo
	serviceContainer    *service.ServiceContainer
	encounterHandler    *handler.EncounterHandler
	lootHandler         *handler.LootHandler
	lockoutHandler      *handler.LockoutHandler
	writerHandler       *handler.WriterHandler
	rpcHandler          *handler.RaidRPCHandler
	lockoutSweepTask    *tasks.LockoutSweepTask
	encounterExpireTask *tasks.EncounterExpireTask
	respWriter          response.Writer
}

// GetType returns module type
func (m *RaidModule) GetType() string {
	return "raid"
}

// Version returns module version
func (m *RaidModule) Version() string {
	return "1.0.0"
}

// OnAppConfigurationLoaded 当App初始化时调用
func (m *RaidModule) OnAppConfigurationLoaded(app module.App) {
	m.BaseModule.OnAppConfigurationLoaded(app)
}

// OnInit module initialization
func (m *RaidModule) OnInit(app module.App, settings *conf.ModuleSettings) {
	metrics.SetServiceName("raid")
	// 按照 mqant 官方推荐：在每个模块的 OnInit 中配置服务注册参数
	// TTL = 30s, 心跳间隔 = 15s (TTL 必须大于心跳间隔)
	m.BaseModule.OnInit(m, app, settings,
		server.RegisterInterval(15*time.Second),
		server.RegisterTTL(30*time.Second),
	)

	// 1. Initialize database connection (归档存储，可选)
	if err := m.initDatabase(settings); err != nil {
		fmt.Printf("[Raid Module] Database unavailable, archive disabled: %v\n", err)
	}

	// 2. Initialize Redis (锁定记录与写合并落盘)
	if err := m.initRedis(settings); err != nil {
		panic(fmt.Sprintf("Failed to initialize Redis: %v", err))
	}

	// 3. Initialize response writer
	m.initResponseWriter()

	// 4. Initialize HTTP server
	m.initHTTPServer()

	// 5. Initialize Services and Handlers
	m.initServicesAndHandlers()

	// 6. Setup routes
	m.setupRoutes()

	// 7. Setup RPC methods
	m.setupRPCMethods()

	// 8. Start cron tasks
	m.startCronTasks()

	// 9. Start HTTP server in background
	go m.startHTTPServer(settings)

	m.GetServer().Options()
}

// initDatabase initializes database connection
func (m *RaidModule) initDatabase(settings *conf.ModuleSettings) error {
	// Read from environment variable first
	dbURL := os.Getenv("TSU_RAID_DATABASE_URL")
	if dbURL == "" {
		// Fallback to config file
		if settings != nil && settings.Settings != nil {
			dbURLInterface, ok := settings.Settings["database_url"]
			if ok {
				dbURL, _ = dbURLInterface.(string)
			}
		}
	}

	if dbURL == "" {
		return fmt.Errorf("TSU_RAID_DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	m.db = db
	fmt.Println("[Raid Module] Database initialized successfully")

	// 启动数据库连接池监控
	go m.startDBPoolMonitoring(db)

	return nil
}

// initRedis initializes Redis client
func (m *RaidModule) initRedis(settings *conf.ModuleSettings) error {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}

	port := 6379
	if portStr := os.Getenv("REDIS_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	password := os.Getenv("REDIS_PASSWORD")

	dbIndex := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if d, err := strconv.Atoi(dbStr); err == nil {
			dbIndex = d
		}
	}

	client, err := redisClient.NewClient(redisClient.Config{
		Host:     host,
		Port:     port,
		Password: password,
		DB:       dbIndex,
	}, metrics.GetServiceName())
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.redis = client
	fmt.Printf("[Raid Module] Redis connected successfully (Host: %s:%d, DB: %d)\n", host, port, dbIndex)
	return nil
}

// initResponseWriter initializes response writer
func (m *RaidModule) initResponseWriter() {
	m.respWriter = response.NewResponseHandler()
	fmt.Println("[Raid Module] Response writer initialized")
}

// initHTTPServer initializes HTTP server
func (m *RaidModule) initHTTPServer() {
	m.httpServer = echo.New()

	// Hide banner
	m.httpServer.HideBanner = true
	m.httpServer.HidePort = true

	// Register validator
	m.httpServer.Validator = validator.New()

	// 获取全局 logger
	logger := log.GetLogger()

	// 获取环境变量
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	// ========== 中间件配置（顺序很重要！） ==========

	// 1. TraceID 中间件 - 最先执行，生成或提取 TraceID
	m.httpServer.Use(trace.Middleware())

	// 2. Metrics 中间件 - 记录 HTTP 方法到 context（用于 Prometheus）
	m.httpServer.Use(metrics.Middleware())

	// 3. i18n 中间件 - 语言检测和设置
	m.httpServer.Use(i18n.Middleware())

	// 4. Logging 中间件 - 记录请求日志（依赖 TraceID）
	loggingConfig := custommiddleware.DefaultLoggingConfig()
	if environment == "development" {
		// 开发环境启用详细日志
		loggingConfig.DetailedLog = true
		loggingConfig.LogRequestBody = true
	}
	m.httpServer.Use(custommiddleware.LoggingMiddlewareWithConfig(logger, loggingConfig))

	// 5. Recovery 中间件 - 捕获 panic
	m.httpServer.Use(custommiddleware.RecoveryMiddleware(m.respWriter, logger))

	// 6. Error 中间件 - 统一错误处理
	m.httpServer.Use(custommiddleware.ErrorMiddleware(m.respWriter, logger))

	// 7. CORS 与安全头中间件
	m.httpServer.Use(security.CORSMiddleware())
	m.httpServer.Use(security.SecurityHeadersMiddleware())

	fmt.Println("[Raid Module] HTTP middlewares configured:")
	fmt.Println("  ✓ TraceID (自动生成追踪ID)")
	fmt.Println("  ✓ Metrics (Prometheus 指标收集)")
	fmt.Println("  ✓ i18n (国际化支持)")
	fmt.Printf("  ✓ Logging (日志记录 - %s)\n", environment)
	fmt.Println("  ✓ Recovery (Panic 恢复)")
	fmt.Println("  ✓ Error (统一错误处理)")
	fmt.Println("  ✓ CORS + Security Headers (跨域与安全头)")
}

// initServicesAndHandlers initializes services and HTTP handlers
func (m *RaidModule) initServicesAndHandlers() {
	cfg := config.LoadRaidConfig()

	// 背包容量检查通过 RPC 调用背包模块（可选）
	var inventory service.InventoryGate
	if inventoryModule := os.Getenv("RAID_INVENTORY_MODULE"); inventoryModule != "" {
		inventory = &rpcInventoryGate{
			app:        m.App,
			caller:     m,
			moduleType: inventoryModule,
		}
		fmt.Printf("[Raid Module] Inventory gate enabled (module: %s)\n", inventoryModule)
	} else {
		fmt.Println("[Raid Module] Inventory gate disabled, capacity treated as unlimited")
	}

	container, err := service.NewServiceContainer(m.db, m.redis, &cfg, inventory)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize service container: %v", err))
	}
	m.serviceContainer = container

	// 启动写合并器后台循环
	m.serviceContainer.Writer.Start()

	// 初始化 HTTP Handlers（从容器中获取需要的服务）
	m.encounterHandler = handler.NewEncounterHandler(m.serviceContainer, m.respWriter)
	m.lootHandler = handler.NewLootHandler(m.serviceContainer, m.respWriter)
	m.lockoutHandler = handler.NewLockoutHandler(m.serviceContainer, m.respWriter)
	m.writerHandler = handler.NewWriterHandler(m.serviceContainer, m.respWriter)
	m.rpcHandler = handler.NewRaidRPCHandler(m.serviceContainer)

	fmt.Println("[Raid Module] Handlers initialized successfully")
}

// startCronTasks starts cron scheduled tasks
func (m *RaidModule) startCronTasks() {
	logger := log.GetLogger()

	// 1. 锁定记录清理任务
	m.lockoutSweepTask = tasks.NewLockoutSweepTask(m.serviceContainer.Lockout, logger)
	m.lockoutSweepTask.Start()

	// 2. 副本实例过期任务
	m.encounterExpireTask = tasks.NewEncounterExpireTask(m.serviceContainer.Encounter, logger)
	m.encounterExpireTask.Start()

	fmt.Println("[Raid Module] Cron tasks started successfully:")
	fmt.Println("  ✓ Lockout Sweep Task (每小时)")
	fmt.Println("  ✓ Encounter Expire Task (每30秒)")
}

// setupRoutes sets up HTTP routes
func (m *RaidModule) setupRoutes() {
	// API v1 group
	v1 := m.httpServer.Group("/api/v1")

	// Raid routes
	raid := v1.Group("/raid")
	{
		// 副本目录（公开访问，:id 为目录短标识）
		encounters := raid.Group("/encounters")
		{
			encounters.GET("", m.encounterHandler.ListEncounters)            // 副本列表
			encounters.GET("/:id", m.encounterHandler.GetEncounter)          // 副本定义详情
			encounters.POST("/:id/instances", m.encounterHandler.StartEncounter) // 开启副本实例
		}

		// 副本实例（:id 为实例 UUID）
		instances := raid.Group("/instances")
		instances.Use(validation.UUIDValidationMiddleware(m.respWriter))
		{
			instances.GET("/:id", m.encounterHandler.GetInstance)       // 实例状态
			instances.POST("/:id/advance", m.encounterHandler.AdvanceWave) // 推进波次
			instances.POST("/:id/expire", m.encounterHandler.ForceExpire)  // 强制过期
		}

		// 掉落生成（调试与结算服务共用）
		raid.POST("/loot/generate", m.lootHandler.GenerateLoot)

		// 锁定记录
		lockouts := raid.Group("/lockouts")
		{
			lockouts.GET("/:participant_id", m.lockoutHandler.ListActive)                 // 参战者的活跃锁定
			lockouts.GET("/:participant_id/:encounter_id", m.lockoutHandler.GetStatus)    // 单个锁定状态
			lockouts.DELETE("/:participant_id/:encounter_id", m.lockoutHandler.Reset)     // 管理端重置锁定
		}

		// 写合并器运维接口
		writer := raid.Group("/writer")
		{
			writer.POST("/flush", m.writerHandler.Flush) // 立即刷盘
			writer.GET("/pending", m.writerHandler.Pending)
		}
	}

	// Health check
	m.httpServer.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status": "ok",
			"module": "raid",
		})
	})

	// Prometheus metrics endpoint
	m.httpServer.GET("/metrics", metrics.EchoHandler())

	fmt.Println("[Raid Module] Routes configured successfully")
	fmt.Println("[Raid Module] Raid API routes: /api/v1/raid/*")
	fmt.Println("[Raid Module] Prometheus metrics available at /metrics")
}

// startHTTPServer starts HTTP server
func (m *RaidModule) startHTTPServer(settings *conf.ModuleSettings) {
	// Read HTTP port from environment variable first
	port := os.Getenv("RAID_HTTP_PORT")
	if port == "" {
		// Fallback to config file
		if settings != nil && settings.Settings != nil {
			portInterface, ok := settings.Settings["http_port"]
			if ok {
				port, _ = portInterface.(string)
			}
		}
	}

	if port == "" {
		port = "8073" // Default port
	}

	fmt.Printf("[Raid Module] Starting HTTP server on port %s\n", port)

	if err := m.httpServer.Start(":" + port); err != nil {
		fmt.Printf("[Raid Module] HTTP server error: %v\n", err)
	}
}

// Run module run
func (m *RaidModule) Run(closeSig chan bool) {
	fmt.Println("[Raid Module] Started successfully")
	<-closeSig
}

// OnDestroy module destroy
func (m *RaidModule) OnDestroy() {
	// Stop cron tasks
	if m.lockoutSweepTask != nil {
		m.lockoutSweepTask.Stop()
	}
	if m.encounterExpireTask != nil {
		m.encounterExpireTask.Stop()
	}

	// 排空写合并器，确保缓冲中的写入落盘
	if m.serviceContainer != nil && m.serviceContainer.Writer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		m.serviceContainer.Writer.Stop(ctx)
		cancel()
		fmt.Println("[Raid Module] Write coalescer drained and stopped")
	}

	// Close HTTP server
	if m.httpServer != nil {
		if err := m.httpServer.Close(); err != nil {
			fmt.Printf("[Raid Module] Failed to close HTTP server: %v\n", err)
		} else {
			fmt.Println("[Raid Module] HTTP server closed")
		}
	}

	// Close database connection
	if m.db != nil {
		if err := m.db.Close(); err != nil {
			fmt.Printf("[Raid Module] Failed to close database: %v\n", err)
		} else {
			fmt.Println("[Raid Module] Database connection closed")
		}
	}

	// Close Redis connection
	if m.redis != nil {
		if err := m.redis.Close(); err != nil {
			fmt.Printf("[Raid Module] Failed to close Redis: %v\n", err)
		}
	}

	m.BaseModule.OnDestroy()
	fmt.Println("[Raid Module] Destroyed")
}

// Module creates Raid module instance
func Module() module.Module {
	return new(RaidModule)
}

// startDBPoolMonitoring 启动数据库连接池监控
// 每 30 秒报告一次连接池统计信息到 Prometheus
func (m *RaidModule) startDBPoolMonitoring(db *sql.DB) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		stats := db.Stats()

		metrics.DefaultResourceMetrics.RecordDBPoolStats(
			metrics.GetServiceName(),
			"postgres",
			stats.OpenConnections,
			stats.InUse,
			stats.Idle,
		)
	}
}

// setupRPCMethods 注册 RPC 方法
// 供其他模块（如战斗结算、管理端）调用
func (m *RaidModule) setupRPCMethods() {
	m.GetServer().RegisterGO("GetLockoutStatus", m.rpcHandler.GetLockoutStatus)
	m.GetServer().RegisterGO("GenerateLoot", m.rpcHandler.GenerateLoot)
	m.GetServer().RegisterGO("ForceExpireInstance", m.rpcHandler.ForceExpireInstance)

	fmt.Println("[Raid Module] RPC methods registered:")
	fmt.Println("  ✓ GetLockoutStatus - 查询锁定状态")
	fmt.Println("  ✓ GenerateLoot - 生成掉落")
	fmt.Println("  ✓ ForceExpireInstance - 强制过期实例")
}
