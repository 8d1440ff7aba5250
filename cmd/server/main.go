package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	catalogapp "github.com/shopdesk/backend/internal/application/catalog"
	identityapp "github.com/shopdesk/backend/internal/application/identity"
	inventoryapp "github.com/shopdesk/backend/internal/application/inventory"
	"github.com/shopdesk/backend/internal/application/receipt"
	repairapp "github.com/shopdesk/backend/internal/application/repair"
	salesapp "github.com/shopdesk/backend/internal/application/sales"
	warrantyapp "github.com/shopdesk/backend/internal/application/warranty"
	"github.com/shopdesk/backend/internal/infrastructure/auth"
	"github.com/shopdesk/backend/internal/infrastructure/cache"
	"github.com/shopdesk/backend/internal/infrastructure/config"
	"github.com/shopdesk/backend/internal/infrastructure/event"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"github.com/shopdesk/backend/internal/infrastructure/persistence"
	"github.com/shopdesk/backend/internal/infrastructure/printing"
	"github.com/shopdesk/backend/internal/infrastructure/scheduler"
	"github.com/shopdesk/backend/internal/infrastructure/sequence"
	"github.com/shopdesk/backend/internal/infrastructure/storage"
	"github.com/shopdesk/backend/internal/infrastructure/telemetry"
	"github.com/shopdesk/backend/internal/interfaces/http/handler"
	"github.com/shopdesk/backend/internal/interfaces/http/middleware"
	"github.com/shopdesk/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/shopdesk/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			ShopDesk API
//	@version		1.0
//	@description	Point of sale, stock ledger, repair desk and warranty back office for a single shop.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.FromConfig(cfg.Log, cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	telemetry.ServiceVersion = version
	providers, err := telemetry.Setup(context.Background(), cfg.Telemetry, cfg.Profiling, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log = providers.BridgeLogger(log)

	log.Info("Starting ShopDesk backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewQueryLogger(log, cfg.Log.Level, cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}
	if err := telemetry.InstrumentDB(db.DB, cfg.Telemetry, db.Driver, providers.Meter("shopdesk/db"), log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", db.Driver))

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr()))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var scopeOpts []persistence.TransactionScopeOption
	if cfg.Sequence.Backend == config.SequenceBackendRedis {
		if redisClient == nil {
			log.Fatal("Redis sequence backend selected but redis is disabled")
		}
		scopeOpts = append(scopeOpts, persistence.WithSequenceGenerator(sequence.NewRedisGenerator(redisClient)))
	}
	scope := persistence.NewGormTransactionScope(db.DB, scopeOpts...)

	productRepo := persistence.NewGormProductRepository(db.DB)
	stockRecordRepo := persistence.NewGormStockRecordRepository(db.DB)
	adjustmentRepo := persistence.NewGormStockAdjustmentRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	returnRepo := persistence.NewGormReturnRepository(db.DB)
	jobRepo := persistence.NewGormRepairJobRepository(db.DB)
	warrantyRepo := persistence.NewGormWarrantyRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)

	// Services publish only after commit; subscribers never see rolled-back work
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogSubscriber(log))
	eventBus.Subscribe(inventoryapp.NewStockAlertHandler(productRepo, log).
		WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log)))

	productService := catalogapp.NewProductService(scope, productRepo, eventBus, log)
	stockService := inventoryapp.NewStockService(scope, stockRecordRepo, adjustmentRepo, productRepo, eventBus, log)
	saleService := salesapp.NewSaleService(scope, saleRepo, eventBus, log)
	returnService := salesapp.NewReturnService(scope, returnRepo, eventBus, log)
	repairService := repairapp.NewRepairService(scope, jobRepo, eventBus, log)
	warrantyService := warrantyapp.NewWarrantyService(scope, warrantyRepo, eventBus, log)

	businessMetrics, err := telemetry.NewBusinessMetrics(providers.Meter("shopdesk/business"), stockService)
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	eventBus.Subscribe(businessMetrics)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	var revocations auth.RevocationStore = auth.NewMemoryRevocationStore()
	if redisClient != nil {
		revocations = auth.NewRedisRevocationStore(redisClient)
	}
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, roleRepo, jwtService, revocations, log)
	authzService := identityapp.NewAuthorizationService(log)
	userService := identityapp.NewUserService(scope, userRepo, revocations, cfg.JWT.AccessTokenExpiration, eventBus, log)
	roleService := identityapp.NewRoleService(scope, roleRepo, userRepo, eventBus, log)

	bootstrap, err := identityapp.NewBootstrapService(scope, log).Run(context.Background(), identityapp.BootstrapInput{
		AdminUsername: cfg.Bootstrap.AdminUsername,
		AdminPassword: cfg.Bootstrap.AdminPassword,
	})
	if err != nil {
		log.Fatal("Failed to bootstrap identity", zap.Error(err))
	}
	if bootstrap.AdminCreated {
		log.Warn("Bootstrap super admin created; change its password", zap.String("username", cfg.Bootstrap.AdminUsername))
	}

	receiptService, closeRenderer, err := newReceiptService(cfg, saleRepo, jobRepo, userRepo, log)
	if err != nil {
		log.Fatal("Failed to initialize receipt rendering", zap.Error(err))
	}
	defer closeRenderer()

	expiryTrigger, err := scheduler.NewExpiryTrigger(scheduler.ExpiryTriggerConfig{
		Interval:   cfg.Warranty.SweepInterval,
		RunOnStart: cfg.Warranty.SweepEnabled,
		Timeout:    5 * time.Minute,
	}, warrantyapp.NewExpirySweeper(scope, eventBus, log).WithBatchSize(cfg.Warranty.SweepBatchSize), log)
	if err != nil {
		log.Fatal("Invalid warranty sweep configuration", zap.Error(err))
	}
	if cfg.Warranty.SweepEnabled {
		if err := expiryTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start warranty expiry sweep", zap.Error(err))
		}
		defer func() {
			if err := expiryTrigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping warranty expiry sweep", zap.Error(err))
			}
		}()
		log.Info("Warranty expiry sweep scheduled", zap.Duration("interval", cfg.Warranty.SweepInterval))
	}

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(redisClient, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Role:      handler.NewRoleHandler(roleService, authzService),
		User:      handler.NewUserHandler(userService),
		Product:   handler.NewProductHandler(productService),
		Inventory: handler.NewInventoryHandler(stockService),
		Sale:      handler.NewSaleHandler(saleService, receiptService),
		Return:    handler.NewReturnHandler(returnService),
		Repair:    handler.NewRepairHandler(repairService, receiptService),
		Warranty:  handler.NewWarrantyHandler(warrantyService, expiryTrigger),
		System:    handler.NewSystemHandler(version, readinessChecks(db, redisClient)...),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: request id and recovery first so every later failure is attributable
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     providers.TracingEnabled(),
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(providers.Meter("shopdesk/http"), log))
	if cfg.Profiling.Enabled {
		engine.Use(middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig()))
	}
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{Enabled: cfg.Swagger.Enabled, AllowedIPs: cfg.Swagger.AllowedIPs}),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	authConfig := middleware.DefaultAuthConfig(authService)
	authConfig.Logger = log

	guards := router.Guards{
		Authz:       authzService,
		Idempotency: middleware.Idempotency(idempotencyStore, cfg.HTTP.IdempotencyTTL, log),
	}
	if cfg.HTTP.LoginRateLimit > 0 {
		guards.LoginLimit = middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.AuthMiddlewareWithConfig(authConfig))
	router.RegisterAPI(r, handlers, guards)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

// newReceiptService builds PDF output. With receipts disabled every document
// request fails with a render error; with storage enabled documents are
// archived to S3 and can be served as links.
func newReceiptService(
	cfg *config.Config,
	saleRepo *persistence.GormSaleRepository,
	jobRepo *persistence.GormRepairJobRepository,
	userRepo *persistence.GormUserRepository,
	log *zap.Logger,
) (*receipt.ReceiptService, func(), error) {
	formatter, err := printing.NewFormatter(cfg.Receipt.Locale, cfg.Receipt.Currency, time.Local)
	if err != nil {
		return nil, nil, err
	}
	engine, err := printing.NewTemplateEngine(formatter)
	if err != nil {
		return nil, nil, err
	}

	var renderer printing.PDFRenderer = printing.DisabledRenderer{}
	if cfg.Receipt.Enabled {
		renderer = printing.NewChromedpRenderer(printing.ChromedpConfig{
			DefaultTimeout: cfg.Receipt.Timeout,
			RemoteURL:      cfg.Receipt.ChromeURL,
			NoSandbox:      cfg.Receipt.NoSandbox,
			Logger:         log,
		})
	}

	var archive receipt.Archive
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3ReceiptArchive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			_ = renderer.Close()
			return nil, nil, err
		}
		archive = s3Archive
	}

	svc := receipt.NewReceiptService(saleRepo, jobRepo, userRepo, engine, renderer, archive, receipt.Layout{
		Shop: printing.Shop{
			Name:    cfg.Receipt.ShopName,
			Address: cfg.Receipt.ShopAddress,
			Phone:   cfg.Receipt.ShopPhone,
		},
		PaperWidthMM: float64(cfg.Receipt.PaperWidthMM),
		Timeout:      cfg.Receipt.Timeout,
	}, log)

	closer := func() {
		if err := renderer.Close(); err != nil {
			log.Warn("Error closing PDF renderer", zap.Error(err))
		}
	}
	return svc, closer, nil
}

// readinessChecks probes the database and, when configured, redis
func readinessChecks(db *persistence.Database, redisClient *redis.Client) []handler.ReadinessCheck {
	checks := []handler.ReadinessCheck{{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if redisClient != nil {
		checks = append(checks, handler.ReadinessCheck{
			Name: "redis",
			Check: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		})
	}
	return checks
}
