package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/storefront/backend/docs"
	"github.com/storefront/backend/internal/application/caching"
	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	configapp "github.com/storefront/backend/internal/application/configuration"
	contentapp "github.com/storefront/backend/internal/application/content"
	customerapp "github.com/storefront/backend/internal/application/customer"
	directoryapp "github.com/storefront/backend/internal/application/directory"
	discountapp "github.com/storefront/backend/internal/application/discount"
	localizationapp "github.com/storefront/backend/internal/application/localization"
	orderapp "github.com/storefront/backend/internal/application/order"
	pluginapp "github.com/storefront/backend/internal/application/plugin"
	storeapp "github.com/storefront/backend/internal/application/store"
	"github.com/storefront/backend/internal/application/tasks"
	domainplugin "github.com/storefront/backend/internal/domain/plugin"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	infraplugin "github.com/storefront/backend/internal/infrastructure/plugin"
	"github.com/storefront/backend/internal/infrastructure/printing"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

//go:generate swag init -g cmd/server/main.go -o docs -d ../../

//	@title			Storefront API
//	@version		1.0
//	@description	Multi-store e-commerce storefront: catalog, customers, carts, checkout and content.

//	@contact.name	API Support
//	@contact.url	https://github.com/storefront/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const (
	serviceVersion  = "1.0.0"
	shutdownTimeout = 10 * time.Second
	// login and register attempts per client address
	credentialAttempts = 10
	credentialWindow   = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: time.RFC3339,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.NewProviders(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if providers.IsEnabled() {
		// ship logs through the collector as well
		log, err = logger.New(&logger.Config{
			Level:      cfg.Log.Level,
			Format:     cfg.Log.Format,
			Output:     cfg.Log.Output,
			TimeFormat: time.RFC3339,
		}, providers.ZapCore(logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			panic("failed to initialize logger: " + err.Error())
		}
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Warn("Continuous profiling unavailable", zap.Error(err))
	} else if profiler.IsEnabled() {
		providers.EnableSpanProfiles()
	}

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}

	cacheManager, err := cache.NewFactory(cfg.Cache, cfg.Redis, cache.WithLogger(log)).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}

	checks := map[string]handler.Pinger{"database": db}
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	var redisClient *redis.Client
	if cfg.Cache.Provider != "memory" {
		redisClient, err = cache.NewRedisClient(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, token revocation is process local", zap.Error(err))
		} else {
			blacklist = auth.NewRedisTokenBlacklist(redisClient)
			checks["redis"] = redisPinger{redisClient}
		}
	}
	jwtService := auth.NewJWTService(cfg.JWT)

	eventBus := event.NewInMemoryEventBus(log)
	cacheConsumer := caching.NewModelCacheEventConsumer(cacheManager, caching.WithLogger(log))
	eventBus.Subscribe(cacheConsumer, cacheConsumer.EventTypes()...)
	if providers.IsEnabled() {
		orderMetrics, err := telemetry.NewOrderMetrics(providers.Meter(telemetry.TracerName))
		if err != nil {
			log.Warn("Order metrics disabled", zap.Error(err))
		} else {
			eventBus.Subscribe(orderMetrics, orderMetrics.EventTypes()...)
		}
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Repositories
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	manufacturerRepo := persistence.NewGormManufacturerRepository(db.DB)
	pictureRepo := persistence.NewGormPictureRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	pollRepo := persistence.NewGormPollRepository(db.DB)
	newsRepo := persistence.NewGormNewsRepository(db.DB)
	blogRepo := persistence.NewGormBlogRepository(db.DB)
	subscriptionRepo := persistence.NewGormNewsLetterSubscriptionRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	customerRoleRepo := persistence.NewGormCustomerRoleRepository(db.DB)
	countryRepo := persistence.NewGormCountryRepository(db.DB)
	stateRepo := persistence.NewGormStateProvinceRepository(db.DB)
	currencyRepo := persistence.NewGormCurrencyRepository(db.DB)
	languageRepo := persistence.NewGormLanguageRepository(db.DB)
	resourceRepo := persistence.NewGormResourceRepository(db.DB)
	localizedPropertyRepo := persistence.NewGormLocalizedPropertyRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	discountRepo := persistence.NewGormDiscountRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	settingRepo := persistence.NewGormSettingRepository(db.DB)
	taskRepo := persistence.NewGormScheduleTaskRepository(db.DB)
	installedPluginRepo := persistence.NewGormInstalledPluginRepository(db.DB)

	// Settings and plugins come first, most services read from them
	settingService := configapp.NewSettingService(settingRepo, cacheManager, eventBus, log)

	pluginManager := domainplugin.NewManager()
	if err := infraplugin.RegisterBuiltins(pluginManager, settingService, &http.Client{Timeout: 15 * time.Second}); err != nil {
		log.Fatal("Failed to register plugins", zap.Error(err))
	}
	pluginService := pluginapp.NewPluginService(pluginManager, installedPluginRepo, cacheManager, eventBus, log)
	if err := pluginService.LoadInstalledPlugins(ctx); err != nil {
		log.Fatal("Failed to load installed plugins", zap.Error(err))
	}

	objectStorage, err := newObjectStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize picture storage", zap.Error(err))
	}
	renderer := newRenderer(cfg, log)
	defer renderer.Close()

	// Application services
	storeService := storeapp.NewStoreService(storeRepo, cacheManager, eventBus, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, cacheManager, eventBus, log)
	manufacturerService := catalogapp.NewManufacturerService(manufacturerRepo, cacheManager, eventBus, log)
	pictureService := catalogapp.NewPictureService(pictureRepo, productRepo, objectStorage, cacheManager, eventBus, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, manufacturerRepo, settingService, cacheManager, eventBus, log)
	productIOService := catalogapp.NewProductIOService(productService, log)
	customerService := customerapp.NewCustomerService(customerRepo, customerRoleRepo, settingService, jwtService, blacklist, cacheManager, eventBus, log)
	cartService := cartapp.NewCartService(cartRepo, productRepo, settingService, eventBus, log)
	countryService := directoryapp.NewCountryService(countryRepo, stateRepo, cacheManager, eventBus, log)
	currencyService := directoryapp.NewCurrencyService(currencyRepo, settingService, pluginManager, cacheManager, eventBus, log)
	discountService := discountapp.NewDiscountService(discountRepo, cacheManager, eventBus, log)
	localizationService := localizationapp.NewLocalizationService(languageRepo, resourceRepo, localizedPropertyRepo, cacheManager, eventBus, log)
	totalsService := orderapp.NewTotalsService(discountService, productRepo, pluginManager, settingService, log)
	processingService := orderapp.NewProcessingService(orderRepo, productRepo, cartService, totalsService, discountService, pluginManager, settingService, eventBus, log)
	processingService.SetTransactor(db)
	invoiceService := orderapp.NewInvoiceService(renderer, storeService, currencyService)
	pollService := contentapp.NewPollService(pollRepo, cacheManager, eventBus, log)
	newsService := contentapp.NewNewsService(newsRepo, settingService, cacheManager, eventBus, log)
	blogService := contentapp.NewBlogService(blogRepo, settingService, cacheManager, eventBus, log)
	newsletterService := contentapp.NewNewsLetterSubscriptionService(subscriptionRepo, eventBus, log)

	// Scheduled tasks
	taskManager := scheduler.NewTaskManager(scheduler.Config{
		Enabled:           cfg.Scheduler.Enabled,
		TickInterval:      cfg.Scheduler.TickInterval,
		MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
		JobTimeout:        cfg.Scheduler.JobTimeout,
	}, taskRepo, log)
	taskManager.Register(tasks.TypeClearCache, tasks.NewClearCacheTask(cacheManager, log))
	taskManager.Register(tasks.TypeDeleteGuests, tasks.NewDeleteGuestsTask(customerService, settingService, log))
	taskManager.Register(tasks.TypeUpdateExchangeRates, tasks.NewUpdateExchangeRateTask(currencyService, storeService, settingService, log))
	taskService := tasks.NewTaskService(taskRepo, taskManager, log)
	if err := taskService.EnsureDefaultTasks(ctx); err != nil {
		log.Warn("Failed to seed scheduled tasks", zap.Error(err))
	}
	if cfg.Scheduler.Enabled {
		if err := taskManager.Start(ctx); err != nil {
			log.Fatal("Failed to start task scheduler", zap.Error(err))
		}
	}

	// HTTP handlers
	handlers := router.Handlers{
		System:        handler.NewSystemHandler(cfg.App.Name, serviceVersion, checks),
		Account:       handler.NewAccountHandler(customerService, cartService),
		Catalog:       handler.NewCatalogHandler(categoryService, manufacturerService, productService, pictureService),
		Cart:          handler.NewCartHandler(cartService, customerService),
		Checkout:      handler.NewCheckoutHandler(processingService, totalsService, cartService, invoiceService, customerService),
		Content:       handler.NewContentHandler(pollService, newsService, blogService, newsletterService, customerService),
		Directory:     handler.NewDirectoryHandler(countryService, currencyService),
		Localization:  handler.NewLocalizationHandler(localizationService),
		CatalogAdmin:  handler.NewCatalogAdminHandler(categoryService, manufacturerService, productService, pictureService, productIOService),
		ContentAdmin:  handler.NewContentAdminHandler(pollService, newsService, blogService, newsletterService),
		DiscountAdmin: handler.NewDiscountAdminHandler(discountService),
		OrderAdmin:    handler.NewOrderAdminHandler(processingService, invoiceService),
		StoreAdmin:    handler.NewStoreAdminHandler(storeService, customerService),
		SystemAdmin:   handler.NewSystemAdminHandler(settingService, pluginService, cacheManager, taskService),
	}

	engine, err := newEngine(cfg, log, providers)
	if err != nil {
		log.Fatal("Failed to configure HTTP engine", zap.Error(err))
	}

	jwtAuth := middleware.JWTAuth(middleware.JWTConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Optional:       true,
		Logger:         log,
	})

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, jwtAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	credentialLimiter := middleware.NewRateLimiter(credentialAttempts, credentialWindow)
	defer credentialLimiter.Stop()

	router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(
			jwtAuth,
			middleware.StoreContext(storeService),
			middleware.SpanAttributes(),
			middleware.Profiling(profiler != nil && profiler.IsEnabled()),
		),
	).Register(router.Routes(handlers, router.Guards{
		Credentials: middleware.RateLimitByKey(credentialLimiter, func(c *gin.Context) string {
			return "credentials:" + c.ClientIP()
		}),
	})...).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if cfg.Scheduler.Enabled {
		if err := taskManager.Stop(shutdownCtx); err != nil {
			log.Error("Failed to stop task scheduler", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop event bus", zap.Error(err))
	}
	if err := cacheManager.Close(); err != nil {
		log.Error("Failed to close cache", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close redis client", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Failed to close database", zap.Error(err))
	}
	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			log.Error("Failed to stop profiler", zap.Error(err))
		}
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to flush telemetry", zap.Error(err))
	}

	log.Info("Server exited")
}

// newEngine builds the gin engine with the global middleware chain. Auth and
// store resolution are added per API group by the router.
func newEngine(cfg *config.Config, log *zap.Logger, providers *telemetry.Providers) (*gin.Engine, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, err
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	metrics, err := middleware.HTTPMetrics(providers.Meter(telemetry.TracerName))
	if err != nil {
		return nil, err
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.Env == "production"

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
	)
	if providers.IsEnabled() {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName), metrics)
	}
	engine.Use(
		middleware.SecureWithConfig(security),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
	}
	return engine, nil
}

func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (catalogapp.ObjectStorage, error) {
	if cfg.Storage.Provider == "s3" {
		return storage.NewS3ObjectStorage(ctx, &cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiry(cfg.Storage.PresignExpiry),
		)
	}
	log.Info("Using in-memory picture storage")
	return storage.NewMemoryObjectStorage(cfg.Storage.MediaBaseURL), nil
}

func newRenderer(cfg *config.Config, log *zap.Logger) printing.PDFRenderer {
	if !cfg.Printing.Enabled {
		return printing.DisabledRenderer{}
	}
	return printing.NewChromedpRenderer(printing.ChromedpConfig{
		DefaultTimeout: cfg.Printing.Timeout,
		RemoteURL:      cfg.Printing.RemoteURL,
		NoSandbox:      true,
		Logger:         log,
	})
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
