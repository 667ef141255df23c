// Package wire provides dependency injection for the kwartrack application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"sync"

	cliadapter "github.com/caburj/kwartrack/internal/adapters/cli"
	"github.com/caburj/kwartrack/internal/adapters/sqlite"
	"github.com/caburj/kwartrack/internal/amqp"
	"github.com/caburj/kwartrack/internal/app"
	"github.com/caburj/kwartrack/internal/cache"
	"github.com/caburj/kwartrack/internal/config"
	"github.com/caburj/kwartrack/internal/core/selection"
	"github.com/caburj/kwartrack/internal/db"
	klog "github.com/caburj/kwartrack/internal/log"
	"github.com/caburj/kwartrack/internal/ports/primary"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

var (
	cfg      *config.Config
	logger   *klog.Logger
	database *sql.DB

	queryCache   *cache.QueryCache
	cacheManager *cache.Manager
	amqpClient   *amqp.Client
	executor     *app.DefaultEffectExecutor

	sessionService *app.SessionServiceImpl
	ledgerService  primary.LedgerService
	browseService  primary.BrowseService
	logService     primary.LogService

	once     sync.Once
	baseOnce sync.Once
)

// Config returns the loaded configuration. The process exits on an invalid one.
func Config() *config.Config {
	baseOnce.Do(initBase)
	return cfg
}

// Logger returns the root logger.
func Logger() *klog.Logger {
	baseOnce.Do(initBase)
	return logger
}

// DB returns the database connection with the schema up to date.
func DB() *sql.DB {
	baseOnce.Do(initBase)
	return database
}

// LedgerService returns the singleton LedgerService instance.
func LedgerService() primary.LedgerService {
	once.Do(initServices)
	return ledgerService
}

// BrowseService returns the singleton BrowseService instance.
func BrowseService() primary.BrowseService {
	once.Do(initServices)
	return browseService
}

// SessionService returns the singleton SessionService instance.
func SessionService() primary.SessionService {
	once.Do(initServices)
	return sessionService
}

// LogService returns the singleton LogService instance.
func LogService() primary.LogService {
	once.Do(initServices)
	return logService
}

// Executor returns the effect executor, for applying remote invalidations.
func Executor() *app.DefaultEffectExecutor {
	once.Do(initServices)
	return executor
}

// AMQPClient returns the broker client, or nil when broadcasting is disabled
// or the broker was unreachable at startup.
func AMQPClient() *amqp.Client {
	once.Do(initServices)
	return amqpClient
}

// initBase loads configuration, sets up logging and opens the database.
func initBase() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("failed to load environment: %v", err)
	}
	cfg = config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	level, _ := klog.ParseLevel(cfg.LogLevel)
	logger = klog.New(klog.Config{Level: level, Component: klog.ComponentApp, Output: os.Stderr})
	klog.SetDefault(logger)

	db.SetPath(cfg.DBPath)
	conn, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	database = conn
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	baseOnce.Do(initBase)
	ctx := context.Background()

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	userRepo := sqlite.NewUserRepository(database)
	accountRepo := sqlite.NewAccountRepository(database)
	partitionRepo := sqlite.NewPartitionRepository(database)
	categoryRepo := sqlite.NewCategoryRepository(database)
	transactionRepo := sqlite.NewTransactionRepository(database)
	loanRepo := sqlite.NewLoanRepository(database)
	budgetRepo := sqlite.NewBudgetRepository(database)
	activityLogRepo := sqlite.NewActivityLogRepository(database)
	logWriter := sqlite.NewLogWriterAdapter(activityLogRepo)

	queryCache = cache.NewQueryCache(cfg.CacheMaxEntries, cfg.CacheTTL)
	cacheLogger := logger.WithComponent(klog.ComponentCache)
	cacheManager = cache.NewManager(func(removed int) {
		cacheLogger.Debug("swept expired queries", klog.FieldInvalidated, removed)
	})
	cacheManager.Register(queryCache)
	cacheManager.StartCleanup(cfg.CacheTTL)

	var publisher secondary.InvalidationPublisher = amqp.NopPublisher{}
	if cfg.AMQPEnabled() {
		client, err := amqp.Dial(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			logger.Warn("invalidations will not be broadcast", klog.FieldError, err.Error())
		} else {
			amqpClient = client
			publisher = client
		}
	}

	invariantLogger := logger.WithComponent(klog.ComponentInvariant)
	session, err := app.NewSessionService(ctx, config.NewFileSessionStore(cfg.SessionPath()), logger,
		selection.WithStrictInvariants(cfg.StrictInvariants),
		selection.WithViolationHook(func(action selection.Action, violations []selection.InvariantViolation) {
			for _, v := range violations {
				invariantLogger.Warn("normalized selection state",
					klog.FieldAction, action.Name(), "invariant", v.Invariant, "detail", v.Detail)
			}
		}),
	)
	if err != nil {
		log.Fatalf("failed to initialize session: %v", err)
	}
	sessionService = session

	// Create effect executor over the cache, the broadcast and the session
	executor = app.NewEffectExecutor(queryCache, publisher, sessionService, logger)

	// Create services (primary ports implementation)
	ledgerService = app.NewLedgerService(
		userRepo, accountRepo, partitionRepo, categoryRepo, transactionRepo, loanRepo, budgetRepo,
		logWriter, executor,
	)
	browseService = app.NewBrowseService(
		accountRepo, partitionRepo, categoryRepo, transactionRepo, loanRepo, budgetRepo,
		queryCache, logger,
	)
	logService = app.NewLogService(activityLogRepo)
}

// Shutdown stops background work and closes connections. Safe to call when
// nothing was initialized.
func Shutdown() {
	if cacheManager != nil {
		cacheManager.Stop()
	}
	if amqpClient != nil {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("failed to close broker connection", klog.FieldError, err.Error())
		}
	}
	if err := db.Close(); err != nil && logger != nil {
		logger.Warn("failed to close database", klog.FieldError, err.Error())
	}
}

// LedgerAdapter returns a new LedgerAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func LedgerAdapter() *cliadapter.LedgerAdapter {
	return LedgerAdapterWithOutput(os.Stdout)
}

// LedgerAdapterWithOutput returns a new LedgerAdapter writing to the given output.
func LedgerAdapterWithOutput(out io.Writer) *cliadapter.LedgerAdapter {
	once.Do(initServices)
	return cliadapter.NewLedgerAdapter(ledgerService, out)
}

// BrowseAdapter returns a new BrowseAdapter writing to stdout.
func BrowseAdapter() *cliadapter.BrowseAdapter {
	return BrowseAdapterWithOutput(os.Stdout)
}

// BrowseAdapterWithOutput returns a new BrowseAdapter writing to the given output.
func BrowseAdapterWithOutput(out io.Writer) *cliadapter.BrowseAdapter {
	once.Do(initServices)
	return cliadapter.NewBrowseAdapter(browseService, sessionService, out)
}

// SelectionAdapter returns a new SelectionAdapter writing to stdout.
func SelectionAdapter() *cliadapter.SelectionAdapter {
	return SelectionAdapterWithOutput(os.Stdout)
}

// SelectionAdapterWithOutput returns a new SelectionAdapter writing to the given output.
func SelectionAdapterWithOutput(out io.Writer) *cliadapter.SelectionAdapter {
	once.Do(initServices)
	return cliadapter.NewSelectionAdapter(sessionService, browseService, out)
}
