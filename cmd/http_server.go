package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/analytics"
	analyticspg "github.com/biocode-hms/equipment-management/internal/analytics/postgres"
	"github.com/biocode-hms/equipment-management/internal/auth"
	authpg "github.com/biocode-hms/equipment-management/internal/auth/postgres"
	"github.com/biocode-hms/equipment-management/internal/core/events"
	"github.com/biocode-hms/equipment-management/internal/department"
	departmentpg "github.com/biocode-hms/equipment-management/internal/department/postgres"
	"github.com/biocode-hms/equipment-management/internal/equipment"
	equipmentpg "github.com/biocode-hms/equipment-management/internal/equipment/postgres"
	"github.com/biocode-hms/equipment-management/internal/maintenance"
	maintenancepg "github.com/biocode-hms/equipment-management/internal/maintenance/postgres"
	"github.com/biocode-hms/equipment-management/internal/notification"
	notificationpg "github.com/biocode-hms/equipment-management/internal/notification/postgres"
	"github.com/biocode-hms/equipment-management/internal/report"
	"github.com/biocode-hms/equipment-management/internal/supplier"
	supplierpg "github.com/biocode-hms/equipment-management/internal/supplier/postgres"
	"github.com/biocode-hms/equipment-management/internal/ticket"
	ticketpg "github.com/biocode-hms/equipment-management/internal/ticket/postgres"
	"github.com/biocode-hms/equipment-management/internal/transport"
	"github.com/biocode-hms/equipment-management/internal/transport/rest"
	"github.com/biocode-hms/equipment-management/internal/user"
	userpg "github.com/biocode-hms/equipment-management/internal/user/postgres"
	"github.com/biocode-hms/equipment-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.Config.Server.AllowedOrigins, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		GormDB:   gdb,
		Router:   chi.NewRouter(),
		Handlers: buildHandlers(config, gdb, lg),
	}, nil
}

// buildHandlers wires repositories, services and the notification dispatcher
// behind one event bus.
func buildHandlers(cfg *internal.Config, gdb *gorm.DB, lg *slog.Logger) rest.Handlers {
	bus := events.NewEventBus(lg)
	base := transport.NewBaseHandler(lg)

	authRepo := authpg.NewAuthRepository(gdb)
	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, cfg.Security.BCryptCost, lg)

	userRepo := userpg.NewUserRepository(gdb)
	departmentRepo := departmentpg.NewDepartmentRepository(gdb)
	supplierRepo := supplierpg.NewSupplierRepository(gdb)
	equipmentRepo := equipmentpg.NewEquipmentRepository(gdb)
	ticketRepo := ticketpg.NewTicketRepository(gdb)
	maintenanceRepo := maintenancepg.NewMaintenanceRepository(gdb)
	notificationRepo := notificationpg.NewNotificationRepository(gdb)
	analyticsRepo := analyticspg.NewAnalyticsRepository(gdb)

	dispatcher := notification.NewDispatcher(notificationRepo, userRepo, lg)
	dispatcher.Register(bus)

	userService := user.NewService(userRepo, lg)
	departmentService := department.NewService(departmentRepo, lg)
	supplierService := supplier.NewService(supplierRepo, lg)
	equipmentService := equipment.NewService(equipmentRepo, bus, lg)
	ticketService := ticket.NewService(ticketRepo, equipmentRepo, departmentRepo, bus, lg)
	maintenanceService := maintenance.NewService(maintenanceRepo, equipmentRepo, bus, cfg.Maintenance.DueWindowDays, lg)
	notificationService := notification.NewService(notificationRepo, lg)
	analyticsService := analytics.NewService(analyticsRepo, lg)
	reportService := report.NewService(equipmentRepo, ticketRepo, maintenanceRepo, lg)

	return rest.Handlers{
		Auth:         auth.NewHandler(authService),
		User:         user.NewHandler(base, userService),
		Department:   department.NewHandler(base, departmentService),
		Supplier:     supplier.NewHandler(base, supplierService),
		Equipment:    equipment.NewHandler(base, equipmentService),
		Ticket:       ticket.NewHandler(base, ticketService),
		Maintenance:  maintenance.NewHandler(base, maintenanceService),
		Notification: notification.NewHandler(base, notificationService),
		Analytics:    analytics.NewHandler(base, analyticsService),
		Report:       report.NewHandler(base, reportService),
	}
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers the ORM over the already-open pgx connection so health
// checks, goose and gorm share a pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
	})
}
