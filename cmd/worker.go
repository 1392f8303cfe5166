package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/biocode-hms/equipment-management/internal/core/events"
	equipmentpg "github.com/biocode-hms/equipment-management/internal/equipment/postgres"
	"github.com/biocode-hms/equipment-management/internal/maintenance"
	maintenancepg "github.com/biocode-hms/equipment-management/internal/maintenance/postgres"
	"github.com/biocode-hms/equipment-management/internal/notification"
	notificationpg "github.com/biocode-hms/equipment-management/internal/notification/postgres"
	userpg "github.com/biocode-hms/equipment-management/internal/user/postgres"
	"github.com/biocode-hms/equipment-management/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run background workers",
}

var maintenanceWorkerCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Scan maintenance schedules and deliver due/overdue notifications",
	Long:  `Periodically scans active maintenance schedules and notifies assigned users about upcoming or overdue maintenance. This is the only background work in the system.`,
	Run: func(cmd *cobra.Command, args []string) {
		runMaintenanceWorker()
	},
}

func init() {
	workerCmd.AddCommand(maintenanceWorkerCmd)
}

func runMaintenanceWorker() {
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.L()

	db, err := initDB(cfg.Database)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}
	defer db.Close()

	gdb, err := initGorm(db)
	if err != nil {
		log.Fatalf("failed to init orm: %v", err)
	}

	bus := events.NewEventBus(lg)
	notificationRepo := notificationpg.NewNotificationRepository(gdb)
	userRepo := userpg.NewUserRepository(gdb)
	dispatcher := notification.NewDispatcher(notificationRepo, userRepo, lg)
	dispatcher.Register(bus)

	maintenanceRepo := maintenancepg.NewMaintenanceRepository(gdb)
	equipmentRepo := equipmentpg.NewEquipmentRepository(gdb)
	maintenanceService := maintenance.NewService(maintenanceRepo, equipmentRepo, bus, cfg.Maintenance.DueWindowDays, lg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		lg.Info("worker received signal, stopping", "signal", fmt.Sprint(sig))
		cancel()
	}()

	lg.Info("maintenance worker started",
		"scan_interval", cfg.Maintenance.ScanInterval,
		"due_window_days", cfg.Maintenance.DueWindowDays)

	maintenanceService.RunDueScanLoop(ctx, cfg.Maintenance.ScanInterval)

	lg.Info("maintenance worker stopped")
}
