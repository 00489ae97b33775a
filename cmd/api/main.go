package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/timeclock-payroll/internal/config"
	appHTTP "github.com/cmlabs-hris/timeclock-payroll/internal/handler/http"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/cron"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-payroll/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/timeclock-payroll/internal/service/attendance"
	contributionService "github.com/cmlabs-hris/timeclock-payroll/internal/service/contribution"
	payrollService "github.com/cmlabs-hris/timeclock-payroll/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", cfg.App.Name)))

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	now := func() time.Time { return time.Now().In(cfg.App.Timezone) }

	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	advanceLedgerRepo := postgresql.NewAdvanceLedgerRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	transactor := postgresql.NewTransactor(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	calculator := contributionService.NewHTTPCalculator(cfg.Contribution.BaseURL, cfg.Contribution.APIKey, cfg.Contribution.Timeout)

	attendanceSvc := attendanceService.NewAttendanceService(transactor, attendanceRepo, employeeRepo, cfg.Payroll.OvertimeMultiplier, now)
	payrollSvc := payrollService.NewPayrollService(payrollRepo, employeeRepo, attendanceRepo, advanceLedgerRepo, calculator, payrollService.Options{
		OvertimeMultiplier: cfg.Payroll.OvertimeMultiplier,
		WorkerLimit:        cfg.Payroll.WorkerLimit,
		Now:                now,
	})

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		AppName:        cfg.App.Name,
		Version:        cfg.App.Version,
		Env:            cfg.App.Env,
		AllowedOrigins: cfg.App.AllowedOrigins,
		LogLevel:       cfg.SlogLevel(),
	}, JWTService, attendanceHandler, payrollHandler)

	// Cutoff payroll runs
	scheduler := cron.NewScheduler(cfg.App.Timezone)
	if cfg.Payroll.CronEnabled {
		payrollJobs := cron.NewPayrollJobs(employeeRepo, payrollSvc, cfg.Payroll.FirstCutoffSpec, cfg.Payroll.SecondCutoffSpec, now)
		if err := payrollJobs.RegisterJobs(scheduler); err != nil {
			slog.Error("Error registering cron jobs", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	if cfg.Payroll.CronEnabled {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server exited")
}
