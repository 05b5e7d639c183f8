package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"gorm.io/gorm"

	"github.com/edumartvn/commerce-api/internal/app/api"
	billingmemory "github.com/edumartvn/commerce-api/internal/domains/billing/adapters/memory"
	billingpostgres "github.com/edumartvn/commerce-api/internal/domains/billing/adapters/persistence/postgres"
	billingapp "github.com/edumartvn/commerce-api/internal/domains/billing/application"
	billingports "github.com/edumartvn/commerce-api/internal/domains/billing/ports"
	ordersmemory "github.com/edumartvn/commerce-api/internal/domains/orders/adapters/memory"
	orderspostgres "github.com/edumartvn/commerce-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/edumartvn/commerce-api/internal/domains/orders/application"
	ordersports "github.com/edumartvn/commerce-api/internal/domains/orders/ports"
	paymentsmemory "github.com/edumartvn/commerce-api/internal/domains/payments/adapters/memory"
	platformobservability "github.com/edumartvn/commerce-api/internal/platform/observability"
	platformpostgres "github.com/edumartvn/commerce-api/internal/platform/postgres"
	paymentactivities "github.com/edumartvn/commerce-api/internal/platform/temporal/activities/payments"
	paymentworkflows "github.com/edumartvn/commerce-api/internal/platform/temporal/workflows/payments"
)

func main() {
	ctx := context.Background()
	const serviceName = "commerce-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := api.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, cleanupDB := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanupDB()

	ordersService, billingService := buildServices(db, cfg, logger)
	notifier := paymentsmemory.NewNotifier(logger)
	activities := paymentactivities.NewActivities(billingService, ordersService, notifier)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, paymentworkflows.PostPaymentTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(paymentworkflows.PostPaymentWorkflow, workflow.RegisterOptions{Name: paymentworkflows.PostPaymentWorkflowName})
	w.RegisterActivityWithOptions(activities.IssueInvoice, activity.RegisterOptions{Name: paymentactivities.IssueInvoiceActivityName})
	w.RegisterActivityWithOptions(activities.RecordCommissions, activity.RegisterOptions{Name: paymentactivities.RecordCommissionsActivityName})
	w.RegisterActivityWithOptions(activities.NotifyCustomer, activity.RegisterOptions{Name: paymentactivities.NotifyCustomerActivityName})

	logger.Info("worker listening", slog.String("taskQueue", paymentworkflows.PostPaymentTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildServices(db *gorm.DB, cfg api.Config, logger *slog.Logger) (ordersports.Service, billingports.Service) {
	var (
		ordersRepo  ordersports.Repository
		codes       ordersports.DiscountCodeStore
		invoices    billingports.InvoiceStore
		commissions billingports.CommissionStore
	)
	if db == nil {
		logger.Warn("worker running with in-memory stores")
		ordersRepo = ordersmemory.NewRepository()
		codes = ordersmemory.NewDiscountCodeStore()
		invoices = billingmemory.NewInvoiceStore()
		commissions = billingmemory.NewCommissionStore()
	} else {
		logger.Info("worker stores configured with postgres")
		ordersRepo = orderspostgres.NewRepository(db)
		codes = orderspostgres.NewDiscountCodeStore(db)
		invoices = billingpostgres.NewInvoiceStore(db)
		commissions = billingpostgres.NewCommissionStore(db)
	}
	ordersService := ordersapp.NewService(ordersRepo, codes, nil)
	billingService := billingapp.NewService(ordersService, invoices, commissions, cfg.Company)
	return ordersService, billingService
}
