package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	commerceserver "github.com/edumartvn/commerce-api/go"

	billingmemory "github.com/edumartvn/commerce-api/internal/domains/billing/adapters/memory"
	billingpostgres "github.com/edumartvn/commerce-api/internal/domains/billing/adapters/persistence/postgres"
	billingapp "github.com/edumartvn/commerce-api/internal/domains/billing/application"
	billingports "github.com/edumartvn/commerce-api/internal/domains/billing/ports"

	ordersmemory "github.com/edumartvn/commerce-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/edumartvn/commerce-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/edumartvn/commerce-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/edumartvn/commerce-api/internal/domains/orders/application"
	ordersports "github.com/edumartvn/commerce-api/internal/domains/orders/ports"

	"github.com/edumartvn/commerce-api/internal/domains/payments/adapters/gateway/clientip"
	"github.com/edumartvn/commerce-api/internal/domains/payments/adapters/gateway/momo"
	"github.com/edumartvn/commerce-api/internal/domains/payments/adapters/gateway/vnpay"
	paymentsmemory "github.com/edumartvn/commerce-api/internal/domains/payments/adapters/memory"
	paymentsobs "github.com/edumartvn/commerce-api/internal/domains/payments/adapters/observability"
	paymentspostgres "github.com/edumartvn/commerce-api/internal/domains/payments/adapters/persistence/postgres"
	paymentsworkflows "github.com/edumartvn/commerce-api/internal/domains/payments/adapters/workflows"
	paymentsapp "github.com/edumartvn/commerce-api/internal/domains/payments/application"
	paymentsports "github.com/edumartvn/commerce-api/internal/domains/payments/ports"

	"github.com/edumartvn/commerce-api/internal/platform/migrations"
	platformobservability "github.com/edumartvn/commerce-api/internal/platform/observability"
	platformpostgres "github.com/edumartvn/commerce-api/internal/platform/postgres"
)

// Run boots the commerce HTTP API with observability, repositories, gateways,
// and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "commerce-api"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	db, cleanupDB := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanupDB()
	if db != nil {
		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	stores := buildStores(db, logger)

	ordersCore := ordersapp.NewService(stores.orders, stores.discountCodes, nil)
	ordersService := ordersobs.New(
		ordersCore,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	billingService := billingapp.NewService(ordersService, stores.invoices, stores.commissions, cfg.Company)
	notifier := paymentsmemory.NewNotifier(logger)

	gateways, err := buildGateways(cfg)
	if err != nil {
		return err
	}

	var sideEffects paymentsports.SideEffectOrchestrator = paymentsworkflows.NewInlinePostPayment(billingService, ordersService, notifier, logger)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal unavailable, running post-payment side effects inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		sideEffects = paymentsworkflows.NewTemporalPostPayment(temporalClient)
		logger.Info("Temporal post-payment workflow enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	paymentsCore := paymentsapp.NewService(
		ordersService,
		stores.audit,
		gateways,
		paymentsapp.WithNotifier(notifier),
		paymentsapp.WithSideEffects(sideEffects),
		paymentsapp.WithCommissionReverser(billingService),
		paymentsapp.WithIPResolver(clientip.NewResolver(cfg.ClientIPEndpoint, nil)),
		paymentsapp.WithRefundWindow(time.Duration(cfg.RefundWindowDays)*24*time.Hour),
		paymentsapp.WithLogger(logger),
	)
	paymentsService := paymentsobs.New(
		paymentsCore,
		paymentsobs.WithLogger(logger),
		paymentsobs.WithTracer(instruments.Tracer("internal.payments.application")),
		paymentsobs.WithMeter(instruments.Meter("internal.payments.application")),
	)

	handlers := commerceserver.ApiHandleFunctions{
		OrdersAPI:   commerceserver.NewOrdersAPI(ordersService),
		PaymentsAPI: commerceserver.NewPaymentsAPI(paymentsService),
		WebhooksAPI: commerceserver.NewWebhooksAPI(paymentsService),
		BillingAPI:  commerceserver.NewBillingAPI(billingService),
	}

	router := commerceserver.NewRouter(handlers)
	router.Use(otelgin.Middleware(serviceName))
	addr := ":" + cfg.Port
	logger.Info("commerce API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("commerce API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// stores groups the persistence ports so postgres and memory wiring stay
// symmetric.
type stores struct {
	orders        ordersports.Repository
	discountCodes ordersports.DiscountCodeStore
	audit         paymentsports.WebhookAuditLog
	invoices      billingports.InvoiceStore
	commissions   billingports.CommissionStore
}

func buildStores(db *gorm.DB, logger *slog.Logger) stores {
	if db == nil {
		logger.Warn("running with in-memory stores, state is lost on restart")
		return stores{
			orders:        ordersmemory.NewRepository(),
			discountCodes: ordersmemory.NewDiscountCodeStore(),
			audit:         paymentsmemory.NewAuditLog(),
			invoices:      billingmemory.NewInvoiceStore(),
			commissions:   billingmemory.NewCommissionStore(),
		}
	}
	logger.Info("stores configured with postgres")
	return stores{
		orders:        orderspostgres.NewRepository(db),
		discountCodes: orderspostgres.NewDiscountCodeStore(db),
		audit:         paymentspostgres.NewAuditLog(db),
		invoices:      billingpostgres.NewInvoiceStore(db),
		commissions:   billingpostgres.NewCommissionStore(db),
	}
}

func buildGateways(cfg Config) ([]paymentsports.Gateway, error) {
	momoClient, err := momo.NewClient(cfg.MoMoEndpoint, &http.Client{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to build wallet client: %w", err)
	}
	return []paymentsports.Gateway{
		vnpay.New(cfg.VNPay, nil),
		momo.New(cfg.MoMo, momoClient),
	}, nil
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
