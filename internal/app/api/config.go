package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.temporal.io/sdk/client"

	billingdomain "github.com/edumartvn/commerce-api/internal/domains/billing/domain"
	"github.com/edumartvn/commerce-api/internal/domains/payments/adapters/gateway/momo"
	"github.com/edumartvn/commerce-api/internal/domains/payments/adapters/gateway/vnpay"
)

const defaultRefundWindowDays = 30

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	RefundWindowDays int
	ClientIPEndpoint string

	VNPay        vnpay.Config
	MoMo         momo.Config
	MoMoEndpoint string

	Company billingdomain.Company
}

// LoadConfig reads environment variables, applies defaults, and validates
// basic constraints. Gateway credentials may be empty in dev; the affected
// gateway then rejects create-payment calls at runtime.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		RefundWindowDays:  defaultRefundWindowDays,
		ClientIPEndpoint:  strings.TrimSpace(os.Getenv("CLIENT_IP_ENDPOINT")),
		VNPay: vnpay.Config{
			TmnCode:    strings.TrimSpace(os.Getenv("VNPAY_TMN_CODE")),
			HashSecret: strings.TrimSpace(os.Getenv("VNPAY_HASH_SECRET")),
			PayURL:     envDefault("VNPAY_PAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
			RefundURL:  envDefault("VNPAY_REFUND_URL", "https://sandbox.vnpayment.vn/merchant_webapi/api/transaction"),
			ReturnURL:  strings.TrimSpace(os.Getenv("VNPAY_RETURN_URL")),
		},
		MoMo: momo.Config{
			PartnerCode: strings.TrimSpace(os.Getenv("MOMO_PARTNER_CODE")),
			AccessKey:   strings.TrimSpace(os.Getenv("MOMO_ACCESS_KEY")),
			SecretKey:   strings.TrimSpace(os.Getenv("MOMO_SECRET_KEY")),
			RedirectURL: strings.TrimSpace(os.Getenv("MOMO_REDIRECT_URL")),
			IPNURL:      strings.TrimSpace(os.Getenv("MOMO_IPN_URL")),
		},
		MoMoEndpoint: envDefault("MOMO_ENDPOINT", "https://test-payment.momo.vn"),
		Company: billingdomain.Company{
			Name:    envDefault("COMPANY_NAME", "EduMart Vietnam JSC"),
			Address: envDefault("COMPANY_ADDRESS", "Tầng 5, 123 Nguyễn Văn Cừ, Quận 1, TP. Hồ Chí Minh"),
			TaxCode: strings.TrimSpace(os.Getenv("COMPANY_TAX_CODE")),
			Email:   strings.TrimSpace(os.Getenv("COMPANY_EMAIL")),
			Phone:   strings.TrimSpace(os.Getenv("COMPANY_PHONE")),
		},
	}
	if raw := strings.TrimSpace(os.Getenv("REFUND_WINDOW_DAYS")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return Config{}, fmt.Errorf("REFUND_WINDOW_DAYS must be a positive integer")
		}
		cfg.RefundWindowDays = days
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
