//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Two contracts live here. The commerce API consumes the MoMo-style wallet
// API, and the checkout portal consumes the commerce API; the provider test
// verifies the latter pact against an in-memory build of this server.
const (
	WalletProviderName = "momo-wallet"
	WalletConsumerName = "commerce-api"

	APIProviderName    = "commerce-api"
	PortalConsumerName = "checkout-portal"

	StateWalletAccepting      = "wallet accepts create-payment commands"
	StateWalletRefundable     = "wallet transaction 990011223344 is refundable"
	StateWalletRefundRejected = "wallet transaction 990055667788 cannot be refunded"

	StateOrdersBaseline = "orders baseline"
	StateOrderExists    = "order " + ExistingOrderNo + " exists"
	StateOrderMissing   = "no order " + MissingOrderNo
)

const (
	WalletPartnerCode = "EDUMARTTEST"
	WalletAccessKey   = "pact-access-key"
	WalletSecretKey   = "pact-secret-key"

	WalletOrderNo        = "EDM2608310042"
	WalletOrderAmount    = 550000
	WalletOrderInfo      = "Thanh toan don hang EDM2608310042"
	WalletRefundReason   = "Khach huy khoa hoc"
	RefundableTransID    = "990011223344"
	NonRefundableTransID = "990055667788"
	WalletRedirectURL    = "https://edumart.example/payment/momo/return"
	WalletIPNURL         = "https://edumart.example/v1/webhooks/momo"
	ExampleWalletPayURL  = "https://test-payment.momo.vn/v2/gateway/pay?t=pact"
	ExampleWalletQRURL   = "https://test-payment.momo.vn/v2/gateway/qr?t=pact"
	ExampleWalletRequest = "3f6c1f1e-6f1a-4b77-9f30-5a1d9d2f7b10"
	ExampleWalletSig     = "9b74c9897bac770ffc029102a200c5de1bc4a3e1a6c5c9b3f1d2e4a5b6c7d8e9"
	HexSHA256Pattern     = "^[0-9a-f]{64}$"
	UUIDPattern          = "^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$"
	OrderNoPattern       = "^EDM[0-9]{10}$"
	RFC3339Pattern       = `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`
)

const (
	ExistingOrderNo = "EDM2608310101"
	MissingOrderNo  = "EDM0000000000"

	PortalUserID     = "user-7421"
	PortalCourseID   = "course-go-101"
	PortalCourseName = "Lap trinh Go co ban"
	PortalUnitPrice  = 500000
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// WalletPactFile is where the wallet consumer test writes its contract.
func WalletPactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), WalletConsumerName+"-"+WalletProviderName+".json")
}

// PortalPactFile is the contract the provider test verifies this server against.
func PortalPactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), PortalConsumerName+"-"+APIProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
