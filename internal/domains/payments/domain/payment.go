package domain

import (
	"errors"
	"time"
)

// Method identifies a supported payment gateway.
type Method string

const (
	MethodVNPay Method = "vnpay"
	MethodMoMo  Method = "momo"
)

var (
	ErrUnsupportedMethod = errors.New("payment method is not supported")
	ErrInvalidSignature  = errors.New("invalid signature")
)

// Customer carries the payer details forwarded to the gateway.
type Customer struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// PaymentIntent is the gateway-agnostic create-payment command.
type PaymentIntent struct {
	OrderNo     string
	Amount      int64
	Description string
	ClientIP    string
	Customer    Customer
	BankCode    string
	Locale      string
}

// PaymentLink is what the gateway hands back for the browser redirect.
type PaymentLink struct {
	Method      Method
	RedirectURL string
	QRCodeURL   string
	// Reference is the gateway-side identifier recorded on the order before
	// the redirect, so a later callback can be correlated.
	Reference string
}

// CallbackResult is the verified view of a gateway notification. Valid=false
// forces Success=false no matter what the payload claims.
type CallbackResult struct {
	Method        Method
	Valid         bool
	Success       bool
	OrderNo       string
	Amount        int64
	TransactionID string
	ResponseCode  string
	Message       string
}

// RefundOrder is the gateway-agnostic refund command. Reference is the
// gateway-side request reference recorded when the payment was created.
type RefundOrder struct {
	OrderNo       string
	Reference     string
	TransactionID string
	Amount        int64
	Reason        string
	RequestedBy   string
}

// RefundStatus reports how a refund request ended.
type RefundStatus string

const (
	RefundCompleted RefundStatus = "completed"
	RefundFailed    RefundStatus = "failed"
)

// RefundResult is returned to the caller whether or not the gateway accepted
// the refund; Status failed leaves the order untouched.
type RefundResult struct {
	OrderNo     string
	Amount      int64
	Status      RefundStatus
	Message     string
	ProcessedAt time.Time
}

// WebhookOutcome classifies an inbound gateway notification for the audit log.
type WebhookOutcome string

const (
	WebhookInvalid        WebhookOutcome = "invalid"
	WebhookFailed         WebhookOutcome = "failed"
	WebhookConfirmed      WebhookOutcome = "confirmed"
	WebhookDuplicate      WebhookOutcome = "duplicate"
	WebhookOrderNotFound  WebhookOutcome = "order_not_found"
	WebhookAmountMismatch WebhookOutcome = "amount_mismatch"
	WebhookError          WebhookOutcome = "error"
)

// WebhookEntry is one audit-log line per inbound gateway call. RawPayload is
// the canonical key=value rendering of the delivery with signatures redacted.
type WebhookEntry struct {
	ID         uint64
	Method     Method
	OrderNo    string
	Outcome    WebhookOutcome
	Message    string
	RawPayload string
	ReceivedAt time.Time
}
