// Package vnpay implements the VNPay-style hosted-checkout gateway: the
// payment request is a signed redirect URL and the callback arrives as
// query parameters signed with HMAC-SHA512 over the URL-encoded canonical
// string.
package vnpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edumartvn/commerce-api/internal/domains/payments/adapters/gateway/sign"
	"github.com/edumartvn/commerce-api/internal/domains/payments/domain"
	"github.com/edumartvn/commerce-api/internal/domains/payments/ports"
	apperrors "github.com/edumartvn/commerce-api/internal/shared/errors"
)

var _ ports.Gateway = (*Gateway)(nil)

const (
	version       = "2.1.0"
	commandPay    = "pay"
	commandRefund = "refund"
	dateFormat    = "20060102150405"
	expiryWindow  = 15 * time.Minute
	codeSuccess   = "00"
)

// responseMessages maps the gateway's numeric response codes to operator
// messages; unknown codes fall back to a generic message carrying the raw
// code.
var responseMessages = map[string]string{
	"00": "payment successful",
	"07": "suspected fraudulent transaction",
	"09": "card not registered for online banking",
	"10": "authentication failed more than 3 times",
	"11": "payment window expired",
	"12": "account is locked",
	"13": "wrong one-time password",
	"24": "customer cancelled the payment",
	"51": "insufficient funds",
	"65": "daily transaction limit exceeded",
	"75": "bank under maintenance",
	"79": "wrong payment password too many times",
	"99": "unclassified gateway failure",
}

// Config carries the merchant credentials and endpoints.
type Config struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	RefundURL  string
	ReturnURL  string
	Locale     string
	OrderType  string
}

// Gateway builds signed redirect URLs and verifies callbacks for the
// VNPay-style provider.
type Gateway struct {
	cfg      Config
	client   *http.Client
	location *time.Location
	now      func() time.Time
}

// New wires the gateway. A nil httpClient gets a 5 second timeout default;
// timestamps use the merchant timezone with a local fallback.
func New(cfg Config, httpClient *http.Client) *Gateway {
	if cfg.Locale == "" {
		cfg.Locale = "vn"
	}
	if cfg.OrderType == "" {
		cfg.OrderType = "other"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	location, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		location = time.Local
	}
	return &Gateway{cfg: cfg, client: httpClient, location: location, now: time.Now}
}

// Method identifies the provider.
func (g *Gateway) Method() domain.Method { return domain.MethodVNPay }

// CreatePayment builds the hosted-checkout redirect URL. The transaction
// reference is {orderNo}_{unix} so the callback can recover the order number
// and a retry after a uniqueness rejection gets a fresh reference.
func (g *Gateway) CreatePayment(_ context.Context, intent domain.PaymentIntent) (*domain.PaymentLink, error) {
	const op = "vnpay.CreatePayment"
	if g.cfg.TmnCode == "" || g.cfg.HashSecret == "" {
		return nil, apperrors.New(apperrors.KindPayment, op, "gateway credentials not configured")
	}
	now := g.now().In(g.location)
	txnRef := fmt.Sprintf("%s_%d", intent.OrderNo, now.Unix())
	locale := intent.Locale
	if locale == "" {
		locale = g.cfg.Locale
	}
	description := intent.Description
	if description == "" {
		description = "Thanh toan don hang " + intent.OrderNo
	}
	params := map[string]string{
		"vnp_Version":    version,
		"vnp_Command":    commandPay,
		"vnp_TmnCode":    g.cfg.TmnCode,
		"vnp_Amount":     strconv.FormatInt(intent.Amount*100, 10),
		"vnp_CurrCode":   "VND",
		"vnp_TxnRef":     txnRef,
		"vnp_OrderInfo":  description,
		"vnp_OrderType":  g.cfg.OrderType,
		"vnp_Locale":     locale,
		"vnp_ReturnUrl":  g.cfg.ReturnURL,
		"vnp_IpAddr":     intent.ClientIP,
		"vnp_CreateDate": now.Format(dateFormat),
		"vnp_ExpireDate": now.Add(expiryWindow).Format(dateFormat),
	}
	if intent.BankCode != "" {
		params["vnp_BankCode"] = intent.BankCode
	}
	canonical := sign.CanonicalEncoded(params)
	secureHash := sign.HMACSHA512(g.cfg.HashSecret, canonical)
	return &domain.PaymentLink{
		Method:      domain.MethodVNPay,
		RedirectURL: g.cfg.PayURL + "?" + canonical + "&vnp_SecureHash=" + secureHash,
		Reference:   txnRef,
	}, nil
}

// VerifyCallback recomputes the signature over everything except the hash
// fields and only then reads the response code. A forged success payload
// fails the signature check and is reported invalid.
func (g *Gateway) VerifyCallback(params map[string]string) (*domain.CallbackResult, error) {
	received := params["vnp_SecureHash"]
	unsigned := make(map[string]string, len(params))
	for key, value := range params {
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" {
			continue
		}
		unsigned[key] = value
	}
	result := &domain.CallbackResult{
		Method:        domain.MethodVNPay,
		OrderNo:       orderNoFromTxnRef(params["vnp_TxnRef"]),
		TransactionID: params["vnp_TransactionNo"],
		ResponseCode:  params["vnp_ResponseCode"],
	}
	expected := sign.HMACSHA512(g.cfg.HashSecret, sign.CanonicalEncoded(unsigned))
	if received == "" || !sign.Equal(expected, received) {
		result.Message = "invalid signature"
		return result, nil
	}
	result.Valid = true
	if raw := params["vnp_Amount"]; raw != "" {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			result.Message = "malformed amount"
			result.Valid = false
			return result, nil
		}
		result.Amount = amount / 100
	}
	result.Success = result.ResponseCode == codeSuccess
	result.Message = responseMessage(result.ResponseCode)
	return result, nil
}

// Refund posts a signed refund command to the merchant API.
func (g *Gateway) Refund(ctx context.Context, refund domain.RefundOrder) error {
	const op = "vnpay.Refund"
	if g.cfg.RefundURL == "" {
		return apperrors.New(apperrors.KindPayment, op, "refund endpoint not configured")
	}
	now := g.now().In(g.location)
	params := map[string]string{
		"vnp_RequestId":       uuid.NewString(),
		"vnp_Version":         version,
		"vnp_Command":         commandRefund,
		"vnp_TmnCode":         g.cfg.TmnCode,
		"vnp_TransactionType": "02",
		"vnp_TxnRef":          refund.Reference,
		"vnp_TransactionNo":   refund.TransactionID,
		"vnp_Amount":          strconv.FormatInt(refund.Amount*100, 10),
		"vnp_OrderInfo":       refund.Reason,
		"vnp_CreateBy":        refund.RequestedBy,
		"vnp_CreateDate":      now.Format(dateFormat),
	}
	params["vnp_SecureHash"] = sign.HMACSHA512(g.cfg.HashSecret, sign.CanonicalEncoded(params))

	body, err := json.Marshal(params)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnknown, op, err, "encode refund request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.RefundURL, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnknown, op, err, "build refund request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.KindNetwork, op, err, "refund call failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apperrors.New(apperrors.KindPayment, op,
			fmt.Sprintf("refund rejected with status %d", resp.StatusCode))
	}
	var payload struct {
		ResponseCode string `json:"vnp_ResponseCode"`
		Message      string `json:"vnp_Message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return apperrors.Wrap(apperrors.KindPayment, op, err, "decode refund response")
	}
	if payload.ResponseCode != codeSuccess {
		message := payload.Message
		if message == "" {
			message = responseMessage(payload.ResponseCode)
		}
		return apperrors.New(apperrors.KindPayment, op, "refund declined: "+message)
	}
	return nil
}

func responseMessage(code string) string {
	if message, ok := responseMessages[code]; ok {
		return message
	}
	return "unrecognized gateway response code " + code
}

// orderNoFromTxnRef recovers the order number from the {orderNo}_{unix}
// transaction reference.
func orderNoFromTxnRef(txnRef string) string {
	if idx := strings.LastIndex(txnRef, "_"); idx > 0 {
		return txnRef[:idx]
	}
	return txnRef
}

// ParseReturnQuery flattens a callback query string into the parameter map
// VerifyCallback expects.
func ParseReturnQuery(values url.Values) map[string]string {
	params := make(map[string]string, len(values))
	for key := range values {
		params[key] = values.Get(key)
	}
	return params
}
