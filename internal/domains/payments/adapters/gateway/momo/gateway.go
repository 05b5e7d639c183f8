// Package momo implements the MoMo-style wallet gateway: create-payment and
// refund are JSON POSTs signed with HMAC-SHA256, and the callback is a JSON
// notification verified with the same sort-join-HMAC recipe.
package momo

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/edumartvn/commerce-api/internal/domains/payments/adapters/gateway/sign"
	"github.com/edumartvn/commerce-api/internal/domains/payments/domain"
	"github.com/edumartvn/commerce-api/internal/domains/payments/ports"
	apperrors "github.com/edumartvn/commerce-api/internal/shared/errors"
)

var _ ports.Gateway = (*Gateway)(nil)

const (
	resultSuccess      = 0
	defaultRequestType = "captureWallet"
)

// Config carries the wallet partner credentials and endpoints.
type Config struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string
	RedirectURL string
	IPNURL      string
	RequestType string
}

// Gateway signs wallet commands and verifies wallet callbacks.
type Gateway struct {
	cfg    Config
	client *Client
}

// New wires the gateway around a wallet API client.
func New(cfg Config, client *Client) *Gateway {
	if cfg.RequestType == "" {
		cfg.RequestType = defaultRequestType
	}
	return &Gateway{cfg: cfg, client: client}
}

// Method identifies the provider.
func (g *Gateway) Method() domain.Method { return domain.MethodMoMo }

// CreatePayment posts a signed create-payment command. The requestId is a
// fresh uuid, distinct from the orderId, so the wallet can tell retries from
// new orders.
func (g *Gateway) CreatePayment(ctx context.Context, intent domain.PaymentIntent) (*domain.PaymentLink, error) {
	const op = "momo.CreatePayment"
	if g.cfg.PartnerCode == "" || g.cfg.SecretKey == "" {
		return nil, apperrors.New(apperrors.KindPayment, op, "gateway credentials not configured")
	}
	if g.client == nil {
		return nil, apperrors.New(apperrors.KindPayment, op, "wallet client not configured")
	}
	description := intent.Description
	if description == "" {
		description = "Thanh toan don hang " + intent.OrderNo
	}
	request := createRequest{
		PartnerCode: g.cfg.PartnerCode,
		RequestID:   uuid.NewString(),
		OrderID:     intent.OrderNo,
		Amount:      intent.Amount,
		OrderInfo:   description,
		RedirectURL: g.cfg.RedirectURL,
		IPNURL:      g.cfg.IPNURL,
		RequestType: g.cfg.RequestType,
		ExtraData:   "",
	}
	request.Signature = g.signCreate(request)

	response, err := g.client.CreatePayment(ctx, request)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindNetwork, op, err, "create payment call failed")
	}
	if response.ResultCode != resultSuccess {
		return nil, apperrors.New(apperrors.KindPayment, op,
			"create payment declined: "+response.Message).
			WithContext("resultCode", strconv.Itoa(response.ResultCode))
	}
	return &domain.PaymentLink{
		Method:      domain.MethodMoMo,
		RedirectURL: response.PayURL,
		QRCodeURL:   response.QRCodeURL,
		Reference:   request.RequestID,
	}, nil
}

// VerifyCallback recomputes the signature over every field except the
// signature itself; only a verified payload's resultCode is interpreted.
func (g *Gateway) VerifyCallback(params map[string]string) (*domain.CallbackResult, error) {
	received := params["signature"]
	unsigned := make(map[string]string, len(params))
	for key, value := range params {
		if key == "signature" {
			continue
		}
		unsigned[key] = value
	}
	result := &domain.CallbackResult{
		Method:        domain.MethodMoMo,
		OrderNo:       params["orderId"],
		TransactionID: params["transId"],
		ResponseCode:  params["resultCode"],
	}
	expected := sign.HMACSHA256(g.cfg.SecretKey, sign.Canonical(unsigned))
	if received == "" || !sign.Equal(expected, received) {
		result.Message = "invalid signature"
		return result, nil
	}
	result.Valid = true
	if raw := params["amount"]; raw != "" {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			result.Valid = false
			result.Message = "malformed amount"
			return result, nil
		}
		result.Amount = amount
	}
	result.Success = params["resultCode"] == strconv.Itoa(resultSuccess)
	if message := params["message"]; message != "" {
		result.Message = message
	} else if result.Success {
		result.Message = "payment successful"
	} else {
		result.Message = "wallet reported result code " + result.ResponseCode
	}
	return result, nil
}

// Refund posts a signed refund command for a settled transaction.
func (g *Gateway) Refund(ctx context.Context, refund domain.RefundOrder) error {
	const op = "momo.Refund"
	if g.client == nil {
		return apperrors.New(apperrors.KindPayment, op, "wallet client not configured")
	}
	request := refundRequest{
		PartnerCode: g.cfg.PartnerCode,
		RequestID:   uuid.NewString(),
		OrderID:     refund.OrderNo,
		Amount:      refund.Amount,
		TransID:     refund.TransactionID,
		Description: refund.Reason,
	}
	request.Signature = g.signRefund(request)

	response, err := g.client.Refund(ctx, request)
	if err != nil {
		return apperrors.Wrap(apperrors.KindNetwork, op, err, "refund call failed")
	}
	if response.ResultCode != resultSuccess {
		return apperrors.New(apperrors.KindPayment, op,
			"refund declined: "+response.Message).
			WithContext("resultCode", strconv.Itoa(response.ResultCode))
	}
	return nil
}

func (g *Gateway) signCreate(request createRequest) string {
	return sign.HMACSHA256(g.cfg.SecretKey, sign.Canonical(map[string]string{
		"accessKey":   g.cfg.AccessKey,
		"partnerCode": request.PartnerCode,
		"requestId":   request.RequestID,
		"orderId":     request.OrderID,
		"amount":      strconv.FormatInt(request.Amount, 10),
		"orderInfo":   request.OrderInfo,
		"redirectUrl": request.RedirectURL,
		"ipnUrl":      request.IPNURL,
		"requestType": request.RequestType,
		"extraData":   request.ExtraData,
	}))
}

func (g *Gateway) signRefund(request refundRequest) string {
	return sign.HMACSHA256(g.cfg.SecretKey, sign.Canonical(map[string]string{
		"accessKey":   g.cfg.AccessKey,
		"partnerCode": request.PartnerCode,
		"requestId":   request.RequestID,
		"orderId":     request.OrderID,
		"amount":      strconv.FormatInt(request.Amount, 10),
		"transId":     request.TransID,
		"description": request.Description,
	}))
}
