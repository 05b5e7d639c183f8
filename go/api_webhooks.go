package commerceserver

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumartvn/commerce-api/internal/domains/payments/domain"
	paymentsports "github.com/edumartvn/commerce-api/internal/domains/payments/ports"
)

// WebhooksAPI terminates the gateway-facing callback endpoints. These answer
// in each gateway's expected ack shape instead of problem+json, because the
// caller is the gateway's retry loop, not a browser.
type WebhooksAPI struct {
	service paymentsports.Service
}

// NewWebhooksAPI creates a WebhooksAPI backed by the payments service.
func NewWebhooksAPI(service paymentsports.Service) WebhooksAPI {
	return WebhooksAPI{service: service}
}

// vnpayAck is the IPN response shape the redirect gateway expects.
type vnpayAck struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// ReturnSummary is what the SPA renders after the browser comes back from
// the gateway.
type ReturnSummary struct {
	OrderNo string `json:"orderNo"`
	Success bool   `json:"success"`
	Outcome string `json:"outcome"`
	Message string `json:"message"`
}

// Post /v1/webhooks/vnpay
// Server-to-server IPN from the redirect gateway
func (api *WebhooksAPI) VNPayIPN(c *gin.Context) {
	ack, err := api.service.HandleCallback(c.Request.Context(), domain.MethodVNPay, queryParams(c))
	if err != nil {
		c.JSON(http.StatusOK, vnpayAck{RspCode: "99", Message: "Unknown error"})
		return
	}
	c.JSON(http.StatusOK, vnpayAckFor(ack.Outcome))
}

// Get /v1/payments/vnpay/return
// Browser return from the redirect gateway
func (api *WebhooksAPI) VNPayReturn(c *gin.Context) {
	ack, err := api.service.HandleCallback(c.Request.Context(), domain.MethodVNPay, queryParams(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, returnSummary(ack))
}

// Post /v1/webhooks/momo
// Server-to-server IPN from the wallet gateway
func (api *WebhooksAPI) MoMoIPN(c *gin.Context) {
	params, err := jsonParams(c)
	if err != nil {
		respondBindingError(c, err)
		return
	}
	ack, err := api.service.HandleCallback(c.Request.Context(), domain.MethodMoMo, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if ack.Outcome == domain.WebhookInvalid {
		// A forged notification must not be acknowledged.
		respondBindingError(c, domain.ErrInvalidSignature)
		return
	}
	// The wallet stops retrying on 204.
	c.Status(http.StatusNoContent)
}

// Get|Post /v1/payments/momo/return
// Browser return from the wallet gateway
func (api *WebhooksAPI) MoMoReturn(c *gin.Context) {
	params := queryParams(c)
	if len(params) == 0 {
		var err error
		if params, err = jsonParams(c); err != nil {
			respondBindingError(c, err)
			return
		}
	}
	ack, err := api.service.HandleCallback(c.Request.Context(), domain.MethodMoMo, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, returnSummary(ack))
}

func vnpayAckFor(outcome domain.WebhookOutcome) vnpayAck {
	switch outcome {
	case domain.WebhookConfirmed, domain.WebhookFailed:
		return vnpayAck{RspCode: "00", Message: "Confirm Success"}
	case domain.WebhookDuplicate:
		return vnpayAck{RspCode: "02", Message: "Order already confirmed"}
	case domain.WebhookInvalid:
		return vnpayAck{RspCode: "97", Message: "Invalid signature"}
	case domain.WebhookOrderNotFound:
		return vnpayAck{RspCode: "01", Message: "Order not found"}
	case domain.WebhookAmountMismatch:
		return vnpayAck{RspCode: "04", Message: "Invalid amount"}
	default:
		return vnpayAck{RspCode: "99", Message: "Unknown error"}
	}
}

func returnSummary(ack *paymentsports.CallbackAck) ReturnSummary {
	return ReturnSummary{
		OrderNo: ack.Result.OrderNo,
		Success: ack.Outcome == domain.WebhookConfirmed || ack.Outcome == domain.WebhookDuplicate,
		Outcome: string(ack.Outcome),
		Message: ack.Result.Message,
	}
}

// queryParams flattens the query string into the gateway-agnostic param map.
func queryParams(c *gin.Context) map[string]string {
	values := c.Request.URL.Query()
	params := make(map[string]string, len(values))
	for key := range values {
		params[key] = values.Get(key)
	}
	return params
}

// jsonParams flattens a JSON notification body into the param map. Numbers
// keep their wire rendering so signatures recompute over the same bytes.
func jsonParams(c *gin.Context) (map[string]string, error) {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.UseNumber()
	var body map[string]any
	if err := decoder.Decode(&body); err != nil {
		return nil, err
	}
	params := make(map[string]string, len(body))
	for key, value := range body {
		switch typed := value.(type) {
		case string:
			params[key] = typed
		case json.Number:
			params[key] = typed.String()
		case bool:
			if typed {
				params[key] = "true"
			} else {
				params[key] = "false"
			}
		case nil:
			params[key] = ""
		default:
			raw, err := json.Marshal(typed)
			if err != nil {
				return nil, err
			}
			params[key] = string(raw)
		}
	}
	return params, nil
}
