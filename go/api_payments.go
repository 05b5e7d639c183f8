package commerceserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edumartvn/commerce-api/internal/domains/payments/domain"
	paymentsports "github.com/edumartvn/commerce-api/internal/domains/payments/ports"
)

// PaymentsAPI wires HTTP transport with the payments bounded context service.
type PaymentsAPI struct {
	service paymentsports.Service
}

// NewPaymentsAPI creates a PaymentsAPI backed by the provided service.
func NewPaymentsAPI(service paymentsports.Service) PaymentsAPI {
	return PaymentsAPI{service: service}
}

// CreatePaymentRequest asks for a gateway redirect URL for a pending order.
type CreatePaymentRequest struct {
	OrderNo  string `json:"orderNo" binding:"required"`
	Method   string `json:"method" binding:"required"`
	BankCode string `json:"bankCode,omitempty"`
	Locale   string `json:"locale,omitempty"`

	CustomerID    string `json:"customerId,omitempty"`
	CustomerName  string `json:"customerName,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
}

// CreatePaymentResponse carries the redirect the browser should follow.
type CreatePaymentResponse struct {
	Method      string `json:"method"`
	RedirectURL string `json:"redirectUrl"`
	QRCodeURL   string `json:"qrCodeUrl,omitempty"`
	Reference   string `json:"reference"`
}

// PaymentStatusResponse is the public payment-status projection.
type PaymentStatusResponse struct {
	OrderNo       string     `json:"orderNo"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"paymentStatus"`
	Method        string     `json:"method,omitempty"`
	Total         int64      `json:"total"`
	Currency      string     `json:"currency"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// RefundRequest asks to return money for a settled order.
type RefundRequest struct {
	OrderNo     string `json:"orderNo" binding:"required"`
	Amount      int64  `json:"amount,omitempty"`
	Reason      string `json:"reason,omitempty"`
	RequestedBy string `json:"requestedBy,omitempty"`
}

// RefundResponse reports how the refund request ended.
type RefundResponse struct {
	OrderNo     string    `json:"orderNo"`
	Amount      int64     `json:"amount"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	ProcessedAt time.Time `json:"processedAt"`
}

// Post /v1/payments
// Create a payment and return the gateway redirect URL
func (api *PaymentsAPI) CreatePayment(c *gin.Context) {
	var payload CreatePaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	link, err := api.service.CreatePayment(c.Request.Context(), paymentsports.CreatePaymentInput{
		OrderNo: payload.OrderNo,
		Method:  domain.Method(payload.Method),
		Customer: domain.Customer{
			ID:    payload.CustomerID,
			Name:  payload.CustomerName,
			Email: payload.CustomerEmail,
			Phone: payload.CustomerPhone,
		},
		BankCode: payload.BankCode,
		Locale:   payload.Locale,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, CreatePaymentResponse{
		Method:      string(link.Method),
		RedirectURL: link.RedirectURL,
		QRCodeURL:   link.QRCodeURL,
		Reference:   link.Reference,
	})
}

// Get /payment/status/:orderNo
// Project the payment leg of an order
func (api *PaymentsAPI) PaymentStatus(c *gin.Context) {
	view, err := api.service.PaymentStatus(c.Request.Context(), c.Param("orderNo"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, PaymentStatusResponse{
		OrderNo:       view.OrderNo,
		Status:        string(view.Status),
		PaymentStatus: string(view.PaymentStatus),
		Method:        view.Method,
		Total:         view.Total,
		Currency:      view.Currency,
		PaidAt:        view.PaidAt,
		UpdatedAt:     view.UpdatedAt,
	})
}

// Post /v1/refunds
// Process a refund against the gateway that took the payment
func (api *PaymentsAPI) ProcessRefund(c *gin.Context) {
	var payload RefundRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	result, err := api.service.ProcessRefund(c.Request.Context(), domain.RefundOrder{
		OrderNo:     payload.OrderNo,
		Amount:      payload.Amount,
		Reason:      payload.Reason,
		RequestedBy: payload.RequestedBy,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	status := http.StatusOK
	if result.Status == domain.RefundFailed {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, RefundResponse{
		OrderNo:     result.OrderNo,
		Amount:      result.Amount,
		Status:      string(result.Status),
		Message:     result.Message,
		ProcessedAt: result.ProcessedAt,
	})
}
