package commerceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route binds one HTTP method and path pattern to a handler.
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc gin.HandlerFunc
}

// Routes is the list of the server's registered routes.
type Routes []Route

// ApiHandleFunctions groups the API handlers by bounded context.
type ApiHandleFunctions struct {
	OrdersAPI   OrdersAPI
	PaymentsAPI PaymentsAPI
	WebhooksAPI WebhooksAPI
	BillingAPI  BillingAPI
}

// NewRouter returns a new gin engine with all routes registered.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine registers all routes on an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = defaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			router.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

func defaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) Routes {
	return Routes{
		{
			Name:        "CreateOrder",
			Method:      http.MethodPost,
			Pattern:     "/v1/orders",
			HandlerFunc: handleFunctions.OrdersAPI.CreateOrder,
		},
		{
			Name:        "ListOrders",
			Method:      http.MethodGet,
			Pattern:     "/v1/orders",
			HandlerFunc: handleFunctions.OrdersAPI.ListOrders,
		},
		{
			Name:        "GetOrder",
			Method:      http.MethodGet,
			Pattern:     "/v1/orders/:orderNo",
			HandlerFunc: handleFunctions.OrdersAPI.GetOrder,
		},
		{
			Name:        "CancelOrder",
			Method:      http.MethodPost,
			Pattern:     "/v1/orders/:orderNo/cancel",
			HandlerFunc: handleFunctions.OrdersAPI.CancelOrder,
		},
		{
			Name:        "AdvanceFulfillment",
			Method:      http.MethodPost,
			Pattern:     "/v1/orders/:orderNo/fulfillment",
			HandlerFunc: handleFunctions.OrdersAPI.AdvanceFulfillment,
		},
		{
			Name:        "CreatePayment",
			Method:      http.MethodPost,
			Pattern:     "/v1/payments",
			HandlerFunc: handleFunctions.PaymentsAPI.CreatePayment,
		},
		{
			Name:        "PaymentStatus",
			Method:      http.MethodGet,
			Pattern:     "/payment/status/:orderNo",
			HandlerFunc: handleFunctions.PaymentsAPI.PaymentStatus,
		},
		{
			Name:        "ProcessRefund",
			Method:      http.MethodPost,
			Pattern:     "/v1/refunds",
			HandlerFunc: handleFunctions.PaymentsAPI.ProcessRefund,
		},
		{
			Name:        "VNPayIPN",
			Method:      http.MethodPost,
			Pattern:     "/v1/webhooks/vnpay",
			HandlerFunc: handleFunctions.WebhooksAPI.VNPayIPN,
		},
		{
			Name:        "VNPayReturn",
			Method:      http.MethodGet,
			Pattern:     "/v1/payments/vnpay/return",
			HandlerFunc: handleFunctions.WebhooksAPI.VNPayReturn,
		},
		{
			Name:        "MoMoIPN",
			Method:      http.MethodPost,
			Pattern:     "/v1/webhooks/momo",
			HandlerFunc: handleFunctions.WebhooksAPI.MoMoIPN,
		},
		{
			Name:        "MoMoReturnGet",
			Method:      http.MethodGet,
			Pattern:     "/v1/payments/momo/return",
			HandlerFunc: handleFunctions.WebhooksAPI.MoMoReturn,
		},
		{
			Name:        "MoMoReturnPost",
			Method:      http.MethodPost,
			Pattern:     "/v1/payments/momo/return",
			HandlerFunc: handleFunctions.WebhooksAPI.MoMoReturn,
		},
		{
			Name:        "GetInvoice",
			Method:      http.MethodGet,
			Pattern:     "/v1/orders/:orderNo/invoice",
			HandlerFunc: handleFunctions.BillingAPI.GetInvoice,
		},
	}
}
