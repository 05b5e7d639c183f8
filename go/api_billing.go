package commerceserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	billingdomain "github.com/edumartvn/commerce-api/internal/domains/billing/domain"
	billingports "github.com/edumartvn/commerce-api/internal/domains/billing/ports"
)

// BillingAPI wires HTTP transport with the billing bounded context service.
type BillingAPI struct {
	service billingports.Service
}

// NewBillingAPI creates a BillingAPI backed by the provided service.
func NewBillingAPI(service billingports.Service) BillingAPI {
	return BillingAPI{service: service}
}

// InvoiceParty is either side of the invoice as printed.
type InvoiceParty struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	TaxCode string `json:"taxCode,omitempty"`
}

// InvoiceLine is one printed invoice row.
type InvoiceLine struct {
	Description string `json:"description"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	Discount    int64  `json:"discount,omitempty"`
	Amount      int64  `json:"amount"`
}

// Invoice is the HTTP representation of the billing document.
type Invoice struct {
	Number        string        `json:"number"`
	OrderNo       string        `json:"orderNo"`
	Status        string        `json:"status"`
	Customer      InvoiceParty  `json:"customer"`
	Company       InvoiceParty  `json:"company"`
	Lines         []InvoiceLine `json:"lines"`
	Subtotal      int64         `json:"subtotal"`
	OrderDiscount int64         `json:"orderDiscount,omitempty"`
	Tax           int64         `json:"tax"`
	ShippingFee   int64         `json:"shippingFee,omitempty"`
	Total         int64         `json:"total"`
	Currency      string        `json:"currency"`
	IssuedAt      time.Time     `json:"issuedAt"`
}

// Get /v1/orders/:orderNo/invoice
// Load the invoice issued for a settled order
func (api *BillingAPI) GetInvoice(c *gin.Context) {
	invoice, err := api.service.GetInvoice(c.Request.Context(), c.Param("orderNo"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromDomainInvoice(invoice))
}

func fromDomainInvoice(invoice *billingdomain.Invoice) Invoice {
	if invoice == nil {
		return Invoice{}
	}
	lines := make([]InvoiceLine, 0, len(invoice.Lines))
	for _, line := range invoice.Lines {
		lines = append(lines, InvoiceLine{
			Description: line.Description,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Discount:    line.Discount,
			Amount:      line.Amount,
		})
	}
	return Invoice{
		Number:  invoice.Number,
		OrderNo: invoice.OrderNo,
		Status:  string(invoice.Status),
		Customer: InvoiceParty{
			Name:    invoice.Customer.Name,
			Address: invoice.Customer.Address,
			Email:   invoice.Customer.Email,
			Phone:   invoice.Customer.Phone,
			TaxCode: invoice.Customer.TaxCode,
		},
		Company: InvoiceParty{
			Name:    invoice.Company.Name,
			Address: invoice.Company.Address,
			Email:   invoice.Company.Email,
			Phone:   invoice.Company.Phone,
			TaxCode: invoice.Company.TaxCode,
		},
		Lines:         lines,
		Subtotal:      invoice.Subtotal,
		OrderDiscount: invoice.OrderDiscount,
		Tax:           invoice.Tax,
		ShippingFee:   invoice.ShippingFee,
		Total:         invoice.Total,
		Currency:      invoice.Currency,
		IssuedAt:      invoice.IssuedAt,
	}
}
