package mapper

import (
	"time"

	"github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	"github.com/edumartvn/commerce-api/internal/domains/orders/ports"
)

// OrderItem is the HTTP representation of a line item.
type OrderItem struct {
	Type      string `json:"type"`
	RefID     string `json:"refId"`
	Name      string `json:"name"`
	PartnerID string `json:"partnerId,omitempty"`
	Category  string `json:"category,omitempty"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Discount  int64  `json:"discount,omitempty"`
}

// ShippingInfo is the HTTP representation of a delivery address.
type ShippingInfo struct {
	Recipient string `json:"recipient"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Fee       int64  `json:"fee,omitempty"`
}

// CreateOrder captures the inbound order payload.
type CreateOrder struct {
	UserID       string        `json:"userId" binding:"required"`
	Items        []OrderItem   `json:"items" binding:"required"`
	Shipping     *ShippingInfo `json:"shipping,omitempty"`
	DiscountCode string        `json:"discountCode,omitempty"`
	Notes        string        `json:"notes,omitempty"`
}

// Order is the HTTP representation of the aggregate.
type Order struct {
	OrderNo     string      `json:"orderNo"`
	UserID      string      `json:"userId"`
	Items       []OrderItem `json:"items"`
	Subtotal    int64       `json:"subtotal"`
	Discount    int64       `json:"discount"`
	ShippingFee int64       `json:"shippingFee"`
	Tax         int64       `json:"tax"`
	Total       int64       `json:"total"`
	Currency    string      `json:"currency"`

	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`

	Shipping *ShippingInfo `json:"shipping,omitempty"`
	Notes    []string      `json:"notes,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}

// OrderList is the paginated history response.
type OrderList struct {
	Orders   []Order `json:"orders"`
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
}

// ToCreateOrderInput maps the inbound payload into the application command.
func ToCreateOrderInput(payload CreateOrder) ports.CreateOrderInput {
	items := make([]domain.OrderItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, domain.OrderItem{
			Type:      domain.ItemType(item.Type),
			RefID:     item.RefID,
			Name:      item.Name,
			PartnerID: item.PartnerID,
			Category:  item.Category,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Discount:  item.Discount,
		})
	}
	input := ports.CreateOrderInput{
		UserID:       payload.UserID,
		Items:        items,
		DiscountCode: payload.DiscountCode,
		Notes:        payload.Notes,
	}
	if payload.Shipping != nil {
		input.Shipping = &domain.ShippingInfo{
			Recipient: payload.Shipping.Recipient,
			Phone:     payload.Shipping.Phone,
			Address:   payload.Shipping.Address,
			City:      payload.Shipping.City,
		}
	}
	return input
}

// FromDomainOrder maps an aggregate to its transport representation.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	items := make([]OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItem{
			Type:      string(item.Type),
			RefID:     item.RefID,
			Name:      item.Name,
			PartnerID: item.PartnerID,
			Category:  item.Category,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Discount:  item.Discount,
		})
	}
	result := Order{
		OrderNo:       order.OrderNo,
		UserID:        order.UserID,
		Items:         items,
		Subtotal:      order.Subtotal,
		Discount:      order.Discount,
		ShippingFee:   order.ShippingFee,
		Tax:           order.Tax,
		Total:         order.Total,
		Currency:      order.Currency,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		PaymentMethod: order.PaymentMethod,
		TransactionID: order.TransactionID,
		Notes:         order.Notes,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
		PaidAt:        order.PaidAt,
		CompletedAt:   order.CompletedAt,
		CancelledAt:   order.CancelledAt,
	}
	if order.Shipping != nil {
		result.Shipping = &ShippingInfo{
			Recipient: order.Shipping.Recipient,
			Phone:     order.Shipping.Phone,
			Address:   order.Shipping.Address,
			City:      order.Shipping.City,
			Fee:       order.Shipping.Fee,
		}
	}
	return result
}

// FromDomainOrderList maps a page of aggregates.
func FromDomainOrderList(orders []*domain.Order, total int64, page, pageSize int) OrderList {
	mapped := make([]Order, 0, len(orders))
	for _, order := range orders {
		mapped = append(mapped, FromDomainOrder(order))
	}
	return OrderList{Orders: mapped, Total: total, Page: page, PageSize: pageSize}
}
