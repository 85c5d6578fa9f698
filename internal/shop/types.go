package shop

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantityPerLine caps how many units of one size a cart line may hold.
const MaxQuantityPerLine = 5

// SizeStock is the stock level of one size of a product.
type SizeStock struct {
	ID    string `json:"_id"`
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// Brand mirrors the populated brand reference on a product.
type Brand struct {
	ID   string `json:"_id"`
	Name string `json:"brandName"`
}

// Product is the denormalized product snapshot embedded in cart and order lines.
type Product struct {
	ID        string          `json:"_id"`
	Name      string          `json:"productName"`
	Brand     Brand           `json:"brand"`
	Thumbnail string          `json:"thumbnail"`
	SalePrice decimal.Decimal `json:"salePrice"`
	Stock     []SizeStock     `json:"stock"`
}

// StockFor returns the stock for size, or zero when the size is unknown.
func (p Product) StockFor(size string) int {
	for _, s := range p.Stock {
		if s.Size == size {
			return s.Stock
		}
	}
	return 0
}

// CartItem is a single line in the user's cart.
type CartItem struct {
	ID       string  `json:"_id"`
	Product  Product `json:"productId"`
	Size     string  `json:"size"`
	Quantity int     `json:"quantity"`
}

// Cart mirrors GET /user/cart.
type Cart struct {
	Items []CartItem `json:"items"`
}

// CartItemUpdate is the body of PATCH /user/cart/{itemId}.
type CartItemUpdate struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// Address is a saved postal address.
type Address struct {
	ID               string `json:"_id"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Street           string `json:"street,omitempty"`
	City             string `json:"city"`
	District         string `json:"district"`
	State            string `json:"state"`
	Pincode          string `json:"pincode"`
	MobileNumber     string `json:"mobileNumber"`
	IsDefaultAddress bool   `json:"isDefaultAddress"`
}

// FullName joins first and last name.
func (a Address) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Locality returns "city, district, state" skipping empty parts.
func (a Address) Locality() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.City, a.District, a.State} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Order item statuses reported by the backend.
const (
	ItemStatusPending         = "Pending"
	ItemStatusConfirmed       = "Confirmed"
	ItemStatusShipped         = "Shipped"
	ItemStatusDelivered       = "Delivered"
	ItemStatusCancelled       = "Cancelled"
	ItemStatusReturnRequested = "Return Requested"
	ItemStatusReturned        = "Returned"
)

// OrderItem is one line of a placed order.
type OrderItem struct {
	ID       string          `json:"_id"`
	Product  Product         `json:"productId"`
	Size     string          `json:"size"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Status   string          `json:"status"`
}

// Cancellable reports whether the item may still be cancelled.
func (i OrderItem) Cancellable() bool {
	switch i.Status {
	case ItemStatusPending, ItemStatusConfirmed, ItemStatusShipped:
		return true
	}
	return false
}

// Returnable reports whether a return may be requested for the item.
func (i OrderItem) Returnable() bool {
	return i.Status == ItemStatusDelivered
}

// Order mirrors a single order document.
type Order struct {
	ID              string          `json:"_id"`
	OrderNumber     string          `json:"orderId"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentStatus   string          `json:"paymentStatus"`
	ShippingAddress Address         `json:"shippingAddress"`
	CreatedAt       string          `json:"createdAt"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (o Order) ParsedCreatedAt() time.Time {
	return parseTime(o.CreatedAt)
}

// OrdersPage mirrors GET /user/orders/user-orders.
type OrdersPage struct {
	Orders      []Order `json:"orders"`
	CurrentPage int     `json:"currentPage"`
	TotalPages  int     `json:"totalPages"`
	TotalOrders int     `json:"totalOrders"`
}

// CreateOrderRequest is the body of POST /user/orders/create.
type CreateOrderRequest struct {
	AddressID     string `json:"addressId"`
	PaymentMethod string `json:"paymentMethod"`
}

// CreateOrderResponse is returned after an order is placed. PaymentOrderID is
// set when the payment method needs a gateway round trip.
type CreateOrderResponse struct {
	Order          Order  `json:"order"`
	PaymentOrderID string `json:"paymentOrderId"`
}

// VerifyPaymentRequest forwards the gateway callback fields to the backend.
type VerifyPaymentRequest struct {
	OrderID        string `json:"orderId"`
	PaymentOrderID string `json:"paymentOrderId"`
	PaymentID      string `json:"paymentId"`
	Signature      string `json:"signature"`
}

// VerifyPaymentResponse reports the outcome of payment verification.
type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ReturnRequest is the body of PATCH .../items/{itemId}/return.
type ReturnRequest struct {
	Reason  string `json:"reason"`
	Remarks string `json:"remarks"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
