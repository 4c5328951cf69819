package order

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// ValidTransitions is the full order status machine. Statuses with no entry
// value are terminal.
var ValidTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func (s OrderStatus) Valid() bool {
	_, ok := ValidTransitions[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	next, ok := ValidTransitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether next is a legal successor of s.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range ValidTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ShippingAddress is the structured snapshot captured on the order. It is
// immutable after creation.
type ShippingAddress struct {
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
}

// Validate applies the structural rules checked before any write.
func (a ShippingAddress) Validate() error {
	if len(strings.TrimSpace(a.FullName)) < 2 {
		return fmt.Errorf("%w: name is required", ErrInvalidShipping)
	}
	if len(strings.TrimSpace(a.Address)) < 5 {
		return fmt.Errorf("%w: address is required", ErrInvalidShipping)
	}
	if len(strings.TrimSpace(a.City)) < 2 {
		return fmt.Errorf("%w: city is required", ErrInvalidShipping)
	}
	if len(strings.TrimSpace(a.State)) < 2 {
		return fmt.Errorf("%w: state is required", ErrInvalidShipping)
	}
	if len(strings.TrimSpace(a.ZipCode)) < 5 {
		return fmt.Errorf("%w: ZIP code is required", ErrInvalidShipping)
	}
	if len(strings.TrimSpace(a.Country)) < 2 {
		return fmt.Errorf("%w: country is required", ErrInvalidShipping)
	}
	if digitCount(a.Phone) < 10 {
		return fmt.Errorf("%w: phone number is required", ErrInvalidShipping)
	}
	return nil
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

type Order struct {
	ID          uuid.UUID
	OrderNumber string
	BuyerID     uuid.UUID
	SellerID    uuid.UUID
	Status      OrderStatus
	TotalAmount float64
	Shipping    ShippingAddress
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Items       []OrderItem
}

// OrderItem captures the unit price at purchase time; it never tracks later
// catalog price changes. ProductID is nil once the product has been deleted.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID *uuid.UUID
	Title     string
	Quantity  int
	Price     float64
}

type ItemInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CreateInput is one seller group of a cart. Multi-seller carts are submitted
// as one call per seller.
type CreateInput struct {
	SellerID uuid.UUID       `json:"seller_id"`
	Items    []ItemInput     `json:"items"`
	Shipping ShippingAddress `json:"shipping"`
}

type Filter struct {
	Status *OrderStatus
}

// ItemSummary and Summary feed the post-creation notification hook.
type ItemSummary struct {
	Title    string  `json:"title"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type Summary struct {
	OrderID     uuid.UUID     `json:"order_id"`
	OrderNumber string        `json:"order_number"`
	TotalAmount float64       `json:"total_amount"`
	Items       []ItemSummary `json:"items"`
}
