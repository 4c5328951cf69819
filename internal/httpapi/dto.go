package httpapi

import (
	"time"

	"tradehub-be/internal/dispute"
	"tradehub-be/internal/order"

	"github.com/google/uuid"
)

type OrderItemResponse struct {
	ID        uuid.UUID  `json:"id"`
	ProductID *uuid.UUID `json:"product_id"`
	Title     string     `json:"title"`
	Quantity  int        `json:"quantity"`
	Price     float64    `json:"price"`
}

type OrderResponse struct {
	ID          uuid.UUID             `json:"id"`
	OrderNumber string                `json:"order_number"`
	BuyerID     uuid.UUID             `json:"buyer_id"`
	SellerID    uuid.UUID             `json:"seller_id"`
	Status      order.OrderStatus     `json:"status"`
	TotalAmount float64               `json:"total_amount"`
	Shipping    order.ShippingAddress `json:"shipping"`
	Items       []OrderItemResponse   `json:"items"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		BuyerID:     o.BuyerID,
		SellerID:    o.SellerID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		Shipping:    o.Shipping,
		Items:       make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return resp
}

func toOrderResponses(orders []*order.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	DisputeID uuid.UUID `json:"dispute_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type DisputeResponse struct {
	ID         uuid.UUID             `json:"id"`
	OrderID    uuid.UUID             `json:"order_id"`
	OpenedByID uuid.UUID             `json:"opened_by_id"`
	Reason     string                `json:"reason"`
	Status     dispute.DisputeStatus `json:"status"`
	Resolution *string               `json:"resolution"`
	Messages   []MessageResponse     `json:"messages,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

func toMessageResponse(m *dispute.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		DisputeID: m.DisputeID,
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func toDisputeResponse(d *dispute.Dispute) DisputeResponse {
	resp := DisputeResponse{
		ID:         d.ID,
		OrderID:    d.OrderID,
		OpenedByID: d.OpenedByID,
		Reason:     d.Reason,
		Status:     d.Status,
		Resolution: d.Resolution,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	for _, m := range d.Messages {
		resp.Messages = append(resp.Messages, toMessageResponse(m))
	}
	return resp
}

func toDisputeResponses(disputes []*dispute.Dispute) []DisputeResponse {
	out := make([]DisputeResponse, 0, len(disputes))
	for _, d := range disputes {
		out = append(out, toDisputeResponse(d))
	}
	return out
}
