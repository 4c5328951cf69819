package product

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog snapshot consulted by the order builder. The catalog
// itself is owned by sellers; the only mutation issued from this service is
// the conditional stock decrement inside the order-creation transaction.
type Product struct {
	ID        uuid.UUID
	SellerID  uuid.UUID
	Title     string
	Price     float64
	Quantity  int
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
