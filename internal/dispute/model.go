package dispute

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type DisputeStatus string

const (
	StatusOpen           DisputeStatus = "OPEN"
	StatusUnderReview    DisputeStatus = "UNDER_REVIEW"
	StatusResolvedBuyer  DisputeStatus = "RESOLVED_BUYER_FAVOR"
	StatusResolvedSeller DisputeStatus = "RESOLVED_SELLER_FAVOR"
	StatusClosed         DisputeStatus = "CLOSED"
)

func (s DisputeStatus) IsTerminal() bool {
	switch s {
	case StatusResolvedBuyer, StatusResolvedSeller, StatusClosed:
		return true
	}
	return false
}

// IsResolution reports whether s is a terminal status an admin may set.
func (s DisputeStatus) IsResolution() bool {
	return s.IsTerminal()
}

const (
	MinReasonLength  = 3
	MaxMessageLength = 1000
)

// Dispute is a buyer claim against a delivered order. OrderBuyerID and
// OrderSellerID are populated from the joined order row for authorization.
type Dispute struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	OpenedByID    uuid.UUID
	Reason        string
	Status        DisputeStatus
	Resolution    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	OrderBuyerID  uuid.UUID
	OrderSellerID uuid.UUID
	Messages      []*Message
}

// Message belongs to a dispute thread. Append-only, never edited.
type Message struct {
	ID        uuid.UUID
	DisputeID uuid.UUID
	AuthorID  uuid.UUID
	Content   string
	CreatedAt time.Time
}

func validMessageContent(content string) bool {
	n := utf8.RuneCountInString(content)
	return n >= 1 && n <= MaxMessageLength
}
