package dispute

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"tradehub-be/internal/logger"
	"tradehub-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// deliveredStatus is the only order state a buyer can dispute.
const deliveredStatus = "DELIVERED"

type Service interface {
	Open(ctx context.Context, orderID uuid.UUID, reason string) (*Dispute, error)
	Get(ctx context.Context, id uuid.UUID) (*Dispute, error)
	AddMessage(ctx context.Context, disputeID uuid.UUID, content string) (*Message, error)
	Messages(ctx context.Context, disputeID uuid.UUID) ([]*Message, error)
	Resolve(ctx context.Context, id uuid.UUID, status DisputeStatus, resolution string) (*Dispute, error)
	ListMine(ctx context.Context) ([]*Dispute, error)
	List(ctx context.Context, page, limit int32) ([]*Dispute, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) caller(ctx context.Context) (uuid.UUID, error) {
	callerID, ok := utils.GetCallerIDFromContext(ctx)
	if !ok {
		return uuid.Nil, ErrUnauthenticated
	}
	if utils.IsCallerSuspended(ctx) {
		return uuid.Nil, ErrSuspended
	}
	return callerID, nil
}

func (s *service) Open(ctx context.Context, orderID uuid.UUID, reason string) (*Dispute, error) {
	callerID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) < MinReasonLength {
		return nil, ErrReasonTooShort
	}

	buyerID, _, status, err := s.repo.GetOrderForDispute(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if buyerID != callerID {
		return nil, ErrNotBuyer
	}
	if status != deliveredStatus {
		return nil, ErrOrderNotDelivered
	}

	// Cheap pre-check; the unique constraint on order_id is the authority.
	if _, err := s.repo.GetByOrderID(ctx, orderID); err == nil {
		return nil, ErrDisputeExists
	} else if !errors.Is(err, ErrDisputeNotFound) {
		return nil, err
	}

	now := time.Now()
	d := &Dispute{
		ID:         uuid.New(),
		OrderID:    orderID,
		OpenedByID: callerID,
		Reason:     reason,
		Status:     StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("dispute opened",
		zap.String("dispute_id", d.ID.String()),
		zap.String("order_id", orderID.String()),
	)

	return d, nil
}

// canAccess reports whether the caller participates in the dispute. Admins can
// access any dispute.
func canAccess(ctx context.Context, callerID uuid.UUID, d *Dispute) bool {
	if utils.IsCallerAdmin(ctx) {
		return true
	}
	return callerID == d.OpenedByID || callerID == d.OrderBuyerID || callerID == d.OrderSellerID
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Dispute, error) {
	callerID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(ctx, callerID, d) {
		return nil, ErrForbidden
	}

	messages, err := s.repo.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Messages = messages

	return d, nil
}

func (s *service) AddMessage(ctx context.Context, disputeID uuid.UUID, content string) (*Message, error) {
	callerID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	if !validMessageContent(content) {
		return nil, ErrInvalidContent
	}

	d, err := s.repo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if !canAccess(ctx, callerID, d) {
		return nil, ErrForbidden
	}
	if d.Status.IsTerminal() {
		return nil, ErrDisputeClosed
	}

	m := &Message{
		ID:        uuid.New(),
		DisputeID: disputeID,
		AuthorID:  callerID,
		Content:   strings.TrimSpace(content),
		CreatedAt: time.Now(),
	}

	if err := s.repo.AppendMessageTx(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

func (s *service) Messages(ctx context.Context, disputeID uuid.UUID) ([]*Message, error) {
	callerID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if !canAccess(ctx, callerID, d) {
		return nil, ErrForbidden
	}

	return s.repo.ListMessages(ctx, disputeID)
}

func (s *service) Resolve(ctx context.Context, id uuid.UUID, status DisputeStatus, resolution string) (*Dispute, error) {
	if _, err := s.caller(ctx); err != nil {
		return nil, err
	}
	if !utils.IsCallerAdmin(ctx) {
		return nil, ErrAdminOnly
	}

	if !status.IsResolution() {
		return nil, ErrInvalidResolution
	}
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return nil, ErrResolutionRequired
	}

	if err := s.repo.Resolve(ctx, id, status, resolution); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("dispute resolved",
		zap.String("dispute_id", id.String()),
		zap.String("status", string(status)),
	)

	return s.repo.GetByID(ctx, id)
}

func (s *service) ListMine(ctx context.Context) ([]*Dispute, error) {
	callerID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListForUser(ctx, callerID)
}

func (s *service) List(ctx context.Context, page, limit int32) ([]*Dispute, error) {
	if _, err := s.caller(ctx); err != nil {
		return nil, err
	}
	if !utils.IsCallerAdmin(ctx) {
		return nil, ErrAdminOnly
	}

	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	return s.repo.List(ctx, limit, offset)
}
