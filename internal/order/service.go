package order

import (
	"context"
	"fmt"
	"time"

	"tradehub-be/internal/logger"
	"tradehub-be/internal/product"
	"tradehub-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier is the post-creation hook. Implementations must be best-effort:
// the order service logs and swallows any error they return.
type Notifier interface {
	OrderCreated(ctx context.Context, buyerEmail string, summary Summary) error
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next OrderStatus) (*Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*Order, error)
	ListPurchases(ctx context.Context) ([]*Order, error)
	ListSales(ctx context.Context) ([]*Order, error)
	List(ctx context.Context, filter *Filter, limit, page int32) ([]*Order, error)
}

type service struct {
	repo     Repository
	products product.Repository
	notifier Notifier
}

func NewService(repo Repository, products product.Repository, notifier Notifier) Service {
	return &service{
		repo:     repo,
		products: products,
		notifier: notifier,
	}
}

// Create validates one seller group of a cart and persists the order, its
// items, and the stock decrements atomically.
func (s *service) Create(ctx context.Context, input CreateInput) (*Order, error) {
	buyerID, ok := utils.GetCallerIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if utils.IsCallerSuspended(ctx) {
		return nil, ErrSuspended
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.String("buyer_id", buyerID.String()),
		zap.String("seller_id", input.SellerID.String()),
		zap.Int("item_count", len(input.Items)),
	)

	log.Info("order creation started")

	if err := input.Shipping.Validate(); err != nil {
		log.Warn("shipping validation failed", zap.Error(err))
		return nil, err
	}

	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	if buyerID == input.SellerID {
		log.Warn("self purchase rejected")
		return nil, ErrSelfPurchase
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		log.Error("failed to look up products", zap.Error(err))
		return nil, err
	}

	byID := make(map[uuid.UUID]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	// Fail-fast validation against the catalog snapshot. The stock check here
	// is advisory; the decrement inside the transaction is authoritative.
	var total float64
	items := make([]OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			log.Warn("product missing", zap.String("product_id", item.ProductID.String()))
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
		if p.SellerID != input.SellerID {
			log.Warn("cross-seller batch rejected", zap.String("product_id", p.ID.String()))
			return nil, ErrCrossSeller
		}
		if !p.Active {
			return nil, fmt.Errorf("%w: %s", ErrProductInactive, p.Title)
		}
		if p.Quantity < item.Quantity {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, p.Title)
		}

		productID := p.ID
		items = append(items, OrderItem{
			ID:        uuid.New(),
			ProductID: &productID,
			Title:     p.Title,
			Quantity:  item.Quantity,
			Price:     p.Price,
		})
		total += p.Price * float64(item.Quantity)
	}

	now := time.Now().UTC()
	o := &Order{
		ID:          uuid.New(),
		OrderNumber: utils.GenerateOrderNumber(),
		BuyerID:     buyerID,
		SellerID:    input.SellerID,
		Status:      StatusPending,
		TotalAmount: total,
		Shipping:    input.Shipping,
		CreatedAt:   now,
		UpdatedAt:   now,
		Items:       items,
	}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}

	if err := s.repo.CreateTx(ctx, o); err != nil {
		log.Error("order creation failed", zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.Float64("total_amount", o.TotalAmount),
	)

	s.notifyCreated(ctx, o)

	return o, nil
}

// notifyCreated fires the best-effort notification hook. Failures are logged
// and never roll back or fail the order.
func (s *service) notifyCreated(ctx context.Context, o *Order) {
	if s.notifier == nil {
		return
	}

	summary := Summary{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		TotalAmount: o.TotalAmount,
	}
	for _, item := range o.Items {
		summary.Items = append(summary.Items, ItemSummary{
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	if err := s.notifier.OrderCreated(ctx, utils.GetCallerEmailFromContext(ctx), summary); err != nil {
		logger.FromCtx(ctx).Warn("order notification failed",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err),
		)
	}
}

// UpdateStatus drives the order state machine. Only the order's seller or an
// admin may trigger a transition, and the transition is applied with a
// conditional update keyed on the persisted current status.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, next OrderStatus) (*Order, error) {
	callerID, ok := utils.GetCallerIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if utils.IsCallerSuspended(ctx) {
		return nil, ErrSuspended
	}

	if !next.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, next)
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.SellerID != callerID && !utils.IsCallerAdmin(ctx) {
		return nil, fmt.Errorf("%w: only the seller can update order status", ErrForbidden)
	}

	if !o.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: cannot change status from %s to %s", ErrIllegalTransition, o.Status, next)
	}

	applied, err := s.repo.UpdateStatus(ctx, orderID, o.Status, next)
	if err != nil {
		return nil, err
	}
	if !applied {
		// A concurrent transition moved the order since our read. Re-read and
		// report the conflict against the now-persisted status.
		fresh, err := s.repo.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: cannot change status from %s to %s", ErrIllegalTransition, fresh.Status, next)
	}

	logger.FromCtx(ctx).Info("order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("from", string(o.Status)),
		zap.String("to", string(next)),
	)

	o.Status = next
	return o, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	callerID, ok := utils.GetCallerIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.BuyerID != callerID && o.SellerID != callerID && !utils.IsCallerAdmin(ctx) {
		return nil, fmt.Errorf("%w: cannot access others' orders", ErrForbidden)
	}

	return o, nil
}

func (s *service) ListPurchases(ctx context.Context) ([]*Order, error) {
	callerID, ok := utils.GetCallerIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return s.repo.ListByBuyer(ctx, callerID)
}

func (s *service) ListSales(ctx context.Context) ([]*Order, error) {
	callerID, ok := utils.GetCallerIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return s.repo.ListBySeller(ctx, callerID)
}

// List is the admin view over all orders.
func (s *service) List(ctx context.Context, filter *Filter, limit, page int32) ([]*Order, error) {
	if _, ok := utils.GetCallerIDFromContext(ctx); !ok {
		return nil, ErrUnauthenticated
	}
	if !utils.IsCallerAdmin(ctx) {
		return nil, fmt.Errorf("%w: admin access required", ErrForbidden)
	}

	if limit <= 0 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	return s.repo.List(ctx, filter, limit, offset)
}
