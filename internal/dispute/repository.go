package dispute

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tradehub-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, d *Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*Dispute, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*Dispute, error)
	ListForUser(ctx context.Context, profileID uuid.UUID) ([]*Dispute, error)
	List(ctx context.Context, limit, offset int32) ([]*Dispute, error)

	// GetOrderForDispute reads the snapshot of the target order needed to gate
	// dispute creation.
	GetOrderForDispute(ctx context.Context, orderID uuid.UUID) (buyerID, sellerID uuid.UUID, status string, err error)

	// AppendMessageTx inserts the message and, when the dispute is still OPEN,
	// advances it to UNDER_REVIEW in the same transaction. The dispute row is
	// locked first so the terminal check cannot race a concurrent resolve.
	AppendMessageTx(ctx context.Context, m *Message) error

	ListMessages(ctx context.Context, disputeID uuid.UUID) ([]*Message, error)

	// Resolve conditionally sets a terminal status; already-terminal disputes
	// are left untouched and reported as ErrDisputeClosed.
	Resolve(ctx context.Context, id uuid.UUID, status DisputeStatus, resolution string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, d *Dispute) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("order_id", d.OrderID.String()),
	)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO disputes (id, order_id, opened_by_id, reason, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		d.ID,
		d.OrderID,
		d.OpenedByID,
		d.Reason,
		d.Status,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation {
			log.Warn("duplicate dispute rejected by constraint")
			return ErrDisputeExists
		}
		log.Error("failed to insert dispute", zap.Error(err))
		return err
	}

	log.Info("dispute created", zap.String("dispute_id", d.ID.String()))
	return nil
}

const disputeColumns = `
	d.id, d.order_id, d.opened_by_id, d.reason, d.status, d.resolution,
	d.created_at, d.updated_at, o.buyer_id, o.seller_id
`

func scanDispute(row interface{ Scan(...any) error }) (*Dispute, error) {
	var d Dispute
	err := row.Scan(
		&d.ID, &d.OrderID, &d.OpenedByID, &d.Reason, &d.Status, &d.Resolution,
		&d.CreatedAt, &d.UpdatedAt, &d.OrderBuyerID, &d.OrderSellerID,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Dispute, error) {
	query := `
		SELECT ` + disputeColumns + `
		FROM disputes d
		JOIN orders o ON o.id = d.order_id
		WHERE d.id = $1
	`

	d, err := scanDispute(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*Dispute, error) {
	query := `
		SELECT ` + disputeColumns + `
		FROM disputes d
		JOIN orders o ON o.id = d.order_id
		WHERE d.order_id = $1
	`

	d, err := scanDispute(r.db.QueryRowContext(ctx, query, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repository) ListForUser(ctx context.Context, profileID uuid.UUID) ([]*Dispute, error) {
	query := `
		SELECT ` + disputeColumns + `
		FROM disputes d
		JOIN orders o ON o.id = d.order_id
		WHERE d.opened_by_id = $1 OR o.buyer_id = $1 OR o.seller_id = $1
		ORDER BY d.created_at DESC
	`
	return r.queryDisputes(ctx, query, profileID)
}

func (r *repository) List(ctx context.Context, limit, offset int32) ([]*Dispute, error) {
	query := `
		SELECT ` + disputeColumns + `
		FROM disputes d
		JOIN orders o ON o.id = d.order_id
		ORDER BY d.created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.queryDisputes(ctx, query, limit, offset)
}

func (r *repository) queryDisputes(ctx context.Context, query string, args ...any) ([]*Dispute, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query disputes", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var disputes []*Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		disputes = append(disputes, d)
	}
	return disputes, rows.Err()
}

func (r *repository) GetOrderForDispute(ctx context.Context, orderID uuid.UUID) (uuid.UUID, uuid.UUID, string, error) {
	var buyerID, sellerID uuid.UUID
	var status string

	err := r.db.QueryRowContext(ctx, `
		SELECT buyer_id, seller_id, status
		FROM orders
		WHERE id = $1
	`, orderID).Scan(&buyerID, &sellerID, &status)

	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, uuid.Nil, "", ErrOrderNotFound
	}
	if err != nil {
		return uuid.Nil, uuid.Nil, "", err
	}

	return buyerID, sellerID, status, nil
}

func (r *repository) AppendMessageTx(ctx context.Context, m *Message) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "AppendMessageTx"),
		zap.String("dispute_id", m.DisputeID.String()),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	var status DisputeStatus
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM disputes WHERE id = $1 FOR UPDATE
	`, m.DisputeID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDisputeNotFound
	}
	if err != nil {
		log.Error("failed to lock dispute row", zap.Error(err))
		return err
	}

	if status.IsTerminal() {
		return ErrDisputeClosed
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO dispute_messages (id, dispute_id, author_id, content, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		m.ID,
		m.DisputeID,
		m.AuthorID,
		m.Content,
		m.CreatedAt,
	)
	if err != nil {
		log.Error("failed to insert dispute message", zap.Error(err))
		return err
	}

	// First response moves the dispute into active handling.
	if status == StatusOpen {
		_, err = tx.ExecContext(ctx, `
			UPDATE disputes
			SET status = $1, updated_at = NOW()
			WHERE id = $2
		`, StatusUnderReview, m.DisputeID)
		if err != nil {
			log.Error("failed to advance dispute status", zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit message transaction", zap.Error(err))
		return err
	}

	committed = true
	return nil
}

func (r *repository) ListMessages(ctx context.Context, disputeID uuid.UUID) ([]*Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, dispute_id, author_id, content, created_at
		FROM dispute_messages
		WHERE dispute_id = $1
		ORDER BY created_at ASC
	`, disputeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.DisputeID, &m.AuthorID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

func (r *repository) Resolve(ctx context.Context, id uuid.UUID, status DisputeStatus, resolution string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE disputes
		SET status = $1, resolution = $2, updated_at = NOW()
		WHERE id = $3 AND status IN ('OPEN', 'UNDER_REVIEW')
	`, status, resolution, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish a missing dispute from an already-terminal one.
		var current DisputeStatus
		err := r.db.QueryRowContext(ctx, `SELECT status FROM disputes WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDisputeNotFound
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: status is %s", ErrDisputeClosed, current)
	}

	return nil
}
