package dispute

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDispute() *Dispute {
	return &Dispute{
		ID:            uuid.New(),
		OrderID:       uuid.New(),
		OpenedByID:    uuid.New(),
		Reason:        "Item arrived broken",
		Status:        StatusOpen,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
		OrderBuyerID:  uuid.New(),
		OrderSellerID: uuid.New(),
	}
}

func disputeRows(d *Dispute) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "order_id", "opened_by_id", "reason", "status", "resolution",
		"created_at", "updated_at", "buyer_id", "seller_id",
	}).AddRow(
		d.ID, d.OrderID, d.OpenedByID, d.Reason, d.Status, d.Resolution,
		d.CreatedAt, d.UpdatedAt, d.OrderBuyerID, d.OrderSellerID,
	)
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)
		d := testDispute()

		mock.ExpectExec(`INSERT INTO disputes`).
			WithArgs(d.ID, d.OrderID, d.OpenedByID, d.Reason, d.Status, d.CreatedAt, d.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Create(ctx, d)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateOrderMapsToConflict", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)
		d := testDispute()

		mock.ExpectExec(`INSERT INTO disputes`).
			WillReturnError(&pq.Error{Code: pq.ErrorCode(PgUniqueViolation)})

		err = repo.Create(ctx, d)
		assert.ErrorIs(t, err, ErrDisputeExists)
	})

	t.Run("DBError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec(`INSERT INTO disputes`).
			WillReturnError(errors.New("db error"))

		err = repo.Create(ctx, testDispute())
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrDisputeExists)
	})
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	d := testDispute()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM disputes d JOIN orders o ON o.id = d.order_id WHERE d.id = \$1`).
			WithArgs(d.ID).
			WillReturnRows(disputeRows(d))

		got, err := repo.GetByID(ctx, d.ID)
		assert.NoError(t, err)
		assert.Equal(t, d.OrderID, got.OrderID)
		assert.Equal(t, StatusOpen, got.Status)
		assert.Equal(t, d.OrderBuyerID, got.OrderBuyerID)
		assert.Equal(t, d.OrderSellerID, got.OrderSellerID)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM disputes`).
			WithArgs(d.ID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(ctx, d.ID)
		assert.ErrorIs(t, err, ErrDisputeNotFound)
	})
}

func TestRepository_GetOrderForDispute(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	orderID := uuid.New()
	buyerID := uuid.New()
	sellerID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT buyer_id, seller_id, status FROM orders WHERE id = \$1`).
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows([]string{"buyer_id", "seller_id", "status"}).
				AddRow(buyerID, sellerID, "DELIVERED"))

		gotBuyer, gotSeller, status, err := repo.GetOrderForDispute(ctx, orderID)
		assert.NoError(t, err)
		assert.Equal(t, buyerID, gotBuyer)
		assert.Equal(t, sellerID, gotSeller)
		assert.Equal(t, "DELIVERED", status)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT buyer_id, seller_id, status FROM orders`).
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows([]string{"buyer_id"}))

		_, _, _, err := repo.GetOrderForDispute(ctx, orderID)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepository_ListForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	d := testDispute()

	mock.ExpectQuery(`SELECT .* FROM disputes d JOIN orders o ON o.id = d.order_id WHERE d.opened_by_id = \$1 OR o.buyer_id = \$1 OR o.seller_id = \$1`).
		WithArgs(d.OpenedByID).
		WillReturnRows(disputeRows(d))

	disputes, err := repo.ListForUser(ctx, d.OpenedByID)
	assert.NoError(t, err)
	require.Len(t, disputes, 1)
	assert.Equal(t, d.ID, disputes[0].ID)
}

func TestRepository_AppendMessageTx(t *testing.T) {
	ctx := context.Background()

	newMessage := func() *Message {
		return &Message{
			ID:        uuid.New(),
			DisputeID: uuid.New(),
			AuthorID:  uuid.New(),
			Content:   "Please send photos of the damage",
			CreatedAt: time.Now().UTC(),
		}
	}

	t.Run("AdvancesOpenDispute", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)
		m := newMessage()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM disputes WHERE id = \$1 FOR UPDATE`).
			WithArgs(m.DisputeID).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(StatusOpen))
		mock.ExpectExec(`INSERT INTO dispute_messages`).
			WithArgs(m.ID, m.DisputeID, m.AuthorID, m.Content, m.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE disputes SET status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
			WithArgs(StatusUnderReview, m.DisputeID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = repo.AppendMessageTx(ctx, m)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnderReviewStaysPut", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)
		m := newMessage()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM disputes`).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(StatusUnderReview))
		mock.ExpectExec(`INSERT INTO dispute_messages`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = repo.AppendMessageTx(ctx, m)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("TerminalDisputeRejected", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)
		m := newMessage()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM disputes`).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(StatusResolvedBuyer))
		mock.ExpectRollback()

		err = repo.AppendMessageTx(ctx, m)
		assert.ErrorIs(t, err, ErrDisputeClosed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingDispute", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)
		m := newMessage()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM disputes`).
			WillReturnRows(sqlmock.NewRows([]string{"status"}))
		mock.ExpectRollback()

		err = repo.AppendMessageTx(ctx, m)
		assert.ErrorIs(t, err, ErrDisputeNotFound)
	})

	t.Run("InsertFailureRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)
		m := newMessage()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM disputes`).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(StatusOpen))
		mock.ExpectExec(`INSERT INTO dispute_messages`).
			WillReturnError(errors.New("db error"))
		mock.ExpectRollback()

		err = repo.AppendMessageTx(ctx, m)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_ListMessages(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	disputeID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "dispute_id", "author_id", "content", "created_at"}).
		AddRow(uuid.New(), disputeID, uuid.New(), "first", time.Now()).
		AddRow(uuid.New(), disputeID, uuid.New(), "second", time.Now())
	mock.ExpectQuery(`SELECT id, dispute_id, author_id, content, created_at FROM dispute_messages WHERE dispute_id = \$1 ORDER BY created_at ASC`).
		WithArgs(disputeID).
		WillReturnRows(rows)

	messages, err := repo.ListMessages(ctx, disputeID)
	assert.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
}

func TestRepository_Resolve(t *testing.T) {
	ctx := context.Background()
	disputeID := uuid.New()

	t.Run("Applied", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec(`UPDATE disputes SET status = \$1, resolution = \$2, updated_at = NOW\(\) WHERE id = \$3 AND status IN \('OPEN', 'UNDER_REVIEW'\)`).
			WithArgs(StatusResolvedBuyer, "Refund issued", disputeID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Resolve(ctx, disputeID, StatusResolvedBuyer, "Refund issued")
		assert.NoError(t, err)
	})

	t.Run("AlreadyTerminal", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec(`UPDATE disputes`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status FROM disputes WHERE id = \$1`).
			WithArgs(disputeID).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(StatusClosed))

		err = repo.Resolve(ctx, disputeID, StatusResolvedSeller, "No fault found")
		assert.ErrorIs(t, err, ErrDisputeClosed)
		assert.Contains(t, err.Error(), "CLOSED")
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectExec(`UPDATE disputes`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status FROM disputes`).
			WillReturnRows(sqlmock.NewRows([]string{"status"}))

		err = repo.Resolve(ctx, disputeID, StatusResolvedSeller, "No fault found")
		assert.ErrorIs(t, err, ErrDisputeNotFound)
	})
}
