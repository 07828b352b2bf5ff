package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirfitai/astrology-bot/internal/domain"
)

type Transactions struct{ pool *pgxpool.Pool }

func NewTransactions(p *pgxpool.Pool) *Transactions { return &Transactions{pool: p} }

const txColumns = `transaction_id, user_id, plan, amount, stars, status, payment_method,
	payload, start_date, end_date, created_at`

func scanTx(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var plan, status string
	err := row.Scan(
		&t.ID, &t.UserID, &plan, &t.Amount, &t.Stars, &status, &t.Method,
		&t.Payload, &t.StartDate, &t.EndDate, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Plan = domain.Plan(plan)
	t.Status = domain.TxStatus(status)
	return &t, nil
}

func (r *Transactions) Add(ctx context.Context, t *domain.Transaction) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO subscription_transactions(user_id, plan, amount, stars, status, payment_method, payload)
		VALUES($1,$2,$3,$4,$5,$6,$7)
		RETURNING transaction_id
	`, t.UserID, string(t.Plan), t.Amount, t.Stars, string(t.Status), t.Method, t.Payload).Scan(&id)
	return id, err
}

func (r *Transactions) Get(ctx context.Context, id int64) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+txColumns+` FROM subscription_transactions WHERE transaction_id=$1`, id)
	t, err := scanTx(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *Transactions) UpdateStatus(ctx context.Context, id int64, status domain.TxStatus, payload *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE subscription_transactions SET
			status=$2,
			payload=COALESCE($3, payload),
			start_date = CASE WHEN $2='completed' THEN now() ELSE start_date END
		WHERE transaction_id=$1
	`, id, string(status), payload)
	return err
}

// HasPending: не больше одной незавершённой транзакции на пользователя.
func (r *Transactions) HasPending(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM subscription_transactions
			WHERE user_id=$1 AND status='pending'
		)
	`, userID).Scan(&exists)
	return exists, err
}

// CancelPending помечает зависшие pending-транзакции отменёнными
// (пользователь закрыл инвойс и начал заново).
func (r *Transactions) CancelPending(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE subscription_transactions SET status='cancelled'
		WHERE user_id=$1 AND status='pending'
	`, userID)
	return err
}
