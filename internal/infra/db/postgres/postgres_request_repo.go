package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gym-membership-subscription/internal/domain"
	"gym-membership-subscription/internal/domain/model"
	"gym-membership-subscription/internal/domain/ports/repository"
)

// Ensure requestRepo implements repository.SubscriptionRequestRepository
var _ repository.SubscriptionRequestRepository = (*requestRepo)(nil)

type requestRepo struct {
	pool *pgxpool.Pool
}

func NewRequestRepo(pool *pgxpool.Pool) *requestRepo {
	return &requestRepo{pool: pool}
}

const reqColumns = `id, user_id, plan_id, plan_name, price, status, payment_method, bypass, request_date, approved_at, rejected_at, subscription_id`

func (r *requestRepo) Save(ctx context.Context, tx repository.Tx, req *model.SubscriptionRequest) error {
	const q = `
INSERT INTO subscription_requests (
  id, user_id, plan_id, plan_name, price, status, payment_method, bypass,
  request_date, approved_at, rejected_at, subscription_id
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO NOTHING;`

	_, err := execSQL(ctx, r.pool, tx, q,
		req.ID, req.UserID, req.PlanID, req.PlanName, req.Price, string(req.Status),
		req.PaymentMethod, req.Bypass, req.RequestDate, req.ApprovedAt, req.RejectedAt, req.SubscriptionID)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *requestRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionRequest, error) {
	q := `SELECT ` + reqColumns + ` FROM subscription_requests WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanRequest(row)
}

// ListByStatus orders by id: request ids are ULIDs, so lexicographic order is
// submission order.
func (r *requestRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.RequestStatus, limit int) ([]*model.SubscriptionRequest, error) {
	q := `SELECT ` + reqColumns + ` FROM subscription_requests WHERE status=$1 ORDER BY id ASC`
	args := []interface{}{string(status)}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}
	q += ";"
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	var out []*model.SubscriptionRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

// MarkApproved flips pending→approved in a single conditional statement. The
// guard on status means two racing admins cannot both win: the loser's update
// matches zero rows and surfaces domain.ErrAlreadyResolved.
func (r *requestRepo) MarkApproved(ctx context.Context, tx repository.Tx, id, subscriptionID string, at time.Time) error {
	const q = `
UPDATE subscription_requests
   SET status='approved', approved_at=$2, subscription_id=$3
 WHERE id=$1 AND status='pending';`
	tag, err := execSQL(ctx, r.pool, tx, q, id, at, subscriptionID)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyResolved
	}
	return nil
}

func (r *requestRepo) MarkRejected(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	const q = `
UPDATE subscription_requests
   SET status='rejected', rejected_at=$2
 WHERE id=$1 AND status='pending';`
	tag, err := execSQL(ctx, r.pool, tx, q, id, at)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyResolved
	}
	return nil
}

func (r *requestRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.RequestStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM subscription_requests GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	counts := make(map[model.RequestStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		counts[model.RequestStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return counts, nil
}

func scanRequest(row pgx.Row) (*model.SubscriptionRequest, error) {
	req := &model.SubscriptionRequest{}
	var status string
	if err := row.Scan(&req.ID, &req.UserID, &req.PlanID, &req.PlanName, &req.Price, &status,
		&req.PaymentMethod, &req.Bypass, &req.RequestDate, &req.ApprovedAt, &req.RejectedAt, &req.SubscriptionID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	req.Status = model.RequestStatus(status)
	return req, nil
}
