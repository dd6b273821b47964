package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/eventmate-api/internal/model"
)

const paymentColumns = "p.id, p.amount, p.event_id, p.user_id, p.session_id, p.status, p.gateway_data, p.created_at, p.updated_at"

// PaymentRepo reads and writes the payments table.
type PaymentRepo struct {
	q    dbtx
	lock bool
}

func scanPayment(rs rowScanner, extra ...any) (model.Payment, error) {
	var (
		p      model.Payment
		status string
		data   []byte
	)
	dest := append([]any{&p.ID, &p.Amount, &p.EventID, &p.UserID, &p.SessionID, &status, &data,
		&p.CreatedAt, &p.UpdatedAt}, extra...)
	if err := rs.Scan(dest...); err != nil {
		return model.Payment{}, err
	}
	p.Status = model.PaymentStatus(status)
	if len(data) > 0 {
		p.GatewayData = json.RawMessage(data)
	}
	return p, nil
}

func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO payments (id, amount, event_id, user_id, session_id, status, gateway_data, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		p.ID, p.Amount, p.EventID, p.UserID, p.SessionID, string(p.Status), nullJSON(p.GatewayData), now, now)
	if err != nil {
		return mapErr(err)
	}
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

func (r *PaymentRepo) bySession(ctx context.Context, sessionID string, lock bool) (model.Payment, error) {
	p, err := scanPayment(r.q.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments p WHERE p.session_id=? LIMIT 1"+forUpdate(lock), sessionID))
	return p, mapErr(err)
}

func (r *PaymentRepo) GetBySessionID(ctx context.Context, sessionID string) (model.Payment, error) {
	return r.bySession(ctx, sessionID, false)
}

// GetBySessionIDForUpdate serializes reconciliations of one session.
func (r *PaymentRepo) GetBySessionIDForUpdate(ctx context.Context, sessionID string) (model.Payment, error) {
	return r.bySession(ctx, sessionID, r.lock)
}

func (r *PaymentRepo) Find(ctx context.Context, eventID, userID string, status model.PaymentStatus) (model.Payment, error) {
	p, err := scanPayment(r.q.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments p WHERE p.event_id=? AND p.user_id=? AND p.status=?"+
			" ORDER BY p.created_at DESC LIMIT 1",
		eventID, userID, string(status)))
	return p, mapErr(err)
}

// UpdateStatus sets the status and, when gatewayData is non-nil, replaces
// the stored gateway snapshot.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus, gatewayData json.RawMessage) error {
	now := time.Now().UTC()
	if gatewayData == nil {
		return mustAffect(r.q.ExecContext(ctx,
			"UPDATE payments SET status=?, updated_at=? WHERE id=?", string(status), now, id))
	}
	return mustAffect(r.q.ExecContext(ctx,
		"UPDATE payments SET status=?, gateway_data=?, updated_at=? WHERE id=?",
		string(status), []byte(gatewayData), now, id))
}

func (r *PaymentRepo) ListByUser(ctx context.Context, userID string) ([]model.PaymentDetail, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+paymentColumns+", e.name, e.date_time, e.status"+
			" FROM payments p JOIN events e ON e.id = p.event_id"+
			" WHERE p.user_id=? ORDER BY p.created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.PaymentDetail{}
	for rows.Next() {
		var (
			d           model.PaymentDetail
			eventStatus string
		)
		p, err := scanPayment(rows, &d.Event.Name, &d.Event.DateTime, &eventStatus)
		if err != nil {
			return nil, err
		}
		d.Payment = p
		d.Event.ID, d.Event.Status = p.EventID, model.EventStatus(eventStatus)
		out = append(out, d)
	}
	return out, rows.Err()
}

// SumPaid totals the amounts of PAID payments.
func (r *PaymentRepo) SumPaid(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.q.QueryRowContext(ctx,
		"SELECT SUM(amount) FROM payments WHERE status=?", string(model.PaymentPaid)).Scan(&sum)
	if err != nil || !sum.Valid {
		return decimal.Zero, err
	}
	return sum.Decimal, nil
}
