package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Stored payment labels as written by the dispatch app.
var storedPaymentLabels = map[PaymentMethod]string{
	PaymentCash: "Dinheiro",
	PaymentCard: "Cartão",
	PaymentPix:  "Pix",
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PGRepository reads orders, merchants and couriers from Postgres.
type PGRepository struct {
	db dbtx
}

// NewPGRepository builds a repository on the shared pool.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{db: pool}
}

const orderColumns = `id, client_id, client_name, client_phone, motoboy_id, motoboy_name, status,
       valor::text, produto_valor_total::text, taxa_motoboy::text, forma_pagamento, proof_url,
       created_at, accepted_at, delivered_at`

// buildOrderQuery renders the filtered order select.
func buildOrderQuery(q OrderQuery) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argPos := 1

	add := func(cond string, arg interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, argPos))
		args = append(args, arg)
		argPos++
	}
	if !q.StartDate.IsZero() {
		add("created_at >= $%d", q.StartDate)
	}
	if !q.EndDate.IsZero() {
		add("created_at <= $%d", q.EndDate)
	}
	if q.Status != "" {
		add("status = $%d", q.Status)
	}
	if q.PaymentMethod != "" {
		add("forma_pagamento = $%d", storedPaymentLabel(q.PaymentMethod))
	}
	if q.ClientID != "" {
		add("client_id = $%d", q.ClientID)
	}
	if q.MotoboyID != "" {
		add("motoboy_id = $%d", q.MotoboyID)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}
	query := fmt.Sprintf("SELECT %s FROM orders %s ORDER BY created_at DESC, id", orderColumns, whereClause)
	return query, args
}

// FetchOrders returns orders matching q, newest first.
func (r *PGRepository) FetchOrders(ctx context.Context, q OrderQuery) ([]Order, error) {
	query, args := buildOrderQuery(q)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var (
			o       Order
			status  string
			payment string
		)
		if err := rows.Scan(
			&o.ID, &o.ClientID, &o.ClientName, &o.ClientPhone, &o.MotoboyID, &o.MotoboyName, &status,
			&o.DeliveryFee, &o.MerchandiseTotal, &o.CourierRate, &payment, &o.ProofURL,
			&o.CreatedAt, &o.AcceptedAt, &o.DeliveredAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = Status(status)
		o.PaymentMethod = parseStoredPayment(payment)
		o.CreatedAt = o.CreatedAt.UTC()
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// FetchMerchant loads one merchant.
func (r *PGRepository) FetchMerchant(ctx context.Context, id string) (*Merchant, error) {
	var m Merchant
	err := r.db.QueryRow(ctx,
		`SELECT id, name, phone, COALESCE(mensalidade, 0)::text FROM clients WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.Phone, &m.SubscriptionAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query merchant %s: %w", id, err)
	}
	return &m, nil
}

// FetchMerchants loads merchants keyed by id; every merchant when ids is empty.
func (r *PGRepository) FetchMerchants(ctx context.Context, ids []string) (map[string]Merchant, error) {
	query := `SELECT id, name, phone, COALESCE(mensalidade, 0)::text FROM clients`
	var args []interface{}
	if len(ids) > 0 {
		query += ` WHERE id = ANY($1)`
		args = append(args, ids)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query merchants: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Merchant)
	for rows.Next() {
		var m Merchant
		if err := rows.Scan(&m.ID, &m.Name, &m.Phone, &m.SubscriptionAmount); err != nil {
			return nil, fmt.Errorf("scan merchant: %w", err)
		}
		out[m.ID] = m
	}
	return out, rows.Err()
}

// FetchCourier loads one courier.
func (r *PGRepository) FetchCourier(ctx context.Context, id string) (*Courier, error) {
	var (
		c     Courier
		phone *string
	)
	err := r.db.QueryRow(ctx, `SELECT id, name, phone FROM motoboys WHERE id = $1`, id).Scan(&c.ID, &c.Name, &phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query motoboy %s: %w", id, err)
	}
	if phone != nil {
		c.Phone = *phone
	}
	return &c, nil
}

// Ping checks connectivity for health probes.
func (r *PGRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err := r.db.Exec(ctx, "SELECT 1")
	return err
}

func storedPaymentLabel(raw string) string {
	if label, ok := storedPaymentLabels[PaymentMethod(strings.ToLower(raw))]; ok {
		return label
	}
	return raw
}

func parseStoredPayment(stored string) PaymentMethod {
	for method, label := range storedPaymentLabels {
		if strings.EqualFold(label, stored) || strings.EqualFold(string(method), stored) {
			return method
		}
	}
	if strings.EqualFold(stored, "cartao") {
		return PaymentCard
	}
	return PaymentMethod(strings.ToLower(stored))
}
