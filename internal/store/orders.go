// Package store wraps the data stores behind small interfaces so the
// pricing and settlement cores can be exercised against fakes.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RainersCode/honey-sub001/internal/database"
	"github.com/RainersCode/honey-sub001/internal/models"
	"github.com/gocql/gocql"
)

// ScyllaOrders persists orders in the orders keyspace. Items are kept
// as a JSON blob next to the row; the breakdown fields are frozen at
// insert time and never recomputed.
type ScyllaOrders struct{}

func NewOrders() *ScyllaOrders {
	return &ScyllaOrders{}
}

func (s *ScyllaOrders) Insert(ctx context.Context, o *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("serialise order items: %w", err)
	}

	return session.Query(`INSERT INTO orders
		(order_id, user_id, email, items, delivery_method, items_price, shipping_price, tax_price, total_price, is_paid, is_delivered, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, false, false, ?)`,
		o.ID, o.UserID, o.Email, string(itemsJSON), o.DeliveryMethod,
		o.ItemsPrice, o.ShippingPrice, o.TaxPrice, o.TotalPrice, o.CreatedAt,
	).WithContext(ctx).Exec()
}

// MarkOrderPaid flips the paid flag with a lightweight transaction.
// The IF clause makes check and set one atomic step: only one of any
// number of concurrent deliveries observes applied=true. A missing or
// already-paid order reports applied=false with no error.
func (s *ScyllaOrders) MarkOrderPaid(ctx context.Context, orderID string, result models.PaymentResult, paidAt time.Time) (bool, error) {
	id, err := gocql.ParseUUID(orderID)
	if err != nil {
		// Dangling provider metadata, not a store failure.
		return false, nil
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return false, err
	}

	prev := map[string]interface{}{}
	applied, err := session.Query(`UPDATE orders
		SET is_paid = true, paid_at = ?, payment_id = ?, payment_status = ?, payment_email = ?, price_paid = ?
		WHERE order_id = ? IF is_paid = false`,
		paidAt, result.ID, result.Status, result.EmailAddress, result.PricePaid, id,
	).WithContext(ctx).MapScanCAS(prev)
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (s *ScyllaOrders) IsOrderPaid(ctx context.Context, orderID string) (bool, error) {
	id, err := gocql.ParseUUID(orderID)
	if err != nil {
		return false, nil
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return false, err
	}

	var paid bool
	err = session.Query("SELECT is_paid FROM orders WHERE order_id = ?", id).
		WithContext(ctx).Scan(&paid)
	if errors.Is(err, gocql.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return paid, nil
}

func (s *ScyllaOrders) Get(ctx context.Context, orderID string) (*models.Order, error) {
	id, err := gocql.ParseUUID(orderID)
	if err != nil {
		return nil, fmt.Errorf("invalid order id %q", orderID)
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var (
		o         models.Order
		itemsJSON string
		paidAt    *time.Time
		deliveredAt *time.Time
		paymentID, paymentStatus, paymentEmail, pricePaid string
	)
	err = session.Query(`SELECT order_id, user_id, email, items, delivery_method,
			items_price, shipping_price, tax_price, total_price,
			is_paid, paid_at, payment_id, payment_status, payment_email, price_paid,
			is_delivered, delivered_at, created_at
		FROM orders WHERE order_id = ?`, id).WithContext(ctx).Scan(
		&o.ID, &o.UserID, &o.Email, &itemsJSON, &o.DeliveryMethod,
		&o.ItemsPrice, &o.ShippingPrice, &o.TaxPrice, &o.TotalPrice,
		&o.IsPaid, &paidAt, &paymentID, &paymentStatus, &paymentEmail, &pricePaid,
		&o.IsDelivered, &deliveredAt, &o.CreatedAt)
	if err != nil {
		return nil, err
	}

	if itemsJSON != "" {
		if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
			return nil, fmt.Errorf("decode order items: %w", err)
		}
	}
	o.PaidAt = paidAt
	o.DeliveredAt = deliveredAt
	if o.IsPaid {
		o.PaymentResult = &models.PaymentResult{
			ID:           paymentID,
			Status:       paymentStatus,
			EmailAddress: paymentEmail,
			PricePaid:    pricePaid,
		}
	}
	return &o, nil
}

func (s *ScyllaOrders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT order_id, user_id, email, delivery_method,
			items_price, shipping_price, tax_price, total_price,
			is_paid, paid_at, is_delivered, delivered_at, created_at
		FROM orders WHERE user_id = ? ALLOW FILTERING`, userID).WithContext(ctx).Iter()
	return scanOrderSummaries(iter)
}

func (s *ScyllaOrders) ListAll(ctx context.Context) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT order_id, user_id, email, delivery_method,
			items_price, shipping_price, tax_price, total_price,
			is_paid, paid_at, is_delivered, delivered_at, created_at
		FROM orders`).WithContext(ctx).Iter()
	return scanOrderSummaries(iter)
}

func scanOrderSummaries(iter *gocql.Iter) ([]models.Order, error) {
	var (
		orders []models.Order
		o      models.Order
		paidAt, deliveredAt *time.Time
	)
	for iter.Scan(&o.ID, &o.UserID, &o.Email, &o.DeliveryMethod,
		&o.ItemsPrice, &o.ShippingPrice, &o.TaxPrice, &o.TotalPrice,
		&o.IsPaid, &paidAt, &o.IsDelivered, &deliveredAt, &o.CreatedAt) {
		o.PaidAt = paidAt
		o.DeliveredAt = deliveredAt
		orders = append(orders, o)
		o = models.Order{}
		paidAt, deliveredAt = nil, nil
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkDelivered records fulfilment; delivery has no idempotency
// concern so a plain update is enough.
func (s *ScyllaOrders) MarkDelivered(ctx context.Context, orderID string, at time.Time) error {
	id, err := gocql.ParseUUID(orderID)
	if err != nil {
		return fmt.Errorf("invalid order id %q", orderID)
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	return session.Query("UPDATE orders SET is_delivered = true, delivered_at = ? WHERE order_id = ?", at, id).
		WithContext(ctx).Exec()
}
