package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/aws"
	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/idempotency"
	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/orders"
)

// OrderService runs the three order use cases against the store adapter. It
// is stateless across requests; the injected stores are the only shared
// resources.
type OrderService struct {
	store     *orders.Store
	idem      *idempotency.Store
	publisher *aws.Publisher
	ids       *orders.IDGenerator
	nowFunc   func() time.Time
}

// Deps groups the collaborators injected into the service. Idempotency and
// Publisher are optional: nil disables idempotent creates and event
// publishing respectively.
type Deps struct {
	Store       *orders.Store
	Idempotency *idempotency.Store
	Publisher   *aws.Publisher
	IDs         *orders.IDGenerator
}

// New builds an OrderService from its dependencies.
func New(d Deps) *OrderService {
	return &OrderService{
		store:     d.Store,
		idem:      d.Idempotency,
		publisher: d.Publisher,
		ids:       d.IDs,
		nowFunc:   time.Now,
	}
}

// CreateOrderInput is the validated create payload plus the request headers
// the use case consumes.
type CreateOrderInput struct {
	ClientID       int64
	Items          []orders.Item
	PaymentMethod  orders.PaymentMethod
	Installments   int
	IdempotencyKey string
	CorrelationID  string
}

// CreateOrderResult is the outcome of CreateOrder. When Replayed is true the
// request hit an already-completed idempotency key and ReplayBody /
// ReplayStatus carry the original response verbatim.
type CreateOrderResult struct {
	ClientID     int64
	OrderID      int64
	Replayed     bool
	ReplayStatus int
	ReplayBody   []byte
}

// CreateInProgressError reports a replayed idempotency key whose first
// request has not finished yet.
type CreateInProgressError struct {
	OrderID int64
}

func (e *CreateInProgressError) Error() string {
	return "request already in progress"
}

// CreateOrder generates an order id, writes the full record and publishes an
// order.created event. Both timestamps are set to the same instant at
// creation. With an idempotency key (and a configured idempotency store) the
// write happens inside a transaction guarding the key; replays return the
// recorded outcome instead of writing again.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (CreateOrderResult, error) {
	now := s.nowFunc().UTC()
	order := orders.Order{
		ClientID:      in.ClientID,
		OrderID:       s.ids.NextID(),
		Items:         in.Items,
		PaymentMethod: in.PaymentMethod,
		Installments:  in.Installments,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if in.IdempotencyKey == "" || s.idem == nil {
		if err := s.store.Put(ctx, order); err != nil {
			return CreateOrderResult{}, err
		}
		s.publish(ctx, orders.EventOrderCreated, order, in.CorrelationID)
		return CreateOrderResult{ClientID: order.ClientID, OrderID: order.OrderID}, nil
	}

	rec := s.idem.NewRecord(in.IdempotencyKey, order.ClientID, order.OrderID)
	err := s.store.CreateWithIdempotency(ctx, order, s.idem.TableName(), rec)
	if err == nil {
		s.publish(ctx, orders.EventOrderCreated, order, in.CorrelationID)
		s.recordResponse(ctx, in.IdempotencyKey, order)
		return CreateOrderResult{ClientID: order.ClientID, OrderID: order.OrderID}, nil
	}
	if !errors.Is(err, orders.ErrIdempotencyConflict) {
		return CreateOrderResult{}, err
	}

	prev, getErr := s.idem.Get(ctx, in.IdempotencyKey)
	if getErr != nil {
		return CreateOrderResult{}, getErr
	}
	if prev == nil {
		// Transaction canceled but no record found; surface the conflict.
		return CreateOrderResult{}, err
	}
	switch prev.Status {
	case idempotency.StatusDone:
		res := CreateOrderResult{
			ClientID:     prev.ClientID,
			OrderID:      prev.OrderID,
			Replayed:     true,
			ReplayStatus: prev.ResponseStatus,
			ReplayBody:   []byte(prev.ResponseBody),
		}
		if res.ReplayStatus == 0 || len(res.ReplayBody) == 0 {
			// record marked DONE before the response was stored; fall back to
			// the standard created response with the recorded ids
			res.Replayed = false
		}
		return res, nil
	case idempotency.StatusInProgress:
		return CreateOrderResult{}, &CreateInProgressError{OrderID: prev.OrderID}
	default:
		return CreateOrderResult{}, fmt.Errorf("idempotency record %q in unexpected status %s", in.IdempotencyKey, prev.Status)
	}
}

// UpdateInstallments amends the installment count of one order and refreshes
// updatedAt. The store rejects a missing key with orders.ErrOrderNotFound;
// beyond that it is a blind last-write-wins overwrite of the two attributes.
func (s *OrderService) UpdateInstallments(ctx context.Context, clientID, orderID int64, installments int, correlationID string) error {
	now := s.nowFunc().UTC()
	if err := s.store.UpdateInstallments(ctx, clientID, orderID, installments, now); err != nil {
		return err
	}

	s.publish(ctx, orders.EventInstallmentsUpdated, orders.Order{
		ClientID:     clientID,
		OrderID:      orderID,
		Installments: installments,
	}, correlationID)
	return nil
}

// ListOrdersByClient returns the client's orders, optionally post-filtered by
// payment method. A client with no matching orders yields an empty slice,
// not an error.
func (s *OrderService) ListOrdersByClient(ctx context.Context, clientID int64, filter orders.PaymentMethod) ([]orders.Order, error) {
	return s.store.QueryByClient(ctx, clientID, filter)
}

// recordResponse stores the canonical 201 body on the idempotency record so
// replays can return it verbatim. Best-effort: the order is already written,
// so a failure here is logged and the create still succeeds.
func (s *OrderService) recordResponse(ctx context.Context, key string, order orders.Order) {
	body, err := json.Marshal(map[string]any{
		"success":  true,
		"orderId":  order.OrderID,
		"clientId": order.ClientID,
	})
	if err != nil {
		log.Printf("marshal idempotency response for key=%s: %v", key, err)
		return
	}
	if err := s.idem.MarkDone(ctx, key, string(body), http.StatusCreated); err != nil {
		log.Printf("mark idempotency done for key=%s: %v", key, err)
	}
}

// publish sends an order event to SQS. Best-effort: the store write is the
// unit of work, so a publish failure is logged and never fails the request.
func (s *OrderService) publish(ctx context.Context, eventType string, order orders.Order, correlationID string) {
	if s.publisher == nil {
		return
	}
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	ev := orders.OrderEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		ClientID:      order.ClientID,
		OrderID:       order.OrderID,
		PaymentMethod: string(order.PaymentMethod),
		Installments:  order.Installments,
		CorrelationID: correlationID,
		OccurredAt:    s.nowFunc().UTC(),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("marshal %s event for order=%d: %v", eventType, order.OrderID, err)
		return
	}

	attrs := map[string]string{
		"event_type":     eventType,
		"order_id":       strconv.FormatInt(order.OrderID, 10),
		"client_id":      strconv.FormatInt(order.ClientID, 10),
		"correlation_id": correlationID,
	}
	if err := s.publisher.SendOrderMessage(ctx, string(body), attrs); err != nil {
		log.Printf("publish %s event for order=%d: %v", eventType, order.OrderID, err)
	}
}
