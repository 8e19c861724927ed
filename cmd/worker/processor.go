package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"

	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/aws"
	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/orders"
)

// Metric names emitted per event type.
const (
	metricOrdersCreated       = "OrdersCreated"
	metricInstallmentsUpdated = "InstallmentsUpdated"
)

// Processor consumes order events from SQS and turns them into CloudWatch
// count metrics.
type Processor struct {
	metrics *aws.MetricsEmitter
}

// NewProcessor creates a worker processor with the metrics emitter injected.
func NewProcessor(metrics *aws.MetricsEmitter) *Processor {
	return &Processor{metrics: metrics}
}

// Handle receives an SQS batch event and processes each record.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	log.Printf("received %d SQS messages", len(ev.Records))
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Returning the error hands the batch back to the Lambda runtime
			// for retry; repeated failures end up in the DLQ.
			log.Printf("worker error: %v", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var ev orders.OrderEvent
	if err := json.Unmarshal([]byte(rec.Body), &ev); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	var name string
	var dims map[string]string
	switch ev.Type {
	case orders.EventOrderCreated:
		name = metricOrdersCreated
		dims = map[string]string{"PaymentMethod": ev.PaymentMethod}
	case orders.EventInstallmentsUpdated:
		name = metricInstallmentsUpdated
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}

	if err := p.metrics.EmitCount(ctx, name, 1, dims); err != nil {
		return fmt.Errorf("emit %s: %w", name, err)
	}

	log.Printf("[worker] %s client=%d order=%d corr=%s", ev.Type, ev.ClientID, ev.OrderID, ev.CorrelationID)
	return nil
}
