package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"

	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/aws"
	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/config"
)

func main() {
	runLocal := os.Getenv("RUN_LOCAL") == "true"
	if runLocal {
		_ = godotenv.Load()
	}

	// The worker only needs the metrics namespace; the table config the API
	// validates does not apply here.
	cfg := config.New()

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	p := NewProcessor(aws.NewMetricsEmitter(clients.CloudWatch, cfg.Metrics.Namespace))

	if runLocal {
		// Simulate a single SQS event for development without an event source.
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"eventId":"local-1","type":"order.created","clientId":1,"orderId":1,"paymentMethod":"pix","installments":1,"correlationId":"local","occurredAt":"2026-01-01T00:00:00Z"}`
		}
		ev := events.SQSEvent{
			Records: []events.SQSMessage{{Body: body}},
		}
		if err := p.Handle(context.Background(), ev); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(p.Handle)
}
