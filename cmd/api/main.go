package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/aws"
	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/config"
	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/handlers"
	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/idempotency"
	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/orders"
	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/service"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("panic recovered: %v", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
	}))

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterOrdersRoutes(r, cfg)

	return r
}

func main() {
	runLocal := os.Getenv("RUN_LOCAL") == "true"
	if runLocal {
		// .env is a local development convenience; on Lambda the environment
		// comes from the function configuration.
		_ = godotenv.Load()
	}

	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	deps := service.Deps{
		Store: orders.NewStore(clients.DynamoDB, cfg.Orders.Table),
		IDs:   orders.NewIDGenerator(),
	}
	if cfg.Idempotency.Table != "" {
		deps.Idempotency = idempotency.NewStore(clients.DynamoDB, cfg.Idempotency.Table, cfg.Idempotency.TTLWindow)
	}
	if cfg.Events.QueueURL != "" {
		deps.Publisher = aws.NewPublisher(clients.SQS, cfg.Events.QueueURL)
	}

	r := setupRouter(handlers.HandlerConfig{Service: service.New(deps)})

	if runLocal {
		addr := cfg.Http.Host + ":" + cfg.Http.Port
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
