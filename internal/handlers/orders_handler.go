package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/orders"
	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/service"
	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/validation"
)

const internalErrorMessage = "internal server error"

// HandlerConfig groups dependencies for the orders routes.
type HandlerConfig struct {
	Service *service.OrderService
}

// RegisterOrdersRoutes registers the order API routes. The bare /orders
// variants exist so requests missing path parameters get the contract's 400
// instead of gin's default 404.
func RegisterOrdersRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()

	r.POST("/", createOrder(cfg.Service, v))
	r.GET("/orders", func(c *gin.Context) {
		badRequest(c, "clientId required")
	})
	r.GET("/orders/:clientId", listOrdersByClient(cfg.Service))
	r.PATCH("/orders", func(c *gin.Context) {
		badRequest(c, "clientId and orderId required")
	})
	r.PATCH("/orders/:clientId", func(c *gin.Context) {
		badRequest(c, "clientId and orderId required")
	})
	r.PATCH("/orders/:clientId/:orderId", updateInstallments(cfg.Service, v))
}

func createOrder(svc *service.OrderService, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req validation.CreateOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		items := make([]orders.Item, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, orders.Item{ProductID: it.ProductID, Quantity: it.Quantity})
		}

		res, err := svc.CreateOrder(c.Request.Context(), service.CreateOrderInput{
			ClientID:       req.ClientID,
			Items:          items,
			PaymentMethod:  orders.PaymentMethod(req.PaymentMethod),
			Installments:   req.Installments,
			IdempotencyKey: c.GetHeader("Idempotency-Key"),
			CorrelationID:  c.GetHeader("X-Request-Id"),
		})
		if err != nil {
			var inProgress *service.CreateInProgressError
			if errors.As(err, &inProgress) {
				c.JSON(http.StatusAccepted, gin.H{
					"success": false,
					"error":   "request already in progress",
					"orderId": inProgress.OrderID,
				})
				return
			}
			internalError(c, err)
			return
		}

		if res.Replayed {
			c.Data(res.ReplayStatus, "application/json", res.ReplayBody)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"success":  true,
			"orderId":  res.OrderID,
			"clientId": res.ClientID,
		})
	}
}

func listOrdersByClient(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := strconv.ParseInt(c.Param("clientId"), 10, 64)
		if err != nil {
			badRequest(c, "clientId must be numeric")
			return
		}

		filter := c.Query("paymentMethod")
		if filter != "" && !orders.ValidPaymentMethod(filter) {
			badRequest(c, "invalid paymentMethod, allowed: credit_card, debit_card, pix")
			return
		}

		list, err := svc.ListOrdersByClient(c.Request.Context(), clientID, orders.PaymentMethod(filter))
		if err != nil {
			internalError(c, err)
			return
		}

		resp := gin.H{
			"success":  true,
			"clientId": clientID,
			"count":    len(list),
			"orders":   list,
		}
		if filter != "" {
			resp["paymentMethod"] = filter
		}
		c.JSON(http.StatusOK, resp)
	}
}

func updateInstallments(svc *service.OrderService, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, errClient := strconv.ParseInt(c.Param("clientId"), 10, 64)
		orderID, errOrder := strconv.ParseInt(c.Param("orderId"), 10, 64)
		if errClient != nil || errOrder != nil {
			badRequest(c, "clientId and orderId must be numeric")
			return
		}

		var req validation.UpdateInstallmentsRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		err := svc.UpdateInstallments(c.Request.Context(), clientID, orderID, req.Installments, c.GetHeader("X-Request-Id"))
		if errors.Is(err, orders.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "order not found"})
			return
		}
		if err != nil {
			internalError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"clientId":     clientID,
			"orderId":      orderID,
			"installments": req.Installments,
		})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

// internalError logs the cause and returns the uniform 500 body; the
// underlying error is never exposed to the caller.
func internalError(c *gin.Context, err error) {
	log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": internalErrorMessage})
}
