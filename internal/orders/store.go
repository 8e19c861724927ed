package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/marciocadev/aws-apigateway-lambda-cdk/internal/aws"
)

// ErrOrderNotFound is returned by UpdateInstallments when no order exists
// under the given (clientId, orderId).
var ErrOrderNotFound = errors.New("order not found")

// ErrIdempotencyConflict is returned by CreateWithIdempotency when the
// idempotency key has already been used.
var ErrIdempotencyConflict = errors.New("idempotency key already used")

// Store is the only component that talks to the orders table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
}

// NewStore creates a new orders Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
	}
}

// Put writes the full order unconditionally. Overwrite semantics are fine
// because order ids are generated to be collision-free.
func (s *Store) Put(ctx context.Context, order Order) error {
	item, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

// CreateWithIdempotency atomically writes the idempotency record and the
// order in a single TransactWriteItems call. The record put is guarded by
// attribute_not_exists(idempotencyKey); since that is the only condition in
// the transaction, a canceled transaction means the key was already used and
// maps to ErrIdempotencyConflict.
func (s *Store) CreateWithIdempotency(ctx context.Context, order Order, idempotencyTable string, record any) error {
	recMap, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshal idempotency record: %w", err)
	}

	orderMap, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	input := &dyn.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           &idempotencyTable,
					Item:                recMap,
					ConditionExpression: awsString("attribute_not_exists(idempotencyKey)"),
				},
			},
			{
				Put: &types.Put{
					TableName: &s.tableName,
					Item:      orderMap,
				},
			},
		},
	}

	_, err = s.client.TransactWriteItems(ctx, input)
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return ErrIdempotencyConflict
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

// UpdateInstallments sets installments and updatedAt on an existing order.
// DynamoDB's UpdateItem upserts by default, so the write is guarded with
// attribute_exists(orderId): updating a missing key fails with
// ErrOrderNotFound instead of creating a partial record.
func (s *Store) UpdateInstallments(ctx context.Context, clientID, orderID int64, installments int, updatedAt time.Time) error {
	input := &dyn.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              orderKey(clientID, orderID),
		UpdateExpression: awsString("SET installments = :i, updatedAt = :ua"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":i":  numberAttr(int64(installments)),
			":ua": &types.AttributeValueMemberS{Value: updatedAt.Format(time.RFC3339)},
		},
		ConditionExpression: awsString("attribute_exists(orderId)"),
	}

	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrOrderNotFound
		}
		return fmt.Errorf("update installments: %w", err)
	}
	return nil
}

// QueryByClient returns all orders in the client's partition. When filter is
// non-empty it is applied as a FilterExpression, DynamoDB's post-filter: it
// runs after the read and reduces what is returned, not what is scanned. The
// result is never nil; a client with no matching orders yields an empty slice.
func (s *Store) QueryByClient(ctx context.Context, clientID int64, filter PaymentMethod) ([]Order, error) {
	input := &dyn.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: awsString("clientId = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": numberAttr(clientID),
		},
	}
	if filter != "" {
		input.FilterExpression = awsString("paymentMethod = :pm")
		input.ExpressionAttributeValues[":pm"] = &types.AttributeValueMemberS{Value: string(filter)}
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	result := make([]Order, 0, len(out.Items))
	for _, item := range out.Items {
		var o Order
		if err := attributevalue.UnmarshalMap(item, &o); err != nil {
			return nil, fmt.Errorf("unmarshal order: %w", err)
		}
		result = append(result, o)
	}
	return result, nil
}

func orderKey(clientID, orderID int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"clientId": numberAttr(clientID),
		"orderId":  numberAttr(orderID),
	}
}

func numberAttr(v int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)}
}

func awsString(s string) *string { return &s }
