package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// mockDynamo backs the full router in tests: orders live under
// "clientId#orderId", idempotency records under their idempotencyKey.
type mockDynamo struct {
	mu            sync.Mutex
	tables        map[string]map[string]map[string]types.AttributeValue
	putCalls      int
	updateCalls   int
	queryCalls    int
	transactCalls int
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		tables: map[string]map[string]map[string]types.AttributeValue{},
	}
}

func (m *mockDynamo) ensureTable(tbl string) {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
}

func itemKey(attrs map[string]types.AttributeValue) (string, error) {
	if v, ok := attrs["idempotencyKey"]; ok {
		return v.(*types.AttributeValueMemberS).Value, nil
	}
	cid, ok := attrs["clientId"]
	oid, ok2 := attrs["orderId"]
	if !ok || !ok2 {
		return "", errors.New("no key attributes")
	}
	return cid.(*types.AttributeValueMemberN).Value + "#" + oid.(*types.AttributeValueMemberN).Value, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++

	table := *params.TableName
	m.ensureTable(table)
	key, err := itemKey(params.Item)
	if err != nil {
		return nil, err
	}
	m.tables[table][key] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	table := *params.TableName
	m.ensureTable(table)
	key, err := itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.tables[table][key]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++

	table := *params.TableName
	m.ensureTable(table)
	key, err := itemKey(params.Key)
	if err != nil {
		return nil, err
	}

	item, exists := m.tables[table][key]
	if params.ConditionExpression != nil && strings.HasPrefix(*params.ConditionExpression, "attribute_exists") && !exists {
		return nil, &types.ConditionalCheckFailedException{}
	}
	if !exists {
		item = map[string]types.AttributeValue{}
	}

	if v, ok := params.ExpressionAttributeValues[":i"]; ok {
		item["installments"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":done"]; ok {
		item["status"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":rb"]; ok {
		item["responseBody"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":rs"]; ok {
		item["responseStatus"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":ua"]; ok {
		item["updatedAt"] = v
	}
	m.tables[table][key] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCalls++

	table := *params.TableName
	m.ensureTable(table)

	cid, ok := params.ExpressionAttributeValues[":cid"]
	if !ok {
		return nil, errors.New("missing :cid value")
	}
	wantClient := cid.(*types.AttributeValueMemberN).Value

	var wantPM string
	if params.FilterExpression != nil {
		pm, ok := params.ExpressionAttributeValues[":pm"]
		if !ok {
			return nil, errors.New("missing :pm value")
		}
		wantPM = pm.(*types.AttributeValueMemberS).Value
	}

	out := &dyn.QueryOutput{}
	for _, item := range m.tables[table] {
		c, ok := item["clientId"].(*types.AttributeValueMemberN)
		if !ok || c.Value != wantClient {
			continue
		}
		if wantPM != "" {
			pm, ok := item["paymentMethod"].(*types.AttributeValueMemberS)
			if !ok || pm.Value != wantPM {
				continue
			}
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactCalls++

	for _, it := range params.TransactItems {
		p := it.Put
		if p == nil || p.ConditionExpression == nil {
			continue
		}
		if !strings.HasPrefix(*p.ConditionExpression, "attribute_not_exists") {
			continue
		}
		table := *p.TableName
		m.ensureTable(table)
		key, err := itemKey(p.Item)
		if err != nil {
			return nil, err
		}
		if _, exists := m.tables[table][key]; exists {
			return nil, &types.TransactionCanceledException{}
		}
	}

	for _, it := range params.TransactItems {
		p := it.Put
		if p == nil {
			continue
		}
		table := *p.TableName
		m.ensureTable(table)
		key, err := itemKey(p.Item)
		if err != nil {
			return nil, err
		}
		m.tables[table][key] = p.Item
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}

// mockSQS records sent messages and can be told to fail.
type mockSQS struct {
	mu   sync.Mutex
	sent []*sqs.SendMessageInput
	fail bool
}

func (m *mockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errors.New("sqs unavailable")
	}
	m.sent = append(m.sent, params)
	return &sqs.SendMessageOutput{}, nil
}

func (m *mockSQS) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
