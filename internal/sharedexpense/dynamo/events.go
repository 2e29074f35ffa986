package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/fkhayef/sharedexpenses/internal/sharedexpense"
)

const (
	// BatchWriteItem accepts at most 25 requests
	batchSize = 25
	// calls per chunk while DynamoDB keeps returning UnprocessedItems
	maxBatchAttempts = 5
)

// ListEvents implements sharedexpense.Reader
func (s *Store) ListEvents(ctx context.Context, id int64) ([]sharedexpense.Event, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	events := make([]sharedexpense.Event, 0)
	err := s.queryEvents(ctx, id, func(rec eventRecord) error {
		eventID, err := uuid.Parse(rec.ID)
		if err != nil {
			return fmt.Errorf("event %q has invalid id: %w", rec.ID, err)
		}
		events = append(events, sharedexpense.Event{
			ID:              eventID,
			SharedExpenseID: rec.SharedExpenseID,
			Type:            sharedexpense.EventType(rec.Type),
			ActorID:         rec.ActorID,
			ParticipantID:   rec.ParticipantID,
			Detail:          rec.Detail,
			CreatedAt:       rec.CreatedAt,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) queryEvents(ctx context.Context, id int64, fn func(eventRecord) error) error {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.EventsTableName),
		KeyConditionExpression: aws.String("shared_expense_id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
		},
		ConsistentRead:   aws.Bool(true),
		ScanIndexForward: aws.Bool(true),
	}

	paginator := dynamodb.NewQueryPaginator(s.Client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to query events: %w", err)
		}

		var recs []eventRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &recs); err != nil {
			return fmt.Errorf("failed to unmarshal events: %w", err)
		}
		for _, rec := range recs {
			if err := fn(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) deleteEvents(ctx context.Context, id int64) error {
	var requests []types.WriteRequest
	err := s.queryEvents(ctx, id, func(rec eventRecord) error {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"shared_expense_id": &types.AttributeValueMemberN{Value: strconv.FormatInt(rec.SharedExpenseID, 10)},
					"sk":                &types.AttributeValueMemberS{Value: rec.SortKey},
				},
			},
		})
		return nil
	})
	if err != nil {
		return err
	}

	for start := 0; start < len(requests); start += batchSize {
		end := min(start+batchSize, len(requests))
		pending := map[string][]types.WriteRequest{s.EventsTableName: requests[start:end]}
		if err := s.batchWrite(ctx, pending); err != nil {
			return fmt.Errorf("failed to delete events: %w", err)
		}
	}
	return nil
}

// batchWrite sends pending and resends whatever comes back unprocessed,
// waiting BatchBackoff between calls, for at most maxBatchAttempts calls.
func (s *Store) batchWrite(ctx context.Context, pending map[string][]types.WriteRequest) error {
	for attempt := 1; ; attempt++ {
		out, err := s.Client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return err
		}
		pending = out.UnprocessedItems
		if len(pending) == 0 {
			return nil
		}
		if attempt == maxBatchAttempts {
			left := 0
			for _, reqs := range pending {
				left += len(reqs)
			}
			return fmt.Errorf("%d requests still unprocessed after %d attempts", left, attempt)
		}

		delay, err := s.BatchBackoff.BackoffDelay(attempt, nil)
		if err != nil {
			return err
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
