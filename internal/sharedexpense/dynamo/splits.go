package dynamo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/fkhayef/sharedexpenses/internal/sharedexpense"
)

// Create implements sharedexpense.Writer
func (s *Store) Create(ctx context.Context, se *sharedexpense.SharedExpense) (*sharedexpense.SharedExpense, error) {
	id, err := s.nextIDs(ctx, splitCounter, 1)
	if err != nil {
		return nil, err
	}

	stored := se.Clone()
	stored.ID = id
	stored.Version = 1
	if err := s.assignParticipantIDs(ctx, stored); err != nil {
		return nil, err
	}
	for _, p := range stored.Participants {
		p.SharedExpenseID = id
	}
	if err := stored.Verify(); err != nil {
		return nil, err
	}

	se.ID = id
	items, err := s.writeItems(stored, "attribute_not_exists(id)", nil, se.TakeEvents())
	if err != nil {
		return nil, err
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		return nil, fmt.Errorf("failed to create shared expense: %w", mapTransactError(err))
	}

	return stored, nil
}

// GetByID implements sharedexpense.Reader
func (s *Store) GetByID(ctx context.Context, id int64) (*sharedexpense.SharedExpense, error) {
	input := &dynamodb.GetItemInput{
		TableName:      aws.String(s.SplitsTableName),
		Key:            splitKey(id),
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get shared expense from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, sharedexpense.ErrSplitNotFound
	}

	var rec splitRecord
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shared expense: %w", err)
	}
	return rec.toDomain()
}

// ListByUser implements sharedexpense.Reader. Each item holds a whole
// aggregate, so every split returned is internally consistent.
func (s *Store) ListByUser(ctx context.Context, userID int64, filter sharedexpense.ListFilter) ([]*sharedexpense.SharedExpense, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.SplitsTableName),
		FilterExpression: aws.String("payer_id = :uid OR contains(member_ids, :uid)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberN{Value: strconv.FormatInt(userID, 10)},
		},
		ConsistentRead: aws.Bool(true),
	}

	splits := make([]*sharedexpense.SharedExpense, 0)
	paginator := dynamodb.NewScanPaginator(s.Client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shared expenses: %w", err)
		}

		var recs []splitRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &recs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal shared expenses: %w", err)
		}
		for _, rec := range recs {
			se, err := rec.toDomain()
			if err != nil {
				return nil, err
			}
			if filter.Matches(se) {
				splits = append(splits, se)
			}
		}
	}

	sharedexpense.SortNewestFirst(splits)
	return splits, nil
}

// Update implements sharedexpense.Writer. The write succeeds only if the item
// still has the version that was read.
func (s *Store) Update(ctx context.Context, id int64, mutate sharedexpense.MutateFunc) (*sharedexpense.SharedExpense, error) {
	se, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	readVersion := se.Version

	if err := mutate(se); err != nil {
		return nil, err
	}
	if err := s.assignParticipantIDs(ctx, se); err != nil {
		return nil, err
	}
	for _, p := range se.Participants {
		p.SharedExpenseID = se.ID
	}
	if err := se.Verify(); err != nil {
		return nil, err
	}
	se.Version = readVersion + 1

	condition := map[string]types.AttributeValue{
		":version": &types.AttributeValueMemberN{Value: strconv.FormatInt(readVersion, 10)},
	}
	items, err := s.writeItems(se, "version = :version", condition, se.TakeEvents())
	if err != nil {
		return nil, err
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		return nil, fmt.Errorf("failed to update shared expense: %w", mapTransactError(err))
	}

	return se, nil
}

// Delete implements sharedexpense.Writer. The split item goes first under a
// version condition; its events are removed afterwards.
func (s *Store) Delete(ctx context.Context, id int64, guard sharedexpense.MutateFunc) error {
	se, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := guard(se); err != nil {
		return err
	}

	input := &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.SplitsTableName),
		Key:                 splitKey(id),
		ConditionExpression: aws.String("version = :version"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":version": &types.AttributeValueMemberN{Value: strconv.FormatInt(se.Version, 10)},
		},
	}
	if _, err := s.Client.DeleteItem(ctx, input); err != nil {
		return fmt.Errorf("failed to delete shared expense: %w", mapTransactError(err))
	}

	return s.deleteEvents(ctx, id)
}

// writeItems builds the transaction that puts the split under condition and
// appends its new events.
func (s *Store) writeItems(se *sharedexpense.SharedExpense, condition string, values map[string]types.AttributeValue, events []sharedexpense.Event) ([]types.TransactWriteItem, error) {
	splitAV, err := attributevalue.MarshalMap(toSplitRecord(se))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shared expense: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:                 aws.String(s.SplitsTableName),
				Item:                      splitAV,
				ConditionExpression:       aws.String(condition),
				ExpressionAttributeValues: values,
			},
		},
	}

	for _, e := range events {
		eventAV, err := attributevalue.MarshalMap(toEventRecord(e))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.EventsTableName),
				Item:                eventAV,
				ConditionExpression: aws.String("attribute_not_exists(sk)"),
			},
		})
	}

	return items, nil
}

func splitKey(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
	}
}
