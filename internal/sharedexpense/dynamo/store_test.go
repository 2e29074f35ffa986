package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/sharedexpenses/internal/money"
	"github.com/fkhayef/sharedexpenses/internal/sharedexpense"
	"github.com/fkhayef/sharedexpenses/internal/sharedexpense/dynamo/mocks"
	"github.com/fkhayef/sharedexpenses/internal/sharedexpense/split"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newStore(client *mocks.DynamoDBAPI) *Store {
	return New(client, "splits", "events", "counters")
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

// newSplit builds an unsaved 30.00 split between user 2 and an external guest
func newSplit(t *testing.T) *sharedexpense.SharedExpense {
	t.Helper()
	participants := []*sharedexpense.Participant{
		{UserID: int64Ptr(2), ShareAmount: money.MustParse("15.00")},
		{ExternalName: strPtr("Sam"), ShareAmount: money.MustParse("15.00")},
	}
	se, err := sharedexpense.New(1, 1, money.MustParse("30.00"), split.SplitTypeExactAmount, "Dinner", nil, participants, testNow)
	require.NoError(t, err)
	return se
}

// storedSplit returns a split as it would come back from the table
func storedSplit(t *testing.T, id int64) *sharedexpense.SharedExpense {
	t.Helper()
	se := newSplit(t)
	se.TakeEvents()
	se.ID = id
	se.Version = 3
	for i, p := range se.Participants {
		p.ID = int64(100 + i)
		p.SharedExpenseID = id
	}
	return se
}

func itemOf(t *testing.T, se *sharedexpense.SharedExpense) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(toSplitRecord(se))
	require.NoError(t, err)
	return av
}

func counterNamed(name string) any {
	return mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		key, ok := in.Key["name"].(*types.AttributeValueMemberS)
		return ok && key.Value == name
	})
}

func counterOutput(seq string) *dynamodb.UpdateItemOutput {
	return &dynamodb.UpdateItemOutput{
		Attributes: map[string]types.AttributeValue{"seq": &types.AttributeValueMemberN{Value: seq}},
	}
}

func TestCreate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newStore(mockClient)

		mockClient.On("UpdateItem", mock.Anything, counterNamed(splitCounter)).Return(counterOutput("7"), nil).Once()
		mockClient.On("UpdateItem", mock.Anything, counterNamed(participantCounter)).Return(counterOutput("12"), nil).Once()
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			// split item plus the created event
			return len(in.TransactItems) == 2 &&
				aws.ToString(in.TransactItems[0].Put.ConditionExpression) == "attribute_not_exists(id)" &&
				aws.ToString(in.TransactItems[1].Put.TableName) == "events"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

		created, err := store.Create(context.Background(), newSplit(t))

		require.NoError(t, err)
		assert.Equal(t, int64(7), created.ID)
		assert.Equal(t, int64(1), created.Version)
		assert.Equal(t, int64(11), created.Participants[0].ID)
		assert.Equal(t, int64(12), created.Participants[1].ID)
		assert.Equal(t, int64(7), created.Participants[1].SharedExpenseID)
		mockClient.AssertExpectations(t)
	})

	t.Run("Counter Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newStore(mockClient)

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()

		_, err := store.Create(context.Background(), newSplit(t))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to allocate shared_expense id")
		mockClient.AssertNotCalled(t, "TransactWriteItems", mock.Anything, mock.Anything)
	})
}

func TestGetByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newStore(mockClient)
		want := storedSplit(t, 5)

		mockClient.On("GetItem", mock.Anything, mock.AnythingOfType("*dynamodb.GetItemInput")).
			Return(&dynamodb.GetItemOutput{Item: itemOf(t, want)}, nil).Once()

		got, err := store.GetByID(context.Background(), 5)

		require.NoError(t, err)
		assert.Equal(t, int64(5), got.ID)
		assert.Equal(t, "30.00", got.TotalAmount.String())
		assert.Equal(t, split.SplitTypeExactAmount, got.SplitType)
		assert.True(t, got.CreatedAt.Equal(testNow))
		require.Len(t, got.Participants, 2)
		assert.Equal(t, int64(2), *got.Participants[0].UserID)
		assert.Equal(t, "Sam", *got.Participants[1].ExternalName)
		assert.Equal(t, "15.00", got.Participants[1].ShareAmount.String())
		assert.Equal(t, sharedexpense.StatusPending, got.Participants[1].Status)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newStore(mockClient)

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil).Once()

		_, err := store.GetByID(context.Background(), 5)

		assert.ErrorIs(t, err, sharedexpense.ErrSplitNotFound)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newStore(mockClient)
		current := storedSplit(t, 5)

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: itemOf(t, current)}, nil).Once()
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			version, ok := in.TransactItems[0].Put.ExpressionAttributeValues[":version"].(*types.AttributeValueMemberN)
			return ok && version.Value == "3" && len(in.TransactItems) == 2
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

		updated, err := store.Update(context.Background(), 5, func(se *sharedexpense.SharedExpense) error {
			return se.MarkPaid(100, 1, testNow)
		})

		require.NoError(t, err)
		assert.Equal(t, int64(4), updated.Version)
		assert.True(t, updated.Participants[0].IsPaid)
		mockClient.AssertExpectations(t)
	})

	t.Run("Version Conflict", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newStore(mockClient)
		current := storedSplit(t, 5)

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: itemOf(t, current)}, nil).Once()
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{{Code: aws.String("ConditionalCheckFailed")}},
		}).Once()

		_, err := store.Update(context.Background(), 5, func(se *sharedexpense.SharedExpense) error {
			return se.MarkPaid(100, 1, testNow)
		})

		assert.ErrorIs(t, err, sharedexpense.ErrConcurrentUpdate)
	})

	t.Run("Mutation Rejected", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newStore(mockClient)
		current := storedSplit(t, 5)

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: itemOf(t, current)}, nil).Once()

		_, err := store.Update(context.Background(), 5, func(se *sharedexpense.SharedExpense) error {
			return se.MarkPaid(999, 1, testNow)
		})

		assert.ErrorIs(t, err, sharedexpense.ErrParticipantNotFound)
		mockClient.AssertNotCalled(t, "TransactWriteItems", mock.Anything, mock.Anything)
	})
}

func TestListByUser(t *testing.T) {
	mockClient := new(mocks.DynamoDBAPI)
	store := newStore(mockClient)

	older := storedSplit(t, 1)
	older.GroupName = strPtr("Trip")
	newer := storedSplit(t, 2)
	newer.CreatedAt = testNow.Add(time.Hour)

	mockClient.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		uid, ok := in.ExpressionAttributeValues[":uid"].(*types.AttributeValueMemberN)
		return ok && uid.Value == "2"
	})).Return(&dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{itemOf(t, older), itemOf(t, newer)},
	}, nil).Once()

	t.Run("Newest First", func(t *testing.T) {
		splits, err := store.ListByUser(context.Background(), 2, sharedexpense.ListFilter{})

		require.NoError(t, err)
		require.Len(t, splits, 2)
		assert.Equal(t, int64(2), splits[0].ID)
		assert.Equal(t, int64(1), splits[1].ID)
	})

	mockClient.On("Scan", mock.Anything, mock.Anything).Return(&dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{itemOf(t, older), itemOf(t, newer)},
	}, nil).Once()

	t.Run("Group Filter", func(t *testing.T) {
		splits, err := store.ListByUser(context.Background(), 2, sharedexpense.ListFilter{GroupName: "trip"})

		require.NoError(t, err)
		require.Len(t, splits, 1)
		assert.Equal(t, int64(1), splits[0].ID)
	})
}

func TestDelete(t *testing.T) {
	t.Run("Removes Split And Events", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newStore(mockClient)
		current := storedSplit(t, 5)

		event := sharedexpense.Event{SharedExpenseID: 5, Type: sharedexpense.EventCreated, ActorID: 1, CreatedAt: testNow}
		eventAV, err := attributevalue.MarshalMap(toEventRecord(event))
		require.NoError(t, err)

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: itemOf(t, current)}, nil).Once()
		mockClient.On("DeleteItem", mock.Anything, mock.AnythingOfType("*dynamodb.DeleteItemInput")).Return(&dynamodb.DeleteItemOutput{}, nil).Once()
		mockClient.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{
			Items: []map[string]types.AttributeValue{eventAV},
		}, nil).Once()
		mockClient.On("BatchWriteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.BatchWriteItemInput) bool {
			return len(in.RequestItems["events"]) == 1
		})).Return(&dynamodb.BatchWriteItemOutput{}, nil).Once()

		err = store.Delete(context.Background(), 5, func(se *sharedexpense.SharedExpense) error {
			return se.EnsureDeletable()
		})

		require.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Guard Refuses", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newStore(mockClient)
		current := storedSplit(t, 5)
		require.NoError(t, current.MarkPaid(100, 1, testNow))
		current.TakeEvents()

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: itemOf(t, current)}, nil).Once()

		err := store.Delete(context.Background(), 5, func(se *sharedexpense.SharedExpense) error {
			return se.EnsureDeletable()
		})

		assert.ErrorIs(t, err, sharedexpense.ErrHasPayments)
		mockClient.AssertNotCalled(t, "DeleteItem", mock.Anything, mock.Anything)
	})
}

func TestBatchWrite(t *testing.T) {
	deleteReq := func(sk string) types.WriteRequest {
		return types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: map[string]types.AttributeValue{
			"shared_expense_id": &types.AttributeValueMemberN{Value: "5"},
			"sk":                &types.AttributeValueMemberS{Value: sk},
		}}}
	}
	noWait := retry.BackoffDelayerFunc(func(int, error) (time.Duration, error) { return 0, nil })

	t.Run("Retries Unprocessed Items", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newStore(mockClient)
		var delays []int
		store.BatchBackoff = retry.BackoffDelayerFunc(func(attempt int, _ error) (time.Duration, error) {
			delays = append(delays, attempt)
			return time.Millisecond, nil
		})

		leftover := map[string][]types.WriteRequest{"events": {deleteReq("b")}}
		mockClient.On("BatchWriteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.BatchWriteItemInput) bool {
			return len(in.RequestItems["events"]) == 2
		})).Return(&dynamodb.BatchWriteItemOutput{UnprocessedItems: leftover}, nil).Once()
		mockClient.On("BatchWriteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.BatchWriteItemInput) bool {
			return len(in.RequestItems["events"]) == 1
		})).Return(&dynamodb.BatchWriteItemOutput{}, nil).Once()

		err := store.batchWrite(context.Background(), map[string][]types.WriteRequest{
			"events": {deleteReq("a"), deleteReq("b")},
		})

		require.NoError(t, err)
		assert.Equal(t, []int{1}, delays)
		mockClient.AssertExpectations(t)
	})

	t.Run("Gives Up After Max Attempts", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newStore(mockClient)
		store.BatchBackoff = noWait

		stuck := map[string][]types.WriteRequest{"events": {deleteReq("a")}}
		mockClient.On("BatchWriteItem", mock.Anything, mock.Anything).
			Return(&dynamodb.BatchWriteItemOutput{UnprocessedItems: stuck}, nil)

		err := store.batchWrite(context.Background(), stuck)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 requests still unprocessed after 5 attempts")
		mockClient.AssertNumberOfCalls(t, "BatchWriteItem", maxBatchAttempts)
	})

	t.Run("Stops When Context Is Done", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newStore(mockClient)
		store.BatchBackoff = retry.BackoffDelayerFunc(func(int, error) (time.Duration, error) { return time.Hour, nil })

		ctx, cancel := context.WithCancel(context.Background())
		stuck := map[string][]types.WriteRequest{"events": {deleteReq("a")}}
		mockClient.On("BatchWriteItem", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { cancel() }).
			Return(&dynamodb.BatchWriteItemOutput{UnprocessedItems: stuck}, nil).Once()

		err := store.batchWrite(ctx, stuck)

		assert.ErrorIs(t, err, context.Canceled)
		mockClient.AssertNumberOfCalls(t, "BatchWriteItem", 1)
	})
}
