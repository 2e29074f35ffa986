package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/fkhayef/sharedexpenses/internal/sharedexpense"
)

// DynamoDBAPI is the subset of the DynamoDB client the store uses
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Store implements sharedexpense.Store on DynamoDB. A split and its entries
// are one item; writes are conditioned on the item's version, so a concurrent
// writer fails with sharedexpense.ErrConcurrentUpdate instead of blocking.
type Store struct {
	Client            DynamoDBAPI
	SplitsTableName   string
	EventsTableName   string
	CountersTableName string
	// BatchBackoff spaces out BatchWriteItem retries of unprocessed items
	BatchBackoff retry.BackoffDelayer
}

// New creates a new Store
func New(client DynamoDBAPI, splitsTable, eventsTable, countersTable string) *Store {
	return &Store{
		Client:            client,
		SplitsTableName:   splitsTable,
		EventsTableName:   eventsTable,
		CountersTableName: countersTable,
		BatchBackoff:      retry.NewExponentialJitterBackoff(2 * time.Second),
	}
}

// Make sure we conform to the interface
var _ sharedexpense.Store = (*Store)(nil)

const (
	splitCounter       = "shared_expense"
	participantCounter = "participant"
)

// nextIDs reserves n consecutive ids from a counter and returns the first
func (s *Store) nextIDs(ctx context.Context, counter string, n int) (int64, error) {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.CountersTableName),
		Key: map[string]types.AttributeValue{
			"name": &types.AttributeValueMemberS{Value: counter},
		},
		UpdateExpression: aws.String("ADD seq :n"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":n": &types.AttributeValueMemberN{Value: strconv.Itoa(n)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	}

	out, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", counter, err)
	}

	seqAV, ok := out.Attributes["seq"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("counter %s returned no sequence", counter)
	}
	last, err := strconv.ParseInt(seqAV.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter %s returned invalid sequence: %w", counter, err)
	}
	return last - int64(n) + 1, nil
}

// assignParticipantIDs gives ids to entries that have none yet
func (s *Store) assignParticipantIDs(ctx context.Context, se *sharedexpense.SharedExpense) error {
	missing := 0
	for _, p := range se.Participants {
		if p.ID == 0 {
			missing++
		}
	}
	if missing == 0 {
		return nil
	}

	next, err := s.nextIDs(ctx, participantCounter, missing)
	if err != nil {
		return err
	}
	for _, p := range se.Participants {
		if p.ID == 0 {
			p.ID = next
			next++
		}
	}
	return nil
}

// mapTransactError turns a failed version condition into ErrConcurrentUpdate
func mapTransactError(err error) error {
	var txc *types.TransactionCanceledException
	if errors.As(err, &txc) {
		for _, reason := range txc.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				return sharedexpense.ErrConcurrentUpdate
			}
		}
	}
	var condCheckFailed *types.ConditionalCheckFailedException
	if errors.As(err, &condCheckFailed) {
		return sharedexpense.ErrConcurrentUpdate
	}
	return err
}
