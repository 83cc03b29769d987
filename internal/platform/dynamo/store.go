// Package dynamo implements the employee record store on DynamoDB.
//
// The store is the only shared mutable resource in the system. Every write is
// a single conditional update: the claim marker reserves a record before side
// effects begin, and the terminal write flips processed together with the
// outcome fields in one atomic expression, guarded on processed still being
// false. Nothing is ever written for a failed attempt.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/innovatech/deskprov/pkg/cloud"
)

// ClaimLease is how long a claim marker blocks concurrent attempts for the
// same record. A crashed attempt simply lets its claim expire; the next
// redelivery retries the full sequence.
const ClaimLease = 15 * time.Minute

// ErrAlreadyProcessed is returned when a conditional write loses to an attempt
// that already completed the record.
var ErrAlreadyProcessed = errors.New("record already processed")

// Employee is the record as stored, including the outcome fields written on
// success.
type Employee struct {
	ID         string `dynamodbav:"id"`
	Name       string `dynamodbav:"name"`
	Email      string `dynamodbav:"email"`
	Username   string `dynamodbav:"username"`
	Department string `dynamodbav:"department"`
	Role       string `dynamodbav:"role"`

	Processed   bool   `dynamodbav:"processed"`
	ProcessedAt string `dynamodbav:"processed_at,omitempty"`
	InstanceID  string `dynamodbav:"instance_id,omitempty"`
	PrivateIP   string `dynamodbav:"private_ip,omitempty"`
	AccessLevel string `dynamodbav:"access_level,omitempty"`
}

// Outcome carries the result fields of one successful provisioning attempt.
type Outcome struct {
	InstanceID  string
	PrivateIP   string
	AccessLevel string
}

// Store reads and updates employee records.
type Store struct {
	db    cloud.DynamoDBAPI
	table string
	now   func() time.Time
}

// NewStore creates a record store bound to one table.
func NewStore(db cloud.DynamoDBAPI, table string) *Store {
	return &Store{db: db, table: table, now: time.Now}
}

// Get fetches a record by ID with a consistent read, so the idempotency guard
// sees the latest processed flag. Returns nil when the record does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Employee, error) {
	out, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.table,
		Key:            recordKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", id, err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var emp Employee
	if err := attributevalue.UnmarshalMap(out.Item, &emp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %s: %w", id, err)
	}
	return &emp, nil
}

// Claim reserves the record for one processing attempt. It succeeds only if
// the record is still unprocessed and carries no live claim; a lost race
// returns (false, nil) rather than an error, and the caller skips the attempt.
func (s *Store) Claim(ctx context.Context, id string) (bool, error) {
	now := s.now().UTC()
	stale := now.Add(-ClaimLease)

	_, err := s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        &s.table,
		Key:              recordKey(id),
		UpdateExpression: aws.String("SET claimed_at = :now"),
		ConditionExpression: aws.String(
			"(attribute_not_exists(#proc) OR #proc = :false) AND " +
				"(attribute_not_exists(claimed_at) OR claimed_at < :stale)"),
		ExpressionAttributeNames: map[string]string{"#proc": "processed"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now":   &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			":false": &types.AttributeValueMemberBOOL{Value: false},
			":stale": &types.AttributeValueMemberS{Value: stale.Format(time.RFC3339)},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to claim record %s: %w", id, err)
	}
	return true, nil
}

// Release drops the claim marker after a failed attempt so redelivery can
// retry without waiting out the lease. Best effort: an expired or missing
// claim is not an error.
func (s *Store) Release(ctx context.Context, id string) error {
	_, err := s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        &s.table,
		Key:              recordKey(id),
		UpdateExpression: aws.String("REMOVE claimed_at"),
	})
	if err != nil {
		return fmt.Errorf("failed to release claim on record %s: %w", id, err)
	}
	return nil
}

// MarkProcessed atomically records a successful attempt: processed,
// processed_at, and all outcome fields are set in one update, guarded on the
// record not having been processed by a concurrent attempt. The claim marker
// is cleared in the same write.
func (s *Store) MarkProcessed(ctx context.Context, id string, outcome Outcome) error {
	if outcome.InstanceID == "" || outcome.PrivateIP == "" || outcome.AccessLevel == "" {
		return fmt.Errorf("incomplete outcome for record %s", id)
	}

	_, err := s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &s.table,
		Key:       recordKey(id),
		UpdateExpression: aws.String(
			"SET #proc = :true, processed_at = :now, instance_id = :inst, " +
				"private_ip = :ip, access_level = :level REMOVE claimed_at"),
		ConditionExpression:      aws.String("attribute_not_exists(#proc) OR #proc = :false"),
		ExpressionAttributeNames: map[string]string{"#proc": "processed"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true":  &types.AttributeValueMemberBOOL{Value: true},
			":false": &types.AttributeValueMemberBOOL{Value: false},
			":now":   &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339)},
			":inst":  &types.AttributeValueMemberS{Value: outcome.InstanceID},
			":ip":    &types.AttributeValueMemberS{Value: outcome.PrivateIP},
			":level": &types.AttributeValueMemberS{Value: outcome.AccessLevel},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrAlreadyProcessed
		}
		return fmt.Errorf("failed to mark record %s processed: %w", id, err)
	}
	return nil
}

// Ping verifies the table exists and is reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.db.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: &s.table})
	if err != nil {
		return fmt.Errorf("table %s not reachable: %w", s.table, err)
	}
	return nil
}

func recordKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
