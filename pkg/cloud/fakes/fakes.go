// Package fakes provides hook-style fakes for the cloud interfaces.
//
// Each fake records the inputs it saw and delegates to an optional Func field;
// when the hook is nil a benign zero response is returned, so tests only stub
// the calls they care about.
package fakes

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/directoryservice"
	"github.com/aws/aws-sdk-go-v2/service/directoryservicedata"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// FakeDynamoDB implements cloud.DynamoDBAPI.
type FakeDynamoDB struct {
	mu sync.Mutex

	GetItemFunc       func(ctx context.Context, params *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	UpdateItemFunc    func(ctx context.Context, params *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	DescribeTableFunc func(ctx context.Context, params *dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error)

	GetItemCalls    []*dynamodb.GetItemInput
	UpdateItemCalls []*dynamodb.UpdateItemInput
}

func (f *FakeDynamoDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	f.GetItemCalls = append(f.GetItemCalls, params)
	f.mu.Unlock()
	if f.GetItemFunc != nil {
		return f.GetItemFunc(ctx, params)
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *FakeDynamoDB) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	f.UpdateItemCalls = append(f.UpdateItemCalls, params)
	f.mu.Unlock()
	if f.UpdateItemFunc != nil {
		return f.UpdateItemFunc(ctx, params)
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *FakeDynamoDB) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if f.DescribeTableFunc != nil {
		return f.DescribeTableFunc(ctx, params)
	}
	return &dynamodb.DescribeTableOutput{}, nil
}

// FakeStreams implements cloud.StreamsAPI.
type FakeStreams struct {
	DescribeStreamFunc   func(ctx context.Context, params *dynamodbstreams.DescribeStreamInput) (*dynamodbstreams.DescribeStreamOutput, error)
	GetShardIteratorFunc func(ctx context.Context, params *dynamodbstreams.GetShardIteratorInput) (*dynamodbstreams.GetShardIteratorOutput, error)
	GetRecordsFunc       func(ctx context.Context, params *dynamodbstreams.GetRecordsInput) (*dynamodbstreams.GetRecordsOutput, error)
}

func (f *FakeStreams) DescribeStream(ctx context.Context, params *dynamodbstreams.DescribeStreamInput, _ ...func(*dynamodbstreams.Options)) (*dynamodbstreams.DescribeStreamOutput, error) {
	if f.DescribeStreamFunc != nil {
		return f.DescribeStreamFunc(ctx, params)
	}
	return &dynamodbstreams.DescribeStreamOutput{}, nil
}

func (f *FakeStreams) GetShardIterator(ctx context.Context, params *dynamodbstreams.GetShardIteratorInput, _ ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetShardIteratorOutput, error) {
	if f.GetShardIteratorFunc != nil {
		return f.GetShardIteratorFunc(ctx, params)
	}
	return &dynamodbstreams.GetShardIteratorOutput{}, nil
}

func (f *FakeStreams) GetRecords(ctx context.Context, params *dynamodbstreams.GetRecordsInput, _ ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetRecordsOutput, error) {
	if f.GetRecordsFunc != nil {
		return f.GetRecordsFunc(ctx, params)
	}
	return &dynamodbstreams.GetRecordsOutput{}, nil
}

// FakeEC2 implements cloud.EC2API.
type FakeEC2 struct {
	mu sync.Mutex

	RunInstancesFunc           func(ctx context.Context, params *ec2.RunInstancesInput) (*ec2.RunInstancesOutput, error)
	DescribeInstancesFunc      func(ctx context.Context, params *ec2.DescribeInstancesInput) (*ec2.DescribeInstancesOutput, error)
	DescribeImagesFunc         func(ctx context.Context, params *ec2.DescribeImagesInput) (*ec2.DescribeImagesOutput, error)
	DescribeSubnetsFunc        func(ctx context.Context, params *ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error)
	DescribeSecurityGroupsFunc func(ctx context.Context, params *ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error)
	DescribeKeyPairsFunc       func(ctx context.Context, params *ec2.DescribeKeyPairsInput) (*ec2.DescribeKeyPairsOutput, error)
	ImportKeyPairFunc          func(ctx context.Context, params *ec2.ImportKeyPairInput) (*ec2.ImportKeyPairOutput, error)

	RunInstancesCalls  []*ec2.RunInstancesInput
	ImportKeyPairCalls []*ec2.ImportKeyPairInput
}

func (f *FakeEC2) RunInstances(ctx context.Context, params *ec2.RunInstancesInput, _ ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	f.mu.Lock()
	f.RunInstancesCalls = append(f.RunInstancesCalls, params)
	f.mu.Unlock()
	if f.RunInstancesFunc != nil {
		return f.RunInstancesFunc(ctx, params)
	}
	return &ec2.RunInstancesOutput{
		Instances: []ec2types.Instance{{
			InstanceId:       aws.String("i-0fake"),
			PrivateIpAddress: aws.String("10.0.1.10"),
		}},
	}, nil
}

func (f *FakeEC2) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	if f.DescribeInstancesFunc != nil {
		return f.DescribeInstancesFunc(ctx, params)
	}
	return &ec2.DescribeInstancesOutput{}, nil
}

func (f *FakeEC2) DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, _ ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	if f.DescribeImagesFunc != nil {
		return f.DescribeImagesFunc(ctx, params)
	}
	return &ec2.DescribeImagesOutput{}, nil
}

func (f *FakeEC2) DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	if f.DescribeSubnetsFunc != nil {
		return f.DescribeSubnetsFunc(ctx, params)
	}
	return &ec2.DescribeSubnetsOutput{}, nil
}

func (f *FakeEC2) DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	if f.DescribeSecurityGroupsFunc != nil {
		return f.DescribeSecurityGroupsFunc(ctx, params)
	}
	return &ec2.DescribeSecurityGroupsOutput{}, nil
}

func (f *FakeEC2) DescribeKeyPairs(ctx context.Context, params *ec2.DescribeKeyPairsInput, _ ...func(*ec2.Options)) (*ec2.DescribeKeyPairsOutput, error) {
	if f.DescribeKeyPairsFunc != nil {
		return f.DescribeKeyPairsFunc(ctx, params)
	}
	return &ec2.DescribeKeyPairsOutput{}, nil
}

func (f *FakeEC2) ImportKeyPair(ctx context.Context, params *ec2.ImportKeyPairInput, _ ...func(*ec2.Options)) (*ec2.ImportKeyPairOutput, error) {
	f.mu.Lock()
	f.ImportKeyPairCalls = append(f.ImportKeyPairCalls, params)
	f.mu.Unlock()
	if f.ImportKeyPairFunc != nil {
		return f.ImportKeyPairFunc(ctx, params)
	}
	return &ec2.ImportKeyPairOutput{}, nil
}

// FakeSES implements cloud.SESAPI.
type FakeSES struct {
	mu sync.Mutex

	SendEmailFunc        func(ctx context.Context, params *sesv2.SendEmailInput) (*sesv2.SendEmailOutput, error)
	GetEmailIdentityFunc func(ctx context.Context, params *sesv2.GetEmailIdentityInput) (*sesv2.GetEmailIdentityOutput, error)

	SendEmailCalls []*sesv2.SendEmailInput
}

func (f *FakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.mu.Lock()
	f.SendEmailCalls = append(f.SendEmailCalls, params)
	f.mu.Unlock()
	if f.SendEmailFunc != nil {
		return f.SendEmailFunc(ctx, params)
	}
	return &sesv2.SendEmailOutput{}, nil
}

func (f *FakeSES) GetEmailIdentity(ctx context.Context, params *sesv2.GetEmailIdentityInput, _ ...func(*sesv2.Options)) (*sesv2.GetEmailIdentityOutput, error) {
	if f.GetEmailIdentityFunc != nil {
		return f.GetEmailIdentityFunc(ctx, params)
	}
	return &sesv2.GetEmailIdentityOutput{}, nil
}

// FakeSNS implements cloud.SNSAPI.
type FakeSNS struct {
	mu sync.Mutex

	PublishFunc            func(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error)
	GetTopicAttributesFunc func(ctx context.Context, params *sns.GetTopicAttributesInput) (*sns.GetTopicAttributesOutput, error)

	PublishCalls []*sns.PublishInput
}

func (f *FakeSNS) Publish(ctx context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.mu.Lock()
	f.PublishCalls = append(f.PublishCalls, params)
	f.mu.Unlock()
	if f.PublishFunc != nil {
		return f.PublishFunc(ctx, params)
	}
	return &sns.PublishOutput{}, nil
}

func (f *FakeSNS) GetTopicAttributes(ctx context.Context, params *sns.GetTopicAttributesInput, _ ...func(*sns.Options)) (*sns.GetTopicAttributesOutput, error) {
	if f.GetTopicAttributesFunc != nil {
		return f.GetTopicAttributesFunc(ctx, params)
	}
	return &sns.GetTopicAttributesOutput{}, nil
}

// FakeDirectoryData implements cloud.DirectoryDataAPI.
type FakeDirectoryData struct {
	mu sync.Mutex

	DescribeUserFunc   func(ctx context.Context, params *directoryservicedata.DescribeUserInput) (*directoryservicedata.DescribeUserOutput, error)
	CreateUserFunc     func(ctx context.Context, params *directoryservicedata.CreateUserInput) (*directoryservicedata.CreateUserOutput, error)
	AddGroupMemberFunc func(ctx context.Context, params *directoryservicedata.AddGroupMemberInput) (*directoryservicedata.AddGroupMemberOutput, error)

	CreateUserCalls     []*directoryservicedata.CreateUserInput
	AddGroupMemberCalls []*directoryservicedata.AddGroupMemberInput
}

func (f *FakeDirectoryData) DescribeUser(ctx context.Context, params *directoryservicedata.DescribeUserInput, _ ...func(*directoryservicedata.Options)) (*directoryservicedata.DescribeUserOutput, error) {
	if f.DescribeUserFunc != nil {
		return f.DescribeUserFunc(ctx, params)
	}
	return &directoryservicedata.DescribeUserOutput{}, nil
}

func (f *FakeDirectoryData) CreateUser(ctx context.Context, params *directoryservicedata.CreateUserInput, _ ...func(*directoryservicedata.Options)) (*directoryservicedata.CreateUserOutput, error) {
	f.mu.Lock()
	f.CreateUserCalls = append(f.CreateUserCalls, params)
	f.mu.Unlock()
	if f.CreateUserFunc != nil {
		return f.CreateUserFunc(ctx, params)
	}
	return &directoryservicedata.CreateUserOutput{}, nil
}

func (f *FakeDirectoryData) AddGroupMember(ctx context.Context, params *directoryservicedata.AddGroupMemberInput, _ ...func(*directoryservicedata.Options)) (*directoryservicedata.AddGroupMemberOutput, error) {
	f.mu.Lock()
	f.AddGroupMemberCalls = append(f.AddGroupMemberCalls, params)
	f.mu.Unlock()
	if f.AddGroupMemberFunc != nil {
		return f.AddGroupMemberFunc(ctx, params)
	}
	return &directoryservicedata.AddGroupMemberOutput{}, nil
}

// FakeDirectory implements cloud.DirectoryAPI.
type FakeDirectory struct {
	mu sync.Mutex

	ResetUserPasswordFunc func(ctx context.Context, params *directoryservice.ResetUserPasswordInput) (*directoryservice.ResetUserPasswordOutput, error)

	ResetUserPasswordCalls []*directoryservice.ResetUserPasswordInput
}

func (f *FakeDirectory) ResetUserPassword(ctx context.Context, params *directoryservice.ResetUserPasswordInput, _ ...func(*directoryservice.Options)) (*directoryservice.ResetUserPasswordOutput, error) {
	f.mu.Lock()
	f.ResetUserPasswordCalls = append(f.ResetUserPasswordCalls, params)
	f.mu.Unlock()
	if f.ResetUserPasswordFunc != nil {
		return f.ResetUserPasswordFunc(ctx, params)
	}
	return &directoryservice.ResetUserPasswordOutput{}, nil
}

// FakeSecrets implements cloud.SecretsAPI.
type FakeSecrets struct {
	DescribeSecretFunc func(ctx context.Context, params *secretsmanager.DescribeSecretInput) (*secretsmanager.DescribeSecretOutput, error)
}

func (f *FakeSecrets) DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error) {
	if f.DescribeSecretFunc != nil {
		return f.DescribeSecretFunc(ctx, params)
	}
	return &secretsmanager.DescribeSecretOutput{}, nil
}
