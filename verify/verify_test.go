package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dineshkatamneni/aws-cdk/cloudformation"
)

type fakeClient struct {
	output *dynamodb.DescribeTableOutput
	err    error
}

func (f *fakeClient) DescribeTable(_ context.Context, _ *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return f.output, f.err
}

func wantedTable() *cloudformation.GlobalTableProperties {
	return &cloudformation.GlobalTableProperties{
		KeySchema: []cloudformation.KeySchemaElement{
			{AttributeName: "pk", KeyType: "HASH"},
			{AttributeName: "sk", KeyType: "RANGE"},
		},
		AttributeDefinitions: []cloudformation.AttributeDefinition{
			{AttributeName: "pk", AttributeType: "S"},
			{AttributeName: "sk", AttributeType: "N"},
		},
		BillingMode: "PAY_PER_REQUEST",
		GlobalSecondaryIndexes: []cloudformation.GlobalSecondaryIndex{
			{IndexName: "gsi1"},
		},
		Replicas: []cloudformation.ReplicaSpecification{
			{Region: "eu-west-1"},
			{Region: "us-east-1"},
		},
	}
}

func matchingDescription() *dynamodb.DescribeTableOutput {
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
			},
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String("sk"), AttributeType: types.ScalarAttributeTypeN},
			},
			BillingModeSummary: &types.BillingModeSummary{BillingMode: types.BillingModePayPerRequest},
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndexDescription{
				{IndexName: aws.String("gsi1")},
			},
			Replicas: []types.ReplicaDescription{
				{RegionName: aws.String("eu-west-1")},
			},
		},
	}
}

func TestDiffClean(t *testing.T) {
	client := &fakeClient{output: matchingDescription()}
	report, err := Diff(context.Background(), client, "orders", wantedTable())
	require.NoError(t, err)
	assert.True(t, report.Clean(), "unexpected findings: %v", report.Findings)
}

func TestDiffFindings(t *testing.T) {
	description := matchingDescription()
	description.Table.AttributeDefinitions[1].AttributeType = types.ScalarAttributeTypeS
	description.Table.BillingModeSummary = nil
	description.Table.GlobalSecondaryIndexes = nil
	description.Table.Replicas = append(description.Table.Replicas, types.ReplicaDescription{RegionName: aws.String("ap-south-1")})

	client := &fakeClient{output: description}
	report, err := Diff(context.Background(), client, "orders", wantedTable())
	require.NoError(t, err)
	require.False(t, report.Clean())

	joined := ""
	for _, finding := range report.Findings {
		joined += finding + "\n"
	}
	assert.Contains(t, joined, `attribute "sk" has type S, expected N`)
	assert.Contains(t, joined, "billing mode is PROVISIONED, expected PAY_PER_REQUEST")
	assert.Contains(t, joined, `global secondary index "gsi1" is missing`)
	assert.Contains(t, joined, `undeclared replica in region "ap-south-1"`)
}

func TestDiffTableNotFound(t *testing.T) {
	client := &fakeClient{err: &types.ResourceNotFoundException{Message: aws.String("no such table")}}
	_, err := Diff(context.Background(), client, "orders", wantedTable())
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestDiffOtherErrorsPropagate(t *testing.T) {
	client := &fakeClient{err: errors.New("network is down")}
	_, err := Diff(context.Background(), client, "orders", wantedTable())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTableNotFound)
}
