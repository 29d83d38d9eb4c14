// Package verify compares a rendered global-table definition against a table
// that already exists in an account. It only ever reads: the single call it
// makes is DescribeTable.
package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/dineshkatamneni/aws-cdk/cloudformation"
)

// ErrTableNotFound reports that the table does not exist in the target
// account and region.
var ErrTableNotFound = errors.New("table not found")

// DescribeTableAPI is the slice of the DynamoDB client the check needs.
type DescribeTableAPI interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Report lists the differences between the declared table and the live one.
type Report struct {
	TableName string
	Findings  []string
}

// Clean reports whether no differences were found.
func (r *Report) Clean() bool {
	return len(r.Findings) == 0
}

func (r *Report) addf(format string, args ...any) {
	r.Findings = append(r.Findings, fmt.Sprintf(format, args...))
}

// Diff describes the live table and compares its key schema, attribute
// definitions, billing mode, index names and replica regions against the
// rendered definition.
func Diff(ctx context.Context, client DescribeTableAPI, tableName string, want *cloudformation.GlobalTableProperties) (*Report, error) {
	out, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tableName)})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("describe table %s: %s: %w", tableName, apiErr.ErrorCode(), err)
		}
		return nil, fmt.Errorf("describe table %s: %w", tableName, err)
	}

	table := out.Table
	report := &Report{TableName: tableName}

	diffKeySchema(report, table.KeySchema, want.KeySchema)
	diffAttributeDefinitions(report, table.AttributeDefinitions, want.AttributeDefinitions)
	diffBillingMode(report, table.BillingModeSummary, want.BillingMode)
	diffIndexNames(report, table, want)
	diffReplicaRegions(report, table.Replicas, want.Replicas)

	return report, nil
}

func diffKeySchema(report *Report, live []types.KeySchemaElement, want []cloudformation.KeySchemaElement) {
	if len(live) != len(want) {
		report.addf("key schema has %d elements, expected %d", len(live), len(want))
		return
	}
	for i, element := range want {
		if aws.ToString(live[i].AttributeName) != element.AttributeName || string(live[i].KeyType) != element.KeyType {
			report.addf("key schema element %d is %s %s, expected %s %s",
				i, aws.ToString(live[i].AttributeName), live[i].KeyType, element.AttributeName, element.KeyType)
		}
	}
}

func diffAttributeDefinitions(report *Report, live []types.AttributeDefinition, want []cloudformation.AttributeDefinition) {
	liveTypes := make(map[string]string, len(live))
	for _, def := range live {
		liveTypes[aws.ToString(def.AttributeName)] = string(def.AttributeType)
	}
	wanted := make(map[string]struct{}, len(want))
	for _, def := range want {
		wanted[def.AttributeName] = struct{}{}
		liveType, ok := liveTypes[def.AttributeName]
		if !ok {
			report.addf("attribute %q is not defined on the live table", def.AttributeName)
			continue
		}
		if liveType != def.AttributeType {
			report.addf("attribute %q has type %s, expected %s", def.AttributeName, liveType, def.AttributeType)
		}
	}
	for _, def := range live {
		name := aws.ToString(def.AttributeName)
		if _, ok := wanted[name]; !ok {
			report.addf("live table defines attribute %q that is not declared", name)
		}
	}
}

func diffBillingMode(report *Report, summary *types.BillingModeSummary, want string) {
	// tables created without an explicit billing mode report no summary
	liveMode := types.BillingModeProvisioned
	if summary != nil {
		liveMode = summary.BillingMode
	}
	if string(liveMode) != want {
		report.addf("billing mode is %s, expected %s", liveMode, want)
	}
}

func diffIndexNames(report *Report, table *types.TableDescription, want *cloudformation.GlobalTableProperties) {
	liveGlobals := make(map[string]struct{}, len(table.GlobalSecondaryIndexes))
	for _, index := range table.GlobalSecondaryIndexes {
		liveGlobals[aws.ToString(index.IndexName)] = struct{}{}
	}
	for _, index := range want.GlobalSecondaryIndexes {
		if _, ok := liveGlobals[index.IndexName]; !ok {
			report.addf("global secondary index %q is missing on the live table", index.IndexName)
		}
		delete(liveGlobals, index.IndexName)
	}
	for name := range liveGlobals {
		report.addf("live table has undeclared global secondary index %q", name)
	}

	liveLocals := make(map[string]struct{}, len(table.LocalSecondaryIndexes))
	for _, index := range table.LocalSecondaryIndexes {
		liveLocals[aws.ToString(index.IndexName)] = struct{}{}
	}
	for _, index := range want.LocalSecondaryIndexes {
		if _, ok := liveLocals[index.IndexName]; !ok {
			report.addf("local secondary index %q is missing on the live table", index.IndexName)
		}
		delete(liveLocals, index.IndexName)
	}
	for name := range liveLocals {
		report.addf("live table has undeclared local secondary index %q", name)
	}
}

func diffReplicaRegions(report *Report, live []types.ReplicaDescription, want []cloudformation.ReplicaSpecification) {
	liveRegions := make(map[string]struct{}, len(live))
	for _, replica := range live {
		liveRegions[aws.ToString(replica.RegionName)] = struct{}{}
	}

	// The deployment-region replica is always the last declared entry; a
	// table never lists its own region among its replicas.
	for i, replica := range want {
		if i == len(want)-1 {
			continue
		}
		if _, ok := liveRegions[replica.Region]; !ok {
			report.addf("replica in region %q is missing on the live table", replica.Region)
		}
		delete(liveRegions, replica.Region)
	}
	for region := range liveRegions {
		report.addf("live table has undeclared replica in region %q", region)
	}
}
