// Package cloudformation holds the declarative property structures for the
// AWS::DynamoDB::GlobalTable resource. The compiler fills these in; turning
// them into a template document is the serializer's job.
package cloudformation

// GlobalTableProperties is the full property set of an
// AWS::DynamoDB::GlobalTable resource.
// See: https://docs.aws.amazon.com/AWSCloudFormation/latest/UserGuide/aws-resource-dynamodb-globaltable.html
type GlobalTableProperties struct {
	TableName string `json:"TableName,omitempty"`

	// AttributeDefinitions lists every key attribute in first-definition order.
	AttributeDefinitions []AttributeDefinition `json:"AttributeDefinitions"`

	BillingMode string `json:"BillingMode,omitempty"`

	KeySchema []KeySchemaElement `json:"KeySchema"`

	GlobalSecondaryIndexes []GlobalSecondaryIndex `json:"GlobalSecondaryIndexes,omitempty"`

	LocalSecondaryIndexes []LocalSecondaryIndex `json:"LocalSecondaryIndexes,omitempty"`

	// Replicas is never empty: the deployment-region replica is always present
	// and always last.
	Replicas []ReplicaSpecification `json:"Replicas"`

	SSESpecification *SSESpecification `json:"SSESpecification,omitempty"`

	StreamSpecification *StreamSpecification `json:"StreamSpecification,omitempty"`

	TimeToLiveSpecification *TimeToLiveSpecification `json:"TimeToLiveSpecification,omitempty"`

	WriteProvisionedThroughputSettings *WriteProvisionedThroughputSettings `json:"WriteProvisionedThroughputSettings,omitempty"`
}

// AWSCloudFormationType returns the AWS CloudFormation resource type
func (r *GlobalTableProperties) AWSCloudFormationType() string {
	return "AWS::DynamoDB::GlobalTable"
}

type AttributeDefinition struct {
	AttributeName string `json:"AttributeName"`
	AttributeType string `json:"AttributeType"`
}

type KeySchemaElement struct {
	AttributeName string `json:"AttributeName"`
	KeyType       string `json:"KeyType"`
}

type Projection struct {
	NonKeyAttributes []string `json:"NonKeyAttributes,omitempty"`
	ProjectionType   string   `json:"ProjectionType,omitempty"`
}

type GlobalSecondaryIndex struct {
	IndexName                          string                              `json:"IndexName"`
	KeySchema                          []KeySchemaElement                  `json:"KeySchema"`
	Projection                         Projection                          `json:"Projection"`
	WriteProvisionedThroughputSettings *WriteProvisionedThroughputSettings `json:"WriteProvisionedThroughputSettings,omitempty"`
}

type LocalSecondaryIndex struct {
	IndexName  string             `json:"IndexName"`
	KeySchema  []KeySchemaElement `json:"KeySchema"`
	Projection Projection         `json:"Projection"`
}

type ReplicaSpecification struct {
	Region                            string                                     `json:"Region"`
	ContributorInsightsSpecification  *ContributorInsightsSpecification          `json:"ContributorInsightsSpecification,omitempty"`
	DeletionProtectionEnabled         *bool                                      `json:"DeletionProtectionEnabled,omitempty"`
	GlobalSecondaryIndexes            []ReplicaGlobalSecondaryIndexSpecification `json:"GlobalSecondaryIndexes,omitempty"`
	KinesisStreamSpecification        *KinesisStreamSpecification                `json:"KinesisStreamSpecification,omitempty"`
	PointInTimeRecoverySpecification  *PointInTimeRecoverySpecification          `json:"PointInTimeRecoverySpecification,omitempty"`
	ReadProvisionedThroughputSettings *ReadProvisionedThroughputSettings         `json:"ReadProvisionedThroughputSettings,omitempty"`
	TableClass                        string                                     `json:"TableClass,omitempty"`
}

type ReplicaGlobalSecondaryIndexSpecification struct {
	IndexName                         string                             `json:"IndexName"`
	ContributorInsightsSpecification  *ContributorInsightsSpecification  `json:"ContributorInsightsSpecification,omitempty"`
	ReadProvisionedThroughputSettings *ReadProvisionedThroughputSettings `json:"ReadProvisionedThroughputSettings,omitempty"`
}

type ContributorInsightsSpecification struct {
	Enabled bool `json:"Enabled"`
}

type PointInTimeRecoverySpecification struct {
	PointInTimeRecoveryEnabled bool `json:"PointInTimeRecoveryEnabled"`
}

type KinesisStreamSpecification struct {
	StreamArn string `json:"StreamArn"`
}

type ReadProvisionedThroughputSettings struct {
	ReadCapacityAutoScalingSettings *CapacityAutoScalingSettings `json:"ReadCapacityAutoScalingSettings,omitempty"`
	ReadCapacityUnits               int64                        `json:"ReadCapacityUnits,omitempty"`
}

type WriteProvisionedThroughputSettings struct {
	WriteCapacityAutoScalingSettings *CapacityAutoScalingSettings `json:"WriteCapacityAutoScalingSettings,omitempty"`
	WriteCapacityUnits               int64                        `json:"WriteCapacityUnits,omitempty"`
}

type CapacityAutoScalingSettings struct {
	MinCapacity                              int64                                    `json:"MinCapacity"`
	MaxCapacity                              int64                                    `json:"MaxCapacity"`
	TargetTrackingScalingPolicyConfiguration TargetTrackingScalingPolicyConfiguration `json:"TargetTrackingScalingPolicyConfiguration"`
}

type TargetTrackingScalingPolicyConfiguration struct {
	TargetValue float64 `json:"TargetValue"`
}

type StreamSpecification struct {
	StreamViewType string `json:"StreamViewType"`
}

type SSESpecification struct {
	SSEEnabled bool   `json:"SSEEnabled"`
	SSEType    string `json:"SSEType,omitempty"`
}

type TimeToLiveSpecification struct {
	AttributeName string `json:"AttributeName,omitempty"`
	Enabled       bool   `json:"Enabled"`
}
