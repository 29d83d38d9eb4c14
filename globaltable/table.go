// Package globaltable compiles an incrementally declared multi-region
// replicated table into the ordered AWS::DynamoDB::GlobalTable property
// structure. Every add operation validates against the state accumulated so
// far; checks that need the final shape of the resource run once, in Render.
package globaltable

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dineshkatamneni/aws-cdk/cloudformation"
)

// TableProps declares the base table. Indexes and replicas may be supplied
// here or added later through the Add operations; capacity rules for
// construction-supplied indexes are checked by Render.
type TableProps struct {
	TableName    string
	PartitionKey Attribute
	SortKey      *Attribute

	// Billing defaults to on-demand.
	Billing Billing

	// Region is the deployment region. It may be an unresolved token as long
	// as no replica is ever added.
	Region Region

	GlobalSecondaryIndexes []GlobalSecondaryIndexProps
	LocalSecondaryIndexes  []LocalSecondaryIndexProps
	Replicas               []ReplicaProps

	// Table-level defaults, inherited by every replica unless overridden.
	ContributorInsights *bool
	DeletionProtection  *bool
	PointInTimeRecovery *bool
	TableClass          types.TableClass
	KinesisStreamArn    string

	// SSESpecification and TimeToLive are passed through to the output
	// unchanged.
	SSESpecification *cloudformation.SSESpecification
	TimeToLive       *cloudformation.TimeToLiveSpecification
}

// Table is the root aggregate. A Table owns its registries exclusively and is
// not safe for concurrent mutation.
type Table struct {
	props     TableProps
	billing   Billing
	region    Region
	keySchema []cloudformation.KeySchemaElement

	attributes attributeRegistry
	indexes    secondaryIndexRegistry
	replicas   replicaRegistry
}

// NewTable builds the base table and registers any construction-supplied
// indexes and replicas, in the order given.
func NewTable(props TableProps) (*Table, error) {
	if props.PartitionKey.Name == "" {
		return nil, &StructuralError{Message: "a partition key is required"}
	}
	if err := props.Billing.validate(); err != nil {
		return nil, err
	}

	t := &Table{
		props:   props,
		billing: props.Billing,
		region:  props.Region,
	}

	keySchema, err := buildKeySchema(&t.attributes, props.PartitionKey, props.SortKey)
	if err != nil {
		return nil, err
	}
	t.keySchema = keySchema

	for _, index := range props.GlobalSecondaryIndexes {
		if err := t.indexes.addGlobal(index, t.billing, &t.attributes, false); err != nil {
			return nil, err
		}
	}
	for _, index := range props.LocalSecondaryIndexes {
		if err := t.indexes.addLocal(index, props.PartitionKey, &t.attributes); err != nil {
			return nil, err
		}
	}
	for _, replica := range props.Replicas {
		if err := t.replicas.addReplica(replica, t.region, t.billing); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// AddGlobalSecondaryIndex registers a global secondary index. All structural,
// projection and capacity rules are checked immediately.
func (t *Table) AddGlobalSecondaryIndex(props GlobalSecondaryIndexProps) error {
	return t.indexes.addGlobal(props, t.billing, &t.attributes, true)
}

// AddLocalSecondaryIndex registers a local secondary index.
func (t *Table) AddLocalSecondaryIndex(props LocalSecondaryIndexProps) error {
	return t.indexes.addLocal(props, t.props.PartitionKey, &t.attributes)
}

// AddReplica registers a replica for a region other than the deployment
// region. Overrides naming indexes that do not exist yet are accepted here
// and checked by Render against the final index registry.
func (t *Table) AddReplica(props ReplicaProps) error {
	return t.replicas.addReplica(props, t.region, t.billing)
}

// HasSecondaryIndexes reports whether any global or local secondary index is
// registered. Collaborators use this to decide whether index-scoped grants
// apply.
func (t *Table) HasSecondaryIndexes() bool {
	return t.indexes.hasAnyIndex()
}

// BillingMode returns the table's billing mode.
func (t *Table) BillingMode() types.BillingMode {
	return t.billing.Mode()
}
