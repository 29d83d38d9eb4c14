package globaltable

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dineshkatamneni/aws-cdk/cloudformation"
)

// Render reads the final state of every registry and produces the ordered
// property structure. It is a pure read: calling it again without intervening
// mutation yields an identical result.
//
// Checks that could not run at add time run here, against the final state:
// capacity rules for construction-supplied indexes, and replica overrides
// naming indexes that were registered after the replica (or never).
func (t *Table) Render() (*cloudformation.GlobalTableProperties, error) {
	if err := t.validateIndexCapacity(); err != nil {
		return nil, err
	}

	out := &cloudformation.GlobalTableProperties{
		TableName:            t.props.TableName,
		KeySchema:            t.keySchema,
		AttributeDefinitions: t.attributes.definitions(),
		BillingMode:          string(t.billing.Mode()),
	}

	if t.billing.Mode() == types.BillingModeProvisioned {
		out.WriteProvisionedThroughputSettings = t.billing.writeCapacity.writeSettings()
	}

	out.GlobalSecondaryIndexes = t.renderGlobalIndexes()
	out.LocalSecondaryIndexes = t.renderLocalIndexes()

	replicas, err := t.renderReplicas()
	if err != nil {
		return nil, err
	}
	out.Replicas = replicas

	if t.replicas.replicas.len() > 0 {
		out.StreamSpecification = &cloudformation.StreamSpecification{
			StreamViewType: string(types.StreamViewTypeNewAndOldImages),
		}
	}

	out.SSESpecification = t.props.SSESpecification
	out.TimeToLiveSpecification = t.props.TimeToLive

	return out, nil
}

// validateIndexCapacity re-checks every registered global index against the
// billing mode, so that indexes recorded at construction fail here rather
// than rendering an inconsistent document.
func (t *Table) validateIndexCapacity() error {
	var err error
	t.indexes.globals.each(func(_ string, index globalIndex) {
		if err != nil {
			return
		}
		err = validateGlobalIndexCapacity(index.props, t.billing)
	})
	return err
}

func renderProjection(projection Projection) cloudformation.Projection {
	return cloudformation.Projection{
		ProjectionType:   string(projection.projectionType()),
		NonKeyAttributes: projection.NonKeyAttributes,
	}
}

func (t *Table) renderGlobalIndexes() []cloudformation.GlobalSecondaryIndex {
	if t.indexes.globals.len() == 0 {
		return nil
	}
	indexes := make([]cloudformation.GlobalSecondaryIndex, 0, t.indexes.globals.len())
	t.indexes.globals.each(func(name string, index globalIndex) {
		rendered := cloudformation.GlobalSecondaryIndex{
			IndexName:  name,
			KeySchema:  index.keySchema,
			Projection: renderProjection(index.props.Projection),
		}
		if t.billing.Mode() == types.BillingModeProvisioned {
			writeCapacity := t.billing.writeCapacity
			if index.props.WriteCapacity != nil {
				writeCapacity = *index.props.WriteCapacity
			}
			rendered.WriteProvisionedThroughputSettings = writeCapacity.writeSettings()
		}
		indexes = append(indexes, rendered)
	})
	return indexes
}

func (t *Table) renderLocalIndexes() []cloudformation.LocalSecondaryIndex {
	if t.indexes.locals.len() == 0 {
		return nil
	}
	indexes := make([]cloudformation.LocalSecondaryIndex, 0, t.indexes.locals.len())
	t.indexes.locals.each(func(name string, index localIndex) {
		indexes = append(indexes, cloudformation.LocalSecondaryIndex{
			IndexName:  name,
			KeySchema:  index.keySchema,
			Projection: renderProjection(index.props.Projection),
		})
	})
	return indexes
}

// renderReplicas resolves every explicit replica in registration order and
// appends the implicit deployment-region replica last.
func (t *Table) renderReplicas() ([]cloudformation.ReplicaSpecification, error) {
	defaults := tableDefaults{
		contributorInsights: t.props.ContributorInsights,
		deletionProtection:  t.props.DeletionProtection,
		pointInTimeRecovery: t.props.PointInTimeRecovery,
		tableClass:          t.props.TableClass,
		kinesisStreamArn:    t.props.KinesisStreamArn,
	}

	replicas := make([]cloudformation.ReplicaSpecification, 0, t.replicas.replicas.len()+1)
	var resolveErr error
	t.replicas.replicas.each(func(_ string, props ReplicaProps) {
		if resolveErr != nil {
			return
		}
		replica := resolveReplica(props, defaults, t.billing)
		indexes, err := resolveReplicaIndexes(props.GlobalSecondaryIndexOptions, &t.indexes, defaults, t.billing)
		if err != nil {
			resolveErr = err
			return
		}
		replica.GlobalSecondaryIndexes = indexes
		replicas = append(replicas, replica)
	})
	if resolveErr != nil {
		return nil, resolveErr
	}

	deployment := resolveReplica(ReplicaProps{Region: t.region}, defaults, t.billing)
	indexes, err := resolveReplicaIndexes(nil, &t.indexes, defaults, t.billing)
	if err != nil {
		return nil, err
	}
	deployment.GlobalSecondaryIndexes = indexes
	replicas = append(replicas, deployment)

	return replicas, nil
}
