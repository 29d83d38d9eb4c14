package globaltable

import (
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dineshkatamneni/aws-cdk/cloudformation"
)

// ReplicaGlobalSecondaryIndexOptions overrides settings of one global
// secondary index for a single replica.
type ReplicaGlobalSecondaryIndexOptions struct {
	ContributorInsights *bool
	ReadCapacity        *Capacity
}

// ReplicaProps declares a per-region replica and its overrides. Any field
// left unset inherits the table-level default.
type ReplicaProps struct {
	Region              Region
	ReadCapacity        *Capacity
	ContributorInsights *bool
	DeletionProtection  *bool
	PointInTimeRecovery *bool
	TableClass          types.TableClass
	// KinesisStreamArn is an opaque stream handle passed through unchanged.
	KinesisStreamArn string
	// GlobalSecondaryIndexOptions is keyed by index name. Referenced indexes
	// may be added after the replica; the names are checked at render time.
	GlobalSecondaryIndexOptions map[string]ReplicaGlobalSecondaryIndexOptions
}

// replicaRegistry holds explicit replicas keyed by region name, in
// registration order. The deployment-region replica is implicit and never
// stored here.
type replicaRegistry struct {
	replicas orderedMap[ReplicaProps]
}

func (r *replicaRegistry) addReplica(props ReplicaProps, deploymentRegion Region, billing Billing) error {
	if deploymentRegion.Unresolved() {
		return &ReferenceError{Message: "replicas cannot be added when the deployment region is unresolved"}
	}
	if props.Region.Unresolved() {
		return &ReferenceError{Message: "replica region must be a concrete value, not an unresolved token"}
	}
	region := props.Region.String()
	if region == deploymentRegion.String() {
		return &StructuralError{Message: fmt.Sprintf("replica region %q is the deployment region; that replica always exists and is configured through the table-level settings", region)}
	}
	if r.replicas.has(region) {
		return &StructuralError{Message: fmt.Sprintf("a replica for region %q already exists", region)}
	}
	if billing.Mode() == types.BillingModePayPerRequest {
		if props.ReadCapacity != nil {
			return &CapacityError{Message: fmt.Sprintf("replica %q cannot declare read capacity when billing mode is %s", region, types.BillingModePayPerRequest)}
		}
	} else if props.ReadCapacity != nil {
		if err := props.ReadCapacity.validate(fmt.Sprintf("replica %q read capacity", region)); err != nil {
			return err
		}
	}

	r.replicas.put(region, props)
	return nil
}

// tableDefaults are the table-level settings every replica inherits unless it
// overrides them.
type tableDefaults struct {
	contributorInsights *bool
	deletionProtection  *bool
	pointInTimeRecovery *bool
	tableClass          types.TableClass
	kinesisStreamArn    string
}

// coalesceBool returns the first set value, most specific first.
func coalesceBool(layers ...*bool) *bool {
	for _, layer := range layers {
		if layer != nil {
			return layer
		}
	}
	return nil
}

func insightsSpecification(enabled *bool) *cloudformation.ContributorInsightsSpecification {
	if enabled == nil {
		return nil
	}
	return &cloudformation.ContributorInsightsSpecification{Enabled: *enabled}
}

// resolveReplica merges table-level defaults with the replica's own
// overrides. The per-index settings are resolved separately, against the
// final index registry.
func resolveReplica(props ReplicaProps, defaults tableDefaults, billing Billing) cloudformation.ReplicaSpecification {
	replica := cloudformation.ReplicaSpecification{
		Region:                           props.Region.String(),
		ContributorInsightsSpecification: insightsSpecification(coalesceBool(props.ContributorInsights, defaults.contributorInsights)),
		DeletionProtectionEnabled:        coalesceBool(props.DeletionProtection, defaults.deletionProtection),
	}

	if pitr := coalesceBool(props.PointInTimeRecovery, defaults.pointInTimeRecovery); pitr != nil {
		replica.PointInTimeRecoverySpecification = &cloudformation.PointInTimeRecoverySpecification{PointInTimeRecoveryEnabled: *pitr}
	}

	tableClass := props.TableClass
	if tableClass == "" {
		tableClass = defaults.tableClass
	}
	replica.TableClass = string(tableClass)

	streamArn := props.KinesisStreamArn
	if streamArn == "" {
		streamArn = defaults.kinesisStreamArn
	}
	if streamArn != "" {
		replica.KinesisStreamSpecification = &cloudformation.KinesisStreamSpecification{StreamArn: streamArn}
	}

	if billing.Mode() == types.BillingModeProvisioned {
		readCapacity := billing.readCapacity
		if props.ReadCapacity != nil {
			readCapacity = *props.ReadCapacity
		}
		replica.ReadProvisionedThroughputSettings = readCapacity.readSettings()
	}

	return replica
}

// resolveReplicaIndexes computes the per-replica settings of every registered
// global secondary index, in registration order. It runs at render time so
// that indexes added after the replica are still covered, and so that
// overrides naming unknown indexes can finally be rejected.
func resolveReplicaIndexes(overrides map[string]ReplicaGlobalSecondaryIndexOptions, indexes *secondaryIndexRegistry, defaults tableDefaults, billing Billing) ([]cloudformation.ReplicaGlobalSecondaryIndexSpecification, error) {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if !indexes.globals.has(name) {
			return nil, &StructuralError{Message: fmt.Sprintf("replica overrides global secondary index %q, but no such index exists on this table", name)}
		}
		options := overrides[name]
		if options.ReadCapacity != nil {
			if billing.Mode() == types.BillingModePayPerRequest {
				return nil, &CapacityError{Message: fmt.Sprintf("replica cannot override read capacity of global secondary index %q when billing mode is %s", name, types.BillingModePayPerRequest)}
			}
			if err := options.ReadCapacity.validate(fmt.Sprintf("replica read capacity override for global secondary index %q", name)); err != nil {
				return nil, err
			}
		}
	}

	if indexes.globals.len() == 0 {
		return nil, nil
	}

	specs := make([]cloudformation.ReplicaGlobalSecondaryIndexSpecification, 0, indexes.globals.len())
	indexes.globals.each(func(name string, index globalIndex) {
		options := overrides[name]
		spec := cloudformation.ReplicaGlobalSecondaryIndexSpecification{
			IndexName: name,
			ContributorInsightsSpecification: insightsSpecification(
				coalesceBool(options.ContributorInsights, defaults.contributorInsights, index.props.ContributorInsights)),
		}
		if billing.Mode() == types.BillingModeProvisioned {
			readCapacity := index.props.ReadCapacity
			if options.ReadCapacity != nil {
				readCapacity = options.ReadCapacity
			}
			if readCapacity != nil {
				spec.ReadProvisionedThroughputSettings = readCapacity.readSettings()
			}
		}
		specs = append(specs, spec)
	})
	return specs, nil
}
