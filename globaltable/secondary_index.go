package globaltable

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dineshkatamneni/aws-cdk/cloudformation"
)

const (
	maxGlobalSecondaryIndexes = 20
	maxLocalSecondaryIndexes  = 5
	maxNonKeyAttributes       = 100
)

// Projection selects which attributes are copied into a secondary index.
// The zero value projects all attributes.
type Projection struct {
	Type types.ProjectionType
	// NonKeyAttributes must be set iff Type is types.ProjectionTypeInclude.
	NonKeyAttributes []string
}

func (p Projection) projectionType() types.ProjectionType {
	if p.Type == "" {
		return types.ProjectionTypeAll
	}
	return p.Type
}

// GlobalSecondaryIndexProps declares a global secondary index. The index has
// its own partition key and, under provisioned billing, its own capacity.
type GlobalSecondaryIndexProps struct {
	IndexName    string
	PartitionKey Attribute
	SortKey      *Attribute
	Projection   Projection
	// ReadCapacity is required under provisioned billing and forbidden under
	// on-demand billing. It seeds the per-replica read throughput of the index.
	ReadCapacity *Capacity
	// WriteCapacity falls back to the table's write capacity when nil.
	WriteCapacity *Capacity
	// ContributorInsights is the index's own setting, overridable per replica.
	ContributorInsights *bool
}

// LocalSecondaryIndexProps declares a local secondary index. The index reuses
// the base table's partition key and throughput; only a sort key is supplied.
type LocalSecondaryIndexProps struct {
	IndexName  string
	SortKey    Attribute
	Projection Projection
}

// globalIndex is a registered global secondary index together with the key
// schema built for it at registration time.
type globalIndex struct {
	props     GlobalSecondaryIndexProps
	keySchema []cloudformation.KeySchemaElement
}

// localIndex is a registered local secondary index together with its key
// schema, which reuses the base table's partition key.
type localIndex struct {
	props     LocalSecondaryIndexProps
	keySchema []cloudformation.KeySchemaElement
}

// secondaryIndexRegistry holds both index kinds, keyed by the shared index
// name space, in registration order.
type secondaryIndexRegistry struct {
	globals orderedMap[globalIndex]
	locals  orderedMap[localIndex]

	// nonKeyAttributeNames accumulates the distinct non-key attribute names
	// across every index of the resource, capped at maxNonKeyAttributes.
	nonKeyAttributeNames map[string]struct{}
}

func (r *secondaryIndexRegistry) hasIndex(indexName string) bool {
	return r.globals.has(indexName) || r.locals.has(indexName)
}

// hasAnyIndex reports whether at least one index of either kind is registered.
func (r *secondaryIndexRegistry) hasAnyIndex() bool {
	return r.globals.len() > 0 || r.locals.len() > 0
}

// addGlobal validates and registers a global secondary index. Capacity rules
// are enforced here when eagerCapacity is set; the render pass re-checks them
// for every registered index regardless.
func (r *secondaryIndexRegistry) addGlobal(props GlobalSecondaryIndexProps, billing Billing, attrs *attributeRegistry, eagerCapacity bool) error {
	if r.hasIndex(props.IndexName) {
		return &StructuralError{Message: fmt.Sprintf("an index named %q already exists on this table", props.IndexName)}
	}
	if r.globals.len() >= maxGlobalSecondaryIndexes {
		return &StructuralError{Message: fmt.Sprintf("cannot add global secondary index %q: a table supports at most %d global secondary indexes", props.IndexName, maxGlobalSecondaryIndexes)}
	}
	if eagerCapacity {
		if err := validateGlobalIndexCapacity(props, billing); err != nil {
			return err
		}
	}
	if err := r.validateProjection(props.IndexName, props.Projection); err != nil {
		return err
	}

	keySchema, err := buildKeySchema(attrs, props.PartitionKey, props.SortKey)
	if err != nil {
		return err
	}

	r.recordNonKeyAttributes(props.Projection)
	r.globals.put(props.IndexName, globalIndex{props: props, keySchema: keySchema})
	return nil
}

// addLocal validates and registers a local secondary index. Local indexes
// share the base table's partition key and throughput, so only a sort key is
// registered and no capacity rules apply.
func (r *secondaryIndexRegistry) addLocal(props LocalSecondaryIndexProps, basePartitionKey Attribute, attrs *attributeRegistry) error {
	if r.hasIndex(props.IndexName) {
		return &StructuralError{Message: fmt.Sprintf("an index named %q already exists on this table", props.IndexName)}
	}
	if r.locals.len() >= maxLocalSecondaryIndexes {
		return &StructuralError{Message: fmt.Sprintf("cannot add local secondary index %q: a table supports at most %d local secondary indexes", props.IndexName, maxLocalSecondaryIndexes)}
	}
	if err := r.validateProjection(props.IndexName, props.Projection); err != nil {
		return err
	}

	keySchema, err := buildKeySchema(attrs, basePartitionKey, &props.SortKey)
	if err != nil {
		return err
	}

	r.recordNonKeyAttributes(props.Projection)
	r.locals.put(props.IndexName, localIndex{props: props, keySchema: keySchema})
	return nil
}

func (r *secondaryIndexRegistry) validateProjection(indexName string, projection Projection) error {
	if projection.projectionType() == types.ProjectionTypeInclude {
		if len(projection.NonKeyAttributes) == 0 {
			return &StructuralError{Message: fmt.Sprintf("index %q: non-key attributes are required for the INCLUDE projection type", indexName)}
		}
	} else if len(projection.NonKeyAttributes) > 0 {
		return &StructuralError{Message: fmt.Sprintf("index %q: non-key attributes are only allowed with the INCLUDE projection type", indexName)}
	}

	// The ceiling counts distinct names, so repeats inside one projection and
	// names already recorded by earlier indexes are counted once.
	added := make(map[string]struct{})
	for _, name := range projection.NonKeyAttributes {
		if _, ok := r.nonKeyAttributeNames[name]; !ok {
			added[name] = struct{}{}
		}
	}
	if len(r.nonKeyAttributeNames)+len(added) > maxNonKeyAttributes {
		return &StructuralError{Message: fmt.Sprintf("index %q: a table supports at most %d distinct non-key attributes across all secondary indexes", indexName, maxNonKeyAttributes)}
	}
	return nil
}

func (r *secondaryIndexRegistry) recordNonKeyAttributes(projection Projection) {
	for _, name := range projection.NonKeyAttributes {
		if r.nonKeyAttributeNames == nil {
			r.nonKeyAttributeNames = make(map[string]struct{})
		}
		r.nonKeyAttributeNames[name] = struct{}{}
	}
}

// validateGlobalIndexCapacity enforces the billing-mode compatibility rules
// for one global secondary index.
func validateGlobalIndexCapacity(props GlobalSecondaryIndexProps, billing Billing) error {
	if billing.Mode() == types.BillingModePayPerRequest {
		if props.ReadCapacity != nil || props.WriteCapacity != nil {
			return &CapacityError{Message: fmt.Sprintf("global secondary index %q cannot declare capacity when billing mode is %s", props.IndexName, types.BillingModePayPerRequest)}
		}
		return nil
	}

	if props.ReadCapacity == nil {
		return &CapacityError{Message: fmt.Sprintf("global secondary index %q must declare read capacity when billing mode is %s", props.IndexName, types.BillingModeProvisioned)}
	}
	if err := props.ReadCapacity.validate(fmt.Sprintf("global secondary index %q read capacity", props.IndexName)); err != nil {
		return err
	}
	if props.WriteCapacity != nil {
		if err := props.WriteCapacity.validate(fmt.Sprintf("global secondary index %q write capacity", props.IndexName)); err != nil {
			return err
		}
	}
	return nil
}
