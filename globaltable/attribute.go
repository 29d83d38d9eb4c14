package globaltable

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dineshkatamneni/aws-cdk/cloudformation"
)

// Attribute is a named key attribute. Only the scalar key types are legal:
// types.ScalarAttributeTypeS, types.ScalarAttributeTypeN and
// types.ScalarAttributeTypeB.
type Attribute struct {
	Name string
	Type types.ScalarAttributeType
}

// attributeRegistry tracks the attribute name to type binding across the whole
// resource. An attribute may be mentioned by any number of key schemas, but
// every mention must agree on the type.
type attributeRegistry struct {
	attributes orderedMap[types.ScalarAttributeType]
}

// check reports the ConsistencyError a define call would raise, without
// recording anything. Callers that register several attributes at once check
// them all first, so a rejected operation leaves the registry untouched.
func (r *attributeRegistry) check(attribute Attribute) error {
	if existing, ok := r.attributes.get(attribute.Name); ok && existing != attribute.Type {
		return &ConsistencyError{
			AttributeName: attribute.Name,
			Existing:      existing,
			Requested:     attribute.Type,
		}
	}
	return nil
}

// define records the attribute, or returns a ConsistencyError if it was
// previously recorded with a different type. Redefinition with the same type
// is a no-op.
func (r *attributeRegistry) define(attribute Attribute) error {
	if err := r.check(attribute); err != nil {
		return err
	}
	r.attributes.put(attribute.Name, attribute.Type)
	return nil
}

// definitions returns the accumulated list in first-definition order.
func (r *attributeRegistry) definitions() []cloudformation.AttributeDefinition {
	defs := make([]cloudformation.AttributeDefinition, 0, r.attributes.len())
	r.attributes.each(func(name string, attrType types.ScalarAttributeType) {
		defs = append(defs, cloudformation.AttributeDefinition{
			AttributeName: name,
			AttributeType: string(attrType),
		})
	})
	return defs
}
