package globaltable

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ConsistencyError reports an attribute redefined with a conflicting type.
type ConsistencyError struct {
	AttributeName string
	Existing      types.ScalarAttributeType
	Requested     types.ScalarAttributeType
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("attribute %q is already defined with type %s, cannot redefine it with type %s",
		e.AttributeName, e.Existing, e.Requested)
}

// StructuralError reports a shape violation: duplicate names or regions,
// count ceilings, or an override naming an unknown index.
type StructuralError struct {
	Message string
}

func (e *StructuralError) Error() string {
	return e.Message
}

// CapacityError reports capacity settings that are incompatible with the
// table's billing mode, or required capacity left unspecified.
type CapacityError struct {
	Message string
}

func (e *CapacityError) Error() string {
	return e.Message
}

// ReferenceError reports an unresolved region token supplied where a
// concrete, comparable value is required.
type ReferenceError struct {
	Message string
}

func (e *ReferenceError) Error() string {
	return e.Message
}
