package globaltable

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dineshkatamneni/aws-cdk/cloudformation"
)

// buildKeySchema registers the key attributes and returns the ordered key
// schema, partition entry first. The only validation is type consistency via
// the attribute registry. Both attributes are checked before either is
// recorded, so a conflict leaves the registry untouched.
func buildKeySchema(attrs *attributeRegistry, partitionKey Attribute, sortKey *Attribute) ([]cloudformation.KeySchemaElement, error) {
	if err := attrs.check(partitionKey); err != nil {
		return nil, err
	}
	if sortKey != nil {
		if err := attrs.check(*sortKey); err != nil {
			return nil, err
		}
		if sortKey.Name == partitionKey.Name && sortKey.Type != partitionKey.Type {
			return nil, &ConsistencyError{
				AttributeName: sortKey.Name,
				Existing:      partitionKey.Type,
				Requested:     sortKey.Type,
			}
		}
	}

	if err := attrs.define(partitionKey); err != nil {
		return nil, err
	}

	keySchema := []cloudformation.KeySchemaElement{
		{
			AttributeName: partitionKey.Name,
			KeyType:       string(types.KeyTypeHash),
		},
	}

	if sortKey != nil {
		if err := attrs.define(*sortKey); err != nil {
			return nil, err
		}
		keySchema = append(keySchema, cloudformation.KeySchemaElement{
			AttributeName: sortKey.Name,
			KeyType:       string(types.KeyTypeRange),
		})
	}

	return keySchema, nil
}
