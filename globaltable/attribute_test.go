package globaltable

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func boolPtr(b bool) *bool {
	return &b
}

func attrPtr(name string, attrType types.ScalarAttributeType) *Attribute {
	return &Attribute{Name: name, Type: attrType}
}

func capacityPtr(c Capacity) *Capacity {
	return &c
}

func TestAttributeRedefinition(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(table *Table) error
		conflict bool
	}{
		{
			name: "base sort key reused as GSI partition key with same type",
			mutate: func(table *Table) error {
				return table.AddGlobalSecondaryIndex(GlobalSecondaryIndexProps{
					IndexName:    "gsi1",
					PartitionKey: Attribute{Name: "sk", Type: types.ScalarAttributeTypeS},
				})
			},
			conflict: false,
		},
		{
			name: "base sort key reused as GSI partition key with different type",
			mutate: func(table *Table) error {
				return table.AddGlobalSecondaryIndex(GlobalSecondaryIndexProps{
					IndexName:    "gsi1",
					PartitionKey: Attribute{Name: "sk", Type: types.ScalarAttributeTypeN},
				})
			},
			conflict: true,
		},
		{
			name: "GSI sort key conflicts with base partition key",
			mutate: func(table *Table) error {
				return table.AddGlobalSecondaryIndex(GlobalSecondaryIndexProps{
					IndexName:    "gsi1",
					PartitionKey: Attribute{Name: "other", Type: types.ScalarAttributeTypeS},
					SortKey:      attrPtr("pk", types.ScalarAttributeTypeB),
				})
			},
			conflict: true,
		},
		{
			name: "LSI sort key conflicts with earlier GSI key",
			mutate: func(table *Table) error {
				err := table.AddGlobalSecondaryIndex(GlobalSecondaryIndexProps{
					IndexName:    "gsi1",
					PartitionKey: Attribute{Name: "shared", Type: types.ScalarAttributeTypeN},
				})
				if err != nil {
					return err
				}
				return table.AddLocalSecondaryIndex(LocalSecondaryIndexProps{
					IndexName: "lsi1",
					SortKey:   Attribute{Name: "shared", Type: types.ScalarAttributeTypeS},
				})
			},
			conflict: true,
		},
		{
			name: "LSI sort key reuses earlier GSI key with same type",
			mutate: func(table *Table) error {
				err := table.AddGlobalSecondaryIndex(GlobalSecondaryIndexProps{
					IndexName:    "gsi1",
					PartitionKey: Attribute{Name: "shared", Type: types.ScalarAttributeTypeN},
				})
				if err != nil {
					return err
				}
				return table.AddLocalSecondaryIndex(LocalSecondaryIndexProps{
					IndexName: "lsi1",
					SortKey:   Attribute{Name: "shared", Type: types.ScalarAttributeTypeN},
				})
			},
			conflict: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(TableProps{
				PartitionKey: Attribute{Name: "pk", Type: types.ScalarAttributeTypeS},
				SortKey:      attrPtr("sk", types.ScalarAttributeTypeS),
				Region:       RegionName("us-east-1"),
			})
			if err != nil {
				t.Fatalf("NewTable returned unexpected error: %v", err)
			}

			err = tt.mutate(table)
			if tt.conflict {
				var consistencyErr *ConsistencyError
				if !errors.As(err, &consistencyErr) {
					t.Fatalf("expected ConsistencyError, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestConsistencyErrorNamesBothTypes(t *testing.T) {
	table, err := NewTable(TableProps{
		PartitionKey: Attribute{Name: "pk", Type: types.ScalarAttributeTypeS},
		Region:       RegionName("us-east-1"),
	})
	if err != nil {
		t.Fatalf("NewTable returned unexpected error: %v", err)
	}

	err = table.AddGlobalSecondaryIndex(GlobalSecondaryIndexProps{
		IndexName:    "gsi1",
		PartitionKey: Attribute{Name: "pk", Type: types.ScalarAttributeTypeN},
	})
	var consistencyErr *ConsistencyError
	if !errors.As(err, &consistencyErr) {
		t.Fatalf("expected ConsistencyError, got %v", err)
	}
	if consistencyErr.Existing != types.ScalarAttributeTypeS {
		t.Errorf("expected existing type %s, got %s", types.ScalarAttributeTypeS, consistencyErr.Existing)
	}
	if consistencyErr.Requested != types.ScalarAttributeTypeN {
		t.Errorf("expected requested type %s, got %s", types.ScalarAttributeTypeN, consistencyErr.Requested)
	}
	if consistencyErr.AttributeName != "pk" {
		t.Errorf("expected attribute name pk, got %s", consistencyErr.AttributeName)
	}
}

func TestAttributeDefinitionsPreserveFirstDefinitionOrder(t *testing.T) {
	table, err := NewTable(TableProps{
		PartitionKey: Attribute{Name: "pk", Type: types.ScalarAttributeTypeS},
		SortKey:      attrPtr("sk", types.ScalarAttributeTypeN),
		Region:       RegionName("us-east-1"),
	})
	if err != nil {
		t.Fatalf("NewTable returned unexpected error: %v", err)
	}

	err = table.AddGlobalSecondaryIndex(GlobalSecondaryIndexProps{
		IndexName:    "gsi1",
		PartitionKey: Attribute{Name: "g1pk", Type: types.ScalarAttributeTypeB},
		SortKey:      attrPtr("pk", types.ScalarAttributeTypeS),
	})
	if err != nil {
		t.Fatalf("AddGlobalSecondaryIndex returned unexpected error: %v", err)
	}

	rendered, err := table.Render()
	if err != nil {
		t.Fatalf("Render returned unexpected error: %v", err)
	}

	want := []string{"pk", "sk", "g1pk"}
	if len(rendered.AttributeDefinitions) != len(want) {
		t.Fatalf("expected %d attribute definitions, got %d", len(want), len(rendered.AttributeDefinitions))
	}
	for i, name := range want {
		if rendered.AttributeDefinitions[i].AttributeName != name {
			t.Errorf("attribute definition %d: expected %s, got %s", i, name, rendered.AttributeDefinitions[i].AttributeName)
		}
	}
}
