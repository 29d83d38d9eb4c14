package globaltable

import (
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestAddReplicaRegionRules(t *testing.T) {
	tests := []struct {
		name           string
		tableRegion    Region
		replicaRegion  Region
		wantReference  bool
		wantStructural bool
	}{
		{
			name:          "distinct concrete regions",
			tableRegion:   RegionName("us-east-1"),
			replicaRegion: RegionName("eu-west-1"),
		},
		{
			name:          "unresolved deployment region",
			tableRegion:   UnresolvedRegion(),
			replicaRegion: RegionName("eu-west-1"),
			wantReference: true,
		},
		{
			name:          "zero-value deployment region is a token",
			tableRegion:   Region{},
			replicaRegion: RegionName("eu-west-1"),
			wantReference: true,
		},
		{
			name:          "unresolved replica region",
			tableRegion:   RegionName("us-east-1"),
			replicaRegion: UnresolvedRegion(),
			wantReference: true,
		},
		{
			name:           "replica in the deployment region",
			tableRegion:    RegionName("us-east-1"),
			replicaRegion:  RegionName("us-east-1"),
			wantStructural: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(TableProps{
				PartitionKey: Attribute{Name: "pk", Type: types.ScalarAttributeTypeS},
				Region:       tt.tableRegion,
			})
			if err != nil {
				t.Fatalf("NewTable returned unexpected error: %v", err)
			}

			err = table.AddReplica(ReplicaProps{Region: tt.replicaRegion})
			switch {
			case tt.wantReference:
				var referenceErr *ReferenceError
				if !errors.As(err, &referenceErr) {
					t.Fatalf("expected ReferenceError, got %v", err)
				}
			case tt.wantStructural:
				var structuralErr *StructuralError
				if !errors.As(err, &structuralErr) {
					t.Fatalf("expected StructuralError, got %v", err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestAddReplicaDuplicateRegion(t *testing.T) {
	table := newOnDemandTable(t)
	if err := table.AddReplica(ReplicaProps{Region: RegionName("eu-west-1")}); err != nil {
		t.Fatalf("AddReplica returned unexpected error: %v", err)
	}
	err := table.AddReplica(ReplicaProps{Region: RegionName("eu-west-1")})
	var structuralErr *StructuralError
	if !errors.As(err, &structuralErr) {
		t.Fatalf("expected StructuralError, got %v", err)
	}
}

func TestAddReplicaOnDemandReadCapacity(t *testing.T) {
	table := newOnDemandTable(t)
	err := table.AddReplica(ReplicaProps{
		Region:       RegionName("eu-west-1"),
		ReadCapacity: capacityPtr(FixedCapacity(10)),
	})
	var capacityErr *CapacityError
	if !errors.As(err, &capacityErr) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
}

func TestDistinctTokensAreNotEqual(t *testing.T) {
	a := UnresolvedRegion()
	b := UnresolvedRegion()
	if a.String() == b.String() {
		t.Fatal("two unresolved regions must have distinct identities")
	}
	if !a.Unresolved() || !b.Unresolved() {
		t.Fatal("expected both regions to be unresolved")
	}
	if RegionName("us-east-1").Unresolved() {
		t.Fatal("concrete region must not report unresolved")
	}
}

func TestReplicaSettingsInheritance(t *testing.T) {
	table, err := NewTable(TableProps{
		PartitionKey:        Attribute{Name: "pk", Type: types.ScalarAttributeTypeS},
		Billing:             BillingProvisioned(FixedCapacity(10), FixedCapacity(5)),
		Region:              RegionName("us-east-1"),
		ContributorInsights: boolPtr(true),
		DeletionProtection:  boolPtr(true),
		PointInTimeRecovery: boolPtr(false),
		TableClass:          types.TableClassStandardInfrequentAccess,
		KinesisStreamArn:    "arn:aws:kinesis:us-east-1:111122223333:stream/base",
	})
	if err != nil {
		t.Fatalf("NewTable returned unexpected error: %v", err)
	}

	err = table.AddReplica(ReplicaProps{
		Region:              RegionName("eu-west-1"),
		ContributorInsights: boolPtr(false),
		PointInTimeRecovery: boolPtr(true),
		TableClass:          types.TableClassStandard,
		ReadCapacity:        capacityPtr(FixedCapacity(20)),
		KinesisStreamArn:    "arn:aws:kinesis:eu-west-1:111122223333:stream/replica",
	})
	if err != nil {
		t.Fatalf("AddReplica returned unexpected error: %v", err)
	}
	if err := table.AddReplica(ReplicaProps{Region: RegionName("ap-south-1")}); err != nil {
		t.Fatalf("AddReplica returned unexpected error: %v", err)
	}

	rendered, err := table.Render()
	if err != nil {
		t.Fatalf("Render returned unexpected error: %v", err)
	}
	if len(rendered.Replicas) != 3 {
		t.Fatalf("expected 3 replicas, got %d", len(rendered.Replicas))
	}

	overridden := rendered.Replicas[0]
	if overridden.Region != "eu-west-1" {
		t.Fatalf("expected first replica eu-west-1, got %s", overridden.Region)
	}
	if overridden.ContributorInsightsSpecification == nil || overridden.ContributorInsightsSpecification.Enabled {
		t.Error("expected replica override to disable contributor insights")
	}
	if overridden.DeletionProtectionEnabled == nil || !*overridden.DeletionProtectionEnabled {
		t.Error("expected deletion protection inherited from the table default")
	}
	if overridden.PointInTimeRecoverySpecification == nil || !overridden.PointInTimeRecoverySpecification.PointInTimeRecoveryEnabled {
		t.Error("expected replica override to enable point-in-time recovery")
	}
	if overridden.TableClass != string(types.TableClassStandard) {
		t.Errorf("expected replica table class override, got %s", overridden.TableClass)
	}
	if overridden.KinesisStreamSpecification == nil || !strings.Contains(overridden.KinesisStreamSpecification.StreamArn, "stream/replica") {
		t.Error("expected replica stream target override")
	}
	if overridden.ReadProvisionedThroughputSettings == nil || overridden.ReadProvisionedThroughputSettings.ReadCapacityUnits != 20 {
		t.Error("expected replica read capacity override of 20 units")
	}

	inherited := rendered.Replicas[1]
	if inherited.Region != "ap-south-1" {
		t.Fatalf("expected second replica ap-south-1, got %s", inherited.Region)
	}
	if inherited.ContributorInsightsSpecification == nil || !inherited.ContributorInsightsSpecification.Enabled {
		t.Error("expected contributor insights inherited from the table default")
	}
	if inherited.PointInTimeRecoverySpecification == nil || inherited.PointInTimeRecoverySpecification.PointInTimeRecoveryEnabled {
		t.Error("expected point-in-time recovery inherited as disabled")
	}
	if inherited.TableClass != string(types.TableClassStandardInfrequentAccess) {
		t.Errorf("expected table class inherited from the table default, got %s", inherited.TableClass)
	}
	if inherited.KinesisStreamSpecification == nil || !strings.Contains(inherited.KinesisStreamSpecification.StreamArn, "stream/base") {
		t.Error("expected stream target inherited from the table default")
	}
	if inherited.ReadProvisionedThroughputSettings == nil || inherited.ReadProvisionedThroughputSettings.ReadCapacityUnits != 10 {
		t.Error("expected replica read capacity to fall back to the table read capacity")
	}

	deployment := rendered.Replicas[2]
	if deployment.Region != "us-east-1" {
		t.Fatalf("expected deployment-region replica last, got %s", deployment.Region)
	}
}
