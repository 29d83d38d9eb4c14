package globaltable

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dineshkatamneni/aws-cdk/cloudformation"
)

// defaultTargetUtilizationPercent is the autoscaling target applied when the
// caller does not supply one. It is the only default this engine supports.
const defaultTargetUtilizationPercent = 70.0

type capacityKind uint8

const (
	capacityFixed capacityKind = iota
	capacityAutoscaled
)

// Capacity is either a fixed unit count or an autoscaled min/max range.
type Capacity struct {
	kind              capacityKind
	units             int64
	minCapacity       int64
	maxCapacity       int64
	targetUtilization float64
}

// FixedCapacity declares a static throughput of the given units.
func FixedCapacity(units int64) Capacity {
	return Capacity{kind: capacityFixed, units: units}
}

// AutoscaledCapacityProps configures an autoscaled capacity range.
type AutoscaledCapacityProps struct {
	MinCapacity int64
	MaxCapacity int64
	// TargetUtilizationPercent defaults to 70 when zero.
	TargetUtilizationPercent float64
}

// AutoscaledCapacity declares throughput that scales between the given bounds.
func AutoscaledCapacity(props AutoscaledCapacityProps) Capacity {
	return Capacity{
		kind:              capacityAutoscaled,
		minCapacity:       props.MinCapacity,
		maxCapacity:       props.MaxCapacity,
		targetUtilization: props.TargetUtilizationPercent,
	}
}

func (c Capacity) validate(context string) error {
	switch c.kind {
	case capacityFixed:
		if c.units < 1 {
			return &CapacityError{Message: context + ": capacity units must be greater than 0"}
		}
	case capacityAutoscaled:
		if c.minCapacity < 1 {
			return &CapacityError{Message: context + ": minimum capacity must be greater than 0"}
		}
		if c.maxCapacity < c.minCapacity {
			return &CapacityError{Message: context + ": maximum capacity must not be less than minimum capacity"}
		}
	}
	return nil
}

func (c Capacity) autoScalingSettings() *cloudformation.CapacityAutoScalingSettings {
	target := c.targetUtilization
	if target == 0 {
		target = defaultTargetUtilizationPercent
	}
	return &cloudformation.CapacityAutoScalingSettings{
		MinCapacity: c.minCapacity,
		MaxCapacity: c.maxCapacity,
		TargetTrackingScalingPolicyConfiguration: cloudformation.TargetTrackingScalingPolicyConfiguration{
			TargetValue: target,
		},
	}
}

// readSettings normalizes the capacity into its render-ready read shape.
func (c Capacity) readSettings() *cloudformation.ReadProvisionedThroughputSettings {
	if c.kind == capacityAutoscaled {
		return &cloudformation.ReadProvisionedThroughputSettings{
			ReadCapacityAutoScalingSettings: c.autoScalingSettings(),
		}
	}
	return &cloudformation.ReadProvisionedThroughputSettings{ReadCapacityUnits: c.units}
}

// writeSettings normalizes the capacity into its render-ready write shape.
func (c Capacity) writeSettings() *cloudformation.WriteProvisionedThroughputSettings {
	if c.kind == capacityAutoscaled {
		return &cloudformation.WriteProvisionedThroughputSettings{
			WriteCapacityAutoScalingSettings: c.autoScalingSettings(),
		}
	}
	return &cloudformation.WriteProvisionedThroughputSettings{WriteCapacityUnits: c.units}
}

// Billing selects the billing mode and, under provisioned billing, the base
// table throughput.
//
// The zero value is on-demand billing.
type Billing struct {
	provisioned   bool
	readCapacity  Capacity
	writeCapacity Capacity
}

// BillingOnDemand selects pay-per-request billing. No capacity may be
// declared anywhere on the resource.
func BillingOnDemand() Billing {
	return Billing{}
}

// BillingProvisioned selects provisioned billing with the given base table
// throughput. Every global secondary index must then declare its own read
// capacity.
func BillingProvisioned(readCapacity, writeCapacity Capacity) Billing {
	return Billing{provisioned: true, readCapacity: readCapacity, writeCapacity: writeCapacity}
}

// Mode returns the billing mode as the service-level enum.
func (b Billing) Mode() types.BillingMode {
	if b.provisioned {
		return types.BillingModeProvisioned
	}
	return types.BillingModePayPerRequest
}

func (b Billing) validate() error {
	if !b.provisioned {
		return nil
	}
	if err := b.readCapacity.validate("table read capacity"); err != nil {
		return err
	}
	return b.writeCapacity.validate("table write capacity")
}
