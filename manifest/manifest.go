// Package manifest loads a YAML description of a replicated table and turns
// it into globaltable inputs. It is the configuration front end for the CLI;
// the engine itself never reads files.
package manifest

import (
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"gopkg.in/yaml.v3"

	"github.com/dineshkatamneni/aws-cdk/cloudformation"
	"github.com/dineshkatamneni/aws-cdk/globaltable"
)

// Manifest is the root of a table manifest file.
type Manifest struct {
	TableName    string `yaml:"tableName"`
	Region       string `yaml:"region"`
	PartitionKey Key    `yaml:"partitionKey"`
	SortKey      *Key   `yaml:"sortKey,omitempty"`

	Billing *Billing `yaml:"billing,omitempty"`

	ContributorInsights *bool  `yaml:"contributorInsights,omitempty"`
	DeletionProtection  *bool  `yaml:"deletionProtection,omitempty"`
	PointInTimeRecovery *bool  `yaml:"pointInTimeRecovery,omitempty"`
	TableClass          string `yaml:"tableClass,omitempty"`
	KinesisStreamArn    string `yaml:"kinesisStreamArn,omitempty"`

	GlobalSecondaryIndexes []GlobalSecondaryIndex `yaml:"globalSecondaryIndexes,omitempty"`
	LocalSecondaryIndexes  []LocalSecondaryIndex  `yaml:"localSecondaryIndexes,omitempty"`
	Replicas               []Replica              `yaml:"replicas,omitempty"`

	SSE        *SSE        `yaml:"sse,omitempty"`
	TimeToLive *TimeToLive `yaml:"timeToLive,omitempty"`
}

// Key names a key attribute. Type is "S", "N" or "B".
type Key struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Billing selects the billing mode. Mode is "PAY_PER_REQUEST" or
// "PROVISIONED"; the capacities are required for the latter.
type Billing struct {
	Mode          string    `yaml:"mode"`
	ReadCapacity  *Capacity `yaml:"readCapacity,omitempty"`
	WriteCapacity *Capacity `yaml:"writeCapacity,omitempty"`
}

// Capacity is either fixed or autoscaled, never both.
type Capacity struct {
	Fixed      *int64      `yaml:"fixed,omitempty"`
	Autoscaled *Autoscaled `yaml:"autoscaled,omitempty"`
}

type Autoscaled struct {
	MinCapacity              int64   `yaml:"minCapacity"`
	MaxCapacity              int64   `yaml:"maxCapacity"`
	TargetUtilizationPercent float64 `yaml:"targetUtilizationPercent,omitempty"`
}

type Projection struct {
	Type             string   `yaml:"type,omitempty"`
	NonKeyAttributes []string `yaml:"nonKeyAttributes,omitempty"`
}

type GlobalSecondaryIndex struct {
	IndexName           string      `yaml:"indexName"`
	PartitionKey        Key         `yaml:"partitionKey"`
	SortKey             *Key        `yaml:"sortKey,omitempty"`
	Projection          *Projection `yaml:"projection,omitempty"`
	ReadCapacity        *Capacity   `yaml:"readCapacity,omitempty"`
	WriteCapacity       *Capacity   `yaml:"writeCapacity,omitempty"`
	ContributorInsights *bool       `yaml:"contributorInsights,omitempty"`
}

type LocalSecondaryIndex struct {
	IndexName  string      `yaml:"indexName"`
	SortKey    Key         `yaml:"sortKey"`
	Projection *Projection `yaml:"projection,omitempty"`
}

type Replica struct {
	Region              string    `yaml:"region"`
	ReadCapacity        *Capacity `yaml:"readCapacity,omitempty"`
	ContributorInsights *bool     `yaml:"contributorInsights,omitempty"`
	DeletionProtection  *bool     `yaml:"deletionProtection,omitempty"`
	PointInTimeRecovery *bool     `yaml:"pointInTimeRecovery,omitempty"`
	TableClass          string    `yaml:"tableClass,omitempty"`
	KinesisStreamArn    string    `yaml:"kinesisStreamArn,omitempty"`

	GlobalSecondaryIndexOptions map[string]ReplicaGlobalSecondaryIndexOptions `yaml:"globalSecondaryIndexOptions,omitempty"`
}

type ReplicaGlobalSecondaryIndexOptions struct {
	ContributorInsights *bool     `yaml:"contributorInsights,omitempty"`
	ReadCapacity        *Capacity `yaml:"readCapacity,omitempty"`
}

type SSE struct {
	Enabled bool   `yaml:"enabled"`
	Type    string `yaml:"type,omitempty"`
}

type TimeToLive struct {
	AttributeName string `yaml:"attributeName,omitempty"`
	Enabled       bool   `yaml:"enabled"`
}

// Load decodes a manifest. Unknown fields are rejected.
func Load(r io.Reader) (*Manifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var m Manifest
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// LoadFile decodes a manifest from a file.
func LoadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Table builds the declared table. Engine validation errors surface
// unchanged, so callers can distinguish the engine's error kinds.
func (m *Manifest) Table() (*globaltable.Table, error) {
	partitionKey, err := keyAttribute(m.PartitionKey)
	if err != nil {
		return nil, fmt.Errorf("partitionKey: %w", err)
	}

	props := globaltable.TableProps{
		TableName:           m.TableName,
		PartitionKey:        partitionKey,
		Region:              region(m.Region),
		ContributorInsights: m.ContributorInsights,
		DeletionProtection:  m.DeletionProtection,
		PointInTimeRecovery: m.PointInTimeRecovery,
		TableClass:          types.TableClass(m.TableClass),
		KinesisStreamArn:    m.KinesisStreamArn,
	}

	if m.SortKey != nil {
		sortKey, err := keyAttribute(*m.SortKey)
		if err != nil {
			return nil, fmt.Errorf("sortKey: %w", err)
		}
		props.SortKey = &sortKey
	}

	if m.Billing != nil {
		billing, err := m.Billing.build()
		if err != nil {
			return nil, err
		}
		props.Billing = billing
	}

	if m.SSE != nil {
		props.SSESpecification = &cloudformation.SSESpecification{SSEEnabled: m.SSE.Enabled, SSEType: m.SSE.Type}
	}
	if m.TimeToLive != nil {
		props.TimeToLive = &cloudformation.TimeToLiveSpecification{AttributeName: m.TimeToLive.AttributeName, Enabled: m.TimeToLive.Enabled}
	}

	table, err := globaltable.NewTable(props)
	if err != nil {
		return nil, err
	}

	for _, index := range m.GlobalSecondaryIndexes {
		indexProps, err := index.build()
		if err != nil {
			return nil, fmt.Errorf("globalSecondaryIndexes[%s]: %w", index.IndexName, err)
		}
		if err := table.AddGlobalSecondaryIndex(indexProps); err != nil {
			return nil, err
		}
	}
	for _, index := range m.LocalSecondaryIndexes {
		indexProps, err := index.build()
		if err != nil {
			return nil, fmt.Errorf("localSecondaryIndexes[%s]: %w", index.IndexName, err)
		}
		if err := table.AddLocalSecondaryIndex(indexProps); err != nil {
			return nil, err
		}
	}
	for _, replica := range m.Replicas {
		replicaProps, err := replica.build()
		if err != nil {
			return nil, fmt.Errorf("replicas[%s]: %w", replica.Region, err)
		}
		if err := table.AddReplica(replicaProps); err != nil {
			return nil, err
		}
	}

	return table, nil
}

func region(name string) globaltable.Region {
	if name == "" {
		return globaltable.UnresolvedRegion()
	}
	return globaltable.RegionName(name)
}

func keyAttribute(key Key) (globaltable.Attribute, error) {
	switch types.ScalarAttributeType(key.Type) {
	case types.ScalarAttributeTypeS, types.ScalarAttributeTypeN, types.ScalarAttributeTypeB:
		return globaltable.Attribute{Name: key.Name, Type: types.ScalarAttributeType(key.Type)}, nil
	default:
		return globaltable.Attribute{}, fmt.Errorf("attribute %q has unknown type %q, want S, N or B", key.Name, key.Type)
	}
}

func (b *Billing) build() (globaltable.Billing, error) {
	switch types.BillingMode(b.Mode) {
	case types.BillingModePayPerRequest:
		if b.ReadCapacity != nil || b.WriteCapacity != nil {
			return globaltable.Billing{}, fmt.Errorf("billing: capacity is not allowed with mode %s", b.Mode)
		}
		return globaltable.BillingOnDemand(), nil
	case types.BillingModeProvisioned:
		if b.ReadCapacity == nil || b.WriteCapacity == nil {
			return globaltable.Billing{}, fmt.Errorf("billing: readCapacity and writeCapacity are required with mode %s", b.Mode)
		}
		read, err := b.ReadCapacity.build()
		if err != nil {
			return globaltable.Billing{}, fmt.Errorf("billing.readCapacity: %w", err)
		}
		write, err := b.WriteCapacity.build()
		if err != nil {
			return globaltable.Billing{}, fmt.Errorf("billing.writeCapacity: %w", err)
		}
		return globaltable.BillingProvisioned(read, write), nil
	default:
		return globaltable.Billing{}, fmt.Errorf("billing: unknown mode %q", b.Mode)
	}
}

func (c *Capacity) build() (globaltable.Capacity, error) {
	switch {
	case c.Fixed != nil && c.Autoscaled != nil:
		return globaltable.Capacity{}, fmt.Errorf("capacity must be fixed or autoscaled, not both")
	case c.Fixed != nil:
		return globaltable.FixedCapacity(*c.Fixed), nil
	case c.Autoscaled != nil:
		return globaltable.AutoscaledCapacity(globaltable.AutoscaledCapacityProps{
			MinCapacity:              c.Autoscaled.MinCapacity,
			MaxCapacity:              c.Autoscaled.MaxCapacity,
			TargetUtilizationPercent: c.Autoscaled.TargetUtilizationPercent,
		}), nil
	default:
		return globaltable.Capacity{}, fmt.Errorf("capacity must set fixed or autoscaled")
	}
}

func capacityPtr(c *Capacity) (*globaltable.Capacity, error) {
	if c == nil {
		return nil, nil
	}
	built, err := c.build()
	if err != nil {
		return nil, err
	}
	return &built, nil
}

func projection(p *Projection) globaltable.Projection {
	if p == nil {
		return globaltable.Projection{}
	}
	return globaltable.Projection{
		Type:             types.ProjectionType(p.Type),
		NonKeyAttributes: p.NonKeyAttributes,
	}
}

func (g *GlobalSecondaryIndex) build() (globaltable.GlobalSecondaryIndexProps, error) {
	partitionKey, err := keyAttribute(g.PartitionKey)
	if err != nil {
		return globaltable.GlobalSecondaryIndexProps{}, err
	}
	props := globaltable.GlobalSecondaryIndexProps{
		IndexName:           g.IndexName,
		PartitionKey:        partitionKey,
		Projection:          projection(g.Projection),
		ContributorInsights: g.ContributorInsights,
	}
	if g.SortKey != nil {
		sortKey, err := keyAttribute(*g.SortKey)
		if err != nil {
			return globaltable.GlobalSecondaryIndexProps{}, err
		}
		props.SortKey = &sortKey
	}
	if props.ReadCapacity, err = capacityPtr(g.ReadCapacity); err != nil {
		return globaltable.GlobalSecondaryIndexProps{}, err
	}
	if props.WriteCapacity, err = capacityPtr(g.WriteCapacity); err != nil {
		return globaltable.GlobalSecondaryIndexProps{}, err
	}
	return props, nil
}

func (l *LocalSecondaryIndex) build() (globaltable.LocalSecondaryIndexProps, error) {
	sortKey, err := keyAttribute(l.SortKey)
	if err != nil {
		return globaltable.LocalSecondaryIndexProps{}, err
	}
	return globaltable.LocalSecondaryIndexProps{
		IndexName:  l.IndexName,
		SortKey:    sortKey,
		Projection: projection(l.Projection),
	}, nil
}

func (r *Replica) build() (globaltable.ReplicaProps, error) {
	props := globaltable.ReplicaProps{
		Region:              region(r.Region),
		ContributorInsights: r.ContributorInsights,
		DeletionProtection:  r.DeletionProtection,
		PointInTimeRecovery: r.PointInTimeRecovery,
		TableClass:          types.TableClass(r.TableClass),
		KinesisStreamArn:    r.KinesisStreamArn,
	}
	var err error
	if props.ReadCapacity, err = capacityPtr(r.ReadCapacity); err != nil {
		return globaltable.ReplicaProps{}, err
	}
	if len(r.GlobalSecondaryIndexOptions) > 0 {
		props.GlobalSecondaryIndexOptions = make(map[string]globaltable.ReplicaGlobalSecondaryIndexOptions, len(r.GlobalSecondaryIndexOptions))
		for name, options := range r.GlobalSecondaryIndexOptions {
			readCapacity, err := capacityPtr(options.ReadCapacity)
			if err != nil {
				return globaltable.ReplicaProps{}, fmt.Errorf("globalSecondaryIndexOptions[%s]: %w", name, err)
			}
			props.GlobalSecondaryIndexOptions[name] = globaltable.ReplicaGlobalSecondaryIndexOptions{
				ContributorInsights: options.ContributorInsights,
				ReadCapacity:        readCapacity,
			}
		}
	}
	return props, nil
}
