package cpuinfo

import (
	"github.com/CristiGvl/picoCPUInfo/identity"
	"github.com/CristiGvl/picoCPUInfo/topology"
)

// CPUInfo is an immutable report on the CPU. Slices are owned by the
// returned copy.
type CPUInfo struct {
	Vendor        identity.Vendor         `json:"vendor" yaml:"vendor"`
	Architecture  identity.Architecture   `json:"architecture" yaml:"architecture"`
	ModelName     string                  `json:"model_name" yaml:"model_name"`
	LogicalCores  int                     `json:"logical_cores" yaml:"logical_cores"`
	PhysicalCores int                     `json:"physical_cores" yaml:"physical_cores"`
	Topology      Topology                `json:"topology" yaml:"topology"`
	Cores         []topology.PhysicalCore `json:"cores" yaml:"cores"`
}

// Topology is the classification of the physical cores.
type Topology struct {
	Kind   topology.Kind `json:"kind" yaml:"kind"`
	Groups []Group       `json:"groups" yaml:"groups"`
}

// Group summarises one frequency group.
type Group struct {
	Frequency topology.KHz      `json:"max_frequency_khz" yaml:"max_frequency_khz"`
	Type      topology.CoreType `json:"core_type" yaml:"core_type"`
	Synthetic bool              `json:"synthetic" yaml:"synthetic"`
	Cores     int               `json:"cores" yaml:"cores"`
}

// IsHybrid reports whether the cores split into exactly two tiers.
func (c CPUInfo) IsHybrid() bool {
	return c.Topology.Kind == topology.KindHybrid
}

// Assemble composes a report from already computed parts. It performs
// no I/O and fails only when cores is empty.
func Assemble(id identity.Identity, cores []topology.PhysicalCore, logicalCount int, groups []topology.FrequencyGroup, verdict topology.Verdict) (CPUInfo, error) {
	if len(cores) == 0 {
		return CPUInfo{}, ErrCoreCount
	}

	id = id.Normalize()
	if logicalCount < len(cores) {
		logicalCount = len(cores)
	}

	summary := make([]Group, 0, len(groups))
	for _, g := range groups {
		summary = append(summary, Group{
			Frequency: g.Frequency,
			Type:      g.Type,
			Synthetic: g.Synthetic,
			Cores:     g.Size(),
		})
	}

	return CPUInfo{
		Vendor:        id.Vendor,
		Architecture:  id.Architecture,
		ModelName:     id.ModelName,
		LogicalCores:  logicalCount,
		PhysicalCores: len(cores),
		Topology: Topology{
			Kind:   verdict.Kind,
			Groups: summary,
		},
		Cores: append([]topology.PhysicalCore(nil), cores...),
	}, nil
}
