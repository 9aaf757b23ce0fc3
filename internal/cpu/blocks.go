package cpu

import "github.com/CristiGvl/picoCPUInfo/topology"

// coreBlock describes a run of identical cores as reported by platforms
// that only expose counts (sysctl, WMI) rather than per-CPU attributes.
type coreBlock struct {
	Package   uint32
	Physical  int
	Logical   int
	Frequency topology.KHz
	Type      topology.CoreType
}

// synthesizeRecords expands count-only blocks into per-logical-CPU
// records. Logical CPUs are spread across the block's physical cores
// round robin, which matches how kernels number SMT siblings. Physical
// ids are unique within a package.
func synthesizeRecords(blocks []coreBlock) []topology.CoreRecord {
	var records []topology.CoreRecord
	var logicalID uint32
	nextPhysical := make(map[uint32]uint32)

	for _, block := range blocks {
		physical := block.Physical
		logical := block.Logical
		if physical <= 0 {
			physical = logical
		}
		if logical < physical {
			logical = physical
		}
		base := nextPhysical[block.Package]
		for i := 0; i < logical; i++ {
			records = append(records, topology.CoreRecord{
				LogicalID:    logicalID,
				PhysicalID:   base + uint32(i%physical),
				PackageID:    block.Package,
				MaxFrequency: block.Frequency,
				TypeHint:     block.Type,
			})
			logicalID++
		}
		nextPhysical[block.Package] = base + uint32(physical)
	}
	return records
}

// mhzToKHz converts a megahertz reading, treating zero as unknown.
func mhzToKHz(mhz float64) topology.KHz {
	if mhz <= 0 {
		return topology.UnknownFrequency
	}
	return topology.KHz(mhz*1000 + 0.5)
}
