package topology

import "sort"

// PhysicalCore is one execution unit, possibly hosting several logical CPUs.
type PhysicalCore struct {
	PackageID  uint32   `json:"package_id" yaml:"package_id"`
	PhysicalID uint32   `json:"physical_id" yaml:"physical_id"`
	Frequency  KHz      `json:"max_frequency_khz" yaml:"max_frequency_khz"`
	Type       CoreType `json:"core_type" yaml:"core_type"`
	Threads    int      `json:"threads" yaml:"threads"`
}

// Key returns the identity of the core.
func (c PhysicalCore) Key() CoreKey {
	return CoreKey{PackageID: c.PackageID, PhysicalID: c.PhysicalID}
}

// Dedupe collapses logical CPUs that share a physical core into a single
// PhysicalCore. The representative frequency is the highest known
// frequency among the siblings and the representative type prefers
// performance over efficiency over unknown. The result is ordered by
// package and physical id; an empty input yields an empty result.
func Dedupe(records []CoreRecord) []PhysicalCore {
	if len(records) == 0 {
		return nil
	}

	index := make(map[CoreKey]int, len(records))
	cores := make([]PhysicalCore, 0, len(records))

	for _, record := range records {
		key := record.Key()
		i, ok := index[key]
		if !ok {
			index[key] = len(cores)
			cores = append(cores, PhysicalCore{
				PackageID:  record.PackageID,
				PhysicalID: record.PhysicalID,
				Frequency:  record.MaxFrequency,
				Type:       record.TypeHint,
				Threads:    1,
			})
			continue
		}

		core := &cores[i]
		core.Threads++
		if record.MaxFrequency > core.Frequency {
			core.Frequency = record.MaxFrequency
		}
		if record.TypeHint.rank() < core.Type.rank() {
			core.Type = record.TypeHint
		}
	}

	sort.Slice(cores, func(i, j int) bool {
		return cores[i].Key().less(cores[j].Key())
	})
	return cores
}
