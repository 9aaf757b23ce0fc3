// Package topology turns per-logical-CPU records into physical cores and
// groups those cores into clock tiers.
//
// The package is platform agnostic: readers in internal/cpu produce
// CoreRecords, Dedupe collapses hyperthread siblings, and a Classifier
// labels the result as Linear, Hybrid or Custom.
package topology

import (
	"fmt"
	"strings"
)

// KHz is a clock frequency in kilohertz.
type KHz uint64

// UnknownFrequency marks a core whose maximum frequency could not be read.
const UnknownFrequency KHz = 0

// Known reports whether the frequency was actually read.
func (f KHz) Known() bool {
	return f != UnknownFrequency
}

// MHz returns the frequency in megahertz.
func (f KHz) MHz() uint64 {
	return uint64(f) / 1000
}

func (f KHz) String() string {
	if !f.Known() {
		return "unknown"
	}
	if f >= 1000000 {
		return fmt.Sprintf("%.2f GHz", float64(f)/1e6)
	}
	return fmt.Sprintf("%d MHz", f.MHz())
}

// CoreType is the kind of core as hinted by the platform.
type CoreType uint8

const (
	CoreTypeUnknown CoreType = iota
	CoreTypePerformance
	CoreTypeEfficiency
)

func (t CoreType) String() string {
	switch t {
	case CoreTypePerformance:
		return "performance"
	case CoreTypeEfficiency:
		return "efficiency"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t CoreType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *CoreType) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "performance", "p":
		*t = CoreTypePerformance
	case "efficiency", "e":
		*t = CoreTypeEfficiency
	case "unknown", "":
		*t = CoreTypeUnknown
	default:
		return fmt.Errorf("unknown core type %q", text)
	}
	return nil
}

// rank orders core types for representative selection and synthetic
// group ordering: performance first, unknown last.
func (t CoreType) rank() int {
	switch t {
	case CoreTypePerformance:
		return 0
	case CoreTypeEfficiency:
		return 1
	default:
		return 2
	}
}

// CoreRecord describes one logical CPU as seen by a platform reader.
type CoreRecord struct {
	LogicalID    uint32   `json:"logical_id" yaml:"logical_id"`
	PhysicalID   uint32   `json:"physical_id" yaml:"physical_id"`
	PackageID    uint32   `json:"package_id" yaml:"package_id"`
	MaxFrequency KHz      `json:"max_frequency_khz" yaml:"max_frequency_khz"`
	TypeHint     CoreType `json:"core_type" yaml:"core_type"`
}

// CoreKey identifies a physical core. Core ids repeat across sockets, so
// the package id is part of the key.
type CoreKey struct {
	PackageID  uint32 `json:"package_id" yaml:"package_id"`
	PhysicalID uint32 `json:"physical_id" yaml:"physical_id"`
}

// Key returns the physical core this logical CPU belongs to.
func (r CoreRecord) Key() CoreKey {
	return CoreKey{PackageID: r.PackageID, PhysicalID: r.PhysicalID}
}

func (k CoreKey) less(other CoreKey) bool {
	if k.PackageID != other.PackageID {
		return k.PackageID < other.PackageID
	}
	return k.PhysicalID < other.PhysicalID
}
