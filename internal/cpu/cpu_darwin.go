//go:build darwin

package cpu

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/CristiGvl/picoCPUInfo/identity"
	"github.com/CristiGvl/picoCPUInfo/internal/cpuid"
	"github.com/CristiGvl/picoCPUInfo/topology"
)

// DarwinReader reads CPU topology from sysctl
type DarwinReader struct {
	cpu *cpuid.Info
}

// newPlatformReader creates a new macOS CPU reader
func newPlatformReader() Reader {
	return &DarwinReader{cpu: cpuid.Detect()}
}

// ReadAllCores returns one record per logical CPU. Apple silicon reports
// each performance level separately; level 0 is the fastest. Intel Macs
// report a single level with a maximum frequency in Hz.
func (r *DarwinReader) ReadAllCores(ctx context.Context) ([]topology.CoreRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	levels, err := unix.SysctlUint32("hw.nperflevels")
	if err != nil || levels == 0 {
		return r.readFlatCores()
	}

	var blocks []coreBlock
	for level := uint32(0); level < levels; level++ {
		physical, err := unix.SysctlUint32(fmt.Sprintf("hw.perflevel%d.physicalcpu", level))
		if err != nil {
			return nil, fmt.Errorf("%w: perflevel %d: %v", ErrNoSource, level, err)
		}
		logical, err := unix.SysctlUint32(fmt.Sprintf("hw.perflevel%d.logicalcpu", level))
		if err != nil {
			logical = physical
		}
		blocks = append(blocks, coreBlock{
			Physical: int(physical),
			Logical:  int(logical),
			Type:     perfLevelType(level, levels),
		})
	}
	return synthesizeRecords(blocks), nil
}

func (r *DarwinReader) readFlatCores() ([]topology.CoreRecord, error) {
	logical, err := unix.SysctlUint32("hw.logicalcpu")
	if err != nil {
		return nil, fmt.Errorf("%w: hw.logicalcpu: %v", ErrNoSource, err)
	}
	physical, err := unix.SysctlUint32("hw.physicalcpu")
	if err != nil {
		physical = logical
	}

	frequency := topology.UnknownFrequency
	if hz, err := unix.SysctlUint64("hw.cpufrequency_max"); err == nil && hz > 0 {
		frequency = topology.KHz(hz / 1000)
	}

	return synthesizeRecords([]coreBlock{{
		Physical:  int(physical),
		Logical:   int(logical),
		Frequency: frequency,
	}}), nil
}

// perfLevelType maps a perflevel index to a core type. A single level
// carries no hint.
func perfLevelType(level, levels uint32) topology.CoreType {
	switch {
	case levels < 2:
		return topology.CoreTypeUnknown
	case level == 0:
		return topology.CoreTypePerformance
	default:
		return topology.CoreTypeEfficiency
	}
}

// ResolveIdentity resolves vendor and model from CPUID on Intel Macs and
// from sysctl on Apple silicon.
func (r *DarwinReader) ResolveIdentity(ctx context.Context) (identity.Identity, error) {
	if err := ctx.Err(); err != nil {
		return identity.Identity{}, err
	}

	id := identity.Identity{Architecture: identity.Current()}
	id = identityFromCPUID(r.cpu, id)

	if !id.Vendor.Known() {
		if vendor, err := unix.Sysctl("machdep.cpu.vendor"); err == nil && vendor != "" {
			id.Vendor = identity.FromVendorString(vendor)
		} else if id.Architecture.IsARM() {
			id.Vendor = identity.OtherVendor("Apple")
		}
	}
	if id.ModelName == "" {
		if brand, err := unix.Sysctl("machdep.cpu.brand_string"); err == nil {
			id.ModelName = brand
		}
	}

	if !id.Resolved() {
		return id.Normalize(), ErrNoIdentity
	}
	return id.Normalize(), nil
}
