package cpu

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	gcpu "github.com/shirou/gopsutil/v3/cpu"

	"github.com/CristiGvl/picoCPUInfo/identity"
	"github.com/CristiGvl/picoCPUInfo/internal/cpuid"
	"github.com/CristiGvl/picoCPUInfo/internal/sysfs"
	"github.com/CristiGvl/picoCPUInfo/topology"
)

// pinFunc runs fn on the given logical CPU.
type pinFunc func(cpu uint32, fn func()) error

// LinuxReader reads per-CPU topology from /proc/cpuinfo and sysfs.
// gopsutil parses /proc/cpuinfo and each CPU's core_id and
// cpuinfo_max_freq; sysfs supplies package ids, online state and core
// types.
type LinuxReader struct {
	fs       sysfs.FS
	info     func(ctx context.Context) ([]gcpu.InfoStat, error)
	cpu      *cpuid.Info
	coreType func() cpuid.CoreType
	pin      pinFunc
}

// NewLinuxReader creates a reader over a captured or synthetic tree.
// CPUID is never consulted, so results depend on the tree alone.
func NewLinuxReader(procRoot, sysRoot string) *LinuxReader {
	fs := sysfs.New(procRoot, sysRoot)
	return &LinuxReader{fs: fs, info: rootedInfo(fs)}
}

// ReadAllCores returns one record per online logical CPU
func (r *LinuxReader) ReadAllCores(ctx context.Context) ([]topology.CoreRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := r.info(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSource, err)
	}

	nominalFrequency := r.cpuidNominalFrequency()
	records := make([]topology.CoreRecord, 0, len(infos))
	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if info.CPU < 0 {
			continue
		}

		logical := uint32(info.CPU)
		if !r.fs.Online(logical) {
			continue
		}
		record := topology.CoreRecord{
			LogicalID:    logical,
			PhysicalID:   logical,
			MaxFrequency: nominalFrequency,
		}
		if coreID, ok := parseID(info.CoreID); ok {
			record.PhysicalID = coreID
		}
		if pkg, ok := parseID(info.PhysicalID); ok {
			record.PackageID = pkg
		} else if pkg, ok := r.fs.PackageID(logical); ok {
			record.PackageID = pkg
		}
		// Without cpufreq gopsutil leaves the current clock in Mhz.
		if r.fs.HasMaxFrequency(logical) {
			if khz := mhzToKHz(info.Mhz); khz.Known() {
				record.MaxFrequency = khz
			}
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no online processors in %s/cpuinfo", ErrNoSource, r.fs.ProcRoot)
	}

	cpus := make([]uint32, len(records))
	for i, record := range records {
		cpus[i] = record.LogicalID
	}
	hints := r.typeHints(cpus)
	for i := range records {
		records[i].TypeHint = hints[records[i].LogicalID]
	}
	return records, nil
}

// cpuidNominalFrequency returns the CPUID maximum for use when cpufreq is
// absent, as in most virtual machines. Hybrid parts report a single value
// for all core types, so it is ignored there.
func (r *LinuxReader) cpuidNominalFrequency() topology.KHz {
	if r.cpu == nil || r.cpu.Hybrid {
		return topology.UnknownFrequency
	}
	return topology.KHz(r.cpu.MaxFrequencyKHz)
}

// typeHints returns the core type of each logical CPU. Sources in order:
// the hybrid PMU cpu lists, cpu_capacity, then CPUID leaf 0x1A read on
// each CPU in turn.
func (r *LinuxReader) typeHints(cpus []uint32) map[uint32]topology.CoreType {
	hints := make(map[uint32]topology.CoreType, len(cpus))

	if core, atom, ok := r.fs.HybridPMUs(); ok {
		for _, id := range core {
			hints[id] = topology.CoreTypePerformance
		}
		for _, id := range atom {
			hints[id] = topology.CoreTypeEfficiency
		}
		return hints
	}

	if capacityHints(r.fs, cpus, hints) {
		return hints
	}

	if r.cpu != nil && r.cpu.Hybrid && r.pin != nil && r.coreType != nil {
		for _, id := range cpus {
			var coreType cpuid.CoreType
			if err := r.pin(id, func() { coreType = r.coreType() }); err != nil {
				continue
			}
			hints[id] = fromCPUIDCoreType(coreType)
		}
	}
	return hints
}

// capacityHints marks the highest capacity CPUs as performance cores and
// the rest as efficiency cores. It reports false when capacities are
// missing for any CPU or are all equal.
func capacityHints(fs sysfs.FS, cpus []uint32, hints map[uint32]topology.CoreType) bool {
	capacities := make(map[uint32]uint64, len(cpus))
	var highest, lowest uint64
	for i, id := range cpus {
		capacity, ok := fs.Capacity(id)
		if !ok {
			return false
		}
		capacities[id] = capacity
		if i == 0 || capacity > highest {
			highest = capacity
		}
		if i == 0 || capacity < lowest {
			lowest = capacity
		}
	}
	if len(capacities) == 0 || highest == lowest {
		return false
	}

	for id, capacity := range capacities {
		if capacity == highest {
			hints[id] = topology.CoreTypePerformance
		} else {
			hints[id] = topology.CoreTypeEfficiency
		}
	}
	return true
}

func fromCPUIDCoreType(t cpuid.CoreType) topology.CoreType {
	switch t {
	case cpuid.CoreTypePerformance:
		return topology.CoreTypePerformance
	case cpuid.CoreTypeEfficiency:
		return topology.CoreTypeEfficiency
	default:
		return topology.CoreTypeUnknown
	}
}

// ResolveIdentity resolves vendor and model. On x86 CPUID is
// authoritative. ARM implementer and part codes come next, then the
// vendor_id and model labels gopsutil reads from /proc/cpuinfo.
func (r *LinuxReader) ResolveIdentity(ctx context.Context) (identity.Identity, error) {
	if err := ctx.Err(); err != nil {
		return identity.Identity{}, err
	}

	id := identity.Identity{Architecture: identity.Current()}
	id = identityFromCPUID(r.cpu, id)

	stanzas, stanzaErr := r.fs.CPUInfo()
	var hardware string
	if stanzaErr == nil {
		id, hardware = identityFromMIDR(stanzas, id)
	}

	if !id.Vendor.Known() || id.ModelName == "" {
		if infos, err := r.info(ctx); err == nil {
			id = identityFromInfo(infos, id)
		}
	}
	if id.ModelName == "" {
		id.ModelName = hardware
	}

	if !id.Resolved() {
		if stanzaErr != nil {
			return id.Normalize(), fmt.Errorf("%w: %v", ErrNoIdentity, stanzaErr)
		}
		return id.Normalize(), ErrNoIdentity
	}
	return id.Normalize(), nil
}

// identityFromCPUID fills vendor and model from the CPUID vendor and
// brand strings. Fields already set are left alone.
func identityFromCPUID(info *cpuid.Info, id identity.Identity) identity.Identity {
	if info == nil {
		return id
	}
	if !id.Vendor.Known() && info.VendorString != "" {
		id.Vendor = identity.FromVendorString(info.VendorString)
	}
	if id.ModelName == "" {
		id.ModelName = info.BrandName
	}
	return id
}

// identityFromMIDR fills vendor and model from the ARM implementer and
// part codes. On heterogeneous systems every distinct part name is
// listed. It also returns the Hardware line as a last resort label.
func identityFromMIDR(stanzas []sysfs.Stanza, id identity.Identity) (identity.Identity, string) {
	var parts []string
	seen := make(map[string]bool)
	var hardware string

	for _, stanza := range stanzas {
		implementer, _ := stanza.Get("cpu implementer")
		if !id.Vendor.Known() && implementer != "" {
			id.Vendor = identity.FromARMImplementer(implementer)
		}
		part, _ := stanza.Get("cpu part")
		if name, ok := identity.ARMPartName(implementer, part); ok && !seen[name] {
			seen[name] = true
			parts = append(parts, name)
		}
		if hardware == "" {
			hardware, _ = stanza.Get("hardware")
		}
	}

	if id.ModelName == "" && len(parts) > 0 {
		id.ModelName = strings.Join(parts, " + ")
	}
	return id, hardware
}

// identityFromInfo fills what is still missing from the gopsutil view of
// /proc/cpuinfo. x86 kernels expose the raw CPUID vendor string as
// vendor_id.
func identityFromInfo(infos []gcpu.InfoStat, id identity.Identity) identity.Identity {
	for _, info := range infos {
		if !id.Vendor.Known() && info.VendorID != "" {
			id.Vendor = identity.FromVendorString(info.VendorID)
		}
		// gopsutil names unknown ARM parts "Undefined".
		if id.ModelName == "" && info.ModelName != "Undefined" {
			id.ModelName = info.ModelName
		}
	}
	return id
}

func parseID(value string) (uint32, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}
