package cpu

import (
	"context"
	"fmt"
	"strconv"

	gcpu "github.com/shirou/gopsutil/v3/cpu"

	"github.com/CristiGvl/picoCPUInfo/identity"
	"github.com/CristiGvl/picoCPUInfo/internal/cpuid"
	"github.com/CristiGvl/picoCPUInfo/topology"
)

// GopsutilReader reads CPU data through gopsutil. It backs platforms
// without a dedicated reader, where per-CPU attributes may be missing
// and topology is derived from physical and logical counts.
type GopsutilReader struct {
	cpu    *cpuid.Info
	info   func(ctx context.Context) ([]gcpu.InfoStat, error)
	counts func(ctx context.Context, logical bool) (int, error)
}

// NewGopsutilReader creates a gopsutil backed reader
func NewGopsutilReader() *GopsutilReader {
	return &GopsutilReader{
		cpu:    cpuid.Detect(),
		info:   gcpu.InfoWithContext,
		counts: gcpu.CountsWithContext,
	}
}

// ReadAllCores returns one record per logical CPU
func (r *GopsutilReader) ReadAllCores(ctx context.Context) ([]topology.CoreRecord, error) {
	infos, err := r.info(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSource, err)
	}

	if records, ok := perCPURecords(infos); ok {
		return records, nil
	}

	logical, err := r.counts(ctx, true)
	if err != nil || logical <= 0 {
		logical = len(infos)
	}
	if logical <= 0 {
		return nil, fmt.Errorf("%w: no logical CPUs reported", ErrNoSource)
	}
	physical, err := r.counts(ctx, false)
	if err != nil || physical <= 0 {
		physical = logical
	}

	frequency := topology.UnknownFrequency
	if len(infos) > 0 {
		frequency = mhzToKHz(infos[0].Mhz)
	}
	return synthesizeRecords([]coreBlock{{
		Physical:  physical,
		Logical:   logical,
		Frequency: frequency,
	}}), nil
}

// perCPURecords converts InfoStat entries when there is one per logical
// CPU with core ids filled in, as on Linux.
func perCPURecords(infos []gcpu.InfoStat) ([]topology.CoreRecord, bool) {
	if len(infos) < 2 {
		return nil, false
	}

	records := make([]topology.CoreRecord, 0, len(infos))
	for _, info := range infos {
		coreID, err := strconv.ParseUint(info.CoreID, 10, 32)
		if err != nil {
			return nil, false
		}
		record := topology.CoreRecord{
			LogicalID:    uint32(info.CPU),
			PhysicalID:   uint32(coreID),
			MaxFrequency: mhzToKHz(info.Mhz),
		}
		if pkg, err := strconv.ParseUint(info.PhysicalID, 10, 32); err == nil {
			record.PackageID = uint32(pkg)
		}
		records = append(records, record)
	}
	return records, true
}

// ResolveIdentity resolves vendor and model from CPUID when available and
// from the gopsutil InfoStat otherwise.
func (r *GopsutilReader) ResolveIdentity(ctx context.Context) (identity.Identity, error) {
	id := identity.Identity{Architecture: identity.Current()}
	id = identityFromCPUID(r.cpu, id)

	if !id.Vendor.Known() || id.ModelName == "" {
		if infos, err := r.info(ctx); err == nil {
			id = identityFromInfo(infos, id)
		}
	}

	if !id.Resolved() {
		return id.Normalize(), ErrNoIdentity
	}
	return id.Normalize(), nil
}
