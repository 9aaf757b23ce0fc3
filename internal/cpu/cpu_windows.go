//go:build windows

package cpu

import (
	"context"
	"fmt"

	"github.com/StackExchange/wmi"

	"github.com/CristiGvl/picoCPUInfo/identity"
	"github.com/CristiGvl/picoCPUInfo/internal/cpuid"
	"github.com/CristiGvl/picoCPUInfo/topology"
)

// Win32_Processor represents one socket as reported by WMI
type Win32_Processor struct {
	Name                      string
	Manufacturer              string
	NumberOfCores             uint32
	NumberOfLogicalProcessors uint32
	MaxClockSpeed             uint32
}

// WindowsReader reads CPU topology from WMI
type WindowsReader struct {
	cpu   *cpuid.Info
	query func() ([]Win32_Processor, error)
}

// newPlatformReader creates a new Windows CPU reader
func newPlatformReader() Reader {
	return &WindowsReader{cpu: cpuid.Detect(), query: queryProcessors}
}

func queryProcessors() ([]Win32_Processor, error) {
	var processors []Win32_Processor
	query := "SELECT Name, Manufacturer, NumberOfCores, NumberOfLogicalProcessors, MaxClockSpeed FROM Win32_Processor"
	if err := wmi.Query(query, &processors); err != nil {
		return nil, err
	}
	return processors, nil
}

// ReadAllCores returns one record per logical CPU. WMI reports counts
// and one MaxClockSpeed per socket, so each socket becomes one package of
// identical cores. Hybrid parts therefore classify as a single tier.
func (r *WindowsReader) ReadAllCores(ctx context.Context) ([]topology.CoreRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	processors, err := r.query()
	if err != nil {
		return nil, fmt.Errorf("%w: Win32_Processor: %v", ErrNoSource, err)
	}

	blocks := make([]coreBlock, 0, len(processors))
	for i, p := range processors {
		blocks = append(blocks, coreBlock{
			Package:   uint32(i),
			Physical:  int(p.NumberOfCores),
			Logical:   int(p.NumberOfLogicalProcessors),
			Frequency: mhzToKHz(float64(p.MaxClockSpeed)),
		})
	}

	records := synthesizeRecords(blocks)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: Win32_Processor returned no cores", ErrNoSource)
	}
	return records, nil
}

// ResolveIdentity resolves vendor and model from CPUID, falling back to
// the Win32_Processor fields. Manufacturer holds the CPUID vendor string.
func (r *WindowsReader) ResolveIdentity(ctx context.Context) (identity.Identity, error) {
	if err := ctx.Err(); err != nil {
		return identity.Identity{}, err
	}

	id := identity.Identity{Architecture: identity.Current()}
	id = identityFromCPUID(r.cpu, id)

	if !id.Vendor.Known() || id.ModelName == "" {
		processors, err := r.query()
		if err == nil && len(processors) > 0 {
			if !id.Vendor.Known() {
				id.Vendor = identity.FromVendorString(processors[0].Manufacturer)
			}
			if id.ModelName == "" {
				id.ModelName = processors[0].Name
			}
		}
	}

	if !id.Resolved() {
		return id.Normalize(), ErrNoIdentity
	}
	return id.Normalize(), nil
}
