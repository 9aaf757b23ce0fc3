// Package cpuid identifies x86 processors.
//
// Processor-wide identification comes from github.com/klauspost/cpuid/v2,
// which executes CPUID once at startup. The hybrid core type is a property
// of each logical CPU, so it is read here by executing leaf 0x1A on
// whichever CPU the calling thread is pinned to.
package cpuid

import (
	"strings"

	kcpuid "github.com/klauspost/cpuid/v2"
)

const (
	leafHybrid    uint32 = 0x1a
	coreTypeShift        = 24
	coreTypeAtom         = 0x20
	coreTypeCore         = 0x40
)

// Info is the processor-wide identification.
type Info struct {
	// VendorString is the raw 12-byte vendor identification of leaf 0.
	VendorString string
	BrandName    string
	// Hybrid is set on processors mixing performance and efficiency cores.
	Hybrid bool
	// MaxFrequencyKHz is the leaf 0x16 maximum, or the base clock when
	// only that is known. Zero means unknown.
	MaxFrequencyKHz uint64
}

// Detect returns the identification of the running processor, or nil
// when the CPUID instruction does not exist on this architecture.
func Detect() *Info {
	if !Available() {
		return nil
	}
	info := FromCPU(kcpuid.CPU)
	return &info
}

// FromCPU converts the detected klauspost/cpuid data.
func FromCPU(c kcpuid.CPUInfo) Info {
	info := Info{
		VendorString: c.VendorString,
		BrandName:    strings.TrimSpace(c.BrandName),
		Hybrid:       c.Supports(kcpuid.HYBRID_CPU),
	}
	hz := c.BoostFreq
	if hz <= 0 {
		hz = c.Hz
	}
	if hz > 0 {
		info.MaxFrequencyKHz = uint64(hz / 1000)
	}
	return info
}

// CoreType is the native core type of a logical CPU.
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

// DecodeCoreType decodes EAX[31:24] of leaf 0x1A.
func DecodeCoreType(eax uint32) CoreType {
	switch eax >> coreTypeShift {
	case coreTypeCore:
		return CoreTypePerformance
	case coreTypeAtom:
		return CoreTypeEfficiency
	default:
		return CoreTypeUnknown
	}
}

// CurrentCoreType reads the core type of whichever logical CPU the
// calling thread is running on. The caller pins the thread first.
func CurrentCoreType() CoreType {
	if !Available() {
		return CoreTypeUnknown
	}
	if maxLeaf, _, _, _ := cpuidRaw(0, 0); maxLeaf < leafHybrid {
		return CoreTypeUnknown
	}
	eax, _, _, _ := cpuidRaw(leafHybrid, 0)
	return DecodeCoreType(eax)
}
