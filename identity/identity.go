// Package identity describes who made a CPU and what it is called.
//
// Vendors are resolved from binary identifiers only: the 12-byte CPUID
// vendor string on x86 and the implementer code on ARM. Human readable
// labels exposed by the OS are used for the model name as a last resort
// and never to pick a vendor.
package identity

import (
	"fmt"
	"strings"
)

// VendorKind is a well known CPU designer, or Other for anything else.
type VendorKind uint8

const (
	VendorUnknown VendorKind = iota
	VendorIntel
	VendorAMD
	VendorOther
)

// Vendor is the company that designed the CPU. Name carries the display
// name and, for VendorOther, the verbatim identifier when it is not in
// any table.
type Vendor struct {
	Kind VendorKind
	Name string
}

var (
	Intel         = Vendor{Kind: VendorIntel, Name: "Intel"}
	AMD           = Vendor{Kind: VendorAMD, Name: "AMD"}
	UnknownVendor = Vendor{Kind: VendorUnknown, Name: "Unknown"}
)

// OtherVendor returns a vendor outside the well known set. An empty name
// yields UnknownVendor.
func OtherVendor(name string) Vendor {
	name = strings.TrimSpace(name)
	if name == "" {
		return UnknownVendor
	}
	return Vendor{Kind: VendorOther, Name: name}
}

// Known reports whether the vendor was resolved at all.
func (v Vendor) Known() bool {
	return v.Kind != VendorUnknown
}

func (v Vendor) String() string {
	if v.Name == "" {
		return UnknownVendor.Name
	}
	return v.Name
}

// MarshalText implements encoding.TextMarshaler.
func (v Vendor) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Vendor) UnmarshalText(text []byte) error {
	switch name := string(text); name {
	case Intel.Name:
		*v = Intel
	case AMD.Name:
		*v = AMD
	case UnknownVendor.Name:
		*v = UnknownVendor
	default:
		*v = OtherVendor(name)
	}
	return nil
}

// x86 vendor strings as returned in EBX, EDX, ECX of CPUID leaf 0.
var x86Vendors = map[string]string{
	"GenuineIntel": "Intel",
	"AuthenticAMD": "AMD",
	"HygonGenuine": "Hygon",
	"CentaurHauls": "Centaur",
	"  Shanghai  ": "Zhaoxin",
	"CyrixInstead": "Cyrix",
	"GenuineTMx86": "Transmeta",
	"NexGenDriven": "NexGen",
	"RiseRiseRise": "Rise",
	"SiS SiS SiS ": "SiS",
	"UMC UMC UMC ": "UMC",
	"Vortex86 SoC": "DM&P",
	"KVMKVMKVM":    "KVM",
	"VIA VIA VIA ": "VIA",
}

// FromVendorString maps a CPUID vendor identification string to a
// Vendor. Unrecognised strings are kept verbatim.
func FromVendorString(id string) Vendor {
	switch id {
	case "GenuineIntel":
		return Intel
	case "AuthenticAMD":
		return AMD
	}
	if name, ok := x86Vendors[id]; ok {
		return OtherVendor(name)
	}
	if name, ok := x86Vendors[strings.TrimRight(id, "\x00")]; ok {
		return OtherVendor(name)
	}
	return OtherVendor(strings.Trim(id, "\x00 "))
}

// Identity is the resolved vendor, architecture and model of a CPU.
type Identity struct {
	Vendor       Vendor
	Architecture Architecture
	ModelName    string
}

// UnknownModel is the placeholder model name when nothing could be read.
const UnknownModel = "Unknown"

// Normalize fills placeholders for fields that could not be resolved.
func (id Identity) Normalize() Identity {
	id.ModelName = strings.Join(strings.Fields(id.ModelName), " ")
	if id.ModelName == "" {
		id.ModelName = UnknownModel
	}
	if id.Vendor.Name == "" {
		id.Vendor = UnknownVendor
	}
	return id
}

// Resolved reports whether either the vendor or the model is known.
func (id Identity) Resolved() bool {
	model := strings.TrimSpace(id.ModelName)
	return id.Vendor.Known() || (model != "" && model != UnknownModel)
}

func (id Identity) String() string {
	return fmt.Sprintf("%s %s (%s)", id.Vendor, id.ModelName, id.Architecture)
}
