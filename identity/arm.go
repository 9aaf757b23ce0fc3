package identity

import (
	"strconv"
	"strings"
)

// armImplementer is one row of the MIDR_EL1 implementer table.
type armImplementer struct {
	name  string
	parts map[uint64]string
}

const armImplementerIntel = 0x69

var armImplementers = map[uint64]armImplementer{
	0x41: {name: "ARM", parts: map[uint64]string{
		0xb02: "ARM11 MPCore",
		0xb36: "ARM1136",
		0xb56: "ARM1156",
		0xb76: "ARM1176",
		0xc05: "Cortex-A5",
		0xc07: "Cortex-A7",
		0xc08: "Cortex-A8",
		0xc09: "Cortex-A9",
		0xc0d: "Cortex-A17",
		0xc0f: "Cortex-A15",
		0xd01: "Cortex-A32",
		0xd02: "Cortex-A34",
		0xd03: "Cortex-A53",
		0xd04: "Cortex-A35",
		0xd05: "Cortex-A55",
		0xd06: "Cortex-A65",
		0xd07: "Cortex-A57",
		0xd08: "Cortex-A72",
		0xd09: "Cortex-A73",
		0xd0a: "Cortex-A75",
		0xd0b: "Cortex-A76",
		0xd0c: "Neoverse-N1",
		0xd0d: "Cortex-A77",
		0xd0e: "Cortex-A76AE",
		0xd40: "Neoverse-V1",
		0xd41: "Cortex-A78",
		0xd42: "Cortex-A78AE",
		0xd43: "Cortex-A65AE",
		0xd44: "Cortex-X1",
		0xd46: "Cortex-A510",
		0xd47: "Cortex-A710",
		0xd48: "Cortex-X2",
		0xd49: "Neoverse-N2",
		0xd4a: "Neoverse-E1",
		0xd4b: "Cortex-A78C",
		0xd4c: "Cortex-X1C",
		0xd4d: "Cortex-A715",
		0xd4e: "Cortex-X3",
		0xd4f: "Neoverse-V2",
		0xd80: "Cortex-A520",
		0xd81: "Cortex-A720",
		0xd82: "Cortex-X4",
	}},
	0x42: {name: "Broadcom"},
	0x43: {name: "Cavium", parts: map[uint64]string{
		0x0a1: "ThunderX",
		0x0af: "ThunderX2",
	}},
	0x44: {name: "DEC"},
	0x46: {name: "Fujitsu", parts: map[uint64]string{
		0x001: "A64FX",
	}},
	0x48: {name: "HiSilicon", parts: map[uint64]string{
		0xd01: "Kunpeng-920",
	}},
	0x4e: {name: "Nvidia", parts: map[uint64]string{
		0x003: "Denver 2",
		0x004: "Carmel",
	}},
	0x50: {name: "APM", parts: map[uint64]string{
		0x000: "X-Gene",
	}},
	0x51: {name: "Qualcomm", parts: map[uint64]string{
		0x800: "Kryo 2XX Gold",
		0x801: "Kryo 2XX Silver",
		0x803: "Kryo 3XX Silver",
		0x804: "Kryo 4XX Gold",
		0x805: "Kryo 4XX Silver",
		0xc00: "Falkor",
		0x001: "Oryon",
	}},
	0x53: {name: "Samsung"},
	0x56: {name: "Marvell"},
	0x61: {name: "Apple", parts: map[uint64]string{
		0x020: "Icestorm-A14",
		0x021: "Firestorm-A14",
		0x022: "Icestorm-M1",
		0x023: "Firestorm-M1",
		0x024: "Icestorm-M1-Pro",
		0x025: "Firestorm-M1-Pro",
		0x028: "Icestorm-M1-Max",
		0x029: "Firestorm-M1-Max",
		0x030: "Blizzard-A15",
		0x031: "Avalanche-A15",
		0x032: "Blizzard-M2",
		0x033: "Avalanche-M2",
	}},
	0x66: {name: "Faraday"},
	0x69: {name: "Intel"},
	0xc0: {name: "Ampere", parts: map[uint64]string{
		0xac3: "Ampere-1",
		0xac4: "Ampere-1a",
	}},
}

// ParseARMCode parses an implementer or part field as printed in
// /proc/cpuinfo. Both "0x41" and bare hex "41" are accepted.
func ParseARMCode(value string) (uint64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "0x") {
		code, err := strconv.ParseUint(lower[2:], 16, 64)
		return code, err == nil
	}
	code, err := strconv.ParseUint(lower, 16, 64)
	return code, err == nil
}

// FromARMImplementer maps an ARM implementer field to a Vendor. Codes not
// in the table produce an Other vendor carrying the raw field verbatim.
func FromARMImplementer(raw string) Vendor {
	raw = strings.TrimSpace(raw)
	code, ok := ParseARMCode(raw)
	if !ok {
		return OtherVendor(raw)
	}
	if code == armImplementerIntel {
		return Intel
	}
	if impl, ok := armImplementers[code]; ok {
		return OtherVendor(impl.name)
	}
	return OtherVendor(raw)
}

// ARMPartName returns the core name for an implementer and part pair.
// The boolean is false when the pair is not in the table.
func ARMPartName(implementer, part string) (string, bool) {
	implCode, ok := ParseARMCode(implementer)
	if !ok {
		return "", false
	}
	partCode, ok := ParseARMCode(part)
	if !ok {
		return "", false
	}
	impl, ok := armImplementers[implCode]
	if !ok {
		return "", false
	}
	name, ok := impl.parts[partCode]
	return name, ok
}
