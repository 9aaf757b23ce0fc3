package identity

import "github.com/CristiGvl/picoCPUInfo/internal/platform"

// Architecture is the instruction set the binary was built for.
type Architecture uint8

const (
	ArchUnknown Architecture = iota
	ArchX86
	ArchX86_64
	ArchARM
	ArchARM64
	ArchRISCV64
	ArchPPC64LE
	ArchS390X
	ArchLoong64
)

var architectureNames = map[Architecture]string{
	ArchUnknown: "unknown",
	ArchX86:     "x86",
	ArchX86_64:  "x86_64",
	ArchARM:     "arm",
	ArchARM64:   "arm64",
	ArchRISCV64: "riscv64",
	ArchPPC64LE: "ppc64le",
	ArchS390X:   "s390x",
	ArchLoong64: "loong64",
}

var goarchArchitectures = map[platform.Arch]Architecture{
	platform.I386:  ArchX86,
	platform.AMD64: ArchX86_64,
	platform.ARM:   ArchARM,
	platform.ARM64: ArchARM64,
	"riscv64":      ArchRISCV64,
	"ppc64le":      ArchPPC64LE,
	"s390x":        ArchS390X,
	"loong64":      ArchLoong64,
}

// Current returns the architecture fixed at compile time.
func Current() Architecture {
	return ArchitectureFor(platform.GetArch())
}

// ArchitectureFor maps a GOARCH value to an Architecture.
func ArchitectureFor(goarch platform.Arch) Architecture {
	if arch, ok := goarchArchitectures[goarch]; ok {
		return arch
	}
	return ArchUnknown
}

// IsX86 reports whether the architecture belongs to the x86 family.
func (a Architecture) IsX86() bool {
	return a == ArchX86 || a == ArchX86_64
}

// IsARM reports whether the architecture belongs to the ARM family.
func (a Architecture) IsARM() bool {
	return a == ArchARM || a == ArchARM64
}

func (a Architecture) String() string {
	if name, ok := architectureNames[a]; ok {
		return name
	}
	return architectureNames[ArchUnknown]
}

// MarshalText implements encoding.TextMarshaler.
func (a Architecture) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Architecture) UnmarshalText(text []byte) error {
	for arch, name := range architectureNames {
		if name == string(text) {
			*a = arch
			return nil
		}
	}
	*a = ArchUnknown
	return nil
}
