package platform

import (
	"fmt"
	"runtime"
)

// SupportedOS represents supported operating systems
type SupportedOS string

const (
	Linux   SupportedOS = "linux"
	Windows SupportedOS = "windows"
	Darwin  SupportedOS = "darwin"
	FreeBSD SupportedOS = "freebsd"
)

// Arch is the GOARCH the binary was compiled for
type Arch string

const (
	AMD64 Arch = "amd64"
	I386  Arch = "386"
	ARM64 Arch = "arm64"
	ARM   Arch = "arm"
)

var supported = []SupportedOS{Linux, Windows, Darwin, FreeBSD}

// GetOS returns the current operating system
func GetOS() SupportedOS {
	return SupportedOS(runtime.GOOS)
}

// GetArch returns the compile-time architecture
func GetArch() Arch {
	return Arch(runtime.GOARCH)
}

// IsSupported returns true if the current OS is supported
func IsSupported() bool {
	os := GetOS()
	for _, s := range supported {
		if os == s {
			return true
		}
	}
	return false
}

// ValidateSupport returns an error if the current OS is not supported
func ValidateSupport() error {
	if !IsSupported() {
		return fmt.Errorf("unsupported operating system: %s. Supported: %v", runtime.GOOS, supported)
	}
	return nil
}
