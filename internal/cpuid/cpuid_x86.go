//go:build amd64 || 386

package cpuid

// cpuidRaw is implemented in cpuid_x86.s.
func cpuidRaw(eaxArg, ecxArg uint32) (eax, ebx, ecx, edx uint32)

// Available reports whether the CPUID instruction can be executed.
func Available() bool {
	return true
}
