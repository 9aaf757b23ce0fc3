//go:build !amd64 && !386

package cpuid

func cpuidRaw(eaxArg, ecxArg uint32) (eax, ebx, ecx, edx uint32) {
	return 0, 0, 0, 0
}

// Available reports whether the CPUID instruction can be executed.
func Available() bool {
	return false
}
