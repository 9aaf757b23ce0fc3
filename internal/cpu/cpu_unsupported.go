//go:build !linux && !windows && !darwin

package cpu

// newPlatformReader falls back to gopsutil on platforms without a
// dedicated reader
func newPlatformReader() Reader {
	return NewGopsutilReader()
}
