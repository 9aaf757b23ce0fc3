// Package sysfs reads per-CPU attributes from /sys and /proc on Linux.
//
// Every path is resolved against configurable roots so tests and the
// CLI can point at a captured or synthetic tree instead of the live
// system. Readers report missing or malformed files through a boolean
// rather than an error: a single unreadable attribute must not abort a
// whole scan.
package sysfs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// FS is a view of the proc and sys filesystems.
type FS struct {
	ProcRoot string
	SysRoot  string
}

// Default returns the live system view.
func Default() FS {
	return FS{ProcRoot: "/proc", SysRoot: "/sys"}
}

// New returns a view rooted at the given directories.
func New(procRoot, sysRoot string) FS {
	return FS{ProcRoot: procRoot, SysRoot: sysRoot}
}

func (fs FS) cpuBase() string {
	return filepath.Join(fs.SysRoot, "devices/system/cpu")
}

func (fs FS) cpuPath(cpu uint32, rel string) string {
	return filepath.Join(fs.cpuBase(), "cpu"+strconv.FormatUint(uint64(cpu), 10), rel)
}

// PackageID returns topology/physical_package_id of a logical CPU.
func (fs FS) PackageID(cpu uint32) (uint32, bool) {
	return readUint32(fs.cpuPath(cpu, "topology/physical_package_id"))
}

// HasMaxFrequency reports whether cpufreq exposes the hardware maximum
// frequency of a logical CPU.
func (fs FS) HasMaxFrequency(cpu uint32) bool {
	_, err := os.Stat(fs.cpuPath(cpu, "cpufreq/cpuinfo_max_freq"))
	return err == nil
}

// Online reports whether a logical CPU is online. CPUs without an online
// attribute, such as cpu0 on most systems, are looked up in the system
// wide online list, and count as online when that is missing too.
func (fs FS) Online(cpu uint32) bool {
	if state := ReadString(fs.cpuPath(cpu, "online")); state != "" {
		return state != "0"
	}
	online, ok := readCPUListFile(filepath.Join(fs.cpuBase(), "online"))
	if !ok {
		return true
	}
	return slices.Contains(online, cpu)
}

// Capacity returns the scheduler capacity of a logical CPU, exposed on
// asymmetric ARM systems.
func (fs FS) Capacity(cpu uint32) (uint64, bool) {
	return ReadUint(fs.cpuPath(cpu, "cpu_capacity"))
}

// HybridPMUs returns the CPU lists of the Intel hybrid core and atom PMUs.
// ok is false when neither PMU is present.
func (fs FS) HybridPMUs() (core, atom []uint32, ok bool) {
	for _, dir := range []string{"devices", "bus/event_source/devices"} {
		devices := filepath.Join(fs.SysRoot, dir)
		coreList, coreOK := readCPUListFile(filepath.Join(devices, "cpu_core/cpus"))
		atomList, atomOK := readCPUListFile(filepath.Join(devices, "cpu_atom/cpus"))
		if coreOK || atomOK {
			return coreList, atomList, true
		}
	}
	return nil, nil, false
}

func readCPUListFile(path string) ([]uint32, bool) {
	value := ReadString(path)
	if value == "" {
		return nil, false
	}
	cpus, err := ParseCPUList(value)
	if err != nil {
		return nil, false
	}
	return cpus, true
}

// MaxCPUs bounds the CPU ids ParseCPUList accepts. It matches the
// largest NR_CPUS the kernel can be configured with.
const MaxCPUs = 8192

// ParseCPUList parses the kernel CPU list format, e.g. "0-3,8,10-11".
// Ids at or above MaxCPUs are rejected.
func ParseCPUList(list string) ([]uint32, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}

	var cpus []uint32
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.ParseUint(lo, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("cpu list %q: %w", list, err)
		}
		last := first
		if isRange {
			last, err = strconv.ParseUint(hi, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("cpu list %q: %w", list, err)
			}
			if last < first {
				return nil, fmt.Errorf("cpu list %q: descending range %s", list, part)
			}
		}
		if last >= MaxCPUs {
			return nil, fmt.Errorf("cpu list %q: cpu %d exceeds limit %d", list, last, MaxCPUs)
		}
		for id := first; id <= last; id++ {
			cpus = append(cpus, uint32(id))
		}
	}
	return cpus, nil
}

// Stanza is one processor block of /proc/cpuinfo with lower-cased keys.
type Stanza map[string]string

// Get returns the value of a field, matching the key case-insensitively.
func (s Stanza) Get(key string) (string, bool) {
	value, ok := s[strings.ToLower(key)]
	return value, ok
}

// CPUInfo parses /proc/cpuinfo into stanzas separated by blank lines.
// Per-CPU topology and frequency are read through gopsutil; the stanzas
// serve the raw ARM implementer and part codes and the Hardware line,
// which gopsutil does not keep.
func (fs FS) CPUInfo() ([]Stanza, error) {
	file, err := os.Open(filepath.Join(fs.ProcRoot, "cpuinfo"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var stanzas []Stanza
	current := Stanza{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				stanzas = append(stanzas, current)
				current = Stanza{}
			}
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		current[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	if len(current) > 0 {
		stanzas = append(stanzas, current)
	}
	return stanzas, scanner.Err()
}

// ReadString reads a sysfs attribute and trims surrounding whitespace.
// Missing or unreadable files return "".
func ReadString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ReadUint reads a decimal sysfs attribute.
func ReadUint(path string) (uint64, bool) {
	value := ReadString(path)
	if value == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func readUint32(path string) (uint32, bool) {
	n, ok := ReadUint(path)
	if !ok || n > uint64(^uint32(0)) {
		return 0, false
	}
	return uint32(n), true
}
