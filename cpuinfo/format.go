package cpuinfo

import (
	"fmt"
	"strings"
)

// String renders every field of the report as an indented dump.
func (c CPUInfo) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CPU Info\n")
	fmt.Fprintf(&b, "  Vendor:         %s\n", c.Vendor)
	fmt.Fprintf(&b, "  Architecture:   %s\n", c.Architecture)
	fmt.Fprintf(&b, "  Model:          %s\n", c.ModelName)
	fmt.Fprintf(&b, "  Logical cores:  %d\n", c.LogicalCores)
	fmt.Fprintf(&b, "  Physical cores: %d\n", c.PhysicalCores)
	fmt.Fprintf(&b, "  Topology:       %s\n", c.Topology.Kind)
	for i, g := range c.Topology.Groups {
		fmt.Fprintf(&b, "    Group %d: %s\n", i+1, g)
	}
	return b.String()
}

func (g Group) String() string {
	noun := "cores"
	if g.Cores == 1 {
		noun = "core"
	}
	if g.Synthetic {
		return fmt.Sprintf("%d %s, frequency unknown (%s)", g.Cores, noun, g.Type)
	}
	return fmt.Sprintf("%d %s @ %s (%s)", g.Cores, noun, g.Frequency, g.Type)
}
