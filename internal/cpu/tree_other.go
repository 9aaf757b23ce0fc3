//go:build !linux

package cpu

import (
	"context"
	"fmt"

	gcpu "github.com/shirou/gopsutil/v3/cpu"

	"github.com/CristiGvl/picoCPUInfo/internal/sysfs"
)

// rootedInfo fails: gopsutil honours proc and sys roots only on Linux.
func rootedInfo(fs sysfs.FS) func(ctx context.Context) ([]gcpu.InfoStat, error) {
	return func(context.Context) ([]gcpu.InfoStat, error) {
		return nil, fmt.Errorf("reading %s requires linux", fs.ProcRoot)
	}
}
