//go:build linux

package cpu

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/common"
	gcpu "github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/sys/unix"

	"github.com/CristiGvl/picoCPUInfo/internal/cpuid"
	"github.com/CristiGvl/picoCPUInfo/internal/sysfs"
)

// newPlatformReader creates a new Linux CPU reader
func newPlatformReader() Reader {
	fs := sysfs.Default()
	return &LinuxReader{
		fs:       fs,
		info:     rootedInfo(fs),
		cpu:      cpuid.Detect(),
		coreType: cpuid.CurrentCoreType,
		pin:      threadAffinity.runOnCPU,
	}
}

// rootedInfo points gopsutil at the proc and sys roots of fs.
func rootedInfo(fs sysfs.FS) func(ctx context.Context) ([]gcpu.InfoStat, error) {
	env := common.EnvMap{
		common.HostProcEnvKey: fs.ProcRoot,
		common.HostSysEnvKey:  fs.SysRoot,
	}
	return func(ctx context.Context) ([]gcpu.InfoStat, error) {
		return gcpu.InfoWithContext(context.WithValue(ctx, common.EnvKey, env))
	}
}

// affinity gets and sets the CPU mask of the calling thread.
type affinity struct {
	get func(set *unix.CPUSet) error
	set func(set *unix.CPUSet) error
}

var threadAffinity = affinity{
	get: func(set *unix.CPUSet) error { return unix.SchedGetaffinity(0, set) },
	set: func(set *unix.CPUSet) error { return unix.SchedSetaffinity(0, set) },
}

// runOnCPU pins the calling thread to one logical CPU while fn runs and
// restores the previous affinity mask afterwards.
func (a affinity) runOnCPU(cpu uint32, fn func()) (err error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var original unix.CPUSet
	if err := a.get(&original); err != nil {
		return err
	}

	var target unix.CPUSet
	target.Zero()
	target.Set(int(cpu))
	if err := a.set(&target); err != nil {
		return err
	}
	defer func() {
		if restoreErr := a.set(&original); restoreErr != nil && err == nil {
			err = restoreErr
		}
	}()

	fn()
	return nil
}
