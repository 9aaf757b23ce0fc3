package cpuinfo

import "errors"

var (
	// ErrAcquisition is returned when no raw CPU data source is reachable.
	ErrAcquisition = errors.New("cpuinfo: no CPU data source reachable")
	// ErrIdentityUnavailable is returned when neither vendor nor model can
	// be determined from any source.
	ErrIdentityUnavailable = errors.New("cpuinfo: CPU identity unavailable")
	// ErrCoreCount is returned when zero physical cores were resolved.
	ErrCoreCount = errors.New("cpuinfo: no physical cores resolved")
)
