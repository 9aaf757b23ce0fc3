package cpu

import (
	"context"
	"errors"

	"github.com/CristiGvl/picoCPUInfo/identity"
	"github.com/CristiGvl/picoCPUInfo/topology"
)

var (
	// ErrNoSource is returned when no per-core data source resolves.
	ErrNoSource = errors.New("no CPU core data source available")
	// ErrNoIdentity is returned when neither the binary identification
	// path nor any label fallback yields a vendor or model.
	ErrNoIdentity = errors.New("no CPU identity source available")
)

// Reader interface for raw CPU data
type Reader interface {
	// ReadAllCores returns one record per logical CPU. A core whose
	// frequency cannot be read is still returned, with an unknown
	// frequency.
	ReadAllCores(ctx context.Context) ([]topology.CoreRecord, error)
	// ResolveIdentity returns vendor, architecture and model name.
	ResolveIdentity(ctx context.Context) (identity.Identity, error)
}

// NewReader creates a new CPU reader for the current platform
func NewReader() Reader {
	return newPlatformReader()
}
