// Package cpuinfo reports static CPU identity and topology: vendor,
// architecture, model, logical and physical core counts, and whether the
// cores form one clock tier (linear), two (hybrid) or more (custom).
//
// The report is computed once per call from platform sources and never
// logs. Failures surface only through the returned error, which matches
// ErrAcquisition, ErrIdentityUnavailable or ErrCoreCount under errors.Is.
package cpuinfo

import (
	"context"
	"errors"
	"fmt"

	"github.com/CristiGvl/picoCPUInfo/identity"
	"github.com/CristiGvl/picoCPUInfo/internal/cpu"
	"github.com/CristiGvl/picoCPUInfo/internal/sysfs"
	"github.com/CristiGvl/picoCPUInfo/topology"
)

// Source is a platform capable of enumerating logical CPUs and resolving
// CPU identity.
type Source interface {
	ReadAllCores(ctx context.Context) ([]topology.CoreRecord, error)
	ResolveIdentity(ctx context.Context) (identity.Identity, error)
}

// Options tunes a query. The zero value queries the live system with the
// default tolerance.
type Options struct {
	// Tolerance is the relative frequency gap under which cores share a
	// group. Nil selects topology.DefaultTolerance; zero groups only
	// identical frequencies.
	Tolerance *float64
	// ProcRoot and SysRoot point the reader at a captured /proc and /sys
	// tree. When either is set CPUID is not consulted.
	ProcRoot string
	SysRoot  string
}

func (o Options) classifier() (topology.Classifier, error) {
	c := topology.NewClassifier()
	if o.Tolerance != nil {
		c.Tolerance = *o.Tolerance
	}
	return c, c.Validate()
}

// NewSource returns the source a query with opts reads from: the live
// platform reader, or a Linux reader over a captured tree when one is
// configured.
func NewSource(opts Options) Source {
	if opts.ProcRoot == "" && opts.SysRoot == "" {
		return cpu.NewReader()
	}
	defaults := sysfs.Default()
	procRoot, sysRoot := opts.ProcRoot, opts.SysRoot
	if procRoot == "" {
		procRoot = defaults.ProcRoot
	}
	if sysRoot == "" {
		sysRoot = defaults.SysRoot
	}
	return cpu.NewLinuxReader(procRoot, sysRoot)
}

// Query reports on the live system with default options.
func Query() (CPUInfo, error) {
	return QueryContext(context.Background(), Options{})
}

// QueryContext reports on the system selected by opts.
func QueryContext(ctx context.Context, opts Options) (CPUInfo, error) {
	return QueryFrom(ctx, NewSource(opts), opts)
}

// New is like Query but panics on failure.
func New() CPUInfo {
	info, err := Query()
	if err != nil {
		panic(err)
	}
	return info
}

// QueryFrom reports on an explicit source. opts.ProcRoot and
// opts.SysRoot are ignored.
func QueryFrom(ctx context.Context, src Source, opts Options) (CPUInfo, error) {
	classifier, err := opts.classifier()
	if err != nil {
		return CPUInfo{}, err
	}

	records, err := src.ReadAllCores(ctx)
	if err != nil {
		return CPUInfo{}, fmt.Errorf("%w: %w", ErrAcquisition, err)
	}

	id, err := src.ResolveIdentity(ctx)
	if err != nil {
		if errors.Is(err, cpu.ErrNoIdentity) {
			return CPUInfo{}, fmt.Errorf("%w: %w", ErrIdentityUnavailable, err)
		}
		return CPUInfo{}, fmt.Errorf("%w: %w", ErrAcquisition, err)
	}

	cores := topology.Dedupe(records)
	groups, verdict := classifier.Classify(cores)
	return Assemble(id, cores, len(records), groups, verdict)
}
