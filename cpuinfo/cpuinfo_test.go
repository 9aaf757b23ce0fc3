package cpuinfo

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/CristiGvl/picoCPUInfo/identity"
	"github.com/CristiGvl/picoCPUInfo/internal/cpu"
	"github.com/CristiGvl/picoCPUInfo/topology"
)

// fakeSource serves fixed records and identity.
type fakeSource struct {
	records     []topology.CoreRecord
	recordsErr  error
	identity    identity.Identity
	identityErr error
}

func (f fakeSource) ReadAllCores(context.Context) ([]topology.CoreRecord, error) {
	return f.records, f.recordsErr
}

func (f fakeSource) ResolveIdentity(context.Context) (identity.Identity, error) {
	return f.identity, f.identityErr
}

// smtCores builds n physical cores with two threads each.
func smtCores(first uint32, n int, freq topology.KHz, coreType topology.CoreType) []topology.CoreRecord {
	var records []topology.CoreRecord
	for i := 0; i < n; i++ {
		for thread := 0; thread < 2; thread++ {
			records = append(records, topology.CoreRecord{
				LogicalID:    uint32(len(records)) + first*2,
				PhysicalID:   first + uint32(i),
				MaxFrequency: freq,
				TypeHint:     coreType,
			})
		}
	}
	return records
}

var alderLake = identity.Identity{
	Vendor:       identity.Intel,
	Architecture: identity.ArchX86_64,
	ModelName:    "12th Gen Intel(R) Core(TM) i7-12700K",
}

func TestQueryFrom(t *testing.T) {
	tests := []struct {
		name         string
		records      []topology.CoreRecord
		wantLogical  int
		wantPhysical int
		wantKind     topology.Kind
		wantGroups   []int
	}{
		{
			name:         "linear",
			records:      smtCores(0, 8, 4200000, topology.CoreTypeUnknown),
			wantLogical:  16,
			wantPhysical: 8,
			wantKind:     topology.KindLinear,
			wantGroups:   []int{8},
		},
		{
			name: "hybrid",
			records: append(smtCores(0, 8, 4900000, topology.CoreTypePerformance),
				smtCores(8, 4, 3800000, topology.CoreTypeEfficiency)...),
			wantLogical:  24,
			wantPhysical: 12,
			wantKind:     topology.KindHybrid,
			wantGroups:   []int{8, 4},
		},
		{
			name: "custom",
			records: append(append(smtCores(0, 1, 3300000, topology.CoreTypeUnknown),
				smtCores(1, 3, 3000000, topology.CoreTypeUnknown)...),
				smtCores(4, 4, 2000000, topology.CoreTypeUnknown)...),
			wantLogical:  16,
			wantPhysical: 8,
			wantKind:     topology.KindCustom,
			wantGroups:   []int{1, 3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := QueryFrom(context.Background(), fakeSource{records: tt.records, identity: alderLake}, Options{})
			if err != nil {
				t.Fatalf("QueryFrom: %v", err)
			}
			if info.LogicalCores != tt.wantLogical || info.PhysicalCores != tt.wantPhysical {
				t.Errorf("cores = %d logical / %d physical, want %d / %d",
					info.LogicalCores, info.PhysicalCores, tt.wantLogical, tt.wantPhysical)
			}
			if info.Topology.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", info.Topology.Kind, tt.wantKind)
			}
			var sizes []int
			for _, g := range info.Topology.Groups {
				sizes = append(sizes, g.Cores)
			}
			if len(sizes) != len(tt.wantGroups) {
				t.Fatalf("group sizes = %v, want %v", sizes, tt.wantGroups)
			}
			for i := range sizes {
				if sizes[i] != tt.wantGroups[i] {
					t.Errorf("group sizes = %v, want %v", sizes, tt.wantGroups)
					break
				}
			}
			if info.Vendor != identity.Intel || info.Architecture != identity.ArchX86_64 {
				t.Errorf("identity = %v %v", info.Vendor, info.Architecture)
			}
			if info.PhysicalCores > info.LogicalCores {
				t.Error("physical cores exceed logical cores")
			}
		})
	}
}

func TestQueryFromErrors(t *testing.T) {
	readFailure := errors.New("permission denied")
	tests := []struct {
		name string
		src  fakeSource
		want error
	}{
		{
			name: "acquisition",
			src:  fakeSource{recordsErr: readFailure, identity: alderLake},
			want: ErrAcquisition,
		},
		{
			name: "no source",
			src:  fakeSource{recordsErr: cpu.ErrNoSource},
			want: cpu.ErrNoSource,
		},
		{
			name: "identity",
			src:  fakeSource{records: smtCores(0, 2, 1000000, topology.CoreTypeUnknown), identityErr: cpu.ErrNoIdentity},
			want: ErrIdentityUnavailable,
		},
		{
			name: "no cores",
			src:  fakeSource{identity: alderLake},
			want: ErrCoreCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := QueryFrom(context.Background(), tt.src, Options{})
			if !errors.Is(err, tt.want) {
				t.Errorf("QueryFrom() error = %v, want %v", err, tt.want)
			}
		})
	}

	_, err := QueryFrom(context.Background(), fakeSource{recordsErr: readFailure}, Options{})
	if !errors.Is(err, readFailure) {
		t.Errorf("QueryFrom() should keep the cause, got %v", err)
	}
}

func TestQueryFromTolerance(t *testing.T) {
	records := append(smtCores(0, 4, 3000000, topology.CoreTypeUnknown),
		smtCores(4, 4, 2800000, topology.CoreTypeUnknown)...)
	src := fakeSource{records: records, identity: alderLake}

	info, err := QueryFrom(context.Background(), src, Options{})
	if err != nil {
		t.Fatalf("QueryFrom: %v", err)
	}
	if info.Topology.Kind != topology.KindHybrid {
		t.Errorf("default tolerance kind = %v, want hybrid", info.Topology.Kind)
	}

	wide := 0.10
	info, err = QueryFrom(context.Background(), src, Options{Tolerance: &wide})
	if err != nil {
		t.Fatalf("QueryFrom: %v", err)
	}
	if info.Topology.Kind != topology.KindLinear {
		t.Errorf("10%% tolerance kind = %v, want linear", info.Topology.Kind)
	}

	invalid := 1.5
	if _, err := QueryFrom(context.Background(), src, Options{Tolerance: &invalid}); err == nil {
		t.Error("QueryFrom() should reject a tolerance of 1.5")
	}
}

func TestQueryFromZeroTolerance(t *testing.T) {
	records := append(smtCores(0, 2, 3100000, topology.CoreTypeUnknown),
		smtCores(2, 2, 3000000, topology.CoreTypeUnknown)...)
	src := fakeSource{records: records, identity: alderLake}

	info, err := QueryFrom(context.Background(), src, Options{})
	if err != nil {
		t.Fatalf("QueryFrom: %v", err)
	}
	if info.Topology.Kind != topology.KindLinear {
		t.Errorf("default tolerance kind = %v, want linear", info.Topology.Kind)
	}

	exact := 0.0
	info, err = QueryFrom(context.Background(), src, Options{Tolerance: &exact})
	if err != nil {
		t.Fatalf("QueryFrom: %v", err)
	}
	if info.Topology.Kind != topology.KindHybrid || len(info.Topology.Groups) != 2 {
		t.Errorf("zero tolerance = %v with %d groups, want hybrid with 2", info.Topology.Kind, len(info.Topology.Groups))
	}
}

func TestAssembleEmpty(t *testing.T) {
	_, err := Assemble(alderLake, nil, 0, nil, topology.Verdict{})
	if !errors.Is(err, ErrCoreCount) {
		t.Errorf("Assemble() error = %v, want ErrCoreCount", err)
	}
}

func TestAssemblePlaceholders(t *testing.T) {
	cores := []topology.PhysicalCore{{PhysicalID: 0, Threads: 1}}
	groups, verdict := topology.NewClassifier().Classify(cores)

	info, err := Assemble(identity.Identity{Architecture: identity.ArchARM64}, cores, 1, groups, verdict)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if info.ModelName != identity.UnknownModel {
		t.Errorf("model = %q, want placeholder", info.ModelName)
	}
	if info.Vendor != identity.UnknownVendor {
		t.Errorf("vendor = %v, want placeholder", info.Vendor)
	}
	if info.Topology.Kind != topology.KindLinear || !info.Topology.Groups[0].Synthetic {
		t.Errorf("topology = %+v, want one synthetic group", info.Topology)
	}
}

func TestAssembleOwnsCores(t *testing.T) {
	cores := []topology.PhysicalCore{{PhysicalID: 0, Frequency: 1000000, Threads: 1}}
	groups, verdict := topology.NewClassifier().Classify(cores)
	info, err := Assemble(alderLake, cores, 1, groups, verdict)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	cores[0].PhysicalID = 99
	if info.Cores[0].PhysicalID != 0 {
		t.Error("report shares the caller's core slice")
	}
}

func TestString(t *testing.T) {
	records := append(smtCores(0, 8, 4900000, topology.CoreTypePerformance),
		topology.CoreRecord{LogicalID: 16, PhysicalID: 8, TypeHint: topology.CoreTypeEfficiency})
	info, err := QueryFrom(context.Background(), fakeSource{records: records, identity: alderLake}, Options{})
	if err != nil {
		t.Fatalf("QueryFrom: %v", err)
	}

	out := info.String()
	for _, want := range []string{
		"Vendor:         Intel",
		"Architecture:   x86_64",
		"Model:          12th Gen Intel(R) Core(TM) i7-12700K",
		"Logical cores:  17",
		"Physical cores: 9",
		"Topology:       hybrid",
		"Group 1: 8 cores @ 4.90 GHz (performance)",
		"Group 2: 1 core, frequency unknown (efficiency)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}
}

func TestEncoding(t *testing.T) {
	info, err := QueryFrom(context.Background(), fakeSource{
		records:  smtCores(0, 2, 3000000, topology.CoreTypeUnknown),
		identity: alderLake,
	}, Options{})
	if err != nil {
		t.Fatalf("QueryFrom: %v", err)
	}

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	for _, want := range []string{`"vendor":"Intel"`, `"architecture":"x86_64"`, `"kind":"linear"`, `"physical_cores":2`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON missing %s: %s", want, data)
		}
	}

	out, err := yaml.Marshal(info)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	for _, want := range []string{"vendor: Intel", "kind: linear", "logical_cores: 4"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("YAML missing %q:\n%s", want, out)
		}
	}
}

func TestQueryContextCapturedTree(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("captured trees are read on linux only")
	}
	root := t.TempDir()
	for _, name := range []string{"cpu0", "cpu1"} {
		dir := filepath.Join(root, "sys/devices/system/cpu", name)
		if err := os.MkdirAll(filepath.Join(dir, "topology"), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "topology/core_id"), []byte("0\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(root, "proc"), 0755); err != nil {
		t.Fatal(err)
	}
	cpuinfo := "processor\t: 0\nCPU implementer\t: 0x41\nCPU part\t: 0xd0c\n\nprocessor\t: 1\nCPU implementer\t: 0x41\nCPU part\t: 0xd0c\n"
	if err := os.WriteFile(filepath.Join(root, "proc/cpuinfo"), []byte(cpuinfo), 0644); err != nil {
		t.Fatal(err)
	}

	info, err := QueryContext(context.Background(), Options{
		ProcRoot: filepath.Join(root, "proc"),
		SysRoot:  filepath.Join(root, "sys"),
	})
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	if info.LogicalCores != 2 || info.PhysicalCores != 1 {
		t.Errorf("cores = %d/%d, want 2/1", info.LogicalCores, info.PhysicalCores)
	}
	if info.Vendor.Name != "ARM" || info.ModelName != "Neoverse-N1" {
		t.Errorf("identity = %v %q", info.Vendor, info.ModelName)
	}
}

func TestQueryLive(t *testing.T) {
	info, err := Query()
	if errors.Is(err, ErrAcquisition) || errors.Is(err, ErrIdentityUnavailable) {
		t.Skipf("no CPU data on this host: %v", err)
	}
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if info.PhysicalCores == 0 || info.PhysicalCores > info.LogicalCores {
		t.Errorf("cores = %d physical / %d logical", info.PhysicalCores, info.LogicalCores)
	}
	if info.Architecture != identity.Current() {
		t.Errorf("architecture = %v, want %v", info.Architecture, identity.Current())
	}
}
