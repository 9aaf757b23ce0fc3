package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/CristiGvl/picoCPUInfo/cpuinfo"
	"github.com/CristiGvl/picoCPUInfo/identity"
	"github.com/CristiGvl/picoCPUInfo/internal/cpu"
	"github.com/CristiGvl/picoCPUInfo/internal/platform"
	"github.com/CristiGvl/picoCPUInfo/topology"
)

type stubSource struct {
	records []topology.CoreRecord
	err     error
}

func (s stubSource) ReadAllCores(context.Context) ([]topology.CoreRecord, error) {
	return s.records, s.err
}

func (s stubSource) ResolveIdentity(context.Context) (identity.Identity, error) {
	return identity.Identity{
		Vendor:       identity.AMD,
		Architecture: identity.ArchX86_64,
		ModelName:    "AMD Ryzen 9 5950X 16-Core Processor",
	}, nil
}

func newTestServer(t *testing.T, src cpuinfo.Source) *Server {
	t.Helper()
	if !platform.IsSupported() {
		t.Skipf("platform %s not supported", platform.GetOS())
	}
	server, err := NewServer(src, cpuinfo.Options{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return server
}

func get(t *testing.T, s *Server, path string) (int, map[string]any) {
	t.Helper()
	resp, err := s.app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode %s: %v (%s)", path, err, data)
	}
	return resp.StatusCode, body
}

func ryzen() []topology.CoreRecord {
	var records []topology.CoreRecord
	for logical := uint32(0); logical < 32; logical++ {
		records = append(records, topology.CoreRecord{
			LogicalID:    logical,
			PhysicalID:   logical % 16,
			MaxFrequency: 4900000,
		})
	}
	return records
}

func TestGetCPU(t *testing.T) {
	s := newTestServer(t, stubSource{records: ryzen()})

	status, body := get(t, s, "/api/cpu")
	if status != 200 {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	if body["vendor"] != "AMD" || body["architecture"] != "x86_64" {
		t.Errorf("identity = %v %v", body["vendor"], body["architecture"])
	}
	if body["logical_cores"] != float64(32) || body["physical_cores"] != float64(16) {
		t.Errorf("cores = %v / %v", body["logical_cores"], body["physical_cores"])
	}
	topo, _ := body["topology"].(map[string]any)
	if topo["kind"] != "linear" {
		t.Errorf("topology = %v", body["topology"])
	}
}

func TestGetCores(t *testing.T) {
	s := newTestServer(t, stubSource{records: ryzen()})

	status, body := get(t, s, "/api/cpu/cores")
	if status != 200 {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	cores, _ := body["cores"].([]any)
	if len(cores) != 16 {
		t.Errorf("got %d cores, want 16", len(cores))
	}
	groups, _ := body["groups"].([]any)
	if len(groups) != 1 {
		t.Errorf("got %d groups, want 1", len(groups))
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		src  stubSource
		want int
	}{
		{"acquisition", stubSource{err: cpu.ErrNoSource}, 503},
		{"no cores", stubSource{}, 500},
		{"read failure", stubSource{err: errors.New("boom")}, 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.src)
			status, body := get(t, s, "/api/cpu")
			if status != tt.want {
				t.Errorf("status = %d, want %d", status, tt.want)
			}
			if _, ok := body["error"]; !ok {
				t.Errorf("body = %v, want an error field", body)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, stubSource{})
	status, body := get(t, s, "/api/health")
	if status != 200 || body["status"] != "ok" {
		t.Errorf("health = %d %v", status, body)
	}
}
