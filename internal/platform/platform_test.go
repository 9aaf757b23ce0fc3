package platform

import (
	"runtime"
	"testing"
)

func TestGetArchMatchesRuntime(t *testing.T) {
	if got := GetArch(); string(got) != runtime.GOARCH {
		t.Errorf("GetArch() = %q, want %q", got, runtime.GOARCH)
	}
}

func TestValidateSupport(t *testing.T) {
	err := ValidateSupport()
	switch runtime.GOOS {
	case "linux", "windows", "darwin", "freebsd":
		if err != nil {
			t.Errorf("ValidateSupport() on %s: %v", runtime.GOOS, err)
		}
	default:
		if err == nil {
			t.Errorf("ValidateSupport() on %s should fail", runtime.GOOS)
		}
	}
}
