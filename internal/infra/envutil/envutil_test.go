package envutil

import "testing"

func TestHostEnv(t *testing.T) {
	if got := HostEnvKey("AWS_ACCESS_KEY"); got != "RELEASE_SWEEP_AWS_ACCESS_KEY" {
		t.Fatalf("key=%q", got)
	}
	t.Setenv("RELEASE_SWEEP_AWS_ACCESS_KEY", "  AKIA  ")
	if got := GetHostEnv("AWS_ACCESS_KEY"); got != "AKIA" {
		t.Fatalf("value=%q", got)
	}
}
