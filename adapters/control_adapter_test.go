package adapters_test

import (
	"testing"

	"github.com/momentics/clientconnect/adapters"
)

func TestControlAdapterBasic(t *testing.T) {
	ctrl := adapters.NewControlAdapter()
	cfg := ctrl.GetConfig()
	if len(cfg) != 0 {
		t.Error("Expected empty config on init")
	}

	called := 0
	ctrl.OnReload(func() { called++ })

	ctrl.Seed(map[string]any{"k": 1})
	if called != 0 {
		t.Error("Seed must not trigger reload hooks")
	}
	if err := ctrl.SetConfig(map[string]any{"x": 2}); err != nil {
		t.Fatal(err)
	}
	if called != 1 {
		t.Errorf("Reload hook called %d times, want 1", called)
	}
	cfg = ctrl.GetConfig()
	if cfg["k"] != 1 || cfg["x"] != 2 {
		t.Errorf("unexpected config %v", cfg)
	}

	ctrl.SetMetric("calls.submitted", uint64(1))
	ctrl.RegisterDebugProbe("slots", func() any { return "ok" })
	stats := ctrl.Stats()
	if stats["calls.submitted"] != uint64(1) {
		t.Error("metric missing from stats")
	}
	if stats["debug.slots"] != "ok" {
		t.Error("debug probe missing from stats")
	}
}
