package config

import (
	"reflect"
	"testing"
)

func TestConfigOps(t *testing.T) {
	t.Run("set display name keeps other fields", func(t *testing.T) {
		cfg := Config{"p": {ManuallyAdded: true, OriginalPath: "/p"}}
		cfg.SetDisplayName("p", " Name ")
		want := ProjectEntry{DisplayName: "Name", ManuallyAdded: true, OriginalPath: "/p"}
		if cfg["p"] != want {
			t.Fatalf("got %#v want %#v", cfg["p"], want)
		}
	})

	t.Run("clear display name on missing entry is a no-op", func(t *testing.T) {
		cfg := Config{}
		cfg.ClearDisplayName("missing")
		if len(cfg) != 0 {
			t.Fatalf("expected empty config, got %#v", cfg)
		}
	})

	t.Run("add manual overwrites", func(t *testing.T) {
		cfg := Config{"p": {DisplayName: "old"}}
		cfg.AddManual("p", "/abs/p", "")
		want := ProjectEntry{ManuallyAdded: true, OriginalPath: "/abs/p"}
		if cfg["p"] != want {
			t.Fatalf("got %#v want %#v", cfg["p"], want)
		}
	})

	t.Run("remove", func(t *testing.T) {
		cfg := Config{"p": {DisplayName: "x"}}
		if !cfg.Remove("p") {
			t.Fatalf("expected Remove to report true")
		}
		if cfg.Remove("p") {
			t.Fatalf("expected second Remove to report false")
		}
	})

	t.Run("manual entries sorted", func(t *testing.T) {
		cfg := Config{
			"-z": {ManuallyAdded: true},
			"-a": {ManuallyAdded: true},
			"-m": {DisplayName: "not manual"},
		}
		got := cfg.ManualEntries()
		if !reflect.DeepEqual(got, []string{"-a", "-z"}) {
			t.Fatalf("unexpected manual entries: %v", got)
		}
	})
}
