package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	s := Default()
	p := s.Physics
	if !p.Enabled || p.Gravity != (Vec2{X: 0, Y: -9.81}) || p.SubSteps != 4 || p.TickRate != 60 {
		t.Fatalf("unexpected defaults %+v", p)
	}
	if p.Broadphase != "spatial_hash" || p.MaxAccumulatedTime != 1 {
		t.Fatalf("unexpected defaults %+v", p)
	}
	if p.FixedTimeStep() != 1.0/60 {
		t.Fatalf("FixedTimeStep = %v", p.FixedTimeStep())
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestWithToggles(t *testing.T) {
	running := Default().Physics
	running.Enabled = false
	running.Debug = true

	reloaded, err := Parse([]byte("physics:\n  enabled: true\n  debug: false\n  sub_steps: 8\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := reloaded.Physics.WithToggles(running)
	if got.Enabled || !got.Debug {
		t.Fatalf("toggles not carried over: enabled=%v debug=%v", got.Enabled, got.Debug)
	}
	if got.SubSteps != 8 {
		t.Fatalf("sub_steps = %d, want reloaded value 8", got.SubSteps)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
		check   func(t *testing.T, s Settings)
	}{
		{
			name: "overlay_keeps_defaults",
			yaml: "physics:\n  gravity: {x: 1, y: 2}\n  broadphase: n_squared\n",
			check: func(t *testing.T, s Settings) {
				if s.Physics.Gravity.Vector().X != 1 || s.Physics.Gravity.Y != 2 {
					t.Fatalf("gravity = %+v", s.Physics.Gravity)
				}
				if s.Physics.Broadphase != "n_squared" || s.Physics.TickRate != 60 {
					t.Fatalf("overlay lost defaults: %+v", s.Physics)
				}
			},
		},
		{
			name: "empty_document",
			yaml: "",
			check: func(t *testing.T, s Settings) {
				if s != Default() {
					t.Fatalf("empty document should equal defaults")
				}
			},
		},
		{name: "zero_tick_rate", yaml: "physics:\n  tick_rate: 0\n", wantErr: "tick_rate"},
		{name: "zero_sub_steps", yaml: "physics:\n  sub_steps: 0\n", wantErr: "sub_steps"},
		{name: "unknown_broadphase", yaml: "physics:\n  broadphase: octree\n", wantErr: "octree"},
		{name: "offset_over_cell", yaml: "physics:\n  spatial_hash: {cell_size: 1, cell_offset_size: 2}\n", wantErr: "exceeds"},
		{name: "negative_workers", yaml: "physics:\n  workers: -1\n", wantErr: "workers"},
		{name: "bad_accumulator", yaml: "physics:\n  max_accumulated_time: 0\n", wantErr: "max_accumulated_time"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := Parse([]byte(c.yaml))
			if c.wantErr != "" {
				if !errors.Is(err, ErrInvalidSettings) || !strings.Contains(err.Error(), c.wantErr) {
					t.Fatalf("expected invalid settings mentioning %q, got %v", c.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			c.check(t, s)
		})
	}

	if _, err := Parse([]byte("physics: [")); err == nil || errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("expected a yaml error, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "physics.yaml")
	if err := os.WriteFile(path, []byte("physics:\n  sub_steps: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Physics.SubSteps != 8 {
		t.Fatalf("SubSteps = %d", s.Physics.SubSteps)
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "physics.yaml")
	other := filepath.Join(dir, "other.yaml")
	if err := os.WriteFile(path, []byte("physics: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(other, []byte("x: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("physics:\n  sub_steps: 2\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case got := <-w.Events:
		if got != w.Path() {
			t.Fatalf("event for %q, want %q", got, w.Path())
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change event")
	}

	select {
	case got := <-w.Events:
		t.Fatalf("burst was not debounced, extra event %q", got)
	case <-time.After(300 * time.Millisecond):
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal("second Close should be a no-op")
	}
}
