package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hayabusaracing/rig/pkg/dynamics"
	"github.com/hayabusaracing/rig/pkg/tether"
	"github.com/hayabusaracing/rig/pkg/utils/ptr"
)

func TestFileMissingOrEmptyUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{filepath.Join(dir, "missing.json"), empty} {
		f, err := NewFile(p)
		if err != nil {
			t.Fatalf("NewFile(%s) error = %v", p, err)
		}
		if got := f.Geometry(); got != tether.DefaultGeometry {
			t.Errorf("Geometry() = %+v, want %+v", got, tether.DefaultGeometry)
		}
		if got := f.RaceParams(); got != dynamics.DefaultParams {
			t.Errorf("RaceParams() = %+v, want %+v", got, dynamics.DefaultParams)
		}
		if f.ThrustInput() != "thrust.csv" || f.DPI() != 300 || f.TensionScale() != 19.6 {
			t.Errorf("unexpected defaults: %v", f.LogrusFields())
		}
		if err := f.Validate(); err != nil {
			t.Errorf("defaults should validate: %v", err)
		}
	}
}

func TestFileLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "json",
			file:    "rig.json",
			content: `{"sagHeight": 0.005, "dpi": 150, "raceCutoffMs": 1000, "raceLosses": {"tether": 0.5}}`,
		},
		{
			name:    "yaml",
			file:    "rig.yaml",
			content: "sagHeight: 0.005\ndpi: 150\nraceCutoffMs: 1000\nraceLosses:\n  tether: 0.5\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(p, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			f, err := NewFile(p)
			if err != nil {
				t.Fatalf("NewFile() error = %v", err)
			}
			if got := f.Geometry().SagHeight; got != 0.005 {
				t.Errorf("SagHeight = %v, want 0.005", got)
			}
			if got := f.Geometry().TotalSpan; got != tether.DefaultGeometry.TotalSpan {
				t.Errorf("unset TotalSpan = %v, want default", got)
			}
			if f.DPI() != 150 {
				t.Errorf("DPI() = %d, want 150", f.DPI())
			}
			if got := f.RaceParams().Cutoff; got != time.Second {
				t.Errorf("Cutoff = %v, want 1s", got)
			}
			if got := f.RaceParams().Losses; got != (dynamics.Losses{Tether: 0.5}) {
				t.Errorf("Losses = %+v, want only a 0.5 N tether", got)
			}
		})
	}
}

func TestFileLoadMalformed(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rig.json")
	if err := os.WriteFile(p, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFile(p); err == nil {
		t.Fatalf("expected malformed config to fail")
	}
}

func TestFileSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"rig.json", "rig.yml"} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), name)
			f := NewFileFromConfig(DefaultRawFileConfig(), p)
			f.SetThrustInput("runs/attempts.csv")
			f.SetGeometry(tether.Geometry{TotalSpan: 30, TetherLength: 0.2, SagHeight: 0.004})
			if err := f.Save(); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			loaded, err := NewFile(p)
			if err != nil {
				t.Fatalf("NewFile() error = %v", err)
			}
			if loaded.ThrustInput() != "runs/attempts.csv" {
				t.Errorf("ThrustInput() = %q", loaded.ThrustInput())
			}
			if loaded.Geometry().TotalSpan != 30 {
				t.Errorf("TotalSpan = %v, want 30", loaded.Geometry().TotalSpan)
			}
		})
	}
}

func TestFileValidate(t *testing.T) {
	tests := []struct {
		name string
		raw  *RawFileConfig
	}{
		{name: "tether longer than span", raw: &RawFileConfig{TetherLength: ptr.To(30.0)}},
		{name: "zero dpi", raw: &RawFileConfig{DPI: ptr.To(0)}},
		{name: "one curve point", raw: &RawFileConfig{CurvePoints: ptr.To(1)}},
		{name: "negative mass", raw: &RawFileConfig{RaceMass: ptr.To(-1.0)}},
		{name: "empty input", raw: &RawFileConfig{ThrustInput: ptr.To("")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFileFromConfig(tt.raw, "")
			if err := f.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNewRawFileConfigFromConfig(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{RaceStepsPerMs: ptr.To(10)}, "")
	raw, err := NewRawFileConfigFromConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if *raw.RaceStepsPerMs != 10 || *raw.DPI != 300 {
		t.Errorf("unexpected raw config: steps=%d dpi=%d", *raw.RaceStepsPerMs, *raw.DPI)
	}
	if _, err := NewRawFileConfigFromConfig(nil); err == nil {
		t.Errorf("expected error for nil config")
	}
}
